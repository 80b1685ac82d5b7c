package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"ecg-notify/internal/models"

	"go.uber.org/zap"
)

// 投递方式
const (
	MethodSMTP     = "smtp"
	MethodFallback = "fallback"
)

// RecipientResolver 按渠道解析接收成员
type RecipientResolver interface {
	ResolveEmailRecipients(ctx context.Context, patientID string) ([]models.CareTeamMember, error)
	ResolveLineRecipients(ctx context.Context, patientID string) ([]models.CareTeamMember, error)
}

// PatientDirectory 患者名称查询
type PatientDirectory interface {
	GetPatientName(ctx context.Context, patientID string) (string, error)
}

// AuditStore 派发审计写入
type AuditStore interface {
	CreateNotificationLog(ctx context.Context, log *models.NotificationLog) error
}

// EmailTransport email 渠道传输
// 一次 Send 把同一封邮件广播给全部收件人
type EmailTransport interface {
	Send(ctx context.Context, recipients []string, msg models.EmailMessage) (models.DeliveryResult, error)
}

// LineTransport LINE 渠道传输
type LineTransport interface {
	Push(ctx context.Context, to string, messages []models.LineMessage) error
}

// RecipientInfo 响应中回显的接收人摘要
type RecipientInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AggregateResult 一次派发的汇总结果
type AggregateResult struct {
	Success       bool             `json:"success"`
	Recipients    int              `json:"recipients"`
	EmailsSent    int              `json:"emailsSent"`
	LinesSent     int              `json:"linesSent"`
	Method        string           `json:"method,omitempty"`
	MessageID     string           `json:"messageId,omitempty"`
	RecipientList []RecipientInfo  `json:"recipientList"`
	AlertType     models.AlertType `json:"alertType"`
	Timestamp     int64            `json:"timestamp"`

	// 降级发送字段，仅 Method 为 fallback 时有值
	Mailto  string `json:"mailto,omitempty"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`
}

// Dispatcher 多渠道通知派发器
// 两个渠道并发发送，全部 settle 后汇总；email 失败降级为 mailto，
// LINE 失败只记录日志不影响整体结果
type Dispatcher struct {
	resolver    RecipientResolver
	patients    PatientDirectory
	audit       AuditStore
	email       EmailTransport
	line        LineTransport
	websiteURL  string
	sendTimeout time.Duration
	logger      *zap.Logger
}

// NewDispatcher 创建派发器
func NewDispatcher(
	resolver RecipientResolver,
	patients PatientDirectory,
	audit AuditStore,
	email EmailTransport,
	line LineTransport,
	websiteURL string,
	sendTimeout time.Duration,
	logger *zap.Logger,
) *Dispatcher {
	if sendTimeout <= 0 {
		sendTimeout = 15 * time.Second
	}
	return &Dispatcher{
		resolver:    resolver,
		patients:    patients,
		audit:       audit,
		email:       email,
		line:        line,
		websiteURL:  websiteURL,
		sendTimeout: sendTimeout,
		logger:      logger,
	}
}

// SendEmergencyNotification 派发紧急告警通知
func (d *Dispatcher) SendEmergencyNotification(ctx context.Context, patientID string, alert models.AlertEvent) (*AggregateResult, error) {
	if alert.Type == "" || alert.Type == models.AlertTypeTest {
		alert.Type = models.AlertTypeEmergency
	}
	return d.Dispatch(ctx, patientID, alert)
}

// SendTestNotification 派发测试通知
func (d *Dispatcher) SendTestNotification(ctx context.Context, patientID string) (*AggregateResult, error) {
	return d.Dispatch(ctx, patientID, models.AlertEvent{
		Type: models.AlertTypeTest,
	})
}

// Dispatch 派发一次告警通知
// 解析失败或两个渠道都没有接收人时不发送任何消息、不写审计；
// 进入发送阶段后无论结果如何都写一条审计记录
func (d *Dispatcher) Dispatch(ctx context.Context, patientID string, alert models.AlertEvent) (*AggregateResult, error) {
	if patientID == "" {
		return nil, fmt.Errorf("patient_id is required")
	}

	emailRecipients, err := d.resolver.ResolveEmailRecipients(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}
	lineRecipients, err := d.resolver.ResolveLineRecipients(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}

	if len(emailRecipients) == 0 && len(lineRecipients) == 0 {
		d.logger.Warn("no eligible recipients", zap.String("patient_id", patientID))
		return nil, ErrNoEligibleRecipients
	}

	// 边界处补齐：时间戳与患者名称在渲染前确定，之后不再读墙钟
	if alert.Timestamp == 0 {
		alert.Timestamp = time.Now().UnixMilli()
	}
	if alert.PatientName == "" {
		name, err := d.patients.GetPatientName(ctx, patientID)
		if err != nil {
			d.logger.Warn("failed to look up patient name", zap.String("patient_id", patientID), zap.Error(err))
		}
		alert.PatientName = patientNameOrDefault(name)
	}
	if alert.Type == "" {
		alert.Type = models.AlertTypeAbnormal
	}

	var emailMsg models.EmailMessage
	if alert.Type == models.AlertTypeTest {
		emailMsg = RenderTestEmail(alert.PatientName, alert.Timestamp)
	} else {
		emailMsg = RenderEmergencyEmail(alert)
	}
	lineMsg := RenderLineAlert(alert, d.websiteURL)

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		emailResult models.DeliveryResult
		emailErr    error
		linesSent   int
	)

	if len(emailRecipients) > 0 {
		addrs := make([]string, 0, len(emailRecipients))
		for _, m := range emailRecipients {
			addrs = append(addrs, m.Email)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
			defer cancel()
			emailResult, emailErr = d.email.Send(sendCtx, addrs, emailMsg)
		}()
	}

	for _, m := range lineRecipients {
		m := m
		wg.Add(1)
		go func() {
			defer wg.Done()
			sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
			defer cancel()

			if err := d.line.Push(sendCtx, m.LineUserID, []models.LineMessage{lineMsg}); err != nil {
				d.logger.Warn("LINE push failed",
					zap.String("patient_id", patientID),
					zap.String("member_id", m.MemberID),
					zap.Error(err),
				)
				return
			}
			mu.Lock()
			linesSent++
			mu.Unlock()
		}()
	}

	wg.Wait()

	result := &AggregateResult{
		Recipients:    len(emailRecipients),
		LinesSent:     linesSent,
		RecipientList: recipientInfoList(emailRecipients),
		AlertType:     alert.Type,
		Timestamp:     alert.Timestamp,
	}

	switch {
	case len(emailRecipients) == 0:
		// 只有 LINE 渠道
		result.Success = linesSent > 0
	case emailErr != nil:
		d.logger.Error("email send failed, composing fallback",
			zap.String("patient_id", patientID),
			zap.Error(emailErr),
		)
		// 降级成功 = 移交成功，不代表送达
		result.Success = true
		result.Method = MethodFallback
		if alert.Type == models.AlertTypeTest {
			result.Mailto, result.Subject, result.Body = ComposeTestFallback(alert.PatientName, alert.Timestamp, emailRecipients)
		} else {
			result.Mailto, result.Subject, result.Body = ComposeEmergencyFallback(alert, emailRecipients)
		}
	default:
		result.Success = true
		result.Method = MethodSMTP
		result.MessageID = emailResult.ProviderMessageID
		result.EmailsSent = len(emailRecipients)
	}

	d.writeAudit(ctx, patientID, alert, len(emailRecipients))

	d.logger.Info("notification dispatched",
		zap.String("patient_id", patientID),
		zap.String("alert_type", string(alert.Type)),
		zap.Bool("success", result.Success),
		zap.Int("emails_sent", result.EmailsSent),
		zap.Int("lines_sent", result.LinesSent),
		zap.String("method", result.Method),
	)

	return result, nil
}

// writeAudit 写派发审计记录，失败只记录日志
func (d *Dispatcher) writeAudit(ctx context.Context, patientID string, alert models.AlertEvent, recipientsCount int) {
	alertData, err := json.Marshal(alert)
	if err != nil {
		alertData = []byte("{}")
	}

	log := &models.NotificationLog{
		PatientID:       patientID,
		AlertType:       string(alert.Type),
		Timestamp:       time.UnixMilli(alert.Timestamp),
		RecipientsCount: recipientsCount,
		AlertData:       alertData,
	}
	if err := d.audit.CreateNotificationLog(ctx, log); err != nil {
		d.logger.Error("failed to write notification log",
			zap.String("patient_id", patientID),
			zap.Error(err),
		)
	}
}

func recipientInfoList(members []models.CareTeamMember) []RecipientInfo {
	list := make([]RecipientInfo, 0, len(members))
	for _, m := range members {
		list = append(list, RecipientInfo{
			Name:  m.Name,
			Email: m.Email,
			Role:  string(m.Role),
		})
	}
	return list
}
