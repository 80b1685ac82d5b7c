package transport

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"ecg-notify/internal/models"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// EmailSender SMTP 邮件传输
// 一次 Send 把同一封邮件广播给全部收件人（单条 SMTP 会话）
type EmailSender struct {
	client     *mail.Client
	host       string
	user       string
	senderName string
	logger     *zap.Logger
}

// stripWhitespace 去除凭据中的全部空白字符
// Gmail 应用专用密码复制时常带空格，原样使用会认证失败
func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// NewEmailSender 创建 SMTP 传输
// 凭据缺失时返回未配置的实例，Send 将直接报错并走降级路径
func NewEmailSender(host string, port int, user, password, senderName string, logger *zap.Logger) (*EmailSender, error) {
	s := &EmailSender{
		host:       host,
		user:       user,
		senderName: senderName,
		logger:     logger,
	}

	password = stripWhitespace(password)
	if user == "" || password == "" {
		logger.Warn("email transport not configured, sends will fall back to mailto")
		return s, nil
	}

	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(user),
		mail.WithPassword(password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	s.client = client

	return s, nil
}

// Configured SMTP 凭据是否就绪
func (s *EmailSender) Configured() bool {
	return s.client != nil
}

// Verify 启动时探测 SMTP 连通性
// 失败不阻断服务启动，只记录日志
func (s *EmailSender) Verify(ctx context.Context) error {
	if !s.Configured() {
		return fmt.Errorf("email transport is not configured")
	}

	if err := s.client.DialWithContext(ctx); err != nil {
		s.logger.Warn("smtp verification failed", zap.String("host", s.host), zap.Error(err))
		return fmt.Errorf("smtp verification failed: %w", err)
	}
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("failed to close smtp connection: %w", err)
	}

	s.logger.Info("smtp transport verified", zap.String("host", s.host))
	return nil
}

// buildMessage 组装一封邮件
func (s *EmailSender) buildMessage(recipients []string, msg models.EmailMessage) (*mail.Msg, string, error) {
	m := mail.NewMsg()

	if err := m.FromFormat(s.senderName, s.user); err != nil {
		return nil, "", fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(recipients...); err != nil {
		return nil, "", fmt.Errorf("invalid recipient address: %w", err)
	}

	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)

	if msg.HighPriority {
		m.SetGenHeader(mail.HeaderXPriority, "1")
		m.SetGenHeader(mail.HeaderXMSMailPriority, "High")
		m.SetGenHeader(mail.HeaderImportance, "high")
	}

	id := fmt.Sprintf("%s@%s", uuid.New().String(), s.host)
	m.SetMessageIDWithValue(id)

	return m, "<" + id + ">", nil
}

// Send 发送一封邮件给全部收件人
func (s *EmailSender) Send(ctx context.Context, recipients []string, msg models.EmailMessage) (models.DeliveryResult, error) {
	if len(recipients) == 0 {
		return models.DeliveryResult{}, fmt.Errorf("recipients are required")
	}
	if !s.Configured() {
		return models.DeliveryResult{}, fmt.Errorf("email transport is not configured")
	}

	m, messageID, err := s.buildMessage(recipients, msg)
	if err != nil {
		return models.DeliveryResult{}, err
	}

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return models.DeliveryResult{}, fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		zap.Int("recipients", len(recipients)),
		zap.String("message_id", messageID),
	)

	return models.DeliveryResult{
		Success:           true,
		ProviderMessageID: messageID,
	}, nil
}
