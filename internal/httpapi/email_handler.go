package httpapi

import (
	"context"
	"net/http"
	"time"

	"ecg-notify/internal/models"
	"ecg-notify/internal/notify"

	"go.uber.org/zap"
)

// EmailSender email 直发传输
type EmailSender interface {
	Send(ctx context.Context, recipients []string, msg models.EmailMessage) (models.DeliveryResult, error)
}

// EmailHandler 直发邮件接口
// 面向前端的旧式入口：调用方自带收件人列表，不经过接收人解析
type EmailHandler struct {
	email  EmailSender
	logger *zap.Logger
}

// NewEmailHandler 创建直发邮件处理器
func NewEmailHandler(email EmailSender, logger *zap.Logger) *EmailHandler {
	return &EmailHandler{
		email:  email,
		logger: logger,
	}
}

// Health 健康检查
func (h *EmailHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "OK",
		"service":   "ECG Notification Service",
		"timestamp": time.Now().UnixMilli(),
	})
}

type sendTestEmailRequest struct {
	Recipients  []string `json:"recipients"`
	PatientName string   `json:"patientName"`
}

// SendTestEmail 直发测试邮件
func (h *EmailHandler) SendTestEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req sendTestEmailRequest
	if err := readBodyJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Recipients) == 0 {
		writeError(w, http.StatusBadRequest, "Recipients array is required")
		return
	}

	now := time.Now().UnixMilli()
	msg := notify.RenderTestEmail(req.PatientName, now)

	result, err := h.email.Send(r.Context(), req.Recipients, msg)
	if err != nil {
		h.logger.Error("failed to send test email", zap.Error(err))
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to send test email", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"messageId":     result.ProviderMessageID,
		"recipients":    len(req.Recipients),
		"recipientList": req.Recipients,
		"timestamp":     now,
	})
}

type sendEmergencyEmailRequest struct {
	Recipients []string          `json:"recipients"`
	AlertData  models.AlertEvent `json:"alertData"`
}

// SendEmergencyEmail 直发紧急邮件
func (h *EmailHandler) SendEmergencyEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req sendEmergencyEmailRequest
	if err := readBodyJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Recipients) == 0 {
		writeError(w, http.StatusBadRequest, "Recipients array is required")
		return
	}

	alert := req.AlertData
	if alert.Type == "" {
		alert.Type = models.AlertTypeEmergency
	}
	if alert.Timestamp == 0 {
		alert.Timestamp = time.Now().UnixMilli()
	}

	msg := notify.RenderEmergencyEmail(alert)

	result, err := h.email.Send(r.Context(), req.Recipients, msg)
	if err != nil {
		h.logger.Error("failed to send emergency email", zap.Error(err))
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to send emergency email", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"messageId":     result.ProviderMessageID,
		"recipients":    len(req.Recipients),
		"recipientList": req.Recipients,
		"timestamp":     alert.Timestamp,
		"alertType":     alert.Type,
	})
}
