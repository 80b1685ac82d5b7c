package httpapi

import (
	"context"
	"errors"
	"net/http"

	"ecg-notify/internal/models"
	"ecg-notify/internal/notify"

	"go.uber.org/zap"
)

// NotificationDispatcher 多渠道派发入口
type NotificationDispatcher interface {
	SendEmergencyNotification(ctx context.Context, patientID string, alert models.AlertEvent) (*notify.AggregateResult, error)
	SendTestNotification(ctx context.Context, patientID string) (*notify.AggregateResult, error)
}

// AuditReader 派发历史查询
type AuditReader interface {
	ListNotificationLogs(ctx context.Context, patientID string, limit int) ([]models.NotificationLog, error)
}

// NotifyHandler 通知派发接口
type NotifyHandler struct {
	dispatcher NotificationDispatcher
	audit      AuditReader
	logger     *zap.Logger
}

// NewNotifyHandler 创建通知派发处理器
func NewNotifyHandler(dispatcher NotificationDispatcher, audit AuditReader, logger *zap.Logger) *NotifyHandler {
	return &NotifyHandler{
		dispatcher: dispatcher,
		audit:      audit,
		logger:     logger,
	}
}

type emergencyNotificationRequest struct {
	PatientID string            `json:"patientId"`
	AlertData models.AlertEvent `json:"alertData"`
}

// SendEmergency 按患者派发紧急通知
func (h *NotifyHandler) SendEmergency(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req emergencyNotificationRequest
	if err := readBodyJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.PatientID == "" {
		writeError(w, http.StatusBadRequest, "patientId is required")
		return
	}

	result, err := h.dispatcher.SendEmergencyNotification(r.Context(), req.PatientID, req.AlertData)
	h.writeDispatchResult(w, result, err)
}

type testNotificationRequest struct {
	PatientID string `json:"patientId"`
}

// SendTest 按患者派发测试通知
func (h *NotifyHandler) SendTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req testNotificationRequest
	if err := readBodyJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.PatientID == "" {
		writeError(w, http.StatusBadRequest, "patientId is required")
		return
	}

	result, err := h.dispatcher.SendTestNotification(r.Context(), req.PatientID)
	h.writeDispatchResult(w, result, err)
}

// writeDispatchResult 把派发结果映射为 HTTP 响应
func (h *NotifyHandler) writeDispatchResult(w http.ResponseWriter, result *notify.AggregateResult, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, result)
	case errors.Is(err, notify.ErrNoEligibleRecipients):
		writeError(w, http.StatusNotFound, "ไม่พบรายชื่อผู้รับการแจ้งเตือน")
	case errors.Is(err, notify.ErrResolutionFailed):
		h.logger.Error("recipient resolution failed", zap.Error(err))
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to resolve recipients", err.Error())
	default:
		h.logger.Error("notification dispatch failed", zap.Error(err))
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to send notification", err.Error())
	}
}

// ListLogs 查询派发历史
func (h *NotifyHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	patientID := r.URL.Query().Get("patient_id")
	if patientID == "" {
		writeError(w, http.StatusBadRequest, "patient_id is required")
		return
	}
	limit := parseIntQuery(r, "limit", 10)

	logs, err := h.audit.ListNotificationLogs(r.Context(), patientID, limit)
	if err != nil {
		h.logger.Error("failed to list notification logs", zap.Error(err))
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to list notification logs", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"logs":    logs,
	})
}
