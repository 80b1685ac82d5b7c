package httpapi

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"

	"ecg-notify/internal/models"

	"go.uber.org/zap"
)

// lineUserIDPattern LINE User ID 形如 "U" + 32 位十六进制
var lineUserIDPattern = regexp.MustCompile(`^U[0-9a-f]{32}$`)

// ConnectionStore LINE 绑定持久化
type ConnectionStore interface {
	SaveConnection(ctx context.Context, patientID, memberID, lineUserID string) (*models.LineConnection, error)
}

// LineReplier webhook 事件回复
type LineReplier interface {
	Reply(ctx context.Context, replyToken string, messages []models.LineMessage) error
}

// LineHandler LINE 绑定与 webhook 接口
type LineHandler struct {
	connections   ConnectionStore
	replier       LineReplier
	channelSecret string
	logger        *zap.Logger
}

// NewLineHandler 创建 LINE 处理器
func NewLineHandler(connections ConnectionStore, replier LineReplier, channelSecret string, logger *zap.Logger) *LineHandler {
	return &LineHandler{
		connections:   connections,
		replier:       replier,
		channelSecret: channelSecret,
		logger:        logger,
	}
}

type saveConnectionRequest struct {
	PatientID  string `json:"patientId"`
	MemberID   string `json:"memberId"`
	LineUserID string `json:"lineUserId"`
}

// SaveConnection 保存照护成员的 LINE 绑定
func (h *LineHandler) SaveConnection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req saveConnectionRequest
	if err := readBodyJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.PatientID == "" || req.MemberID == "" {
		writeError(w, http.StatusBadRequest, "patientId and memberId are required")
		return
	}
	if !lineUserIDPattern.MatchString(req.LineUserID) {
		writeError(w, http.StatusBadRequest, "lineUserId must match U followed by 32 hex characters")
		return
	}

	conn, err := h.connections.SaveConnection(r.Context(), req.PatientID, req.MemberID, req.LineUserID)
	if err != nil {
		h.logger.Error("failed to save line connection", zap.Error(err))
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to save LINE connection", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"connection": conn,
	})
}

// ============ webhook ============

type webhookEvent struct {
	Type       string `json:"type"`
	ReplyToken string `json:"replyToken"`
	Source     struct {
		UserID string `json:"userId"`
	} `json:"source"`
	Message struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
}

type webhookRequest struct {
	Events []webhookEvent `json:"events"`
}

// verifySignature 校验 X-Line-Signature（HMAC-SHA256，base64）
func (h *LineHandler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.channelSecret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Webhook LINE 平台事件入口
// 配置了 channel secret 时校验签名；事件处理结果不影响返回给平台的 200
func (h *LineHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	defer r.Body.Close()

	if h.channelSecret != "" {
		if !h.verifySignature(body, r.Header.Get("X-Line-Signature")) {
			h.logger.Warn("invalid webhook signature")
			writeError(w, http.StatusBadRequest, "invalid signature")
			return
		}
	}

	var req webhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	for _, event := range req.Events {
		h.handleEvent(r.Context(), event)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// handleEvent 处理单个 webhook 事件，出错只记录日志
func (h *LineHandler) handleEvent(ctx context.Context, event webhookEvent) {
	switch event.Type {
	case "follow":
		h.reply(ctx, event.ReplyToken,
			"ยินดีต้อนรับสู่ระบบแจ้งเตือน ECG Monitoring 🏥\n\n"+
				"พิมพ์ \"myid\" เพื่อดู LINE User ID ของคุณ\n"+
				"พิมพ์ \"help\" เพื่อดูคำสั่งทั้งหมด")

	case "message":
		if event.Message.Type != "text" {
			return
		}
		text := strings.ToLower(strings.TrimSpace(event.Message.Text))

		switch text {
		case "myid", "id":
			h.reply(ctx, event.ReplyToken,
				"LINE User ID ของคุณคือ:\n"+event.Source.UserID+"\n\n"+
					"นำ ID นี้ไปกรอกในหน้าตั้งค่าการแจ้งเตือนของระบบ ECG Monitoring")
		case "help", "ช่วยเหลือ":
			h.reply(ctx, event.ReplyToken,
				"คำสั่งที่ใช้ได้:\n"+
					"• myid - ดู LINE User ID ของคุณ\n"+
					"• help - ดูคำสั่งทั้งหมด\n\n"+
					"ระบบจะส่งการแจ้งเตือนฉุกเฉินมาที่แชทนี้โดยอัตโนมัติ")
		}
	}
}

// reply 回复事件，失败不向上传播
func (h *LineHandler) reply(ctx context.Context, replyToken, text string) {
	if replyToken == "" {
		return
	}
	if err := h.replier.Reply(ctx, replyToken, []models.LineMessage{models.NewLineTextMessage(text)}); err != nil {
		h.logger.Warn("failed to reply webhook event", zap.Error(err))
	}
}
