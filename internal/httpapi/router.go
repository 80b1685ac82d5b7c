package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 通知服务 HTTP 路由
type Router struct {
	mux            *http.ServeMux
	allowedOrigins []string
	logger         *zap.Logger
}

// NewRouter 创建路由并注册全部接口
func NewRouter(
	emailHandler *EmailHandler,
	notifyHandler *NotifyHandler,
	lineHandler *LineHandler,
	allowedOrigins []string,
	logger *zap.Logger,
) *Router {
	mux := http.NewServeMux()

	// 健康检查
	mux.HandleFunc("/api/health", emailHandler.Health)

	// 直发邮件（调用方自带收件人）
	mux.HandleFunc("/api/send-test-email", emailHandler.SendTestEmail)
	mux.HandleFunc("/api/send-emergency-email", emailHandler.SendEmergencyEmail)

	// 多渠道派发（按患者解析接收人）
	mux.HandleFunc("/api/notifications/test", notifyHandler.SendTest)
	mux.HandleFunc("/api/notifications/emergency", notifyHandler.SendEmergency)
	mux.HandleFunc("/api/notification-logs", notifyHandler.ListLogs)

	// LINE 绑定与 webhook
	mux.HandleFunc("/api/line-connections", lineHandler.SaveConnection)
	mux.HandleFunc("/webhook", lineHandler.Webhook)

	return &Router{
		mux:            mux,
		allowedOrigins: allowedOrigins,
		logger:         logger,
	}
}

// Handler 返回包含 CORS 中间件的处理器
func (r *Router) Handler() http.Handler {
	return corsMiddleware(r.allowedOrigins, r.mux)
}
