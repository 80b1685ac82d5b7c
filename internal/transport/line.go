package transport

import (
	"context"
	"fmt"

	"ecg-notify/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// LineClient LINE Messaging API 客户端
// 只做单次调用，不重试：告警通知宁可失败也不能迟到重复
type LineClient struct {
	client *resty.Client
	token  string
	logger *zap.Logger
}

// NewLineClient 创建 LINE 客户端
func NewLineClient(baseURL, channelAccessToken string, logger *zap.Logger) *LineClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json")

	if channelAccessToken == "" {
		logger.Warn("LINE transport not configured, pushes will be skipped")
	} else {
		client.SetAuthToken(channelAccessToken)
	}

	return &LineClient{
		client: client,
		token:  channelAccessToken,
		logger: logger,
	}
}

// Configured channel access token 是否就绪
func (c *LineClient) Configured() bool {
	return c.token != ""
}

// pushRequest LINE push 请求体
type pushRequest struct {
	To       string               `json:"to"`
	Messages []models.LineMessage `json:"messages"`
}

// replyRequest LINE reply 请求体
type replyRequest struct {
	ReplyToken string               `json:"replyToken"`
	Messages   []models.LineMessage `json:"messages"`
}

// Push 向单个 LINE 用户推送消息
func (c *LineClient) Push(ctx context.Context, to string, messages []models.LineMessage) error {
	if !c.Configured() {
		return fmt.Errorf("line transport is not configured")
	}
	if to == "" {
		return fmt.Errorf("to is required")
	}
	if len(messages) == 0 {
		return fmt.Errorf("messages are required")
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(pushRequest{To: to, Messages: messages}).
		Post("/v2/bot/message/push")
	if err != nil {
		return fmt.Errorf("failed to push line message: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("line push failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	c.logger.Debug("line message pushed", zap.String("to", to))
	return nil
}

// Reply 回复 webhook 事件
// reply token 只能使用一次，且有效期很短
func (c *LineClient) Reply(ctx context.Context, replyToken string, messages []models.LineMessage) error {
	if !c.Configured() {
		return fmt.Errorf("line transport is not configured")
	}
	if replyToken == "" {
		return fmt.Errorf("reply_token is required")
	}
	if len(messages) == 0 {
		return fmt.Errorf("messages are required")
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(replyRequest{ReplyToken: replyToken, Messages: messages}).
		Post("/v2/bot/message/reply")
	if err != nil {
		return fmt.Errorf("failed to reply line message: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("line reply failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	return nil
}
