package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ecg-notify/internal/models"
	"ecg-notify/internal/notify"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Dispatcher 告警派发入口
type Dispatcher interface {
	SendEmergencyNotification(ctx context.Context, patientID string, alert models.AlertEvent) (*notify.AggregateResult, error)
}

// alertEnvelope 报警管线写入 stream 的条目载荷
type alertEnvelope struct {
	PatientID string            `json:"patient_id"`
	Alert     models.AlertEvent `json:"alert"`
}

// AlertConsumer 报警事件消费者
// 以 consumer group 方式消费报警 stream，每条触发一次紧急派发；
// 单条失败只记录日志并 ack，不阻塞后续事件
type AlertConsumer struct {
	redis      *redis.Client
	dispatcher Dispatcher
	stream     string
	group      string
	consumer   string
	logger     *zap.Logger
	stopCh     chan struct{}
	doneCh     chan struct{}
}

// NewAlertConsumer 创建报警事件消费者
func NewAlertConsumer(rdb *redis.Client, dispatcher Dispatcher, stream, group, consumer string, logger *zap.Logger) *AlertConsumer {
	return &AlertConsumer{
		redis:      rdb,
		dispatcher: dispatcher,
		stream:     stream,
		group:      group,
		consumer:   consumer,
		logger:     logger,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start 创建 consumer group 并启动消费循环
func (c *AlertConsumer) Start(ctx context.Context) error {
	err := c.redis.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	go c.loop(ctx)

	c.logger.Info("alert consumer started",
		zap.String("stream", c.stream),
		zap.String("group", c.group),
		zap.String("consumer", c.consumer),
	)
	return nil
}

// Stop 停止消费循环并等待退出
func (c *AlertConsumer) Stop() {
	close(c.stopCh)
	<-c.doneCh
}

func (c *AlertConsumer) loop(ctx context.Context) {
	defer close(c.doneCh)

	for {
		select {
		case <-c.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		streams, err := c.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.consumer,
			Streams:  []string{c.stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("failed to read alert stream", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				c.handleMessage(ctx, message)
			}
		}
	}
}

// handleMessage 处理单条报警事件
// 解析失败和派发失败都 ack，避免毒丸条目卡死消费组
func (c *AlertConsumer) handleMessage(ctx context.Context, message redis.XMessage) {
	defer func() {
		if err := c.redis.XAck(ctx, c.stream, c.group, message.ID).Err(); err != nil {
			c.logger.Error("failed to ack alert message",
				zap.String("message_id", message.ID),
				zap.Error(err),
			)
		}
	}()

	raw, ok := message.Values["data"].(string)
	if !ok {
		c.logger.Warn("alert message missing data field", zap.String("message_id", message.ID))
		return
	}

	var envelope alertEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		c.logger.Warn("failed to parse alert message",
			zap.String("message_id", message.ID),
			zap.Error(err),
		)
		return
	}
	if envelope.PatientID == "" {
		c.logger.Warn("alert message missing patient_id", zap.String("message_id", message.ID))
		return
	}

	result, err := c.dispatcher.SendEmergencyNotification(ctx, envelope.PatientID, envelope.Alert)
	if err != nil {
		c.logger.Error("failed to dispatch alert notification",
			zap.String("message_id", message.ID),
			zap.String("patient_id", envelope.PatientID),
			zap.Error(err),
		)
		return
	}

	c.logger.Info("alert notification dispatched",
		zap.String("message_id", message.ID),
		zap.String("patient_id", envelope.PatientID),
		zap.Bool("success", result.Success),
	)
}
