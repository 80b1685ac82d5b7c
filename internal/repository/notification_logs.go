package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"ecg-notify/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationLogsRepository 派发审计记录仓库（notification_logs 表）
// 只追加：记录写入后不更新、不删除
type NotificationLogsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationLogsRepository 创建审计记录仓库
func NewNotificationLogsRepository(db *sql.DB, logger *zap.Logger) *NotificationLogsRepository {
	return &NotificationLogsRepository{
		db:     db,
		logger: logger,
	}
}

// CreateNotificationLog 写入一条派发审计记录
func (r *NotificationLogsRepository) CreateNotificationLog(ctx context.Context, log *models.NotificationLog) error {
	if log == nil {
		return fmt.Errorf("log is required")
	}
	if log.PatientID == "" {
		return fmt.Errorf("patient_id is required")
	}

	if log.LogID == "" {
		log.LogID = uuid.New().String()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now()
	}
	if len(log.AlertData) == 0 {
		log.AlertData = json.RawMessage("{}")
	}

	query := `
		INSERT INTO notification_logs (
			log_id,
			patient_id,
			alert_type,
			timestamp,
			recipients_count,
			alert_data
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		log.LogID,
		log.PatientID,
		log.AlertType,
		log.Timestamp,
		log.RecipientsCount,
		log.AlertData,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification log: %w", err)
	}

	return nil
}

// ListNotificationLogs 查询患者的派发历史（按时间倒序）
func (r *NotificationLogsRepository) ListNotificationLogs(ctx context.Context, patientID string, limit int) ([]models.NotificationLog, error) {
	if patientID == "" {
		return []models.NotificationLog{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT
			log_id,
			patient_id,
			alert_type,
			timestamp,
			recipients_count,
			alert_data
		FROM notification_logs
		WHERE patient_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notification logs: %w", err)
	}
	defer rows.Close()

	logs := []models.NotificationLog{}
	for rows.Next() {
		var l models.NotificationLog
		var alertData []byte

		err := rows.Scan(
			&l.LogID,
			&l.PatientID,
			&l.AlertType,
			&l.Timestamp,
			&l.RecipientsCount,
			&alertData,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification log: %w", err)
		}

		if len(alertData) > 0 {
			l.AlertData = alertData
		} else {
			l.AlertData = json.RawMessage("{}")
		}

		logs = append(logs, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notification logs: %w", err)
	}

	return logs, nil
}
