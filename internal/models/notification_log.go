package models

import (
	"encoding/json"
	"time"
)

// NotificationLog 派发审计记录（对应 notification_logs 表）
// 每次派发在所有渠道发送结束后写入一条，写入后不可变
type NotificationLog struct {
	LogID           string          `json:"log_id" db:"log_id"`
	PatientID       string          `json:"patient_id" db:"patient_id"`
	AlertType       string          `json:"alert_type" db:"alert_type"`
	Timestamp       time.Time       `json:"timestamp" db:"timestamp"`
	RecipientsCount int             `json:"recipients_count" db:"recipients_count"`
	AlertData       json.RawMessage `json:"alert_data" db:"alert_data"` // JSONB，警报载荷快照
}
