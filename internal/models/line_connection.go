package models

import (
	"time"
)

// LineConnection 成员与 LINE 平台用户的绑定（对应 line_users 表）
// LINE User ID 由成员向 bot 发送 "myid" 指令获取后人工录入
// 逻辑删除：is_active = false，不做物理删除
type LineConnection struct {
	ConnectionID     string    `json:"connection_id" db:"connection_id"`
	PatientID        string    `json:"patient_id" db:"patient_id"`
	CareTeamMemberID string    `json:"care_team_member_id" db:"care_team_member_id"`
	LineUserID       string    `json:"line_user_id" db:"line_user_id"`
	IsActive         bool      `json:"is_active" db:"is_active"`
	ConnectedAt      time.Time `json:"connected_at" db:"connected_at"`
}
