package models

import (
	"time"
)

// Role 照护团队成员角色
type Role string

const (
	RoleFamily    Role = "family"
	RoleDoctor    Role = "doctor"
	RoleNurse     Role = "nurse"
	RoleCaregiver Role = "caregiver"
	RoleOther     Role = "other"
)

// roleLabels 角色的泰文标签表
var roleLabels = map[Role]string{
	RoleFamily:    "ครอบครัว",
	RoleDoctor:    "แพทย์",
	RoleNurse:     "พยาบาล",
	RoleCaregiver: "ผู้ดูแล",
}

// Label 返回角色的泰文标签（未知角色归入"其他"）
func (r Role) Label() string {
	if label, ok := roleLabels[r]; ok {
		return label
	}
	return "อื่นๆ"
}

// CareTeamMember 照护团队成员（对应 care_team 表）
type CareTeamMember struct {
	MemberID                  string    `json:"member_id" db:"member_id"`
	PatientID                 string    `json:"patient_id" db:"patient_id"`
	Name                      string    `json:"name" db:"name"`
	Email                     string    `json:"email" db:"email"`
	Phone                     *string   `json:"phone,omitempty" db:"phone"`
	Role                      Role      `json:"role" db:"role"`
	EmailNotificationsEnabled bool      `json:"email_notifications_enabled" db:"email_notifications_enabled"`
	LineNotificationsEnabled  bool      `json:"line_notifications_enabled" db:"line_notifications_enabled"`
	CreatedAt                 time.Time `json:"created_at" db:"created_at"`

	// LineUserID 仅在按 LINE 渠道解析（JOIN line_users）时填充
	LineUserID string `json:"line_user_id,omitempty"`
}
