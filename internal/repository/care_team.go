package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ecg-notify/internal/models"

	"go.uber.org/zap"
)

// CareTeamRepository 照护团队仓库
// 按渠道解析有资格接收通知的成员：
//   - email 渠道：email_notifications_enabled 且邮箱非空
//   - line 渠道：line_notifications_enabled 且存在激活的 LINE 绑定
type CareTeamRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCareTeamRepository 创建照护团队仓库
func NewCareTeamRepository(db *sql.DB, logger *zap.Logger) *CareTeamRepository {
	return &CareTeamRepository{
		db:     db,
		logger: logger,
	}
}

// ResolveEmailRecipients 解析 email 渠道的接收成员
// 患者不存在时返回空列表，不报错（与存储层的宽松读取约定一致）
func (r *CareTeamRepository) ResolveEmailRecipients(ctx context.Context, patientID string) ([]models.CareTeamMember, error) {
	if patientID == "" {
		return []models.CareTeamMember{}, nil
	}

	query := `
		SELECT
			member_id,
			patient_id,
			name,
			email,
			phone,
			role,
			email_notifications_enabled,
			line_notifications_enabled,
			created_at
		FROM care_team
		WHERE patient_id = $1
		  AND email_notifications_enabled = TRUE
		  AND email <> ''
	`

	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query email recipients: %w", err)
	}
	defer rows.Close()

	return scanMembers(rows)
}

// ResolveLineRecipients 解析 LINE 渠道的接收成员
// 没有激活绑定的成员即使开启了 LINE 通知也视为不可达
func (r *CareTeamRepository) ResolveLineRecipients(ctx context.Context, patientID string) ([]models.CareTeamMember, error) {
	if patientID == "" {
		return []models.CareTeamMember{}, nil
	}

	query := `
		SELECT
			ct.member_id,
			ct.patient_id,
			ct.name,
			ct.email,
			ct.phone,
			ct.role,
			ct.email_notifications_enabled,
			ct.line_notifications_enabled,
			ct.created_at,
			lu.line_user_id
		FROM care_team ct
		JOIN line_users lu
		  ON lu.patient_id = ct.patient_id
		 AND lu.care_team_member_id = ct.member_id
		 AND lu.is_active = TRUE
		WHERE ct.patient_id = $1
		  AND ct.line_notifications_enabled = TRUE
	`

	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query line recipients: %w", err)
	}
	defer rows.Close()

	members := []models.CareTeamMember{}
	for rows.Next() {
		var m models.CareTeamMember
		var phone sql.NullString

		err := rows.Scan(
			&m.MemberID,
			&m.PatientID,
			&m.Name,
			&m.Email,
			&phone,
			&m.Role,
			&m.EmailNotificationsEnabled,
			&m.LineNotificationsEnabled,
			&m.CreatedAt,
			&m.LineUserID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line recipient: %w", err)
		}

		if phone.Valid {
			m.Phone = &phone.String
		}

		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate line recipients: %w", err)
	}

	return members, nil
}

// scanMembers 扫描不含 line_user_id 的成员行
func scanMembers(rows *sql.Rows) ([]models.CareTeamMember, error) {
	members := []models.CareTeamMember{}
	for rows.Next() {
		var m models.CareTeamMember
		var phone sql.NullString

		err := rows.Scan(
			&m.MemberID,
			&m.PatientID,
			&m.Name,
			&m.Email,
			&phone,
			&m.Role,
			&m.EmailNotificationsEnabled,
			&m.LineNotificationsEnabled,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan care team member: %w", err)
		}

		if phone.Valid {
			m.Phone = &phone.String
		}

		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate care team members: %w", err)
	}

	return members, nil
}
