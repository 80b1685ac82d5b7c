package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ecg-notify/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LineConnectionRepository LINE 绑定仓库（line_users 表）
type LineConnectionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLineConnectionRepository 创建 LINE 绑定仓库
func NewLineConnectionRepository(db *sql.DB, logger *zap.Logger) *LineConnectionRepository {
	return &LineConnectionRepository{
		db:     db,
		logger: logger,
	}
}

// SaveConnection 保存成员的 LINE 绑定
// 同一 (patient, member) 至多一条激活绑定：先将旧绑定置为 inactive 再插入
func (r *LineConnectionRepository) SaveConnection(ctx context.Context, patientID, memberID, lineUserID string) (*models.LineConnection, error) {
	if patientID == "" {
		return nil, fmt.Errorf("patient_id is required")
	}
	if memberID == "" {
		return nil, fmt.Errorf("care_team_member_id is required")
	}
	if lineUserID == "" {
		return nil, fmt.Errorf("line_user_id is required")
	}

	// 逻辑停用旧绑定（不做物理删除）
	_, err := r.db.ExecContext(ctx, `
		UPDATE line_users
		SET is_active = FALSE
		WHERE patient_id = $1
		  AND care_team_member_id = $2
		  AND is_active = TRUE
	`, patientID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to deactivate previous line connection: %w", err)
	}

	conn := &models.LineConnection{
		ConnectionID:     uuid.New().String(),
		PatientID:        patientID,
		CareTeamMemberID: memberID,
		LineUserID:       lineUserID,
		IsActive:         true,
		ConnectedAt:      time.Now(),
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO line_users (
			connection_id,
			patient_id,
			care_team_member_id,
			line_user_id,
			is_active,
			connected_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`,
		conn.ConnectionID,
		conn.PatientID,
		conn.CareTeamMemberID,
		conn.LineUserID,
		conn.IsActive,
		conn.ConnectedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save line connection: %w", err)
	}

	r.logger.Info("LINE connection saved",
		zap.String("patient_id", patientID),
		zap.String("member_id", memberID),
	)

	return conn, nil
}

// CheckConnection 检查成员是否存在激活的 LINE 绑定
func (r *LineConnectionRepository) CheckConnection(ctx context.Context, patientID, memberID string) (bool, error) {
	if patientID == "" || memberID == "" {
		return false, nil
	}

	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM line_users
			WHERE patient_id = $1
			  AND care_team_member_id = $2
			  AND is_active = TRUE
		)
	`, patientID, memberID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check line connection: %w", err)
	}

	return exists, nil
}

// GetActiveConnections 获取患者所有激活的 LINE 绑定
func (r *LineConnectionRepository) GetActiveConnections(ctx context.Context, patientID string) ([]models.LineConnection, error) {
	if patientID == "" {
		return []models.LineConnection{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			connection_id,
			patient_id,
			care_team_member_id,
			line_user_id,
			is_active,
			connected_at
		FROM line_users
		WHERE patient_id = $1
		  AND is_active = TRUE
	`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query line connections: %w", err)
	}
	defer rows.Close()

	conns := []models.LineConnection{}
	for rows.Next() {
		var c models.LineConnection
		err := rows.Scan(
			&c.ConnectionID,
			&c.PatientID,
			&c.CareTeamMemberID,
			&c.LineUserID,
			&c.IsActive,
			&c.ConnectedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line connection: %w", err)
		}
		conns = append(conns, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate line connections: %w", err)
	}

	return conns, nil
}
