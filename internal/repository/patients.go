package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// PatientsRepository 患者目录（users 表，只读）
type PatientsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPatientsRepository 创建患者目录仓库
func NewPatientsRepository(db *sql.DB, logger *zap.Logger) *PatientsRepository {
	return &PatientsRepository{
		db:     db,
		logger: logger,
	}
}

// GetPatientName 获取患者显示名称
// 优先 display_name，其次 email；患者不存在时返回空串不报错（由调用方决定缺省值）
func (r *PatientsRepository) GetPatientName(ctx context.Context, patientID string) (string, error) {
	if patientID == "" {
		return "", nil
	}

	var displayName, email sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT display_name, email
		FROM users
		WHERE user_id = $1
	`, patientID).Scan(&displayName, &email)

	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to query patient: %w", err)
	}

	if displayName.Valid && displayName.String != "" {
		return displayName.String, nil
	}
	if email.Valid {
		return email.String, nil
	}
	return "", nil
}
