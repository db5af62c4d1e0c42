package mysql

import (
	"context"

	auditDomain "github.com/GopalDev98/creditcard-backend/internal/domain/audit"

	"gorm.io/gorm"
)

type AuditRepository struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) *AuditRepository { return &AuditRepository{db: db} }

func (r *AuditRepository) Create(ctx context.Context, l *auditDomain.Log) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *AuditRepository) List(ctx context.Context, f auditDomain.Filter) ([]auditDomain.Log, error) {
	q := r.db.WithContext(ctx)
	if f.ApplicationID != "" {
		q = q.Where("application_id = ?", f.ApplicationID)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []auditDomain.Log
	res := q.Order("logged_at DESC, id DESC").Find(&out)
	return out, res.Error
}
