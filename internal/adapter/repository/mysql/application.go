package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	appDomain "github.com/GopalDev98/creditcard-backend/internal/domain/application"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplicationRepository struct{ db *gorm.DB }

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Tx runs fn in a db transaction, passing a repo bound to the tx
func (r *ApplicationRepository) Tx(ctx context.Context, fn func(repo appDomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ApplicationRepository{db: tx})
	})
}

// Create inserts the row and its StatusHistory in one statement batch.
func (r *ApplicationRepository) Create(ctx context.Context, a *appDomain.Application) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ApplicationRepository) Save(ctx context.Context, a *appDomain.Application) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(a).Error
}

func (r *ApplicationRepository) AppendHistory(ctx context.Context, e *appDomain.StatusEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *ApplicationRepository) GetByApplicationID(ctx context.Context, applicationID string) (*appDomain.Application, error) {
	return r.first(ctx, "application_id = ?", applicationID)
}

func (r *ApplicationRepository) GetByNumber(ctx context.Context, number string) (*appDomain.Application, error) {
	return r.first(ctx, "application_number = ?", number)
}

func (r *ApplicationRepository) GetDecidedByPANSince(ctx context.Context, pan string, since time.Time) (*appDomain.Application, error) {
	var out appDomain.Application
	res := r.db.WithContext(ctx).
		Where("personal_pan_card = ? AND status IN ? AND submitted_at >= ?",
			pan, []appDomain.Status{appDomain.StatusApproved, appDomain.StatusRejected}, since).
		Order("submitted_at DESC, id DESC").
		First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, appDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *ApplicationRepository) ListByUserID(ctx context.Context, userID string) ([]appDomain.Application, error) {
	var out []appDomain.Application
	res := r.withHistory(ctx).
		Where("user_id = ?", userID).
		Order("submitted_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *ApplicationRepository) List(ctx context.Context, f appDomain.ListFilter) ([]appDomain.Application, error) {
	q := r.withHistory(ctx)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []appDomain.Application
	res := q.Order("submitted_at DESC, id DESC").Find(&out)
	return out, res.Error
}

func (r *ApplicationRepository) MaxNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	var out appDomain.Application
	res := r.db.WithContext(ctx).
		Select("application_number").
		Where("application_number LIKE ?", prefix+"%").
		Order("application_number DESC").
		Limit(1).
		Find(&out)
	if res.Error != nil {
		return "", res.Error
	}
	return out.ApplicationNumber, nil
}

func (r *ApplicationRepository) first(ctx context.Context, query string, args ...any) (*appDomain.Application, error) {
	var out appDomain.Application
	res := r.withHistory(ctx).Where(query, args...).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, appDomain.ErrNotFound)
	}
	return &out, nil
}

// history is replayed in insertion order
func (r *ApplicationRepository) withHistory(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
		return db.Order("application_status_history.id ASC")
	})
}

// notFound keeps gorm.ErrRecordNotFound in the chain and adds the domain sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return err
}
