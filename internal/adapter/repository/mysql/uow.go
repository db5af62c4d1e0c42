package mysql

import (
	"context"

	appDomain "github.com/GopalDev98/creditcard-backend/internal/domain/application"
	"github.com/GopalDev98/creditcard-backend/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

// WithinApplicationTx loads the application inside the transaction. No row lock is
// taken: concurrent admin edits are last-write-wins.
func (u *GormUoW) WithinApplicationTx(ctx context.Context, applicationID string, fn func(r uow.Repos, a *appDomain.Application) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		a, err := r.Applications.GetByApplicationID(ctx, applicationID)
		if err != nil {
			return err
		}
		return fn(r, a)
	})
}

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Applications: &ApplicationRepository{db: tx},
		Audits:       &AuditRepository{db: tx},
	}
}
