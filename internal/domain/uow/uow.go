package uow

import (
	"context"

	"github.com/GopalDev98/creditcard-backend/internal/domain/application"
	"github.com/GopalDev98/creditcard-backend/internal/domain/audit"
)

// Repos are bound to the running transaction.
type Repos struct {
	Applications application.Repository
	Audits       audit.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: load the application (with history) first, then pass it in.
	// Returns application.ErrNotFound when it does not exist.
	WithinApplicationTx(ctx context.Context, applicationID string, fn func(r Repos, a *application.Application) error) error
}
