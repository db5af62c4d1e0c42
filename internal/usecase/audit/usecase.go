package audit

import (
	"context"

	domain "github.com/GopalDev98/creditcard-backend/internal/domain/audit"
)

const DefaultListLimit = 100

// Usecase serves audit queries.
type Usecase struct{ repo domain.Repository }

func NewUsecase(r domain.Repository) *Usecase { return &Usecase{repo: r} }

func (u *Usecase) List(ctx context.Context, in ListInput) ([]LogDTO, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	logs, err := u.repo.List(ctx, domain.Filter{
		ApplicationID: in.ApplicationID,
		UserID:        in.UserID,
		Action:        in.Action,
		Limit:         limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]LogDTO, 0, len(logs))
	for _, l := range logs {
		out = append(out, toDTO(l))
	}
	return out, nil
}
