package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/GopalDev98/creditcard-backend/internal/usecase/audit"
)

type AuditUsecase interface {
	List(ctx context.Context, in audit.ListInput) ([]audit.LogDTO, error)
}

type AuditHandler struct{ uc AuditUsecase }

func NewAuditHandler(uc AuditUsecase) *AuditHandler { return &AuditHandler{uc: uc} }

// List is admin-only; the route carries the role gate.
func (h *AuditHandler) List(c echo.Context) error {
	var in audit.ListInput
	if err := bindValid(c, &in, nil); err != nil {
		return err
	}
	logs, err := h.uc.List(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "", map[string]any{"logs": nonNil(logs)})
}
