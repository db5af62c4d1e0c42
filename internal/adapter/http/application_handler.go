package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/GopalDev98/creditcard-backend/internal/adapter/middleware"
	domain "github.com/GopalDev98/creditcard-backend/internal/domain/application"
	appuc "github.com/GopalDev98/creditcard-backend/internal/usecase/application"
)

type ApplicationUsecase interface {
	Submit(ctx context.Context, in appuc.SubmitInput, actor *domain.Actor, meta domain.ClientMeta) (*domain.Application, error)
	UpdateStatus(ctx context.Context, applicationID string, in appuc.UpdateStatusInput, actor *domain.Actor, meta domain.ClientMeta) (*domain.Application, error)
	GetByID(ctx context.Context, applicationID string, actor *domain.Actor, meta domain.ClientMeta) (*domain.Application, error)
	ListByOwner(ctx context.Context, actor *domain.Actor) ([]domain.Application, error)
	ListAll(ctx context.Context, f appuc.ListFilter, actor *domain.Actor) ([]domain.Application, error)
	Track(ctx context.Context, number string) (*appuc.TrackView, error)
}

type ApplicationHandler struct{ uc ApplicationUsecase }

func NewApplicationHandler(uc ApplicationUsecase) *ApplicationHandler {
	return &ApplicationHandler{uc: uc}
}

type addressReq struct {
	Street  string `json:"street"  validate:"required,min=5,max=200"`
	City    string `json:"city"    validate:"required,min=2,max=50"`
	State   string `json:"state"   validate:"required,min=2,max=50"`
	Pincode string `json:"pincode" validate:"required,pincode"`
}

type personalInfoReq struct {
	FullName    string     `json:"fullName"    validate:"required,min=2,max=100"`
	DateOfBirth string     `json:"dateOfBirth" validate:"required,isodate"`
	Email       string     `json:"email"       validate:"required,email"`
	Phone       string     `json:"phone"       validate:"required,phone"`
	PANCard     string     `json:"panCard"     validate:"required,pan"`
	Address     addressReq `json:"address"     validate:"required"`
}

type employmentInfoReq struct {
	EmploymentType string              `json:"employmentType" validate:"required,oneof=salaried self-employed business"`
	AnnualIncome   decimal.NullDecimal `json:"annualIncome"   validate:"required,gte=0,lte=100000000"`
	CompanyName    string              `json:"companyName"    validate:"required,min=2,max=100"`
	Designation    string              `json:"designation"    validate:"required,min=2,max=100"`
}

type submitApplicationReq struct {
	PersonalInfo   personalInfoReq   `json:"personalInfo"   validate:"required"`
	EmploymentInfo employmentInfoReq `json:"employmentInfo" validate:"required"`
}

func (r *submitApplicationReq) normalize() {
	p := &r.PersonalInfo
	p.FullName = strings.TrimSpace(p.FullName)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Phone = strings.TrimSpace(p.Phone)
	p.PANCard = strings.ToUpper(strings.TrimSpace(p.PANCard))
	p.Address.Street = strings.TrimSpace(p.Address.Street)
	p.Address.City = strings.TrimSpace(p.Address.City)
	p.Address.State = strings.TrimSpace(p.Address.State)
	p.Address.Pincode = strings.TrimSpace(p.Address.Pincode)
	r.EmploymentInfo.CompanyName = strings.TrimSpace(r.EmploymentInfo.CompanyName)
	r.EmploymentInfo.Designation = strings.TrimSpace(r.EmploymentInfo.Designation)
}

func (r *submitApplicationReq) toInput() appuc.SubmitInput {
	p := r.PersonalInfo
	dob, _ := parseDate(p.DateOfBirth) // validated
	return appuc.SubmitInput{
		PersonalInfo: domain.PersonalInfo{
			FullName:    p.FullName,
			DateOfBirth: dob,
			Email:       p.Email,
			Phone:       p.Phone,
			PANCard:     p.PANCard,
			Address: domain.Address{
				Street:  p.Address.Street,
				City:    p.Address.City,
				State:   p.Address.State,
				Pincode: p.Address.Pincode,
			},
		},
		EmploymentInfo: domain.EmploymentInfo{
			EmploymentType: domain.EmploymentType(r.EmploymentInfo.EmploymentType),
			AnnualIncome:   r.EmploymentInfo.AnnualIncome.Decimal,
			CompanyName:    r.EmploymentInfo.CompanyName,
			Designation:    r.EmploymentInfo.Designation,
		},
	}
}

type updateStatusReq struct {
	Status      string  `json:"status"      validate:"required,oneof=pending approved rejected"`
	Remarks     *string `json:"remarks"     validate:"omitempty,max=500"`
	CreditLimit *int64  `json:"creditLimit" validate:"omitempty,gte=0"`
}

type listApplicationsReq struct {
	Status string `query:"status" validate:"omitempty,oneof=pending approved rejected"`
	Limit  int    `query:"limit"  validate:"omitempty,min=1,max=100"`
}

func (h *ApplicationHandler) Submit(c echo.Context) error {
	var req submitApplicationReq
	if err := bindValid(c, &req, req.normalize); err != nil {
		return err
	}
	a, err := h.uc.Submit(c.Request().Context(), req.toInput(), middleware.ActorFrom(c), middleware.ClientMeta(c))
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, "Application submitted successfully", appuc.ToSubmission(a))
}

func (h *ApplicationHandler) Track(c echo.Context) error {
	v, err := h.uc.Track(c.Request().Context(), c.Param("applicationNumber"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "", v)
}

func (h *ApplicationHandler) ListMine(c echo.Context) error {
	apps, err := h.uc.ListByOwner(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "", map[string]any{"applications": nonNil(apps)})
}

func (h *ApplicationHandler) Get(c echo.Context) error {
	a, err := h.uc.GetByID(c.Request().Context(), c.Param("id"), middleware.ActorFrom(c), middleware.ClientMeta(c))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "", a)
}

func (h *ApplicationHandler) List(c echo.Context) error {
	var req listApplicationsReq
	if err := bindValid(c, &req, nil); err != nil {
		return err
	}
	apps, err := h.uc.ListAll(c.Request().Context(),
		appuc.ListFilter{Status: domain.Status(req.Status), Limit: req.Limit}, middleware.ActorFrom(c))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "", map[string]any{"applications": nonNil(apps)})
}

func (h *ApplicationHandler) UpdateStatus(c echo.Context) error {
	var req updateStatusReq
	if err := bindValid(c, &req, nil); err != nil {
		return err
	}
	a, err := h.uc.UpdateStatus(c.Request().Context(), c.Param("id"), appuc.UpdateStatusInput{
		Status:      domain.Status(req.Status),
		Remarks:     req.Remarks,
		CreditLimit: req.CreditLimit,
	}, middleware.ActorFrom(c), middleware.ClientMeta(c))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, "Application status updated successfully", appuc.ToStatusUpdate(a))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
