package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/GopalDev98/creditcard-backend/internal/domain/apperr"
	domain "github.com/GopalDev98/creditcard-backend/internal/domain/application"
	auditDomain "github.com/GopalDev98/creditcard-backend/internal/domain/audit"
	"github.com/GopalDev98/creditcard-backend/internal/domain/credit"
	"github.com/GopalDev98/creditcard-backend/internal/domain/uow"
	"github.com/GopalDev98/creditcard-backend/internal/infrastructure/logging"
	"github.com/GopalDev98/creditcard-backend/internal/infrastructure/metrics"
	"github.com/GopalDev98/creditcard-backend/internal/infrastructure/tracing"
	"github.com/GopalDev98/creditcard-backend/internal/usecase/audit"
	"github.com/GopalDev98/creditcard-backend/pkg/id"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 100
)

// Auditor receives best-effort audit entries.
type Auditor interface {
	Record(ctx context.Context, e audit.Entry)
}

type Usecase struct {
	repo    domain.Repository
	uow     uow.UnitOfWork
	seq     domain.Sequencer
	scores  credit.ScoreProvider
	auditor Auditor
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Usecase)

func WithClock(now func() time.Time) Option  { return func(u *Usecase) { u.now = now } }
func WithMetrics(m *metrics.Metrics) Option { return func(u *Usecase) { u.metrics = m } }

// NewUsecase: repo serves reads and submissions, tx runs status updates, seq numbers
// new applications. auditor may be nil.
func NewUsecase(repo domain.Repository, tx uow.UnitOfWork, seq domain.Sequencer, scores credit.ScoreProvider, auditor Auditor, opts ...Option) *Usecase {
	u := &Usecase{
		repo:    repo,
		uow:     tx,
		seq:     seq,
		scores:  scores,
		auditor: auditor,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

var (
	errAuthRequired = apperr.Unauthenticated("Authentication required")
	errAdminOnly    = apperr.Forbidden("Insufficient permissions")
	errNotFound     = apperr.NotFound("Application not found")
)

// Submit runs the decisioning workflow. Nothing is persisted unless every check passes.
func (u *Usecase) Submit(ctx context.Context, in SubmitInput, actor *domain.Actor, meta domain.ClientMeta) (*domain.Application, error) {
	ctx, span := tracing.Tracer().Start(ctx, "application.Submit")
	defer span.End()

	now := u.now()
	pan := strings.ToUpper(strings.TrimSpace(in.PersonalInfo.PANCard))
	log := logging.FromContext(ctx).WithField("pan_suffix", panSuffix(pan))

	if domain.AgeAt(in.PersonalInfo.DateOfBirth, now) < domain.MinimumAge {
		u.metrics.SubmissionRejected(apperr.CodeAgeRequirement)
		return nil, apperr.BusinessRule(apperr.CodeAgeRequirement, "Applicant must be at least 18 years old")
	}

	prior, err := u.repo.GetDecidedByPANSince(ctx, pan, domain.DuplicateWindowStart(now))
	switch {
	case err == nil:
		u.metrics.SubmissionRejected(apperr.CodeDuplicate)
		return nil, apperr.BusinessRule(apperr.CodeDuplicate, fmt.Sprintf(
			"You already have a %s application from the last 6 months. Please wait before applying again.", prior.Status))
	case !errors.Is(err, domain.ErrNotFound):
		tracing.Fail(span, err)
		return nil, fmt.Errorf("duplicate check: %w", err)
	}

	number, err := u.nextNumber(ctx, now)
	if err != nil {
		tracing.Fail(span, err)
		return nil, err
	}

	score, err := u.scores.Score(ctx, pan)
	if err != nil {
		if errors.Is(err, credit.ErrInvalidTaxID) {
			return nil, apperr.Validation("Invalid PAN card", nil)
		}
		tracing.Fail(span, err)
		return nil, fmt.Errorf("credit score: %w", err)
	}
	limit := credit.LimitFor(in.EmploymentInfo.AnnualIncome)
	decision := credit.Decide(score.Value, limit)

	a := newApplication(in, pan, actor, now, score, limit, decision)
	a.ApplicationNumber = number

	for attempt := 0; ; attempt++ {
		err = u.repo.Create(ctx, a)
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			tracing.Fail(span, err)
			return nil, fmt.Errorf("create application: %w", err)
		}
		if !u.numberTaken(ctx, a.ApplicationNumber) {
			return nil, apperr.Conflict("An application with this PAN card already exists", err)
		}
		if attempt > 0 {
			return nil, apperr.Conflict("Application number conflict, please retry", err)
		}
		u.metrics.NumberRetried()
		log.WithField("application_number", a.ApplicationNumber).Warn("application number taken, renumbering")
		if a.ApplicationNumber, err = u.nextNumber(ctx, now); err != nil {
			return nil, err
		}
		resetIDs(a)
	}

	span.SetAttributes(
		attribute.String("application.number", a.ApplicationNumber),
		attribute.String("application.status", string(a.Status)),
		attribute.Int("credit.score", score.Value),
	)
	u.metrics.ApplicationSubmitted(string(a.Status), score.Value)
	log.WithFields(logrus.Fields{
		"application_number": a.ApplicationNumber,
		"status":             a.Status,
		"credit_score":       score.Value,
		"credit_limit":       a.CreditInfo.CreditLimit,
	}).Info("application submitted")

	u.record(ctx, a, actorID(actor), auditDomain.ActionCreate, meta, map[string]any{
		"applicationNumber": a.ApplicationNumber,
		"status":            a.Status,
		"creditScore":       a.CreditInfo.CreditScore,
		"creditLimit":       a.CreditInfo.CreditLimit,
	})
	return a, nil
}

func newApplication(in SubmitInput, pan string, actor *domain.Actor, now time.Time, score credit.Score, limit credit.Limit, decision domain.Status) *domain.Application {
	personal := in.PersonalInfo
	personal.PANCard = pan

	a := &domain.Application{
		ApplicationID:  id.NewID32(),
		PersonalInfo:   personal,
		EmploymentInfo: in.EmploymentInfo,
		CreditInfo: domain.CreditInfo{
			CreditScore: score.Value,
			CreditLimit: limit.Stored(),
			RetrievedAt: score.RetrievedAt,
		},
		Status:        domain.StatusPending,
		SubmittedAt:   now,
		StatusHistory: []domain.StatusEntry{{Status: domain.StatusPending, Timestamp: now}},
	}
	if actor != nil && actor.ID != "" {
		uid := actor.ID
		a.UserID = &uid
	}
	if decision != domain.StatusPending {
		remark := fmt.Sprintf("Auto-%s based on credit score %d", decision, score.Value)
		a.StatusHistory = append(a.StatusHistory, domain.StatusEntry{Status: decision, Timestamp: now, Remarks: &remark})
		a.Status = decision
	}
	if decision == domain.StatusApproved {
		t := now
		a.ProcessedAt = &t
	}
	return a
}

func (u *Usecase) nextNumber(ctx context.Context, now time.Time) (string, error) {
	seq, err := u.seq.Next(ctx, now)
	if err != nil {
		return "", fmt.Errorf("next application number: %w", err)
	}
	return domain.FormatNumber(now, seq)
}

func (u *Usecase) numberTaken(ctx context.Context, number string) bool {
	_, err := u.repo.GetByNumber(ctx, number)
	return err == nil
}

// resetIDs clears keys a failed insert may have assigned.
func resetIDs(a *domain.Application) {
	a.ID = 0
	for i := range a.StatusHistory {
		a.StatusHistory[i].ID = 0
		a.StatusHistory[i].ApplicationID = 0
	}
}

// UpdateStatus is the admin override: any status may follow any other and concurrent
// edits are last-write-wins.
func (u *Usecase) UpdateStatus(ctx context.Context, applicationID string, in UpdateStatusInput, actor *domain.Actor, meta domain.ClientMeta) (*domain.Application, error) {
	ctx, span := tracing.Tracer().Start(ctx, "application.UpdateStatus")
	defer span.End()

	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !in.Status.Valid() {
		return nil, apperr.Validation("Invalid status", nil)
	}
	if in.CreditLimit != nil && *in.CreditLimit < 0 {
		return nil, apperr.Validation("Credit limit must be a positive number", nil)
	}

	now := u.now()
	var updated *domain.Application
	err := u.uow.WithinApplicationTx(ctx, applicationID, func(r uow.Repos, a *domain.Application) error {
		by := actor.ID
		e := a.Transition(in.Status, now, &by, in.Remarks)
		if in.CreditLimit != nil {
			a.CreditInfo.CreditLimit = *in.CreditLimit
		}
		if err := r.Applications.AppendHistory(ctx, &e); err != nil {
			return err
		}
		if err := r.Applications.Save(ctx, a); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errNotFound
		}
		tracing.Fail(span, err)
		return nil, fmt.Errorf("update status: %w", err)
	}

	u.metrics.StatusUpdated(string(updated.Status))
	logging.FromContext(ctx).WithFields(logrus.Fields{
		"application_number": updated.ApplicationNumber,
		"status":             updated.Status,
		"updated_by":         actor.ID,
	}).Info("application status updated")

	action := auditDomain.ActionUpdate
	switch updated.Status {
	case domain.StatusApproved:
		action = auditDomain.ActionApprove
	case domain.StatusRejected:
		action = auditDomain.ActionReject
	}
	details := map[string]any{
		"newStatus":   updated.Status,
		"creditLimit": updated.CreditInfo.CreditLimit,
	}
	if in.Remarks != nil {
		details["remarks"] = *in.Remarks
	}
	u.record(ctx, updated, actor.ID, action, meta, details)
	return updated, nil
}

// GetByID returns the full record. Records of other applicants look absent to non-admins.
func (u *Usecase) GetByID(ctx context.Context, applicationID string, actor *domain.Actor, meta domain.ClientMeta) (*domain.Application, error) {
	if actor == nil {
		return nil, errAuthRequired
	}
	a, err := u.repo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errNotFound
		}
		return nil, err
	}
	if a.OwnedBy(actor.ID) {
		return a, nil
	}
	if !actor.IsAdmin() {
		return nil, errNotFound
	}
	u.record(ctx, a, actor.ID, auditDomain.ActionView, meta, map[string]any{
		"applicationNumber": a.ApplicationNumber,
	})
	return a, nil
}

func (u *Usecase) ListByOwner(ctx context.Context, actor *domain.Actor) ([]domain.Application, error) {
	if actor == nil {
		return nil, errAuthRequired
	}
	return u.repo.ListByUserID(ctx, actor.ID)
}

func (u *Usecase) ListAll(ctx context.Context, f ListFilter, actor *domain.Actor) ([]domain.Application, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperr.Validation("Invalid status filter", nil)
	}
	limit := f.Limit
	if limit <= 0 || limit > MaxListLimit {
		limit = DefaultListLimit
	}
	return u.repo.List(ctx, domain.ListFilter{Status: f.Status, Limit: limit})
}

// Track is public and returns the reduced projection only.
func (u *Usecase) Track(ctx context.Context, number string) (*TrackView, error) {
	a, err := u.repo.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errNotFound
		}
		return nil, err
	}
	v := ToTrackView(a)
	return &v, nil
}

func (u *Usecase) record(ctx context.Context, a *domain.Application, userID string, action auditDomain.Action, meta domain.ClientMeta, details map[string]any) {
	if u.auditor == nil {
		return
	}
	u.auditor.Record(ctx, audit.Entry{
		ApplicationID: a.ApplicationID,
		UserID:        userID,
		Action:        action,
		Details:       details,
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
	})
}

func requireAdmin(actor *domain.Actor) error {
	if actor == nil {
		return errAuthRequired
	}
	if !actor.IsAdmin() {
		return errAdminOnly
	}
	return nil
}

func actorID(a *domain.Actor) string {
	if a == nil {
		return ""
	}
	return a.ID
}

// panSuffix keeps identifiers out of logs.
func panSuffix(pan string) string {
	if len(pan) <= 4 {
		return pan
	}
	return "******" + pan[len(pan)-4:]
}
