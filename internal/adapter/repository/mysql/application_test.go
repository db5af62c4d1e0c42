package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	appDomain "github.com/GopalDev98/creditcard-backend/internal/domain/application"
)

func TestApplicationCreateAndGet_WithHistory(t *testing.T) {
	db := newTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

	a := makeApplication("CC2026101500001", fakePAN(), appDomain.StatusApproved, now)
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ID == 0 {
		t.Fatalf("Create did not set auto-increment ID")
	}

	got, err := repo.GetByApplicationID(ctx, a.ApplicationID)
	if err != nil {
		t.Fatalf("GetByApplicationID: %v", err)
	}
	if got.ApplicationNumber != "CC2026101500001" || got.PersonalInfo.PANCard != a.PersonalInfo.PANCard {
		t.Errorf("unexpected application: %+v", got)
	}
	if !got.EmploymentInfo.AnnualIncome.Equal(a.EmploymentInfo.AnnualIncome) {
		t.Errorf("income round trip: got %s", got.EmploymentInfo.AnnualIncome)
	}
	if len(got.StatusHistory) != 2 {
		t.Fatalf("want 2 history entries, got %d", len(got.StatusHistory))
	}
	if got.StatusHistory[0].Status != appDomain.StatusPending || got.StatusHistory[1].Status != appDomain.StatusApproved {
		t.Errorf("history order: %+v", got.StatusHistory)
	}

	byNumber, err := repo.GetByNumber(ctx, "CC2026101500001")
	if err != nil || byNumber.ApplicationID != a.ApplicationID {
		t.Fatalf("GetByNumber: %v %+v", err, byNumber)
	}
}

func TestApplicationGet_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	_, err := repo.GetByApplicationID(ctx, "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee")
	if !errors.Is(err, appDomain.ErrNotFound) || !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("want ErrNotFound wrapping gorm.ErrRecordNotFound, got %v", err)
	}
	_, err = repo.GetByNumber(ctx, "CC2026101599999")
	if !errors.Is(err, appDomain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestApplicationCreate_DuplicateKeys(t *testing.T) {
	db := newTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	pan := fakePAN()
	if err := repo.Create(ctx, makeApplication("CC2026101500001", pan, appDomain.StatusPending, now)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := repo.Create(ctx, makeApplication("CC2026101500002", pan, appDomain.StatusPending, now))
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("same PAN: want ErrDuplicatedKey, got %v", err)
	}

	err = repo.Create(ctx, makeApplication("CC2026101500001", fakePAN(), appDomain.StatusPending, now))
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("same number: want ErrDuplicatedKey, got %v", err)
	}
}

func TestApplicationSaveAndAppendHistory(t *testing.T) {
	db := newTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

	a := makeApplication("CC2026101500001", fakePAN(), appDomain.StatusPending, now)
	a.CreditInfo.CreditLimit = 0
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}

	admin := "ffffffffffffffffffffffffffffffff"
	remarks := "verified income documents"
	e := a.Transition(appDomain.StatusApproved, now.Add(time.Hour), &admin, &remarks)
	a.CreditInfo.CreditLimit = 150_000
	if err := repo.AppendHistory(ctx, &e); err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}
	if err := repo.Save(ctx, a); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByApplicationID(ctx, a.ApplicationID)
	if err != nil {
		t.Fatalf("GetByApplicationID: %v", err)
	}
	if got.Status != appDomain.StatusApproved || got.CreditInfo.CreditLimit != 150_000 {
		t.Errorf("update not persisted: %+v", got)
	}
	if got.ProcessedAt == nil {
		t.Errorf("processedAt not persisted")
	}
	if n := len(got.StatusHistory); n != 2 {
		t.Fatalf("want 2 history entries (Save must not duplicate), got %d", n)
	}
	last := got.StatusHistory[1]
	if last.Status != got.Status || last.UpdatedBy == nil || *last.UpdatedBy != admin || last.Remarks == nil || *last.Remarks != remarks {
		t.Errorf("last entry mismatch: %+v", last)
	}
}

func TestGetDecidedByPANSince(t *testing.T) {
	db := newTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	since := appDomain.DuplicateWindowStart(now)

	decided := fakePAN()
	old := fakePAN()
	pending := fakePAN()
	for _, a := range []*appDomain.Application{
		makeApplication("CC2026051500001", decided, appDomain.StatusRejected, now.AddDate(0, -5, 0)),
		makeApplication("CC2026031500001", old, appDomain.StatusApproved, now.AddDate(0, -7, 0)),
		makeApplication("CC2026101400001", pending, appDomain.StatusPending, now.AddDate(0, 0, -1)),
	} {
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("Create %s: %v", a.ApplicationNumber, err)
		}
	}

	got, err := repo.GetDecidedByPANSince(ctx, decided, since)
	if err != nil {
		t.Fatalf("decided within window: %v", err)
	}
	if got.Status != appDomain.StatusRejected {
		t.Errorf("status = %s", got.Status)
	}

	if _, err := repo.GetDecidedByPANSince(ctx, old, since); !errors.Is(err, appDomain.ErrNotFound) {
		t.Errorf("outside window: want ErrNotFound, got %v", err)
	}
	if _, err := repo.GetDecidedByPANSince(ctx, pending, since); !errors.Is(err, appDomain.ErrNotFound) {
		t.Errorf("pending: want ErrNotFound, got %v", err)
	}
}

func TestListAndListByUserID(t *testing.T) {
	db := newTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	owner := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

	statuses := []appDomain.Status{appDomain.StatusPending, appDomain.StatusApproved, appDomain.StatusRejected, appDomain.StatusApproved}
	for i, s := range statuses {
		a := makeApplication("CC202610150000"+string(rune('1'+i)), fakePAN(), s, base.Add(time.Duration(i)*time.Minute))
		if i%2 == 0 {
			a.UserID = &owner
		}
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, err := repo.List(ctx, appDomain.ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 4 || all[0].ApplicationNumber != "CC2026101500004" {
		t.Fatalf("List order: %d first=%s", len(all), all[0].ApplicationNumber)
	}

	approved, err := repo.List(ctx, appDomain.ListFilter{Status: appDomain.StatusApproved, Limit: 1})
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(approved) != 1 || approved[0].ApplicationNumber != "CC2026101500004" {
		t.Fatalf("filtered list: %+v", approved)
	}
	if len(approved[0].StatusHistory) != 2 {
		t.Errorf("history not preloaded")
	}

	mine, err := repo.ListByUserID(ctx, owner)
	if err != nil {
		t.Fatalf("ListByUserID: %v", err)
	}
	if len(mine) != 2 || mine[0].ApplicationNumber != "CC2026101500003" {
		t.Fatalf("ListByUserID: %+v", mine)
	}
}

func TestMaxNumberWithPrefix(t *testing.T) {
	db := newTestDB(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	got, err := repo.MaxNumberWithPrefix(ctx, "CC20261015")
	if err != nil || got != "" {
		t.Fatalf("empty table: %q %v", got, err)
	}

	for _, n := range []string{"CC2026101500002", "CC2026101500010", "CC2026101600001"} {
		if err := repo.Create(ctx, makeApplication(n, fakePAN(), appDomain.StatusPending, now)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	got, err = repo.MaxNumberWithPrefix(ctx, "CC20261015")
	if err != nil || got != "CC2026101500010" {
		t.Fatalf("got %q %v", got, err)
	}
}
