package mysql

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	appDomain "github.com/GopalDev98/creditcard-backend/internal/domain/application"
	"github.com/GopalDev98/creditcard-backend/pkg/id"
)

// newTestDB opens an in-memory sqlite DB with the full schema. A single connection
// keeps every goroutine on the same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

var panLetters = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ")

func fakePAN() string {
	b := make([]rune, 0, 10)
	for i := 0; i < 5; i++ {
		b = append(b, panLetters[gofakeit.Number(0, 25)])
	}
	for i := 0; i < 4; i++ {
		b = append(b, rune('0'+gofakeit.Number(0, 9)))
	}
	b = append(b, panLetters[gofakeit.Number(0, 25)])
	return string(b)
}

func makeApplication(number, pan string, status appDomain.Status, submitted time.Time) *appDomain.Application {
	a := &appDomain.Application{
		ApplicationID:     id.NewID32(),
		ApplicationNumber: number,
		PersonalInfo: appDomain.PersonalInfo{
			FullName:    gofakeit.Name(),
			DateOfBirth: time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
			Email:       gofakeit.Email(),
			Phone:       "9876543210",
			PANCard:     pan,
			Address: appDomain.Address{
				Street:  "12 MG Road, Indiranagar",
				City:    "Bengaluru",
				State:   "Karnataka",
				Pincode: "560038",
			},
		},
		EmploymentInfo: appDomain.EmploymentInfo{
			EmploymentType: appDomain.EmploymentSalaried,
			AnnualIncome:   decimal.NewFromInt(250_000),
			CompanyName:    gofakeit.Company(),
			Designation:    "Engineer",
		},
		CreditInfo: appDomain.CreditInfo{
			CreditScore: 850,
			CreditLimit: 75_000,
			RetrievedAt: submitted,
		},
		Status:      appDomain.StatusPending,
		SubmittedAt: submitted,
		StatusHistory: []appDomain.StatusEntry{
			{Status: appDomain.StatusPending, Timestamp: submitted},
		},
	}
	if status != appDomain.StatusPending {
		a.Transition(status, submitted, nil, nil)
	}
	return a
}
