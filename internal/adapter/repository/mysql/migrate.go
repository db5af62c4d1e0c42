package mysql

import (
	appDomain "github.com/GopalDev98/creditcard-backend/internal/domain/application"
	auditDomain "github.com/GopalDev98/creditcard-backend/internal/domain/audit"
	userDomain "github.com/GopalDev98/creditcard-backend/internal/domain/user"

	"gorm.io/gorm"
)

// Migrate creates or updates every table the repositories use.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&appDomain.Application{},
		&appDomain.StatusEntry{},
		&auditDomain.Log{},
		&userDomain.User{},
		&DaySequence{},
	)
}
