package application

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GopalDev98/creditcard-backend/internal/domain/user"
)

var (
	ErrNotFound = errors.New("application not found")
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type EmploymentType string

const (
	EmploymentSalaried     EmploymentType = "salaried"
	EmploymentSelfEmployed EmploymentType = "self-employed"
	EmploymentBusiness     EmploymentType = "business"
)

type Address struct {
	Street  string `gorm:"size:200;not null" json:"street"`
	City    string `gorm:"size:50;not null" json:"city"`
	State   string `gorm:"size:50;not null" json:"state"`
	Pincode string `gorm:"size:6;not null" json:"pincode"`
}

type PersonalInfo struct {
	FullName    string    `gorm:"size:100;not null" json:"fullName"`
	DateOfBirth time.Time `gorm:"type:date;not null" json:"dateOfBirth"`
	Email       string    `gorm:"size:254;not null" json:"email"`
	Phone       string    `gorm:"size:16;not null" json:"phone"`
	// Upper-cased; unique across all applications.
	PANCard string  `gorm:"column:pan_card;size:10;not null;uniqueIndex:ux_applications_pan_card" json:"panCard"`
	Address Address `gorm:"embedded;embeddedPrefix:address_" json:"address"`
}

type EmploymentInfo struct {
	EmploymentType EmploymentType  `gorm:"size:20;not null" json:"employmentType"`
	AnnualIncome   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"annualIncome"`
	CompanyName    string          `gorm:"size:100;not null" json:"companyName"`
	Designation    string          `gorm:"size:100;not null" json:"designation"`
}

type CreditInfo struct {
	CreditScore int `gorm:"not null" json:"creditScore"`
	// 0 means no automatic limit was assigned (subjective review).
	CreditLimit int64     `gorm:"not null;default:0" json:"creditLimit"`
	RetrievedAt time.Time `json:"retrievedAt"`
}

// Table: application_status_history. Rows are only ever inserted.
type StatusEntry struct {
	ID            uint64    `gorm:"primaryKey;column:id;autoIncrement" json:"-"`
	ApplicationID uint64    `gorm:"column:application_id;not null;index:idx_status_history_application" json:"-"`
	Status        Status    `gorm:"size:16;not null" json:"status"`
	Timestamp     time.Time `gorm:"not null" json:"timestamp"`
	UpdatedBy     *string   `gorm:"size:32" json:"updatedBy"`
	Remarks       *string   `gorm:"size:500" json:"remarks"`
}

func (StatusEntry) TableName() string { return "application_status_history" }

// Table: applications
type Application struct {
	ID uint64 `gorm:"primaryKey;column:id;autoIncrement" json:"-"`
	// Public identifier (32-char lowercase hex)
	ApplicationID     string  `gorm:"column:application_id;size:32;not null;uniqueIndex:ux_applications_application_id" json:"id"`
	ApplicationNumber string  `gorm:"column:application_number;size:15;not null;uniqueIndex:ux_applications_number" json:"applicationNumber"`
	UserID            *string `gorm:"column:user_id;size:32;index:idx_applications_user" json:"userId"`

	PersonalInfo   PersonalInfo   `gorm:"embedded;embeddedPrefix:personal_" json:"personalInfo"`
	EmploymentInfo EmploymentInfo `gorm:"embedded;embeddedPrefix:employment_" json:"employmentInfo"`
	CreditInfo     CreditInfo     `gorm:"embedded;embeddedPrefix:credit_" json:"creditInfo"`

	Status        Status        `gorm:"size:16;not null;default:'pending';index:idx_applications_status" json:"status"`
	StatusHistory []StatusEntry `gorm:"foreignKey:ApplicationID;references:ID" json:"statusHistory"`

	SubmittedAt  time.Time  `gorm:"not null;index:idx_applications_submitted_at" json:"submittedAt"`
	ProcessedAt  *time.Time `json:"processedAt"`
	DispatchedAt *time.Time `json:"dispatchedAt"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Application) TableName() string { return "applications" }

// Transition moves the application to status and appends the matching history entry.
// Any status may follow any other.
func (a *Application) Transition(status Status, at time.Time, by, remarks *string) StatusEntry {
	e := StatusEntry{
		ApplicationID: a.ID,
		Status:        status,
		Timestamp:     at,
		UpdatedBy:     by,
		Remarks:       remarks,
	}
	a.Status = status
	a.StatusHistory = append(a.StatusHistory, e)
	if status != StatusPending {
		t := at
		a.ProcessedAt = &t
	}
	return e
}

// OwnedBy reports whether userID submitted the application.
func (a *Application) OwnedBy(userID string) bool {
	return a.UserID != nil && userID != "" && *a.UserID == userID
}

// Actor is the authenticated caller.
type Actor struct {
	ID   string
	Role user.Role
}

func (a *Actor) IsAdmin() bool { return a != nil && a.Role == user.RoleAdmin }

// ClientMeta is request metadata copied into audit records.
type ClientMeta struct {
	IPAddress string
	UserAgent string
}
