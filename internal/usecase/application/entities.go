package application

import (
	"time"

	domain "github.com/GopalDev98/creditcard-backend/internal/domain/application"
)

// SubmitInput carries an already shape-validated payload.
type SubmitInput struct {
	PersonalInfo   domain.PersonalInfo
	EmploymentInfo domain.EmploymentInfo
}

type UpdateStatusInput struct {
	Status  domain.Status
	Remarks *string
	// nil keeps the current limit
	CreditLimit *int64
}

type ListFilter struct {
	Status domain.Status
	Limit  int
}

type SubmissionDTO struct {
	ApplicationNumber string            `json:"applicationNumber"`
	Status            domain.Status     `json:"status"`
	CreditInfo        domain.CreditInfo `json:"creditInfo"`
	SubmittedAt       time.Time         `json:"submittedAt"`
}

type StatusUpdateDTO struct {
	ApplicationNumber string        `json:"applicationNumber"`
	Status            domain.Status `json:"status"`
	CreditLimit       int64         `json:"creditLimit"`
}

// TrackView is the public projection; it never carries personal or employment data.
type TrackView struct {
	ApplicationNumber string               `json:"applicationNumber"`
	Status            domain.Status        `json:"status"`
	SubmittedAt       time.Time            `json:"submittedAt"`
	ProcessedAt       *time.Time           `json:"processedAt"`
	CreditInfo        domain.CreditInfo    `json:"creditInfo"`
	StatusHistory     []domain.StatusEntry `json:"statusHistory"`
}

func ToSubmission(a *domain.Application) SubmissionDTO {
	return SubmissionDTO{
		ApplicationNumber: a.ApplicationNumber,
		Status:            a.Status,
		CreditInfo:        a.CreditInfo,
		SubmittedAt:       a.SubmittedAt,
	}
}

func ToStatusUpdate(a *domain.Application) StatusUpdateDTO {
	return StatusUpdateDTO{
		ApplicationNumber: a.ApplicationNumber,
		Status:            a.Status,
		CreditLimit:       a.CreditInfo.CreditLimit,
	}
}

func ToTrackView(a *domain.Application) TrackView {
	return TrackView{
		ApplicationNumber: a.ApplicationNumber,
		Status:            a.Status,
		SubmittedAt:       a.SubmittedAt,
		ProcessedAt:       a.ProcessedAt,
		CreditInfo:        a.CreditInfo,
		StatusHistory:     a.StatusHistory,
	}
}
