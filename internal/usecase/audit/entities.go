package audit

import (
	"time"

	domain "github.com/GopalDev98/creditcard-backend/internal/domain/audit"
)

// Entry is what callers hand to Recorder.Record.
type Entry struct {
	ApplicationID string
	UserID        string // empty for anonymous
	Action        domain.Action
	Details       map[string]any
	IPAddress     string
	UserAgent     string
}

type ListInput struct {
	ApplicationID string        `query:"applicationId"`
	UserID        string        `query:"userId"`
	Action        domain.Action `query:"action" validate:"omitempty,oneof=create update approve reject dispatch view"`
	Limit         int           `query:"limit" validate:"omitempty,min=1,max=1000"`
}

type LogDTO struct {
	ID            string         `json:"id"`
	ApplicationID string         `json:"applicationId"`
	UserID        *string        `json:"userId"`
	Action        domain.Action  `json:"action"`
	Details       map[string]any `json:"details"`
	IPAddress     string         `json:"ipAddress"`
	UserAgent     string         `json:"userAgent"`
	Timestamp     time.Time      `json:"timestamp"`
}

func toDTO(l domain.Log) LogDTO {
	return LogDTO{
		ID:            l.EventID,
		ApplicationID: l.ApplicationID,
		UserID:        l.UserID,
		Action:        l.Action,
		Details:       l.Details,
		IPAddress:     l.IPAddress,
		UserAgent:     l.UserAgent,
		Timestamp:     l.Timestamp,
	}
}
