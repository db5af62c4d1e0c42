package audit

import (
	"time"
)

type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionDispatch Action = "dispatch"
	ActionView     Action = "view"
)

func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionApprove, ActionReject, ActionDispatch, ActionView:
		return true
	}
	return false
}

// Table: audit_logs. Rows are written once and never updated.
type Log struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// Public event identifier (uuid)
	EventID string `gorm:"column:event_id;size:36;not null;uniqueIndex:ux_audit_logs_event_id" json:"id"`
	// Public application id (applications.application_id)
	ApplicationID string         `gorm:"column:application_id;size:32;not null;index:idx_audit_logs_application" json:"applicationId"`
	UserID        *string        `gorm:"column:user_id;size:32;index:idx_audit_logs_user" json:"userId"`
	Action        Action         `gorm:"column:action;size:16;not null;index:idx_audit_logs_action" json:"action"`
	Details       map[string]any `gorm:"column:details;type:text;serializer:json" json:"details"`
	IPAddress     string         `gorm:"column:ip_address;size:45" json:"ipAddress"`
	UserAgent     string         `gorm:"column:user_agent;size:255" json:"userAgent"`
	Timestamp     time.Time      `gorm:"column:logged_at;not null;index:idx_audit_logs_logged_at" json:"timestamp"`
}

func (Log) TableName() string { return "audit_logs" }
