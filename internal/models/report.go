package models

import "time"

// ReportStatus tracks the handling of a user report.
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportReviewed  ReportStatus = "reviewed"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// Valid reports whether the status is known.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportReviewed, ReportResolved, ReportDismissed:
		return true
	default:
		return false
	}
}

// ReportTypes lists the accepted report categories.
var ReportTypes = []string{"spam", "fraud", "inappropriate", "duplicate", "wrong_category", "other"}

// Report flags an ad or a message for moderator attention. Exactly one of
// AdID and MessageID is set.
type Report struct {
	BaseModel

	ReporterID string       `gorm:"type:varchar(36);not null;index" json:"reporter_id"`
	AdID       *string      `gorm:"type:varchar(36);index" json:"ad_id,omitempty"`
	MessageID  *string      `gorm:"type:varchar(36);index" json:"message_id,omitempty"`
	Type       string       `gorm:"size:32;not null" json:"type"`
	Reason     string       `gorm:"type:text;not null" json:"reason"`
	Status     ReportStatus `gorm:"type:varchar(16);not null;default:pending;index" json:"status"`
	AdminNotes string       `gorm:"type:text" json:"admin_notes,omitempty"`
	HandledBy  *string      `gorm:"type:varchar(36)" json:"handled_by,omitempty"`
	HandledAt  *time.Time   `json:"handled_at,omitempty"`
}
