package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportStatus represents the lifecycle status of a report
type ReportStatus string

// Predefined ReportStatus values
const (
	ReportStatusPending    ReportStatus = "PENDING"
	ReportStatusInReview   ReportStatus = "IN_REVIEW"
	ReportStatusInProgress ReportStatus = "IN_PROGRESS"
	ReportStatusResolved   ReportStatus = "RESOLVED"
	ReportStatusRejected   ReportStatus = "REJECTED"
	ReportStatusConverted  ReportStatus = "CONVERTED"
)

// ValidReportStatuses returns all valid ReportStatus values
func ValidReportStatuses() []ReportStatus {
	return []ReportStatus{
		ReportStatusPending,
		ReportStatusInReview,
		ReportStatusInProgress,
		ReportStatusResolved,
		ReportStatusRejected,
		ReportStatusConverted,
	}
}

// IsValid checks if the ReportStatus value is one of the predefined constants
func (s ReportStatus) IsValid() bool {
	for _, valid := range ValidReportStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further status transition is permitted
func (s ReportStatus) IsTerminal() bool {
	return s == ReportStatusResolved || s == ReportStatusRejected || s == ReportStatusConverted
}

// String returns the string representation of the ReportStatus
func (s ReportStatus) String() string {
	return string(s)
}

// Report holds the structure for the report collection in mongo. A report is a
// preliminary, citizen- or officer-submitted account of an event pending triage.
type Report struct {
	ID               primitive.ObjectID `json:"_id" bson:"_id"`
	Title            string             `json:"title" bson:"title"`
	Description      string             `json:"description" bson:"description"`
	Type             string             `json:"type" bson:"type"` // free text, normalized on conversion
	Status           ReportStatus       `json:"status" bson:"status"`
	Priority         Priority           `json:"priority" bson:"priority"`
	Location         Location           `json:"location" bson:"location"`
	Witnesses        []Witness          `json:"witnesses" bson:"witnesses"`
	Evidence         []string           `json:"evidence" bson:"evidence"`
	AssignedOfficers []string           `json:"assignedOfficers" bson:"assignedOfficers"`
	CreatedBy        string             `json:"createdBy" bson:"createdBy"`
	ResolutionNotes  string             `json:"resolutionNotes,omitempty" bson:"resolutionNotes,omitempty"`
	ResolvedAt       *time.Time         `json:"resolvedAt,omitempty" bson:"resolvedAt,omitempty"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updatedAt"`
	Version          int64              `json:"__v" bson:"__v"`
}

// Witness holds a witness statement attached to a report
type Witness struct {
	Name        string `json:"name" bson:"name"`
	ContactInfo string `json:"contactInfo" bson:"contactInfo"`
	Statement   string `json:"statement" bson:"statement"`
}
