package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IncidentStatus represents the investigative status of an incident
type IncidentStatus string

// Predefined IncidentStatus values
const (
	IncidentStatusReported           IncidentStatus = "REPORTED"
	IncidentStatusUnderInvestigation IncidentStatus = "UNDER_INVESTIGATION"
	IncidentStatusInProgress         IncidentStatus = "IN_PROGRESS"
	IncidentStatusResolved           IncidentStatus = "RESOLVED"
	IncidentStatusClosed             IncidentStatus = "CLOSED"
)

// ValidIncidentStatuses returns all valid IncidentStatus values
func ValidIncidentStatuses() []IncidentStatus {
	return []IncidentStatus{
		IncidentStatusReported,
		IncidentStatusUnderInvestigation,
		IncidentStatusInProgress,
		IncidentStatusResolved,
		IncidentStatusClosed,
	}
}

// IsValid checks if the IncidentStatus value is one of the predefined constants
func (s IncidentStatus) IsValid() bool {
	for _, valid := range ValidIncidentStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// String returns the string representation of the IncidentStatus
func (s IncidentStatus) String() string {
	return string(s)
}

// rank orders incident statuses by how far along the investigation is.
// Used only to flag apparent regressions for audit, never to block them.
func (s IncidentStatus) rank() int {
	switch s {
	case IncidentStatusReported:
		return 0
	case IncidentStatusUnderInvestigation:
		return 1
	case IncidentStatusInProgress:
		return 2
	case IncidentStatusResolved:
		return 3
	case IncidentStatusClosed:
		return 4
	}
	return -1
}

// IsRegressionFrom reports whether moving from old to s walks the investigation
// backwards (e.g. CLOSED back to REPORTED)
func (s IncidentStatus) IsRegressionFrom(old IncidentStatus) bool {
	return s.rank() < old.rank()
}

// Incident holds the structure for the incident collection in mongo. An
// incident is a formalized, investigable case, either created directly or
// promoted from a report.
type Incident struct {
	ID                  primitive.ObjectID `json:"_id" bson:"_id"`
	Title               string             `json:"title" bson:"title"`
	Description         string             `json:"description" bson:"description"`
	Location            Location           `json:"location" bson:"location"`
	ReportedBy          string             `json:"reportedBy,omitempty" bson:"reportedBy,omitempty"`
	Anonymous           bool               `json:"anonymous" bson:"anonymous"`
	ReporterContactInfo string             `json:"reporterContactInfo,omitempty" bson:"reporterContactInfo,omitempty"`
	ConvertedBy         string             `json:"convertedBy,omitempty" bson:"convertedBy,omitempty"`
	AssignedOfficers    []string           `json:"assignedOfficers" bson:"assignedOfficers"`
	Status              IncidentStatus     `json:"status" bson:"status"`
	Priority            Priority           `json:"priority" bson:"priority"`
	IncidentType        string             `json:"incidentType" bson:"incidentType"`
	Tags                []string           `json:"tags" bson:"tags"`
	Images              []string           `json:"images" bson:"images"`
	Updates             []IncidentUpdate   `json:"updates" bson:"updates"` // append-only, ordered by createdAt
	ResolutionDate      *time.Time         `json:"resolutionDate,omitempty" bson:"resolutionDate,omitempty"`
	ResolutionNotes     string             `json:"resolutionNotes,omitempty" bson:"resolutionNotes,omitempty"`
	SourceReportID      string             `json:"sourceReportId,omitempty" bson:"sourceReportId,omitempty"`
	ReportDetails       *ReportDetails     `json:"reportDetails,omitempty" bson:"reportDetails,omitempty"`
	CreatedAt           time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt" bson:"updatedAt"`
	Version             int64              `json:"__v" bson:"__v"`
}

// IncidentUpdate is a single immutable entry on an incident's update timeline
type IncidentUpdate struct {
	ID           string         `json:"id" bson:"id"`
	Content      string         `json:"content" bson:"content"`
	Status       IncidentStatus `json:"status" bson:"status"` // snapshot of Incident.Status at the time
	Notes        string         `json:"notes,omitempty" bson:"notes,omitempty"`
	EvidenceUrls []string       `json:"evidenceUrls,omitempty" bson:"evidenceUrls,omitempty"`
	UpdatedBy    string         `json:"updatedBy" bson:"updatedBy"`
	CreatedAt    time.Time      `json:"createdAt" bson:"createdAt"`
}

// ReportDetails is the immutable snapshot of the source report, taken at
// conversion time
type ReportDetails struct {
	Witnesses           []Witness    `json:"witnesses" bson:"witnesses"`
	Evidence            []string     `json:"evidence" bson:"evidence"`
	OriginalDescription string       `json:"originalDescription" bson:"originalDescription"`
	OriginalType        string       `json:"originalType" bson:"originalType"`
	OriginalStatus      ReportStatus `json:"originalStatus" bson:"originalStatus"`
	ConversionNotes     string       `json:"conversionNotes,omitempty" bson:"conversionNotes,omitempty"`
}
