package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OfficerStatus represents the duty status of an officer
type OfficerStatus string

// Predefined OfficerStatus values
const (
	OfficerStatusActive     OfficerStatus = "ACTIVE"
	OfficerStatusOnPatrol   OfficerStatus = "ON_PATROL"
	OfficerStatusInTraining OfficerStatus = "IN_TRAINING"
	OfficerStatusOnLeave    OfficerStatus = "ON_LEAVE"
	OfficerStatusSuspended  OfficerStatus = "SUSPENDED"
)

// ValidOfficerStatuses returns all valid OfficerStatus values
func ValidOfficerStatuses() []OfficerStatus {
	return []OfficerStatus{
		OfficerStatusActive,
		OfficerStatusOnPatrol,
		OfficerStatusInTraining,
		OfficerStatusOnLeave,
		OfficerStatusSuspended,
	}
}

// IsValid checks if the OfficerStatus value is one of the predefined constants
func (s OfficerStatus) IsValid() bool {
	for _, valid := range ValidOfficerStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// CanBeAssigned reports whether an officer in this status may be newly added
// to a case. Already-assigned officers are not evicted when their status
// later changes.
func (s OfficerStatus) CanBeAssigned() bool {
	return s == OfficerStatusActive || s == OfficerStatusOnPatrol || s == OfficerStatusInTraining
}

// String returns the string representation of the OfficerStatus
func (s OfficerStatus) String() string {
	return string(s)
}

// Officer holds the structure for the officer collection in mongo
type Officer struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id"`
	UserID     string             `json:"userId" bson:"userId"`
	Name       string             `json:"name" bson:"name"`
	Badge      string             `json:"badge" bson:"badge"`
	Rank       string             `json:"rank" bson:"rank"`
	Department string             `json:"department" bson:"department"`
	District   string             `json:"district" bson:"district"`
	Status     OfficerStatus      `json:"status" bson:"status"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
	Version    int64              `json:"__v" bson:"__v"`
}

// OfficerSummary is the derived officer shape returned alongside cases
type OfficerSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Badge string `json:"badge"`
}

// Summary returns the derived summary for an officer
func (o Officer) Summary() OfficerSummary {
	return OfficerSummary{
		ID:    o.ID.Hex(),
		Name:  o.Name,
		Badge: o.Badge,
	}
}
