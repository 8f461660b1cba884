package core

import (
	"context"
	"time"

	"github.com/civicsafe/civic-case-api/models"
)

// ReportStore is the persistence contract for reports. Save must perform a
// compare-and-swap on the entity version and return a Conflict error when the
// stored version moved underneath the caller.
type ReportStore interface {
	FindByID(ctx context.Context, id string) (*models.Report, error)
	Save(ctx context.Context, report *models.Report) error
	FindByStatus(ctx context.Context, status models.ReportStatus) ([]models.Report, error)
	FindByAssignedOfficer(ctx context.Context, officerID string) ([]models.Report, error)
	FindCreatedBefore(ctx context.Context, status models.ReportStatus, cutoff time.Time) ([]models.Report, error)
}

// IncidentStore is the persistence contract for incidents
type IncidentStore interface {
	FindByID(ctx context.Context, id string) (*models.Incident, error)
	Save(ctx context.Context, incident *models.Incident) error
	Delete(ctx context.Context, id string) error
	FindBySourceReportID(ctx context.Context, reportID string) (*models.Incident, error)
	FindByStatus(ctx context.Context, status models.IncidentStatus) ([]models.Incident, error)
	FindByAssignedOfficer(ctx context.Context, officerID string) ([]models.Incident, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]models.Incident, error)
}

// OfficerStore is the read-only persistence contract for officers
type OfficerStore interface {
	FindByID(ctx context.Context, id string) (*models.Officer, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Officer, error)
	FindByStatus(ctx context.Context, status models.OfficerStatus) ([]models.Officer, error)
	FindByDistrict(ctx context.Context, district string) ([]models.Officer, error)
}

// TxRunner executes fn as one atomic unit against the persistence store.
// Multi-entity writes (conversion, delete-with-terminal-update) run through it.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier is the outbound notification sink contract. Implementations must
// never block the calling operation; failures are the implementation's to log.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// Assignable is a case that carries an officer assignment set. Implemented by
// *models.Report and *models.Incident.
type Assignable interface {
	CaseID() string
	CaseKind() string
	OfficerIDs() []string
	SetOfficerIDs(ids []string)
}
