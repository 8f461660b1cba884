package databases

// go generate: mockery --name DatabaseHelper --name CollectionHelper

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/civicsafe/civic-case-api/core"
	"github.com/civicsafe/civic-case-api/models"
)

const reportName = "reports"

// ReportDatabase persists reports and implements core.ReportStore
type ReportDatabase struct {
	db DatabaseHelper
}

// NewReportDatabase initializes a new instance of report database with the
// provided db connection
func NewReportDatabase(db DatabaseHelper) *ReportDatabase {
	return &ReportDatabase{
		db: db,
	}
}

// FindByID returns the report with the given hex id
func (c *ReportDatabase) FindByID(ctx context.Context, id string) (*models.Report, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, core.NotFound("report %s not found", id)
	}
	report := &models.Report{}
	err = c.db.Collection(reportName).FindOne(ctx, bson.M{"_id": oid}).Decode(report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.NotFound("report %s not found", id)
	}
	if err != nil {
		return nil, core.Internal(err, "failed to load report")
	}
	return report, nil
}

// Save inserts a new report or replaces an existing one with a
// compare-and-swap on the stored version. The losing writer of two concurrent
// saves observes a conflict and may retry with fresh state.
func (c *ReportDatabase) Save(ctx context.Context, report *models.Report) error {
	if report.Version == 0 {
		report.Version = 1
		if _, err := c.db.Collection(reportName).InsertOne(ctx, report); err != nil {
			report.Version = 0
			return core.Internal(err, "failed to persist report")
		}
		return nil
	}

	prev := report.Version
	report.Version = prev + 1
	matched, err := c.db.Collection(reportName).ReplaceOne(ctx, bson.M{"_id": report.ID, "__v": prev}, report)
	if err != nil {
		report.Version = prev
		return core.Internal(err, "failed to persist report")
	}
	if matched == 0 {
		report.Version = prev
		return core.Conflict("report %s was modified concurrently", report.ID.Hex())
	}
	return nil
}

// FindByStatus returns all reports in the given status
func (c *ReportDatabase) FindByStatus(ctx context.Context, status models.ReportStatus) ([]models.Report, error) {
	return c.find(ctx, bson.M{"status": status})
}

// FindByAssignedOfficer returns all reports the given officer is assigned to
func (c *ReportDatabase) FindByAssignedOfficer(ctx context.Context, officerID string) ([]models.Report, error) {
	return c.find(ctx, bson.M{"assignedOfficers": officerID})
}

// FindCreatedBefore returns reports in the given status created before cutoff
func (c *ReportDatabase) FindCreatedBefore(ctx context.Context, status models.ReportStatus, cutoff time.Time) ([]models.Report, error) {
	return c.find(ctx, bson.M{"status": status, "createdAt": bson.M{"$lt": cutoff}})
}

func (c *ReportDatabase) find(ctx context.Context, filter interface{}) ([]models.Report, error) {
	cursor, err := c.db.Collection(reportName).Find(ctx, filter)
	if err != nil {
		return nil, core.Internal(err, "failed to query reports")
	}
	var reports []models.Report
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, core.Internal(err, "failed to decode reports")
	}
	return reports, nil
}
