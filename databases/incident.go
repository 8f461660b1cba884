package databases

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

const incidentName = "incidents"

// IncidentDatabase persists incidents and implements core.IncidentStore
type IncidentDatabase struct {
	db DatabaseHelper
}

// NewIncidentDatabase initializes a new instance of incident database with the
// provided db connection
func NewIncidentDatabase(db DatabaseHelper) *IncidentDatabase {
	return &IncidentDatabase{
		db: db,
	}
}

// FindByID returns the incident with the given hex id
func (c *IncidentDatabase) FindByID(ctx context.Context, id string) (*models.Incident, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, core.NotFound("incident %s not found", id)
	}
	incident := &models.Incident{}
	err = c.db.Collection(incidentName).FindOne(ctx, bson.M{"_id": oid}).Decode(incident)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.NotFound("incident %s not found", id)
	}
	if err != nil {
		return nil, core.Internal(err, "failed to load incident")
	}
	return incident, nil
}

// Save inserts a new incident or replaces an existing one with a
// compare-and-swap on the stored version
func (c *IncidentDatabase) Save(ctx context.Context, incident *models.Incident) error {
	if incident.Version == 0 {
		incident.Version = 1
		if _, err := c.db.Collection(incidentName).InsertOne(ctx, incident); err != nil {
			incident.Version = 0
			return core.Internal(err, "failed to persist incident")
		}
		return nil
	}

	prev := incident.Version
	incident.Version = prev + 1
	matched, err := c.db.Collection(incidentName).ReplaceOne(ctx, bson.M{"_id": incident.ID, "__v": prev}, incident)
	if err != nil {
		incident.Version = prev
		return core.Internal(err, "failed to persist incident")
	}
	if matched == 0 {
		incident.Version = prev
		return core.Conflict("incident %s was modified concurrently", incident.ID.Hex())
	}
	return nil
}

// Delete physically removes the incident with the given hex id
func (c *IncidentDatabase) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return core.NotFound("incident %s not found", id)
	}
	deleted, err := c.db.Collection(incidentName).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return core.Internal(err, "failed to delete incident")
	}
	if deleted == 0 {
		return core.NotFound("incident %s not found", id)
	}
	return nil
}

// FindBySourceReportID looks up the incident holding the denormalized
// back-link to the given report
func (c *IncidentDatabase) FindBySourceReportID(ctx context.Context, reportID string) (*models.Incident, error) {
	incident := &models.Incident{}
	err := c.db.Collection(incidentName).FindOne(ctx, bson.M{"sourceReportId": reportID}).Decode(incident)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.NotFound("no incident converted from report %s", reportID)
	}
	if err != nil {
		return nil, core.Internal(err, "failed to load incident")
	}
	return incident, nil
}

// FindByStatus returns all incidents in the given status
func (c *IncidentDatabase) FindByStatus(ctx context.Context, status models.IncidentStatus) ([]models.Incident, error) {
	return c.find(ctx, bson.M{"status": status})
}

// FindByAssignedOfficer returns all incidents the given officer is assigned to
func (c *IncidentDatabase) FindByAssignedOfficer(ctx context.Context, officerID string) ([]models.Incident, error) {
	return c.find(ctx, bson.M{"assignedOfficers": officerID})
}

// FindByDateRange returns incidents created inside [from, to)
func (c *IncidentDatabase) FindByDateRange(ctx context.Context, from, to time.Time) ([]models.Incident, error) {
	return c.find(ctx, bson.M{"createdAt": bson.M{"$gte": from, "$lt": to}})
}

func (c *IncidentDatabase) find(ctx context.Context, filter interface{}) ([]models.Incident, error) {
	cursor, err := c.db.Collection(incidentName).Find(ctx, filter)
	if err != nil {
		return nil, core.Internal(err, "failed to query incidents")
	}
	var incidents []models.Incident
	if err := cursor.All(ctx, &incidents); err != nil {
		return nil, core.Internal(err, "failed to decode incidents")
	}
	return incidents, nil
}
