package databases

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/civicsafe/civic-case-api/core"
	"github.com/civicsafe/civic-case-api/models"
)

const officerName = "officers"

// OfficerDatabase reads officers and implements core.OfficerStore
type OfficerDatabase struct {
	db DatabaseHelper
}

// NewOfficerDatabase initializes a new instance of officer database with the
// provided db connection
func NewOfficerDatabase(db DatabaseHelper) *OfficerDatabase {
	return &OfficerDatabase{
		db: db,
	}
}

// FindByID returns the officer with the given hex id
func (c *OfficerDatabase) FindByID(ctx context.Context, id string) (*models.Officer, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, core.NotFound("officer %s not found", id)
	}
	officer := &models.Officer{}
	err = c.db.Collection(officerName).FindOne(ctx, bson.M{"_id": oid}).Decode(officer)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.NotFound("officer %s not found", id)
	}
	if err != nil {
		return nil, core.Internal(err, "failed to load officer")
	}
	return officer, nil
}

// FindByIDs returns the officers matching the given hex ids. Ids that resolve
// to no officer are simply absent from the result; callers decide whether
// that is an error.
func (c *OfficerDatabase) FindByIDs(ctx context.Context, ids []string) ([]models.Officer, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}
	if len(oids) == 0 {
		return nil, nil
	}
	return c.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

// FindByStatus returns all officers with the given duty status
func (c *OfficerDatabase) FindByStatus(ctx context.Context, status models.OfficerStatus) ([]models.Officer, error) {
	return c.find(ctx, bson.M{"status": status})
}

// FindByDistrict returns all officers in the given district
func (c *OfficerDatabase) FindByDistrict(ctx context.Context, district string) ([]models.Officer, error) {
	return c.find(ctx, bson.M{"district": district})
}

func (c *OfficerDatabase) find(ctx context.Context, filter interface{}) ([]models.Officer, error) {
	cursor, err := c.db.Collection(officerName).Find(ctx, filter)
	if err != nil {
		return nil, core.Internal(err, "failed to query officers")
	}
	var officers []models.Officer
	if err := cursor.All(ctx, &officers); err != nil {
		return nil, core.Internal(err, "failed to decode officers")
	}
	return officers, nil
}
