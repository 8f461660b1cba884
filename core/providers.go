package core

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Clock supplies the current time. Injected so lifecycle timestamps are
// deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now
type SystemClock struct{}

// Now returns the current UTC time
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// IDProvider supplies new identifiers for entities and timeline entries
type IDProvider interface {
	NewID() string
	NewObjectID() primitive.ObjectID
}

// RandomIDs is the production IDProvider backed by uuid and mongo object ids
type RandomIDs struct{}

// NewID returns a new uuid string
func (RandomIDs) NewID() string {
	return uuid.New().String()
}

// NewObjectID returns a new mongo object id
func (RandomIDs) NewObjectID() primitive.ObjectID {
	return primitive.NewObjectID()
}
