package databases

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

const schedulerLockName = "schedulerlocks"

// SchedulerLockDatabase provides a mongo-backed distributed lock so scheduled
// jobs run on exactly one instance
type SchedulerLockDatabase interface {
	TryAcquireLock(ctx context.Context, name, instanceID string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, name, instanceID string) error
}

type schedulerLockDatabase struct {
	db DatabaseHelper
}

type schedulerLock struct {
	Name      string    `bson:"_id"`
	Holder    string    `bson:"holder"`
	ExpiresAt time.Time `bson:"expiresAt"`
}

// NewSchedulerLockDatabase initializes a new instance of scheduler lock
// database with the provided db connection
func NewSchedulerLockDatabase(db DatabaseHelper) SchedulerLockDatabase {
	return &schedulerLockDatabase{
		db: db,
	}
}

// TryAcquireLock attempts to take the named lock. Returns false when another
// live holder owns it.
func (c *schedulerLockDatabase) TryAcquireLock(ctx context.Context, name, instanceID string, ttl time.Duration) (bool, error) {
	now := time.Now().UTC()
	lock := schedulerLock{Name: name, Holder: instanceID, ExpiresAt: now.Add(ttl)}

	if _, err := c.db.Collection(schedulerLockName).InsertOne(ctx, lock); err == nil {
		return true, nil
	}

	// Lock document exists; steal it only if expired.
	matched, err := c.db.Collection(schedulerLockName).UpdateOne(ctx,
		bson.M{"_id": name, "expiresAt": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"holder": instanceID, "expiresAt": lock.ExpiresAt}},
	)
	if err != nil {
		return false, err
	}
	return matched > 0, nil
}

// ReleaseLock releases the named lock if this instance still holds it
func (c *schedulerLockDatabase) ReleaseLock(ctx context.Context, name, instanceID string) error {
	_, err := c.db.Collection(schedulerLockName).DeleteOne(ctx, bson.M{"_id": name, "holder": instanceID})
	return err
}
