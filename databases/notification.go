package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/civicsafe/civic-case-api/core"
	"github.com/civicsafe/civic-case-api/models"
)

const notificationName = "notifications"

// NotificationDatabase contains the methods to use with the notification
// database
type NotificationDatabase interface {
	Insert(ctx context.Context, n models.Notification) error
	FindByRecipient(ctx context.Context, recipient string) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, recipient string) error
}

type notificationDatabase struct {
	db DatabaseHelper
}

// NewNotificationDatabase initializes a new instance of notification database
// with the provided db connection
func NewNotificationDatabase(db DatabaseHelper) NotificationDatabase {
	return &notificationDatabase{
		db: db,
	}
}

func (c *notificationDatabase) Insert(ctx context.Context, n models.Notification) error {
	if _, err := c.db.Collection(notificationName).InsertOne(ctx, n); err != nil {
		return core.Internal(err, "failed to persist notification")
	}
	return nil
}

func (c *notificationDatabase) FindByRecipient(ctx context.Context, recipient string) ([]models.Notification, error) {
	cursor, err := c.db.Collection(notificationName).Find(ctx, bson.M{"recipient": recipient})
	if err != nil {
		return nil, core.Internal(err, "failed to query notifications")
	}
	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, core.Internal(err, "failed to decode notifications")
	}
	return notifications, nil
}

func (c *notificationDatabase) MarkRead(ctx context.Context, id, recipient string) error {
	matched, err := c.db.Collection(notificationName).UpdateOne(ctx,
		bson.M{"id": id, "recipient": recipient},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return core.Internal(err, "failed to mark notification read")
	}
	if matched == 0 {
		return core.NotFound("notification %s not found", id)
	}
	return nil
}
