package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/civicsafe/civic-case-api/api"
	"github.com/civicsafe/civic-case-api/databases"
	"github.com/civicsafe/civic-case-api/models"
)

// Notification handles notification inbox requests
type Notification struct {
	NDB databases.NotificationDatabase
}

// NotificationsHandler returns the authenticated actor's notification inbox
func (n Notification) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	notifications, err := n.NDB.FindByRecipient(ctx, api.ActorID(r))
	if err != nil {
		coreErrorStatus(w, err)
		return
	}

	if notifications == nil {
		notifications = []models.Notification{}
	}
	_ = json.NewEncoder(w).Encode(notifications)
}

// MarkNotificationReadHandler marks one of the actor's notifications as read
func (n Notification) MarkNotificationReadHandler(w http.ResponseWriter, r *http.Request) {
	notificationID := mux.Vars(r)["notification_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := n.NDB.MarkRead(ctx, notificationID, api.ActorID(r)); err != nil {
		coreErrorStatus(w, err)
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]string{"read": notificationID})
}
