package models

import "time"

// NotificationType tags the kind of event a notification carries
type NotificationType string

// Predefined NotificationType values
const (
	NotificationNewReport          NotificationType = "NEW_REPORT"
	NotificationReportStatus       NotificationType = "REPORT_STATUS"
	NotificationReportAssigned     NotificationType = "REPORT_ASSIGNED"
	NotificationReportConverted    NotificationType = "REPORT_CONVERTED"
	NotificationIncidentStatus     NotificationType = "INCIDENT_STATUS"
	NotificationIncidentUpdated    NotificationType = "INCIDENT_UPDATED"
	NotificationIncidentAssigned   NotificationType = "INCIDENT_ASSIGNED"
	NotificationIncidentReassigned NotificationType = "INCIDENT_REASSIGNED"
)

// AdminChannel is the broadcast recipient for the admin notification channel
const AdminChannel = "admin"

// Notification is a single best-effort message to a recipient or to the admin
// broadcast channel. Delivery is at-most-once from the core's perspective.
type Notification struct {
	ID        string                 `json:"id" bson:"id"`
	Recipient string                 `json:"recipient" bson:"recipient"` // user id, or AdminChannel for broadcast
	Type      NotificationType       `json:"type" bson:"type"`
	Message   string                 `json:"message" bson:"message"`
	Data      map[string]interface{} `json:"data,omitempty" bson:"data,omitempty"`
	Read      bool                   `json:"read" bson:"read"`
	CreatedAt time.Time              `json:"createdAt" bson:"createdAt"`
}

// Broadcast reports whether the notification targets the admin channel rather
// than a single recipient
func (n Notification) Broadcast() bool {
	return n.Recipient == AdminChannel
}
