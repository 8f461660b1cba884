package dispatch

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/civicsafe/civic-case-api/config"
	"github.com/civicsafe/civic-case-api/databases"
	"github.com/civicsafe/civic-case-api/metrics"
	"github.com/civicsafe/civic-case-api/models"
	templates "github.com/civicsafe/civic-case-api/templates/html"
)

// Dispatcher consumes notification events emitted by the core after commit
// and delivers them best-effort: a notification document for the recipient's
// inbox, a websocket push, and an email for admin-channel events. Delivery is
// at-most-once; a full queue drops the event rather than block the caller.
type Dispatcher struct {
	NDB    databases.NotificationDatabase
	Hub    *Hub
	Config *config.Config

	queue chan models.Notification
	stop  chan struct{}
}

// NewDispatcher creates a dispatcher with a bounded queue
func NewDispatcher(ndb databases.NotificationDatabase, hub *Hub, conf *config.Config) *Dispatcher {
	return &Dispatcher{
		NDB:    ndb,
		Hub:    hub,
		Config: conf,
		queue:  make(chan models.Notification, 1000),
		stop:   make(chan struct{}),
	}
}

// Start launches the background delivery goroutine
func (d *Dispatcher) Start() {
	go d.run()
}

// Stop signals the delivery goroutine to exit
func (d *Dispatcher) Stop() {
	close(d.stop)
}

// Notify enqueues a notification without blocking. When the queue is full the
// event is dropped and an error is returned for the caller to log.
func (d *Dispatcher) Notify(ctx context.Context, n models.Notification) error {
	select {
	case d.queue <- n:
		return nil
	default:
		metrics.NotificationsTotal.WithLabelValues(string(n.Type), "dropped").Inc()
		return fmt.Errorf("notification queue full, event dropped")
	}
}

func (d *Dispatcher) run() {
	for {
		select {
		case n := <-d.queue:
			d.deliver(n)
		case <-d.stop:
			return
		}
	}
}

func (d *Dispatcher) deliver(n models.Notification) {
	ctx := context.Background()
	result := "ok"

	if err := d.NDB.Insert(ctx, n); err != nil {
		zap.S().Errorw("failed to store notification", "id", n.ID, "error", err)
		result = "store_failed"
	}

	if n.Broadcast() {
		d.Hub.Broadcast(string(n.Type), n)
		if err := d.sendAdminEmail(n); err != nil {
			zap.S().Errorw("failed to email admin channel", "id", n.ID, "error", err)
			result = "email_failed"
		}
	} else {
		d.Hub.Send(n.Recipient, n)
	}

	metrics.NotificationsTotal.WithLabelValues(string(n.Type), result).Inc()
}

// sendAdminEmail mails admin-channel events to the configured admin address
func (d *Dispatcher) sendAdminEmail(n models.Notification) error {
	if d.Config.SendgridKey == "" || d.Config.AdminEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("[civic-case] %s", n.Type)
	from := mail.NewEmail("CivicSafe Case Desk", d.Config.FromEmail)
	to := mail.NewEmail("", d.Config.AdminEmail)
	html := templates.RenderGenericEmail(subject, n.Message)
	message := mail.NewSingleEmail(from, subject, to, n.Message, html)

	client := sendgrid.NewSendClient(d.Config.SendgridKey)
	resp, err := client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}
