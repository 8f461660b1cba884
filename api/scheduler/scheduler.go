package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/civicsafe/civic-case-api/config"
	"github.com/civicsafe/civic-case-api/databases"
	"github.com/civicsafe/civic-case-api/metrics"
	"github.com/civicsafe/civic-case-api/models"
	templates "github.com/civicsafe/civic-case-api/templates/html"
)

// staleReportAge is how long a report may sit in PENDING before it lands in
// the daily triage digest
const staleReportAge = 48 * time.Hour

// Scheduler handles periodic background jobs for case triage
type Scheduler struct {
	cron       *cron.Cron
	RDB        *databases.ReportDatabase
	ODB        *databases.OfficerDatabase
	LockDB     databases.SchedulerLockDatabase
	Config     *config.Config
	instanceID string
}

// New creates a new scheduler instance
func New(rdb *databases.ReportDatabase, odb *databases.OfficerDatabase, lockDB databases.SchedulerLockDatabase, conf *config.Config) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO") // Heroku sets this to "web.1", "web.2", etc.
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		RDB:        rdb,
		ODB:        odb,
		LockDB:     lockDB,
		Config:     conf,
		instanceID: instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Send the stale pending report digest daily at 6 AM UTC
	_, err := s.cron.AddFunc("0 6 * * *", s.sendStaleReportDigest)
	if err != nil {
		zap.S().Errorw("failed to register stale report digest job", "error", err)
	}

	// Refresh the officer availability gauge every 5 minutes
	_, err = s.cron.AddFunc("*/5 * * * *", s.refreshOfficerAvailability)
	if err != nil {
		zap.S().Errorw("failed to register officer availability job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Case triage scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Case triage scheduler stopped")
}

// sendStaleReportDigest emails the admin a digest of reports that have been
// sitting in PENDING past the stale cutoff
func (s *Scheduler) sendStaleReportDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Try to acquire distributed lock (10 minute TTL)
	acquired, err := s.LockDB.TryAcquireLock(ctx, "stale_report_digest", s.instanceID, 10*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for stale report digest", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Stale report digest already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, "stale_report_digest", s.instanceID)

	cutoff := time.Now().UTC().Add(-staleReportAge)
	reports, err := s.RDB.FindCreatedBefore(ctx, models.ReportStatusPending, cutoff)
	if err != nil {
		zap.S().Errorw("failed to find stale pending reports", "error", err)
		return
	}
	if len(reports) == 0 {
		zap.S().Info("No stale pending reports, skipping digest")
		return
	}

	zap.S().Infow("Sending stale report digest",
		"instance", s.instanceID,
		"count", len(reports))

	if err := s.emailDigest(reports); err != nil {
		zap.S().Errorw("failed to send stale report digest", "error", err)
	}
}

func (s *Scheduler) emailDigest(reports []models.Report) error {
	if s.Config.SendgridKey == "" || s.Config.AdminEmail == "" {
		return nil
	}

	body := fmt.Sprintf("%d report(s) have been pending review for over %d hours:<br><br>", len(reports), int(staleReportAge.Hours()))
	for _, report := range reports {
		body += fmt.Sprintf("&bull; %s (created %s)<br>", report.Title, report.CreatedAt.Format("2006-01-02"))
	}

	subject := "[civic-case] Stale pending report digest"
	from := mail.NewEmail("CivicSafe Case Desk", s.Config.FromEmail)
	to := mail.NewEmail("", s.Config.AdminEmail)
	html := templates.RenderGenericEmail(subject, body)
	message := mail.NewSingleEmail(from, subject, to, fmt.Sprintf("%d stale pending reports", len(reports)), html)

	client := sendgrid.NewSendClient(s.Config.SendgridKey)
	resp, err := client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}

// refreshOfficerAvailability updates the per-status officer gauge. No lock is
// taken, the gauge is per-instance and idempotent.
func (s *Scheduler) refreshOfficerAvailability() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, status := range models.ValidOfficerStatuses() {
		officers, err := s.ODB.FindByStatus(ctx, status)
		if err != nil {
			zap.S().Errorw("failed to count officers by status",
				"status", status,
				"error", err)
			continue
		}
		metrics.AvailableOfficers.WithLabelValues(string(status)).Set(float64(len(officers)))
	}
}
