package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/civicsafe/civic-case-api/metrics"
	"github.com/civicsafe/civic-case-api/models"
)

// reportTransitions is the legal transition table for reports. Terminal
// statuses have no entry. CONVERTED appears as a target but is reachable only
// through the conversion coordinator, never a direct status update.
var reportTransitions = map[models.ReportStatus][]models.ReportStatus{
	models.ReportStatusPending: {
		models.ReportStatusInReview,
		models.ReportStatusInProgress,
		models.ReportStatusResolved,
		models.ReportStatusRejected,
		models.ReportStatusConverted,
	},
	models.ReportStatusInReview: {
		models.ReportStatusInProgress,
		models.ReportStatusResolved,
		models.ReportStatusRejected,
		models.ReportStatusConverted,
	},
	models.ReportStatusInProgress: {
		models.ReportStatusResolved,
		models.ReportStatusRejected,
		models.ReportStatusConverted,
	},
}

// canTransitionReport reports whether from -> to is in the transition table
func canTransitionReport(from, to models.ReportStatus) bool {
	for _, allowed := range reportTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ReportManager owns report creation, status transitions, and officer
// assignment on reports
type ReportManager struct {
	Reports  ReportStore
	Resolver *OfficerAssignmentResolver
	Notifier Notifier
	Clock    Clock
	IDs      IDProvider
}

// Create creates a new report in PENDING and announces it on the admin channel
func (m *ReportManager) Create(ctx context.Context, input models.CreateReportInput, reporterID string) (*models.Report, error) {
	if input.Title == "" {
		return nil, Validation("report title is required")
	}
	if reporterID == "" {
		return nil, Validation("reporter id is required")
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !input.Priority.IsValid() {
		return nil, Validation("unknown priority %q", input.Priority)
	}

	now := m.Clock.Now()
	report := &models.Report{
		ID:               m.IDs.NewObjectID(),
		Title:            input.Title,
		Description:      input.Description,
		Type:             input.Type,
		Status:           models.ReportStatusPending,
		Priority:         input.Priority,
		Location:         input.Location,
		Witnesses:        input.Witnesses,
		Evidence:         input.Evidence,
		AssignedOfficers: []string{},
		CreatedBy:        reporterID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := m.Reports.Save(ctx, report); err != nil {
		return nil, err
	}

	emit(ctx, m.Notifier, m.Clock, m.IDs, models.Notification{
		Recipient: models.AdminChannel,
		Type:      models.NotificationNewReport,
		Message:   fmt.Sprintf("New report: %s", report.Title),
		Data:      map[string]interface{}{"reportId": report.ID.Hex()},
	})
	return report, nil
}

// UpdateStatus validates and applies a report status transition. Requesting
// the current status is a successful no-op that leaves timestamps untouched.
// CONVERTED is rejected here; only the conversion coordinator sets it.
func (m *ReportManager) UpdateStatus(ctx context.Context, id string, input models.UpdateReportStatusInput, actorID string) (*models.Report, error) {
	if !input.Status.IsValid() {
		return nil, Validation("unknown report status %q", input.Status)
	}

	report, err := m.Reports.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Status == report.Status {
		return report, nil
	}
	if input.Status == models.ReportStatusConverted {
		return nil, InvalidTransition("report status CONVERTED is set only by conversion")
	}
	if !canTransitionReport(report.Status, input.Status) {
		return nil, InvalidTransition("cannot transition report from %s to %s", report.Status, input.Status)
	}

	from := report.Status
	now := m.Clock.Now()
	report.Status = input.Status
	report.UpdatedAt = now
	if input.Notes != "" {
		report.ResolutionNotes = input.Notes
	}
	if input.Status == models.ReportStatusResolved || input.Status == models.ReportStatusRejected {
		report.ResolvedAt = &now
	}
	if err := m.Reports.Save(ctx, report); err != nil {
		return nil, err
	}
	metrics.ReportTransitionsTotal.WithLabelValues(from.String(), report.Status.String()).Inc()
	zap.S().Infow("report status updated",
		"reportId", report.ID.Hex(),
		"from", from,
		"to", report.Status,
		"actor", actorID,
	)

	emit(ctx, m.Notifier, m.Clock, m.IDs, models.Notification{
		Recipient: report.CreatedBy,
		Type:      models.NotificationReportStatus,
		Message:   fmt.Sprintf("Your report %q is now %s", report.Title, report.Status),
		Data:      map[string]interface{}{"reportId": report.ID.Hex(), "status": report.Status.String()},
	})
	return report, nil
}

// AssignOfficers replaces the report's full assignment set and notifies only
// the officers newly present compared to the prior set
func (m *ReportManager) AssignOfficers(ctx context.Context, id string, input models.AssignOfficersInput, actorID string) (*models.Report, error) {
	if len(input.OfficerIDs) == 0 {
		return nil, Validation("officer ids must not be empty")
	}

	report, err := m.Reports.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.Status.IsTerminal() {
		return nil, Conflict("cannot assign officers to a %s report", report.Status)
	}

	added, err := m.Resolver.Assign(ctx, report, input.OfficerIDs)
	if err != nil {
		return nil, err
	}
	report.UpdatedAt = m.Clock.Now()
	if err := m.Reports.Save(ctx, report); err != nil {
		return nil, err
	}

	for _, o := range added {
		emit(ctx, m.Notifier, m.Clock, m.IDs, models.Notification{
			Recipient: o.UserID,
			Type:      models.NotificationReportAssigned,
			Message:   fmt.Sprintf("You have been assigned to report %q", report.Title),
			Data:      map[string]interface{}{"reportId": report.ID.Hex()},
		})
	}
	return report, nil
}

// markConverted finalizes a report as CONVERTED, linking the created incident.
// Called by the conversion coordinator inside its transaction, after the
// incident exists, so no converted-but-unlinked state is ever observable.
func (m *ReportManager) markConverted(ctx context.Context, report *models.Report, incidentID string, notes string) error {
	now := m.Clock.Now()
	from := report.Status
	report.Status = models.ReportStatusConverted
	report.ResolvedAt = &now
	report.UpdatedAt = now
	report.ResolutionNotes = fmt.Sprintf("Converted to Incident #%s", incidentID)
	if notes != "" {
		report.ResolutionNotes += ": " + notes
	}
	if err := m.Reports.Save(ctx, report); err != nil {
		return err
	}
	metrics.ReportTransitionsTotal.WithLabelValues(from.String(), report.Status.String()).Inc()
	return nil
}
