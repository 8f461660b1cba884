package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/civicsafe/civic-case-api/metrics"
	"github.com/civicsafe/civic-case-api/models"
)

// AssignmentPolicy controls how the conversion treats officer-assignment
// failures: lenient conversions complete without the officers, strict
// conversions roll back
type AssignmentPolicy string

// Predefined AssignmentPolicy values
const (
	PolicyLenient AssignmentPolicy = "lenient"
	PolicyStrict  AssignmentPolicy = "strict"
)

// ParseAssignmentPolicy maps a config value to a policy, defaulting to lenient
func ParseAssignmentPolicy(v string) AssignmentPolicy {
	if strings.EqualFold(v, string(PolicyStrict)) {
		return PolicyStrict
	}
	return PolicyLenient
}

// ConversionCoordinator orchestrates report-to-incident promotion, composing
// the two lifecycle managers and the assignment resolver under one transaction
type ConversionCoordinator struct {
	Reports   *ReportManager
	Incidents *IncidentManager
	Resolver  *OfficerAssignmentResolver
	Tx        TxRunner
	Notifier  Notifier
	Clock     Clock
	IDs       IDProvider
	Policy    AssignmentPolicy
}

// Convert promotes a report into an incident. The incident is created, the
// union of the report's officers and extra officers is assigned, and the
// report is finalized as CONVERTED, all in one atomic unit; an observer never
// sees a CONVERTED report without a persisted incident back-link.
// Notifications go out strictly after commit and are fire-and-forget.
func (c *ConversionCoordinator) Convert(ctx context.Context, reportID, actorID string, input models.ConvertToIncidentInput) (*models.Incident, error) {
	report, err := c.Reports.Reports.FindByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status.IsTerminal() {
		return nil, InvalidOperation("cannot convert a %s report", report.Status)
	}

	originalStatus := report.Status
	unionIDs := dedupe(append(append([]string{}, report.AssignedOfficers...), input.OfficerIDs...))

	var incident *models.Incident
	var assigned []models.Officer
	result := "ok"
	err = c.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		incident, err = c.Incidents.create(ctx, c.buildIncidentInput(report, input.Notes, originalStatus), report.CreatedBy, actorID, false, nil)
		if err != nil {
			return err
		}

		if len(unionIDs) > 0 {
			assigned, err = c.Resolver.Assign(ctx, incident, unionIDs)
			if err != nil {
				if c.Policy == PolicyStrict {
					return err
				}
				// Lenient policy: the conversion completes without the
				// officers that could not be assigned.
				zap.S().Warnw("officer assignment failed during conversion, continuing",
					"reportId", report.ID.Hex(),
					"incidentId", incident.ID.Hex(),
					"officerIds", unionIDs,
					"error", err,
				)
				result = "partial_assignment"
				incident.SetOfficerIDs([]string{})
				assigned = nil
			}
			if len(assigned) > 0 {
				if err := c.Incidents.Incidents.Save(ctx, incident); err != nil {
					return err
				}
			}
		}

		return c.Reports.markConverted(ctx, report, incident.ID.Hex(), input.Notes)
	})
	if err != nil {
		metrics.ConversionsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.ConversionsTotal.WithLabelValues(result).Inc()
	zap.S().Infow("report converted to incident",
		"reportId", report.ID.Hex(),
		"incidentId", incident.ID.Hex(),
		"actor", actorID,
	)

	recipients := []string{report.CreatedBy}
	for _, o := range assigned {
		recipients = append(recipients, o.UserID)
	}
	for _, recipient := range dedupe(recipients) {
		emit(ctx, c.Notifier, c.Clock, c.IDs, models.Notification{
			Recipient: recipient,
			Type:      models.NotificationReportConverted,
			Message:   fmt.Sprintf("Report %q has been promoted to incident %q", report.Title, incident.Title),
			Data: map[string]interface{}{
				"reportId":   report.ID.Hex(),
				"incidentId": incident.ID.Hex(),
			},
		})
	}
	return incident, nil
}

// buildIncidentInput derives the incident-creation input from the source report
func (c *ConversionCoordinator) buildIncidentInput(report *models.Report, notes string, originalStatus models.ReportStatus) models.CreateIncidentInput {
	title := report.Title
	if title == "" {
		title = fmt.Sprintf("Incident from Report #%s", report.ID.Hex())
	}

	var sb strings.Builder
	sb.WriteString(report.Description)
	sb.WriteString(fmt.Sprintf("\n\n--- Converted from report ---\nReport ID: %s\nReport type: %s\nReport status: %s\nReported by: %s",
		report.ID.Hex(), report.Type, originalStatus, report.CreatedBy))
	if notes != "" {
		sb.WriteString("\nConversion notes: " + notes)
	}

	incidentType := strings.ToUpper(strings.TrimSpace(report.Type))
	if incidentType == "" {
		incidentType = "OTHER"
	}

	priority := models.PriorityMedium
	if len(report.AssignedOfficers) > 0 {
		priority = models.PriorityHigh
	}

	return models.CreateIncidentInput{
		Title:        title,
		Description:  sb.String(),
		Location:     report.Location,
		Priority:     priority,
		IncidentType: incidentType,
		Tags: []string{
			"from-report",
			"report-" + report.ID.Hex(),
			"type-" + normalizeTypeTag(report.Type),
		},
		SourceReportID: report.ID.Hex(),
		ReportDetails: &models.ReportDetails{
			Witnesses:           report.Witnesses,
			Evidence:            report.Evidence,
			OriginalDescription: report.Description,
			OriginalType:        report.Type,
			OriginalStatus:      originalStatus,
			ConversionNotes:     notes,
		},
	}
}

// normalizeTypeTag lowercases the free-text report type and collapses it into
// a tag-safe token
func normalizeTypeTag(t string) string {
	t = strings.TrimSpace(strings.ToLower(t))
	if t == "" {
		return "other"
	}
	t = strings.ReplaceAll(t, " ", "-")
	t = strings.ReplaceAll(t, "_", "-")
	return t
}
