package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/civicsafe/civic-case-api/metrics"
	"github.com/civicsafe/civic-case-api/models"
)

// IncidentManager owns incident creation, status and field updates, the
// append-only update timeline, officer reassignment, and deletion guards
type IncidentManager struct {
	Incidents IncidentStore
	Resolver  *OfficerAssignmentResolver
	Tx        TxRunner
	Notifier  Notifier
	Clock     Clock
	IDs       IDProvider
}

// Get loads an incident by id
func (m *IncidentManager) Get(ctx context.Context, id string) (*models.Incident, error) {
	return m.Incidents.FindByID(ctx, id)
}

// FindBySourceReportID looks up the incident created from the given report,
// via the denormalized back-link
func (m *IncidentManager) FindBySourceReportID(ctx context.Context, reportID string) (*models.Incident, error) {
	return m.Incidents.FindBySourceReportID(ctx, reportID)
}

// Create creates a new incident in REPORTED. Non-empty officerIDs are
// delegated to the assignment resolver; a report-sourced creation carries the
// immutable report details snapshot and back-link on the input.
func (m *IncidentManager) Create(ctx context.Context, input models.CreateIncidentInput, reporterID string, officerIDs []string) (*models.Incident, error) {
	return m.create(ctx, input, reporterID, "", false, officerIDs)
}

// CreateAnonymous creates an incident whose reporter identity, if any, is
// retained internally for audit but never exposed to callers
func (m *IncidentManager) CreateAnonymous(ctx context.Context, input models.CreateIncidentInput, convertedBy string) (*models.Incident, error) {
	return m.create(ctx, input, "", convertedBy, true, input.OfficerIDs)
}

func (m *IncidentManager) create(ctx context.Context, input models.CreateIncidentInput, reporterID, convertedBy string, anonymous bool, officerIDs []string) (*models.Incident, error) {
	if input.Title == "" {
		return nil, Validation("incident title is required")
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !input.Priority.IsValid() {
		return nil, Validation("unknown priority %q", input.Priority)
	}

	now := m.Clock.Now()
	incident := &models.Incident{
		ID:                  m.IDs.NewObjectID(),
		Title:               input.Title,
		Description:         input.Description,
		Location:            input.Location,
		ReportedBy:          reporterID,
		Anonymous:           anonymous,
		ReporterContactInfo: input.ReporterContactInfo,
		ConvertedBy:         convertedBy,
		AssignedOfficers:    []string{},
		Status:              models.IncidentStatusReported,
		Priority:            input.Priority,
		IncidentType:        input.IncidentType,
		Tags:                input.Tags,
		Images:              []string{},
		Updates:             []models.IncidentUpdate{},
		SourceReportID:      input.SourceReportID,
		ReportDetails:       input.ReportDetails,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if incident.Tags == nil {
		incident.Tags = []string{}
	}

	var added []models.Officer
	if len(officerIDs) > 0 {
		var err error
		added, err = m.Resolver.Assign(ctx, incident, officerIDs)
		if err != nil {
			return nil, err
		}
	}

	if err := m.Incidents.Save(ctx, incident); err != nil {
		return nil, err
	}

	for _, o := range added {
		emit(ctx, m.Notifier, m.Clock, m.IDs, models.Notification{
			Recipient: o.UserID,
			Type:      models.NotificationIncidentAssigned,
			Message:   fmt.Sprintf("You have been assigned to incident %q", incident.Title),
			Data:      map[string]interface{}{"incidentId": incident.ID.Hex()},
		})
	}
	return incident, nil
}

// UpdateStatus applies a status change and appends exactly one update entry.
// Incidents have no transition table: operational reopen scenarios require
// arbitrary movement, but regressions are logged for audit review.
func (m *IncidentManager) UpdateStatus(ctx context.Context, id string, newStatus models.IncidentStatus, notes, actorID string) (*models.Incident, error) {
	if !newStatus.IsValid() {
		return nil, Validation("unknown incident status %q", newStatus)
	}

	incident, err := m.Incidents.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	old := incident.Status
	m.applyStatusChange(incident, newStatus, notes, actorID)
	if err := m.Incidents.Save(ctx, incident); err != nil {
		return nil, err
	}
	metrics.IncidentTransitionsTotal.WithLabelValues(old.String(), newStatus.String()).Inc()

	if !incident.Anonymous && incident.ReportedBy != "" {
		emit(ctx, m.Notifier, m.Clock, m.IDs, models.Notification{
			Recipient: incident.ReportedBy,
			Type:      models.NotificationIncidentStatus,
			Message:   fmt.Sprintf("Incident %q is now %s", incident.Title, incident.Status),
			Data:      map[string]interface{}{"incidentId": incident.ID.Hex(), "status": incident.Status.String()},
		})
	}
	return incident, nil
}

// applyStatusChange mutates status, timeline, and resolution date in memory.
// Shared by UpdateStatus and the aggregated Update path.
func (m *IncidentManager) applyStatusChange(incident *models.Incident, newStatus models.IncidentStatus, notes, actorID string) {
	old := incident.Status
	if newStatus.IsRegressionFrom(old) {
		metrics.AnomalousTransitionsTotal.Inc()
		zap.S().Warnw("anomalous incident status transition",
			"incidentId", incident.ID.Hex(),
			"from", old,
			"to", newStatus,
			"actor", actorID,
		)
	}

	now := m.Clock.Now()
	incident.Status = newStatus
	incident.UpdatedAt = now

	content := fmt.Sprintf("Status changed from %s to %s", old, newStatus)
	if notes != "" {
		content += ": " + notes
	}
	incident.Updates = append(incident.Updates, models.IncidentUpdate{
		ID:        m.IDs.NewID(),
		Content:   content,
		Status:    newStatus,
		Notes:     notes,
		UpdatedBy: actorID,
		CreatedAt: now,
	})

	if newStatus == models.IncidentStatusResolved || newStatus == models.IncidentStatusClosed {
		incident.ResolutionDate = &now
		if notes != "" {
			incident.ResolutionNotes = notes
		}
	}
}

// Update applies a partial update. Each changed field contributes to a single
// aggregated timeline entry; a status change gets its own dedicated entry. A
// call that changes nothing returns the unmodified entity.
func (m *IncidentManager) Update(ctx context.Context, id string, input models.UpdateIncidentInput, actorID string) (*models.Incident, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, Validation("unknown incident status %q", *input.Status)
	}
	if input.Priority != nil && !input.Priority.IsValid() {
		return nil, Validation("unknown priority %q", *input.Priority)
	}

	incident, err := m.Incidents.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if incident.Status == models.IncidentStatusClosed || incident.Status == models.IncidentStatusResolved {
		return nil, Conflict("cannot update a %s incident", incident.Status)
	}

	oldStatus := incident.Status
	statusChanged := input.Status != nil && *input.Status != incident.Status
	priorityChanged := input.Priority != nil && *input.Priority != incident.Priority
	officersChanged := input.OfficerIDs != nil && !sameSet(input.OfficerIDs, incident.AssignedOfficers)
	hasEvidence := len(input.EvidenceUrls) > 0
	hasNotes := input.Notes != ""

	if !statusChanged && !priorityChanged && !officersChanged && !hasEvidence && !hasNotes {
		return incident, nil
	}

	var changed []string
	var added []models.Officer
	if priorityChanged {
		changed = append(changed, fmt.Sprintf("priority changed from %s to %s", incident.Priority, *input.Priority))
		incident.Priority = *input.Priority
	}
	if officersChanged {
		added, err = m.Resolver.Assign(ctx, incident, input.OfficerIDs)
		if err != nil {
			return nil, err
		}
		changed = append(changed, "assigned officers updated")
	}
	if hasEvidence {
		changed = append(changed, fmt.Sprintf("%d evidence item(s) added", len(input.EvidenceUrls)))
	}
	if hasNotes && len(changed) == 0 && !statusChanged {
		changed = append(changed, "notes added")
	}

	now := m.Clock.Now()
	if len(changed) > 0 {
		incident.Updates = append(incident.Updates, models.IncidentUpdate{
			ID:           m.IDs.NewID(),
			Content:      "Incident updated: " + strings.Join(changed, "; "),
			Status:       incident.Status,
			Notes:        input.Notes,
			EvidenceUrls: input.EvidenceUrls,
			UpdatedBy:    actorID,
			CreatedAt:    now,
		})
	}
	if statusChanged {
		m.applyStatusChange(incident, *input.Status, input.Notes, actorID)
	}
	incident.UpdatedAt = m.Clock.Now()

	if err := m.Incidents.Save(ctx, incident); err != nil {
		return nil, err
	}
	if statusChanged {
		metrics.IncidentTransitionsTotal.WithLabelValues(oldStatus.String(), incident.Status.String()).Inc()
	}

	for _, o := range added {
		emit(ctx, m.Notifier, m.Clock, m.IDs, models.Notification{
			Recipient: o.UserID,
			Type:      models.NotificationIncidentAssigned,
			Message:   fmt.Sprintf("You have been assigned to incident %q", incident.Title),
			Data:      map[string]interface{}{"incidentId": incident.ID.Hex()},
		})
	}
	if statusChanged && !incident.Anonymous && incident.ReportedBy != "" {
		emit(ctx, m.Notifier, m.Clock, m.IDs, models.Notification{
			Recipient: incident.ReportedBy,
			Type:      models.NotificationIncidentStatus,
			Message:   fmt.Sprintf("Incident %q is now %s", incident.Title, incident.Status),
			Data:      map[string]interface{}{"incidentId": incident.ID.Hex(), "status": incident.Status.String()},
		})
	}
	return incident, nil
}

// Reassign transfers the incident from one assigned officer to another and
// appends exactly one handoff entry to the timeline
func (m *IncidentManager) Reassign(ctx context.Context, id, fromOfficerID string, input models.ReassignInput, actorID string) (*models.Incident, error) {
	if input.ToOfficerID == "" {
		return nil, Validation("target officer id is required")
	}

	incident, err := m.Incidents.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	to, err := m.Resolver.Reassign(ctx, incident, fromOfficerID, input.ToOfficerID)
	if err != nil {
		return nil, err
	}

	now := m.Clock.Now()
	content := fmt.Sprintf("Case reassigned from officer %s to officer %s", fromOfficerID, input.ToOfficerID)
	if input.Notes != "" {
		content += ": " + input.Notes
	}
	incident.Updates = append(incident.Updates, models.IncidentUpdate{
		ID:        m.IDs.NewID(),
		Content:   content,
		Status:    incident.Status,
		Notes:     input.Notes,
		UpdatedBy: actorID,
		CreatedAt: now,
	})
	incident.UpdatedAt = now

	if err := m.Incidents.Save(ctx, incident); err != nil {
		return nil, err
	}

	emit(ctx, m.Notifier, m.Clock, m.IDs, models.Notification{
		Recipient: to.UserID,
		Type:      models.NotificationIncidentReassigned,
		Message:   fmt.Sprintf("Incident %q has been handed off to you", incident.Title),
		Data:      map[string]interface{}{"incidentId": incident.ID.Hex()},
	})
	return incident, nil
}

// Delete physically removes an incident. Incidents under investigation or
// already resolved cannot be deleted. Relations are cleared and a terminal
// timeline entry is persisted before removal, in one transaction.
func (m *IncidentManager) Delete(ctx context.Context, id string) error {
	incident, err := m.Incidents.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if incident.Status == models.IncidentStatusUnderInvestigation || incident.Status == models.IncidentStatusResolved {
		return Conflict("cannot delete a %s incident", incident.Status)
	}

	now := m.Clock.Now()
	incident.Tags = []string{}
	incident.AssignedOfficers = []string{}
	incident.Images = []string{}
	incident.Updates = append(incident.Updates, models.IncidentUpdate{
		ID:        m.IDs.NewID(),
		Content:   "Incident has been deleted",
		Status:    incident.Status,
		UpdatedBy: "",
		CreatedAt: now,
	})
	incident.UpdatedAt = now

	return m.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := m.Incidents.Save(ctx, incident); err != nil {
			return err
		}
		return m.Incidents.Delete(ctx, incident.ID.Hex())
	})
}

// sameSet compares two id slices ignoring order and duplicates
func sameSet(a, b []string) bool {
	as := make(map[string]bool, len(a))
	for _, id := range a {
		as[id] = true
	}
	bs := make(map[string]bool, len(b))
	for _, id := range b {
		bs[id] = true
	}
	if len(as) != len(bs) {
		return false
	}
	for id := range as {
		if !bs[id] {
			return false
		}
	}
	return true
}
