package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicsafe/civic-case-api/models"
)

func TestConvert(t *testing.T) {
	existing := newOfficer("alice", models.OfficerStatusActive)
	extra := newOfficer("bob", models.OfficerStatusOnPatrol)
	report := newTestReport(models.ReportStatusInReview, existing.ID.Hex())
	reports := newFakeReportStore(report)
	incidents := newFakeIncidentStore()
	notifier := &fakeNotifier{}
	c := newCoordinator(reports, incidents, newFakeOfficerStore(existing, extra), notifier, PolicyLenient)

	incident, err := c.Convert(context.Background(), report.ID.Hex(), "supervisor-1", models.ConvertToIncidentInput{
		Notes:      "needs investigation",
		OfficerIDs: []string{extra.ID.Hex()},
	})
	require.NoError(t, err)

	// report finalized as CONVERTED with a back-reference in its notes
	converted := reports.get(report.ID.Hex())
	assert.Equal(t, models.ReportStatusConverted, converted.Status)
	require.NotNil(t, converted.ResolvedAt)
	assert.Equal(t, "Converted to Incident #"+incident.ID.Hex()+": needs investigation", converted.ResolutionNotes)

	// incident carries the back-link, snapshot, and officer union
	assert.Equal(t, models.IncidentStatusReported, incident.Status)
	assert.Equal(t, report.ID.Hex(), incident.SourceReportID)
	assert.Equal(t, "supervisor-1", incident.ConvertedBy)
	assert.Equal(t, report.CreatedBy, incident.ReportedBy)
	assert.ElementsMatch(t, []string{existing.ID.Hex(), extra.ID.Hex()}, incident.AssignedOfficers)
	assert.Equal(t, models.PriorityHigh, incident.Priority)
	assert.Equal(t, "INFRASTRUCTURE", incident.IncidentType)
	assert.ElementsMatch(t, []string{
		"from-report",
		"report-" + report.ID.Hex(),
		"type-infrastructure",
	}, incident.Tags)

	require.NotNil(t, incident.ReportDetails)
	assert.Equal(t, report.Description, incident.ReportDetails.OriginalDescription)
	assert.Equal(t, report.Type, incident.ReportDetails.OriginalType)
	assert.Equal(t, models.ReportStatusInReview, incident.ReportDetails.OriginalStatus)
	assert.Equal(t, "needs investigation", incident.ReportDetails.ConversionNotes)

	// the stored incident resolves by the source report id
	stored, err := incidents.FindBySourceReportID(context.Background(), report.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, incident.ID, stored.ID)

	// reporter and both assigned officers are told, once each
	sent := notifier.byType(models.NotificationReportConverted)
	recipients := make([]string, 0, len(sent))
	for _, n := range sent {
		recipients = append(recipients, n.Recipient)
	}
	assert.ElementsMatch(t, []string{report.CreatedBy, existing.UserID, extra.UserID}, recipients)
}

func TestConvertTerminalReport(t *testing.T) {
	for _, terminal := range []models.ReportStatus{models.ReportStatusResolved, models.ReportStatusRejected, models.ReportStatusConverted} {
		report := newTestReport(terminal)
		reports := newFakeReportStore(report)
		incidents := newFakeIncidentStore()
		c := newCoordinator(reports, incidents, newFakeOfficerStore(), &fakeNotifier{}, PolicyLenient)

		_, err := c.Convert(context.Background(), report.ID.Hex(), "supervisor-1", models.ConvertToIncidentInput{})
		assert.Equal(t, KindInvalidOperation, KindOf(err), "terminal status %s", terminal)
		assert.Equal(t, 0, incidents.count())
	}
}

func TestConvertTwice(t *testing.T) {
	report := newTestReport(models.ReportStatusPending)
	reports := newFakeReportStore(report)
	incidents := newFakeIncidentStore()
	c := newCoordinator(reports, incidents, newFakeOfficerStore(), &fakeNotifier{}, PolicyLenient)

	_, err := c.Convert(context.Background(), report.ID.Hex(), "supervisor-1", models.ConvertToIncidentInput{})
	require.NoError(t, err)

	_, err = c.Convert(context.Background(), report.ID.Hex(), "supervisor-1", models.ConvertToIncidentInput{})
	assert.Equal(t, KindInvalidOperation, KindOf(err))
	assert.Equal(t, 1, incidents.count())
}

func TestConvertWithoutOfficers(t *testing.T) {
	report := newTestReport(models.ReportStatusPending)
	reports := newFakeReportStore(report)
	incidents := newFakeIncidentStore()
	c := newCoordinator(reports, incidents, newFakeOfficerStore(), &fakeNotifier{}, PolicyLenient)

	incident, err := c.Convert(context.Background(), report.ID.Hex(), "supervisor-1", models.ConvertToIncidentInput{})
	require.NoError(t, err)
	assert.Empty(t, incident.AssignedOfficers)
	assert.Equal(t, models.PriorityMedium, incident.Priority)
}

func TestConvertLenientPolicyToleratesAssignmentFailure(t *testing.T) {
	report := newTestReport(models.ReportStatusPending)
	reports := newFakeReportStore(report)
	incidents := newFakeIncidentStore()
	notifier := &fakeNotifier{}
	c := newCoordinator(reports, incidents, newFakeOfficerStore(), notifier, PolicyLenient)

	incident, err := c.Convert(context.Background(), report.ID.Hex(), "supervisor-1", models.ConvertToIncidentInput{
		OfficerIDs: []string{"ffffffffffffffffffffffff"},
	})
	require.NoError(t, err)

	// the conversion completes without the unresolvable officer
	assert.Empty(t, incident.AssignedOfficers)
	assert.Equal(t, models.ReportStatusConverted, reports.get(report.ID.Hex()).Status)

	// only the reporter is notified
	sent := notifier.byType(models.NotificationReportConverted)
	require.Len(t, sent, 1)
	assert.Equal(t, report.CreatedBy, sent[0].Recipient)
}

func TestConvertStrictPolicyFailsOnAssignmentFailure(t *testing.T) {
	report := newTestReport(models.ReportStatusPending)
	reports := newFakeReportStore(report)
	incidents := newFakeIncidentStore()
	c := newCoordinator(reports, incidents, newFakeOfficerStore(), &fakeNotifier{}, PolicyStrict)

	_, err := c.Convert(context.Background(), report.ID.Hex(), "supervisor-1", models.ConvertToIncidentInput{
		OfficerIDs: []string{"ffffffffffffffffffffffff"},
	})
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, models.ReportStatusPending, reports.get(report.ID.Hex()).Status)
}

func TestConvertMissingReport(t *testing.T) {
	c := newCoordinator(newFakeReportStore(), newFakeIncidentStore(), newFakeOfficerStore(), &fakeNotifier{}, PolicyLenient)

	_, err := c.Convert(context.Background(), "ffffffffffffffffffffffff", "supervisor-1", models.ConvertToIncidentInput{})
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestParseAssignmentPolicy(t *testing.T) {
	assert.Equal(t, PolicyStrict, ParseAssignmentPolicy("strict"))
	assert.Equal(t, PolicyStrict, ParseAssignmentPolicy("STRICT"))
	assert.Equal(t, PolicyLenient, ParseAssignmentPolicy("lenient"))
	assert.Equal(t, PolicyLenient, ParseAssignmentPolicy(""))
	assert.Equal(t, PolicyLenient, ParseAssignmentPolicy("unknown"))
}

func TestNormalizeTypeTag(t *testing.T) {
	assert.Equal(t, "noise-complaint", normalizeTypeTag("Noise Complaint"))
	assert.Equal(t, "petty-theft", normalizeTypeTag("petty_theft"))
	assert.Equal(t, "other", normalizeTypeTag("  "))
}
