package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicsafe/civic-case-api/models"
)

func TestResolver_FindAvailable(t *testing.T) {
	assigned := newOfficer("carol", models.OfficerStatusActive)
	excluded := newOfficer("dave", models.OfficerStatusActive)
	alice := newOfficer("alice", models.OfficerStatusActive)
	bob := newOfficer("bob", models.OfficerStatusActive)
	onLeave := newOfficer("erin", models.OfficerStatusOnLeave)
	r := NewOfficerAssignmentResolver(newFakeOfficerStore(assigned, excluded, alice, bob, onLeave))

	incident := newTestIncident(models.IncidentStatusReported, assigned.ID.Hex())

	got, err := r.FindAvailable(context.Background(), &incident, excluded.ID.Hex())
	require.NoError(t, err)

	// only unassigned ACTIVE officers, ordered by name
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].Name)
	assert.Equal(t, "bob", got[1].Name)

	// repeated calls return the same order
	again, err := r.FindAvailable(context.Background(), &incident, excluded.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestResolver_FindAvailableNameTieBreaksOnID(t *testing.T) {
	a := newOfficer("jordan", models.OfficerStatusActive)
	b := newOfficer("jordan", models.OfficerStatusActive)
	r := NewOfficerAssignmentResolver(newFakeOfficerStore(a, b))

	incident := newTestIncident(models.IncidentStatusReported)
	got, err := r.FindAvailable(context.Background(), &incident, "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Less(t, got[0].ID.Hex(), got[1].ID.Hex())
}

func TestResolver_AssignReplacesFullSet(t *testing.T) {
	old := newOfficer("alice", models.OfficerStatusActive)
	next := newOfficer("bob", models.OfficerStatusActive)
	r := NewOfficerAssignmentResolver(newFakeOfficerStore(old, next))

	report := newTestReport(models.ReportStatusInReview, old.ID.Hex())
	added, err := r.Assign(context.Background(), &report, []string{next.ID.Hex()})
	require.NoError(t, err)

	// old is dropped, not merged
	assert.Equal(t, []string{next.ID.Hex()}, report.AssignedOfficers)
	require.Len(t, added, 1)
	assert.Equal(t, next.ID.Hex(), added[0].ID.Hex())
}

func TestResolver_AssignDeduplicates(t *testing.T) {
	alice := newOfficer("alice", models.OfficerStatusActive)
	r := NewOfficerAssignmentResolver(newFakeOfficerStore(alice))

	report := newTestReport(models.ReportStatusPending)
	added, err := r.Assign(context.Background(), &report, []string{alice.ID.Hex(), alice.ID.Hex()})
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID.Hex()}, report.AssignedOfficers)
	assert.Len(t, added, 1)
}

func TestResolver_AssignMissingOfficersNamed(t *testing.T) {
	alice := newOfficer("alice", models.OfficerStatusActive)
	r := NewOfficerAssignmentResolver(newFakeOfficerStore(alice))

	report := newTestReport(models.ReportStatusPending)
	_, err := r.Assign(context.Background(), &report, []string{alice.ID.Hex(), "aaaaaaaaaaaaaaaaaaaaaaaa", "bbbbbbbbbbbbbbbbbbbbbbbb"})
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Contains(t, err.Error(), "aaaaaaaaaaaaaaaaaaaaaaaa")
	assert.Contains(t, err.Error(), "bbbbbbbbbbbbbbbbbbbbbbbb")
	assert.Empty(t, report.AssignedOfficers)
}

func TestResolver_AssignUnavailableNewOfficer(t *testing.T) {
	suspended := newOfficer("alice", models.OfficerStatusSuspended)
	r := NewOfficerAssignmentResolver(newFakeOfficerStore(suspended))

	report := newTestReport(models.ReportStatusPending)
	_, err := r.Assign(context.Background(), &report, []string{suspended.ID.Hex()})
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestResolver_AssignKeepsAlreadyAssignedUnavailableOfficer(t *testing.T) {
	// an officer who went on leave after being assigned stays assignable as
	// part of the existing set
	onLeave := newOfficer("alice", models.OfficerStatusOnLeave)
	bob := newOfficer("bob", models.OfficerStatusActive)
	r := NewOfficerAssignmentResolver(newFakeOfficerStore(onLeave, bob))

	report := newTestReport(models.ReportStatusInReview, onLeave.ID.Hex())
	added, err := r.Assign(context.Background(), &report, []string{onLeave.ID.Hex(), bob.ID.Hex()})
	require.NoError(t, err)
	assert.Equal(t, []string{onLeave.ID.Hex(), bob.ID.Hex()}, report.AssignedOfficers)
	require.Len(t, added, 1)
	assert.Equal(t, bob.ID.Hex(), added[0].ID.Hex())
}

func TestResolver_Reassign(t *testing.T) {
	from := newOfficer("alice", models.OfficerStatusActive)
	stays := newOfficer("bob", models.OfficerStatusActive)
	to := newOfficer("carol", models.OfficerStatusOnPatrol)
	r := NewOfficerAssignmentResolver(newFakeOfficerStore(from, stays, to))

	incident := newTestIncident(models.IncidentStatusInProgress, from.ID.Hex(), stays.ID.Hex())
	got, err := r.Reassign(context.Background(), &incident, from.ID.Hex(), to.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, to.ID.Hex(), got.ID.Hex())
	assert.Equal(t, []string{stays.ID.Hex(), to.ID.Hex()}, incident.AssignedOfficers)
}

func TestResolver_ReassignFromNotAssigned(t *testing.T) {
	outsider := newOfficer("alice", models.OfficerStatusActive)
	to := newOfficer("bob", models.OfficerStatusActive)
	r := NewOfficerAssignmentResolver(newFakeOfficerStore(outsider, to))

	incident := newTestIncident(models.IncidentStatusInProgress)
	_, err := r.Reassign(context.Background(), &incident, outsider.ID.Hex(), to.ID.Hex())
	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestResolver_ReassignToUnavailableOfficer(t *testing.T) {
	from := newOfficer("alice", models.OfficerStatusActive)
	to := newOfficer("bob", models.OfficerStatusSuspended)
	r := NewOfficerAssignmentResolver(newFakeOfficerStore(from, to))

	incident := newTestIncident(models.IncidentStatusInProgress, from.ID.Hex())
	_, err := r.Reassign(context.Background(), &incident, from.ID.Hex(), to.ID.Hex())
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, []string{from.ID.Hex()}, incident.AssignedOfficers)
}

func TestResolver_ReassignToAlreadyAssignedOfficer(t *testing.T) {
	from := newOfficer("alice", models.OfficerStatusActive)
	to := newOfficer("bob", models.OfficerStatusActive)
	r := NewOfficerAssignmentResolver(newFakeOfficerStore(from, to))

	incident := newTestIncident(models.IncidentStatusInProgress, from.ID.Hex(), to.ID.Hex())
	_, err := r.Reassign(context.Background(), &incident, from.ID.Hex(), to.ID.Hex())
	require.NoError(t, err)
	// no duplicate entry for the receiver
	assert.Equal(t, []string{to.ID.Hex()}, incident.AssignedOfficers)
}
