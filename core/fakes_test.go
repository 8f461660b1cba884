package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/civicsafe/civic-case-api/models"
)

// in-memory store fakes used across the core tests

type fakeReportStore struct {
	mu      sync.Mutex
	reports map[string]models.Report
	saveErr error
}

func newFakeReportStore(reports ...models.Report) *fakeReportStore {
	s := &fakeReportStore{reports: map[string]models.Report{}}
	for _, r := range reports {
		s.reports[r.ID.Hex()] = r
	}
	return s
}

func (s *fakeReportStore) FindByID(ctx context.Context, id string) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, NotFound("report %s not found", id)
	}
	return &r, nil
}

func (s *fakeReportStore) Save(ctx context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	report.Version++
	s.reports[report.ID.Hex()] = *report
	return nil
}

func (s *fakeReportStore) FindByStatus(ctx context.Context, status models.ReportStatus) ([]models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Report
	for _, r := range s.reports {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeReportStore) FindByAssignedOfficer(ctx context.Context, officerID string) ([]models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Report
	for _, r := range s.reports {
		for _, id := range r.AssignedOfficers {
			if id == officerID {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func (s *fakeReportStore) FindCreatedBefore(ctx context.Context, status models.ReportStatus, cutoff time.Time) ([]models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Report
	for _, r := range s.reports {
		if r.Status == status && r.CreatedAt.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeReportStore) get(id string) models.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reports[id]
}

type fakeIncidentStore struct {
	mu        sync.Mutex
	incidents map[string]models.Incident
	saveErr   error
}

func newFakeIncidentStore(incidents ...models.Incident) *fakeIncidentStore {
	s := &fakeIncidentStore{incidents: map[string]models.Incident{}}
	for _, i := range incidents {
		s.incidents[i.ID.Hex()] = i
	}
	return s
}

func (s *fakeIncidentStore) FindByID(ctx context.Context, id string) (*models.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.incidents[id]
	if !ok {
		return nil, NotFound("incident %s not found", id)
	}
	return &i, nil
}

func (s *fakeIncidentStore) Save(ctx context.Context, incident *models.Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	incident.Version++
	s.incidents[incident.ID.Hex()] = *incident
	return nil
}

func (s *fakeIncidentStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.incidents[id]; !ok {
		return NotFound("incident %s not found", id)
	}
	delete(s.incidents, id)
	return nil
}

func (s *fakeIncidentStore) FindBySourceReportID(ctx context.Context, reportID string) (*models.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, i := range s.incidents {
		if i.SourceReportID == reportID {
			i := i
			return &i, nil
		}
	}
	return nil, NotFound("no incident for report %s", reportID)
}

func (s *fakeIncidentStore) FindByStatus(ctx context.Context, status models.IncidentStatus) ([]models.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Incident
	for _, i := range s.incidents {
		if i.Status == status {
			out = append(out, i)
		}
	}
	return out, nil
}

func (s *fakeIncidentStore) FindByAssignedOfficer(ctx context.Context, officerID string) ([]models.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Incident
	for _, i := range s.incidents {
		for _, id := range i.AssignedOfficers {
			if id == officerID {
				out = append(out, i)
				break
			}
		}
	}
	return out, nil
}

func (s *fakeIncidentStore) FindByDateRange(ctx context.Context, from, to time.Time) ([]models.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Incident
	for _, i := range s.incidents {
		if !i.CreatedAt.Before(from) && i.CreatedAt.Before(to) {
			out = append(out, i)
		}
	}
	return out, nil
}

func (s *fakeIncidentStore) get(id string) models.Incident {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incidents[id]
}

func (s *fakeIncidentStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.incidents)
}

type fakeOfficerStore struct {
	officers map[string]models.Officer
}

func newFakeOfficerStore(officers ...models.Officer) *fakeOfficerStore {
	s := &fakeOfficerStore{officers: map[string]models.Officer{}}
	for _, o := range officers {
		s.officers[o.ID.Hex()] = o
	}
	return s
}

func (s *fakeOfficerStore) FindByID(ctx context.Context, id string) (*models.Officer, error) {
	o, ok := s.officers[id]
	if !ok {
		return nil, NotFound("officer %s not found", id)
	}
	return &o, nil
}

func (s *fakeOfficerStore) FindByIDs(ctx context.Context, ids []string) ([]models.Officer, error) {
	var out []models.Officer
	for _, id := range ids {
		if o, ok := s.officers[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *fakeOfficerStore) FindByStatus(ctx context.Context, status models.OfficerStatus) ([]models.Officer, error) {
	var out []models.Officer
	for _, o := range s.officers {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *fakeOfficerStore) FindByDistrict(ctx context.Context, district string) ([]models.Officer, error) {
	var out []models.Officer
	for _, o := range s.officers {
		if o.District == district {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (n *fakeNotifier) Notify(ctx context.Context, notification models.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return nil
}

func (n *fakeNotifier) byType(t models.NotificationType) []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []models.Notification
	for _, notification := range n.sent {
		if notification.Type == t {
			out = append(out, notification)
		}
	}
	return out
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time {
	return c.t
}

type seqIDs struct {
	n int
}

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

func (s *seqIDs) NewObjectID() primitive.ObjectID {
	return primitive.NewObjectID()
}

var testTime = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newOfficer(name string, status models.OfficerStatus) models.Officer {
	return models.Officer{
		ID:     primitive.NewObjectID(),
		UserID: "user-" + name,
		Name:   name,
		Badge:  "B-" + name,
		Status: status,
	}
}

func newTestReport(status models.ReportStatus, officerIDs ...string) models.Report {
	if officerIDs == nil {
		officerIDs = []string{}
	}
	return models.Report{
		ID:               primitive.NewObjectID(),
		Title:            "Broken streetlight",
		Description:      "The light on 5th and Main has been out for a week",
		Type:             "infrastructure",
		Status:           status,
		Priority:         models.PriorityMedium,
		AssignedOfficers: officerIDs,
		CreatedBy:        "reporter-1",
		CreatedAt:        testTime.Add(-24 * time.Hour),
		UpdatedAt:        testTime.Add(-24 * time.Hour),
		Version:          1,
	}
}

func newTestIncident(status models.IncidentStatus, officerIDs ...string) models.Incident {
	if officerIDs == nil {
		officerIDs = []string{}
	}
	return models.Incident{
		ID:               primitive.NewObjectID(),
		Title:            "Vandalism at the park",
		Description:      "Graffiti on the north wall",
		ReportedBy:       "reporter-1",
		AssignedOfficers: officerIDs,
		Status:           status,
		Priority:         models.PriorityMedium,
		IncidentType:     "VANDALISM",
		Tags:             []string{},
		Images:           []string{},
		Updates:          []models.IncidentUpdate{},
		CreatedAt:        testTime.Add(-24 * time.Hour),
		UpdatedAt:        testTime.Add(-24 * time.Hour),
		Version:          1,
	}
}

func newReportManager(reports *fakeReportStore, officers *fakeOfficerStore, notifier *fakeNotifier) *ReportManager {
	return &ReportManager{
		Reports:  reports,
		Resolver: NewOfficerAssignmentResolver(officers),
		Notifier: notifier,
		Clock:    fixedClock{t: testTime},
		IDs:      &seqIDs{},
	}
}

func newIncidentManager(incidents *fakeIncidentStore, officers *fakeOfficerStore, notifier *fakeNotifier) *IncidentManager {
	return &IncidentManager{
		Incidents: incidents,
		Resolver:  NewOfficerAssignmentResolver(officers),
		Tx:        fakeTxRunner{},
		Notifier:  notifier,
		Clock:     fixedClock{t: testTime},
		IDs:       &seqIDs{},
	}
}

func newCoordinator(reports *fakeReportStore, incidents *fakeIncidentStore, officers *fakeOfficerStore, notifier *fakeNotifier, policy AssignmentPolicy) *ConversionCoordinator {
	resolver := NewOfficerAssignmentResolver(officers)
	clock := fixedClock{t: testTime}
	ids := &seqIDs{}
	return &ConversionCoordinator{
		Reports: &ReportManager{
			Reports:  reports,
			Resolver: resolver,
			Notifier: notifier,
			Clock:    clock,
			IDs:      ids,
		},
		Incidents: &IncidentManager{
			Incidents: incidents,
			Resolver:  resolver,
			Tx:        fakeTxRunner{},
			Notifier:  notifier,
			Clock:     clock,
			IDs:       ids,
		},
		Resolver: resolver,
		Tx:       fakeTxRunner{},
		Notifier: notifier,
		Clock:    clock,
		IDs:      ids,
		Policy:   policy,
	}
}
