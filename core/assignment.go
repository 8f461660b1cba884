package core

import (
	"context"
	"sort"
	"strings"

	"github.com/civicsafe/civic-case-api/models"
)

// OfficerAssignmentResolver resolves, validates, assigns, and reassigns
// officers on reports and incidents. It owns the set math and eligibility
// checks; persisting the mutated case and notifying officers is the owning
// lifecycle manager's job.
type OfficerAssignmentResolver struct {
	Officers OfficerStore
}

// NewOfficerAssignmentResolver creates a resolver over the given officer store
func NewOfficerAssignmentResolver(officers OfficerStore) *OfficerAssignmentResolver {
	return &OfficerAssignmentResolver{Officers: officers}
}

// FindAvailable returns ACTIVE officers not already assigned to the case,
// excluding excludeOfficerID when non-empty. Results are ordered by officer
// name ascending (id ascending on ties) so repeated calls are stable.
func (r *OfficerAssignmentResolver) FindAvailable(ctx context.Context, c Assignable, excludeOfficerID string) ([]models.Officer, error) {
	active, err := r.Officers.FindByStatus(ctx, models.OfficerStatusActive)
	if err != nil {
		return nil, Internal(err, "failed to look up active officers")
	}

	assigned := make(map[string]bool, len(c.OfficerIDs()))
	for _, id := range c.OfficerIDs() {
		assigned[id] = true
	}

	available := make([]models.Officer, 0, len(active))
	for _, o := range active {
		id := o.ID.Hex()
		if assigned[id] || id == excludeOfficerID {
			continue
		}
		available = append(available, o)
	}

	sort.Slice(available, func(i, j int) bool {
		if available[i].Name != available[j].Name {
			return available[i].Name < available[j].Name
		}
		return available[i].ID.Hex() < available[j].ID.Hex()
	})
	return available, nil
}

// Assign resolves officerIDs and replaces the case's full assignment set with
// exactly that set. Unresolved ids fail NotFound naming every missing id;
// officers who cannot currently take new cases fail Conflict unless they were
// already on the case. Returns the officers newly present compared to the
// prior set, so callers notify only them.
func (r *OfficerAssignmentResolver) Assign(ctx context.Context, c Assignable, officerIDs []string) ([]models.Officer, error) {
	officerIDs = dedupe(officerIDs)

	resolved, missing, err := r.resolve(ctx, officerIDs)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, NotFound("officers not found: %s", strings.Join(missing, ", "))
	}

	prior := make(map[string]bool, len(c.OfficerIDs()))
	for _, id := range c.OfficerIDs() {
		prior[id] = true
	}

	var added []models.Officer
	for _, o := range resolved {
		if prior[o.ID.Hex()] {
			continue
		}
		if !o.Status.CanBeAssigned() {
			return nil, Conflict("officer %s is %s and cannot be newly assigned", o.ID.Hex(), o.Status)
		}
		added = append(added, o)
	}

	c.SetOfficerIDs(officerIDs)
	return added, nil
}

// Reassign transfers case responsibility from one assigned officer to another.
// fromOfficerID must currently be assigned; toOfficerID is added if absent
// (additive, the rest of the set is untouched). Returns the receiving officer.
func (r *OfficerAssignmentResolver) Reassign(ctx context.Context, c Assignable, fromOfficerID, toOfficerID string) (*models.Officer, error) {
	current := c.OfficerIDs()
	fromAssigned := false
	for _, id := range current {
		if id == fromOfficerID {
			fromAssigned = true
			break
		}
	}
	if !fromAssigned {
		return nil, Unauthorized("officer %s is not assigned to %s %s", fromOfficerID, c.CaseKind(), c.CaseID())
	}

	to, err := r.Officers.FindByID(ctx, toOfficerID)
	if err != nil {
		return nil, err
	}
	if !to.Status.CanBeAssigned() {
		return nil, Conflict("officer %s is %s and cannot be newly assigned", toOfficerID, to.Status)
	}

	next := make([]string, 0, len(current))
	toPresent := false
	for _, id := range current {
		if id == fromOfficerID {
			continue
		}
		if id == toOfficerID {
			toPresent = true
		}
		next = append(next, id)
	}
	if !toPresent {
		next = append(next, toOfficerID)
	}
	c.SetOfficerIDs(next)
	return to, nil
}

// resolve loads every id, collecting ids with no matching officer
func (r *OfficerAssignmentResolver) resolve(ctx context.Context, ids []string) ([]models.Officer, []string, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}
	officers, err := r.Officers.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, Internal(err, "failed to resolve officers")
	}
	found := make(map[string]models.Officer, len(officers))
	for _, o := range officers {
		found[o.ID.Hex()] = o
	}
	resolved := make([]models.Officer, 0, len(ids))
	var missing []string
	for _, id := range ids {
		o, ok := found[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		resolved = append(resolved, o)
	}
	return resolved, missing, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
