package models

// CaseID returns the report id in hex form
func (r *Report) CaseID() string { return r.ID.Hex() }

// CaseKind identifies the entity for audit messages
func (r *Report) CaseKind() string { return "report" }

// OfficerIDs returns the current assignment set
func (r *Report) OfficerIDs() []string { return r.AssignedOfficers }

// SetOfficerIDs replaces the assignment set
func (r *Report) SetOfficerIDs(ids []string) { r.AssignedOfficers = ids }

// CaseID returns the incident id in hex form
func (i *Incident) CaseID() string { return i.ID.Hex() }

// CaseKind identifies the entity for audit messages
func (i *Incident) CaseKind() string { return "incident" }

// OfficerIDs returns the current assignment set
func (i *Incident) OfficerIDs() []string { return i.AssignedOfficers }

// SetOfficerIDs replaces the assignment set
func (i *Incident) SetOfficerIDs(ids []string) { i.AssignedOfficers = ids }
