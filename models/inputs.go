package models

// CreateReportInput is the request body for creating a report
type CreateReportInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Priority    Priority  `json:"priority"`
	Location    Location  `json:"location"`
	Witnesses   []Witness `json:"witnesses"`
	Evidence    []string  `json:"evidence"`
}

// UpdateReportStatusInput is the request body for a report status transition
type UpdateReportStatusInput struct {
	Status ReportStatus `json:"status"`
	Notes  string       `json:"notes"`
}

// AssignOfficersInput is the request body for a full-replace officer assignment
type AssignOfficersInput struct {
	OfficerIDs []string `json:"officerIds"`
}

// ConvertToIncidentInput is the request body for promoting a report
type ConvertToIncidentInput struct {
	Notes      string   `json:"notes"`
	OfficerIDs []string `json:"officerIds"`
}

// CreateIncidentInput is the request body for creating an incident
type CreateIncidentInput struct {
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Location            Location `json:"location"`
	Priority            Priority `json:"priority"`
	IncidentType        string   `json:"incidentType"`
	Tags                []string `json:"tags"`
	OfficerIDs          []string `json:"officerIds"`
	ReporterContactInfo string   `json:"reporterContactInfo"`
	SourceReportID      string   `json:"sourceReportId,omitempty"`

	// ReportDetails is populated only by the conversion coordinator, never
	// from a request body
	ReportDetails *ReportDetails `json:"-"`
}

// UpdateIncidentInput is the request body for a partial incident update. Nil
// pointers mean "leave unchanged"; a nil OfficerIDs slice leaves the
// assignment set alone.
type UpdateIncidentInput struct {
	Status       *IncidentStatus `json:"status,omitempty"`
	Priority     *Priority       `json:"priority,omitempty"`
	OfficerIDs   []string        `json:"officerIds,omitempty"`
	EvidenceUrls []string        `json:"evidenceUrls,omitempty"`
	Notes        string          `json:"notes,omitempty"`
}

// ReassignInput is the request body for an officer handoff
type ReassignInput struct {
	ToOfficerID string `json:"toOfficerId"`
	Notes       string `json:"notes"`
}
