package models

import "time"

// ReporterSummary is the derived reporter shape on incident responses. It is
// omitted entirely when the incident is anonymous.
type ReporterSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// IncidentResponse mirrors an incident plus derived summaries. Reporter
// identity is stripped for anonymous incidents; the raw ReportedBy field never
// leaves the server in that case.
type IncidentResponse struct {
	ID               string           `json:"_id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Location         Location         `json:"location"`
	Reporter         *ReporterSummary `json:"reporter,omitempty"`
	Anonymous        bool             `json:"anonymous"`
	ConvertedBy      string           `json:"convertedBy,omitempty"`
	AssignedOfficers []OfficerSummary `json:"assignedOfficers"`
	Status           IncidentStatus   `json:"status"`
	Priority         Priority         `json:"priority"`
	IncidentType     string           `json:"incidentType"`
	Tags             []string         `json:"tags"`
	Images           []string         `json:"images"`
	Updates          []IncidentUpdate `json:"updates"`
	ResolutionDate   *time.Time       `json:"resolutionDate,omitempty"`
	ResolutionNotes  string           `json:"resolutionNotes,omitempty"`
	SourceReportID   string           `json:"sourceReportId,omitempty"`
	ReportDetails    *ReportDetails   `json:"reportDetails,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// NewIncidentResponse builds the outward incident shape. The reporter summary
// is resolved by the caller and ignored when the incident is anonymous.
func NewIncidentResponse(inc *Incident, reporter *ReporterSummary, officers []OfficerSummary) IncidentResponse {
	resp := IncidentResponse{
		ID:               inc.ID.Hex(),
		Title:            inc.Title,
		Description:      inc.Description,
		Location:         inc.Location,
		Anonymous:        inc.Anonymous,
		ConvertedBy:      inc.ConvertedBy,
		AssignedOfficers: officers,
		Status:           inc.Status,
		Priority:         inc.Priority,
		IncidentType:     inc.IncidentType,
		Tags:             inc.Tags,
		Images:           inc.Images,
		Updates:          inc.Updates,
		ResolutionDate:   inc.ResolutionDate,
		ResolutionNotes:  inc.ResolutionNotes,
		SourceReportID:   inc.SourceReportID,
		ReportDetails:    inc.ReportDetails,
		CreatedAt:        inc.CreatedAt,
		UpdatedAt:        inc.UpdatedAt,
	}
	if officers == nil {
		resp.AssignedOfficers = []OfficerSummary{}
	}
	if !inc.Anonymous {
		resp.Reporter = reporter
	}
	return resp
}
