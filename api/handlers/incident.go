package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/civicsafe/civic-case-api/api"
	"github.com/civicsafe/civic-case-api/config"
	"github.com/civicsafe/civic-case-api/core"
	"github.com/civicsafe/civic-case-api/databases"
	"github.com/civicsafe/civic-case-api/models"
)

// Incident handles incident-related requests
type Incident struct {
	Manager  *core.IncidentManager
	Resolver *core.OfficerAssignmentResolver
	IDB      *databases.IncidentDatabase
	ODB      *databases.OfficerDatabase
	UDB      databases.UserDatabase
}

// CreateIncidentHandler creates a new incident reported by the authenticated
// actor
func (i Incident) CreateIncidentHandler(w http.ResponseWriter, r *http.Request) {
	var input models.CreateIncidentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	// the snapshot and back-link belong to the conversion flow only
	input.ReportDetails = nil
	input.SourceReportID = ""

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	incident, err := i.Manager.Create(ctx, input, api.ActorID(r), input.OfficerIDs)
	if err != nil {
		coreErrorStatus(w, err)
		return
	}

	i.respond(w, r, incident, http.StatusCreated)
}

// CreateAnonymousIncidentHandler creates an incident with no exposed reporter
// identity
func (i Incident) CreateAnonymousIncidentHandler(w http.ResponseWriter, r *http.Request) {
	var input models.CreateIncidentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	input.ReportDetails = nil
	input.SourceReportID = ""

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	incident, err := i.Manager.CreateAnonymous(ctx, input, "")
	if err != nil {
		coreErrorStatus(w, err)
		return
	}

	i.respond(w, r, incident, http.StatusCreated)
}

// IncidentByIDHandler returns an incident by ID with derived reporter and
// officer summaries
func (i Incident) IncidentByIDHandler(w http.ResponseWriter, r *http.Request) {
	incidentID := mux.Vars(r)["incident_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	incident, err := i.Manager.Get(ctx, incidentID)
	if err != nil {
		coreErrorStatus(w, err)
		return
	}

	i.respond(w, r, incident, http.StatusOK)
}

// IncidentBySourceReportHandler returns the incident created from the given
// report
func (i Incident) IncidentBySourceReportHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	incident, err := i.Manager.FindBySourceReportID(ctx, reportID)
	if err != nil {
		coreErrorStatus(w, err)
		return
	}

	i.respond(w, r, incident, http.StatusOK)
}

// IncidentsHandler returns incidents filtered by status, assigned officer, or
// a created-at date range
func (i Incident) IncidentsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var (
		incidents []models.Incident
		err       error
	)
	switch {
	case r.URL.Query().Get("officer") != "":
		incidents, err = i.IDB.FindByAssignedOfficer(ctx, r.URL.Query().Get("officer"))
	case r.URL.Query().Get("from") != "" && r.URL.Query().Get("to") != "":
		var from, to time.Time
		from, err = time.Parse(time.RFC3339, r.URL.Query().Get("from"))
		if err == nil {
			to, err = time.Parse(time.RFC3339, r.URL.Query().Get("to"))
		}
		if err != nil {
			config.ErrorStatus("failed to parse date range", http.StatusBadRequest, w, err)
			return
		}
		incidents, err = i.IDB.FindByDateRange(ctx, from, to)
	case r.URL.Query().Get("status") != "":
		status := models.IncidentStatus(r.URL.Query().Get("status"))
		if !status.IsValid() {
			coreErrorStatus(w, core.Validation("unknown incident status: %s", status))
			return
		}
		incidents, err = i.IDB.FindByStatus(ctx, status)
	default:
		incidents, err = i.IDB.FindByStatus(ctx, models.IncidentStatusReported)
	}
	if err != nil {
		coreErrorStatus(w, err)
		return
	}

	responses := make([]models.IncidentResponse, 0, len(incidents))
	for idx := range incidents {
		responses = append(responses, i.buildResponse(r, &incidents[idx]))
	}
	_ = json.NewEncoder(w).Encode(responses)
}

// UpdateIncidentStatusHandler transitions an incident to a new status
func (i Incident) UpdateIncidentStatusHandler(w http.ResponseWriter, r *http.Request) {
	incidentID := mux.Vars(r)["incident_id"]

	var body struct {
		Status models.IncidentStatus `json:"status"`
		Notes  string                `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	incident, err := i.Manager.UpdateStatus(ctx, incidentID, body.Status, body.Notes, api.ActorID(r))
	if err != nil {
		coreErrorStatus(w, err)
		return
	}

	i.respond(w, r, incident, http.StatusOK)
}

// UpdateIncidentHandler applies a partial update to an incident
func (i Incident) UpdateIncidentHandler(w http.ResponseWriter, r *http.Request) {
	incidentID := mux.Vars(r)["incident_id"]

	var input models.UpdateIncidentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	incident, err := i.Manager.Update(ctx, incidentID, input, api.ActorID(r))
	if err != nil {
		coreErrorStatus(w, err)
		return
	}

	i.respond(w, r, incident, http.StatusOK)
}

// ReassignIncidentHandler hands an incident off from one officer to another
func (i Incident) ReassignIncidentHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	incidentID := vars["incident_id"]
	fromOfficerID := vars["officer_id"]

	var input models.ReassignInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	incident, err := i.Manager.Reassign(ctx, incidentID, fromOfficerID, input, api.ActorID(r))
	if err != nil {
		coreErrorStatus(w, err)
		return
	}

	i.respond(w, r, incident, http.StatusOK)
}

// DeleteIncidentHandler deletes an incident unless it is under investigation
// or resolved
func (i Incident) DeleteIncidentHandler(w http.ResponseWriter, r *http.Request) {
	incidentID := mux.Vars(r)["incident_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := i.Manager.Delete(ctx, incidentID); err != nil {
		coreErrorStatus(w, err)
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]string{"deleted": incidentID})
}

// IncidentUpdatesHandler returns the append-only update timeline for an
// incident
func (i Incident) IncidentUpdatesHandler(w http.ResponseWriter, r *http.Request) {
	incidentID := mux.Vars(r)["incident_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	incident, err := i.Manager.Get(ctx, incidentID)
	if err != nil {
		coreErrorStatus(w, err)
		return
	}

	updates := incident.Updates
	if updates == nil {
		updates = []models.IncidentUpdate{}
	}
	_ = json.NewEncoder(w).Encode(updates)
}

// AvailableOfficersHandler returns officers eligible for assignment to an
// incident, excluding already-assigned officers and an optional excluded
// officer
func (i Incident) AvailableOfficersHandler(w http.ResponseWriter, r *http.Request) {
	incidentID := mux.Vars(r)["incident_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	incident, err := i.Manager.Get(ctx, incidentID)
	if err != nil {
		coreErrorStatus(w, err)
		return
	}

	officers, err := i.Resolver.FindAvailable(ctx, incident, r.URL.Query().Get("exclude"))
	if err != nil {
		coreErrorStatus(w, err)
		return
	}

	summaries := make([]models.OfficerSummary, 0, len(officers))
	for _, o := range officers {
		summaries = append(summaries, o.Summary())
	}
	_ = json.NewEncoder(w).Encode(summaries)
}

// respond writes the derived incident response shape
func (i Incident) respond(w http.ResponseWriter, r *http.Request, incident *models.Incident, status int) {
	resp := i.buildResponse(r, incident)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// buildResponse resolves officer and reporter summaries for an incident.
// Lookup failures degrade to a response without the summary rather than fail
// the request.
func (i Incident) buildResponse(r *http.Request, incident *models.Incident) models.IncidentResponse {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var summaries []models.OfficerSummary
	if len(incident.AssignedOfficers) > 0 {
		officers, err := i.ODB.FindByIDs(ctx, incident.AssignedOfficers)
		if err != nil {
			zap.S().With(err).Warnw("failed to resolve assigned officers",
				"incident", incident.ID.Hex())
		}
		for _, o := range officers {
			summaries = append(summaries, o.Summary())
		}
	}

	var reporter *models.ReporterSummary
	if !incident.Anonymous && incident.ReportedBy != "" {
		user, err := i.UDB.FindOne(ctx, bson.M{"_id": incident.ReportedBy})
		if err == nil {
			reporter = &models.ReporterSummary{
				ID:    user.ID,
				Name:  user.Details.Name,
				Email: user.Details.Email,
			}
		}
	}

	return models.NewIncidentResponse(incident, reporter, summaries)
}
