package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/civicsafe/civic-case-api/api"
	"github.com/civicsafe/civic-case-api/config"
	"github.com/civicsafe/civic-case-api/core"
	"github.com/civicsafe/civic-case-api/databases"
	"github.com/civicsafe/civic-case-api/models"
)

// Report handles report-related requests
type Report struct {
	Manager   *core.ReportManager
	Converter *core.ConversionCoordinator
	RDB       *databases.ReportDatabase
}

// CreateReportHandler creates a new report in PENDING
func (re Report) CreateReportHandler(w http.ResponseWriter, r *http.Request) {
	var input models.CreateReportInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	report, err := re.Manager.Create(ctx, input, api.ActorID(r))
	if err != nil {
		coreErrorStatus(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(report)
}

// ReportByIDHandler returns a report by ID
func (re Report) ReportByIDHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	report, err := re.RDB.FindByID(ctx, reportID)
	if err != nil {
		coreErrorStatus(w, err)
		return
	}

	_ = json.NewEncoder(w).Encode(report)
}

// ReportsHandler returns reports filtered by status or assigned officer
func (re Report) ReportsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var (
		reports []models.Report
		err     error
	)
	switch {
	case r.URL.Query().Get("officer") != "":
		reports, err = re.RDB.FindByAssignedOfficer(ctx, r.URL.Query().Get("officer"))
	case r.URL.Query().Get("status") != "":
		status := models.ReportStatus(r.URL.Query().Get("status"))
		if !status.IsValid() {
			coreErrorStatus(w, core.Validation("unknown report status: %s", status))
			return
		}
		reports, err = re.RDB.FindByStatus(ctx, status)
	default:
		reports, err = re.RDB.FindByStatus(ctx, models.ReportStatusPending)
	}
	if err != nil {
		coreErrorStatus(w, err)
		return
	}

	if reports == nil {
		reports = []models.Report{}
	}
	_ = json.NewEncoder(w).Encode(reports)
}

// UpdateReportStatusHandler transitions a report to a new status
func (re Report) UpdateReportStatusHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	var input models.UpdateReportStatusInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	report, err := re.Manager.UpdateStatus(ctx, reportID, input, api.ActorID(r))
	if err != nil {
		coreErrorStatus(w, err)
		return
	}

	_ = json.NewEncoder(w).Encode(report)
}

// AssignReportOfficersHandler replaces the full officer assignment set on a
// report
func (re Report) AssignReportOfficersHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	var input models.AssignOfficersInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	report, err := re.Manager.AssignOfficers(ctx, reportID, input, api.ActorID(r))
	if err != nil {
		coreErrorStatus(w, err)
		return
	}

	_ = json.NewEncoder(w).Encode(report)
}

// ConvertReportHandler promotes a report into an incident
func (re Report) ConvertReportHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	var input models.ConvertToIncidentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	incident, err := re.Converter.Convert(ctx, reportID, api.ActorID(r), input)
	if err != nil {
		coreErrorStatus(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(incident)
}
