package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/civicsafe/civic-case-api/api"
	"github.com/civicsafe/civic-case-api/core"
	"github.com/civicsafe/civic-case-api/databases"
	"github.com/civicsafe/civic-case-api/models"
)

// Officer handles officer-related requests
type Officer struct {
	ODB *databases.OfficerDatabase
	RDB *databases.ReportDatabase
	IDB *databases.IncidentDatabase
}

// OfficerByIDHandler returns an officer by ID
func (o Officer) OfficerByIDHandler(w http.ResponseWriter, r *http.Request) {
	officerID := mux.Vars(r)["officer_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	officer, err := o.ODB.FindByID(ctx, officerID)
	if err != nil {
		coreErrorStatus(w, err)
		return
	}

	_ = json.NewEncoder(w).Encode(officer)
}

// OfficersHandler returns officers filtered by district or status
func (o Officer) OfficersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var (
		officers []models.Officer
		err      error
	)
	switch {
	case r.URL.Query().Get("district") != "":
		officers, err = o.ODB.FindByDistrict(ctx, r.URL.Query().Get("district"))
	case r.URL.Query().Get("status") != "":
		status := models.OfficerStatus(r.URL.Query().Get("status"))
		if !status.IsValid() {
			coreErrorStatus(w, core.Validation("unknown officer status: %s", status))
			return
		}
		officers, err = o.ODB.FindByStatus(ctx, status)
	default:
		officers, err = o.ODB.FindByStatus(ctx, models.OfficerStatusActive)
	}
	if err != nil {
		coreErrorStatus(w, err)
		return
	}

	if officers == nil {
		officers = []models.Officer{}
	}
	_ = json.NewEncoder(w).Encode(officers)
}

// OfficerCaseloadHandler returns the open reports and incidents assigned to
// an officer
func (o Officer) OfficerCaseloadHandler(w http.ResponseWriter, r *http.Request) {
	officerID := mux.Vars(r)["officer_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	reports, err := o.RDB.FindByAssignedOfficer(ctx, officerID)
	if err != nil {
		coreErrorStatus(w, err)
		return
	}
	incidents, err := o.IDB.FindByAssignedOfficer(ctx, officerID)
	if err != nil {
		coreErrorStatus(w, err)
		return
	}

	if reports == nil {
		reports = []models.Report{}
	}
	if incidents == nil {
		incidents = []models.Incident{}
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"reports":   reports,
		"incidents": incidents,
	})
}
