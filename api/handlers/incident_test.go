package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/civicsafe/civic-case-api/api/handlers"
	"github.com/civicsafe/civic-case-api/core"
	"github.com/civicsafe/civic-case-api/databases"
	"github.com/civicsafe/civic-case-api/databases/mocks"
	"github.com/civicsafe/civic-case-api/models"
)

func newIncidentHandler(db databases.DatabaseHelper) handlers.Incident {
	idb := databases.NewIncidentDatabase(db)
	odb := databases.NewOfficerDatabase(db)

	client := &mocks.ClientHelper{}

	manager := &core.IncidentManager{
		Incidents: idb,
		Resolver:  core.NewOfficerAssignmentResolver(odb),
		Tx:        databases.NewTxRunner(client),
		Notifier:  notifierStub{},
		Clock:     core.SystemClock{},
		IDs:       core.RandomIDs{},
	}
	return handlers.Incident{
		Manager:  manager,
		Resolver: core.NewOfficerAssignmentResolver(odb),
		IDB:      idb,
		ODB:      odb,
		UDB:      databases.NewUserDatabase(db),
	}
}

func TestIncident_IncidentByIDHandlerNotFound(t *testing.T) {
	incidentID := primitive.NewObjectID().Hex()
	req, err := http.NewRequest("GET", "/api/v1/incident/"+incidentID, nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"incident_id": incidentID})

	db := &mocks.DatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "incidents").Return(conn)

	i := newIncidentHandler(db)

	rr := httptest.NewRecorder()
	http.HandlerFunc(i.IncidentByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "NOT_FOUND")
}

func TestIncident_DeleteIncidentHandlerUnderInvestigation(t *testing.T) {
	incidentID := primitive.NewObjectID()
	req, err := http.NewRequest("DELETE", "/api/v1/incident/"+incidentID.Hex(), nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"incident_id": incidentID.Hex()})

	db := &mocks.DatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*models.Incident)
		arg.ID = incidentID
		arg.Status = models.IncidentStatusUnderInvestigation
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "incidents").Return(conn)

	i := newIncidentHandler(db)

	rr := httptest.NewRecorder()
	http.HandlerFunc(i.DeleteIncidentHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "CONFLICT")
}

func TestIncident_UpdateIncidentStatusHandlerUnknownStatus(t *testing.T) {
	incidentID := primitive.NewObjectID()
	req, err := http.NewRequest("PUT", "/api/v1/incident/"+incidentID.Hex()+"/status", strings.NewReader(`{"status":"BOGUS"}`))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"incident_id": incidentID.Hex()})

	i := newIncidentHandler(&mocks.DatabaseHelper{})

	rr := httptest.NewRecorder()
	http.HandlerFunc(i.UpdateIncidentStatusHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "VALIDATION_ERROR")
}

func TestIncident_IncidentsHandlerBadDateRange(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/incidents?from=yesterday&to=today", nil)
	if err != nil {
		t.Fatal(err)
	}

	i := newIncidentHandler(&mocks.DatabaseHelper{})

	rr := httptest.NewRecorder()
	http.HandlerFunc(i.IncidentsHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to parse date range")
}
