package handlers_test

import (
	"context"
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

// notifierStub swallows notifications in handler tests
type notifierStub struct{}

func (notifierStub) Notify(ctx context.Context, n models.Notification) error { return nil }

func newReportHandler(db databases.DatabaseHelper) handlers.Report {
	rdb := databases.NewReportDatabase(db)
	odb := databases.NewOfficerDatabase(db)
	manager := &core.ReportManager{
		Reports:  rdb,
		Resolver: core.NewOfficerAssignmentResolver(odb),
		Notifier: notifierStub{},
		Clock:    core.SystemClock{},
		IDs:      core.RandomIDs{},
	}
	return handlers.Report{Manager: manager, RDB: rdb}
}

func TestReport_ReportByIDHandlerNotFound(t *testing.T) {
	reportID := primitive.NewObjectID().Hex()
	req, err := http.NewRequest("GET", "/api/v1/report/"+reportID, nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"report_id": reportID})

	db := &mocks.DatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "reports").Return(conn)

	re := newReportHandler(db)

	rr := httptest.NewRecorder()
	http.HandlerFunc(re.ReportByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "NOT_FOUND")
}

func TestReport_ReportByIDHandler(t *testing.T) {
	reportID := primitive.NewObjectID()
	req, err := http.NewRequest("GET", "/api/v1/report/"+reportID.Hex(), nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"report_id": reportID.Hex()})

	db := &mocks.DatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*models.Report)
		arg.ID = reportID
		arg.Title = "Broken streetlight"
		arg.Status = models.ReportStatusPending
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "reports").Return(conn)

	re := newReportHandler(db)

	rr := httptest.NewRecorder()
	http.HandlerFunc(re.ReportByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Broken streetlight")
	assert.Contains(t, rr.Body.String(), "PENDING")
}

func TestReport_CreateReportHandlerMissingTitle(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/report", strings.NewReader(`{}`))
	if err != nil {
		t.Fatal(err)
	}

	re := newReportHandler(&mocks.DatabaseHelper{})

	rr := httptest.NewRecorder()
	http.HandlerFunc(re.CreateReportHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "VALIDATION_ERROR")
}

func TestReport_CreateReportHandlerBadBody(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/report", strings.NewReader(`{not json`))
	if err != nil {
		t.Fatal(err)
	}

	re := newReportHandler(&mocks.DatabaseHelper{})

	rr := httptest.NewRecorder()
	http.HandlerFunc(re.CreateReportHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to decode request body")
}

func TestReport_UpdateReportStatusHandlerInvalidTransition(t *testing.T) {
	reportID := primitive.NewObjectID()
	req, err := http.NewRequest("PUT", "/api/v1/report/"+reportID.Hex()+"/status", strings.NewReader(`{"status":"IN_REVIEW"}`))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"report_id": reportID.Hex()})

	db := &mocks.DatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*models.Report)
		arg.ID = reportID
		arg.Status = models.ReportStatusResolved
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "reports").Return(conn)

	re := newReportHandler(db)

	rr := httptest.NewRecorder()
	http.HandlerFunc(re.UpdateReportStatusHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_TRANSITION")
}

func TestReport_ReportsHandlerUnknownStatus(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/reports?status=BOGUS", nil)
	if err != nil {
		t.Fatal(err)
	}

	re := newReportHandler(&mocks.DatabaseHelper{})

	rr := httptest.NewRecorder()
	http.HandlerFunc(re.ReportsHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unknown report status")
}
