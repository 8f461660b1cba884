package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/civicsafe/civic-case-api/databases/mocks"
)

func testApp() *App {
	db := &mocks.DatabaseHelper{}
	client := &mocks.ClientHelper{}
	db.On("Client").Return(client)

	a := &App{}
	a.dbHelper = db
	a.Router = a.New()
	return a
}

func executeRequest(a *App, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	a.Router.ServeHTTP(rr, req)
	return rr
}

func checkResponseCode(t *testing.T, expected, actual int) {
	if expected != actual {
		t.Errorf("Expected response code %d. Got %d\n", expected, actual)
	}
}

func TestUnknownRoute(t *testing.T) {
	a := testApp()
	req, _ := http.NewRequest("GET", "/asdf", nil)
	response := executeRequest(a, req)

	checkResponseCode(t, http.StatusNotFound, response.Code)
}

func TestHealthCheckRoute(t *testing.T) {
	a := testApp()
	req, _ := http.NewRequest("GET", "/health", nil)
	response := executeRequest(a, req)

	checkResponseCode(t, http.StatusOK, response.Code)

	if !strings.Contains(response.Body.String(), "alive") {
		t.Errorf("Expected 'alive' in the reponse. Got '%s'", response.Body.String())
	}
}

func TestMetricsRoute(t *testing.T) {
	a := testApp()
	req, _ := http.NewRequest("GET", "/metrics", nil)
	response := executeRequest(a, req)

	checkResponseCode(t, http.StatusOK, response.Code)
}

func TestReportRouteUnauthorized(t *testing.T) {
	a := testApp()
	req, _ := http.NewRequest("GET", "/api/v1/report/1234", nil)
	response := executeRequest(a, req)

	checkResponseCode(t, http.StatusUnauthorized, response.Code)
}

func TestIncidentRouteUnauthorized(t *testing.T) {
	a := testApp()
	req, _ := http.NewRequest("GET", "/api/v1/incidents", nil)
	response := executeRequest(a, req)

	checkResponseCode(t, http.StatusUnauthorized, response.Code)
}
