package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/civicsafe/civic-case-api/api"
	"github.com/civicsafe/civic-case-api/api/scheduler"
	"github.com/civicsafe/civic-case-api/config"
	"github.com/civicsafe/civic-case-api/core"
	"github.com/civicsafe/civic-case-api/databases"
	"github.com/civicsafe/civic-case-api/dispatch"
	"github.com/civicsafe/civic-case-api/metrics"
	"github.com/civicsafe/civic-case-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router   *mux.Router
	Config   config.Config
	dbHelper databases.DatabaseHelper

	hub        *dispatch.Hub
	dispatcher *dispatch.Dispatcher
	scheduler  *scheduler.Scheduler
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	rdb := databases.NewReportDatabase(a.dbHelper)
	idb := databases.NewIncidentDatabase(a.dbHelper)
	odb := databases.NewOfficerDatabase(a.dbHelper)
	udb := databases.NewUserDatabase(a.dbHelper)
	ndb := databases.NewNotificationDatabase(a.dbHelper)
	lockDB := databases.NewSchedulerLockDatabase(a.dbHelper)
	tx := databases.NewTxRunner(a.dbHelper.Client())

	a.hub = dispatch.NewHub()
	a.dispatcher = dispatch.NewDispatcher(ndb, a.hub, &a.Config)

	clock := core.SystemClock{}
	ids := core.RandomIDs{}
	resolver := core.NewOfficerAssignmentResolver(odb)

	reportManager := &core.ReportManager{
		Reports:  rdb,
		Resolver: resolver,
		Notifier: a.dispatcher,
		Clock:    clock,
		IDs:      ids,
	}
	incidentManager := &core.IncidentManager{
		Incidents: idb,
		Resolver:  resolver,
		Tx:        tx,
		Notifier:  a.dispatcher,
		Clock:     clock,
		IDs:       ids,
	}
	converter := &core.ConversionCoordinator{
		Reports:   reportManager,
		Incidents: incidentManager,
		Resolver:  resolver,
		Tx:        tx,
		Notifier:  a.dispatcher,
		Clock:     clock,
		IDs:       ids,
		Policy:    core.ParseAssignmentPolicy(a.Config.ConversionPolicy),
	}

	a.scheduler = scheduler.New(rdb, odb, lockDB, &a.Config)

	report := Report{Manager: reportManager, Converter: converter, RDB: rdb}
	incident := Incident{Manager: incidentManager, Resolver: resolver, IDB: idb, ODB: odb, UDB: udb}
	officer := Officer{ODB: odb, RDB: rdb, IDB: idb}
	notification := Notification{NDB: ndb}
	supervisor := Supervisor{UDB: udb}
	evidence := Evidence{}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)
	r.Handle("/metrics", metrics.Handler())
	r.HandleFunc("/ws/notifications", a.hub.HandleWebSocket)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/token", http.HandlerFunc(m.CreateToken)).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")
	apiCreate.Handle("/supervisor/login", http.HandlerFunc(supervisor.SupervisorLoginHandler)).Methods("POST")

	apiCreate.Handle("/report", api.Middleware(http.HandlerFunc(report.CreateReportHandler))).Methods("POST")
	apiCreate.Handle("/reports", api.Middleware(http.HandlerFunc(report.ReportsHandler))).Methods("GET")
	apiCreate.Handle("/report/{report_id}", api.Middleware(http.HandlerFunc(report.ReportByIDHandler))).Methods("GET")
	apiCreate.Handle("/report/{report_id}/status", api.Middleware(http.HandlerFunc(report.UpdateReportStatusHandler))).Methods("PUT")
	apiCreate.Handle("/report/{report_id}/officers", api.Middleware(http.HandlerFunc(report.AssignReportOfficersHandler))).Methods("PUT")
	apiCreate.Handle("/report/{report_id}/convert", api.Middleware(http.HandlerFunc(report.ConvertReportHandler))).Methods("POST")
	apiCreate.Handle("/report/{report_id}/incident", api.Middleware(http.HandlerFunc(incident.IncidentBySourceReportHandler))).Methods("GET")

	apiCreate.Handle("/incident", api.Middleware(http.HandlerFunc(incident.CreateIncidentHandler))).Methods("POST")
	apiCreate.Handle("/incident/anonymous", http.HandlerFunc(incident.CreateAnonymousIncidentHandler)).Methods("POST")
	apiCreate.Handle("/incidents", api.Middleware(http.HandlerFunc(incident.IncidentsHandler))).Methods("GET")
	apiCreate.Handle("/incident/{incident_id}", api.Middleware(http.HandlerFunc(incident.IncidentByIDHandler))).Methods("GET")
	apiCreate.Handle("/incident/{incident_id}", api.Middleware(http.HandlerFunc(incident.UpdateIncidentHandler))).Methods("PATCH")
	apiCreate.Handle("/incident/{incident_id}", api.Middleware(http.HandlerFunc(incident.DeleteIncidentHandler))).Methods("DELETE")
	apiCreate.Handle("/incident/{incident_id}/status", api.Middleware(http.HandlerFunc(incident.UpdateIncidentStatusHandler))).Methods("PUT")
	apiCreate.Handle("/incident/{incident_id}/updates", api.Middleware(http.HandlerFunc(incident.IncidentUpdatesHandler))).Methods("GET")
	apiCreate.Handle("/incident/{incident_id}/available-officers", api.Middleware(http.HandlerFunc(incident.AvailableOfficersHandler))).Methods("GET")
	apiCreate.Handle("/incident/{incident_id}/officers/{officer_id}/reassign", api.Middleware(http.HandlerFunc(incident.ReassignIncidentHandler))).Methods("PUT")

	apiCreate.Handle("/officers", api.Middleware(http.HandlerFunc(officer.OfficersHandler))).Methods("GET")
	apiCreate.Handle("/officer/{officer_id}", api.Middleware(http.HandlerFunc(officer.OfficerByIDHandler))).Methods("GET")
	apiCreate.Handle("/officer/{officer_id}/caseload", api.Middleware(http.HandlerFunc(officer.OfficerCaseloadHandler))).Methods("GET")

	apiCreate.Handle("/notifications", api.Middleware(http.HandlerFunc(notification.NotificationsHandler))).Methods("GET")
	apiCreate.Handle("/notifications/{notification_id}/read", api.Middleware(http.HandlerFunc(notification.MarkNotificationReadHandler))).Methods("PUT")

	apiCreate.Handle("/generate-signature", api.Middleware(http.HandlerFunc(evidence.UploadSignatureHandler))).Methods("POST")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("civic-case-api has connected to the database")

	metrics.Init()

	// initialize api router
	a.initializeRoutes()

	a.dispatcher.Start()
	if a.Config.SchedulerEnabled {
		a.scheduler.Start()
	}
	return nil

}

// Shutdown stops the background workers
func (a *App) Shutdown() {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.dispatcher != nil {
		a.dispatcher.Stop()
	}
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
