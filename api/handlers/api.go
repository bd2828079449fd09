package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/wepass-api/access"
	"github.com/linesmerrill/wepass-api/api"
	"github.com/linesmerrill/wepass-api/api/scheduler"
	"github.com/linesmerrill/wepass-api/config"
	"github.com/linesmerrill/wepass-api/databases"
	"github.com/linesmerrill/wepass-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Clock     access.Clock
	dbHelper  databases.DatabaseHelper
	client    databases.ClientHelper
	limiter   *api.RedisLimiter
	scheduler *scheduler.Scheduler
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	if a.Clock == nil {
		a.Clock = access.NewClock(a.Config.TimezoneOffsetHours)
	}

	// setup go-guardian for middleware
	m := &api.MiddlewareDB{
		DB:           databases.NewUserDatabase(a.dbHelper),
		Secret:       []byte(a.Config.JWTSecret),
		TokenTTL:     a.Config.TokenTTL,
		PublicRoutes: a.Config.PublicRoutes,
		Clock:        a.Clock,
	}
	m.SetupGoGuardian()

	var limiter api.Limiter
	if a.limiter != nil {
		limiter = a.limiter
	}

	ac := AccessCode{Service: a.newService()}
	metrics := MetricsHandler{}

	r := mux.NewRouter()
	r.Use(api.MetricsMiddleware, api.TimeoutMiddleware(a.requestTimeout()), m.Middleware)

	// healthchex
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.HandleFunc("/access/create", ac.CreateAccessCodeHandler).Methods("POST")
	apiCreate.Handle("/access/verify", api.RateLimit(limiter)(http.HandlerFunc(ac.VerifyAccessCodeHandler))).Methods("POST")
	apiCreate.HandleFunc("/access/history/{propertyId}", ac.AccessCodeHistoryHandler).Methods("GET")
	apiCreate.HandleFunc("/access/{accessCodeId}", ac.AccessCodeByIDHandler).Methods("GET")
	apiCreate.HandleFunc("/access/{accessCodeId}/missing-details", ac.MissingDetailsHandler).Methods("PUT")

	apiCreate.HandleFunc("/metrics/summary", metrics.GetMetricsSummary).Methods("GET")

	return r
}

func (a *App) newService() *access.Service {
	return access.NewService(
		databases.NewAccessCodeDatabase(a.dbHelper),
		databases.NewAccessCodeLeaseDatabase(a.dbHelper),
		databases.NewUserDatabase(a.dbHelper),
		databases.NewUnitDatabase(a.dbHelper),
		a.Clock,
		access.NewGenerator(a.Config.CodeMaxAttempts),
		a.Config.CodeValidity,
	)
}

func (a *App) requestTimeout() time.Duration {
	if a.Config.RequestTimeout > 0 {
		return a.Config.RequestTimeout
	}
	return 15 * time.Second
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {
	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	a.client = client
	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect(ctx)
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("wepass-api has connected to the database")

	if err := databases.NewAccessCodeDatabase(a.dbHelper).EnsureIndexes(ctx); err != nil {
		zap.S().Errorw("failed to create access code indexes", "error", err)
		return err
	}
	leaseDB := databases.NewAccessCodeLeaseDatabase(a.dbHelper)
	if err := leaseDB.EnsureIndexes(ctx); err != nil {
		zap.S().Errorw("failed to create access code lease indexes", "error", err)
		return err
	}

	if a.Config.RedisURL != "" {
		a.limiter, err = api.NewRedisLimiter(a.Config.RedisURL, a.Config.VerifyRateLimit, a.Config.VerifyRateWindow)
		if err != nil {
			// verification keeps working without the throttle
			zap.S().Warnw("verify throttle disabled", "error", err)
			a.limiter = nil
		}
	}

	a.Clock = access.NewClock(a.Config.TimezoneOffsetHours)
	a.scheduler = scheduler.NewScheduler(leaseDB, a.Clock, a.Config.CapacitySchedule, a.Config.CapacityWarnRatio)
	if err := a.scheduler.Start(); err != nil {
		return err
	}

	// initialize api router
	a.initializeRoutes()
	return nil
}

// Close stops background jobs and releases connections
func (a *App) Close(ctx context.Context) {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.limiter != nil {
		if err := a.limiter.Close(); err != nil {
			zap.S().Warnw("failed to close redis", "error", err)
		}
	}
	if a.client != nil {
		if err := a.client.Disconnect(ctx); err != nil {
			zap.S().Warnw("failed to disconnect from database", "error", err)
		}
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
