// internal/app/app.go

package app

import (
	"net/http"

	"SecretEndpoint-Go/internal/config"
	"SecretEndpoint-Go/internal/secrets"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// App wires configuration, the secret backend and the HTTP surface together.
type App struct {
	Config      config.Config
	Secrets     secrets.Accessor
	Logger      *zap.Logger
	RateLimiter *rate.Limiter // nil when limiting is disabled

	configErr error
}

// NewApp validates cfg once. Invalid configuration does not stop the server;
// every request is answered with a server error instead.
func NewApp(cfg config.Config, accessor secrets.Accessor, logger *zap.Logger) *App {
	app := &App{
		Config:  cfg,
		Secrets: accessor,
		Logger:  logger,
	}

	if err := cfg.Validate(); err != nil {
		app.configErr = err
		logger.Warn("Configuration is incomplete. Requests will fail until it is fixed.", zap.Error(err))
	} else {
		logger.Info("Secret endpoint configured",
			zap.String("provider", cfg.Provider),
			zap.String("project_id", cfg.ProjectID),
			zap.String("secret_name", cfg.SecretName),
		)
	}

	if cfg.RateLimit > 0 {
		app.RateLimiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	return app
}

// Router returns the HTTP handler for the server.
func (a *App) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(a.requestID, a.accessLog, a.rateLimit)
	r.HandleFunc("/", a.HandleSecret).Methods(http.MethodGet)
	return r
}
