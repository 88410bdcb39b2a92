package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/TheWizardo/InventoryPro/api/responses"
	"github.com/TheWizardo/InventoryPro/pkg/config"
	pkgerrors "github.com/TheWizardo/InventoryPro/pkg/errors"
	"github.com/TheWizardo/InventoryPro/pkg/logger"
)

const envHeader = "X-InventoryPro-Env"

const readinessTimeout = 2 * time.Second

// Pinger is the connectivity probe satisfied by the database and Redis
// clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]Pinger{
			"database": dbP,
			"redis":    redisP,
		}
		for name, p := range checks {
			if p == nil {
				continue
			}
			if err := p.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" not ready"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
