package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/types"
)

// checkTimeout bounds each readiness dependency ping.
const checkTimeout = 5 * time.Second

// Pinger verifies one dependency is reachable.
type Pinger func(ctx context.Context) error

// HealthHandler serves liveness and readiness probes.  Readiness runs the
// registered dependency checks; liveness never touches dependencies.
type HealthHandler struct {
	checks map[string]Pinger
	logger logging.Logger
}

// NewHealthHandler builds a health handler with named dependency checks.
func NewHealthHandler(checks map[string]Pinger, log logging.Logger) *HealthHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &HealthHandler{checks: checks, logger: log.Named("http.health")}
}

// Liveness handles GET /healthz.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, types.HealthReport{Status: types.HealthOK, CheckedAt: now()})
}

// Readiness handles GET /readyz.  Every check runs; one failure marks the
// whole report down with a 503.
func (h *HealthHandler) Readiness(c *gin.Context) {
	report := types.HealthReport{Status: types.HealthOK, CheckedAt: now()}
	if len(h.checks) > 0 {
		report.Components = make(map[string]string, len(h.checks))
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
		err := h.checks[name](ctx)
		cancel()

		if err != nil {
			report.Components[name] = types.HealthDown
			report.Status = types.HealthDown
			h.logger.Warn("readiness check failed",
				logging.String("component", name),
				logging.Err(err))
			continue
		}
		report.Components[name] = types.HealthOK
	}

	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}
