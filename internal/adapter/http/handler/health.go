package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"intro-auction/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const healthPingTimeout = 2 * time.Second

type dependencyHealth struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// HealthCheck serves GET /health. Dependencies are pinged in parallel,
// each under its own timeout; any failure turns the answer into a 503.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			mu   sync.Mutex
			deps = make(map[string]dependencyHealth, len(checkers))
		)

		g, ctx := errgroup.WithContext(c.Request.Context())
		for _, checker := range checkers {
			g.Go(func() error {
				dep := ping(ctx, checker)
				mu.Lock()
				deps[checker.Name()] = dep
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		status, code := "healthy", http.StatusOK
		for _, dep := range deps {
			if dep.Status != "healthy" {
				status, code = "degraded", http.StatusServiceUnavailable
				break
			}
		}

		c.JSON(code, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}

func ping(ctx context.Context, checker ports.HealthChecker) dependencyHealth {
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()

	started := time.Now()
	err := checker.Ping(ctx)
	dep := dependencyHealth{Status: "healthy", LatencyMS: time.Since(started).Milliseconds()}
	if err != nil {
		dep.Status = "unhealthy"
		dep.Error = err.Error()
	}
	return dep
}

// Metrics exposes the default Prometheus registry.
func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
