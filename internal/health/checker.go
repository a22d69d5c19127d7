// Package health answers liveness and readiness probes for the API process.
package health

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	StatusUp   = "up"
	StatusDown = "down"
)

const probeTimeout = 2 * time.Second

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependency is something readiness waits on. Only the task store today.
type Dependency struct {
	Name   string
	Pinger Pinger
}

type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type HealthResult struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

type Checker struct {
	deps   []Dependency
	logger *slog.Logger
	up     *prometheus.GaugeVec
}

// NewChecker registers the taskboard_health_check_up gauge on reg and
// pre-creates one series per dependency at 0 until the first probe.
func NewChecker(logger *slog.Logger, reg prometheus.Registerer, deps ...Dependency) *Checker {
	up := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "taskboard",
		Name:      "health_check_up",
		Help:      "Whether a dependency answered the last readiness probe. 1 = up, 0 = down.",
	}, []string{"dependency"})
	reg.MustRegister(up)

	sort.Slice(deps, func(i, j int) bool { return deps[i].Name < deps[j].Name })
	for _, d := range deps {
		up.WithLabelValues(d.Name).Set(0)
	}

	return &Checker{deps: deps, logger: logger.With("component", "health"), up: up}
}

// Liveness never touches dependencies.
func (c *Checker) Liveness(_ context.Context) HealthResult {
	return HealthResult{Status: StatusUp}
}

// Readiness is down as soon as one dependency fails its ping.
func (c *Checker) Readiness(ctx context.Context) HealthResult {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	result := HealthResult{Status: StatusUp, Checks: make(map[string]CheckResult, len(c.deps))}
	for _, d := range c.deps {
		if err := d.Pinger.Ping(ctx); err != nil {
			c.logger.WarnContext(ctx, "readiness probe failed", "dependency", d.Name, "error", err)
			result.Status = StatusDown
			result.Checks[d.Name] = CheckResult{Status: StatusDown, Error: err.Error()}
			c.up.WithLabelValues(d.Name).Set(0)
			continue
		}
		result.Checks[d.Name] = CheckResult{Status: StatusUp}
		c.up.WithLabelValues(d.Name).Set(1)
	}
	return result
}
