package metrics_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ErlanBelekov/taskboard/internal/health"
	"github.com/ErlanBelekov/taskboard/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func probe(t *testing.T, store health.Pinger, path string) int {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	checker := health.NewChecker(logger, prometheus.NewRegistry(), health.Dependency{Name: "postgres", Pinger: store})
	srv := metrics.NewServer(":0", checker)

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w.Code
}

func TestServer_Probes(t *testing.T) {
	down := pinger{err: errors.New("connection refused")}

	if got := probe(t, pinger{}, "/readyz"); got != http.StatusOK {
		t.Errorf("readyz up: %d", got)
	}
	if got := probe(t, down, "/readyz"); got != http.StatusServiceUnavailable {
		t.Errorf("readyz down: %d, want 503", got)
	}
	if got := probe(t, down, "/healthz"); got != http.StatusOK {
		t.Errorf("healthz with store down: %d, want 200", got)
	}
}
