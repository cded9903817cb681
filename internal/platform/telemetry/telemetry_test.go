package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func serve(p *Provider, path string, h echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.Use(p.MetricsMiddleware())
	e.GET(path, h)
	e.GET("/metrics", p.PrometheusHandler())
	return e
}

func scrape(t *testing.T, e *echo.Echo) string {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rec.Code)
	}
	return rec.Body.String()
}

func TestMetricsMiddleware_CountsByRoute(t *testing.T) {
	p := NewProvider(Config{})
	e := serve(p, "/person", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/person?firstName=a", nil))
	}

	got := testutil.ToFloat64(p.requests.WithLabelValues(http.MethodGet, "/person", "200"))
	if got != 3 {
		t.Errorf("expected 3 requests, got %v", got)
	}
	if n := testutil.CollectAndCount(p.duration); n != 1 {
		t.Errorf("expected one latency series, got %d", n)
	}
}

func TestMetricsMiddleware_RecordsErrorStatus(t *testing.T) {
	p := NewProvider(Config{})
	e := serve(p, "/person", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "missing")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/person", nil))

	got := testutil.ToFloat64(p.requests.WithLabelValues(http.MethodGet, "/person", "404"))
	if got != 1 {
		t.Errorf("expected 1 not-found request, got %v", got)
	}
}

func TestMetricsMiddleware_Disabled(t *testing.T) {
	p := NewProvider(Config{MetricsEnabled: BoolPtr(false)})
	e := serve(p, "/person", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/person", nil))

	if n := testutil.CollectAndCount(p.requests); n != 0 {
		t.Errorf("expected no request series, got %d", n)
	}
}

func TestRegisterCollection(t *testing.T) {
	p := NewProvider(Config{ServiceVersion: "1.2.3"})
	size := 7
	if err := p.RegisterCollection("persons", func(context.Context) (int, error) { return size, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := p.RegisterCollection("medicalrecords", func(context.Context) (int, error) { return 0, errors.New("down") }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := p.RegisterCollection("persons", func(context.Context) (int, error) { return 0, nil }); err == nil {
		t.Error("expected duplicate registration to fail")
	}

	body := scrape(t, serve(p, "/x", func(c echo.Context) error { return nil }))
	for _, want := range []string{
		`safetynet_collection_size{collection="persons"} 7`,
		`safetynet_collection_size{collection="medicalrecords"} -1`,
		`version="1.2.3"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in exposition", want)
		}
	}
}
