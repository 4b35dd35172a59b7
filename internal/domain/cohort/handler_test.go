package cohort

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/malackathon/observatorio/internal/domain/admissions"
)

func TestHandler_GetCohort(t *testing.T) {
	src := &fakeSource{journey: []admissions.JourneyRow{{IDPaciente: "P1", AdmissionCount: 3, TotalCost: 900, TotalDays: 20}}}
	h := NewHandler(newTestService(src))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/cohort?threshold=7&min_admissions=3", nil)
	rec := httptest.NewRecorder()
	if err := h.GetCohort(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var v View
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.KPIs[KPIReadmissionRate] != "25.0%" {
		t.Errorf("unexpected rate %q", v.KPIs[KPIReadmissionRate])
	}
	if len(v.Figures[ChartJourney].Data) != 1 {
		t.Error("expected journey scatter")
	}
	if src.lastThreshold != 7 || src.lastMinAdm != 3 {
		t.Errorf("knobs not forwarded: %d %d", src.lastThreshold, src.lastMinAdm)
	}
}

func TestHandler_Routes(t *testing.T) {
	first := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{dateRange: admissions.DateRange{MinDate: &first}}
	e := echo.New()
	NewHandler(newTestService(src)).RegisterRoutes(e.Group("/api"))

	req := httptest.NewRequest(http.MethodGet, "/api/cohort/filters/reset", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var r Reset
	if err := json.Unmarshal(rec.Body.Bytes(), &r); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r.DateStart != "2016-01-01" || r.DateEnd != "" || r.Threshold != 30 {
		t.Errorf("unexpected reset %+v", r)
	}

	for _, path := range []string{"/api/cohort", "/api/cohort/filters"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestHandler_GetCohort_QueryFailureNotCacheable(t *testing.T) {
	h := NewHandler(newTestService(&fakeSource{err: errors.New("connection reset")}))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/cohort", nil)
	rec := httptest.NewRecorder()
	if err := h.GetCohort(e.NewContext(req, rec)); err != nil {
		t.Fatalf("query failures must not fail the request: %v", err)
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("expected no-store, got %q", rec.Header().Get("Cache-Control"))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/cohort/filters", nil)
	rec = httptest.NewRecorder()
	if err := h.GetFilters(e.NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("expected no-store without a date range, got %q", rec.Header().Get("Cache-Control"))
	}
}

func TestHandler_GetCohort_ExpiredDeadline(t *testing.T) {
	h := NewHandler(newTestService(&fakeSource{}))

	ctx, cancel := context.WithTimeout(context.Background(), -time.Second)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/cohort", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	if err := h.GetCohort(echo.New().NewContext(req, rec)); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected nothing written, got %q", rec.Body.String())
	}
}
