package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ccollicutt/barklog/pkg/output"
	"github.com/ccollicutt/barklog/pkg/store"
	"github.com/ccollicutt/barklog/pkg/violation"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()

	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}

	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	for i, date := range []string{"2024-06-02", "2024-06-01"} {
		rec := &store.DayRecord{
			Date:        date,
			Thresholds:  store.NewThresholds(violation.DefaultThresholds()),
			Events:      []violation.BarkEvent{{ID: "a", Timestamp: base}},
			Violations:  []violation.Violation{},
			GeneratedAt: base,
		}
		if i == 0 {
			rec.Violations = []violation.Violation{{Type: violation.TypeSporadic, DurationMinutes: 16}}
		}
		if err := st.Save(rec); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	return New(st, Options{Addr: "127.0.0.1:0"}), st
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_Health(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/healthz")

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestServer_ListDays(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/api/v1/days")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Days  []string `json:"days"`
		Count int      `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Count != 2 || body.Days[0] != "2024-06-01" {
		t.Errorf("body = %+v, want two days oldest first", body)
	}
}

func TestServer_GetDay(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/api/v1/days/2024-06-02")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var report output.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if report.Summary.SporadicViolations != 1 {
		t.Errorf("SporadicViolations = %d, want 1", report.Summary.SporadicViolations)
	}
}

func TestServer_GetDay_Errors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/days/2024-07-01", http.StatusNotFound},
		{"/api/v1/days/yesterday", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if rec := get(t, s, tt.path); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/days", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestServer_Metrics(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/metrics")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"barklog_days_analyzed 2",
		`barklog_violations{type="sporadic"} 1`,
		`barklog_violation_minutes{type="sporadic"} 16`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestServer_ServeShutdown(t *testing.T) {
	s, _ := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestServer_RunBadAddr(t *testing.T) {
	st, _ := store.New(t.TempDir())
	s := New(st, Options{Addr: "not-an-address"})
	if err := s.Run(context.Background()); err == nil {
		t.Error("Run() expected error for bad address")
	}
}
