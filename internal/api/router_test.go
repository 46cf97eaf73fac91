package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/qubehealth/appointments-api/internal/api/handler"
	"github.com/qubehealth/appointments-api/internal/core/service"
	"github.com/qubehealth/appointments-api/internal/infrastructure/db/memory"
)

type testServer struct {
	t *testing.T
	h http.Handler
}

func newTestServer(t *testing.T, ready map[string]handler.Pinger) *testServer {
	t.Helper()
	store := memory.NewStore()
	log := zerolog.Nop()

	svc := Services{
		Patients: service.NewPatientService(store.Patients(), log),
		Staff:    service.NewStaffService(store.Staff(), log),
		Meetings: service.NewMeetingService(store.Meetings(), store.Staff(), store.Patients(), nil, log),
	}
	e := NewRouter(svc, Options{
		Logger:   log,
		Ready:    ready,
		Registry: prometheus.NewRegistry(),
	})
	return &testServer{t: t, h: e}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) expect(method, path, body string, status int) *httptest.ResponseRecorder {
	s.t.Helper()
	rec := s.do(method, path, body)
	if rec.Code != status {
		s.t.Fatalf("%s %s: expected %d, got %d: %s", method, path, status, rec.Code, rec.Body.String())
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

type errorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details"`
}

const (
	alice  = `{"name":"Alice","email":"a@x.com","phone":"555"}`
	drWho  = `{"name":"Dr Who","specialization":"Cardiology","email":"who@x.com","phone":"1"}`
	slot10 = `{"doctorId":1,"patientId":1,"appointmentDateTime":"2024-01-01T10:00:00"}`
)

func TestPatients_CRUD(t *testing.T) {
	s := newTestServer(t, nil)

	created := decode[map[string]any](t, s.expect(http.MethodPost, "/api/users", alice, http.StatusCreated))
	if created["id"] != float64(1) || created["name"] != "Alice" {
		t.Fatalf("unexpected created body: %v", created)
	}

	got := decode[map[string]any](t, s.expect(http.MethodGet, "/api/users/1", "", http.StatusOK))
	if got["email"] != "a@x.com" {
		t.Errorf("unexpected get body: %v", got)
	}

	updated := decode[map[string]any](t, s.expect(http.MethodPut, "/api/users/1",
		`{"id":99,"name":"Alicia","email":"b@x.com","phone":"777"}`, http.StatusOK))
	if updated["id"] != float64(1) || updated["name"] != "Alicia" {
		t.Errorf("update must keep id and overwrite fields: %v", updated)
	}

	list := decode[[]map[string]any](t, s.expect(http.MethodGet, "/api/users", "", http.StatusOK))
	if len(list) != 1 {
		t.Errorf("expected 1 patient, got %d", len(list))
	}

	s.expect(http.MethodDelete, "/api/users/1", "", http.StatusNoContent)
	s.expect(http.MethodGet, "/api/users/1", "", http.StatusNotFound)
	s.expect(http.MethodDelete, "/api/users/1", "", http.StatusNotFound)
}

func TestPatients_EmptyListIsArray(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.expect(http.MethodGet, "/api/users", "", http.StatusOK)
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected [], got %s", rec.Body.String())
	}
}

func TestPatients_Validation(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.expect(http.MethodPost, "/api/users", `{"name":"","email":"nope","phone":"1"}`, http.StatusBadRequest)
	body := decode[errorBody](t, rec)
	if body.Error != "validation failed" || len(body.Details) != 2 {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.Details[0] != "name is required" {
		t.Errorf("details should use json field names, got %q", body.Details[0])
	}

	s.expect(http.MethodPost, "/api/users", `{not json`, http.StatusBadRequest)
	s.expect(http.MethodPut, "/api/users/1", alice, http.StatusNotFound)
}

func TestPatients_BadID(t *testing.T) {
	s := newTestServer(t, nil)
	for _, path := range []string{"/api/users/abc", "/api/users/0", "/api/users/-3"} {
		body := decode[errorBody](t, s.expect(http.MethodGet, path, "", http.StatusBadRequest))
		if body.Error != "invalid id" {
			t.Errorf("%s: error = %q", path, body.Error)
		}
	}
}

func TestMeetings_DoubleBookingScenario(t *testing.T) {
	s := newTestServer(t, nil)
	s.expect(http.MethodPost, "/api/staff", drWho, http.StatusCreated)
	s.expect(http.MethodPost, "/api/users", alice, http.StatusCreated)

	m := decode[map[string]any](t, s.expect(http.MethodPost, "/api/meetings", slot10, http.StatusCreated))
	if m["id"] != float64(1) || m["appointmentDateTime"] != "2024-01-01T10:00:00" {
		t.Fatalf("unexpected meeting: %v", m)
	}

	body := decode[errorBody](t, s.expect(http.MethodPost, "/api/meetings", slot10, http.StatusConflict))
	if body.Error != "staff already has a meeting at this time" {
		t.Errorf("error = %q", body.Error)
	}

	list := decode[[]map[string]any](t, s.expect(http.MethodGet, "/api/meetings", "", http.StatusOK))
	if len(list) != 1 {
		t.Errorf("conflict must not persist a meeting, got %d", len(list))
	}
}

func TestMeetings_SameInstantInOtherZoneConflicts(t *testing.T) {
	s := newTestServer(t, nil)
	s.expect(http.MethodPost, "/api/staff", drWho, http.StatusCreated)
	s.expect(http.MethodPost, "/api/users", alice, http.StatusCreated)
	s.expect(http.MethodPost, "/api/meetings", slot10, http.StatusCreated)

	s.expect(http.MethodPost, "/api/meetings",
		`{"doctorId":1,"patientId":1,"appointmentDateTime":"2024-01-01T12:00:00+02:00"}`, http.StatusConflict)
	s.expect(http.MethodPost, "/api/meetings",
		`{"doctorId":1,"patientId":1,"appointmentDateTime":"2024-01-01T10:00:01"}`, http.StatusCreated)
}

func TestMeetings_FractionalSecondsRoundTrip(t *testing.T) {
	s := newTestServer(t, nil)
	s.expect(http.MethodPost, "/api/staff", drWho, http.StatusCreated)
	s.expect(http.MethodPost, "/api/users", alice, http.StatusCreated)

	half := decode[map[string]any](t, s.expect(http.MethodPost, "/api/meetings",
		`{"doctorId":1,"patientId":1,"appointmentDateTime":"2024-01-01T10:00:00.500"}`, http.StatusCreated))
	whole := decode[map[string]any](t, s.expect(http.MethodPost, "/api/meetings", slot10, http.StatusCreated))

	rendered, _ := half["appointmentDateTime"].(string)
	if rendered == whole["appointmentDateTime"] {
		t.Fatalf("distinct slots render identically: %q", rendered)
	}
	if rendered != "2024-01-01T10:00:00.5" {
		t.Errorf("appointmentDateTime = %q", rendered)
	}

	// Sending a meeting's own rendered time back is a self-update, not a conflict.
	s.expect(http.MethodPut, "/api/meetings/1",
		`{"doctorId":1,"patientId":1,"appointmentDateTime":"`+rendered+`"}`, http.StatusOK)
	s.expect(http.MethodPut, "/api/meetings/2",
		`{"doctorId":1,"patientId":1,"appointmentDateTime":"`+whole["appointmentDateTime"].(string)+`"}`, http.StatusOK)
}

func TestMeetings_InvalidReferences(t *testing.T) {
	s := newTestServer(t, nil)
	s.expect(http.MethodPost, "/api/staff", drWho, http.StatusCreated)
	s.expect(http.MethodPost, "/api/users", alice, http.StatusCreated)

	tests := []struct {
		name string
		body string
	}{
		{"unknown doctor", `{"doctorId":9,"patientId":1,"appointmentDateTime":"2024-01-01T10:00:00"}`},
		{"unknown patient", `{"doctorId":1,"patientId":9,"appointmentDateTime":"2024-01-01T10:00:00"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := decode[errorBody](t, s.expect(http.MethodPost, "/api/meetings", tc.body, http.StatusBadRequest))
			if body.Error != "invalid staff or user id" {
				t.Errorf("error = %q", body.Error)
			}
		})
	}
}

func TestMeetings_Validation(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"missing date", `{"doctorId":1,"patientId":1}`},
		{"zero doctor", `{"doctorId":0,"patientId":1,"appointmentDateTime":"2024-01-01T10:00:00"}`},
		{"bad date", `{"doctorId":1,"patientId":1,"appointmentDateTime":"tomorrow"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s.expect(http.MethodPost, "/api/meetings", tc.body, http.StatusBadRequest)
		})
	}
}

func TestMeetings_UpdateAndDelete(t *testing.T) {
	s := newTestServer(t, nil)
	s.expect(http.MethodPost, "/api/staff", drWho, http.StatusCreated)
	s.expect(http.MethodPost, "/api/users", alice, http.StatusCreated)
	s.expect(http.MethodPost, "/api/meetings", slot10, http.StatusCreated)
	s.expect(http.MethodPost, "/api/meetings",
		`{"doctorId":1,"patientId":1,"appointmentDateTime":"2024-01-01T11:00"}`, http.StatusCreated)

	// Saving a meeting into its own slot is not a conflict.
	s.expect(http.MethodPut, "/api/meetings/1", slot10, http.StatusOK)
	// Moving it onto meeting 2 is.
	s.expect(http.MethodPut, "/api/meetings/1",
		`{"doctorId":1,"patientId":1,"appointmentDateTime":"2024-01-01T11:00:00"}`, http.StatusConflict)

	moved := decode[map[string]any](t, s.expect(http.MethodPut, "/api/meetings/1",
		`{"doctorId":1,"patientId":1,"appointmentDateTime":"2024-01-01T09:30:00"}`, http.StatusOK))
	if moved["appointmentDateTime"] != "2024-01-01T09:30:00" {
		t.Errorf("unexpected moved meeting: %v", moved)
	}
	// The old slot is free again.
	s.expect(http.MethodPost, "/api/meetings", slot10, http.StatusCreated)

	s.expect(http.MethodPut, "/api/meetings/42", slot10, http.StatusNotFound)
	s.expect(http.MethodDelete, "/api/meetings/2", "", http.StatusNoContent)
	s.expect(http.MethodGet, "/api/meetings/2", "", http.StatusNotFound)
}

func TestDeletePatient_CascadesMeetings(t *testing.T) {
	s := newTestServer(t, nil)
	s.expect(http.MethodPost, "/api/staff", drWho, http.StatusCreated)
	s.expect(http.MethodPost, "/api/users", alice, http.StatusCreated)
	s.expect(http.MethodPost, "/api/meetings", slot10, http.StatusCreated)

	s.expect(http.MethodDelete, "/api/users/1", "", http.StatusNoContent)
	s.expect(http.MethodGet, "/api/users/1", "", http.StatusNotFound)
	s.expect(http.MethodGet, "/api/meetings/1", "", http.StatusNotFound)
}

func TestAliasRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	s.expect(http.MethodPost, "/api/doctors", drWho, http.StatusCreated)
	s.expect(http.MethodPost, "/api/patients", alice, http.StatusCreated)
	s.expect(http.MethodPost, "/api/appointments", slot10, http.StatusCreated)

	s.expect(http.MethodGet, "/api/staff/1", "", http.StatusOK)
	s.expect(http.MethodGet, "/api/users/1", "", http.StatusOK)
	s.expect(http.MethodGet, "/api/meetings/1", "", http.StatusOK)
}

func TestStaff_CRUD(t *testing.T) {
	s := newTestServer(t, nil)
	created := decode[map[string]any](t, s.expect(http.MethodPost, "/api/staff", drWho, http.StatusCreated))
	if created["specialization"] != "Cardiology" {
		t.Fatalf("unexpected staff: %v", created)
	}
	s.expect(http.MethodPut, "/api/staff/1",
		`{"name":"Dr Who","specialization":"Neurology","email":"who@x.com","phone":"2"}`, http.StatusOK)
	s.expect(http.MethodPost, "/api/staff", `{"name":"Unassigned","email":"n@x.com","phone":"3"}`, http.StatusBadRequest)
	s.expect(http.MethodDelete, "/api/staff/1", "", http.StatusNoContent)
	s.expect(http.MethodGet, "/api/staff/1", "", http.StatusNotFound)
}

func TestHealth(t *testing.T) {
	ready := map[string]handler.Pinger{
		"store": handler.PingFunc(func(context.Context) error { return nil }),
		"redis": handler.PingFunc(func(context.Context) error { return errors.New("connection refused") }),
	}
	s := newTestServer(t, ready)

	s.expect(http.MethodGet, "/health", "", http.StatusOK)

	rec := s.expect(http.MethodGet, "/health/ready", "", http.StatusServiceUnavailable)
	body := decode[struct {
		Status       string `json:"status"`
		Dependencies map[string]struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"dependencies"`
	}](t, rec)
	if body.Status != "degraded" {
		t.Errorf("status = %q", body.Status)
	}
	if body.Dependencies["store"].Status != "ok" || body.Dependencies["redis"].Error != "connection refused" {
		t.Errorf("unexpected dependencies: %+v", body.Dependencies)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.expect(http.MethodGet, "/api/users", "", http.StatusOK)

	rec := s.expect(http.MethodGet, "/metrics", "", http.StatusOK)
	if !strings.Contains(rec.Body.String(), "requests_total") {
		t.Errorf("expected echoprometheus request counter in metrics output")
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, nil)
	s.expect(http.MethodGet, "/api/nothing", "", http.StatusNotFound)
}
