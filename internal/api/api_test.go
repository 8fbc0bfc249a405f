package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/halver/careband/internal/health"
	"github.com/halver/careband/internal/models"
	"github.com/halver/careband/internal/testutil"
)

func newTestServer(t *testing.T) (*httptest.Server, *health.Store) {
	t.Helper()
	store := testutil.TestStore(t)
	srv := httptest.NewServer(NewRouter(store, false, "", nil))
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestProfileLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/profile", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("GET empty profile = %d, want 404", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/profile", map[string]string{"name": "Margaret", "email": "m@example.com"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT profile = %d, want 200", resp.StatusCode)
	}
	saved := decode[models.UserProfile](t, resp)
	if saved.Name != "Margaret" || saved.ID == "" {
		t.Fatalf("saved profile = %+v", saved)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/profile", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET profile = %d, want 200", resp.StatusCode)
	}
	got := decode[models.UserProfile](t, resp)
	if got.ID != saved.ID || got.Email != "m@example.com" {
		t.Fatalf("round-tripped profile = %+v", got)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/profile", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE profile = %d, want 204", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodGet, srv.URL+"/profile", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("GET after delete = %d, want 404", resp.StatusCode)
	}
}

func TestProfileValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPut, srv.URL+"/profile", map[string]string{"email": "no-name@example.com"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("PUT profile without name = %d, want 400", resp.StatusCode)
	}
}

func TestMedicationLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/medications", map[string]any{
		"name": "Metformin", "dose": "500mg", "active": true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST medication = %d, want 201", resp.StatusCode)
	}
	med := decode[models.Medication](t, resp)
	if med.ID == "" || med.RefillReminderDays != 7 {
		t.Fatalf("created medication = %+v", med)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/medications", nil)
	list := decode[MedicationListResponse](t, resp)
	if len(list.Medications) != 1 {
		t.Fatalf("medication list = %+v", list)
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/medications/"+med.ID, map[string]any{
		"name": "Metformin", "dose": "1000mg", "active": true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT medication = %d, want 200", resp.StatusCode)
	}
	updated := decode[models.Medication](t, resp)
	if updated.Dose != "1000mg" || updated.ID != med.ID {
		t.Fatalf("updated medication = %+v", updated)
	}
	if !updated.CreatedAt.Equal(med.CreatedAt) {
		t.Error("update changed CreatedAt")
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/medications/no-such-id", map[string]any{
		"name": "Ghost", "dose": "0mg",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("PUT unknown medication = %d, want 404", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/medications/"+med.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE medication = %d, want 204", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodGet, srv.URL+"/medications", nil)
	list = decode[MedicationListResponse](t, resp)
	if len(list.Medications) != 0 {
		t.Fatalf("medications after delete = %+v", list)
	}
}

func TestMedicationValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing dose", map[string]any{"name": "A"}},
		{"missing name", map[string]any{"dose": "1mg"}},
		{"negative refills", map[string]any{"name": "A", "dose": "1mg", "current_refills": -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, srv.URL+"/medications", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestLogTakenAndSnooze(t *testing.T) {
	srv, store := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/medications", map[string]any{
		"name": "Lisinopril", "dose": "10mg",
	})
	med := decode[models.Medication](t, resp)

	resp = doJSON(t, http.MethodPost, srv.URL+"/medications/"+med.ID+"/taken", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST taken = %d, want 201", resp.StatusCode)
	}
	log := decode[models.MedicationLog](t, resp)
	if log.Status != models.LogStatusTaken || log.MedicationID != med.ID {
		t.Fatalf("taken log = %+v", log)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/medications/"+med.ID+"/snooze", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST snooze = %d, want 201", resp.StatusCode)
	}
	log = decode[models.MedicationLog](t, resp)
	if log.Status != models.LogStatusSnoozed {
		t.Fatalf("snooze log = %+v", log)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/medications/no-such-id/taken", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("POST taken unknown medication = %d, want 404", resp.StatusCode)
	}

	if got := len(store.MedicationLogs()); got != 2 {
		t.Errorf("stored logs = %d, want 2", got)
	}
}

func TestCheckInFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/today", nil)
	today := decode[TodayResponse](t, resp)
	if today.CheckIn != nil || today.Streak != 0 || today.Demo {
		t.Fatalf("initial today = %+v", today)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/checkins", map[string]string{
		"status": "ok", "note": "slept well",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST checkin = %d, want 201", resp.StatusCode)
	}
	created := decode[models.CheckIn](t, resp)
	if created.Status != models.CheckInOK || created.Note != "slept well" {
		t.Fatalf("created check-in = %+v", created)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/checkins", map[string]string{"status": "ok"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate checkin = %d, want 409", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/today", nil)
	today = decode[TodayResponse](t, resp)
	if today.CheckIn == nil || today.CheckIn.ID != created.ID || today.Streak != 1 {
		t.Fatalf("today after checkin = %+v", today)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/checkins", nil)
	list := decode[CheckInListResponse](t, resp)
	if len(list.CheckIns) != 1 {
		t.Fatalf("checkins list = %+v", list)
	}
}

func TestCheckInValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, status := range []string{"", "great", "OK"} {
		resp := doJSON(t, http.MethodPost, srv.URL+"/checkins", map[string]string{"status": status})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status %q = %d, want 400", status, resp.StatusCode)
		}
	}
}

func TestActivityEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/medications", map[string]any{
		"name": "Metformin", "dose": "500mg",
	})
	med := decode[models.Medication](t, resp)
	doJSON(t, http.MethodPost, srv.URL+"/medications/"+med.ID+"/taken", nil)
	doJSON(t, http.MethodPost, srv.URL+"/checkins", map[string]string{"status": "ok"})

	resp = doJSON(t, http.MethodGet, srv.URL+"/activity", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET activity = %d, want 200", resp.StatusCode)
	}
	page := decode[ActivityResponse](t, resp)
	if page.Page != 0 || page.TotalPages != 1 || len(page.Days) != 1 {
		t.Fatalf("activity page = %+v", page)
	}
	day := page.Days[0]
	if len(day.Items) != 2 || day.MedsTaken != 1 || day.MedsTotal != 1 {
		t.Fatalf("day group = %+v", day)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/activity?page=5", nil)
	page = decode[ActivityResponse](t, resp)
	if len(page.Days) != 0 || page.TotalPages != 1 {
		t.Fatalf("out-of-range page = %+v", page)
	}
}

func TestDemoModeReturnsNoContent(t *testing.T) {
	store := health.NewStore(testutil.TestAdapter(t), nil)
	store.LoadDemo()
	srv := httptest.NewServer(NewRouter(store, false, "", nil))
	t.Cleanup(srv.Close)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"save profile", http.MethodPut, "/profile", map[string]string{"name": "X"}},
		{"add medication", http.MethodPost, "/medications", map[string]any{"name": "X", "dose": "1mg"}},
		{"log taken", http.MethodPost, "/medications/demo-med-1/taken", nil},
		{"check in", http.MethodPost, "/checkins", map[string]string{"status": "ok"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, tt.method, srv.URL+tt.path, tt.body)
			if resp.StatusCode != http.StatusNoContent {
				t.Errorf("status = %d, want 204", resp.StatusCode)
			}
		})
	}

	// Reads still serve the demo dataset.
	resp := doJSON(t, http.MethodGet, srv.URL+"/today", nil)
	today := decode[TodayResponse](t, resp)
	if !today.Demo || today.Streak != 8 || today.CheckIn == nil {
		t.Fatalf("demo today = %+v", today)
	}
}

func TestAuthMiddleware(t *testing.T) {
	store := testutil.TestStore(t)
	srv := httptest.NewServer(NewRouter(store, true, "secret-token", nil))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/today")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/today", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/today", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("valid token = %d, want 200", resp.StatusCode)
	}
}

func TestInvalidJSONBody(t *testing.T) {
	srv, _ := newTestServer(t)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/checkins", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed body = %d, want 400", resp.StatusCode)
	}
}
