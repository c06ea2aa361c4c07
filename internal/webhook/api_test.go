package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"

	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/triage"
)

// mockService records the last submission and serves canned results.
type mockService struct {
	lastSub   *triage.Submission
	submitRes *triage.SubmitResult
	submitErr error
	run       *triage.Run
	getErr    error
}

func (m *mockService) Submit(_ context.Context, sub *triage.Submission) (*triage.SubmitResult, error) {
	m.lastSub = sub
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	if m.submitRes != nil {
		return m.submitRes, nil
	}
	return &triage.SubmitResult{ID: "t-1"}, nil
}

func (m *mockService) Get(_ context.Context, id string) (*triage.Run, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	if m.run != nil && m.run.ID == id {
		return m.run, true, nil
	}
	return nil, false, nil
}

func newTestRouter(svc *mockService) chi.Router {
	r := chi.NewRouter()
	New(nil, svc).RegisterRoutes(r)
	return r
}

const issueEventBody = `{
	"action": "opened",
	"issue": {
		"number": 42,
		"title": "Crash when parsing empty config",
		"body": "Running v1.2 with an empty config file panics on startup.",
		"user": {"login": "octocat"},
		"labels": [{"name": "kind/bug"}]
	},
	"repository": {"full_name": "octo/widgets"}
}`

func postEvent(r chi.Router, kind, delivery, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if kind != "" {
		req.Header.Set("X-GitHub-Event", kind)
	}
	if delivery != "" {
		req.Header.Set("X-GitHub-Delivery", delivery)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestNew_NilLogger(t *testing.T) {
	t.Parallel()

	api := New(nil, &mockService{})
	if api == nil || api.logger == nil {
		t.Fatal("New(nil, svc) must default to a Nop logger")
	}
}

func TestNew_NilService_Panics(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("New(logger, nil) did not panic")
		}
	}()
	New(log.Nop(), nil)
}

func TestRegisterRoutes_Methods(t *testing.T) {
	t.Parallel()

	r := newTestRouter(&mockService{})

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"GET events not allowed", http.MethodGet, "/api/v1/events", http.StatusMethodNotAllowed},
		{"PUT events not allowed", http.MethodPut, "/api/v1/events", http.StatusMethodNotAllowed},
		{"POST triage not allowed", http.MethodPost, "/api/v1/triage/t-1", http.StatusMethodNotAllowed},
		{"unknown path", http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
		{"bare triage", http.MethodGet, "/api/v1/triage", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleEvent_IgnoresNonIssueEvents(t *testing.T) {
	t.Parallel()

	svc := &mockService{}
	r := newTestRouter(svc)

	rec := postEvent(r, "ping", "d-1", `{"zen": "Anything added dilutes everything else."}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["ignored"] != "ping" {
		t.Errorf("response = %v, want ignored=ping", resp)
	}
	if svc.lastSub != nil {
		t.Error("non-issue event must not reach the service")
	}
}

func TestHandleEvent_InvalidJSON(t *testing.T) {
	t.Parallel()

	r := newTestRouter(&mockService{})
	if rec := postEvent(r, "issues", "d-1", "{bad"); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleEvent_InvalidRepository(t *testing.T) {
	t.Parallel()

	r := newTestRouter(&mockService{})
	body := `{"action": "opened", "issue": {"number": 1}, "repository": {"full_name": "not-a-repo"}}`
	if rec := postEvent(r, "issues", "d-1", body); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleEvent_SubmitsDecodedIssue(t *testing.T) {
	t.Parallel()

	svc := &mockService{}
	r := newTestRouter(svc)

	rec := postEvent(r, "issues", "d-42", issueEventBody)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["triage_id"] != "t-1" {
		t.Errorf("response = %v, want triage_id=t-1", resp)
	}

	sub := svc.lastSub
	if sub == nil {
		t.Fatal("service never received the submission")
	}
	if sub.DeliveryID != "d-42" {
		t.Errorf("delivery = %q, want d-42", sub.DeliveryID)
	}
	if sub.Repo.String() != "octo/widgets" || sub.Number != 42 {
		t.Errorf("target = %s#%d, want octo/widgets#42", sub.Repo.String(), sub.Number)
	}
	if sub.Author != "octocat" {
		t.Errorf("author = %q, want octocat", sub.Author)
	}
	if len(sub.Labels) != 1 || sub.Labels[0] != "kind/bug" {
		t.Errorf("labels = %v, want [kind/bug]", sub.Labels)
	}
}

func TestHandleEvent_SkippedSubmission(t *testing.T) {
	t.Parallel()

	svc := &mockService{submitRes: &triage.SubmitResult{Skipped: true, Reason: "duplicate delivery"}}
	r := newTestRouter(svc)

	rec := postEvent(r, "issues", "d-1", issueEventBody)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["skipped"] != "duplicate delivery" {
		t.Errorf("response = %v, want skipped=duplicate delivery", resp)
	}
}

func TestHandleEvent_SubmitError(t *testing.T) {
	t.Parallel()

	svc := &mockService{submitErr: errors.New("store down")}
	r := newTestRouter(svc)

	if rec := postEvent(r, "issues", "d-1", issueEventBody); rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestHandleGetTriage(t *testing.T) {
	t.Parallel()

	svc := &mockService{run: &triage.Run{ID: "t-1", Status: triage.StatusComplete}}
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/triage/t-1", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var run triage.Run
	if err := json.NewDecoder(rec.Body).Decode(&run); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if run.ID != "t-1" || run.Status != triage.StatusComplete {
		t.Errorf("run = %+v", run)
	}
}

func TestHandleGetTriage_NotFound(t *testing.T) {
	t.Parallel()

	r := newTestRouter(&mockService{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/triage/missing", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleGetTriage_StoreError(t *testing.T) {
	t.Parallel()

	r := newTestRouter(&mockService{getErr: errors.New("db down")})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/triage/t-1", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func FuzzHandleEvent(f *testing.F) {
	r := newTestRouter(&mockService{})

	seeds := []struct {
		body  []byte
		event string
	}{
		{nil, ""},
		{[]byte(""), "issues"},
		{[]byte("{}"), "issues"},
		{[]byte(issueEventBody), "issues"},
		{[]byte("{invalid json"), "issues"},
		{[]byte("<xml>not json</xml>"), "ping"},
		{[]byte("\x00\x01\x02\xff\xfe"), "issues"},
		{[]byte(strings.Repeat("a", 10000)), "star"},
	}
	for _, s := range seeds {
		f.Add(s.body, s.event)
	}

	f.Fuzz(func(t *testing.T, body []byte, event string) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(string(body)))
		req.Header.Set("Content-Type", "application/json")
		if event != "" {
			req.Header.Set("X-GitHub-Event", event)
		}
		rec := httptest.NewRecorder()

		// Must not panic
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusAccepted && rec.Code != http.StatusBadRequest {
			t.Errorf("POST /api/v1/events with body len=%d event=%q = %d, want 202 or 400",
				len(body), event, rec.Code)
		}
	})
}
