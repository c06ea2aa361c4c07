// Package webhook exposes the HTTP surface that receives issue tracker
// deliveries and reports triage run state.
package webhook

import (
	"context"
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/issue"
	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/triage"
)

// TriageService defines the business operations the webhook API needs.
type TriageService interface {
	Submit(ctx context.Context, sub *triage.Submission) (*triage.SubmitResult, error)
	Get(ctx context.Context, id string) (*triage.Run, bool, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger log.Logger
	svc    TriageService
}

// New creates a new API handler.
func New(logger log.Logger, svc TriageService) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("triage service is required"))
	}
	return &API{
		logger: logger,
		svc:    svc,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/events", a.handleEvent)
		r.Get("/triage/{id}", a.handleGetTriage)
	})
}

func (a *API) handleEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Only issues events carry work; everything else (pings, stars) is
	// acknowledged and dropped.
	if kind := r.Header.Get("X-GitHub-Event"); kind != "issues" {
		a.logger.Info(ctx, "ignoring event", "event", kind)
		writeJSON(w, http.StatusAccepted, map[string]any{"ignored": kind})
		return
	}

	var ev Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}

	repo, err := issue.ParseRepo(ev.Repository.FullName)
	if err != nil {
		http.Error(w, `{"error":"invalid repository"}`, http.StatusBadRequest)
		return
	}

	sub := &triage.Submission{
		DeliveryID: r.Header.Get("X-GitHub-Delivery"),
		Action:     ev.Action,
		Repo:       repo,
		Number:     ev.Issue.Number,
		Title:      ev.Issue.Title,
		Body:       ev.Issue.Body,
		Author:     ev.Issue.User.Login,
		Labels:     ev.Issue.LabelNames(),
		CreatedAt:  ev.Issue.CreatedAt,
	}

	res, err := a.svc.Submit(ctx, sub)
	if err != nil {
		a.logger.Error(ctx, err, "failed to submit delivery", "delivery", sub.DeliveryID)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("sentinel.delivery.id", sub.DeliveryID),
		attribute.String("sentinel.issue.repo", repo.String()),
		attribute.Int("sentinel.issue.number", sub.Number),
	)

	if res.Skipped {
		writeJSON(w, http.StatusAccepted, map[string]any{"skipped": res.Reason})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"triage_id": res.ID})
}

func (a *API) handleGetTriage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("sentinel.triage.id", id))

	run, ok, err := a.svc.Get(r.Context(), id)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to get triage run", "id", id)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	span.SetAttributes(attribute.String("sentinel.triage.status", string(run.Status)))

	writeJSON(w, http.StatusOK, run)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// nothing to do with errors here
	_ = json.NewEncoder(w).Encode(v)
}
