package triage

import (
	"context"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"

	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/analysis"
	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/governance"
	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/issue"
)

// recentIssueLimit bounds how many recent issues feed duplicate fallback.
const recentIssueLimit = 10

// Submission is one webhook delivery, already decoded by the HTTP layer.
type Submission struct {
	DeliveryID string
	Action     string
	Repo       issue.Repo
	Number     int
	Title      string
	Body       string
	Author     string
	Labels     []string
	CreatedAt  time.Time
}

// SubmitResult is the outcome of submitting a delivery for triage.
type SubmitResult struct {
	ID      string
	Skipped bool
	Reason  string
}

// Deps collects the collaborators a Service needs.
type Deps struct {
	Store    Store
	Provider ModelProvider
	Gateway  governance.Gateway
	History  governance.History
	Docs     DocSource
	Builder  *governance.PlanBuilder
	Labels   governance.Labels
	// ErrorLabels are removed from issues that pass validation.
	ErrorLabels []string
	// BotLogin is the account the bot comments as, used for comment dedup.
	BotLogin string
	Logger   log.Logger
	Metrics  *Metrics
	Notifier Notifier
}

// Service owns dedup, lifecycle, and async dispatch of triage runs.
type Service struct {
	deps Deps
}

// NewService creates a new triage service.
func NewService(deps Deps) *Service {
	if deps.Logger == nil {
		deps.Logger = log.Nop()
	}
	return &Service{deps: deps}
}

// Submit accepts a webhook delivery, handling dedup and the action-verb
// check, then dispatches the triage work asynchronously.
func (s *Service) Submit(ctx context.Context, sub *Submission) (*SubmitResult, error) {
	// redelivery dedup
	if sub.DeliveryID != "" {
		if _, ok, err := s.deps.Store.GetByDelivery(ctx, sub.DeliveryID); err != nil {
			return nil, err
		} else if ok {
			s.countSubmit("duplicate")
			return &SubmitResult{Skipped: true, Reason: "duplicate delivery"}, nil
		}
	}

	// unsupported verbs skip before any validation or AI work
	if !governance.SupportedAction(sub.Action) {
		s.countSubmit("unsupported")
		return &SubmitResult{Skipped: true, Reason: governance.SkipUnsupportedAction}, nil
	}

	num, err := issue.NewNumber(sub.Number)
	if err != nil {
		s.countSubmit("invalid")
		return &SubmitResult{Skipped: true, Reason: "invalid issue number"}, nil
	}
	if sub.Repo.IsZero() {
		s.countSubmit("invalid")
		return &SubmitResult{Skipped: true, Reason: "invalid repository"}, nil
	}

	id := ulid.Make().String()
	run := &Run{
		ID:          id,
		DeliveryID:  sub.DeliveryID,
		Repo:        sub.Repo.String(),
		IssueNumber: num.Int(),
		Action:      sub.Action,
		Status:      StatusPending,
		CreatedAt:   time.Now(),
	}
	if err := s.deps.Store.Put(ctx, run); err != nil {
		return nil, err
	}

	s.countSubmit("accepted")

	// async triage - pass only the ID to avoid sharing the Run pointer
	go s.runTriage(context.WithoutCancel(ctx), id, num, sub)

	return &SubmitResult{ID: id}, nil
}

// Get retrieves a triage run by ID.
func (s *Service) Get(ctx context.Context, id string) (*Run, bool, error) {
	return s.deps.Store.Get(ctx, id)
}

func (s *Service) runTriage(ctx context.Context, id string, num issue.Number, sub *Submission) {
	L := s.deps.Logger.With("triage_id", id, "repo", sub.Repo.String(), "issue", num.Int())
	start := time.Now()

	run, ok, err := s.deps.Store.Get(ctx, id)
	if err != nil || !ok {
		L.Error(ctx, err, "failed to fetch run for triage")
		return
	}
	run.Status = StatusInProgress
	if err := s.deps.Store.Put(ctx, run); err != nil {
		L.Error(ctx, err, "failed to update run status")
		return
	}

	s.execute(ctx, L, run, num, sub)

	run.CompletedAt = time.Now()
	run.Duration = time.Since(start).Seconds()
	if err := s.deps.Store.Put(ctx, run); err != nil {
		L.Error(ctx, err, "failed to persist triage run")
	}

	if m := s.deps.Metrics; m != nil {
		m.RunsTotal.WithLabelValues(string(run.Status)).Inc()
		m.RunDuration.WithLabelValues(string(run.Status)).Observe(run.Duration)
		m.ActionsApplied.Observe(float64(run.AppliedActions))
	}

	if s.deps.Notifier != nil {
		if err := s.deps.Notifier.Send(ctx, run); err != nil {
			L.Warn(ctx, "notifier send failed", "error", err)
		}
	}

	L.Info(ctx, "triage finished",
		"status", run.Status,
		"skip_reason", run.SkipReason,
		"applied_actions", run.AppliedActions,
		"duration", run.Duration,
	)
}

// execute runs the gate, the model call, and the governance plan, mutating
// run in place. Gateway errors fail the run; model and parse problems skip
// it (fail-open, never block the contributor).
func (s *Service) execute(ctx context.Context, L log.Logger, run *Run, num issue.Number, sub *Submission) {
	is := &issue.Issue{
		Number:    num,
		Title:     issue.NewTitle(sub.Title),
		Body:      issue.NewDescription(sub.Body),
		Author:    issue.NewAuthor(sub.Author),
		CreatedAt: sub.CreatedAt,
	}

	gate := governance.BuildGatePlan(sub.Action, is, sub.Labels, s.deps.Labels.NeedsMoreInfo, s.deps.ErrorLabels)
	if err := s.applyGate(ctx, run, sub, gate); err != nil {
		L.Error(ctx, err, "gate action failed")
		run.Status = StatusFailed
		run.Error = err.Error()
		return
	}
	if !gate.Proceed {
		L.Info(ctx, "triage gated", "reason", gate.SkipReason)
		run.Status = StatusSkipped
		run.SkipReason = gate.SkipReason
		return
	}

	recent, err := s.deps.History.FindRecentIssues(ctx, sub.Repo, recentIssueLimit)
	if err != nil {
		L.Error(ctx, err, "recent issue lookup failed")
		run.Status = StatusFailed
		run.Error = err.Error()
		return
	}

	// Grounding is best-effort telemetry; a missing doc never blocks triage.
	repoDoc := ""
	if s.deps.Docs != nil {
		repoDoc, err = s.deps.Docs.GetRepositoryDoc(ctx, sub.Repo)
		if err != nil {
			L.Warn(ctx, "repository doc fetch failed", "error", err)
			repoDoc = ""
		}
	}

	llmStart := time.Now()
	resp, err := s.deps.Provider.Analyze(ctx, &AnalyzeRequest{
		Repo:         sub.Repo,
		Number:       num,
		Title:        sub.Title,
		Body:         sub.Body,
		RecentIssues: recent,
	})
	if err != nil {
		// fail-open: the bot must not block on model unreliability
		L.Warn(ctx, "model analysis unavailable", "error", err)
		run.Status = StatusSkipped
		run.SkipReason = "analysis unavailable"
		return
	}
	if m := s.deps.Metrics; m != nil {
		m.LLMDuration.Observe(time.Since(llmStart).Seconds())
		m.LLMTokensIn.Add(float64(resp.InputTokens))
		m.LLMTokensOut.Add(float64(resp.OutputTokens))
	}
	run.InputTokens = resp.InputTokens
	run.OutputTokens = resp.OutputTokens

	a, grammar, ok := analysis.NormalizeDetailed(resp.RawText, num)
	if m := s.deps.Metrics; m != nil {
		m.NormalizeTotal.WithLabelValues(string(grammar)).Inc()
	}
	if !ok {
		L.Warn(ctx, "model output did not match any grammar", "raw_len", len(resp.RawText))
		run.Status = StatusSkipped
		run.SkipReason = "unparseable analysis"
		return
	}
	run.Analysis = a
	run.Grammar = string(grammar)

	snap := &governance.Snapshot{
		Repo:          sub.Repo,
		Number:        num,
		Title:         sub.Title,
		Body:          sub.Body,
		Action:        governance.IssueAction(sub.Action),
		Labels:        sub.Labels,
		RecentIssues:  recent,
		RepositoryDoc: repoDoc,
	}
	plan := s.deps.Builder.Build(snap, a)

	ec := governance.NewExecutionContext(s.deps.Gateway, s.deps.History, snap, plan, s.deps.BotLogin)
	if err := ec.Apply(ctx); err != nil {
		L.Error(ctx, err, "plan application failed", "applied", ec.Applied())
		run.Status = StatusFailed
		run.Error = err.Error()
		run.AppliedActions += ec.Applied()
		return
	}

	run.Status = StatusComplete
	run.AppliedActions += ec.Applied()
	run.Suppressed = plan.Kind.SuppressedByHostileTone
	run.Grounded = plan.Grounded
	if plan.Question.ShouldCreateComment {
		run.ResponseSource = string(plan.Question.ResponseSource)
	}

	if m := s.deps.Metrics; m != nil {
		if plan.Kind.SuppressedByHostileTone {
			m.KindSuppressedTotal.Inc()
		}
		if plan.Question.ShouldCreateComment {
			m.ResponseSourceTotal.WithLabelValues(
				string(plan.Question.ResponseSource), boolLabel(plan.Grounded)).Inc()
		}
	}
}

// applyGate executes the pre-AI gate plan, charging actions to the run.
func (s *Service) applyGate(ctx context.Context, run *Run, sub *Submission, gate governance.GatePlan) error {
	num := issue.Number(run.IssueNumber)

	if gate.AddLabel != "" {
		if err := s.deps.Gateway.AddLabels(ctx, sub.Repo, num, []string{gate.AddLabel}); err != nil {
			return err
		}
		run.AppliedActions++
		if err := s.deps.Gateway.CreateComment(ctx, sub.Repo, num, gate.CommentBody); err != nil {
			return err
		}
		run.AppliedActions++
	}

	for _, label := range gate.RemoveLabels {
		if err := s.deps.Gateway.RemoveLabel(ctx, sub.Repo, num, label); err != nil {
			return err
		}
		run.AppliedActions++
	}

	if gate.LogValidated {
		if err := s.deps.Gateway.LogValidatedIssue(ctx, sub.Repo, num); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) countSubmit(result string) {
	if m := s.deps.Metrics; m != nil {
		m.SubmitsTotal.WithLabelValues(result).Inc()
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
