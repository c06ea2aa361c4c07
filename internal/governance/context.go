package governance

import (
	"context"

	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/issue"
)

// ExecutionContext applies an action plan against the gateway with
// idempotent add/remove semantics. It keeps a live mirror of the issue's
// label set so each policy step reads the state left by the previous one,
// and a running count of actions actually applied.
//
// An ExecutionContext lives for exactly one triage request.
type ExecutionContext struct {
	gateway  Gateway
	history  History
	repo     issue.Repo
	number   issue.Number
	plan     *Plan
	botLogin string

	labels  map[string]struct{}
	applied int
}

// NewExecutionContext wraps a built plan. A nil plan is a programming error
// in the caller's composition and panics.
func NewExecutionContext(gw Gateway, hist History, snap *Snapshot, plan *Plan, botLogin string) *ExecutionContext {
	if plan == nil {
		panic(xerrors.New("governance: execution context requires a built action plan"))
	}
	labels := make(map[string]struct{}, len(snap.Labels))
	for _, l := range snap.Labels {
		labels[l] = struct{}{}
	}
	return &ExecutionContext{
		gateway:  gw,
		history:  hist,
		repo:     snap.Repo,
		number:   snap.Number,
		plan:     plan,
		botLogin: botLogin,
		labels:   labels,
	}
}

// Applied returns the number of gateway actions executed so far.
func (c *ExecutionContext) Applied() int { return c.applied }

// HasLabel reports whether the mirror currently holds the label.
func (c *ExecutionContext) HasLabel(label string) bool {
	_, ok := c.labels[label]
	return ok
}

// AddLabelIfMissing adds the label unless the mirror already holds it.
// Returns true only when a gateway call was made.
func (c *ExecutionContext) AddLabelIfMissing(ctx context.Context, label string) (bool, error) {
	if c.HasLabel(label) {
		return false, nil
	}
	if err := c.gateway.AddLabels(ctx, c.repo, c.number, []string{label}); err != nil {
		return false, err
	}
	c.labels[label] = struct{}{}
	c.applied++
	return true, nil
}

// RemoveLabelIfPresent removes the label if the mirror holds it.
// Returns true only when a gateway call was made.
func (c *ExecutionContext) RemoveLabelIfPresent(ctx context.Context, label string) (bool, error) {
	if !c.HasLabel(label) {
		return false, nil
	}
	if err := c.gateway.RemoveLabel(ctx, c.repo, c.number, label); err != nil {
		return false, err
	}
	delete(c.labels, label)
	c.applied++
	return true, nil
}

// Apply executes all sub-plans in fixed order: classification, duplicate,
// tone, question, curation. The order is part of the contract: a label
// removed by the classification step cannot be re-added by a later step
// that still believes it is present.
func (c *ExecutionContext) Apply(ctx context.Context) error {
	if err := c.applyKind(ctx); err != nil {
		return err
	}
	if err := c.applyDuplicate(ctx); err != nil {
		return err
	}
	if err := c.applyTone(ctx); err != nil {
		return err
	}
	if err := c.applyQuestion(ctx); err != nil {
		return err
	}
	return c.applyCuration(ctx)
}

func (c *ExecutionContext) applyKind(ctx context.Context) error {
	for _, label := range c.plan.Kind.LabelsToRemove {
		if _, err := c.RemoveLabelIfPresent(ctx, label); err != nil {
			return err
		}
	}
	for _, label := range c.plan.Kind.LabelsToAdd {
		if _, err := c.AddLabelIfMissing(ctx, label); err != nil {
			return err
		}
	}
	return nil
}

func (c *ExecutionContext) applyDuplicate(ctx context.Context) error {
	d := c.plan.Duplicate
	if !d.ShouldApply {
		return nil
	}
	added, err := c.AddLabelIfMissing(ctx, d.Label)
	if err != nil {
		return err
	}
	// The comment is gated on the label being newly added so repeated runs
	// against an already-labelled issue stay silent.
	if !added {
		return nil
	}
	if err := c.gateway.CreateComment(ctx, c.repo, c.number, d.CommentBody); err != nil {
		return err
	}
	c.applied++
	return nil
}

func (c *ExecutionContext) applyTone(ctx context.Context) error {
	for _, label := range c.plan.Tone.LabelsToAdd {
		if _, err := c.AddLabelIfMissing(ctx, label); err != nil {
			return err
		}
	}
	return nil
}

func (c *ExecutionContext) applyQuestion(ctx context.Context) error {
	q := c.plan.Question
	if !q.ShouldCreateComment {
		return nil
	}
	prefix := q.ResponseSource.CommentPrefix()
	exists, err := c.history.HasIssueCommentWithPrefix(ctx, c.repo, c.number, prefix, c.botLogin)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := c.gateway.CreateComment(ctx, c.repo, c.number, prefix+"\n"+q.ResponseBody); err != nil {
		return err
	}
	c.applied++
	return nil
}

func (c *ExecutionContext) applyCuration(ctx context.Context) error {
	for _, label := range c.plan.Curation.LabelsToAdd {
		if _, err := c.AddLabelIfMissing(ctx, label); err != nil {
			return err
		}
	}
	return nil
}
