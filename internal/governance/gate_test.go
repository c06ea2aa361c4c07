package governance

import (
	"slices"
	"strings"
	"testing"

	"github.com/darkneiss/ai-pr-sentinel-sub001/internal/issue"
)

func gateIssue() *issue.Issue {
	return &issue.Issue{
		Number: 1,
		Title:  issue.NewTitle("Crash when parsing empty config"),
		Body:   issue.NewDescription("Running v1.2 with an empty config file panics on startup, trace attached."),
		Author: issue.NewAuthor("octocat"),
	}
}

func TestBuildGatePlan_UnsupportedAction(t *testing.T) {
	t.Parallel()

	for _, action := range []string{"closed", "reopened", "labeled", "deleted", ""} {
		p := BuildGatePlan(action, gateIssue(), nil, "needs-more-info", nil)
		if p.Proceed {
			t.Errorf("action %q proceeded, want skip", action)
		}
		if p.SkipReason != SkipUnsupportedAction {
			t.Errorf("action %q reason = %q, want %q", action, p.SkipReason, SkipUnsupportedAction)
		}
	}
}

func TestBuildGatePlan_ValidProceeds(t *testing.T) {
	t.Parallel()

	p := BuildGatePlan("opened", gateIssue(), []string{"kind/bug"}, "needs-more-info", []string{"needs-more-info"})
	if !p.Proceed {
		t.Fatalf("want proceed, got skip %q", p.SkipReason)
	}
	if !p.LogValidated {
		t.Error("valid issue must log validation")
	}
	if len(p.RemoveLabels) != 0 {
		t.Errorf("remove = %v, want none when no error labels present", p.RemoveLabels)
	}
}

func TestBuildGatePlan_ValidClearsErrorLabels(t *testing.T) {
	t.Parallel()

	p := BuildGatePlan("edited", gateIssue(),
		[]string{"needs-more-info", "kind/bug"}, "needs-more-info", []string{"needs-more-info"})
	if !p.Proceed {
		t.Fatalf("want proceed, got skip %q", p.SkipReason)
	}
	if !slices.Equal(p.RemoveLabels, []string{"needs-more-info"}) {
		t.Errorf("remove = %v, want [needs-more-info]", p.RemoveLabels)
	}
}

func TestBuildGatePlan_InvalidFlagsOnce(t *testing.T) {
	t.Parallel()

	bad := gateIssue()
	bad.Body = issue.NewDescription("")

	p := BuildGatePlan("opened", bad, nil, "needs-more-info", nil)
	if p.Proceed {
		t.Fatal("invalid issue proceeded")
	}
	if p.SkipReason != SkipFailedValidation {
		t.Errorf("reason = %q, want %q", p.SkipReason, SkipFailedValidation)
	}
	if p.AddLabel != "needs-more-info" {
		t.Errorf("add label = %q, want needs-more-info", p.AddLabel)
	}
	if !strings.Contains(p.CommentBody, issue.ErrDescriptionRequired) {
		t.Errorf("comment %q missing violation %q", p.CommentBody, issue.ErrDescriptionRequired)
	}
	if !strings.HasPrefix(p.CommentBody, "This issue needs more information") {
		t.Errorf("comment = %q, wrong lead-in", p.CommentBody)
	}
}

func TestBuildGatePlan_AlreadyFlaggedStaysQuiet(t *testing.T) {
	t.Parallel()

	bad := gateIssue()
	bad.Body = issue.NewDescription("")

	p := BuildGatePlan("edited", bad, []string{"needs-more-info"}, "needs-more-info", nil)
	if p.Proceed {
		t.Fatal("invalid issue proceeded")
	}
	if p.SkipReason != SkipAlreadyFlagged {
		t.Errorf("reason = %q, want %q", p.SkipReason, SkipAlreadyFlagged)
	}
	if p.AddLabel != "" || p.CommentBody != "" {
		t.Errorf("plan = %+v, want no label or comment on re-violation", p)
	}
}
