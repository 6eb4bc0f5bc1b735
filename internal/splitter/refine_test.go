package splitter

import (
	"strings"
	"testing"
)

func TestRefine_CooldownSuppressesEarlySplit(t *testing.T) {
	// H, P1, P2 with a score split accepted right after P1: within two
	// non-blank elements of the heading, so the cooldown must suppress it.
	elements := Extract("# Head\n\nFirst paragraph ends. \n\nSecond paragraph.")
	elements = MarkHeadings(elements, CompileHeadingPatterns(""))

	points := []splitPoint{{Index: 4, Cause: causeScore}}

	cfg := DefaultConfig()
	cfg.HeadingCooldownElements = 2
	plan := refine(elements, points, cfg)

	if len(plan.Boundaries) != 0 {
		t.Errorf("expected split suppressed, got boundaries %v", plan.Boundaries)
	}
	if plan.CooldownSuppressed != 1 {
		t.Errorf("expected 1 cooldown suppression, got %d", plan.CooldownSuppressed)
	}
}

func TestRefine_CooldownZeroKeepsSplit(t *testing.T) {
	elements := Extract("# Head\n\nFirst paragraph ends. \n\nSecond paragraph.")
	points := []splitPoint{{Index: 4, Cause: causeScore}}

	cfg := DefaultConfig()
	cfg.HeadingCooldownElements = 0
	plan := refine(elements, points, cfg)

	if len(plan.Boundaries) != 1 || plan.Boundaries[0] != 4 {
		t.Errorf("expected boundary [4], got %v", plan.Boundaries)
	}
	if plan.ScoreSplits != 1 {
		t.Errorf("expected 1 score split, got %d", plan.ScoreSplits)
	}
}

func TestRefine_ForcedLengthExemptFromCooldown(t *testing.T) {
	elements := Extract("# Head\n\nFirst paragraph ends. \n\nSecond paragraph.")
	points := []splitPoint{{Index: 4, Cause: causeForcedLength}}

	cfg := DefaultConfig()
	cfg.HeadingCooldownElements = 5
	plan := refine(elements, points, cfg)

	if len(plan.Boundaries) != 1 {
		t.Errorf("expected forced-length split to survive cooldown, got %v", plan.Boundaries)
	}
	if plan.ForcedLengthSplits != 1 {
		t.Errorf("expected 1 forced-length split, got %d", plan.ForcedLengthSplits)
	}
}

func TestRefine_LoneHeadingMerged(t *testing.T) {
	// A boundary right after a heading-only opening segment must be dropped
	// so the heading travels with its body.
	elements := Extract("# Opening\n\nBody paragraph follows here.")
	points := []splitPoint{{Index: 2, Cause: causeForcedLength}}

	plan := refine(elements, points, DefaultConfig())
	if len(plan.Boundaries) != 0 {
		t.Errorf("expected lone-heading boundary removed, got %v", plan.Boundaries)
	}
}

func TestRefine_HeadingWithBodyNotMerged(t *testing.T) {
	elements := Extract("# Opening\n\nFirst body.\n\nSecond body.")
	points := []splitPoint{{Index: 4, Cause: causeScore}}

	cfg := DefaultConfig()
	cfg.HeadingCooldownElements = 0
	plan := refine(elements, points, cfg)

	if len(plan.Boundaries) != 1 || plan.Boundaries[0] != 4 {
		t.Errorf("expected boundary [4] kept, got %v", plan.Boundaries)
	}
}

func TestRender_SpliceAndStats(t *testing.T) {
	input := "# H\n\nfirst body line.\n\nsecond body line."
	elements := Extract(input)

	plan := SplitPlan{Boundaries: []int{3}, ScoreSplits: 1}
	out, stats := render(input, elements, plan, "<!--split-->\n")

	// Element 3 is the blank before the second paragraph.
	want := "# H\n\nfirst body line.\n<!--split-->\n\nsecond body line."
	if out != want {
		t.Errorf("render mismatch:\n got %q\nwant %q", out, want)
	}
	if stats.Segments != 2 {
		t.Errorf("expected 2 segments, got %d", stats.Segments)
	}
	if stats.Splits != 1 {
		t.Errorf("expected 1 split, got %d", stats.Splits)
	}
	if stats.MinSegmentLength <= 0 || stats.MaxSegmentLength < stats.MinSegmentLength {
		t.Errorf("suspicious segment lengths: %+v", stats)
	}
	if got := strings.ReplaceAll(out, "<!--split-->\n", ""); got != input {
		t.Error("removing markers did not restore the input")
	}
}

func TestRender_EmptyPlanReturnsInput(t *testing.T) {
	input := "plain text\nwith lines"
	out, stats := render(input, Extract(input), SplitPlan{}, "<!--split-->\n")
	if out != input {
		t.Error("expected input unchanged for empty boundary set")
	}
	if stats.Segments != 1 {
		t.Errorf("expected 1 segment, got %d", stats.Segments)
	}
}
