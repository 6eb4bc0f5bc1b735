package splitter

import (
	"strings"
	"testing"
)

func newTestPipeline(t *testing.T, cfg Config) *Pipeline {
	t.Helper()
	p, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func sampleDocument() string {
	var sb strings.Builder
	sb.WriteString("# Intro\n\n")
	for i := 0; i < 12; i++ {
		sb.WriteString(strings.Repeat("Sentence with a proper ending. ", 8))
		sb.WriteString("\n\n")
	}
	sb.WriteString("## Methods\n\n")
	sb.WriteString("- step one\n- step two\n\n")
	sb.WriteString("```\ncode block content\n```\n\n")
	sb.WriteString("第二章 结果\n\n")
	sb.WriteString(strings.Repeat("实验结果表明该方法在多数场景下有效。", 30))
	sb.WriteString("\n")
	return sb.String()
}

func TestSplit_ReconstructionInvariant(t *testing.T) {
	cfg := DefaultConfig()
	p := newTestPipeline(t, cfg)

	inputs := []string{
		sampleDocument(),
		"",
		"single line",
		"# Only a heading\n",
		"a\n\nb\n\nc",
	}
	for _, input := range inputs {
		out, _ := p.Split(input)
		if got := strings.ReplaceAll(out, cfg.SplitMarker, ""); got != input {
			t.Errorf("removing markers did not restore input:\n got %q\nwant %q", got, input)
		}
	}
}

func TestSplit_DisabledPassthrough(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	p := newTestPipeline(t, cfg)

	input := sampleDocument()
	out, stats := p.Split(input)
	if out != input {
		t.Error("expected disabled splitter to return input unchanged")
	}
	if stats.Segments != 1 {
		t.Errorf("expected 1 segment, got %d", stats.Segments)
	}
	if stats.Splits != 0 {
		t.Errorf("expected 0 splits, got %d", stats.Splits)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	p := newTestPipeline(t, DefaultConfig())
	input := sampleDocument()

	first, firstStats := p.Split(input)
	for i := 0; i < 3; i++ {
		out, stats := p.Split(input)
		if out != first {
			t.Fatalf("run %d: output differs", i)
		}
		if stats != firstStats {
			t.Fatalf("run %d: stats differ: %+v vs %+v", i, stats, firstStats)
		}
	}
}

func TestSplit_LengthCeiling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxLength = 1200
	cfg.MinLength = 100
	p := newTestPipeline(t, cfg)

	out, stats := p.Split(sampleDocument())
	if stats.Splits == 0 {
		t.Fatal("expected at least one split in the sample document")
	}

	for i, seg := range strings.Split(out, cfg.SplitMarker) {
		n := runeLen(seg)
		if n <= cfg.MaxLength {
			continue
		}
		// Only a single atomic element may exceed the ceiling.
		if nonBlankElements(seg) > 1 {
			t.Errorf("segment %d has %d runes across multiple elements, ceiling is %d", i, n, cfg.MaxLength)
		}
	}
}

func TestSplit_LengthFloor(t *testing.T) {
	// A document where nothing forces: every accepted split must respect the
	// floor, so no non-final segment may be shorter than MinLength.
	cfg := DefaultConfig()
	cfg.MaxLength = 5000
	cfg.MinLength = 200
	p := newTestPipeline(t, cfg)

	var sb strings.Builder
	for i := 0; i < 10; i++ {
		sb.WriteString(strings.Repeat("Short complete statement here. ", 5))
		sb.WriteString("\n\n")
	}
	out, stats := p.Split(sb.String())
	if stats.ForcedLengthSplits != 0 {
		t.Fatalf("expected no forced-length splits, got %d", stats.ForcedLengthSplits)
	}

	segs := strings.Split(out, cfg.SplitMarker)
	for i, seg := range segs[:len(segs)-1] {
		if n := runeLen(seg); n < cfg.MinLength {
			t.Errorf("segment %d is %d runes, floor is %d", i, n, cfg.MinLength)
		}
	}
}

func TestSplit_ScenarioForcedLongRun(t *testing.T) {
	input := "# Title\n\nShort line.\n\n## Sub\n\n" + strings.Repeat("X", 2000)

	cfg := DefaultConfig()
	cfg.MinLength = 300
	cfg.MaxLength = 1200
	p := newTestPipeline(t, cfg)

	out, stats := p.Split(input)
	if stats.ForcedLengthSplits < 1 {
		t.Errorf("expected the 2000-char run to trigger a forced split, stats: %+v", stats)
	}
	if strings.Contains(out, "# Title\n"+cfg.SplitMarker) {
		t.Error("unexpected split directly after the title (accumulated length below floor)")
	}
	if got := strings.ReplaceAll(out, cfg.SplitMarker, ""); got != input {
		t.Error("reconstruction failed for scenario input")
	}
}

func TestSplit_ScenarioShortDocumentStaysWhole(t *testing.T) {
	input := "First short paragraph.\n\nSecond short paragraph."

	cfg := DefaultConfig()
	cfg.MinLength = 300
	cfg.MaxLength = 1200
	p := newTestPipeline(t, cfg)

	out, stats := p.Split(input)
	if stats.Splits != 0 {
		t.Errorf("expected zero splits, got %d", stats.Splits)
	}
	if stats.Segments != 1 {
		t.Errorf("expected one segment, got %d", stats.Segments)
	}
	if out != input {
		t.Error("expected output to equal input when nothing splits")
	}
}

func TestSplit_ScenarioHeadingCooldown(t *testing.T) {
	// A heading followed by one short paragraph then another heading: the
	// boundary right after the first heading must be suppressed so the
	// heading merges with the paragraph.
	body := strings.Repeat("Paragraph content with an ending. ", 12)
	input := "## First\n\n" + body + "\n\n## Second\n\n" + body

	cfg := DefaultConfig()
	cfg.MinLength = 50
	cfg.HeadingCooldownElements = 2
	p := newTestPipeline(t, cfg)

	out, _ := p.Split(input)
	if strings.Contains(out, "## First\n"+cfg.SplitMarker) {
		t.Error("expected the boundary right after the first heading to be suppressed")
	}
	if strings.Contains(out, "## First\n\n"+cfg.SplitMarker) {
		t.Error("expected the heading to merge with its following paragraph")
	}
}

func TestSplit_NoLoneHeadingSegments(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinLength = 10
	cfg.MaxLength = 400
	p := newTestPipeline(t, cfg)

	input := "# One\n\n" + strings.Repeat("Body text sentence here. ", 20) +
		"\n\n# Two\n\n" + strings.Repeat("More body text follows. ", 20)
	out, _ := p.Split(input)

	for i, seg := range strings.Split(out, cfg.SplitMarker) {
		elements := Extract(seg)
		content := 0
		headings := 0
		for _, el := range elements {
			if el.Kind == KindBlank {
				continue
			}
			content++
			if el.IsHeading {
				headings++
			}
		}
		if content == 1 && headings == 1 {
			t.Errorf("segment %d consists solely of a heading: %q", i, seg)
		}
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	p := newTestPipeline(t, DefaultConfig())
	out, stats := p.Split("")
	if out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
	if stats.Segments != 1 {
		t.Errorf("expected segment count 1, got %d", stats.Segments)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"floor above ceiling", func(c *Config) { c.MinLength = 2000 }, true},
		{"zero max", func(c *Config) { c.MaxLength = 0 }, true},
		{"negative min", func(c *Config) { c.MinLength = -1 }, true},
		{"zero length factor", func(c *Config) { c.LengthScoreFactor = 0 }, true},
		{"negative window", func(c *Config) { c.SearchWindow = -1 }, true},
		{"empty marker", func(c *Config) { c.SplitMarker = "" }, true},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(&cfg)
		err := cfg.Validate()
		if tt.wantErr && err == nil {
			t.Errorf("%s: expected error, got nil", tt.name)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
		}
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinLength = cfg.MaxLength + 1
	if _, err := New(cfg, nil); err == nil {
		t.Fatal("expected constructor to reject min_length > max_length")
	}
}

// nonBlankElements counts the content elements in a rendered segment.
func nonBlankElements(seg string) int {
	n := 0
	for _, el := range Extract(seg) {
		if el.Kind != KindBlank {
			n++
		}
	}
	return n
}
