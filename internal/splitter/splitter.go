// Package splitter decides where to insert segment-boundary markers in a
// markdown document so that downstream chunk-based indexing produces
// coherent, appropriately sized passages. The pipeline is a pure function of
// its input text plus read-only configuration: extract elements, classify
// headings, score boundaries, refine the accepted set, splice markers back
// into the original text.
package splitter

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultMarker is inserted at each chosen boundary. The trailing newline is
// part of the marker so that removing every marker instance restores the
// input exactly while keeping the marker on its own line.
const DefaultMarker = "<!--split-->\n"

// Config carries the splitter options. Zero values are not usable; start
// from DefaultConfig.
type Config struct {
	Enabled     bool   `yaml:"enabled"`
	SplitMarker string `yaml:"split_marker"`

	MaxLength     int     `yaml:"max_length"`
	MinLength     int     `yaml:"min_length"`
	MinSplitScore float64 `yaml:"min_split_score"`

	HeadingScoreBonus       float64 `yaml:"heading_score_bonus"`
	SentenceEndScoreBonus   float64 `yaml:"sentence_end_score_bonus"`
	SentenceIntegrityWeight float64 `yaml:"sentence_integrity_weight"`
	LengthScoreFactor       int     `yaml:"length_score_factor"`
	HeadingAfterPenalty     float64 `yaml:"heading_after_penalty"`

	SearchWindow            int    `yaml:"search_window"`
	ForceSplitBeforeHeading bool   `yaml:"force_split_before_heading"`
	HeadingCooldownElements int    `yaml:"heading_cooldown_elements"`
	CustomHeadingRegex      string `yaml:"custom_heading_regex"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		Enabled:                 true,
		SplitMarker:             DefaultMarker,
		MaxLength:               1200,
		MinLength:               300,
		MinSplitScore:           7.0,
		HeadingScoreBonus:       10.0,
		SentenceEndScoreBonus:   6.0,
		SentenceIntegrityWeight: 8.0,
		LengthScoreFactor:       100,
		HeadingAfterPenalty:     12.0,
		SearchWindow:            5,
		ForceSplitBeforeHeading: true,
		HeadingCooldownElements: 2,
	}
}

// Validate rejects configurations that would produce a degenerate split plan.
// Callers are expected to clamp values before constructing a pipeline.
func (c Config) Validate() error {
	if c.SplitMarker == "" {
		return fmt.Errorf("splitter: split_marker must not be empty")
	}
	if c.MaxLength <= 0 {
		return fmt.Errorf("splitter: max_length must be positive, got %d", c.MaxLength)
	}
	if c.MinLength < 0 {
		return fmt.Errorf("splitter: min_length must not be negative, got %d", c.MinLength)
	}
	if c.MinLength > c.MaxLength {
		return fmt.Errorf("splitter: min_length %d exceeds max_length %d", c.MinLength, c.MaxLength)
	}
	if c.LengthScoreFactor <= 0 {
		return fmt.Errorf("splitter: length_score_factor must be positive, got %d", c.LengthScoreFactor)
	}
	if c.SearchWindow < 0 {
		return fmt.Errorf("splitter: search_window must not be negative, got %d", c.SearchWindow)
	}
	return nil
}

// Pipeline composes the five stages over a fixed configuration. It holds no
// mutable state of its own and may be invoked concurrently for different
// documents; the detector's bounded cache is the only shared resource.
type Pipeline struct {
	cfg      Config
	det      *Detector
	patterns []*regexp.Regexp
}

// New validates the configuration and builds a pipeline around the given
// detector. The detector is a caller-constructed resource so its model
// loading cost and cache lifetime stay under the caller's control.
func New(cfg Config, det *Detector) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:      cfg,
		det:      det,
		patterns: CompileHeadingPatterns(cfg.CustomHeadingRegex),
	}, nil
}

// Config returns the pipeline's configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Split runs the full pipeline over one document and returns the
// marker-annotated text with summary statistics. It never fails on
// well-formed text; when the splitter is disabled the input passes through
// unchanged as a single segment.
func (p *Pipeline) Split(text string) (string, Stats) {
	if !p.cfg.Enabled || text == "" {
		n := runeLen(text)
		return text, Stats{
			Segments:          1,
			MinSegmentLength:  n,
			MaxSegmentLength:  n,
			MeanSegmentLength: float64(n),
		}
	}

	elements := Extract(text)
	elements = MarkHeadings(elements, p.patterns)
	points := findSplitPoints(elements, p.cfg, p.det)
	plan := refine(elements, points, p.cfg)
	return render(text, elements, plan, p.cfg.SplitMarker)
}

// Segments cuts marker-annotated output back into its segment texts.
// Removing the markers this way restores the original input when the
// pieces are concatenated.
func Segments(out, marker string) []string {
	return strings.Split(out, marker)
}
