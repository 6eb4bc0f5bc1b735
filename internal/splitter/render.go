package splitter

import "strings"

// Stats summarizes one pipeline invocation.
type Stats struct {
	Elements            int     `json:"total_elements"`
	Segments            int     `json:"segment_count"`
	Splits              int     `json:"split_count"`
	ForcedLengthSplits  int     `json:"forced_length_splits"`
	HeadingForcedSplits int     `json:"heading_forced_splits"`
	ScoreSplits         int     `json:"score_splits"`
	CooldownSuppressed  int     `json:"cooldown_suppressed"`
	MinSegmentLength    int     `json:"min_segment_length"`
	MaxSegmentLength    int     `json:"max_segment_length"`
	MeanSegmentLength   float64 `json:"mean_segment_length"`
}

// render splices the marker into the original text at each chosen boundary.
// Every character outside the insertion points is preserved exactly; removing
// all marker instances from the output reproduces the input byte for byte.
func render(text string, elements []Element, plan SplitPlan, marker string) (string, Stats) {
	stats := Stats{
		Elements:            len(elements),
		Splits:              len(plan.Boundaries),
		ForcedLengthSplits:  plan.ForcedLengthSplits,
		HeadingForcedSplits: plan.HeadingForcedSplits,
		ScoreSplits:         plan.ScoreSplits,
		CooldownSuppressed:  plan.CooldownSuppressed,
	}

	if len(plan.Boundaries) == 0 || len(elements) == 0 {
		stats.Segments = 1
		n := runeLen(text)
		stats.MinSegmentLength = n
		stats.MaxSegmentLength = n
		stats.MeanSegmentLength = float64(n)
		return text, stats
	}

	// Byte offset of each source line.
	lines := strings.Split(text, "\n")
	lineStart := make([]int, len(lines))
	off := 0
	for k, l := range lines {
		lineStart[k] = off
		off += len(l) + 1
	}

	offsets := make([]int, 0, len(plan.Boundaries))
	for _, b := range plan.Boundaries {
		offsets = append(offsets, lineStart[elements[b].line])
	}

	var sb strings.Builder
	sb.Grow(len(text) + len(marker)*len(offsets))

	prev := 0
	total := 0
	stats.MinSegmentLength = -1
	addSegment := func(seg string) {
		n := runeLen(seg)
		total += n
		if stats.MinSegmentLength < 0 || n < stats.MinSegmentLength {
			stats.MinSegmentLength = n
		}
		if n > stats.MaxSegmentLength {
			stats.MaxSegmentLength = n
		}
	}

	for _, o := range offsets {
		sb.WriteString(text[prev:o])
		sb.WriteString(marker)
		addSegment(text[prev:o])
		prev = o
	}
	sb.WriteString(text[prev:])
	addSegment(text[prev:])

	stats.Segments = len(offsets) + 1
	stats.MeanSegmentLength = float64(total) / float64(stats.Segments)
	return sb.String(), stats
}
