package splitter

// splitCause records which rule accepted a split point.
type splitCause int

const (
	causeScore splitCause = iota
	causeForcedLength
	causeForcedHeading
)

// splitPoint marks an accepted boundary: a new segment begins at element
// Index.
type splitPoint struct {
	Index int
	Cause splitCause
}

// findSplitPoints evaluates every boundary in document order, tracking the
// length accumulated since the last accepted split. It runs to completion
// over the whole document; refinement happens in a strictly later pass and
// never feeds back into scoring.
func findSplitPoints(elements []Element, cfg Config, det *Detector) []splitPoint {
	var points []splitPoint

	// acc is the length of the segment that would be closed by splitting at
	// the current boundary, i.e. everything up to and including element i.
	acc := 0

	for i := 0; i+1 < len(elements); i++ {
		acc += elements[i].Length
		next := elements[i+1]

		// Hard ceiling: close the segment before the element that would push
		// it to MaxLength. A single element longer than MaxLength stays
		// atomic; the split lands on its far side instead.
		if acc > 0 && acc+next.Length >= cfg.MaxLength {
			points = append(points, splitPoint{Index: i + 1, Cause: causeForcedLength})
			acc = 0
			continue
		}

		// Heading force, gated on the floor so a heading right after a short
		// opener does not produce a degenerate segment.
		if cfg.ForceSplitBeforeHeading && next.IsHeading && acc >= cfg.MinLength {
			points = append(points, splitPoint{Index: i + 1, Cause: causeForcedHeading})
			acc = 0
			continue
		}

		if next.Kind == KindBlank {
			continue
		}
		if acc < cfg.MinLength {
			continue
		}
		if boundaryScore(elements, i, acc, cfg, det) >= cfg.MinSplitScore {
			points = append(points, splitPoint{Index: i + 1, Cause: causeScore})
			acc = 0
		}
	}

	return points
}

// boundaryScore computes the desirability of splitting between element i and
// i+1 given the accumulated segment length.
func boundaryScore(elements []Element, i, acc int, cfg Config, det *Detector) float64 {
	next := elements[i+1]
	score := 0.0

	if next.IsHeading {
		score += cfg.HeadingScoreBonus
	}

	prev := lastContentIndex(elements, i)
	if prev >= 0 && elements[prev].EndsSentence {
		score += cfg.SentenceEndScoreBonus
	}

	score += cfg.SentenceIntegrityWeight * sentenceSignal(elements, i, cfg.SearchWindow, det)
	score += float64(acc) / float64(cfg.LengthScoreFactor)

	if prev >= 0 && elements[prev].IsHeading {
		score -= cfg.HeadingAfterPenalty
	}

	return score
}

// sentenceSignal is 1 when the boundary coincides exactly with a confirmed
// sentence break, decays with the distance to the nearest confirmed break
// within the search window, and is 0 when none is in reach.
func sentenceSignal(elements []Element, i, window int, det *Detector) float64 {
	if det == nil {
		return 0
	}
	prev := lastContentIndex(elements, i)
	if prev < 0 {
		return 0
	}
	if det.IsSentenceBoundary(elements[prev].Text, elements[i+1].Text) {
		return 1
	}
	nearest := det.NearestSentenceBoundary(elements, i+1, window)
	if nearest < 0 {
		return 0
	}
	return 1 / float64(1+abs(nearest-(i+1)))
}

// lastContentIndex walks back from i to the nearest non-blank element.
func lastContentIndex(elements []Element, i int) int {
	for ; i >= 0; i-- {
		if elements[i].Kind != KindBlank {
			return i
		}
	}
	return -1
}
