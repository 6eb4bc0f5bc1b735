package splitter

// SplitPlan is the refiner's output: the final ordered split indices plus
// counts of how each accepted split came to be.
type SplitPlan struct {
	Boundaries          []int // element indices where a new segment begins
	ForcedLengthSplits  int
	HeadingForcedSplits int
	ScoreSplits         int
	CooldownSuppressed  int
}

// refine post-processes the scorer's accepted boundaries: the heading
// cooldown filter first, then the lone-heading merge. Both are pure passes
// over the scorer's finished output and never feed back into scoring.
func refine(elements []Element, points []splitPoint, cfg Config) SplitPlan {
	var plan SplitPlan

	kept := make([]splitPoint, 0, len(points))
	for _, p := range points {
		if suppressedByCooldown(elements, p, cfg.HeadingCooldownElements) {
			plan.CooldownSuppressed++
			continue
		}
		kept = append(kept, p)
	}

	kept = mergeLoneHeadings(elements, kept)

	for _, p := range kept {
		plan.Boundaries = append(plan.Boundaries, p.Index)
		switch p.Cause {
		case causeForcedLength:
			plan.ForcedLengthSplits++
		case causeForcedHeading:
			plan.HeadingForcedSplits++
		default:
			plan.ScoreSplits++
		}
	}
	return plan
}

// suppressedByCooldown reports whether a split lands too soon after a
// heading. Forced-length splits are exempt, as are splits placed directly
// before a heading: those open a new section rather than shearing off the
// first lines of the current one.
func suppressedByCooldown(elements []Element, p splitPoint, cooldown int) bool {
	if cooldown <= 0 {
		return false
	}
	if p.Cause == causeForcedLength {
		return false
	}
	if elements[p.Index].IsHeading {
		return false
	}

	// Walk back over up to cooldown non-blank elements looking for a heading.
	seen := 0
	for i := p.Index - 1; i >= 0 && seen < cooldown; i-- {
		if elements[i].Kind == KindBlank {
			continue
		}
		if elements[i].IsHeading {
			return true
		}
		seen++
	}
	return false
}

// mergeLoneHeadings drops any boundary that would close a segment whose sole
// non-blank content is a heading, so the heading travels with its following
// body text. The document start acts as an implicit previous boundary. A
// segment containing only a heading carries nothing retrievable.
func mergeLoneHeadings(elements []Element, points []splitPoint) []splitPoint {
	if len(points) == 0 {
		return points
	}

	out := make([]splitPoint, 0, len(points))
	segStart := 0
	for _, p := range points {
		if loneHeadingSegment(elements, segStart, p.Index) {
			continue
		}
		out = append(out, p)
		segStart = p.Index
	}
	return out
}

// loneHeadingSegment reports whether elements[start:end) contains exactly one
// non-blank element and it is a heading.
func loneHeadingSegment(elements []Element, start, end int) bool {
	content := -1
	for i := start; i < end && i < len(elements); i++ {
		if elements[i].Kind == KindBlank {
			continue
		}
		if content >= 0 {
			return false
		}
		content = i
	}
	return content >= 0 && elements[content].IsHeading
}
