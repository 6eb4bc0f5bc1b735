package splitter

import (
	"regexp"
	"strings"
)

var (
	reHeading    = regexp.MustCompile(`^(#+)\s+(.*)$`)
	reListItem   = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+`)
	reCodeFence  = regexp.MustCompile("^(```|~~~)")
	reBlockquote = regexp.MustCompile(`^>\s?`)
	reTableRow   = regexp.MustCompile(`^\|.*\|$`)
)

// Extract tokenizes markdown into an ordered element sequence. It never fails
// on valid text: anything ambiguous falls through to the paragraph kind.
func Extract(text string) []Element {
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	var elements []Element
	idx := 0
	i := 0

	appendElement := func(kind Kind, raw string, startLine, lineCount int) {
		el := Element{
			Index: idx,
			Kind:  kind,
			Text:  raw,
			line:  startLine,
			lines: lineCount,
		}
		if kind != KindBlank {
			el.Length = runeLen(raw)
			el.EndsSentence = endsWithSentenceMark(raw)
		}
		elements = append(elements, el)
		idx++
	}

	for i < len(lines) {
		start := i
		line := lines[i]
		stripped := strings.TrimSpace(line)

		// Run of blank lines collapses into a single blank element.
		if stripped == "" {
			for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
				i++
			}
			appendElement(KindBlank, "", start, i-start)
			continue
		}

		// Fenced code block: absorb up to and including the closing fence.
		// An unterminated fence absorbs to end of document.
		if reCodeFence.MatchString(stripped) {
			i++
			for i < len(lines) {
				closing := reCodeFence.MatchString(strings.TrimSpace(lines[i]))
				i++
				if closing {
					break
				}
			}
			appendElement(KindCode, strings.Join(lines[start:i], "\n"), start, i-start)
			continue
		}

		if m := reHeading.FindStringSubmatch(stripped); m != nil {
			level := len(m[1])
			if level > 6 {
				level = 6
			}
			el := Element{
				Index:        idx,
				Kind:         KindHeading,
				Text:         stripped,
				Length:       runeLen(stripped),
				Level:        level,
				IsHeading:    true,
				EndsSentence: endsWithSentenceMark(stripped),
				line:         start,
				lines:        1,
			}
			elements = append(elements, el)
			idx++
			i++
			continue
		}

		// Table: consecutive pipe rows with a consistent column count group
		// into one element. A row with a different count starts a new table.
		if reTableRow.MatchString(stripped) {
			cols := strings.Count(stripped, "|")
			for i < len(lines) {
				s := strings.TrimSpace(lines[i])
				if !reTableRow.MatchString(s) || strings.Count(s, "|") != cols {
					break
				}
				i++
			}
			appendElement(KindTable, strings.Join(lines[start:i], "\n"), start, i-start)
			continue
		}

		if reBlockquote.MatchString(stripped) {
			for i < len(lines) && reBlockquote.MatchString(strings.TrimSpace(lines[i])) {
				i++
			}
			appendElement(KindBlockquote, strings.Join(lines[start:i], "\n"), start, i-start)
			continue
		}

		// List run: list-marker lines plus indented continuation lines.
		if reListItem.MatchString(stripped) {
			i++
			for i < len(lines) {
				next := strings.TrimSpace(lines[i])
				if next == "" {
					break
				}
				if reListItem.MatchString(next) || strings.HasPrefix(lines[i], "  ") {
					i++
					continue
				}
				break
			}
			appendElement(KindList, strings.Join(lines[start:i], "\n"), start, i-start)
			continue
		}

		// Paragraph: consecutive non-blank lines until one of the other
		// openers starts.
		i++
		for i < len(lines) {
			next := strings.TrimSpace(lines[i])
			if next == "" ||
				reHeading.MatchString(next) ||
				reCodeFence.MatchString(next) ||
				reTableRow.MatchString(next) ||
				reBlockquote.MatchString(next) ||
				reListItem.MatchString(next) {
				break
			}
			i++
		}
		appendElement(KindParagraph, strings.Join(lines[start:i], "\n"), start, i-start)
	}

	return elements
}
