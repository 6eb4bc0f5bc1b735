package splitter

import (
	"regexp"
	"strings"
)

// Default patterns for enumerated-section idioms. Many scanned academic
// documents mark chapter headings as plain numbered prose rather than with
// markdown heading syntax.
var defaultHeadingPatterns = []string{
	`^第[一二三四五六七八九十百千]+[章节]`,
	`^[一二三四五六七八九十]+[、.]`,
	`^\d+(\.\d+)*\s*[\x{4e00}-\x{9fff}]{0,30}$`,
	`^[(（][一二三四五六七八九十]+[)）]`,
	`^[(（]?\d+[)）]`,
}

// maxHeadingRunes bounds how long a line can be and still look like a
// section heading.
const maxHeadingRunes = 80

// CompileHeadingPatterns builds the heading pattern set from the defaults
// plus a comma-separated list of user regexes. Patterns that fail to compile
// are skipped.
func CompileHeadingPatterns(customCSV string) []*regexp.Regexp {
	raw := make([]string, 0, len(defaultHeadingPatterns)+4)
	raw = append(raw, defaultHeadingPatterns...)
	for _, part := range strings.Split(customCSV, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			raw = append(raw, part)
		}
	}

	compiled := make([]*regexp.Regexp, 0, len(raw))
	for _, p := range raw {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		compiled = append(compiled, re)
	}
	return compiled
}

// MarkHeadings returns a copy of the element sequence with IsHeading set on
// elements whose leading text matches a heading pattern. Kind is never
// changed; native headings stay as they are.
func MarkHeadings(elements []Element, patterns []*regexp.Regexp) []Element {
	out := make([]Element, len(elements))
	copy(out, elements)

	for i := range out {
		el := &out[i]
		if el.IsHeading {
			continue
		}
		switch el.Kind {
		case KindBlank, KindCode, KindTable:
			continue
		}
		plain := strings.TrimSpace(strings.TrimLeft(el.Text, "#"))
		if looksLikeHeading(plain, patterns) {
			el.IsHeading = true
		}
	}
	return out
}

func looksLikeHeading(text string, patterns []*regexp.Regexp) bool {
	if text == "" {
		return false
	}
	if runeLen(text) > maxHeadingRunes {
		return false
	}
	if endsWithSentenceMark(text) {
		return false
	}
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
