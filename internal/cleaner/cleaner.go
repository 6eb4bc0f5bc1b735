// Package cleaner post-processes markdown between the parse stage and the
// splitter: OCR output tends to carry inline HTML, control characters, image
// placeholders and stray page numbers that would pollute indexed segments.
package cleaner

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reHTMLTag      = regexp.MustCompile(`<[^>]+>`)
	reControlChars = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f]")
	reBlankLines   = regexp.MustCompile(`\n{3,}`)
	rePageNumber   = regexp.MustCompile(`(?m)^\s*\d{1,4}\s*$`)
	reImageSimple  = regexp.MustCompile(`!\[.*?\]\(.*?\)`)
)

// markerToken stands in for the split marker while HTML tags are stripped, so
// a comment-style marker survives the tag pass.
const markerToken = "\x00MD_SPLIT_MARKER\x00"

// Clean applies the full cleaning pass. marker is the split marker to protect
// from the HTML strip; pass "" when the text carries none.
func Clean(text, marker string) string {
	if text == "" {
		return text
	}
	text = norm.NFC.String(text)
	text = StripHTMLTags(text, marker)
	text = RemoveControlChars(text)
	text = RemoveImagePlaceholders(text)
	text = DropPageNumberLines(text)
	text = CollapseBlankLines(text)
	return text
}

// StripHTMLTags removes HTML tags while preserving their text content.
func StripHTMLTags(text, marker string) string {
	if marker != "" {
		text = strings.ReplaceAll(text, marker, markerToken)
	}
	text = reHTMLTag.ReplaceAllString(text, "")
	if marker != "" {
		text = strings.ReplaceAll(text, markerToken, marker)
	}
	return text
}

// RemoveControlChars drops non-printable control characters except tabs and
// newlines.
func RemoveControlChars(text string) string {
	return reControlChars.ReplaceAllString(text, "")
}

// CollapseBlankLines reduces runs of three or more newlines to standard
// paragraph spacing.
func CollapseBlankLines(text string) string {
	return reBlankLines.ReplaceAllString(text, "\n\n")
}

// DropPageNumberLines blanks out lines that contain nothing but a short
// number, a common OCR artifact at page edges.
func DropPageNumberLines(text string) string {
	return rePageNumber.ReplaceAllString(text, "")
}

// RemoveImagePlaceholders removes markdown image syntax ![alt](dest). The
// scan understands escapes and nested parentheses in the destination; a
// regex fallback catches malformed leftovers in the simple form.
func RemoveImagePlaceholders(text string) string {
	if text == "" {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))
	i := 0
	for i < len(text) {
		if strings.HasPrefix(text[i:], "![") {
			if end := imageEnd(text, i); end > i {
				i = end
				continue
			}
		}
		sb.WriteByte(text[i])
		i++
	}
	return reImageSimple.ReplaceAllString(sb.String(), "")
}

// imageEnd returns the exclusive end index of a valid markdown image
// starting at start, or -1.
func imageEnd(text string, start int) int {
	n := len(text)
	i := start + 2

	// Alt text up to the closing bracket. A newline aborts.
	for i < n {
		switch text[i] {
		case '\\':
			i += 2
			continue
		case '\n':
			return -1
		case ']':
		default:
			i++
			continue
		}
		break
	}
	if i >= n || text[i] != ']' {
		return -1
	}

	i++
	for i < n && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	if i >= n || text[i] != '(' {
		return -1
	}

	depth := 0
	for i < n {
		switch text[i] {
		case '\\':
			i += 2
			continue
		case '\n':
			return -1
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
		i++
	}
	return -1
}
