package splitter

import (
	"strings"
	"unicode/utf8"
)

// Kind classifies a structural block element.
type Kind string

const (
	KindHeading    Kind = "heading"
	KindParagraph  Kind = "paragraph"
	KindList       Kind = "list"
	KindTable      Kind = "table"
	KindCode       Kind = "code"
	KindBlockquote Kind = "blockquote"
	KindBlank      Kind = "blank"
)

// Element is one classified block of the source document. Elements are
// produced in source order and are immutable after extraction; stages that
// enrich them return a new slice.
type Element struct {
	Index        int    // position in the document's element sequence
	Kind         Kind   // block classification
	Text         string // verbatim source slice (may span multiple lines)
	Length       int    // rune count of Text (0 for blank elements)
	Level        int    // 1-6 for markdown headings, 0 otherwise
	IsHeading    bool   // heading syntax OR a heading pattern matched
	EndsSentence bool   // last non-space rune is a sentence-ending mark

	line  int // first source line (0-based), used by the renderer
	lines int // number of source lines spanned
}

// sentenceEnds covers terminal punctuation in Latin and CJK scripts.
const sentenceEnds = ".!?。！？；;"

func endsWithSentenceMark(text string) bool {
	trimmed := strings.TrimRight(text, " \t\n")
	if trimmed == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(trimmed)
	return strings.ContainsRune(sentenceEnds, r)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
