package parser

import (
	"io"
	"strings"
)

// TextParser treats plain text as markdown body text. Hard-wrapped lines
// are preserved as-is; blank lines already separate paragraphs.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	body := strings.ReplaceAll(string(src), "\r\n", "\n")
	return &Document{
		Title:    titleFromFilename(filename),
		Markdown: body,
	}, nil
}
