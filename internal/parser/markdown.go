package parser

import (
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser passes markdown through untouched and lifts the document
// title from the first heading via goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Title:    titleFromFilename(filename),
		Markdown: string(src),
	}
	if title := firstHeading(src); title != "" {
		doc.Title = title
	}
	return doc, nil
}

// firstHeading returns the text of the first heading in the document, or "".
func firstHeading(src []byte) string {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		if title := strings.TrimSpace(string(h.Text(src))); title != "" {
			return title
		}
	}
	return ""
}
