package parser

import (
	"strings"
	"testing"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		want     any
		wantErr  bool
	}{
		{"doc.md", &MarkdownParser{}, false},
		{"doc.markdown", &MarkdownParser{}, false},
		{"notes.txt", &TextParser{}, false},
		{"data.csv", &CSVParser{}, false},
		{"page.html", &HTMLParser{}, false},
		{"page.htm", &HTMLParser{}, false},
		{"report.PDF", &PDFParser{}, false},
		{"report.docx", &DOCXParser{}, false},
		{"image.png", nil, true},
		{"noext", nil, true},
	}
	for _, tt := range tests {
		p, err := ForFile(tt.filename)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ForFile(%q): expected error, got parser %T", tt.filename, p)
			}
			continue
		}
		if err != nil {
			t.Errorf("ForFile(%q): unexpected error: %v", tt.filename, err)
			continue
		}
		if gotType, wantType := typeName(p), typeName(tt.want); gotType != wantType {
			t.Errorf("ForFile(%q) = %s, want %s", tt.filename, gotType, wantType)
		}
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *MarkdownParser:
		return "MarkdownParser"
	case *TextParser:
		return "TextParser"
	case *CSVParser:
		return "CSVParser"
	case *HTMLParser:
		return "HTMLParser"
	case *PDFParser:
		return "PDFParser"
	case *DOCXParser:
		return "DOCXParser"
	}
	return "unknown"
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("a.md") {
		t.Error("expected .md to be supported")
	}
	if IsSupportedExtension("a.exe") {
		t.Error("expected .exe to be unsupported")
	}
}

func TestMarkdownParser_Passthrough(t *testing.T) {
	input := "# Title\n\nIntro text.\n\n## Section A\n\nContent here.\n"
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Markdown != input {
		t.Errorf("markdown must pass through unchanged.\ngot:  %q\nwant: %q", doc.Markdown, input)
	}
	if doc.Title != "Title" {
		t.Errorf("expected title %q, got %q", "Title", doc.Title)
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	input := "Just some plain text.\n\nAnother paragraph here."
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// No heading to lift, so the title falls back to the filename.
	if doc.Title != "plain" {
		t.Errorf("expected title %q, got %q", "plain", doc.Title)
	}
	if doc.Markdown != input {
		t.Errorf("content changed: %q", doc.Markdown)
	}
}

func TestTextParser_NormalizesCRLF(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader("line one\r\nline two\r\n"), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Markdown != "line one\nline two\n" {
		t.Errorf("expected CRLF normalized, got %q", doc.Markdown)
	}
	if doc.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", doc.Title)
	}
}

func TestHTMLParser_HeadingsAndBlocks(t *testing.T) {
	input := `<html><head><title>Page Title</title></head><body>
<h1>Main</h1>
<p>First paragraph.</p>
<h2>Sub</h2>
<ul><li>item one</li><li>item two</li></ul>
<pre>code line</pre>
<script>ignored()</script>
</body></html>`

	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "Page Title" {
		t.Errorf("expected title from <title>, got %q", doc.Title)
	}
	for _, want := range []string{"# Main", "First paragraph.", "## Sub", "- item one", "- item two", "```\ncode line\n```"} {
		if !strings.Contains(doc.Markdown, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, doc.Markdown)
		}
	}
	if strings.Contains(doc.Markdown, "ignored()") {
		t.Errorf("script content leaked into output:\n%s", doc.Markdown)
	}
}

func TestCSVParser_MarkdownTable(t *testing.T) {
	input := "name,age\nalice,30\nbob,25\n"
	p := &CSVParser{}
	doc, err := p.Parse(strings.NewReader(input), "people.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "| name | age |\n| --- | --- |\n| alice | 30 |\n| bob | 25 |"
	if doc.Markdown != want {
		t.Errorf("table mismatch.\ngot:  %q\nwant: %q", doc.Markdown, want)
	}
}

func TestCSVParser_PipeEscaping(t *testing.T) {
	input := "col\na|b\n"
	p := &CSVParser{}
	doc, err := p.Parse(strings.NewReader(input), "x.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(doc.Markdown, `a\|b`) {
		t.Errorf("expected pipe escaped, got %q", doc.Markdown)
	}
}

func TestCSVParser_Empty(t *testing.T) {
	p := &CSVParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Markdown != "" {
		t.Errorf("expected empty markdown, got %q", doc.Markdown)
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"readme.md", "readme"},
		{"notes.markdown", "notes"},
		{"dir/report.pdf", "report"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		if got := titleFromFilename(tt.filename); got != tt.want {
			t.Errorf("titleFromFilename(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}
