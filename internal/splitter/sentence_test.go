package splitter

import (
	"sync"
	"testing"
)

var (
	testDetOnce sync.Once
	testDet     *Detector
	testDetErr  error
)

func newTestDetector(t *testing.T) *Detector {
	t.Helper()
	testDetOnce.Do(func() {
		testDet, testDetErr = NewDetector(128)
	})
	if testDetErr != nil {
		t.Fatalf("NewDetector: %v", testDetErr)
	}
	return testDet
}

func TestIsSentenceBoundary_TerminalPunctuation(t *testing.T) {
	det := newTestDetector(t)

	tests := []struct {
		before string
		after  string
		want   bool
	}{
		{"", "Anything at all", true},
		{"   ", "Anything at all", true},
		{"The experiment concluded.", "A new paragraph begins", true},
		{"实验到此结束。", "下一段开始", true},
		{"Is this the end?", "Yes it is", true},
		{"终わりですか！", "はい", true},
	}
	for _, tt := range tests {
		if got := det.IsSentenceBoundary(tt.before, tt.after); got != tt.want {
			t.Errorf("IsSentenceBoundary(%q, %q) = %v, want %v", tt.before, tt.after, got, tt.want)
		}
	}
}

func TestIsSentenceBoundary_MidSentenceWrap(t *testing.T) {
	det := newTestDetector(t)

	if det.IsSentenceBoundary("The quick brown fox", "jumps over the lazy dog.") {
		t.Error("expected a mid-sentence line wrap to not be a boundary")
	}
	if det.IsSentenceBoundary("本方法的主要优点在于", "处理速度明显提升") {
		t.Error("expected a mid-sentence CJK wrap to not be a boundary")
	}
}

func TestIsSentenceBoundary_Deterministic(t *testing.T) {
	det := newTestDetector(t)

	before := "Some dangling clause without punctuation"
	after := "continues on the next line"
	first := det.IsSentenceBoundary(before, after)
	for i := 0; i < 3; i++ {
		if got := det.IsSentenceBoundary(before, after); got != first {
			t.Fatalf("run %d: result flipped from %v to %v", i, first, got)
		}
	}
}

func TestNearestSentenceBoundary(t *testing.T) {
	det := newTestDetector(t)

	elements := []Element{
		{Index: 0, Kind: KindParagraph, Text: "First sentence ends here."},
		{Index: 1, Kind: KindParagraph, Text: "Second block without terminal punct"},
		{Index: 2, Kind: KindParagraph, Text: "third continues the thought"},
	}

	// The boundary before element 1 is confirmed by element 0's terminal
	// punctuation; searching from element 2 should find it.
	if got := det.NearestSentenceBoundary(elements, 2, 5); got != 1 {
		t.Errorf("expected nearest boundary at 1, got %d", got)
	}
}

func TestNearestSentenceBoundary_NoneInWindow(t *testing.T) {
	det := newTestDetector(t)

	elements := []Element{
		{Index: 0, Kind: KindParagraph, Text: "no terminal punctuation here"},
		{Index: 1, Kind: KindParagraph, Text: "and none here either"},
	}
	if got := det.NearestSentenceBoundary(elements, 1, 0); got != -1 {
		t.Errorf("expected -1 sentinel, got %d", got)
	}
}

func TestIsCJKDominant(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"纯中文文本内容", true},
		{"pure latin text", false},
		{"mixed 中文 with english words all over", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isCJKDominant(tt.text); got != tt.want {
			t.Errorf("isCJKDominant(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestDetector_CacheBounded(t *testing.T) {
	det, err := NewDetector(4)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}

	inputs := []string{"aaaa", "bbbb", "cccc", "dddd", "eeee", "ffff", "gggg", "hhhh"}
	for _, s := range inputs {
		det.IsSentenceBoundary(s+" unfinished", "next fragment")
	}
	if n := det.cache.Len(); n > 4 {
		t.Errorf("cache grew to %d entries, capacity is 4", n)
	}
}
