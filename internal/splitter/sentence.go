package splitter

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-ego/gse"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// cjkMajority is the fraction of non-space runes near a boundary that must be
// CJK for the CJK segmenter to own the decision. Mixed-script text goes to
// whichever tokenizer holds the majority.
const cjkMajority = 0.5

// cacheKeyRunes bounds how much of each side of a boundary feeds the cache
// key. Short fragments recur heavily within one document, so truncated keys
// keep the hit rate without storing whole paragraphs.
const cacheKeyRunes = 64

// DefaultCacheSize bounds the boundary cache when the caller does not care.
const DefaultCacheSize = 2048

type boundaryKey struct {
	before string
	after  string
}

// Detector answers whether two adjacent text fragments form a genuine
// sentence break. It holds the tokenizer models and a bounded result cache;
// construct one per process or per worker and share it across documents.
// All methods are safe for concurrent use.
type Detector struct {
	seg   gse.Segmenter
	punkt *sentences.DefaultSentenceTokenizer
	cache *lru.Cache[boundaryKey, bool]
}

// NewDetector loads the tokenizer models and allocates a bounded LRU cache of
// the given capacity (DefaultCacheSize if nonpositive).
func NewDetector(cacheSize int) (*Detector, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}

	d := &Detector{}
	if err := d.seg.LoadDict(); err != nil {
		return nil, fmt.Errorf("load segmenter dict: %w", err)
	}
	punkt, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load sentence tokenizer: %w", err)
	}
	d.punkt = punkt

	cache, err := lru.New[boundaryKey, bool](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create boundary cache: %w", err)
	}
	d.cache = cache
	return d, nil
}

// IsSentenceBoundary reports whether the end of before and the start of after
// constitute a sentence break rather than an abbreviation or a mid-sentence
// line wrap.
func (d *Detector) IsSentenceBoundary(before, after string) bool {
	if strings.TrimSpace(before) == "" {
		return true
	}
	if endsWithSentenceMark(before) {
		return true
	}

	key := boundaryKey{
		before: tailRunes(before, cacheKeyRunes),
		after:  headRunes(after, cacheKeyRunes),
	}
	if v, ok := d.cache.Get(key); ok {
		return v
	}

	var result bool
	combined := key.before + " " + key.after
	if isCJKDominant(combined) {
		result = d.cjkBoundary(key.before, key.after)
	} else {
		result = d.latinBoundary(key.before, key.after)
	}

	d.cache.Add(key, result)
	return result
}

// cjkBoundary segments the joined text and checks whether a terminal
// punctuation token lands at the seam between the two fragments.
func (d *Detector) cjkBoundary(before, after string) bool {
	combined := before + after
	words := d.seg.Cut(combined, true)

	prefix := 0
	target := runeLen(before)
	for i, w := range words {
		prefix += runeLen(w)
		if i == len(words)-1 {
			break
		}
		if len(w) > 0 && strings.ContainsAny(w, sentenceEnds) && abs(prefix-target) < 5 {
			return true
		}
	}
	return false
}

// latinBoundary asks the Punkt tokenizer whether the seam coincides with a
// sentence edge in the joined text.
func (d *Detector) latinBoundary(before, after string) bool {
	combined := before + " " + after
	for _, s := range d.punkt.Tokenize(combined) {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		if strings.HasSuffix(strings.TrimRight(before, " \t"), text) {
			return true
		}
		if strings.HasPrefix(strings.TrimLeft(after, " \t"), text) {
			return true
		}
	}
	return false
}

// NearestSentenceBoundary searches up to window elements in each direction
// from index and returns the element index of the nearest confirmed sentence
// boundary, or -1 if none is found in the window.
func (d *Detector) NearestSentenceBoundary(elements []Element, index, window int) int {
	best := -1
	bestDist := window + 1

	lo := index - window
	if lo < 1 {
		lo = 1
	}
	hi := index + window
	if hi > len(elements)-1 {
		hi = len(elements) - 1
	}

	for i := lo; i <= hi; i++ {
		prev := elements[i-1].Text
		cur := elements[i].Text
		if prev == "" || cur == "" {
			continue
		}
		if !d.IsSentenceBoundary(prev, cur) {
			continue
		}
		dist := abs(i - index)
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return best
}

func isCJKDominant(text string) bool {
	total := 0
	cjk := 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) ||
			unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r) {
			cjk++
		}
	}
	if total == 0 {
		return false
	}
	return float64(cjk)/float64(total) > cjkMajority
}

func tailRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

func headRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
