// Package suggest produces "did you mean" corrections and related searches
// from the words of an item collection and the recent search history.
package suggest

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/inventory"
)

var relatedPatterns = []string{"low stock", "high price", "recent"}

// Suggester holds the vocabulary of one item snapshot. It is immutable and
// safe for concurrent use.
type Suggester struct {
	items []*inventory.Item
	vocab []string
}

// New builds a Suggester over items.
func New(items []*inventory.Item) *Suggester {
	return &Suggester{
		items: items,
		vocab: Vocabulary(items, nil),
	}
}

// VocabularySize is the number of distinct item words.
func (s *Suggester) VocabularySize() int {
	return len(s.vocab)
}

// DidYouMean returns up to max alternative spellings of query. Each query
// word is replaced by its nearest vocabulary word within the edit threshold
// min(3, len/2); the fully corrected query comes first, then single-word
// corrections, then recent searches close to the whole query.
func (s *Suggester) DidYouMean(query string, recent []string, max int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || max <= 0 {
		return nil
	}
	vocab := s.vocab
	if len(recent) > 0 {
		vocab = mergeSorted(vocab, Vocabulary(nil, recent))
	}

	words := strings.Fields(q)
	corrected := make([]string, len(words))
	copy(corrected, words)
	var single []string
	changed := 0
	for i, w := range words {
		best, ok := nearest(w, vocab)
		if !ok {
			continue
		}
		corrected[i] = best
		changed++
		alt := make([]string, len(words))
		copy(alt, words)
		alt[i] = best
		single = append(single, strings.Join(alt, " "))
	}

	out := newResultSet(max, q)
	if changed > 0 {
		out.add(strings.Join(corrected, " "))
	}
	if changed > 1 {
		for _, alt := range single {
			out.add(alt)
		}
	}
	limit := threshold(utf8.RuneCountInString(q))
	for _, r := range recent {
		r = strings.ToLower(strings.TrimSpace(r))
		if d := Distance(q, r); d > 0 && d <= limit {
			out.add(r)
		}
	}
	return out.list
}

// Related returns up to max searches derived from the first query word:
// category and tag variants taken from items mentioning the word, then
// fixed pattern suffixes.
func (s *Suggester) Related(query string, max int) []string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	if len(words) == 0 || max <= 0 {
		return nil
	}
	first := words[0]
	out := newResultSet(max, strings.Join(words, " "))

	var categories, tags []string
	seenCat := make(map[string]bool)
	seenTag := make(map[string]bool)
	for _, it := range s.items {
		if it == nil || !mentions(it, first) {
			continue
		}
		if c := strings.ToLower(strings.TrimSpace(it.Category)); c != "" && !seenCat[c] {
			seenCat[c] = true
			categories = append(categories, c)
		}
		for _, tag := range it.Tags {
			t := strings.ToLower(strings.TrimSpace(tag))
			if t != "" && t != first && !seenTag[t] {
				seenTag[t] = true
				tags = append(tags, t)
			}
		}
	}
	for _, c := range categories {
		if c != first {
			out.add(c + " " + first)
		}
	}
	for _, t := range tags {
		out.add(first + " " + t)
	}
	for _, p := range relatedPatterns {
		out.add(first + " " + p)
	}
	return out.list
}

// DidYouMean is a convenience wrapper building a Suggester for one call.
func DidYouMean(query string, items []*inventory.Item, recent []string, max int) []string {
	return New(items).DidYouMean(query, recent, max)
}

// Related is a convenience wrapper building a Suggester for one call.
func Related(query string, items []*inventory.Item, max int) []string {
	return New(items).Related(query, max)
}

// nearest finds the closest vocabulary word to w with distance in
// (0, threshold]. Ties go to the alphabetically first word. A word already
// in the vocabulary has no correction.
func nearest(w string, vocab []string) (string, bool) {
	limit := threshold(utf8.RuneCountInString(w))
	if limit == 0 {
		return "", false
	}
	if i := sort.SearchStrings(vocab, w); i < len(vocab) && vocab[i] == w {
		return "", false
	}
	best, bestDist := "", limit+1
	for _, v := range vocab {
		if abs(utf8.RuneCountInString(v)-utf8.RuneCountInString(w)) > limit {
			continue
		}
		if d := Distance(w, v); d > 0 && d < bestDist {
			best, bestDist = v, d
		}
	}
	return best, best != ""
}

func mentions(it *inventory.Item, word string) bool {
	if strings.Contains(strings.ToLower(it.Name), word) ||
		strings.Contains(strings.ToLower(it.Category), word) ||
		strings.Contains(strings.ToLower(it.Description), word) {
		return true
	}
	for _, tag := range it.Tags {
		if strings.Contains(strings.ToLower(tag), word) {
			return true
		}
	}
	return false
}

func mergeSorted(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// resultSet is an insertion-ordered, de-duplicated list capped at max that
// never contains the original query.
type resultSet struct {
	max  int
	seen map[string]bool
	list []string
}

func newResultSet(max int, exclude string) *resultSet {
	return &resultSet{max: max, seen: map[string]bool{exclude: true}}
}

func (r *resultSet) add(s string) {
	if len(r.list) >= r.max || r.seen[s] {
		return
	}
	r.seen[s] = true
	r.list = append(r.list, s)
}
