package suggest

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/inventory"
)

const minWordLen = 3

var stopWords = map[string]struct{}{
	"and": {}, "are": {}, "for": {}, "from": {}, "has": {}, "the": {},
	"was": {}, "were": {}, "will": {}, "with": {}, "this": {}, "but": {},
	"have": {}, "had": {}, "not": {}, "its": {}, "that": {},
}

// Words lowercases text, splits it on anything that is not a letter or digit,
// and keeps words longer than two runes that are not stop-words.
func Words(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	words := fields[:0]
	for _, w := range fields {
		if utf8.RuneCountInString(w) < minWordLen {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		words = append(words, w)
	}
	return words
}

// Vocabulary collects the distinct words of item names, descriptions,
// categories and tags, plus the words of recent searches. The result is
// sorted.
func Vocabulary(items []*inventory.Item, recent []string) []string {
	set := make(map[string]struct{})
	add := func(text string) {
		for _, w := range Words(text) {
			set[w] = struct{}{}
		}
	}
	for _, it := range items {
		if it == nil {
			continue
		}
		add(it.Name)
		add(it.Description)
		add(it.Category)
		for _, tag := range it.Tags {
			add(tag)
		}
	}
	for _, q := range recent {
		add(q)
	}
	vocab := make([]string, 0, len(set))
	for w := range set {
		vocab = append(vocab, w)
	}
	sort.Strings(vocab)
	return vocab
}
