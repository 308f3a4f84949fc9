// Package highlight marks occurrences of query terms inside item text.
package highlight

import (
	"html"
	"regexp"
	"sort"
	"strings"
)

const (
	openTag  = "<mark>"
	closeTag = "</mark>"
)

// Span is a run of text that either matched a term or did not.
type Span struct {
	Text  string `json:"text"`
	Match bool   `json:"match,omitempty"`
}

// Pattern compiles terms into one case-insensitive alternation. Longer terms
// are tried first so "desk lamp" wins over "desk". Terms are matched
// literally.
func Pattern(terms []string) (*regexp.Regexp, error) {
	cleaned := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return nil, nil
	}
	sort.SliceStable(cleaned, func(i, j int) bool { return len(cleaned[i]) > len(cleaned[j]) })
	quoted := make([]string, len(cleaned))
	for i, t := range cleaned {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.Compile("(?i)" + strings.Join(quoted, "|"))
}

// Spans splits text into matched and unmatched runs. If no pattern can be
// built the whole text comes back as one unmatched span.
func Spans(text string, terms []string) []Span {
	if text == "" {
		return nil
	}
	re, err := Pattern(terms)
	if err != nil || re == nil {
		return []Span{{Text: text}}
	}
	locs := re.FindAllStringIndex(text, -1)
	spans := make([]Span, 0, 2*len(locs)+1)
	pos := 0
	for _, loc := range locs {
		if loc[0] == loc[1] {
			continue
		}
		if loc[0] > pos {
			spans = append(spans, Span{Text: text[pos:loc[0]]})
		}
		spans = append(spans, Span{Text: text[loc[0]:loc[1]], Match: true})
		pos = loc[1]
	}
	if pos < len(text) {
		spans = append(spans, Span{Text: text[pos:]})
	}
	return spans
}

// HTML escapes text and wraps every term occurrence in <mark>. On any
// failure the escaped text is returned without marks.
func HTML(text string, terms []string) string {
	var b strings.Builder
	for _, s := range Spans(text, terms) {
		if s.Match {
			b.WriteString(openTag)
			b.WriteString(html.EscapeString(s.Text))
			b.WriteString(closeTag)
			continue
		}
		b.WriteString(html.EscapeString(s.Text))
	}
	return b.String()
}
