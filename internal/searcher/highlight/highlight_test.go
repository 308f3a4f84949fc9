package highlight

import (
	"reflect"
	"testing"
)

func TestHTML(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		terms []string
		want  string
	}{
		{"single", "Dell Monitor", []string{"monitor"}, "Dell <mark>Monitor</mark>"},
		{"repeated", "lamp and lamp", []string{"LAMP"}, "<mark>lamp</mark> and <mark>lamp</mark>"},
		{"longest first", "desk lamp", []string{"desk", "desk lamp"}, "<mark>desk lamp</mark>"},
		{"escapes text", "<b>Cable</b> & more", []string{"cable"}, "&lt;b&gt;<mark>Cable</mark>&lt;/b&gt; &amp; more"},
		{"regex metacharacters", "Price (USD) $5.00+", []string{"(usd)", "$5.00+"}, "Price <mark>(USD)</mark> <mark>$5.00+</mark>"},
		{"no terms", "a < b", nil, "a &lt; b"},
		{"blank terms", "plain", []string{" ", ""}, "plain"},
		{"empty text", "", []string{"x"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTML(tt.text, tt.terms); got != tt.want {
				t.Errorf("HTML(%q, %q) = %q, want %q", tt.text, tt.terms, got, tt.want)
			}
		})
	}
}

func TestSpans(t *testing.T) {
	got := Spans("Office Chair", []string{"chair"})
	want := []Span{{Text: "Office "}, {Text: "Chair", Match: true}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Spans = %+v, want %+v", got, want)
	}
}
