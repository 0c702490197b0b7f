package view

import (
	"regexp"
	"strings"
)

// Segment is a run of text that either matches the search query or not
type Segment struct {
	Text  string `json:"text"`
	Match bool   `json:"match,omitempty"`
}

// Highlighter splits texts around one search query. The query is matched
// literally and case-insensitively. Build it once per query and reuse it
// for every row.
type Highlighter struct {
	re *regexp.Regexp
}

// NewHighlighter compiles query. A blank query highlights nothing.
func NewHighlighter(query string) *Highlighter {
	if strings.TrimSpace(query) == "" {
		return &Highlighter{}
	}
	return &Highlighter{re: regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))}
}

// Split returns text as matching and non-matching runs
func (h *Highlighter) Split(text string) []Segment {
	if text == "" {
		return nil
	}
	if h.re == nil {
		return []Segment{{Text: text}}
	}

	var segments []Segment
	last := 0
	for _, loc := range h.re.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			segments = append(segments, Segment{Text: text[last:loc[0]]})
		}
		segments = append(segments, Segment{Text: text[loc[0]:loc[1]], Match: true})
		last = loc[1]
	}
	if last < len(text) {
		segments = append(segments, Segment{Text: text[last:]})
	}
	return segments
}

// Highlight splits a single text; see Highlighter
func Highlight(text, query string) []Segment {
	return NewHighlighter(query).Split(text)
}
