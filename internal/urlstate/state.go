// Package urlstate keeps the filter state and the page address in sync.
package urlstate

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/steemit/postsmanager/internal/view"
)

// DefaultLimit is the page size used when the address carries none
const DefaultLimit = 10

// Query parameter names
const (
	ParamSearch    = "search"
	ParamTag       = "tag"
	ParamSortBy    = "sortBy"
	ParamSortOrder = "sortOrder"
	ParamSkip      = "skip"
	ParamLimit     = "limit"
)

// FilterState is the part of the page state mirrored into the address
type FilterState struct {
	Search    string         `json:"search"`
	Tag       string         `json:"tag"`
	SortBy    view.SortBy    `json:"sortBy"`
	SortOrder view.SortOrder `json:"sortOrder"`
	Skip      int            `json:"skip"`
	Limit     int            `json:"limit"`
}

// Default returns the state of a bare address
func Default() FilterState {
	return FilterState{SortOrder: view.Asc, Limit: DefaultLimit}
}

// AllTags is the tag value meaning no tag filter
const AllTags = "all"

// Normalize maps out-of-range values to their defaults
func (s FilterState) Normalize() FilterState {
	if s.Tag == AllTags {
		s.Tag = ""
	}
	s.SortBy = view.ParseSortBy(string(s.SortBy))
	s.SortOrder = view.ParseSortOrder(string(s.SortOrder))
	if s.Skip < 0 {
		s.Skip = 0
	}
	if s.Limit <= 0 {
		s.Limit = DefaultLimit
	}
	return s
}

// Encode renders the state as a query string. Parameters equal to their
// default are omitted, so the default state encodes to "".
func (s FilterState) Encode() string {
	s = s.Normalize()
	def := Default()

	values := url.Values{}
	if s.Search != "" {
		values.Set(ParamSearch, s.Search)
	}
	if s.Tag != "" {
		values.Set(ParamTag, s.Tag)
	}
	if s.SortBy != def.SortBy {
		values.Set(ParamSortBy, string(s.SortBy))
	}
	if s.SortOrder != def.SortOrder {
		values.Set(ParamSortOrder, string(s.SortOrder))
	}
	if s.Skip != def.Skip {
		values.Set(ParamSkip, strconv.Itoa(s.Skip))
	}
	if s.Limit != def.Limit {
		values.Set(ParamLimit, strconv.Itoa(s.Limit))
	}
	return values.Encode()
}

// Parse reads a query string, with or without the leading "?". Missing or
// malformed parameters take their default.
func Parse(raw string) FilterState {
	// ParseQuery keeps the pairs it could decode
	values, _ := url.ParseQuery(strings.TrimPrefix(raw, "?"))

	s := Default()
	s.Search = values.Get(ParamSearch)
	s.Tag = values.Get(ParamTag)
	s.SortBy = view.ParseSortBy(values.Get(ParamSortBy))
	if v := values.Get(ParamSortOrder); v != "" {
		s.SortOrder = view.ParseSortOrder(v)
	}
	if v, err := strconv.Atoi(values.Get(ParamSkip)); err == nil {
		s.Skip = v
	}
	if v, err := strconv.Atoi(values.Get(ParamLimit)); err == nil {
		s.Limit = v
	}
	return s.Normalize()
}
