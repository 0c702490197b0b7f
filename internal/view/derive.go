// Package view computes what the post list renders from cached data and the
// active filter state. Nothing here mutates its inputs.
package view

import (
	"cmp"
	"slices"
	"strings"

	"github.com/steemit/postsmanager/internal/models"
)

// SortBy names the field the rendered list is ordered by
type SortBy string

const (
	SortNone      SortBy = ""
	SortID        SortBy = "id"
	SortTitle     SortBy = "title"
	SortReactions SortBy = "reactions"
)

// ParseSortBy maps a raw value to a SortBy; "none" and unknown values mean no sorting
func ParseSortBy(raw string) SortBy {
	switch SortBy(strings.ToLower(raw)) {
	case SortID:
		return SortID
	case SortTitle:
		return SortTitle
	case SortReactions:
		return SortReactions
	default:
		return SortNone
	}
}

// SortOrder is the direction of the sort
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// ParseSortOrder maps a raw value to a SortOrder, defaulting to Asc
func ParseSortOrder(raw string) SortOrder {
	if SortOrder(strings.ToLower(raw)) == Desc {
		return Desc
	}
	return Asc
}

// Input is everything the rendered list depends on
type Input struct {
	Base         *models.PostPage
	Search       *models.PostPage
	SearchActive bool
	HasSearched  bool
	SortBy       SortBy
	SortOrder    SortOrder
}

// Source returns the page the list is drawn from. Search results are used
// only when a search was actually executed and is still active.
func Source(in Input) *models.PostPage {
	if in.HasSearched && in.SearchActive && in.Search != nil {
		return in.Search
	}
	return in.Base
}

// Derive returns the ordered posts to render. Sorting is stable and only
// covers the materialized page.
func Derive(in Input) []models.Post {
	page := Source(in)
	if page == nil {
		return []models.Post{}
	}

	posts := slices.Clone(page.Posts)
	if posts == nil {
		posts = []models.Post{}
	}
	if in.SortBy == SortNone {
		return posts
	}

	compare := comparator(in.SortBy)
	if in.SortOrder == Desc {
		asc := compare
		compare = func(a, b models.Post) int { return asc(b, a) }
	}
	slices.SortStableFunc(posts, compare)
	return posts
}

func comparator(by SortBy) func(a, b models.Post) int {
	switch by {
	case SortID:
		return func(a, b models.Post) int { return cmp.Compare(a.ID, b.ID) }
	case SortTitle:
		return func(a, b models.Post) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	case SortReactions:
		return func(a, b models.Post) int { return cmp.Compare(a.Reactions.Total(), b.Reactions.Total()) }
	default:
		return func(a, b models.Post) int { return 0 }
	}
}
