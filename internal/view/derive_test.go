package view

import (
	"testing"

	"github.com/steemit/postsmanager/internal/models"
)

func post(id int64, title string, likes, dislikes int) models.Post {
	return models.Post{ID: id, Title: title, Reactions: &models.Reactions{Likes: likes, Dislikes: dislikes}}
}

func ids(posts []models.Post) []int64 {
	out := make([]int64, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDerive_SearchGate(t *testing.T) {
	base := &models.PostPage{Posts: []models.Post{post(1, "a", 0, 0), post(2, "b", 0, 0), post(3, "c", 0, 0)}, Total: 3}
	search := &models.PostPage{Posts: []models.Post{post(9, "z", 0, 0)}, Total: 1}

	tests := []struct {
		name     string
		in       Input
		expected []int64
	}{
		{"not searched", Input{Base: base, Search: search}, []int64{1, 2, 3}},
		{"active but never searched", Input{Base: base, Search: search, SearchActive: true}, []int64{1, 2, 3}},
		{"searched then cleared", Input{Base: base, Search: search, HasSearched: true}, []int64{1, 2, 3}},
		{"searched and active", Input{Base: base, Search: search, SearchActive: true, HasSearched: true}, []int64{9}},
		{"searched without result", Input{Base: base, SearchActive: true, HasSearched: true}, []int64{1, 2, 3}},
		{"nothing cached", Input{}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(Derive(tt.in)); !equalIDs(got, tt.expected) {
				t.Errorf("Derive() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDerive_Sorting(t *testing.T) {
	base := &models.PostPage{Posts: []models.Post{
		post(1, "banana", 3, 2),  // 5
		post(2, "Apple", 1, 0),   // 1
		post(3, "cherry", 4, 1),  // 5
		post(4, "apricot", 0, 0), // 0
	}}

	tests := []struct {
		name     string
		by       SortBy
		order    SortOrder
		expected []int64
	}{
		{"none keeps input order", SortNone, Desc, []int64{1, 2, 3, 4}},
		{"id asc", SortID, Asc, []int64{1, 2, 3, 4}},
		{"id desc", SortID, Desc, []int64{4, 3, 2, 1}},
		{"title asc case-insensitive", SortTitle, Asc, []int64{2, 4, 1, 3}},
		{"title desc", SortTitle, Desc, []int64{3, 1, 4, 2}},
		{"reactions desc is stable", SortReactions, Desc, []int64{1, 3, 2, 4}},
		{"reactions asc is stable", SortReactions, Asc, []int64{4, 2, 1, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Derive(Input{Base: base, SortBy: tt.by, SortOrder: tt.order}))
			if !equalIDs(got, tt.expected) {
				t.Errorf("Derive() = %v, want %v", got, tt.expected)
			}
		})
	}

	if !equalIDs(ids(base.Posts), []int64{1, 2, 3, 4}) {
		t.Error("Derive() must not reorder the cached page")
	}
}

func TestDerive_MissingReactionsCountAsZero(t *testing.T) {
	base := &models.PostPage{Posts: []models.Post{
		{ID: 1, Title: "x"},
		post(2, "y", 1, 0),
	}}
	got := ids(Derive(Input{Base: base, SortBy: SortReactions, SortOrder: Desc}))
	if !equalIDs(got, []int64{2, 1}) {
		t.Errorf("Derive() = %v, want [2 1]", got)
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		raw   string
		by    SortBy
		order SortOrder
	}{
		{"", SortNone, Asc},
		{"none", SortNone, Asc},
		{"ID", SortID, Asc},
		{"title", SortTitle, Asc},
		{"reactions", SortReactions, Desc},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := ParseSortBy(tt.raw); got != tt.by {
				t.Errorf("ParseSortBy(%q) = %q, want %q", tt.raw, got, tt.by)
			}
		})
	}

	if ParseSortOrder("DESC") != Desc || ParseSortOrder("bogus") != Asc {
		t.Error("ParseSortOrder() mismatch")
	}
}
