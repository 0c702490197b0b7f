package session

import (
	"sync"
	"testing"

	"github.com/steemit/postsmanager/internal/models"
	"github.com/steemit/postsmanager/internal/urlstate"
)

func TestStore_Defaults(t *testing.T) {
	s := New(0)

	if s.Filters() != urlstate.Default() {
		t.Errorf("unexpected initial filters %+v", s.Filters())
	}
	if s.NewPost() != (PostForm{UserID: 1}) {
		t.Errorf("unexpected initial post form %+v", s.NewPost())
	}
	if s.Overlay().Kind != OverlayNone {
		t.Errorf("expected no overlay, got %q", s.Overlay().Kind)
	}
}

func TestStore_SingleOverlay(t *testing.T) {
	s := New(1)
	post := &models.Post{ID: 3}

	s.Open(AddPost())
	s.Open(EditPost(post))

	o := s.Overlay()
	if o.Kind != OverlayEditPost {
		t.Fatalf("expected edit overlay, got %q", o.Kind)
	}
	if got, ok := o.Post(); !ok || got.ID != 3 {
		t.Errorf("Post() = %v, %v", got, ok)
	}
	if _, ok := o.Comment(); ok {
		t.Error("edit-post overlay has no comment payload")
	}

	if s.CloseOverlay(OverlayAddPost) {
		t.Error("closing a kind that is not open must be a no-op")
	}
	if !s.CloseOverlay(OverlayEditPost) {
		t.Error("expected edit overlay to close")
	}
	if s.Overlay().Kind != OverlayNone {
		t.Error("expected no overlay")
	}
}

func TestOverlayPayloads(t *testing.T) {
	tests := []struct {
		name    string
		overlay Overlay
		check   func(Overlay) bool
	}{
		{"add comment", AddComment(7), func(o Overlay) bool { id, ok := o.PostID(); return ok && id == 7 }},
		{"edit comment", EditComment(&models.Comment{ID: 2}), func(o Overlay) bool { c, ok := o.Comment(); return ok && c.ID == 2 }},
		{"user", UserProfile(&models.User{ID: 5}), func(o Overlay) bool { u, ok := o.User(); return ok && u.ID == 5 }},
		{"detail", PostDetail(&models.Post{ID: 1}), func(o Overlay) bool { _, ok := o.Post(); return ok }},
		{"kind mismatch", Overlay{Kind: OverlayAddPost, Payload: int64(3)}, func(o Overlay) bool { _, ok := o.PostID(); return !ok }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.overlay) {
				t.Errorf("unexpected payload for %+v", tt.overlay)
			}
		})
	}
}

func TestParseOverlayKind(t *testing.T) {
	if k, ok := ParseOverlayKind("userProfile"); !ok || k != OverlayUserProfile {
		t.Errorf("ParseOverlayKind(userProfile) = %q, %v", k, ok)
	}
	if _, ok := ParseOverlayKind("settings"); ok {
		t.Error("unknown kind must not parse")
	}
}

func TestStore_SelectTagClearsSearch(t *testing.T) {
	s := New(1)
	s.UpdateFilters(func(f urlstate.FilterState) urlstate.FilterState { f.Skip = 20; return f })
	s.UpdateFilters(func(f urlstate.FilterState) urlstate.FilterState { f.Search = "his"; return f })
	s.SetSearchResults("his", &models.PostPage{Total: 1})

	s.SelectTag("history")

	search := s.Search()
	if search.Active {
		t.Error("tag selection must deactivate search")
	}
	if !search.HasSearched {
		t.Error("tag selection keeps the executed search around")
	}
	f := s.Filters()
	if f.Tag != "history" || f.Skip != 0 || f.Search != "" {
		t.Errorf("unexpected filters %+v", f)
	}
}

func TestStore_SetFiltersNewTagClearsSearch(t *testing.T) {
	s := New(1)
	s.SetSearchResults("his", &models.PostPage{})

	f := s.Filters()
	f.Tag = "love"
	s.SetFilters(f)

	if s.Search().Active {
		t.Error("address change to a new tag must deactivate search")
	}
}

func TestStore_ClearSearch(t *testing.T) {
	s := New(1)
	var events []EventType
	s.Subscribe(func(ev Event) { events = append(events, ev.Type) })

	s.ClearSearch()
	if len(events) != 0 {
		t.Fatalf("clearing an empty search must not publish, got %v", events)
	}

	s.SetSearchResults("react", &models.PostPage{})
	s.ClearSearch()
	if s.Search() != (SearchState{}) {
		t.Errorf("unexpected search %+v", s.Search())
	}
	if len(events) != 2 {
		t.Errorf("expected two search events, got %v", events)
	}
}

func TestStore_Forms(t *testing.T) {
	s := New(4)
	s.SetNewPost(PostForm{Title: "t", Body: "b", UserID: 9})
	s.SetNewComment(CommentForm{Body: "c", PostID: 2, UserID: 9})

	s.ResetNewPost()
	s.ResetNewComment()

	if s.NewPost() != (PostForm{UserID: 4}) {
		t.Errorf("unexpected post form %+v", s.NewPost())
	}
	if s.NewComment() != (CommentForm{UserID: 4}) {
		t.Errorf("unexpected comment form %+v", s.NewComment())
	}
}

func TestStore_Subscribe(t *testing.T) {
	s := New(1)

	var mu sync.Mutex
	var got []EventType
	unsubscribe := s.Subscribe(func(ev Event) {
		mu.Lock()
		got = append(got, ev.Type)
		mu.Unlock()
	})

	s.Open(AddPost())
	s.SetFilters(s.Filters()) // unchanged, no event
	unsubscribe()
	unsubscribe()
	s.Close()

	if len(got) != 1 || got[0] != EventOverlay {
		t.Errorf("unexpected events %v", got)
	}
}
