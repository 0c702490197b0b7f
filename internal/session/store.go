// Package session holds the per-page UI state: filters, search, the active
// overlay and pending forms. Changes are published to subscribers.
package session

import (
	"sync"

	"github.com/steemit/postsmanager/internal/models"
	"github.com/steemit/postsmanager/internal/urlstate"
)

// EventType names what part of the session changed
type EventType string

const (
	EventFilters  EventType = "filters"
	EventSearch   EventType = "search"
	EventOverlay  EventType = "overlay"
	EventForms    EventType = "forms"
	EventCache    EventType = "cache"
	EventMutation EventType = "mutation"
	EventLocation EventType = "location"
)

// Event is published after every state change
type Event struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// SearchState tracks an executed search. Query text being typed lives in
// the filter state; Results is only set once a search actually ran.
type SearchState struct {
	Query       string           `json:"query"`
	Results     *models.PostPage `json:"results,omitempty"`
	Active      bool             `json:"active"`
	HasSearched bool             `json:"hasSearched"`
}

// PostForm is the pending new-post form
type PostForm struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID int64  `json:"userId"`
}

// CommentForm is the pending new-comment form
type CommentForm struct {
	Body   string `json:"body"`
	PostID int64  `json:"postId"`
	UserID int64  `json:"userId"`
}

// Snapshot is a consistent copy of the whole session
type Snapshot struct {
	Filters    urlstate.FilterState `json:"filters"`
	Search     SearchState          `json:"search"`
	Overlay    Overlay              `json:"overlay"`
	NewPost    PostForm             `json:"newPost"`
	NewComment CommentForm          `json:"newComment"`
}

// Store is the session state container. It is safe for concurrent use;
// subscribers are called outside the lock, in registration order.
type Store struct {
	mu          sync.RWMutex
	filters     urlstate.FilterState
	search      SearchState
	overlay     Overlay
	newPost     PostForm
	newComment  CommentForm
	defaultUser int64

	subMu  sync.Mutex
	subs   map[int]func(Event)
	order  []int
	nextID int
}

// New creates a Store. defaultUserID is the author preset on new forms.
func New(defaultUserID int64) *Store {
	if defaultUserID <= 0 {
		defaultUserID = 1
	}
	s := &Store{
		filters:     urlstate.Default(),
		defaultUser: defaultUserID,
		subs:        make(map[int]func(Event)),
	}
	s.newPost = s.initialPost()
	s.newComment = s.initialComment()
	return s
}

func (s *Store) initialPost() PostForm { return PostForm{UserID: s.defaultUser} }

func (s *Store) initialComment() CommentForm { return CommentForm{UserID: s.defaultUser} }

// Subscribe registers fn for every subsequent event and returns a function
// that removes it.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			delete(s.subs, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers an event to all subscribers
func (s *Store) Publish(ev Event) {
	s.subMu.Lock()
	fns := make([]func(Event), 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Filters:    s.filters,
		Search:     s.search,
		Overlay:    s.overlay,
		NewPost:    s.newPost,
		NewComment: s.newComment,
	}
}

// Filters returns the current filter state
func (s *Store) Filters() urlstate.FilterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

// SetFilters replaces the filter state. Switching to a different tag
// deactivates the current search, the same as SelectTag.
func (s *Store) SetFilters(f urlstate.FilterState) {
	f = f.Normalize()

	s.mu.Lock()
	if f == s.filters {
		s.mu.Unlock()
		return
	}
	searchCleared := f.Tag != "" && f.Tag != s.filters.Tag && s.search.Active
	if searchCleared {
		s.search.Active = false
	}
	s.filters = f
	search := s.search
	s.mu.Unlock()

	s.Publish(Event{Type: EventFilters, Data: f})
	if searchCleared {
		s.Publish(Event{Type: EventSearch, Data: search})
	}
}

// UpdateFilters applies fn to a copy of the filter state and stores the result
func (s *Store) UpdateFilters(fn func(urlstate.FilterState) urlstate.FilterState) urlstate.FilterState {
	s.SetFilters(fn(s.Filters()))
	return s.Filters()
}

// SelectTag filters by tag, resets paging and deactivates any search. The
// search query leaves the filter state so the address names the tag listing
// only.
func (s *Store) SelectTag(tag string) {
	s.mu.Lock()
	wasActive := s.search.Active
	s.search.Active = false
	search := s.search
	s.mu.Unlock()

	if wasActive {
		s.Publish(Event{Type: EventSearch, Data: search})
	}
	s.UpdateFilters(func(f urlstate.FilterState) urlstate.FilterState {
		f.Tag = tag
		f.Skip = 0
		f.Search = ""
		return f
	})
}

// Search returns the executed search state
func (s *Store) Search() SearchState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.search
}

// SetSearchResults records an executed search
func (s *Store) SetSearchResults(query string, results *models.PostPage) {
	s.mu.Lock()
	s.search = SearchState{Query: query, Results: results, Active: true, HasSearched: true}
	search := s.search
	s.mu.Unlock()

	s.Publish(Event{Type: EventSearch, Data: search})
}

// ClearSearch drops the executed search so the base page renders again
func (s *Store) ClearSearch() {
	s.mu.Lock()
	if s.search == (SearchState{}) {
		s.mu.Unlock()
		return
	}
	s.search = SearchState{}
	s.mu.Unlock()

	s.Publish(Event{Type: EventSearch, Data: SearchState{}})
}

// Overlay returns the active overlay
func (s *Store) Overlay() Overlay {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overlay
}

// Open makes o the active overlay, replacing whatever was open
func (s *Store) Open(o Overlay) {
	s.mu.Lock()
	s.overlay = o
	s.mu.Unlock()

	s.Publish(Event{Type: EventOverlay, Data: o})
}

// Close closes the active overlay
func (s *Store) Close() {
	s.Open(Overlay{})
}

// CloseOverlay closes the active overlay only if it is of the given kind.
// It reports whether anything was closed.
func (s *Store) CloseOverlay(kind OverlayKind) bool {
	s.mu.Lock()
	if s.overlay.Kind != kind || kind == OverlayNone {
		s.mu.Unlock()
		return false
	}
	s.overlay = Overlay{}
	s.mu.Unlock()

	s.Publish(Event{Type: EventOverlay, Data: Overlay{}})
	return true
}

// NewPost returns the pending new-post form
func (s *Store) NewPost() PostForm {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newPost
}

// SetNewPost replaces the pending new-post form
func (s *Store) SetNewPost(f PostForm) {
	s.mu.Lock()
	s.newPost = f
	s.mu.Unlock()

	s.Publish(Event{Type: EventForms, Data: f})
}

// ResetNewPost restores the new-post form to its initial values
func (s *Store) ResetNewPost() {
	s.SetNewPost(s.initialPost())
}

// NewComment returns the pending new-comment form
func (s *Store) NewComment() CommentForm {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newComment
}

// SetNewComment replaces the pending new-comment form
func (s *Store) SetNewComment(f CommentForm) {
	s.mu.Lock()
	s.newComment = f
	s.mu.Unlock()

	s.Publish(Event{Type: EventForms, Data: f})
}

// ResetNewComment restores the new-comment form to its initial values
func (s *Store) ResetNewComment() {
	s.SetNewComment(s.initialComment())
}
