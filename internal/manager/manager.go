// Package manager turns page events into reads, writes and session updates
// and renders the resulting post list.
package manager

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/steemit/postsmanager/internal/cache"
	"github.com/steemit/postsmanager/internal/models"
	"github.com/steemit/postsmanager/internal/mutation"
	"github.com/steemit/postsmanager/internal/resource"
	"github.com/steemit/postsmanager/internal/session"
	"github.com/steemit/postsmanager/internal/urlstate"
	"github.com/steemit/postsmanager/internal/view"
	"github.com/steemit/postsmanager/pkg/logging"
)

// Manager owns one page session
type Manager struct {
	resources *resource.Service
	pipeline  *mutation.Pipeline
	session   *session.Store
	cache     *cache.Store
	syncer    *urlstate.Syncer
	logger    *zap.Logger
}

// New wires a Manager. Cache changes and settled mutations are republished
// as session events.
func New(resources *resource.Service, pipeline *mutation.Pipeline, sess *session.Store, store *cache.Store) *Manager {
	m := &Manager{
		resources: resources,
		pipeline:  pipeline,
		session:   sess,
		cache:     store,
		logger:    logging.WithComponent("manager"),
	}
	m.syncer = urlstate.NewSyncer(sess, urlstate.NavigatorFunc(func(location string) {
		sess.Publish(session.Event{Type: session.EventLocation, Data: location})
	}))

	store.OnChange(func(key cache.Key) {
		sess.Publish(session.Event{Type: session.EventCache, Data: key.String()})
	})
	pipeline.OnSettled(func(mu mutation.Mutation) {
		sess.Publish(session.Event{Type: session.EventMutation, Data: mu.Record()})
	})
	return m
}

// Session returns the session store
func (m *Manager) Session() *session.Store {
	return m.session
}

// Location returns the canonical query string of the current filters
func (m *Manager) Location() string {
	return m.syncer.Location()
}

// Navigate applies an address change. A search parameter that is not the
// active search runs (or reactivates) it; an empty one clears it. The view
// for an address is the same whichever session opens it.
func (m *Manager) Navigate(ctx context.Context, rawQuery string) error {
	m.syncer.AddressChanged(rawQuery)

	q := m.session.Filters().Search
	executed := m.session.Search()
	switch {
	case strings.TrimSpace(q) == "":
		m.session.ClearSearch()
	case !executed.Active || executed.Query != q:
		return m.runSearch(ctx, q)
	}
	return nil
}

// updateFilters changes the filter state and pushes it to the address
func (m *Manager) updateFilters(fn func(urlstate.FilterState) urlstate.FilterState) {
	f := m.session.UpdateFilters(fn)
	m.syncer.StateChanged(f)
}

// Search runs a backend search for q. A blank q clears the search and
// shows the base listing again.
func (m *Manager) Search(ctx context.Context, q string) error {
	m.updateFilters(func(f urlstate.FilterState) urlstate.FilterState {
		f.Search = q
		return f
	})
	if strings.TrimSpace(q) == "" {
		m.session.ClearSearch()
		return nil
	}
	return m.runSearch(ctx, q)
}

func (m *Manager) runSearch(ctx context.Context, q string) error {
	results, err := m.resources.Search(ctx, q)
	if results == nil {
		results = &models.PostPage{Posts: []models.Post{}}
	}
	m.session.SetSearchResults(q, results)
	return err
}

// ClearSearch empties the search box and shows the base listing
func (m *Manager) ClearSearch() {
	m.updateFilters(func(f urlstate.FilterState) urlstate.FilterState {
		f.Search = ""
		return f
	})
	m.session.ClearSearch()
}

// SelectTag filters the listing by tag; "" or "all" removes the filter.
// Any active search is deactivated and dropped from the address.
func (m *Manager) SelectTag(tag string) {
	m.session.SelectTag(tag)
	m.syncer.StateChanged(m.session.Filters())
}

// SetSort changes the client-side ordering
func (m *Manager) SetSort(by view.SortBy, order view.SortOrder) {
	m.updateFilters(func(f urlstate.FilterState) urlstate.FilterState {
		f.SortBy = by
		f.SortOrder = order
		return f
	})
}

// SetPage moves to another page of the listing
func (m *Manager) SetPage(skip, limit int) {
	m.updateFilters(func(f urlstate.FilterState) urlstate.FilterState {
		f.Skip = skip
		if limit > 0 {
			f.Limit = limit
		}
		return f
	})
}

// Tags returns the tag list for the filter control
func (m *Manager) Tags(ctx context.Context) ([]models.Tag, error) {
	return m.resources.Tags(ctx)
}

// Comments returns the comments of a post
func (m *Manager) Comments(ctx context.Context, postID int64) (*models.CommentPage, error) {
	return m.resources.Comments(ctx, postID)
}
