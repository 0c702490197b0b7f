// Package resource provides typed reads of posts, comments, users and tags
// through the query coordinator.
package resource

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/steemit/postsmanager/internal/cache"
	"github.com/steemit/postsmanager/internal/models"
	"github.com/steemit/postsmanager/internal/query"
	"github.com/steemit/postsmanager/internal/urlstate"
	"github.com/steemit/postsmanager/pkg/logging"
)

// Backend is the read side of the REST backend
type Backend interface {
	ListPosts(ctx context.Context, skip, limit int) (*models.PostPage, error)
	ListPostsByTag(ctx context.Context, tag string) (*models.PostPage, error)
	SearchPosts(ctx context.Context, query string) (*models.PostPage, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
	ListComments(ctx context.Context, postID int64) (*models.CommentPage, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListUserSummaries(ctx context.Context) (*models.UserSummaryPage, error)
}

// Service reads resources through the coordinator. On a failed read the
// last cached value, if any, is returned together with the error.
type Service struct {
	coord   *query.Coordinator
	backend Backend
	logger  *zap.Logger
	refresh bool
}

// New creates a Service
func New(coord *query.Coordinator, backend Backend) *Service {
	return &Service{
		coord:   coord,
		backend: backend,
		logger:  logging.WithComponent("resource"),
	}
}

// Posts returns the base listing for the filter state
func (s *Service) Posts(ctx context.Context, f urlstate.FilterState) (*models.PostPage, error) {
	f = f.Normalize()
	return fetchAs[*models.PostPage](ctx, s, PostsKey(f), func(ctx context.Context) (interface{}, error) {
		if f.Tag != "" {
			return s.backend.ListPostsByTag(ctx, f.Tag)
		}
		return s.backend.ListPosts(ctx, f.Skip, f.Limit)
	})
}

// Search returns the backend search results for q
func (s *Service) Search(ctx context.Context, q string) (*models.PostPage, error) {
	return fetchAs[*models.PostPage](ctx, s, SearchKey(q), func(ctx context.Context) (interface{}, error) {
		return s.backend.SearchPosts(ctx, q)
	})
}

// Tags returns the tag list
func (s *Service) Tags(ctx context.Context) ([]models.Tag, error) {
	return fetchAs[[]models.Tag](ctx, s, TagsKey(), func(ctx context.Context) (interface{}, error) {
		return s.backend.ListTags(ctx)
	})
}

// Comments returns the comments of a post
func (s *Service) Comments(ctx context.Context, postID int64) (*models.CommentPage, error) {
	return fetchAs[*models.CommentPage](ctx, s, CommentsKey(postID), func(ctx context.Context) (interface{}, error) {
		return s.backend.ListComments(ctx, postID)
	})
}

// User returns the full profile of a user
func (s *Service) User(ctx context.Context, id int64) (*models.User, error) {
	return fetchAs[*models.User](ctx, s, UserKey(id), func(ctx context.Context) (interface{}, error) {
		return s.backend.GetUser(ctx, id)
	})
}

// UserSummaries returns the summary of every user
func (s *Service) UserSummaries(ctx context.Context) (*models.UserSummaryPage, error) {
	return fetchAs[*models.UserSummaryPage](ctx, s, UserSummariesKey(), func(ctx context.Context) (interface{}, error) {
		return s.backend.ListUserSummaries(ctx)
	})
}

// WithAuthors returns a copy of page with each post's author attached. If
// the user summaries cannot be loaded the rows are returned without authors.
func (s *Service) WithAuthors(ctx context.Context, page *models.PostPage) *models.PostPage {
	if page == nil {
		return nil
	}
	out := page.Clone()

	users, err := s.UserSummaries(ctx)
	if users == nil {
		logging.FromContext(ctx, s.logger).Warn("Rendering posts without authors", zap.Error(err))
		return out
	}
	for i := range out.Posts {
		if author, ok := users.Find(out.Posts[i].UserID); ok {
			out.Posts[i].Author = author
		}
	}
	return out
}

func fetchAs[T any](ctx context.Context, s *Service, key cache.Key, fetch query.FetchFunc) (T, error) {
	var zero T

	load := s.coord.Fetch
	if s.refresh {
		load = s.coord.Refetch
	}
	value, err := load(ctx, key, fetch)
	if err != nil {
		if stale, ok := s.coord.Peek(key); ok {
			if v, ok := stale.(T); ok {
				return v, err
			}
		}
		return zero, err
	}

	v, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("cache entry %s holds %T", key, value)
	}
	return v, nil
}
