package manager

import (
	"context"
	"fmt"

	"github.com/steemit/postsmanager/internal/cache"
	"github.com/steemit/postsmanager/internal/dummyjson"
	"github.com/steemit/postsmanager/internal/models"
	"github.com/steemit/postsmanager/internal/resource"
	"github.com/steemit/postsmanager/internal/session"
)

// OpenAddPost opens the new-post dialog
func (m *Manager) OpenAddPost() {
	m.session.Open(session.AddPost())
}

// OpenEditPost opens the edit dialog for a post on a cached page
func (m *Manager) OpenEditPost(id int64) error {
	post, err := m.cachedPost(id)
	if err != nil {
		return err
	}
	m.session.Open(session.EditPost(post))
	return nil
}

// OpenPostDetail opens the detail dialog and loads the post's comments.
// The dialog stays open if the comments fail to load.
func (m *Manager) OpenPostDetail(ctx context.Context, id int64) (*models.CommentPage, error) {
	post, err := m.cachedPost(id)
	if err != nil {
		return nil, err
	}
	m.session.Open(session.PostDetail(post))
	return m.resources.Comments(ctx, id)
}

// OpenUser loads a user profile and opens it
func (m *Manager) OpenUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := m.resources.User(ctx, id)
	if err != nil {
		return nil, err
	}
	m.session.Open(session.UserProfile(user))
	return user, nil
}

// OpenAddComment opens the new-comment dialog for a post
func (m *Manager) OpenAddComment(postID int64) {
	form := m.session.NewComment()
	form.PostID = postID
	m.session.SetNewComment(form)
	m.session.Open(session.AddComment(postID))
}

// OpenEditComment opens the edit dialog for a cached comment
func (m *Manager) OpenEditComment(postID, commentID int64) error {
	comment, err := m.cachedComment(postID, commentID)
	if err != nil {
		return err
	}
	m.session.Open(session.EditComment(comment))
	return nil
}

// CloseOverlay closes whatever overlay is open
func (m *Manager) CloseOverlay() {
	m.session.Close()
}

// cachedPost finds a post on any cached post page
func (m *Manager) cachedPost(id int64) (*models.Post, error) {
	for _, kind := range []cache.Kind{cache.KindPosts, cache.KindPostSearch} {
		for _, key := range m.cache.Keys(cache.Prefix(kind)) {
			e, ok := m.cache.Get(key)
			if !ok {
				continue
			}
			page, ok := e.Value.(*models.PostPage)
			if !ok {
				continue
			}
			if i := page.IndexOf(id); i >= 0 {
				post := page.Posts[i]
				return &post, nil
			}
		}
	}
	return nil, fmt.Errorf("post %d is not loaded: %w", id, dummyjson.ErrNotFound)
}

// cachedComment finds a comment in its post's cached comments
func (m *Manager) cachedComment(postID, commentID int64) (*models.Comment, error) {
	e, ok := m.cache.Get(resource.CommentsKey(postID))
	if ok {
		if page, ok := e.Value.(*models.CommentPage); ok {
			if i := page.IndexOf(commentID); i >= 0 {
				comment := page.Comments[i]
				return &comment, nil
			}
		}
	}
	return nil, fmt.Errorf("comment %d of post %d is not loaded: %w", commentID, postID, dummyjson.ErrNotFound)
}
