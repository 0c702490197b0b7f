package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/steemit/postsmanager/internal/models"
	"github.com/steemit/postsmanager/internal/resource"
	"github.com/steemit/postsmanager/internal/session"
)

// ErrInvalidInput is returned for a form that cannot be submitted
var ErrInvalidInput = errors.New("invalid input")

// SetNewPost replaces the pending new-post form
func (m *Manager) SetNewPost(form session.PostForm) {
	m.session.SetNewPost(form)
}

// SetNewComment replaces the pending new-comment form
func (m *Manager) SetNewComment(form session.CommentForm) {
	m.session.SetNewComment(form)
}

// SubmitNewPost creates a post from the new-post form. It lands at the top
// of the page currently shown.
func (m *Manager) SubmitNewPost(ctx context.Context) (*models.Post, error) {
	form := m.session.NewPost()
	if strings.TrimSpace(form.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	target := resource.PostsKey(m.session.Filters())
	return m.pipeline.CreatePost(ctx, target, models.PostInput{
		Title:  form.Title,
		Body:   form.Body,
		UserID: form.UserID,
	})
}

// SubmitPostEdit saves an edited post
func (m *Manager) SubmitPostEdit(ctx context.Context, id int64, in models.PostInput) (*models.Post, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: post id is required", ErrInvalidInput)
	}
	return m.pipeline.UpdatePost(ctx, id, in)
}

// DeletePost deletes a post
func (m *Manager) DeletePost(ctx context.Context, id int64) error {
	return m.pipeline.DeletePost(ctx, id)
}

// SubmitNewComment creates a comment from the new-comment form
func (m *Manager) SubmitNewComment(ctx context.Context) (*models.Comment, error) {
	form := m.session.NewComment()
	if form.PostID <= 0 || strings.TrimSpace(form.Body) == "" {
		return nil, fmt.Errorf("%w: post id and body are required", ErrInvalidInput)
	}
	return m.pipeline.CreateComment(ctx, models.CommentInput{
		Body:   form.Body,
		PostID: form.PostID,
		UserID: form.UserID,
	})
}

// SubmitCommentEdit saves an edited comment body
func (m *Manager) SubmitCommentEdit(ctx context.Context, id int64, body string) (*models.Comment, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: comment id is required", ErrInvalidInput)
	}
	return m.pipeline.UpdateComment(ctx, id, body)
}

// DeleteComment deletes a comment; postID may be 0 when unknown
func (m *Manager) DeleteComment(ctx context.Context, id, postID int64) error {
	return m.pipeline.DeleteComment(ctx, id, postID)
}

// LikeComment adds a like to a comment, starting from the count currently
// shown for it
func (m *Manager) LikeComment(ctx context.Context, id, postID int64) (*models.Comment, error) {
	prior := 0
	if c, err := m.cachedComment(postID, id); err == nil {
		prior = c.Likes
	}
	return m.pipeline.LikeComment(ctx, id, postID, prior)
}
