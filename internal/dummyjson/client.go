// Package dummyjson is the client for the fixed REST backend serving posts,
// comments and users.
package dummyjson

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/steemit/postsmanager/internal/models"
	"github.com/steemit/postsmanager/pkg/config"
	"github.com/steemit/postsmanager/pkg/logging"
	"github.com/steemit/postsmanager/pkg/telemetry"
)

// Client talks to the backend REST API
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New creates a new backend client
func New(cfg *config.BackendConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("backend_url is required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("invalid backend_url: %w", err)
	}

	logger := logging.WithComponent("backend-client")
	client := &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}

	logger.Info("Backend client initialized", zap.String("url", client.baseURL))

	return client, nil
}

// ListPosts fetches one page of posts
func (c *Client) ListPosts(ctx context.Context, skip, limit int) (*models.PostPage, error) {
	ctx, span := telemetry.StartSpan(ctx, "backend.list_posts")
	defer span.End()

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("skip", strconv.Itoa(skip))

	var page models.PostPage
	if err := c.do(ctx, http.MethodGet, "/posts", q, nil, &page); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return &page, nil
}

// ListPostsByTag fetches the posts carrying a tag
func (c *Client) ListPostsByTag(ctx context.Context, tag string) (*models.PostPage, error) {
	ctx, span := telemetry.StartSpan(ctx, "backend.list_posts_by_tag")
	defer span.End()
	span.SetAttributes(attribute.String("tag", tag))

	var page models.PostPage
	if err := c.do(ctx, http.MethodGet, "/posts/tag/"+url.PathEscape(tag), nil, nil, &page); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to list posts by tag %q: %w", tag, err)
	}
	return &page, nil
}

// SearchPosts runs a full-text post search on the backend
func (c *Client) SearchPosts(ctx context.Context, query string) (*models.PostPage, error) {
	ctx, span := telemetry.StartSpan(ctx, "backend.search_posts")
	defer span.End()

	q := url.Values{}
	q.Set("q", query)

	var page models.PostPage
	if err := c.do(ctx, http.MethodGet, "/posts/search", q, nil, &page); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to search posts for %q: %w", query, err)
	}
	return &page, nil
}

// ListTags fetches all post tags
func (c *Client) ListTags(ctx context.Context) ([]models.Tag, error) {
	ctx, span := telemetry.StartSpan(ctx, "backend.list_tags")
	defer span.End()

	var raw []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/posts/tags", nil, nil, &raw); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	tags, err := decodeTags(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	return tags, nil
}

// decodeTags accepts both the legacy slug list and the object form
func decodeTags(raw []json.RawMessage) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(raw))
	for _, item := range raw {
		var slug string
		if err := json.Unmarshal(item, &slug); err == nil {
			tags = append(tags, models.Tag{Slug: slug, Name: slug})
			continue
		}
		var tag models.Tag
		if err := json.Unmarshal(item, &tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// AddPost creates a post; the returned post carries the server-assigned id
func (c *Client) AddPost(ctx context.Context, in models.PostInput) (*models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "backend.add_post")
	defer span.End()

	var post models.Post
	if err := c.do(ctx, http.MethodPost, "/posts/add", nil, in, &post); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to add post: %w", err)
	}
	return &post, nil
}

// UpdatePost replaces the editable fields of a post
func (c *Client) UpdatePost(ctx context.Context, id int64, in models.PostInput) (*models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "backend.update_post")
	defer span.End()
	span.SetAttributes(attribute.Int64("post_id", id))

	var post models.Post
	if err := c.do(ctx, http.MethodPut, "/posts/"+strconv.FormatInt(id, 10), nil, in, &post); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to update post %d: %w", id, err)
	}
	return &post, nil
}

// DeletePost deletes a post
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	ctx, span := telemetry.StartSpan(ctx, "backend.delete_post")
	defer span.End()
	span.SetAttributes(attribute.Int64("post_id", id))

	if err := c.do(ctx, http.MethodDelete, "/posts/"+strconv.FormatInt(id, 10), nil, nil, nil); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to delete post %d: %w", id, err)
	}
	return nil
}

// ListComments fetches the comments of a post
func (c *Client) ListComments(ctx context.Context, postID int64) (*models.CommentPage, error) {
	ctx, span := telemetry.StartSpan(ctx, "backend.list_comments")
	defer span.End()
	span.SetAttributes(attribute.Int64("post_id", postID))

	var page models.CommentPage
	if err := c.do(ctx, http.MethodGet, "/comments/post/"+strconv.FormatInt(postID, 10), nil, nil, &page); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to list comments of post %d: %w", postID, err)
	}
	return &page, nil
}

// AddComment creates a comment
func (c *Client) AddComment(ctx context.Context, in models.CommentInput) (*models.Comment, error) {
	ctx, span := telemetry.StartSpan(ctx, "backend.add_comment")
	defer span.End()

	var comment models.Comment
	if err := c.do(ctx, http.MethodPost, "/comments/add", nil, in, &comment); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return &comment, nil
}

// UpdateComment replaces the body of a comment
func (c *Client) UpdateComment(ctx context.Context, id int64, body string) (*models.Comment, error) {
	ctx, span := telemetry.StartSpan(ctx, "backend.update_comment")
	defer span.End()
	span.SetAttributes(attribute.Int64("comment_id", id))

	in := map[string]string{"body": body}
	var comment models.Comment
	if err := c.do(ctx, http.MethodPut, "/comments/"+strconv.FormatInt(id, 10), nil, in, &comment); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to update comment %d: %w", id, err)
	}
	return &comment, nil
}

// DeleteComment deletes a comment
func (c *Client) DeleteComment(ctx context.Context, id int64) error {
	ctx, span := telemetry.StartSpan(ctx, "backend.delete_comment")
	defer span.End()
	span.SetAttributes(attribute.Int64("comment_id", id))

	if err := c.do(ctx, http.MethodDelete, "/comments/"+strconv.FormatInt(id, 10), nil, nil, nil); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to delete comment %d: %w", id, err)
	}
	return nil
}

// LikeComment sets the like counter of a comment to likes
func (c *Client) LikeComment(ctx context.Context, id int64, likes int) (*models.Comment, error) {
	ctx, span := telemetry.StartSpan(ctx, "backend.like_comment")
	defer span.End()
	span.SetAttributes(attribute.Int64("comment_id", id), attribute.Int("likes", likes))

	in := map[string]int{"likes": likes}
	var comment models.Comment
	if err := c.do(ctx, http.MethodPatch, "/comments/"+strconv.FormatInt(id, 10), nil, in, &comment); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to like comment %d: %w", id, err)
	}
	return &comment, nil
}

// GetUser fetches a full user profile
func (c *Client) GetUser(ctx context.Context, id int64) (*models.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "backend.get_user")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", id))

	var user models.User
	if err := c.do(ctx, http.MethodGet, "/users/"+strconv.FormatInt(id, 10), nil, nil, &user); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &user, nil
}

// ListUserSummaries fetches the id, username and image of every user
func (c *Client) ListUserSummaries(ctx context.Context) (*models.UserSummaryPage, error) {
	ctx, span := telemetry.StartSpan(ctx, "backend.list_user_summaries")
	defer span.End()

	q := url.Values{}
	q.Set("limit", "0")
	q.Set("select", "username,image")

	var page models.UserSummaryPage
	if err := c.do(ctx, http.MethodGet, "/users", q, nil, &page); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &page, nil
}
