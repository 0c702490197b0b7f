package api

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/steemit/postsmanager/internal/manager"
	"github.com/steemit/postsmanager/internal/models"
	"github.com/steemit/postsmanager/internal/session"
)

// PostsAPI provides post, tag and user methods
type PostsAPI struct {
	manager *manager.Manager
}

// NewPostsAPI creates a new posts API
func NewPostsAPI(m *manager.Manager) *PostsAPI {
	return &PostsAPI{manager: m}
}

type postParams struct {
	ID     int64    `json:"id"`
	Title  *string  `json:"title"`
	Body   *string  `json:"body"`
	UserID *int64   `json:"userId"`
	Tags   []string `json:"tags"`
}

// Create handles posts.create. Given fields are written into the new-post
// form before it is submitted.
func (p *PostsAPI) Create(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var in postParams
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}

	form := p.manager.Session().NewPost()
	if in.Title != nil {
		form.Title = *in.Title
	}
	if in.Body != nil {
		form.Body = *in.Body
	}
	if in.UserID != nil {
		form.UserID = *in.UserID
	}
	p.manager.SetNewPost(form)

	return p.manager.SubmitNewPost(ctx.Request.Context())
}

// Update handles posts.update
func (p *PostsAPI) Update(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var in postParams
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}
	if in.ID <= 0 || in.Title == nil {
		return nil, InvalidParams("missing required parameters: id, title")
	}

	payload := models.PostInput{Title: *in.Title, Tags: in.Tags}
	if in.Body != nil {
		payload.Body = *in.Body
	}
	if in.UserID != nil {
		payload.UserID = *in.UserID
	}
	return p.manager.SubmitPostEdit(ctx.Request.Context(), in.ID, payload)
}

// Delete handles posts.delete
func (p *PostsAPI) Delete(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var in struct {
		ID int64 `json:"id"`
	}
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}
	if in.ID <= 0 {
		return nil, InvalidParams("missing required parameter: id")
	}
	if err := p.manager.DeletePost(ctx.Request.Context(), in.ID); err != nil {
		return nil, err
	}
	return gin.H{"id": in.ID, "isDeleted": true}, nil
}

// SetForm handles posts.set_form, replacing the pending new-post form
func (p *PostsAPI) SetForm(_ *gin.Context, params json.RawMessage) (interface{}, error) {
	var form session.PostForm
	if err := decodeParams(params, &form); err != nil {
		return nil, err
	}
	p.manager.SetNewPost(form)
	return form, nil
}

// Tags handles tags.list
func (p *PostsAPI) Tags(ctx *gin.Context, _ json.RawMessage) (interface{}, error) {
	return p.manager.Tags(ctx.Request.Context())
}

// User handles users.get
func (p *PostsAPI) User(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var in struct {
		ID int64 `json:"id"`
	}
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}
	if in.ID <= 0 {
		return nil, InvalidParams("missing required parameter: id")
	}
	return p.manager.OpenUser(ctx.Request.Context(), in.ID)
}
