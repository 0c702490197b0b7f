package api

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/steemit/postsmanager/internal/manager"
)

// CommentsAPI provides comment methods
type CommentsAPI struct {
	manager *manager.Manager
}

// NewCommentsAPI creates a new comments API
func NewCommentsAPI(m *manager.Manager) *CommentsAPI {
	return &CommentsAPI{manager: m}
}

type commentParams struct {
	ID     int64   `json:"id"`
	PostID int64   `json:"postId"`
	Body   *string `json:"body"`
	UserID *int64  `json:"userId"`
}

func (p commentParams) requireID() error {
	if p.ID <= 0 {
		return InvalidParams("missing required parameter: id")
	}
	return nil
}

// List handles comments.list
func (a *CommentsAPI) List(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var in commentParams
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}
	if in.PostID <= 0 {
		return nil, InvalidParams("missing required parameter: postId")
	}
	return a.manager.Comments(ctx.Request.Context(), in.PostID)
}

// Create handles comments.create. Given fields are written into the
// new-comment form before it is submitted.
func (a *CommentsAPI) Create(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var in commentParams
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}

	form := a.manager.Session().NewComment()
	if in.PostID > 0 {
		form.PostID = in.PostID
	}
	if in.Body != nil {
		form.Body = *in.Body
	}
	if in.UserID != nil {
		form.UserID = *in.UserID
	}
	a.manager.SetNewComment(form)

	return a.manager.SubmitNewComment(ctx.Request.Context())
}

// Update handles comments.update
func (a *CommentsAPI) Update(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var in commentParams
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}
	if err := in.requireID(); err != nil {
		return nil, err
	}
	if in.Body == nil {
		return nil, InvalidParams("missing required parameter: body")
	}
	return a.manager.SubmitCommentEdit(ctx.Request.Context(), in.ID, *in.Body)
}

// Delete handles comments.delete; postId is optional
func (a *CommentsAPI) Delete(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var in commentParams
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}
	if err := in.requireID(); err != nil {
		return nil, err
	}
	if err := a.manager.DeleteComment(ctx.Request.Context(), in.ID, in.PostID); err != nil {
		return nil, err
	}
	return gin.H{"id": in.ID, "isDeleted": true}, nil
}

// Like handles comments.like
func (a *CommentsAPI) Like(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var in commentParams
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}
	if err := in.requireID(); err != nil {
		return nil, err
	}
	return a.manager.LikeComment(ctx.Request.Context(), in.ID, in.PostID)
}
