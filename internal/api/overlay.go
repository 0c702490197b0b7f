package api

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/steemit/postsmanager/internal/manager"
	"github.com/steemit/postsmanager/internal/session"
)

// OverlayAPI opens and closes the page's single overlay
type OverlayAPI struct {
	manager *manager.Manager
}

// NewOverlayAPI creates a new overlay API
func NewOverlayAPI(m *manager.Manager) *OverlayAPI {
	return &OverlayAPI{manager: m}
}

// Get handles overlay.get
func (o *OverlayAPI) Get(_ *gin.Context, _ json.RawMessage) (interface{}, error) {
	return o.manager.Session().Overlay(), nil
}

// Open handles overlay.open. id names the post, comment or user the
// overlay is about; postId is needed for comment overlays.
func (o *OverlayAPI) Open(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var in struct {
		Kind   string `json:"kind"`
		ID     int64  `json:"id"`
		PostID int64  `json:"postId"`
	}
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}
	kind, ok := session.ParseOverlayKind(in.Kind)
	if !ok {
		return nil, InvalidParams("unknown overlay kind %q", in.Kind)
	}

	rctx := ctx.Request.Context()
	var err error
	switch kind {
	case session.OverlayNone:
		o.manager.CloseOverlay()
	case session.OverlayAddPost:
		o.manager.OpenAddPost()
	case session.OverlayEditPost:
		err = o.manager.OpenEditPost(in.ID)
	case session.OverlayPostDetail:
		var comments interface{}
		comments, err = o.manager.OpenPostDetail(rctx, in.ID)
		if err == nil {
			return gin.H{"overlay": o.manager.Session().Overlay(), "comments": comments}, nil
		}
	case session.OverlayAddComment:
		if in.PostID <= 0 {
			return nil, InvalidParams("missing required parameter: postId")
		}
		o.manager.OpenAddComment(in.PostID)
	case session.OverlayEditComment:
		err = o.manager.OpenEditComment(in.PostID, in.ID)
	case session.OverlayUserProfile:
		_, err = o.manager.OpenUser(rctx, in.ID)
	}
	if err != nil {
		return nil, err
	}
	return gin.H{"overlay": o.manager.Session().Overlay()}, nil
}

// Close handles overlay.close
func (o *OverlayAPI) Close(_ *gin.Context, _ json.RawMessage) (interface{}, error) {
	o.manager.CloseOverlay()
	return gin.H{"overlay": o.manager.Session().Overlay()}, nil
}
