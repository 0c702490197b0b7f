package api

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/steemit/postsmanager/internal/manager"
	"github.com/steemit/postsmanager/internal/view"
)

// ViewAPI exposes the post list page: filters, search, sort and paging.
// Every method returns the freshly rendered view.
type ViewAPI struct {
	manager *manager.Manager
}

// NewViewAPI creates a new view API
func NewViewAPI(m *manager.Manager) *ViewAPI {
	return &ViewAPI{manager: m}
}

// Render handles view.render
func (v *ViewAPI) Render(ctx *gin.Context, _ json.RawMessage) (interface{}, error) {
	return v.manager.Render(ctx.Request.Context()), nil
}

// Navigate handles view.navigate, applying an address change
func (v *ViewAPI) Navigate(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		Query string `json:"query"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return v.after(ctx, v.manager.Navigate(ctx.Request.Context(), p.Query))
}

// Search handles view.search; an empty query clears the search
func (v *ViewAPI) Search(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		Query string `json:"query"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return v.after(ctx, v.manager.Search(ctx.Request.Context(), p.Query))
}

// ClearSearch handles view.clear_search
func (v *ViewAPI) ClearSearch(ctx *gin.Context, _ json.RawMessage) (interface{}, error) {
	v.manager.ClearSearch()
	return v.after(ctx, nil)
}

// SelectTag handles view.select_tag
func (v *ViewAPI) SelectTag(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		Tag string `json:"tag"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	v.manager.SelectTag(p.Tag)
	return v.after(ctx, nil)
}

// SetSort handles view.set_sort
func (v *ViewAPI) SetSort(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		SortBy    string `json:"sortBy"`
		SortOrder string `json:"sortOrder"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	v.manager.SetSort(view.ParseSortBy(p.SortBy), view.ParseSortOrder(p.SortOrder))
	return v.after(ctx, nil)
}

// SetPage handles view.set_page
func (v *ViewAPI) SetPage(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		Skip  int `json:"skip"`
		Limit int `json:"limit"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Skip < 0 || p.Limit < 0 || p.Limit > 100 {
		return nil, InvalidParams("skip must be >= 0 and limit between 0 and 100")
	}
	v.manager.SetPage(p.Skip, p.Limit)
	return v.after(ctx, nil)
}

// Session handles view.session, returning the whole session state
func (v *ViewAPI) Session(_ *gin.Context, _ json.RawMessage) (interface{}, error) {
	return v.manager.Session().Snapshot(), nil
}

// after renders the view unless the event itself failed
func (v *ViewAPI) after(ctx *gin.Context, err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	return v.manager.Render(ctx.Request.Context()), nil
}
