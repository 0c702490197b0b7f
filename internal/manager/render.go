package manager

import (
	"context"

	"go.uber.org/zap"

	"github.com/steemit/postsmanager/internal/models"
	"github.com/steemit/postsmanager/internal/session"
	"github.com/steemit/postsmanager/internal/urlstate"
	"github.com/steemit/postsmanager/internal/view"
	"github.com/steemit/postsmanager/pkg/logging"
)

// Row is one rendered post. TitleSegments carries the search highlight
// when search results are shown.
type Row struct {
	models.Post
	TitleSegments []view.Segment `json:"titleSegments,omitempty"`
}

// View is everything the post list page renders
type View struct {
	Location   string               `json:"location"`
	Filters    urlstate.FilterState `json:"filters"`
	Searching  bool                 `json:"searching"`
	Rows       []Row                `json:"rows"`
	Pagination view.Pagination      `json:"pagination"`
	Overlay    session.Overlay      `json:"overlay"`
	Error      string               `json:"error,omitempty"`
}

// Render loads the base listing for the current filters and derives the
// rows to show. A failed read renders the last cached page, or nothing,
// with Error set.
func (m *Manager) Render(ctx context.Context) *View {
	logger := logging.FromContext(ctx, m.logger)
	snap := m.session.Snapshot()
	f := snap.Filters

	v := &View{
		Location: m.syncer.Location(),
		Filters:  f,
		Overlay:  snap.Overlay,
		Rows:     []Row{},
	}

	base, err := m.resources.Posts(ctx, f)
	if err != nil {
		logger.Warn("Failed to load posts", zap.String("location", v.Location), zap.Error(err))
		v.Error = err.Error()
	}

	in := view.Input{
		Base:         base,
		Search:       snap.Search.Results,
		SearchActive: snap.Search.Active,
		HasSearched:  snap.Search.HasSearched,
		SortBy:       f.SortBy,
		SortOrder:    f.SortOrder,
	}
	source := view.Source(in)
	v.Searching = source != nil && source == snap.Search.Results

	total := 0
	if source != nil {
		total = source.Total
		in.Base, in.Search = m.resources.WithAuthors(ctx, source), nil
	}

	var hl *view.Highlighter
	if v.Searching {
		hl = view.NewHighlighter(snap.Search.Query)
	}
	for _, p := range view.Derive(in) {
		row := Row{Post: p}
		if hl != nil {
			row.TitleSegments = hl.Split(p.Title)
		}
		v.Rows = append(v.Rows, row)
	}
	v.Pagination = view.Paginate(f.Skip, f.Limit, total)
	return v
}
