package resource

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/steemit/postsmanager/internal/urlstate"
	"github.com/steemit/postsmanager/pkg/logging"
)

// Warm reloads the tag list, the user summaries and the first pages of
// the unfiltered listing from the backend, bypassing fresh entries. It
// stops at the first failure.
func (s *Service) Warm(ctx context.Context, pageSize, pages int) error {
	logger := logging.FromContext(ctx, s.logger)
	w := *s
	w.refresh = true
	s = &w

	if _, err := s.Tags(ctx); err != nil {
		return fmt.Errorf("failed to warm tags: %w", err)
	}
	if _, err := s.UserSummaries(ctx); err != nil {
		return fmt.Errorf("failed to warm user summaries: %w", err)
	}

	f := urlstate.Default()
	f.Limit = pageSize
	for i := 0; i < pages; i++ {
		f.Skip = i * pageSize
		page, err := s.Posts(ctx, f)
		if err != nil {
			return fmt.Errorf("failed to warm page %d: %w", i+1, err)
		}
		logger.Debug("Warmed page", zap.Int("page", i+1), zap.Int("posts", len(page.Posts)))
		if f.Skip+pageSize >= page.Total {
			break
		}
	}
	return nil
}
