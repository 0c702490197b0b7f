package mutation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/steemit/postsmanager/internal/cache"
	"github.com/steemit/postsmanager/internal/models"
	"github.com/steemit/postsmanager/internal/session"
	"github.com/steemit/postsmanager/pkg/logging"
	"github.com/steemit/postsmanager/pkg/telemetry"
)

// Backend is the write side of the REST backend
type Backend interface {
	AddPost(ctx context.Context, in models.PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, id int64, in models.PostInput) (*models.Post, error)
	DeletePost(ctx context.Context, id int64) error
	AddComment(ctx context.Context, in models.CommentInput) (*models.Comment, error)
	UpdateComment(ctx context.Context, id int64, body string) (*models.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
	LikeComment(ctx context.Context, id int64, likes int) (*models.Comment, error)
}

// Dialogs is the UI state a successful mutation closes or resets
type Dialogs interface {
	CloseOverlay(kind session.OverlayKind) bool
	ResetNewPost()
	ResetNewComment()
}

// Recorder persists settled mutations
type Recorder interface {
	Record(ctx context.Context, rec *models.MutationRecord) error
}

// Pipeline runs mutations. Concurrent mutations touching the same entry
// apply their patches in completion order.
type Pipeline struct {
	backend Backend
	cache   *cache.Store
	dialogs Dialogs
	journal Recorder
	logger  *zap.Logger
	now     func() time.Time
	settled []func(Mutation)
}

// New creates a Pipeline. dialogs and journal may be nil.
func New(backend Backend, store *cache.Store, dialogs Dialogs, journal Recorder) *Pipeline {
	return &Pipeline{
		backend: backend,
		cache:   store,
		dialogs: dialogs,
		journal: journal,
		logger:  logging.WithComponent("mutation"),
		now:     time.Now,
	}
}

// OnSettled registers fn to receive every mutation once it reaches a
// terminal state. Register before the first mutation runs.
func (p *Pipeline) OnSettled(fn func(Mutation)) {
	p.settled = append(p.settled, fn)
}

// step describes one mutation: the backend call, the policy built from its
// result, and the UI cleanup on success.
type step struct {
	call    func(ctx context.Context) (interface{}, error)
	policy  func(result interface{}) Policy
	closes  session.OverlayKind
	onReset func(Dialogs)
}

func (p *Pipeline) run(ctx context.Context, m *Mutation, s step) (interface{}, error) {
	ctx, span := telemetry.StartSpan(ctx, "mutation."+m.Kind+"."+string(m.Operation))
	defer span.End()
	span.SetAttributes(
		attribute.String("mutation.id", m.ID.String()),
		attribute.Int64("mutation.target", m.TargetID),
	)
	logger := logging.FromContext(ctx, p.logger).With(
		zap.String("mutation_id", m.ID.String()),
		zap.String("kind", m.Kind),
		zap.String("operation", string(m.Operation)),
		zap.Int64("target_id", m.TargetID),
	)

	if err := m.advance(InFlight, p.now()); err != nil {
		return nil, err
	}

	result, err := s.call(ctx)
	if err != nil {
		m.Err = err
		_ = m.advance(Failed, p.now())
		telemetry.RecordError(span, err)
		logger.Error("Mutation failed", zap.Error(err))
		p.settle(ctx, m)
		return nil, err
	}

	_ = m.advance(Succeeded, p.now())
	patched := 0
	if s.policy != nil {
		patched = s.policy(result).apply(p.cache)
	}
	if p.dialogs != nil {
		if s.closes != session.OverlayNone {
			p.dialogs.CloseOverlay(s.closes)
		}
		if s.onReset != nil {
			s.onReset(p.dialogs)
		}
	}
	logger.Info("Mutation succeeded", zap.Int("entries", patched))
	p.settle(ctx, m)
	return result, nil
}

func (p *Pipeline) settle(ctx context.Context, m *Mutation) {
	if p.journal != nil {
		if err := p.journal.Record(ctx, m.Record()); err != nil {
			p.logger.Warn("Failed to journal mutation",
				zap.String("mutation_id", m.ID.String()),
				zap.Error(err))
		}
	}
	for _, fn := range p.settled {
		fn(*m)
	}
}
