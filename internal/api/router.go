package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/steemit/postsmanager/internal/manager"
	"github.com/steemit/postsmanager/internal/models"
	"github.com/steemit/postsmanager/pkg/logging"
)

// JournalReader lists recorded mutations
type JournalReader interface {
	Recent(ctx context.Context, limit int) ([]*models.MutationRecord, error)
}

// HealthChecker reports the health of a dependency
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Router sets up API routes
type Router struct {
	handler *JSONRPCHandler
	manager *manager.Manager
	journal JournalReader
	checks  map[string]HealthChecker
	logger  *zap.Logger
}

// NewRouter creates a new API router. journal may be nil when no database
// is configured.
func NewRouter(m *manager.Manager, journal JournalReader) *Router {
	router := &Router{
		handler: NewJSONRPCHandler(),
		manager: m,
		journal: journal,
		checks:  make(map[string]HealthChecker),
		logger:  logging.WithComponent("api-router"),
	}

	router.registerMethods()

	return router
}

// AddHealthCheck includes a dependency in the health endpoints
func (r *Router) AddHealthCheck(name string, check HealthChecker) {
	r.checks[name] = check
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	engine.POST("/", r.handler.Handle)

	engine.GET("/posts", r.postsHandler)
	engine.GET("/events", r.eventsHandler)
}

// registerMethods registers all API methods
func (r *Router) registerMethods() {
	viewAPI := NewViewAPI(r.manager)
	r.handler.RegisterMethod("view.render", viewAPI.Render)
	r.handler.RegisterMethod("view.navigate", viewAPI.Navigate)
	r.handler.RegisterMethod("view.search", viewAPI.Search)
	r.handler.RegisterMethod("view.clear_search", viewAPI.ClearSearch)
	r.handler.RegisterMethod("view.select_tag", viewAPI.SelectTag)
	r.handler.RegisterMethod("view.set_sort", viewAPI.SetSort)
	r.handler.RegisterMethod("view.set_page", viewAPI.SetPage)
	r.handler.RegisterMethod("view.session", viewAPI.Session)

	postsAPI := NewPostsAPI(r.manager)
	r.handler.RegisterMethod("posts.create", postsAPI.Create)
	r.handler.RegisterMethod("posts.update", postsAPI.Update)
	r.handler.RegisterMethod("posts.delete", postsAPI.Delete)
	r.handler.RegisterMethod("posts.set_form", postsAPI.SetForm)
	r.handler.RegisterMethod("tags.list", postsAPI.Tags)
	r.handler.RegisterMethod("users.get", postsAPI.User)

	commentsAPI := NewCommentsAPI(r.manager)
	r.handler.RegisterMethod("comments.list", commentsAPI.List)
	r.handler.RegisterMethod("comments.create", commentsAPI.Create)
	r.handler.RegisterMethod("comments.update", commentsAPI.Update)
	r.handler.RegisterMethod("comments.delete", commentsAPI.Delete)
	r.handler.RegisterMethod("comments.like", commentsAPI.Like)

	overlayAPI := NewOverlayAPI(r.manager)
	r.handler.RegisterMethod("overlay.get", overlayAPI.Get)
	r.handler.RegisterMethod("overlay.open", overlayAPI.Open)
	r.handler.RegisterMethod("overlay.close", overlayAPI.Close)

	r.handler.RegisterMethod("journal.recent", r.journalRecent)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	status := http.StatusOK
	deps := gin.H{}
	for name, check := range r.checks {
		if err := check.Health(c.Request.Context()); err != nil {
			r.logger.Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "OK"
	}

	body := gin.H{
		"status":  "OK",
		"service": "postsmanager-api",
	}
	if status != http.StatusOK {
		body["status"] = "DEGRADED"
	}
	if len(deps) > 0 {
		body["dependencies"] = deps
	}
	c.JSON(status, body)
}

// journalRecent returns the latest recorded mutations
func (r *Router) journalRecent(c *gin.Context, params json.RawMessage) (interface{}, error) {
	if r.journal == nil {
		return nil, NewError(ErrServerError, "mutation journal is disabled")
	}
	var in struct {
		Limit int `json:"limit"`
	}
	if err := decodeParams(params, &in); err != nil {
		return nil, err
	}
	return r.journal.Recent(c.Request.Context(), in.Limit)
}
