package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-onboarding/internal/audit"
	"github.com/goliatone/go-onboarding/internal/catalog"
	"github.com/goliatone/go-onboarding/internal/creators"
	"github.com/goliatone/go-onboarding/internal/engine"
	"github.com/goliatone/go-onboarding/internal/logging"
	"github.com/goliatone/go-onboarding/internal/progress"
	"github.com/goliatone/go-onboarding/pkg/interfaces"
)

// DefaultBasePath is where the API mounts unless overridden.
const DefaultBasePath = "/api"

// RequestIDHeader carries the correlation id in and out of the API.
const RequestIDHeader = "X-Request-ID"

// API registers onboarding endpoints.
type API struct {
	basePath   string
	engine     engine.Service
	creators   creators.Service
	dashboards *progress.DashboardService
	catalog    catalog.Catalog
	audit      audit.Recorder
	logger     interfaces.Logger
}

// Option mutates the API configuration.
type Option func(*API)

// NewAPI constructs an API instance.
func NewAPI(opts ...Option) *API {
	api := &API{
		basePath: DefaultBasePath,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base API path.
func WithBasePath(path string) Option {
	return func(api *API) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithEngine wires the transition engine.
func WithEngine(service engine.Service) Option {
	return func(api *API) {
		api.engine = service
	}
}

// WithCreatorService wires creator registration and lookup.
func WithCreatorService(service creators.Service) Option {
	return func(api *API) {
		api.creators = service
	}
}

// WithDashboards wires dashboard assembly.
func WithDashboards(service *progress.DashboardService) Option {
	return func(api *API) {
		api.dashboards = service
	}
}

// WithCatalog wires the milestone catalog.
func WithCatalog(cat catalog.Catalog) Option {
	return func(api *API) {
		api.catalog = cat
	}
}

// WithAudit wires the audit note recorder used by the notes endpoint.
func WithAudit(recorder audit.Recorder) Option {
	return func(api *API) {
		api.audit = recorder
	}
}

// WithLogger sets the request logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(api *API) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// Register attaches the endpoints to the provided mux.
func (api *API) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: api is nil")
	}

	base := joinPath(api.basePath, "")
	api.registerCreatorRoutes(mux, base)
	api.registerMilestoneRoutes(mux, base)
	api.registerCatalogRoutes(mux, base)
	return nil
}

// route registers handler under pattern with request correlation and a completion log.
func (api *API) route(mux *http.ServeMux, pattern string, handler http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		ctx := logging.ContextWithRequest(r.Context(), requestID, pattern)

		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		handler(recorder, r.WithContext(ctx))

		logger := api.logger.WithContext(ctx)
		args := []any{"status", recorder.status, "duration_ms", time.Since(started).Milliseconds()}
		if recorder.status >= http.StatusInternalServerError {
			logger.Error("http.request.failed", args...)
			return
		}
		logger.Debug("http.request.completed", args...)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
