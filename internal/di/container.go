package di

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	goredis "github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-onboarding/internal/audit"
	"github.com/goliatone/go-onboarding/internal/catalog"
	"github.com/goliatone/go-onboarding/internal/commands"
	milestonescmd "github.com/goliatone/go-onboarding/internal/commands/milestones"
	"github.com/goliatone/go-onboarding/internal/creators"
	"github.com/goliatone/go-onboarding/internal/engine"
	apihttp "github.com/goliatone/go-onboarding/internal/http"
	"github.com/goliatone/go-onboarding/internal/logging"
	"github.com/goliatone/go-onboarding/internal/notify"
	"github.com/goliatone/go-onboarding/internal/progress"
	"github.com/goliatone/go-onboarding/internal/records"
	"github.com/goliatone/go-onboarding/internal/runtimeconfig"
	"github.com/goliatone/go-onboarding/pkg/interfaces"
)

// Container wires module dependencies from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	now            func() time.Time

	bunDB         *bun.DB
	ownsDB        bool
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	catalog     catalog.Catalog
	recordRepo  records.Repository
	creatorRepo creators.CreatorRepository
	projectRepo creators.ProjectRepository
	auditRepo   audit.Recorder
	inboxRepo   notify.InboxRepository
	activity    interfaces.ActivitySink

	redisClient notify.RedisPublisher
	ownedRedis  *goredis.Client
	extraSinks  []notify.Sink
	dispatcher  *notify.Dispatcher
	notifier    notify.Notifier

	engineHooks map[string]engine.HookFunc

	creatorSvc creators.Service
	engineSvc  engine.Service
	dashboards *progress.DashboardService
	commands   *milestonescmd.Handlers
	api        *apihttp.API
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithClock overrides the time source shared by every service.
func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		if now != nil {
			c.now = now
		}
	}
}

// WithBunDB supplies an open database. The container does not close it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithCatalog replaces the catalog loaded from Config.Catalog.
func WithCatalog(cat catalog.Catalog) Option {
	return func(c *Container) {
		c.catalog = cat
	}
}

// WithRecordsRepository overrides the milestone record store. It is still wrapped with the
// retrying decorator.
func WithRecordsRepository(repo records.Repository) Option {
	return func(c *Container) {
		c.recordRepo = repo
	}
}

// WithAuditRecorder overrides the audit note store.
func WithAuditRecorder(recorder audit.Recorder) Option {
	return func(c *Container) {
		c.auditRepo = recorder
	}
}

// WithActivitySink routes activity records to a go-users compatible sink.
func WithActivitySink(sink interfaces.ActivitySink) Option {
	return func(c *Container) {
		c.activity = sink
	}
}

// WithRedisPublisher supplies the client used by the Redis notification sink instead of
// dialing Config.Notifications.RedisAddr.
func WithRedisPublisher(client notify.RedisPublisher) Option {
	return func(c *Container) {
		c.redisClient = client
	}
}

// WithNotificationSinks appends extra sinks to the dispatcher.
func WithNotificationSinks(sinks ...notify.Sink) Option {
	return func(c *Container) {
		c.extraSinks = append(c.extraSinks, sinks...)
	}
}

// WithEngineHook registers a completion hook on the engine.
func WithEngineHook(name string, hook engine.HookFunc) Option {
	return func(c *Container) {
		if c.engineHooks == nil {
			c.engineHooks = map[string]engine.HookFunc{}
		}
		c.engineHooks[name] = hook
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.TTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:   cfg,
		now:      time.Now,
		cacheTTL: cacheTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	steps := []func() error{
		c.configureLogger,
		c.configureCatalog,
		c.configureDatabase,
		c.configureCacheDefaults,
		c.configureRepositories,
		c.configureNotifications,
		c.configureServices,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			_ = c.Close(context.Background())
			return nil, err
		}
	}
	return c, nil
}

func (c *Container) configureLogger() error {
	if c.loggerProvider != nil {
		return nil
	}
	provider, err := NewLoggerProvider(c.Config.Logging)
	if err != nil {
		return err
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureCatalog() error {
	if c.catalog == nil {
		path := strings.TrimSpace(c.Config.Catalog.Path)
		if path == "" {
			c.catalog = catalog.Default()
		} else {
			loaded, err := catalog.LoadFile(path)
			if err != nil {
				return fmt.Errorf("di: load catalog %s: %w", path, err)
			}
			c.catalog = loaded
		}
	}
	if dir := strings.TrimSpace(c.Config.Catalog.InstructionsDir); dir != "" {
		overlaid, err := catalog.LoadMarkdownDir(os.DirFS(dir), ".", c.catalog)
		if err != nil {
			return fmt.Errorf("di: load instructions %s: %w", dir, err)
		}
		c.catalog = overlaid
	}
	logging.CatalogLogger(c.loggerProvider).Info("catalog.loaded",
		"version", c.catalog.Version(),
		"milestones", c.catalog.Len(),
	)
	return nil
}

func (c *Container) configureDatabase() error {
	if c.bunDB != nil || !strings.EqualFold(strings.TrimSpace(c.Config.Storage.Provider), "bun") {
		return nil
	}
	db, err := OpenDatabase(c.Config.Storage)
	if err != nil {
		return err
	}
	c.bunDB = db
	c.ownsDB = true
	return nil
}

func (c *Container) configureCacheDefaults() error {
	if !c.Config.Cache.Enabled {
		return nil
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			return fmt.Errorf("di: cache service: %w", err)
		}
		c.cacheService = service
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
	return nil
}

func (c *Container) configureRepositories() error {
	if c.bunDB != nil {
		c.creatorRepo = creators.NewBunCreatorRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.projectRepo = creators.NewBunProjectRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		if c.recordRepo == nil {
			c.recordRepo = records.NewBunRepository(c.bunDB)
		}
		if c.auditRepo == nil {
			c.auditRepo = audit.NewBunRecorder(c.bunDB)
		}
		c.inboxRepo = notify.NewBunInbox(c.bunDB)
	} else {
		c.creatorRepo = creators.NewMemoryCreatorRepository()
		c.projectRepo = creators.NewMemoryProjectRepository()
		if c.recordRepo == nil {
			c.recordRepo = records.NewMemoryRepository()
		}
		if c.auditRepo == nil {
			c.auditRepo = audit.NewMemoryRecorder()
		}
		c.inboxRepo = notify.NewMemoryInbox()
	}

	c.recordRepo = records.NewRetrying(c.recordRepo,
		records.WithRetryLogger(logging.StoreLogger(c.loggerProvider)),
	)
	if c.activity == nil {
		c.activity = notify.NewMemoryActivityFeed()
	}
	return nil
}

func (c *Container) configureNotifications() error {
	cfg := c.Config.Notifications
	if !cfg.Enabled {
		c.notifier = notify.Nop()
		return nil
	}

	logger := logging.NotifyLogger(c.loggerProvider)
	sinks := []notify.Sink{
		notify.LogSink{Logger: logger},
		notify.InboxSink{Repository: c.inboxRepo},
		notify.ActivitySink{Sink: c.activity},
	}

	if c.redisClient == nil && strings.TrimSpace(cfg.RedisAddr) != "" {
		client, err := notify.NewRedisClient(context.Background(), cfg.RedisAddr)
		if err != nil {
			return err
		}
		c.ownedRedis = client
		c.redisClient = client
	}
	if c.redisClient != nil {
		sinks = append(sinks, notify.NewRedisSink(c.redisClient, cfg.RedisChannel))
	}
	sinks = append(sinks, c.extraSinks...)

	opts := []notify.Option{notify.WithLogger(logger)}
	if cfg.Workers > 0 {
		opts = append(opts, notify.WithWorkers(cfg.Workers))
	}
	if cfg.QueueSize > 0 {
		opts = append(opts, notify.WithQueueSize(cfg.QueueSize))
	}
	c.dispatcher = notify.NewDispatcher(sinks, opts...)
	c.notifier = c.dispatcher
	return nil
}

func (c *Container) configureServices() error {
	c.creatorSvc = creators.NewService(c.creatorRepo, c.projectRepo, creators.WithNow(c.now))

	engineOpts := []engine.ServiceOption{
		engine.WithNow(c.now),
		engine.WithLogger(logging.EngineLogger(c.loggerProvider)),
	}
	for name, hook := range c.engineHooks {
		engineOpts = append(engineOpts, engine.WithHook(name, hook))
	}
	svc, err := engine.NewService(engine.Dependencies{
		Catalog:  c.catalog,
		Records:  c.recordRepo,
		Creators: c.creatorRepo,
		Projects: c.projectRepo,
		Audit:    c.auditRepo,
		Notifier: c.notifier,
	}, engineOpts...)
	if err != nil {
		return err
	}
	c.engineSvc = svc

	dashboards, err := progress.NewDashboardService(c.catalog, c.recordRepo, c.creatorRepo, c.engineSvc,
		progress.WithStalledAfter(c.Config.Progress.StalledAfter),
		progress.WithClock(c.now),
		progress.WithLogger(logging.ProgressLogger(c.loggerProvider)),
	)
	if err != nil {
		return err
	}
	c.dashboards = dashboards

	c.commands = milestonescmd.NewHandlers(c.engineSvc, commands.CommandLogger(c.loggerProvider, "milestones"))

	c.api = apihttp.NewAPI(
		apihttp.WithBasePath(c.Config.HTTP.BasePath),
		apihttp.WithEngine(c.engineSvc),
		apihttp.WithCreatorService(c.creatorSvc),
		apihttp.WithDashboards(c.dashboards),
		apihttp.WithCatalog(c.catalog),
		apihttp.WithAudit(c.auditRepo),
		apihttp.WithLogger(logging.HTTPLogger(c.loggerProvider)),
	)
	return nil
}

// RegisterCommands subscribes the command handlers to the go-command dispatcher.
func (c *Container) RegisterCommands() []milestonescmd.Subscription {
	_, subs := milestonescmd.RegisterDispatcher(c.engineSvc, commands.CommandLogger(c.loggerProvider, "milestones"))
	return subs
}

// Close drains the notification queue and releases owned connections.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	if c.dispatcher != nil {
		errs = append(errs, c.dispatcher.Close(ctx))
	}
	if c.ownedRedis != nil {
		errs = append(errs, c.ownedRedis.Close())
	}
	if c.ownsDB && c.bunDB != nil {
		errs = append(errs, c.bunDB.Close())
	}
	return errors.Join(errs...)
}

// LoggerProvider exposes the configured logger provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Catalog returns the loaded milestone catalog.
func (c *Container) Catalog() catalog.Catalog {
	return c.catalog
}

// BunDB exposes the database handle, nil for the memory provider.
func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

// RecordsRepository exposes the retrying record store.
func (c *Container) RecordsRepository() records.Repository {
	return c.recordRepo
}

// CreatorRepository exposes the configured creator repository.
func (c *Container) CreatorRepository() creators.CreatorRepository {
	return c.creatorRepo
}

// AuditRecorder exposes the audit note store.
func (c *Container) AuditRecorder() audit.Recorder {
	return c.auditRepo
}

// Inbox exposes the admin inbox store.
func (c *Container) Inbox() notify.InboxRepository {
	return c.inboxRepo
}

// Notifier exposes the event dispatcher.
func (c *Container) Notifier() notify.Notifier {
	return c.notifier
}

// CreatorService returns the creator registration service.
func (c *Container) CreatorService() creators.Service {
	return c.creatorSvc
}

// EngineService returns the transition engine.
func (c *Container) EngineService() engine.Service {
	return c.engineSvc
}

// DashboardService returns the progress dashboard service.
func (c *Container) DashboardService() *progress.DashboardService {
	return c.dashboards
}

// CommandHandlers returns the go-command handler set.
func (c *Container) CommandHandlers() *milestonescmd.Handlers {
	return c.commands
}

// API returns the HTTP adapter.
func (c *Container) API() *apihttp.API {
	return c.api
}
