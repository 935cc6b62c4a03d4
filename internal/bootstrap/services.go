package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/vms-jobdist/config"
	"github.com/target/vms-jobdist/internal/adapters/notification"
	"github.com/target/vms-jobdist/internal/adapters/taskqueue"
	"github.com/target/vms-jobdist/internal/core"
	"github.com/target/vms-jobdist/internal/data"
	"github.com/target/vms-jobdist/internal/data/pgxutil"
	"github.com/target/vms-jobdist/internal/observability/notify/pagerduty"
	"github.com/target/vms-jobdist/internal/observability/notify/slack"
	"github.com/target/vms-jobdist/internal/observability/statsd"
	"github.com/target/vms-jobdist/internal/service"
	"github.com/target/vms-jobdist/internal/service/failurenotifier"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Distributions *service.DistributionService
	History       *service.HistoryService
	Sweep         *service.DistributionSweepService
	// Dispatcher is nil when notifications are disabled.
	Dispatcher    *service.NotificationDispatcher
	Queue         *taskqueue.Queue
	LookupCache   *core.LookupCache
	Verifier      core.TokenVerifier
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink     *statsd.Client
	MetricsConfig   config.ObservabilityMetricsConfig
	FailureNotifier *failurenotifier.Service
	AlertsConfig    config.ObservabilityAlertsConfig
}

// Metrics returns the metrics sink, or nil when metrics are disabled.
//
//nolint:ireturn // a nil interface keeps optional metrics checks simple for callers.
func (o ObservabilityContainer) Metrics() statsd.Sink {
	if o.MetricsSink == nil {
		return nil
	}
	return o.MetricsSink
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	// Verifier is optional; the admin CLI builds services without one.
	Verifier core.TokenVerifier
	Logger   *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	DB            *sql.DB
	Tx            *pgxutil.TxRunner
	Jobs          *data.JobRepo
	Vendors       *data.VendorRepo
	Distributions *data.DistributionRepo
	History       *data.HistoryRepo
	Users         *data.UserRepo
	Lookups       *data.LookupRepo
	Schedules     *data.ScheduleRepo
	// Cache is nil without Redis.
	Cache *data.RedisCacheRepo
}

// buildObservability configures metrics and alert adapters.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  cfg.Metrics.Prefix,
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink:     metricsSink,
		MetricsConfig:   cfg.Metrics,
		FailureNotifier: buildFailureNotifier(obsLogger, cfg.Alerts),
		AlertsConfig:    cfg.Alerts,
	}
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB, redisClient redis.UniversalClient) *serviceRepositories {
	tp := data.RealTimeProvider{}
	repos := &serviceRepositories{
		DB:            db,
		Tx:            pgxutil.NewTxRunner(db),
		Jobs:          data.NewJobRepo(db, tp),
		Vendors:       data.NewVendorRepo(db),
		Distributions: data.NewDistributionRepo(db, tp),
		History:       data.NewHistoryRepo(db, tp),
		Users:         data.NewUserRepo(db),
		Lookups:       data.NewLookupRepo(db),
		Schedules:     data.NewScheduleRepo(db),
	}
	if redisClient != nil {
		repos.Cache = data.NewRedisCacheRepo(redisClient)
	}
	return repos
}

func newLookupCache(repos *serviceRepositories, cfg config.PopulateConfig, logger *slog.Logger) *core.LookupCache {
	opts := core.LookupCacheOptions{
		TTL:       cfg.CacheTTL,
		KeyPrefix: cfg.KeyPrefix,
		Logger:    logger,
	}
	if repos.Cache != nil {
		opts.Remote = repos.Cache
	}
	return core.NewLookupCache(opts)
}

func newHistoryService(repos *serviceRepositories, cache *core.LookupCache, logger *slog.Logger) *service.HistoryService {
	populator := service.NewPopulator(service.PopulatorOptions{
		Lookups: repos.Lookups,
		Cache:   cache,
		Logger:  logger,
	})
	return service.NewHistoryService(service.HistoryServiceOptions{
		Tx:        repos.Tx,
		Repo:      repos.History,
		Users:     repos.Users,
		Populator: populator,
		Logger:    logger,
	})
}

type dispatcherDeps struct {
	Repos   *serviceRepositories
	Queue   *taskqueue.Queue
	Config  config.NotificationConfig
	Metrics statsd.Sink
	Logger  *slog.Logger
}

// newNotificationDispatcher returns nil when notifications are disabled.
func newNotificationDispatcher(deps dispatcherDeps) (*service.NotificationDispatcher, error) {
	if !deps.Config.Enabled {
		deps.Logger.Info("notification dispatch disabled")
		return nil, nil
	}
	client, err := notification.NewClient(notification.Config{
		BaseURL:       deps.Config.BaseURL,
		Token:         deps.Config.Token,
		Timeout:       deps.Config.Timeout,
		RatePerSecond: deps.Config.RatePerSecond,
	})
	if err != nil {
		return nil, fmt.Errorf("create notification client: %w", err)
	}
	dispatcher, err := service.NewNotificationDispatcher(service.NotificationDispatcherOptions{
		Client:      client,
		Users:       deps.Repos.Users,
		Vendors:     deps.Repos.Vendors,
		Jobs:        deps.Repos.Jobs,
		Background:  deps.Queue,
		PayloadExpr: deps.Config.PayloadExpr,
		Metrics:     deps.Metrics,
		Logger:      deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create notification dispatcher: %w", err)
	}
	return dispatcher, nil
}

type distributionDeps struct {
	Repos      *serviceRepositories
	History    *service.HistoryService
	Dispatcher *service.NotificationDispatcher
	Queue      *taskqueue.Queue
	Verifier   core.TokenVerifier
	Logger     *slog.Logger
}

func newDistributionService(deps distributionDeps) *service.DistributionService {
	opts := service.DistributionServiceOptions{
		Tx:            deps.Repos.Tx,
		Jobs:          deps.Repos.Jobs,
		Vendors:       deps.Repos.Vendors,
		Distributions: deps.Repos.Distributions,
		History:       deps.History,
		HistoryReader: deps.Repos.History,
		Background:    deps.Queue,
		Verifier:      deps.Verifier,
		Logger:        deps.Logger,
	}
	if deps.Dispatcher != nil {
		opts.Notifier = deps.Dispatcher
	}
	return service.NewDistributionService(opts)
}

func newSweepService(
	repos *serviceRepositories,
	cfg config.DistributionConfig,
	obs ObservabilityContainer,
	logger *slog.Logger,
) *service.DistributionSweepService {
	opts := service.DistributionSweepServiceOptions{
		Distributions: repos.Distributions,
		Jobs:          repos.Jobs,
		Schedules:     repos.Schedules,
		BatchSize:     cfg.SweepBatch,
		Metrics:       obs.Metrics(),
		Logger:        logger,
	}
	if obs.FailureNotifier != nil && obs.FailureNotifier.Enabled() {
		opts.Alerter = obs.FailureNotifier
	}
	return service.NewDistributionSweepService(opts)
}

// NewServices wires repositories, caches, the background queue and domain
// services. Callers must Shutdown the returned queue.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil {
		return ServiceContainer{}, errors.New("service deps are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := deps.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	observability := buildObservability(logger, appCfg.Observability)
	repos := buildRepositories(deps.DB, deps.RedisClient)
	cache := newLookupCache(repos, appCfg.Populate, logger)

	queue := taskqueue.New(taskqueue.Options{
		Workers:     appCfg.Background.Workers,
		QueueSize:   appCfg.Background.QueueSize,
		TaskTimeout: appCfg.Background.TaskTimeout,
		Metrics:     observability.Metrics(),
		Logger:      logger,
	})

	history := newHistoryService(repos, cache, logger)
	dispatcher, err := newNotificationDispatcher(dispatcherDeps{
		Repos:   repos,
		Queue:   queue,
		Config:  appCfg.Notification,
		Metrics: observability.Metrics(),
		Logger:  logger,
	})
	if err != nil {
		_ = queue.Shutdown(context.Background())
		return ServiceContainer{}, err
	}

	return ServiceContainer{
		Distributions: newDistributionService(distributionDeps{
			Repos:      repos,
			History:    history,
			Dispatcher: dispatcher,
			Queue:      queue,
			Verifier:   deps.Verifier,
			Logger:     logger,
		}),
		History:       history,
		Sweep:         newSweepService(repos, appCfg.Distribution, observability, logger),
		Dispatcher:    dispatcher,
		Queue:         queue,
		LookupCache:   cache,
		Verifier:      deps.Verifier,
		Observability: observability,
	}, nil
}

func buildFailureNotifier(logger *slog.Logger, cfg config.ObservabilityAlertsConfig) *failurenotifier.Service {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = slog.Default()
	}
	metadata := map[string]string{}
	if host, err := os.Hostname(); err == nil {
		metadata["instance"] = host
	}

	if !cfg.Enabled {
		return failurenotifier.NewService(failurenotifier.Options{
			Logger: baseLogger.With("component", "failure_notifier"),
		})
	}

	sinks := make([]failurenotifier.SinkRegistration, 0, 2)

	if cfg.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL: cfg.Slack.WebhookURL,
			Channel:    cfg.Slack.Channel,
			Username:   cfg.Slack.Username,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			baseLogger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{
				Name: "slack",
				Sink: client,
			})
		}
	}

	if cfg.PagerDuty.Enabled {
		client, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: cfg.PagerDuty.RoutingKey,
			Source:     cfg.PagerDuty.Source,
			Component:  cfg.PagerDuty.Component,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			baseLogger.Error("failed to initialise pagerduty notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{
				Name: "pagerduty",
				Sink: client,
			})
		}
	}

	return failurenotifier.NewService(failurenotifier.Options{
		Logger:   baseLogger.With("component", "failure_notifier"),
		Sinks:    sinks,
		Metadata: metadata,
	})
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

const (
	// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
	shutdownWaitTimeout = 15 * time.Second
)

// serviceStartupDeps groups dependencies for service startup.
type serviceStartupDeps struct {
	ctx             context.Context
	cfg             *ServiceOrchestrationConfig
	logger          *slog.Logger
	enabledServices map[config.ServiceMode]bool
	errCh           chan error
}

// backgroundService describes a startable background component.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context) error
}

// backgroundServiceHandle tracks a running background service.
type backgroundServiceHandle struct {
	mode config.ServiceMode
	name string
	done <-chan struct{}
}

// startHTTPServerIfEnabled starts the HTTP server if enabled.
func startHTTPServerIfEnabled(deps *serviceStartupDeps) (*http.Server, error) {
	if deps == nil || deps.cfg == nil || !deps.enabledServices[config.ServiceModeHTTP] {
		return nil, nil
	}
	return StartHTTPServer(&HTTPServerConfig{
		Config:       deps.cfg.Config,
		Services:     deps.cfg.Services,
		HealthChecks: buildHealthChecks(deps.cfg.DB, deps.cfg.RedisClient),
		Logger:       deps.logger,
	})
}

func launchBackground(ctx context.Context, deps *serviceStartupDeps, descriptor backgroundService) <-chan struct{} {
	if deps == nil || !deps.enabledServices[descriptor.mode] {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := descriptor.start(ctx); err != nil {
			errMsg := fmt.Errorf("%s failed: %w", descriptor.name, err)
			select {
			case deps.errCh <- errMsg:
			case <-ctx.Done():
			default:
				deps.logger.WarnContext(ctx, "dropping background service error",
					"service", descriptor.name,
					"error", errMsg,
				)
			}
		}
	}()

	deps.logger.InfoContext(ctx, "background service started", "service", descriptor.name, "mode", descriptor.mode)
	return done
}

func startBackgroundServices(deps *serviceStartupDeps, services []backgroundService) []backgroundServiceHandle {
	if deps == nil {
		return nil
	}
	handles := make([]backgroundServiceHandle, 0, len(services))

	for _, svc := range services {
		done := launchBackground(deps.ctx, deps, svc)
		if done == nil {
			continue
		}

		handles = append(handles, backgroundServiceHandle{
			mode: svc.mode,
			name: svc.name,
			done: done,
		})
	}

	return handles
}

func newSchedulerBackgroundService(deps *serviceStartupDeps) backgroundService {
	return backgroundService{
		mode: config.ServiceModeScheduler,
		name: "distribution sweep",
		start: func(ctx context.Context) error {
			if deps == nil || deps.cfg == nil {
				return nil
			}
			interval := time.Duration(0)
			if deps.cfg.Config != nil {
				interval = deps.cfg.Config.Distribution.SweepInterval
			}
			return RunDistributionSweep(ctx, SweepRunnerConfig{
				DB:       deps.cfg.DB,
				Sweeper:  deps.cfg.Services.Sweep,
				Interval: interval,
				Metrics:  deps.cfg.Services.Observability.Metrics(),
				Logger:   deps.logger,
			})
		},
	}
}

func buildBackgroundServices(deps *serviceStartupDeps) []backgroundService {
	if deps == nil {
		return nil
	}
	return []backgroundService{
		newSchedulerBackgroundService(deps),
	}
}

// ServiceStartupResult holds the results of starting all services.
type ServiceStartupResult struct {
	HTTPServer *http.Server
	Background []backgroundServiceHandle
}

// startServices starts all enabled services and returns their completion
// channels. Background services are not started when the HTTP listener fails.
func startServices(deps *serviceStartupDeps) (ServiceStartupResult, error) {
	server, err := startHTTPServerIfEnabled(deps)
	if err != nil {
		return ServiceStartupResult{}, err
	}
	return ServiceStartupResult{
		HTTPServer: server,
		Background: startBackgroundServices(deps, buildBackgroundServices(deps)),
	}, nil
}

// RunServicesWithShutdown starts all enabled services and manages their lifecycle.
// This function blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabledServices, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}
	errCh := make(chan error, errorChannelBufferSize(enabledServices))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	result, err := startServices(&serviceStartupDeps{
		ctx:             serviceCtx,
		cfg:             cfg,
		logger:          logger,
		enabledServices: enabledServices,
		errCh:           errCh,
	})
	if err != nil {
		if cfg.Services.Queue != nil {
			_ = cfg.Services.Queue.Shutdown(context.Background())
		}
		return err
	}

	return waitForShutdown(shutdownConfig{
		cancel:      cancel,
		signals:     quit,
		errCh:       errCh,
		httpServer:  result.HTTPServer,
		queue:       cfg.Services.Queue,
		metrics:     cfg.Services.Observability.MetricsSink,
		logger:      logger,
		backgrounds: result.Background,
	})
}

func errorChannelCapacity(enabled map[config.ServiceMode]bool) int {
	count := 0
	for _, mode := range config.ValidServiceModes() {
		if enabled[mode] {
			count++
		}
	}
	return count
}

func errorChannelBufferSize(enabled map[config.ServiceMode]bool) int {
	return errorChannelCapacity(enabled) + 1
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	cancel      context.CancelFunc
	signals     <-chan os.Signal
	errCh       <-chan error
	httpServer  *http.Server
	queue       *taskqueue.Queue
	metrics     *statsd.Client
	logger      *slog.Logger
	backgrounds []backgroundServiceHandle
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	select {
	case <-cfg.signals:
		cfg.logger.Info("shutting down services...")
		cfg.cancel()
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		cfg.cancel()
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop stops the HTTP server first so no new work is queued, then
// waits for background services and drains the task queue.
func gracefulStop(cfg shutdownConfig) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWaitTimeout)
	defer cancel()

	var errs []error
	if cfg.httpServer != nil {
		if err := ShutdownHTTPServer(ShutdownConfig{
			Context: shutdownCtx,
			Server:  cfg.httpServer,
			Logger:  cfg.logger,
		}); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
	}

	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}

	if cfg.queue != nil {
		if err := cfg.queue.Shutdown(shutdownCtx); err != nil && !errors.Is(err, taskqueue.ErrClosed) {
			errs = append(errs, fmt.Errorf("drain task queue: %w", err))
		}
	}
	if err := cfg.metrics.Close(); err != nil {
		cfg.logger.Warn("close statsd client failed", "error", err)
	}

	return errors.Join(errs...)
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
