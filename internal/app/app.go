package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"epicli/internal/config"
	"epicli/internal/dataprocessing"
	apierrors "epicli/internal/errors"
	"epicli/internal/files"
	"epicli/internal/infrastructure"
	customMiddleware "epicli/internal/middleware"
	"epicli/internal/services"
	handlers "epicli/internal/transport/http"
	ws "epicli/internal/websocket"
)

// Options adjusts how the application is assembled.
type Options struct {
	// BaseDir resolves relative directories in the config. Empty means the
	// working directory.
	BaseDir string
	// Logger replaces the logger built from the logging config.
	Logger *slog.Logger
	// Preload is a data file, relative to the data directory, loaded before
	// the server starts. PreloadLatest picks the newest data file. A failed
	// preload is logged, not fatal.
	Preload string
}

// PreloadLatest as Options.Preload loads the most recently modified data
// file in the data directory.
const PreloadLatest = "latest"

// Application represents the main application container
type Application struct {
	Config   *config.Config
	Paths    *config.Paths
	Logger   *slog.Logger
	Router   chi.Router
	Server   *http.Server
	Hub      *ws.Hub
	Datasets *services.DatasetService
	Health   *services.HealthService
	OTel     *infrastructure.OTelProviders

	errorHandler *apierrors.ErrorHandler
	ownsLogFile  bool
}

// New wires the application from cfg. The websocket hub is started; the
// HTTP server is not.
func New(cfg *config.Config, opts Options) (*Application, error) {
	if cfg == nil {
		return nil, apierrors.NewConfigError("configuration is required", nil)
	}

	logger := opts.Logger
	ownsLogFile := false
	if logger == nil {
		var err error
		logger, err = infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		ownsLogFile = cfg.Logging.Output != "console"
	}

	logger.Info("application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	paths, err := cfg.ResolvePaths(opts.BaseDir)
	if err != nil {
		return nil, apierrors.NewConfigError("failed to resolve paths", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, apierrors.NewConfigError("failed to create directories", err)
	}
	paths.LogPathResolution(logger)

	if !config.FileExists(paths.DataDir) {
		logger.Warn("data directory not found",
			slog.String("path", paths.DataDir),
			slog.String("action", "file loads will fail until it exists"))
	}

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	a := &Application{
		Config:       cfg,
		Paths:        paths,
		Logger:       logger,
		OTel:         providers,
		errorHandler: apierrors.NewErrorHandler(logger, cfg.Logging.Development),
		ownsLogFile:  ownsLogFile,
	}

	if err := a.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	if err := a.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}
	a.createServer()

	if opts.Preload != "" {
		a.preload(opts.Preload)
	}

	return a, nil
}

// initializeServices creates the hub, the dataset pipeline and the health
// checks.
func (a *Application) initializeServices() error {
	hubMetrics, err := ws.NewHubMetrics(a.OTel.Meter)
	if err != nil {
		return fmt.Errorf("failed to create websocket metrics: %w", err)
	}
	a.Hub = ws.NewHub(a.Logger, hubMetrics)
	a.Hub.Start()

	ingestMetrics, err := infrastructure.NewIngestMetrics(a.OTel.Meter)
	if err != nil {
		return fmt.Errorf("failed to create ingest metrics: %w", err)
	}

	reader := files.NewReader(files.ReaderConfig{
		BasePath:  a.Paths.DataDir,
		Encodings: a.Config.Ingest.Encodings,
		MaxBytes:  a.Config.Ingest.MaxFileBytes,
	}, a.Logger)

	a.Datasets = services.NewDatasetService(services.DatasetServiceDeps{
		Processor: dataprocessing.NewProcessor(a.Logger, dataprocessing.ProcessorConfig{}),
		Reader:    reader,
		Paths:     a.Paths,
		Export:    a.Config.Export,
		Notifier:  a.Hub,
		Metrics:   ingestMetrics,
		Tracer:    a.OTel.Tracer,
		Logger:    a.Logger,
	})

	a.Health = services.NewHealthService(config.AppVersion, a.Paths.DataDir, a.Hub, a.Datasets, a.Logger)
	return nil
}

// setupRouter configures the HTTP router. The websocket route sits outside
// the group so no middleware wraps the hijacked connection.
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.Handle(config.WebSocketEndpoint, ws.NewHandler(a.Hub, a.Config.WebSocket, a.Logger))

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTel)
	if err != nil {
		return fmt.Errorf("failed to create OpenTelemetry middleware: %w", err)
	}

	r.Group(func(r chi.Router) {
		// RequestID -> RealIP -> OTel -> Logger -> Recoverer -> RateLimit
		r.Use(otelMiddleware.Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.errorHandler))
		if a.Config.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.RateLimit.RPS,
				a.Config.RateLimit.Burst,
				a.errorHandler,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	if a.OTel.PrometheusHTTP != nil {
		r.Handle(config.MetricsEndpoint, a.OTel.PrometheusHTTP)
	}

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	a.Router = r
	return nil
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route(config.APIBasePath, func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)
		r.Mount(config.HealthEndpoint, healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		datasetHandler := handlers.NewDatasetHandler(a.Datasets, a.Logger, a.errorHandler, a.Config.Server.MaxBodyBytes)
		r.Mount("/dataset", datasetHandler.Routes())
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:              a.Config.Server.Addr(),
		Handler:           a.Router,
		ReadTimeout:       a.Config.Server.ReadTimeout,
		ReadHeaderTimeout: a.Config.Server.ReadTimeout,
		WriteTimeout:      a.Config.Server.WriteTimeout,
		IdleTimeout:       a.Config.Server.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

func (a *Application) preload(path string) {
	ctx := infrastructure.EnsureTraceID(context.Background())
	if path == PreloadLatest {
		found, err := files.DiscoverDataFiles(a.Paths.DataDir)
		latest, ok := files.GetLatestFile(found)
		if err != nil || !ok {
			a.Logger.WarnContext(ctx, "preload failed",
				slog.String("error", "no data files"),
				slog.String("dir", a.Paths.DataDir))
			return
		}
		path = latest.Name
	}

	summary, err := a.Datasets.LoadFile(ctx, path)
	if err != nil {
		a.Logger.WarnContext(ctx, "preload failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return
	}
	a.Logger.InfoContext(ctx, "preloaded dataset",
		slog.String("path", path),
		slog.Int("records", summary.RecordCount))
}

// Run serves HTTP until ctx is cancelled or the process receives SIGINT or
// SIGTERM, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "http server listening",
			slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.InfoContext(gctx, "shutdown requested")
		return a.Shutdown(context.Background())
	})

	return g.Wait()
}

// Shutdown stops the server, the hub and the telemetry providers within the
// configured shutdown timeout.
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if a.Server != nil {
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}

	a.Hub.Stop()

	if err := a.OTel.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "telemetry shutdown failed", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "application stopped")

	if a.ownsLogFile {
		if err := infrastructure.CloseLogFile(); err != nil {
			errs = append(errs, fmt.Errorf("close log file: %w", err))
		}
	}
	return errors.Join(errs...)
}
