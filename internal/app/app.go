package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kamtechie/zenji/internal/api/handlers"
	"github.com/kamtechie/zenji/internal/api/middleware"
	"github.com/kamtechie/zenji/internal/config"
	"github.com/kamtechie/zenji/internal/observability"
	"github.com/kamtechie/zenji/internal/version"
)

const (
	readTimeout  = 15 * time.Second
	writeTimeout = 90 * time.Second
	idleTimeout  = 60 * time.Second
)

// App holds all server dependencies and coordinates startup and shutdown.
type App struct {
	cfg            *config.Config
	components     *Components
	server         *http.Server
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	logger         *slog.Logger
}

// routes are the handlers mounted on the server.
type routes struct {
	ui          *handlers.UIHandler
	health      *handlers.HealthHandler
	chat        *handlers.ChatHandler
	metrics     http.Handler
	apiMetrics  observability.APIMetrics
	chatMetrics observability.ChatMetrics
}

// NewApp builds and wires all components. It does not start the HTTP server; call Run to start
// and block until shutdown or failure.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		meterProvider  *sdkmetric.MeterProvider
		metricsHandler http.Handler
		chatMetrics    observability.ChatMetrics
		cacheMetrics   observability.CacheMetrics
		apiMetrics     observability.APIMetrics
		err            error
	)

	if cfg.MetricsEnabled {
		meterProvider, metricsHandler, chatMetrics, err = observability.NewMeterProvider(ctx, observability.MeterProviderConfig{})
		if err != nil {
			return nil, fmt.Errorf("create meter provider: %w", err)
		}

		meter := meterProvider.Meter(observability.MeterScope)

		if cacheMetrics, err = observability.NewCacheMetrics(meter); err != nil {
			shutdownObservability(ctx, nil, meterProvider, logger)

			return nil, fmt.Errorf("create cache metrics: %w", err)
		}

		if apiMetrics, err = observability.NewAPIMetrics(meter); err != nil {
			shutdownObservability(ctx, nil, meterProvider, logger)

			return nil, fmt.Errorf("create api metrics: %w", err)
		}

		otel.SetMeterProvider(meterProvider)
	} else {
		logger.Warn("metrics not enabled (METRICS_ENABLED false or unset)")
	}

	tracerProvider, err := observability.NewTracerProvider(ctx, cfg.OtelTracesExporter)
	if err != nil {
		shutdownObservability(ctx, nil, meterProvider, logger)

		return nil, fmt.Errorf("create tracer provider: %w", err)
	}

	if tracerProvider != nil {
		otel.SetTracerProvider(tracerProvider)
	} else {
		logger.Warn("tracing not enabled (OTEL_TRACES_EXPORTER empty or unknown)")
	}

	components, err := NewComponents(ctx, cfg, ComponentsParams{
		Metrics:      chatMetrics,
		CacheMetrics: cacheMetrics,
		Logger:       logger,
	})
	if err != nil {
		shutdownObservability(ctx, tracerProvider, meterProvider, logger)

		return nil, err
	}

	server := newHTTPServer(cfg, routes{
		ui:          handlers.NewUIHandler(),
		health:      handlers.NewHealthHandler(components.Pool),
		chat:        handlers.NewChatHandler(components.Conversation, logger),
		metrics:     metricsHandler,
		apiMetrics:  apiMetrics,
		chatMetrics: chatMetrics,
	}, logger, meterProvider, tracerProvider)

	return &App{
		cfg:            cfg,
		components:     components,
		server:         server,
		meterProvider:  meterProvider,
		tracerProvider: tracerProvider,
		logger:         logger,
	}, nil
}

// newRouter mounts the chat routes on a chi router. The chat API is rate limited; the page,
// health check and metrics are not.
func newRouter(cfg *config.Config, rt routes) http.Handler {
	r := chi.NewRouter()

	r.Get("/", rt.ui.Index)
	r.Get("/health", rt.health.Check)

	if rt.metrics != nil {
		r.Handle("/metrics", rt.metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.ChatRateLimit, cfg.ChatRateBurst, rt.apiMetrics))

		humaConfig := huma.DefaultConfig("Zenji API", version.Version)
		humaConfig.Info.Description = "Conversational flower-remedy advice grounded in retrieved remedy excerpts."

		api := humachi.New(r, humaConfig)
		rt.chat.Register(api)
	})

	return r
}

// newHTTPServer builds the HTTP server.
// Handler chain: RequestID -> Metrics -> otelhttp(Logging(MaxBody(router))) so access logs get trace_id/span_id from context.
func newHTTPServer(
	cfg *config.Config,
	rt routes,
	logger *slog.Logger,
	meterProvider *sdkmetric.MeterProvider,
	tracerProvider *sdktrace.TracerProvider,
) *http.Server {
	otelOpts := []otelhttp.Option{
		// Skip tracing and HTTP metrics for health checks and scrapes to reduce noise.
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health" && r.URL.Path != "/metrics"
		}),
	}
	if meterProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithMeterProvider(meterProvider))
	}

	if tracerProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(tracerProvider))
	}

	inner := middleware.MaxBody(cfg.MaxRequestBodyBytes, rt.apiMetrics)(newRouter(cfg, rt))
	inner = middleware.Logging(logger)(inner)
	handler := otelhttp.NewHandler(inner, "zenji-api", otelOpts...)
	handler = middleware.Metrics(rt.chatMetrics)(handler)
	handler = middleware.RequestID(handler)

	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}

// Run starts the HTTP server, then blocks until ctx is cancelled (e.g. signal) or the server
// fails. Caller should then call Shutdown.
func (a *App) Run(ctx context.Context) error {
	runErr := make(chan error, 1)

	go func() {
		a.logger.Info("Starting server", "port", a.cfg.Port)

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr <- fmt.Errorf("server: %w", err)
		}
	}()

	select {
	case err := <-runErr:
		return err
	case <-ctx.Done():
		return nil
	}
}

// Shutdown stops the server, then closes the pool and flushes telemetry.
func (a *App) Shutdown(ctx context.Context) error {
	defer shutdownObservability(ctx, a.tracerProvider, a.meterProvider, a.logger)
	defer a.components.Close()

	if err := a.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}

// shutdownObservability shuts down tracer and meter providers, logging failures.
func shutdownObservability(ctx context.Context, tracer *sdktrace.TracerProvider, meter *sdkmetric.MeterProvider, logger *slog.Logger) {
	if err := observability.ShutdownTracerProvider(ctx, tracer); err != nil {
		logger.Error("shutdown tracer provider", "error", err)
	}

	if err := observability.ShutdownMeterProvider(ctx, meter); err != nil {
		logger.Error("shutdown meter provider", "error", err)
	}
}
