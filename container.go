package mirrorhub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	prometheusSDK "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"golang.org/x/sync/errgroup"

	"github.com/go-arrower/mirrorhub/alog"
	"github.com/go-arrower/mirrorhub/mw"
	"github.com/go-arrower/mirrorhub/postgres"
)

var ErrMissingDependency = errors.New("missing dependency")

// Container holds global dependencies that can be used within each Context, to make initialisation easier.
type Container struct {
	Logger        *slog.Logger
	MeterProvider *metric.MeterProvider
	TraceProvider *trace.TracerProvider

	Config *Config
	// PG is nil, if the memory storage is used.
	PG *postgres.Handler

	WebRouter *echo.Echo

	registry        *prometheusSDK.Registry
	metricsEndpoint *http.Server
	startedAt       time.Time

	mu           sync.Mutex
	shutdowns    []func(context.Context) error
	shutdownOnce sync.Once
	shutdownErr  error
}

func (c *Container) EnsureAllDependenciesPresent() error {
	if c.Config == nil {
		return fmt.Errorf("%w: global config not found", ErrMissingDependency)
	}

	if c.Logger == nil || c.WebRouter == nil || c.TraceProvider == nil || c.MeterProvider == nil {
		return fmt.Errorf("%w: container not initialised", ErrMissingDependency)
	}

	if c.Config.Storage.Driver == PostgresStorage && c.PG == nil {
		return fmt.Errorf("%w: postgres storage without connection", ErrMissingDependency)
	}

	return nil
}

// PGx returns the connection pool or nil, if the memory storage is used.
func (c *Container) PGx() *pgxpool.Pool {
	if c.PG == nil {
		return nil
	}

	return c.PG.PGx
}

// OnShutdown registers f to be called by Shutdown, in reverse order of registration.
func (c *Container) OnShutdown(f func(context.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.shutdowns = append(c.shutdowns, f)
}

//nolint:funlen // dependency injection is long but also straight forward.
func InitialiseDefaultDependencies(ctx context.Context, conf *Config) (*Container, error) {
	if conf == nil {
		return nil, fmt.Errorf("%w: global config not found", ErrMissingDependency)
	}

	dc := &Container{
		Config:    conf,
		registry:  prometheusSDK.NewRegistry(),
		startedAt: time.Now(),
	}

	{ // observability
		resource := resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(conf.ApplicationName),
			attribute.String("instance_name", conf.InstanceName),
			attribute.String("environment", string(conf.Environment)),
		)

		{ // traces
			opts := []trace.TracerProviderOption{trace.WithResource(resource)}

			if conf.OTEL.Host != "" {
				traceExporter, err := otlptracegrpc.New(ctx,
					otlptracegrpc.WithEndpoint(fmt.Sprintf("%s:%d", conf.OTEL.Host, conf.OTEL.Port)),
					otlptracegrpc.WithInsecure(),
				)
				if err != nil {
					return nil, fmt.Errorf("could not connect to trace exporter: %w", err)
				}

				opts = append(opts, trace.WithBatcher(traceExporter))
			}

			if conf.Environment == LocalEnv {
				opts = append(opts, trace.WithSampler(trace.AlwaysSample()))
			} else {
				// set the sampling rate based on the parent span to 60%
				opts = append(opts, trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(0.6)))) //nolint:mnd
			}

			dc.TraceProvider = trace.NewTracerProvider(opts...)
		}

		{ // metrics
			exporter, err := prometheus.New(prometheus.WithRegisterer(dc.registry))
			if err != nil {
				return nil, fmt.Errorf("could not create prometheus exporter: %w", err)
			}

			dc.MeterProvider = metric.NewMeterProvider(
				metric.WithResource(resource),
				metric.WithReader(exporter),
			)
		}
	}

	{ // logger
		var logger *slog.Logger
		if conf.Environment == LocalEnv {
			logger = alog.NewDevelopment()
		} else {
			logger = alog.New()
		}

		dc.Logger = logger.With(
			slog.String("application_name", conf.ApplicationName),
			slog.String("instance_name", conf.InstanceName),
			slog.String("git_hash", gitHash()),
			slog.String("environment", string(conf.Environment)),
		)
	}

	if conf.Storage.Driver == PostgresStorage {
		pg, err := postgres.ConnectAndMigrate(ctx, conf.Postgres.Config(), dc.TraceProvider)
		if err != nil {
			return nil, fmt.Errorf("could not connect to postgres: %w", err)
		}

		dc.PG = pg
	}

	{ // web router
		router := echo.New()
		router.HideBanner = true
		router.HidePort = true
		router.Logger.SetOutput(io.Discard)
		router.IPExtractor = echo.ExtractIPFromXFFHeader() // see: https://echo.labstack.com/docs/ip-address
		router.HTTPErrorHandler = mw.ErrorHandler(dc.Logger)

		router.Use(middleware.Recover())
		router.Use(otelecho.Middleware(conf.OTEL.Hostname, otelecho.WithTracerProvider(dc.TraceProvider)))
		router.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  conf.ApplicationName,
			Registerer: dc.registry,
		}))
		router.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TargetHeader: "Request-Id",
			RequestIDHandler: func(c echo.Context, rid string) {
				c.SetRequest(c.Request().WithContext(alog.AddAttr(
					c.Request().Context(),
					slog.String("request_id", rid)),
				))
			},
		}))
		router.Use(mw.ActingUser)
		router.Use(mw.Logged(dc.Logger))

		if conf.Environment == LocalEnv {
			router.Debug = true
		}

		dc.WebRouter = router
	}

	return dc, nil
}

// Run starts the web and the status server and blocks until ctx is cancelled or one server fails.
// Afterwards all dependencies are shut down.
func (c *Container) Run(ctx context.Context) error {
	c.Logger.LogAttrs(ctx, alog.LevelInfo, "starting all servers",
		slog.Int("port", c.Config.HTTP.Port),
		slog.Bool("status_endpoint", c.Config.HTTP.StatusEndpointEnabled),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := c.WebRouter.Start(fmt.Sprintf(":%d", c.Config.HTTP.Port))
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("could not serve http: %w", err)
		}

		return nil
	})

	if c.Config.HTTP.StatusEndpointEnabled {
		c.metricsEndpoint = &http.Server{ //nolint:exhaustruct
			Addr:              fmt.Sprintf(":%d", c.Config.HTTP.StatusEndpointPort),
			Handler:           c.StatusHandler(),
			ReadHeaderTimeout: 5 * time.Second, //nolint:mnd
		}

		g.Go(func() error {
			err := c.metricsEndpoint.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("could not serve status endpoint: %w", err)
			}

			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()

		const shutdownTimeout = 10 * time.Second

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		return c.Shutdown(shutdownCtx)
	})

	return g.Wait() //nolint:wrapcheck // errors are wrapped by the servers
}

// Shutdown stops the servers and releases all dependencies. Subsequent calls return the result of the first.
func (c *Container) Shutdown(ctx context.Context) error {
	c.shutdownOnce.Do(func() {
		c.shutdownErr = c.shutdown(ctx)
	})

	return c.shutdownErr
}

func (c *Container) shutdown(ctx context.Context) error {
	c.Logger.LogAttrs(ctx, alog.LevelInfo, "shutting down all servers")

	var errs []error

	if err := c.WebRouter.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("could not shutdown web router: %w", err))
	}

	if c.metricsEndpoint != nil {
		if err := c.metricsEndpoint.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("could not shutdown status endpoint: %w", err))
		}
	}

	c.mu.Lock()
	for i := len(c.shutdowns) - 1; i >= 0; i-- {
		if err := c.shutdowns[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	c.shutdowns = nil
	c.mu.Unlock()

	if c.PG != nil {
		if err := c.PG.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if err := c.TraceProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("could not shutdown trace provider: %w", err))
	}

	if err := c.MeterProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("could not shutdown meter provider: %w", err))
	}

	return errors.Join(errs...)
}

// StatusHandler serves the prometheus metrics at /metrics and the state of the application at /status.
func (c *Container) StatusHandler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{ //nolint:exhaustruct
		EnableOpenMetrics: true, // to enable Examplars in the export format
	}))
	mux.HandleFunc("/status", c.serveStatus)

	return mux
}

// Config returns the connection configuration including all migrations.
func (p Postgres) Config() postgres.Config {
	return postgres.Config{
		User:       p.User,
		Password:   p.Password.Secret(),
		Database:   p.Database,
		Host:       p.Host,
		Port:       p.Port,
		SSLMode:    p.SSLMode,
		MaxConns:   p.MaxConns,
		Migrations: postgres.Migrations,
	}
}

func gitHash() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}

	return "unknown"
}
