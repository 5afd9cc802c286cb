package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	adapterhandler "docs-portal/internal/adapter/handler"
	"docs-portal/internal/adapter/gateway"
	infracache "docs-portal/internal/infrastructure/cache"
	"docs-portal/internal/infrastructure/identity"
	infratoken "docs-portal/internal/infrastructure/token"
	"docs-portal/internal/usecase"

	"docs-portal/config"
	appmiddleware "docs-portal/middleware"
	"docs-portal/utils/logger"
	"docs-portal/utils/otel"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/sync/errgroup"
)

const (
	streamHeartbeat = 15 * time.Second
	sessionRefresh  = time.Minute
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	// Initialize OpenTelemetry
	otelCfg := otel.ConfigFromEnv()
	otelShutdown, err := otel.InitProvider(ctx, otelCfg)
	if err != nil {
		slog.Warn("failed to initialize OpenTelemetry, continuing without tracing", "error", err)
		otelCfg.Enabled = false
		otelShutdown = func(context.Context) error { return nil }
	}

	// Initialize structured logger
	appLogger := logger.Init(otelCfg.Enabled)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load configuration", "error", err)
		return err
	}

	slog.InfoContext(ctx, "configuration loaded",
		"identity_endpoint", gateway.BaseURL(cfg.Identity),
		"port", cfg.Port,
		"identity_call_timeout", cfg.IdentityCallTimeout,
		"browser_session_ttl", cfg.BrowserSessionTTL)

	siteCfg, library, err := loadSite(cfg.Content)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load site content", "error", err)
		return err
	}
	slog.InfoContext(ctx, "site content loaded", "title", siteCfg.Title, "docs", library.Len())

	// Infrastructure
	kratosGateway := gateway.NewKratosGateway(cfg.Identity, cfg.IdentityCallTimeout)
	identities := identity.NewFactory(kratosGateway, cfg.IdentityCallTimeout, appLogger)
	browsers := infracache.NewBrowserCache[*usecase.Browser](cfg.BrowserSessionMax, cfg.BrowserSessionTTL)
	defer browsers.Purge()

	browserTokens, err := infratoken.NewBrowserTokenIssuer(infratoken.BrowserConfig{
		Secret: cfg.BrowserTokenSecret,
		Issuer: "docs-portal",
		TTL:    cfg.BrowserSessionTTL,
	})
	if err != nil {
		return err
	}
	csrfGenerator := infratoken.NewHMACCSRFGenerator(cfg.CSRFSecret)

	// Usecases
	resolveUC := usecase.NewResolveBrowser(browsers, identities, appLogger)
	csrfUC := usecase.NewGenerateCSRF(csrfGenerator, appLogger)
	verifyUC := usecase.NewVerifyCSRF(csrfGenerator, appLogger)

	// Handlers
	renderer, err := adapterhandler.NewRenderer()
	if err != nil {
		return err
	}
	layout := adapterhandler.NewLayout(siteCfg, csrfUC, appLogger)

	// Rate limiters per endpoint group
	formRL := appmiddleware.NewRateLimiter(10.0/60.0, 5).KeyedBy(browserKey) // 10 req/min per browser
	internalRL := appmiddleware.NewRateLimiter(30.0/60.0, 5)                 // 30 req/min
	defer formRL.Stop()
	defer internalRL.Stop()

	internalGuard := []echo.MiddlewareFunc{internalRL.Middleware()}
	if cfg.MetricsSharedSecret != "" {
		internalGuard = append(internalGuard, appmiddleware.InternalAuth(cfg.MetricsSharedSecret))
	}

	routes := &adapterhandler.Routes{
		BrowserSession: adapterhandler.NewBrowserSession(browserTokens, resolveUC, cfg.BrowserSessionTTL, cfg.CookieSecure, appLogger),
		CSRF:           adapterhandler.NewCSRFHandler(csrfUC, verifyUC),
		Login:          adapterhandler.NewLoginHandler(layout),
		Register:       adapterhandler.NewRegisterHandler(layout),
		Status:         adapterhandler.NewStatusHandler(layout, renderer, streamHeartbeat, sessionRefresh, appLogger),
		Session:        adapterhandler.NewSessionHandler(layout),
		Docs:           adapterhandler.NewDocsHandler(layout, library, renderer),
		Health:         adapterhandler.NewHealthHandler(library),
		Internal:       adapterhandler.NewInternalHandler(browsers),
		FormLimit:      formRL.Middleware(),
		InternalGuard:  internalGuard,
	}

	// Setup Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	// Security middleware
	e.Use(appmiddleware.SecurityHeaders())

	// OpenTelemetry tracing
	if otelCfg.Enabled {
		e.Use(otelecho.Middleware(otelCfg.ServiceName))
		e.Use(appmiddleware.OTelStatusMiddleware())
	}

	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			c.SetRequest(c.Request().WithContext(logger.WithRequestID(c.Request().Context(), rid)))
			return next(c)
		}
	})

	// Request logging
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			rctx := c.Request().Context()
			if v.Error == nil {
				logger.FromContext(rctx).InfoContext(rctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				logger.FromContext(rctx).ErrorContext(rctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))

	e.Use(middleware.Recover())

	routes.Mount(e)

	// Start server with errgroup for graceful shutdown
	address := fmt.Sprintf(":%s", cfg.Port)
	slog.InfoContext(ctx, "starting docs-portal server", "address", address)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return otelShutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("shutdown error", "error", err)
		return err
	}

	slog.Info("server exited properly")
	return nil
}

// browserKey rate-limits form posts per browser rather than per IP.
func browserKey(c echo.Context) string {
	if b := adapterhandler.BrowserFrom(c); b != nil {
		return b.ID
	}
	return ""
}
