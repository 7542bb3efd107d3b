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
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/apiclient"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/assets"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/config"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/crud"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/database"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/event"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/handler"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/logger"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/metrics"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/middleware"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/resource"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/router"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/session"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/telemetry"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/view"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/websocket"
)

const (
	serviceName   = "sitedesk"
	sweepInterval = 10 * time.Minute
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	a := &App{}
	ok := false
	defer func() {
		if !ok {
			a.cleanup()
		}
	}()

	shutdownTracing := telemetry.Setup(context.Background(), serviceName, log)
	a.onShutdown(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	})

	m := metrics.New()

	store, checks, err := a.openSessionStore(cfg, log)
	if err != nil {
		return nil, err
	}

	client := apiclient.New(apiclient.Options{
		BaseURL:     cfg.APIBaseURL,
		RefreshPath: cfg.APIRefreshPath,
		Timeout:     cfg.APITimeout,
		Store:       store,
		Metrics:     m,
		Logger:      log,
	})
	catalogue := resource.NewCatalogue(client)
	log.Info("backend configured", "base_url", client.BaseURL())

	manifest, err := assets.LoadManifest(cfg.AssetManifest)
	if err != nil {
		return nil, err
	}
	source, err := assets.NewDirSource(cfg.StaticDir, nil, cfg.AssetFetchTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize asset source: %w", err)
	}
	loader := assets.NewLoader(manifest, source, log, m)

	views, err := view.New()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	loader.Start(ctx)
	a.onShutdown(func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := loader.Close(closeCtx); err != nil {
			log.Warn("asset fetches still running at shutdown", "error", err)
		}
	})
	a.onShutdown(cancel)

	bus := event.NewBus(log)
	hub := websocket.NewHub(bus, log, m)
	go hub.Run(ctx)

	states := crud.NewStates()
	go sweep(ctx, states, store, cfg.SessionTTL, log)

	site := handler.NewSite(handler.SiteOptions{
		Views:  views,
		Store:  store,
		States: states,
		Cookie: handler.CookieConfig{
			Name:   cfg.SessionCookie,
			Secure: cfg.CookieSecure,
			TTL:    cfg.SessionTTL,
		},
		MaxUpload: cfg.MaxUploadSize,
		Logger:    log,
	})

	checks["assets"] = func(context.Context) error {
		if !loader.Ready() {
			return errors.New("stylesheets still loading")
		}
		return nil
	}

	appRouter := router.New(cfg, middleware.NewSessionMiddleware(store, cfg.SessionCookie, log), router.Handlers{
		Site:         site,
		Public:       handler.NewPublicHandler(site, catalogue, loader),
		Auth:         handler.NewAuthHandler(site, client),
		Dashboard:    handler.NewDashboardHandler(site, catalogue),
		Admin:        handler.NewAdminHandler(site, catalogue, bus),
		Notification: handler.NewNotificationHandler(catalogue, bus, hub, cfg.CORSOrigins, log),
		Health:       handler.NewHealthHandler(checks),
	}, m, log)

	a.server = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           otelhttp.NewHandler(appRouter, serviceName),
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	ok = true
	return a, nil
}

// openSessionStore connects the configured store and returns its health checks.
func (a *App) openSessionStore(cfg *config.Config, log *slog.Logger) (session.Store, map[string]handler.Check, error) {
	checks := map[string]handler.Check{}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		log.Info("connecting to Redis", "addr", cfg.RedisAddr)
		store, err := session.NewRedisStore(ctx, session.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.SessionTTL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.onShutdown(func() { _ = store.Close() })
		checks["session_store"] = func(ctx context.Context) error { return store.Client.Ping(ctx).Err() }
		return store, checks, nil

	case config.SessionStorePostgres:
		log.Info("connecting to PostgreSQL")
		db, err := database.New(ctx, database.Options{
			URL:      cfg.DatabaseURL,
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.onShutdown(db.Close)

		if err := db.EnsureSchema(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to ensure database schema: %w", err)
		}
		log.Info("database ready")
		checks["session_store"] = db.Health
		return session.NewPostgresStore(db, cfg.SessionTTL), checks, nil

	default:
		log.Warn("sessions are kept in memory and are lost on restart")
		return session.NewMemoryStore(cfg.SessionTTL), checks, nil
	}
}

// sweep periodically forgets idle page state and, for Postgres, expired sessions.
func sweep(ctx context.Context, states *crud.States, store session.Store, idle time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	purger, _ := store.(*session.PostgresStore)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := states.Sweep(idle); n > 0 {
				log.Debug("swept idle page state", "removed", n)
			}
			if purger != nil {
				n, err := purger.PurgeExpired(ctx)
				if err != nil {
					log.Warn("purge expired sessions failed", "error", err)
				} else if n > 0 {
					log.Info("purged expired sessions", "removed", n)
				}
			}
		}
	}
}

func (a *App) onShutdown(fn func()) {
	a.cleanupFuncs = append(a.cleanupFuncs, fn)
}

// cleanup runs shutdown hooks in reverse order of registration.
func (a *App) cleanup() {
	for i := len(a.cleanupFuncs) - 1; i >= 0; i-- {
		a.cleanupFuncs[i]()
	}
	a.cleanupFuncs = nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := a.server.Shutdown(ctx)
	a.cleanup()
	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
