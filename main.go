package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"heliroute/internal/api"
	"heliroute/internal/config"
	"heliroute/internal/database"
	"heliroute/internal/health"
	"heliroute/internal/lookup"
	"heliroute/internal/performance"
	"heliroute/internal/route"
	"heliroute/internal/webhook"
	"heliroute/internal/wind"
)

func main() {
	configFile := flag.String("config", "config.json", "Path to config file")
	httpAddr := flag.String("http-addr", "", "HTTP listen address")
	noDatabase := flag.Bool("no-db", false, "Run without database connection")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	testWebhook := flag.Bool("test-webhook", false, "Send a test webhook and exit")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("[MAIN] Failed to load config: %v", err)
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	logger, closeLog := setupLogging(cfg.Log)
	defer closeLog()

	logger.Info("starting heliroute", "node", cfg.NodeName)

	var db *database.DB
	var repo *database.Repository

	if !*noDatabase && cfg.Database.Host != "" {
		dbCfg := database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		}

		db, err = database.Connect(dbCfg)
		if err != nil {
			log.Printf("[MAIN] Database connection failed: %v (running without persistence)", err)
		} else {
			if err := db.Migrate(); err != nil {
				log.Printf("[MAIN] Database migration failed: %v", err)
			}
			repo = database.NewRepository(db)
		}
	} else {
		log.Printf("[MAIN] Running without database")
	}

	// repo is passed only when set so the registry never holds a typed nil.
	var registry *lookup.Registry
	if repo != nil {
		registry = lookup.NewRegistry(repo, cfg.RegistrationCacheSize, cfg.RegistrationCacheTTL)
	} else {
		registry = lookup.NewRegistry(nil, cfg.RegistrationCacheSize, cfg.RegistrationCacheTTL)
	}

	catalog := performance.NewCatalog(registry)
	if err := catalog.LoadFile(cfg.CatalogFile); err != nil {
		log.Printf("[MAIN] Catalog file %s ignored: %v", cfg.CatalogFile, err)
	}
	if repo != nil {
		loadStoredCatalog(catalog, repo)
	}

	logger.Info("configuration loaded",
		"http_addr", cfg.HTTPAddr,
		"aircraft_types", len(catalog.Types()),
		"database", repo != nil,
	)

	engine := route.NewEngine(route.EngineOptions{
		Profiles: catalog,
		Wind:     wind.Triangle{},
		Logger:   logger,
	})

	server := api.NewServer(engine, catalog, api.Defaults{
		PayloadWeightLbs: cfg.DefaultPayloadLbs,
		ReserveFuelLbs:   cfg.DefaultReserveFuelLbs,
	})
	server.SetRegistry(registry)
	server.SetNodeName(cfg.NodeName)
	readiness := health.NewReadiness()
	server.SetReadiness(readiness)

	var dispatcher *webhook.Dispatcher
	if cfg.Webhooks.DiscordURL != "" {
		dispatcher = webhook.NewDispatcher(cfg.Webhooks, cfg.NodeName)
		logger.Info("webhooks enabled", "provider", "discord")
	}

	if *testWebhook {
		if dispatcher == nil {
			log.Fatalf("[MAIN] No webhook URL configured")
		}
		if err := dispatcher.SendTestWebhook(); err != nil {
			log.Fatalf("[MAIN] Test webhook failed: %v", err)
		}
		log.Printf("[MAIN] Test webhook sent")
		if db != nil {
			db.Close()
		}
		return
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, groupCtx := errgroup.WithContext(ctx)

	runComponent := func(name string, fn func(context.Context) error) {
		readiness.MarkNotReady(name, "starting")
		g.Go(func() error {
			readiness.MarkReady(name)
			logger.Info("component running", "component", name)
			defer readiness.MarkNotReady(name, "stopped")
			if err := fn(groupCtx); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				logger.Error("component exited", "component", name, "error", err)
				return err
			}
			logger.Info("component exited", "component", name)
			return nil
		})
	}

	if dispatcher != nil {
		updates := engine.Store().Subscribe()
		runComponent("webhooks", func(ctx context.Context) error {
			defer engine.Store().Unsubscribe(updates)
			dispatcher.Run(ctx, updates)
			return ctx.Err()
		})
	}

	runComponent("ws_hub", func(ctx context.Context) error {
		server.Hub().Run(ctx)
		return ctx.Err()
	})

	runComponent("http_server", func(ctx context.Context) error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- httpServer.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
				return err
			}
			if err := <-errCh; err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		case err := <-errCh:
			if err == http.ErrServerClosed {
				return nil
			}
			return err
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("service error", "error", err)
	}

	if db != nil {
		db.Close()
	}

	logger.Info("shutdown complete")
}

// setupLogging installs a slog text handler as the default logger and routes
// the standard library logger through it.
func setupLogging(cfg config.LogConfig) (*slog.Logger, func()) {
	var out io.Writer = os.Stdout
	closeFn := func() {}

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: 3,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotator)
		closeFn = func() { rotator.Close() }
	}

	logHandler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: parseLevel(cfg.Level)})
	logger := slog.New(logHandler)
	slog.SetDefault(logger)
	stdLogger := slog.NewLogLogger(logHandler, slog.LevelInfo)
	log.SetOutput(stdLogger.Writer())
	log.SetFlags(0)

	return logger, closeFn
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadStoredCatalog overlays database entries on the catalog. An empty table
// is seeded from the built-in types so operators have rows to edit.
func loadStoredCatalog(catalog *performance.Catalog, repo *database.Repository) {
	stored, err := repo.LoadPerformance()
	if err != nil {
		log.Printf("[MAIN] Failed to load aircraft performance: %v", err)
		return
	}

	if len(stored) == 0 {
		for _, d := range catalog.Types() {
			if err := repo.SavePerformance(d); err != nil {
				log.Printf("[MAIN] Failed to seed %s: %v", d.Type, err)
			}
		}
		log.Printf("[MAIN] Seeded aircraft_performance with %d types", len(catalog.Types()))
		return
	}

	for _, d := range stored {
		catalog.Add(d)
	}
	log.Printf("[MAIN] Loaded %d aircraft types from database", len(stored))
}
