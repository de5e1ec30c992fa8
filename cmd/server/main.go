package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aarambhveda/counselor/internal/ai/elevenlabs"
	"github.com/aarambhveda/counselor/internal/api"
	"github.com/aarambhveda/counselor/internal/catalog"
	"github.com/aarambhveda/counselor/internal/config"
	"github.com/aarambhveda/counselor/internal/storage/sqlite"
	"github.com/aarambhveda/counselor/pkg/logger"
	"golang.org/x/sync/errgroup"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flag.Parse()

	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting Aarambh Veda counselor server",
		logger.String("version", Version),
		logger.String("config_path", *configPath),
	)

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped with error", logger.Error(err))
		log.Sync()
		os.Exit(1)
	}
	log.Info("Server fully stopped")
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Storage.SQLitePath, log)
	if err != nil {
		return err
	}
	defer db.Close()

	catalogStorage, err := sqlite.NewCatalogStorage(db, log)
	if err != nil {
		return fmt.Errorf("failed to create catalog storage: %w", err)
	}
	issuanceStorage, err := sqlite.NewTokenIssuanceStorage(db, log)
	if err != nil {
		return fmt.Errorf("failed to create token issuance storage: %w", err)
	}

	catalogService, err := loadCatalog(ctx, cfg, catalogStorage, log)
	if err != nil {
		return err
	}

	signer := elevenlabs.NewClient(
		cfg.ElevenLabs.APIKey,
		cfg.ElevenLabs.AgentID,
		cfg.ElevenLabs.APIBaseURL,
		time.Duration(cfg.ElevenLabs.RequestTimeoutSeconds)*time.Second,
		log,
	)

	router := api.NewRouter(catalogService, signer, issuanceStorage, cfg, log)
	handler := router.Routes()

	allPorts := []int{cfg.Server.Port}
	allPorts = append(allPorts, cfg.Server.AdditionalPorts...)
	log.Info("Configured listener ports", logger.Any("ports", allPorts))

	servers := make([]*http.Server, 0, len(allPorts))
	for _, port := range allPorts {
		servers = append(servers, &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, port),
			Handler:      handler, // all listeners share one router
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
			IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			log.Info("Starting HTTP server", logger.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server on %s: %w", srv.Addr, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down HTTP servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var sg errgroup.Group
		for _, srv := range servers {
			sg.Go(func() error {
				if err := srv.Shutdown(shutdownCtx); err != nil {
					log.Error("HTTP server shutdown error", logger.String("addr", srv.Addr), logger.Error(err))
					return err
				}
				log.Info("HTTP server shutdown complete", logger.String("addr", srv.Addr))
				return nil
			})
		}
		return sg.Wait()
	})

	return g.Wait()
}

// loadCatalog seeds the database on first start and loads the catalog from it
func loadCatalog(ctx context.Context, cfg *config.Config, store *sqlite.CatalogStorage, log *logger.Logger) (*catalog.Service, error) {
	if cfg.Catalog.SeedOnStart {
		seeded, err := store.SeedIfEmpty(ctx, catalog.DefaultColleges(), catalog.DefaultCourseCategories(), catalog.DefaultExams())
		if err != nil {
			return nil, fmt.Errorf("failed to seed catalog: %w", err)
		}
		if seeded {
			log.Info("Seeded empty catalog with built-in data")
		}
	}

	colleges, categories, exams, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if len(colleges) == 0 {
		log.Warn("Catalog database is empty; serving the built-in catalog")
		colleges, categories, exams = catalog.DefaultColleges(), catalog.DefaultCourseCategories(), catalog.DefaultExams()
	}

	return catalog.NewService(colleges, categories, exams, cfg.Catalog.CompareLimit, log), nil
}
