package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	app "github.com/kode4food/nebula"
	"github.com/kode4food/nebula/internal/archive"
	"github.com/kode4food/nebula/internal/aurora"
	"github.com/kode4food/nebula/internal/catalog"
	"github.com/kode4food/nebula/internal/config"
	"github.com/kode4food/nebula/internal/engine"
	"github.com/kode4food/nebula/internal/events"
	"github.com/kode4food/nebula/internal/server"
	"github.com/kode4food/nebula/internal/store"
	"github.com/kode4food/nebula/internal/tools"
	"github.com/kode4food/nebula/pkg/log"
)

type nebula struct {
	cfg        *config.Config
	observers  []engine.Observer
	closers    []io.Closer
	archive    *archive.BlobArchiver
	engine     *engine.Engine
	apiServer  *server.Server
	httpServer *http.Server
	quit       chan os.Signal
}

var (
	ErrCreatePublisher = errors.New("failed to create event publisher")
	ErrCreateArchiver  = errors.New("failed to create run archiver")
	ErrLoadCatalog     = errors.New("failed to load catalog")
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("Invalid .env file", log.Error(err))
		os.Exit(1)
	}

	cfg := config.NewDefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}

	s := &nebula{
		cfg:  cfg,
		quit: make(chan os.Signal, 1),
	}
	s.setupLogging()

	if err := s.run(); err != nil {
		slog.Error("Failed to start application", log.Error(err))
		os.Exit(1)
	}
}

func (s *nebula) run() error {
	if err := s.initialize(context.Background()); err != nil {
		s.closeObservers()
		return err
	}
	s.startServer()

	signal.Notify(s.quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(s.quit)
	<-s.quit

	s.shutdown()
	return nil
}

func (s *nebula) initialize(ctx context.Context) error {
	if err := s.initializeObservers(ctx); err != nil {
		return err
	}
	s.initializeEngine()
	return s.loadContent()
}

func (s *nebula) setupLogging() {
	level := log.ParseLevel(s.cfg.LogLevel)

	env := os.Getenv("ENV")
	logger := log.NewWithLevel(app.Name, env, app.Version, level)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level)

	slog.Info("Nebula Engine starting",
		slog.String("log_level", s.cfg.LogLevel))

	slog.Info("Configuration loaded",
		slog.String("events_redis_addr", s.cfg.Events.Addr),
		slog.Int("events_redis_db", s.cfg.Events.DB),
		slog.String("events_stream", s.cfg.Events.Stream),
		slog.String("archive_bucket_url", s.cfg.Archive.BucketURL),
		slog.String("catalog_path", s.cfg.CatalogPath),
		slog.Bool("aurora_enabled", s.cfg.AuroraEnable),
		slog.String("api_host", s.cfg.APIHost),
		slog.Int("api_port", s.cfg.APIPort))
}

func (s *nebula) initializeObservers(ctx context.Context) error {
	if s.cfg.Events.Enabled() {
		pub, err := events.NewPublisher(ctx, s.cfg.Events)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCreatePublisher, err)
		}
		s.addObserver(pub, pub)
	}

	if s.cfg.Archive.Enabled() {
		arc, err := archive.NewBlobArchiver(
			ctx, s.cfg.Archive.BucketURL, s.cfg.Archive.Prefix,
		)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCreateArchiver, err)
		}
		s.archive = arc
		s.addObserver(arc, arc)
	}
	return nil
}

func (s *nebula) addObserver(o engine.Observer, c io.Closer) {
	s.observers = append(s.observers, o)
	s.closers = append(s.closers, c)
}

func (s *nebula) initializeEngine() {
	s.engine = engine.New(store.New(), tools.NewRegistry(), s.observers...)
	s.apiServer = server.NewServer(s.engine)
	if s.archive != nil {
		s.apiServer.WithArchive(s.archive)
	}
}

func (s *nebula) loadContent() error {
	if s.cfg.AuroraEnable {
		id := aurora.CreateGraph(s.engine)
		s.apiServer.WithAurora(id)
		slog.Info("AuroraText graph ready", log.GraphID(id))
	}

	if s.cfg.CatalogPath == "" {
		return nil
	}

	c, err := catalog.Load(s.cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadCatalog, err)
	}
	graphs, err := c.Apply(s.engine)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadCatalog, err)
	}
	for name, id := range graphs {
		slog.Info("Catalog graph ready",
			slog.String("name", name),
			log.GraphID(id))
	}
	return nil
}

func (s *nebula) startServer() {
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.APIHost, s.cfg.APIPort),
		Handler: s.apiServer.SetupRoutes(),
	}

	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", s.httpServer.Addr))
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", log.Error(err))
		}
	}()
}

func (s *nebula) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), s.cfg.ShutdownTimeout,
	)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", log.Error(err))
	}

	s.closeObservers()
	slog.Info("Server exited")
}

func (s *nebula) closeObservers() {
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			slog.Error("Observer close failed", log.Error(err))
		}
	}
	s.closers = nil
}
