package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zhouzirui/z-fairytale/backend/internal/config"
	"github.com/zhouzirui/z-fairytale/backend/internal/handler"
	"github.com/zhouzirui/z-fairytale/backend/internal/logger"
	"github.com/zhouzirui/z-fairytale/backend/internal/model/book"
	"github.com/zhouzirui/z-fairytale/backend/internal/service/keboola"
	storyservice "github.com/zhouzirui/z-fairytale/backend/internal/service/story"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	boot, err := logger.New(config.LogConfig{})
	if err != nil {
		boot = zap.NewExample()
	}

	cfg, err := config.Load()
	if err != nil {
		boot.Fatal("failed to load configuration", zap.Error(err))
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		boot.Fatal("failed to build logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if envErr != nil {
		log.Warn("failed to load .env file, continuing with system environment variables only", zap.Error(envErr))
	}

	books, err := book.LoadCSV(cfg.Story.BooksPath)
	if err != nil {
		log.Fatal("failed to load books", zap.String("path", cfg.Story.BooksPath), zap.Error(err))
	}
	log.Info("books loaded", zap.Int("count", len(books)))

	// Storage failures disable remote operations but keep the forms usable.
	var (
		store  storyservice.TableStore
		pinger handler.Pinger
		opts   = []storyservice.Option{storyservice.WithLogger(log.Named("story"))}
	)
	if !cfg.Storage.Enabled() {
		log.Warn("KBC_URL or KBC_TOKEN not set, remote storage operations are disabled")
	}
	client, err := keboola.NewClient(keboola.Config{
		URL:          cfg.Storage.URL,
		Token:        cfg.Storage.Token,
		Timeout:      cfg.Storage.Timeout,
		PollInterval: cfg.Storage.PollInterval,
	}, keboola.WithLogger(log.Named("keboola")))
	if err != nil {
		log.Error("failed to initialize keboola connection", zap.Error(err))
		opts = append(opts, storyservice.WithConnectionError(err))
	} else {
		store, pinger = client, client
		log.Info("keboola client initialized", zap.String("url", cfg.Storage.URL))
	}

	storySvc := storyservice.NewService(store, book.NewIndex(books), storyservice.Config{
		InputTable:        cfg.Story.InputTable,
		OutputTable:       cfg.Story.OutputTable,
		LatestByTimestamp: cfg.Story.LatestByTimestamp,
	}, opts...)

	log.Info("story service ready",
		zap.Bool("storage_available", storySvc.Available()),
		zap.String("input_table", cfg.Story.InputTable),
		zap.String("output_table", cfg.Story.OutputTable),
	)

	router := handler.NewRouter(book.NewMemoryStore(books), storySvc, pinger, log.Named("http"))

	startServer(ctx, log, cfg.Server, router)
}

func startServer(ctx context.Context, log *zap.Logger, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info("fairytale forms listening", zap.String("addr", addr))
	if err := runServer(ctx, srv); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
