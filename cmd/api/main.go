package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"catalog-search/internal/cache"
	"catalog-search/internal/config"
	"catalog-search/internal/database"
	"catalog-search/internal/handlers"
	"catalog-search/internal/logger"
	"catalog-search/internal/metrics"
	"catalog-search/internal/repository"
	"catalog-search/internal/routes"
	"catalog-search/internal/search"
	"catalog-search/internal/storage"
)

const serviceName = "catalog-search"

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	bootLogger := logger.New(serviceName, "info")

	cfg, err := config.LoadConfig(bootLogger)
	if err != nil {
		return err
	}
	log := logger.New(serviceName, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	uploader, err := storage.NewUploader(cfg.UploadDir, cfg.UploadMaxBytes)
	if err != nil {
		return err
	}

	readCache := cache.New(cfg.CacheTTL)
	go readCache.Run(ctx, cfg.CacheTTL)

	m := metrics.New(serviceName)
	engine := search.New(store, log, search.WithRejectEmpty(cfg.SearchRejectEmpty))

	router, err := routes.NewRouter(routes.Deps{
		Products:           handlers.NewProductHandler(store, readCache, uploader, log),
		Search:             handlers.NewSearchHandler(engine, cfg.SearchMode, m, log),
		Health:             handlers.NewHealthHandler(store, log),
		Metrics:            m,
		Logger:             log,
		UploadDir:          uploader.Dir(),
		MaxMultipartMemory: cfg.UploadMaxBytes,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			slog.String("addr", srv.Addr),
			slog.String("store", cfg.StoreBackend),
			slog.String("search_mode", cfg.SearchMode),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore devuelve el store configurado y una función para cerrarlo
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (repository.ProductStore, func(), error) {
	if cfg.StoreBackend == config.StoreMemory {
		log.Warn("using in-memory product store, data is not persisted")
		return repository.NewMemoryStore(), func() {}, nil
	}

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}
	log.Info("connected to mongo", slog.String("db", cfg.MongoDB))

	repo := repository.NewProductRepository(client.Database(cfg.MongoDB).Collection(cfg.MongoCollection))
	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	closeFn := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Error("mongo disconnect failed", slog.String("error", err.Error()))
		}
	}
	return repo, closeFn, nil
}
