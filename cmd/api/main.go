package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"pet-companion-chat/internal/adapters/llm/deepseek"
	fs "pet-companion-chat/internal/adapters/storage/firestore"
	mem "pet-companion-chat/internal/adapters/storage/memory"
	mg "pet-companion-chat/internal/adapters/storage/mongo"
	pg "pet-companion-chat/internal/adapters/storage/postgres"
	"pet-companion-chat/internal/config"
	"pet-companion-chat/internal/domain/chat"
	"pet-companion-chat/internal/domain/trainers"
	"pet-companion-chat/internal/platform/logger"
	"pet-companion-chat/internal/platform/metrics"
	"pet-companion-chat/internal/router"
)

func main() {
	log := logger.NewFromEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", map[string]any{"err": err.Error()})
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		log.Error("storage unavailable", map[string]any{"backend": string(cfg.Storage), "err": err.Error()})
		os.Exit(1)
	}
	defer closeRepo()

	var completer chat.Completer
	if !cfg.UseMockChat() {
		temperature := cfg.ChatTemperature
		completer, err = deepseek.New(deepseek.Config{
			APIKey:      cfg.DeepSeekAPIKey,
			BaseURL:     cfg.DeepSeekBaseURL,
			Model:       cfg.ChatModel,
			MaxTokens:   int64(cfg.ChatMaxTokens),
			Temperature: &temperature,
		}, log)
		if err != nil {
			log.Error("chat provider", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
	}

	r := router.NewRouter(router.Options{
		Repository:     repo,
		Completer:      completer,
		ChatTimeout:    cfg.ChatTimeout,
		ChatRatePerSec: cfg.ChatRatePerSec,
		ChatRateBurst:  cfg.ChatRateBurst,
		Logger:         log,
		Metrics:        metrics.New(prometheus.DefaultRegisterer),
		MetricsUser:    cfg.MetricsUser,
		MetricsPass:    cfg.MetricsPass,
		BaseContext:    ctx,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// /chat puede tardar hasta CHAT_TIMEOUT
		WriteTimeout: cfg.ChatTimeout + 10*time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("starting server", map[string]any{
		"addr":    srv.Addr,
		"storage": string(cfg.Storage),
		"mock":    cfg.UseMockChat(),
	})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
	log.Info("server stopped", nil)
}

func openRepository(ctx context.Context, cfg config.Config) (trainers.Repository, func(), error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		db, err := pg.Open(ctx, cfg.DBDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return pg.NewTrainersRepo(db), func() { _ = db.Close() }, nil

	case config.StorageMongo:
		client, err := mg.Connect(ctx, cfg.MongoURL)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		return mg.NewTrainersRepo(client.Database(cfg.MongoDatabase)), closeFn, nil

	case config.StorageFirestore:
		store, err := fs.NewStore(ctx, cfg.GCPProject)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}

	return mem.NewTrainerRepo(), func() {}, nil
}
