package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Vasu1712/gymchat-backend/internal/api/messages"
	"github.com/Vasu1712/gymchat-backend/internal/auth"
	"github.com/Vasu1712/gymchat-backend/internal/chat"
	"github.com/Vasu1712/gymchat-backend/internal/config"
	"github.com/Vasu1712/gymchat-backend/internal/logger"
	"github.com/Vasu1712/gymchat-backend/internal/middleware"
	"github.com/Vasu1712/gymchat-backend/internal/storage"
	"github.com/Vasu1712/gymchat-backend/internal/storage/memory"
	"github.com/Vasu1712/gymchat-backend/internal/storage/mongodb"
	"github.com/Vasu1712/gymchat-backend/internal/storage/postgres"
	"github.com/Vasu1712/gymchat-backend/internal/storage/valkeycache"
	"github.com/Vasu1712/gymchat-backend/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, dir, closeStores, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStores()

	svc := chat.NewService(store, dir, log, chat.WithHistoryLimit(cfg.HistoryLimit))
	tokens := auth.NewResolver(cfg.JWTSecret)
	origins := middleware.NewOrigins(cfg.Origins())
	hub := ws.NewHub(log)

	r := mux.NewRouter()
	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("API is running..."))
	}).Methods(http.MethodGet)
	r.Handle("/ws", ws.NewHandler(hub, svc, tokens, origins.Allowed, ws.Config{
		SendBuffer:      cfg.WSSendBuffer,
		WriteTimeout:    cfg.WSWriteTimeout,
		PingInterval:    cfg.WSPingInterval,
		EventsPerSecond: cfg.WSEventsPerSecond,
		RequireAuth:     cfg.WSRequireAuth,
	}, log))
	messages.RegisterRoutes(r, messages.NewHandler(svc, log), auth.RequireUser(tokens, log))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           middleware.AccessLog(log)(middleware.CORS(origins)(r)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", zap.String("addr", srv.Addr), zap.String("storage", cfg.StorageDriver))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", zap.Int("online_users", hub.Online()))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStores builds the message store and participant directory for the configured driver.
func openStores(ctx context.Context, cfg config.Config, log *zap.Logger) (storage.MessageStore, storage.Directory, func(), error) {
	var (
		store storage.MessageStore
		dir   storage.Directory
	)
	switch cfg.StorageDriver {
	case config.DriverMongo:
		client, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.StoreTimeout)
		if err != nil {
			return nil, nil, nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		ms, err := mongodb.NewMessageStore(ctx, db, cfg.StoreTimeout, log)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, nil, err
		}
		store, dir = ms, mongodb.NewUserDirectory(db, cfg.StoreTimeout)
	case config.DriverPostgres:
		ps, err := postgres.NewMessageStore(ctx, cfg.PostgresDSN, cfg.StoreTimeout, log)
		if err != nil {
			return nil, nil, nil, err
		}
		// Profiles live with the account service; trust the ids the token layer hands over.
		store, dir = ps, memory.NewOpenDirectory()
	default:
		store, dir = memory.NewMessageStore(), memory.NewOpenDirectory()
	}

	closers := []func(){func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
		defer cancel()
		if err := store.Close(ctx); err != nil {
			log.Warn("closing message store", zap.Error(err))
		}
	}}

	if cfg.ValkeyAddr != "" {
		client, err := valkeycache.Connect(cfg.ValkeyAddr)
		if err != nil {
			closers[0]()
			return nil, nil, nil, fmt.Errorf("connecting to valkey: %w", err)
		}
		dir = valkeycache.NewCachedDirectory(client, dir, cfg.DirectoryCacheTTL, log)
		closers = append(closers, client.Close)
	}

	return store, dir, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}, nil
}
