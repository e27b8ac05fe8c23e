package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iamasit07/4-in-a-row/server/internal/config"
	"github.com/iamasit07/4-in-a-row/server/internal/repository/database"
	"github.com/iamasit07/4-in-a-row/server/internal/repository/redis"
	"github.com/iamasit07/4-in-a-row/server/internal/service/analytics"
	"github.com/iamasit07/4-in-a-row/server/internal/service/cleanup"
	"github.com/iamasit07/4-in-a-row/server/internal/service/game"
	transportHttp "github.com/iamasit07/4-in-a-row/server/internal/transport/http"
	"github.com/iamasit07/4-in-a-row/server/internal/transport/websocket"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()

	// 1. Persistence (optional)
	var (
		repo  game.GameRepository
		store transportHttp.GameStore
	)
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		log.Fatalf("Database unreachable: %v", err)
	}
	if db != nil {
		gameRepo := database.NewGameRepo(db)
		repo, store = gameRepo, gameRepo

		if cfg.GameRetention > 0 {
			workerCtx, stopWorker := context.WithCancel(ctx)
			defer stopWorker()
			cleanup.NewWorker(gameRepo, cfg.GameRetention, cfg.CleanupInterval).Start(workerCtx)
		}
	} else {
		log.Println("[DB] DATABASE_URL not set, games will not be stored")
	}

	// 2. Analytics: Redis stream when configured, process log otherwise
	var sink analytics.Sink = analytics.LogSink{}
	var streamSink *redis.StreamSink
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			log.Printf("[REDIS] Warning: %v. Falling back to log analytics.", err)
		} else {
			streamSink = redis.NewStreamSink(client, cfg.AnalyticsStream)
			sink = streamSink
		}
	}
	dispatcher := analytics.NewDispatcher(sink, cfg.AnalyticsBuffer)

	// 3. Game registry and sockets
	connManager := websocket.NewConnectionManager(websocket.DefaultSendBuffer)
	registry := game.NewRegistry(game.Options{
		Conn:            connManager,
		Events:          dispatcher,
		Repo:            repo,
		MatchTimeout:    cfg.MatchTimeout,
		ReconnectWindow: cfg.ReconnectWindow,
		SaveTimeout:     cfg.SaveTimeout,
		Persist:         cfg.PersistGames,
	})
	wsHandler := websocket.NewHandler(connManager, registry, cfg.AllowedOrigins)

	// 4. HTTP
	router := transportHttp.NewRouter(transportHttp.RouterConfig{
		Games:            store,
		Live:             registry,
		WebSocket:        wsHandler.HandleWebSocket,
		AllowedOrigins:   cfg.AllowedOrigins,
		LeaderboardLimit: cfg.LeaderboardLimit,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	// hijacked sockets are not closed by srv.Shutdown
	connManager.Close()

	if err := registry.Shutdown(shutdownCtx); err != nil {
		log.Printf("[SESSION] Pending saves abandoned: %v", err)
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Printf("[ANALYTICS] Events abandoned: %v", err)
	}
	if streamSink != nil {
		_ = streamSink.Close()
	}
	if db != nil {
		_ = db.Close()
	}

	log.Println("Server exited")
}

// openDatabase returns nil when no DATABASE_URL is configured.
func openDatabase(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := database.Open(ctx, cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}

	if err := database.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
