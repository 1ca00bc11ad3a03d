package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"cartsync/internal/checkout"
	"cartsync/internal/config"
	"cartsync/internal/db"
	"cartsync/internal/engine"
	"cartsync/internal/gateway"
	"cartsync/internal/httpserver"
	"cartsync/internal/session"
	"cartsync/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	var dbpool *pgxpool.Pool
	if cfg.DBConnString != "" {
		pool, err := db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			logger.Fatalf("connect to db: %v", err)
		}
		defer pool.Close()
		dbpool = pool
	} else if cfg.CartDataDir != "" {
		if err := os.MkdirAll(cfg.CartDataDir, 0o700); err != nil {
			logger.Fatalf("create cart data dir: %v", err)
		}
		logger.Printf("no DB_DSN set, carts persist to %s", cfg.CartDataDir)
	} else {
		logger.Printf("no DB_DSN set, sessions are memory-backed")
	}

	sessions := session.NewManager(cfg.SessionTTL, func(token string) *session.Session {
		var port store.Port
		switch {
		case dbpool != nil:
			port = store.NewPostgresPort(dbpool, token)
		case cfg.CartDataDir != "":
			port = store.NewFilePort(filepath.Join(cfg.CartDataDir, token+".json"))
		default:
			port = store.NewMemoryPort()
		}
		st := store.New(port, logger)
		gw := gateway.New(cfg.PlatformBaseURL, cfg.PlatformToken, cfg.PlatformTimeout, logger)
		eng := engine.New(st, gw, cfg.DebounceWindow, logger)
		return &session.Session{
			Store:    st,
			Engine:   eng,
			Checkout: checkout.New(eng, gw, logger),
		}
	})

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Sessions: sessions,
	}, cfg.AllowedOrigins)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
