package types

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/xyz-retail/salespipe/pkg/db/warehouse"
	"github.com/xyz-retail/salespipe/pkg/redis"
)

type App struct {
	DB warehouse.Store
	// RedisClient feeds the run-event websocket; nil when Redis is disabled.
	RedisClient *redis.Client
	Logger      *zap.Logger
	// Server represents the HTTP server instance used to handle incoming client requests.
	Server *http.Server
}

// Start starts the application and blocks until the context is canceled.
func (a *App) Start(ctx context.Context) {
	go func() { _ = a.Server.ListenAndServe() }()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.DB.Close(); err != nil {
		a.Logger.Error("Failed to close database connection", zap.Error(err))
	}
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	_ = a.Server.Shutdown(shutdownCtx)
	time.Sleep(200 * time.Millisecond)
	a.Logger.Info("Query service stopped")
}
