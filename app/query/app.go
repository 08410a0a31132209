package query

import (
	"context"

	"go.uber.org/zap"

	"github.com/xyz-retail/salespipe/app/query/types"
	"github.com/xyz-retail/salespipe/pkg/db/warehouse"
	"github.com/xyz-retail/salespipe/pkg/logging"
	"github.com/xyz-retail/salespipe/pkg/redis"
	"github.com/xyz-retail/salespipe/pkg/utils"
)

// Initialize initializes the application.
func Initialize(ctx context.Context) *types.App {
	logger, err := logging.New()
	if err != nil {
		// nothing else to do here, we'll just log to stderr
		panic(err)
	}

	db, dbErr := warehouse.New(ctx, logger)
	if dbErr != nil {
		logger.Fatal("Unable to initialize warehouse", zap.Error(dbErr))
	}

	// Redis is optional; without it the websocket endpoint reports
	// unavailable and everything else works.
	var redisClient *redis.Client
	if utils.EnvBool("REDIS_ENABLED", false) {
		redisClient, err = redis.NewClient(ctx, logger)
		if err != nil {
			logger.Warn("Failed to initialize Redis client - run events will be disabled",
				zap.Error(err))
			redisClient = nil
		} else {
			logger.Info("Redis client initialized for run events")
		}
	} else {
		logger.Info("Redis disabled - run events will not be available")
	}

	return &types.App{
		DB:          db,
		RedisClient: redisClient,
		Logger:      logger,
	}
}
