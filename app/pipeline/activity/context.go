package activity

import (
	"sync"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/xyz-retail/salespipe/pkg/db/warehouse"
	"github.com/xyz-retail/salespipe/pkg/redis"
	"github.com/xyz-retail/salespipe/pkg/transform"
)

type Context struct {
	Logger *zap.Logger
	DB     warehouse.Store

	// SourceDir is the directory the watcher and discovery scan for files.
	SourceDir string

	// JoinPolicy controls fact resolution for rows that miss a dimension.
	JoinPolicy transform.JoinPolicy

	// RedisClient publishes run events when configured; nil disables publishing.
	RedisClient *redis.Client

	// IngestParallelism overrides the ingest pool size (defaults to 4).
	IngestParallelism int
	ingestPoolOnce    sync.Once
	ingestPool        pond.Pool
}

// ingestWorkerPool returns the shared pool used to decode and load files in
// parallel. Files are independent, so the only ordering that matters is the
// per-file (source_file, source_seq) sequence, which each task preserves.
func (c *Context) ingestWorkerPool() pond.Pool {
	c.ingestPoolOnce.Do(func() {
		maxWorkers := c.IngestParallelism
		if maxWorkers <= 0 {
			maxWorkers = 4
		}
		c.ingestPool = pond.NewPool(maxWorkers)
	})
	return c.ingestPool
}
