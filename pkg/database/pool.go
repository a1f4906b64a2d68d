package database

import (
	"context"
	"os"
	"sync"
	"time"

	"company-workspace-backend/pkg/logger"
)

// idleTimeout is shorter on serverless platforms where instances are frozen
// between invocations and sockets go stale.
const (
	idleTimeout           = 30 * time.Minute
	serverlessIdleTimeout = 10 * time.Minute
	healthCheckTimeout    = 3 * time.Second
)

// DatabasePool caches one store per process
type DatabasePool struct {
	instance DatabaseInterface
	config   DatabaseConfig
	mu       sync.RWMutex
	lastUsed time.Time
}

var (
	globalPool *DatabasePool
	poolMutex  sync.Mutex
)

// GetDatabase returns the cached store for config, opening a new one when
// the config changed, the cached one went idle or it fails its health check.
func GetDatabase(ctx context.Context, config DatabaseConfig) (DatabaseInterface, error) {
	poolMutex.Lock()
	defer poolMutex.Unlock()

	log := logger.DB()
	if globalPool != nil && !shouldRecreateConnection(ctx, globalPool, config) {
		globalPool.mu.Lock()
		globalPool.lastUsed = time.Now()
		globalPool.mu.Unlock()
		log.Debug("reusing existing database connection")
		return globalPool.instance, nil
	}

	if globalPool != nil && globalPool.instance != nil {
		_ = globalPool.instance.Close()
		globalPool = nil
	}

	log.Info("creating new database connection")
	instance, err := NewDatabase(config)
	if err != nil {
		return nil, err
	}
	globalPool = &DatabasePool{
		instance: instance,
		config:   config,
		lastUsed: time.Now(),
	}
	return instance, nil
}

func shouldRecreateConnection(ctx context.Context, pool *DatabasePool, newConfig DatabaseConfig) bool {
	if pool.instance == nil {
		return true
	}

	log := logger.DB()
	if pool.config != newConfig {
		log.Info("database configuration changed, recreating connection")
		return true
	}

	pool.mu.RLock()
	expired := time.Since(pool.lastUsed) > maxIdle()
	pool.mu.RUnlock()
	if expired {
		log.Info("database connection expired, recreating")
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	if err := pool.instance.HealthCheck(ctx); err != nil {
		log.WithError(err).Warn("database health check failed, recreating")
		return true
	}

	return false
}

// CloseDatabase closes the cached store, if any
func CloseDatabase() error {
	poolMutex.Lock()
	defer poolMutex.Unlock()

	if globalPool == nil || globalPool.instance == nil {
		return nil
	}
	err := globalPool.instance.Close()
	globalPool = nil
	return err
}

// GetConnectionStats reports the state of the cached store
func GetConnectionStats() map[string]interface{} {
	poolMutex.Lock()
	defer poolMutex.Unlock()

	if globalPool == nil {
		return map[string]interface{}{
			"status":    "no_connection",
			"last_used": nil,
		}
	}

	globalPool.mu.RLock()
	lastUsed := globalPool.lastUsed
	globalPool.mu.RUnlock()

	return map[string]interface{}{
		"status":     "connected",
		"backend":    globalPool.config.Kind(),
		"last_used":  lastUsed.Format(time.RFC3339),
		"age":        time.Since(lastUsed).String(),
		"serverless": IsServerlessEnvironment(),
	}
}

// IsServerlessEnvironment reports whether the process runs on Vercel or Lambda
func IsServerlessEnvironment() bool {
	return os.Getenv("VERCEL_ENV") != "" ||
		os.Getenv("VERCEL_URL") != "" ||
		os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

func maxIdle() time.Duration {
	if IsServerlessEnvironment() {
		return serverlessIdleTimeout
	}
	return idleTimeout
}
