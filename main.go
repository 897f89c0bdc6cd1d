package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/syncpad/syncpad/handlers"
	"github.com/syncpad/syncpad/internal/config"
	"github.com/syncpad/syncpad/internal/database"
	"github.com/syncpad/syncpad/internal/document"
	"github.com/syncpad/syncpad/internal/engine"
	"github.com/syncpad/syncpad/internal/relay"
	"github.com/syncpad/syncpad/internal/snapshot"
	"github.com/syncpad/syncpad/internal/ws"
	"github.com/syncpad/syncpad/pkg/logger"
	"github.com/syncpad/syncpad/pkg/metrics"
	"github.com/syncpad/syncpad/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: redis=%v mongo=%v rate_limit=%v", cfg.Redis.Host != "", cfg.MongoDB.URI != "", cfg.RateLimit.Enabled)

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Global middlewares: logging + recovery
	r.Use(gin.Logger(), gin.Recovery())

	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}

	ctx := context.Background()

	// Connect to Redis early so the broadcast relay can use it when configured
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			rdb = nil
		} else {
			logger.Infof("Connected to Redis for cross-node broadcasts: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	// Snapshot collaborator: Mongo when configured and reachable, in-memory otherwise
	var saver snapshot.Saver = snapshot.NewMemorySaver()
	if cfg.MongoDB.URI != "" {
		// Retry/backoff when connecting to MongoDB to tolerate startup races
		const maxAttempts = 5
		backoff := time.Second
		var client *mongo.Client
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB after %d attempts, snapshots stay in memory: %v", maxAttempts, errConn)
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
			col := client.Database(cfg.MongoDB.Database).Collection("snapshots")
			saver = snapshot.NewMongoSaver(col)
			logger.Infof("Using MongoDB for document snapshots")
		}
	}

	store := document.NewStore(cfg.Sync.DefaultDocTitle, cfg.Sync.DefaultDocContent)
	hub := ws.NewHub()

	opts := engine.Options{SaveAckDelay: cfg.Sync.SaveAckDelay}
	var rel *relay.Redis
	if rdb != nil {
		rel = relay.NewRedis(rdb)
		opts.Relay = rel
	}
	eng := engine.New(store, hub, opts)

	if rel != nil {
		rel.Subscribe(ctx, func(docID, event string, data json.RawMessage) {
			eng.DeliverRemote(docID, event, data)
		})
	}

	eng.RestoreSnapshots(ctx, saver)
	metrics.OpenDocuments.Set(float64(store.Count()))
	go eng.RunAutosave(ctx, saver, cfg.Sync.AutosaveInterval)

	gateway := ws.NewGateway(hub, eng)
	r.GET("/ws", gateway.Handle)
	handlers.RegisterDocumentRoutes(r, eng)

	// Basic health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint — return 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		// the in-memory core is always ready; optional collaborators are reported
		deps["store"] = true
		if cfg.Redis.Host != "" {
			deps["redis"] = rdb != nil
			if rdb == nil {
				ready = false
			}
		} else {
			deps["redis"] = true
		}
		deps["snapshots"] = saver != nil

		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": fmt.Sprintf("%s", time.Since(startTime))})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": fmt.Sprintf("%s", time.Since(startTime))})
	})

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting sync server on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
