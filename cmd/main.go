/**
 * @description
 * This is the main entry point for the ledger service. It is responsible for
 * initializing all components: configuration, the data store, the message
 * broker, the rate limiter, the core application service, and the HTTP server.
 * It wires everything together and starts the service.
 *
 * With DEV_MODE=true (or no DATABASE_URL) the service runs entirely on the
 * in-memory store, which is convenient for local demos alongside the seeded
 * dataset.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/go-chi/chi/v5: For HTTP routing.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/redis/go-redis/v9: Rate limiter backend.
 * - internal/api, internal/app, internal/config, internal/seed, internal/store: Internal packages.
 * - pkg/rabbitmq: Client for RabbitMQ.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/dacreathor101/simplebank-new/internal/api"
	"github.com/dacreathor101/simplebank-new/internal/app"
	"github.com/dacreathor101/simplebank-new/internal/config"
	"github.com/dacreathor101/simplebank-new/internal/seed"
	"github.com/dacreathor101/simplebank-new/internal/store"
	"github.com/dacreathor101/simplebank-new/pkg/rabbitmq"
)

func main() {
	// Load application configuration from environment variables.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"jwt secret must be configured\" env=JWT_SECRET")
	}

	log.Printf("level=info component=bootstrap msg=\"starting ledger service\" port=%s", cfg.ServerPort)

	// Select the data store. Postgres is the durable default; dev mode or a
	// missing DATABASE_URL falls back to the in-memory store.
	var repository store.Repository
	if cfg.DevMode || strings.TrimSpace(cfg.DatabaseURL) == "" {
		log.Println("level=info component=bootstrap msg=\"using in-memory store\"")
		repository = store.NewMemoryRepository()
	} else {
		poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
		}

		// Connection pool sizing for high-traffic scenarios.
		poolConfig.MaxConns = 100
		poolConfig.MinConns = 20
		poolConfig.MaxConnLifetime = 30 * time.Minute
		poolConfig.MaxConnIdleTime = 5 * time.Minute

		// Disable prepared statement caching to prevent conflicts
		poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

		dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
		if err != nil {
			log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
		}
		defer dbpool.Close()

		if err := store.EnsureSchema(context.Background(), dbpool); err != nil {
			log.Fatalf("level=fatal component=bootstrap msg=\"schema migration failed\" err=%v", err)
		}
		log.Println("level=info component=bootstrap msg=\"database connected\"")

		repository = store.NewPostgresRepository(dbpool)
	}

	// Initialize the RabbitMQ producer to publish ledger events. The service
	// only publishes, so a producer is all it needs; a fallback keeps boot
	// alive when the broker is down.
	var producer rabbitmq.Publisher
	if strings.TrimSpace(cfg.RabbitMQURL) == "" {
		log.Println("level=warn component=bootstrap msg=\"rabbitmq url missing; event publication disabled\" env=RABBITMQ_URL")
		producer = &rabbitmq.EventProducerFallback{}
	} else {
		eventProducer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", err)
			producer = &rabbitmq.EventProducerFallback{}
		} else {
			defer eventProducer.Close()
			log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
			producer = eventProducer
		}
	}

	// Redis backs the per-user rate limiter; its absence disables throttling
	// but never blocks boot.
	var limiter app.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		if strings.TrimSpace(cfg.RedisURL) == "" {
			log.Println("level=warn component=bootstrap msg=\"redis url missing; rate limiting disabled\" env=REDIS_URL")
		} else {
			redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
			if parseErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; rate limiting disabled\" err=%v", parseErr)
			} else {
				redisClient := redis.NewClient(redisOptions)
				pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancelPing()
				if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
					log.Printf("level=warn component=bootstrap msg=\"redis ping failed; rate limiting disabled\" err=%v", pingErr)
					redisClient.Close()
				} else {
					defer redisClient.Close()
					log.Println("level=info component=bootstrap msg=\"redis connected\"")
					limiter = app.NewRedisRateLimiter(redisClient, cfg.RedisRateLimPrefix)
				}
			}
		}
	}

	// Initialize the core application service with its dependencies.
	ledgerService := app.NewService(
		repository,
		producer,
		cfg.RoutingNumber,
		cfg.JWTSecret,
		cfg.TokenTTLMinutes,
		cfg.BcryptCost,
	)

	if cfg.SeedDemoData {
		if err := seed.Run(context.Background(), ledgerService); err != nil {
			log.Fatalf("level=fatal component=bootstrap msg=\"demo seed failed\" err=%v", err)
		}
	}

	// Initialize the API handlers and routes.
	handlers := api.NewHandlers(ledgerService)

	router := chi.NewRouter()
	router.Mount("/api", api.Routes(handlers, []byte(cfg.JWTSecret), limiter, cfg.RateLimitPerMinute))

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
