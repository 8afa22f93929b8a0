/**
 * @description
 * This is the main entry point for the donation-service. It is responsible for
 * initializing all components of the service, including configuration, database
 * connection, the Razorpay API client, message broker, repository, the core
 * application service, and the HTTP server. It wires everything together and
 * starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - internal/api, internal/app, internal/config, internal/store: Internal packages for the service.
 * - pkg/razorpay: Client for the Razorpay API.
 * - pkg/rabbitmq: Client for RabbitMQ.
 */

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sevasetu/donation-service/internal/api"
	"github.com/sevasetu/donation-service/internal/app"
	"github.com/sevasetu/donation-service/internal/config"
	"github.com/sevasetu/donation-service/internal/store"
	"github.com/sevasetu/donation-service/pkg/rabbitmq"
	"github.com/sevasetu/donation-service/pkg/razorpay"
)

func main() {
	// Load application configuration from environment variables.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}

	// A missing webhook secret is a fatal misconfiguration: without it the
	// capture endpoint cannot tell authentic gateway deliveries from forgeries.
	if cfg.RazorpayWebhookSecret == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"webhook secret must be configured\" env=RAZORPAY_WEBHOOK_SECRET")
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"jwt secret must be configured\" env=JWT_SECRET")
	}

	log.Printf("level=info component=bootstrap msg=\"starting donation-service\" port=%s", cfg.ServerPort)

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}
	poolConfig.MaxConns = 25
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connected\"")

	// Initialize the RabbitMQ producer to publish donation events. The broker is
	// optional: without it the service still records donations, downstream
	// notifications just stop flowing.
	var producer rabbitmq.Publisher
	if strings.TrimSpace(cfg.RabbitMQURL) == "" {
		log.Println("level=warn component=bootstrap msg=\"rabbitmq url missing; donation events disabled\" env=RABBITMQ_URL")
		producer = &rabbitmq.EventProducerFallback{}
	} else if eventProducer, prodErr := rabbitmq.NewEventProducer(cfg.RabbitMQURL); prodErr != nil {
		log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", prodErr)
		producer = &rabbitmq.EventProducerFallback{}
	} else {
		defer eventProducer.Close()
		producer = eventProducer
		log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
	}

	// Initialize the client for the Razorpay API.
	gateway := razorpay.NewClient(cfg.RazorpayAPIBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	// Optional Redis-backed rate limiting for the public init-flow endpoint.
	var rateLimiter *app.RedisRateLimiter
	if cfg.InitFlowRateLimitPerMin > 0 {
		if cfg.RedisURL == "" {
			log.Println("level=warn component=bootstrap msg=\"redis url missing; init-flow rate limiting disabled\" env=REDIS_URL")
		} else if redisOptions, parseErr := redis.ParseURL(cfg.RedisURL); parseErr != nil {
			log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; init-flow rate limiting disabled\" err=%v", parseErr)
		} else {
			redisClient := redis.NewClient(redisOptions)
			pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
			if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis ping failed; init-flow rate limiting disabled\" err=%v", pingErr)
			} else {
				rateLimiter = app.NewRedisRateLimiter(redisClient, cfg.RedisRateLimitPrefix)
				log.Println("level=info component=bootstrap msg=\"redis rate limiter connected\"")
			}
			cancelPing()
		}
	}

	// Wire the layers together.
	repo := store.NewPostgresRepository(dbpool)
	service := app.NewService(repo, gateway, producer)
	handlers := api.NewDonationHandlers(service)
	webhookHandler := api.NewWebhookHandler(service, cfg.RazorpayWebhookSecret)

	router := api.DonationRoutes(handlers, webhookHandler, api.RouterConfig{
		JWTSecret:             cfg.JWTSecret,
		InitFlowRatePerMinute: cfg.InitFlowRateLimitPerMin,
		RateLimiter:           rateLimiter,
	})

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	// Run the server in a goroutine so shutdown signals can be handled below.
	go func() {
		log.Printf("level=info component=bootstrap msg=\"http server listening\" addr=%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=bootstrap msg=\"http server failed\" err=%v", err)
		}
	}()

	// Wait for an interrupt signal and drain in-flight requests before exiting.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("level=info component=bootstrap msg=\"shutting down\"")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("level=error component=bootstrap msg=\"graceful shutdown failed\" err=%v", err)
	}
}
