/**
 * @description
 * This is the main entry point for the transfer engine's background workers.
 * It wires configuration, the PostgreSQL pool, RabbitMQ, and Redis together,
 * then runs two long-lived components: the outbox relay that delivers
 * committed completion events to the broker, and the fraud-threshold
 * consumer subscribed to the same stream. The transfer operation itself is
 * exposed as a library (internal/app.Service) to whatever request surface
 * embeds this engine.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/joho/godotenv: For loading .env files during local development.
 * - github.com/redis/go-redis/v9: Event dedupe store for the fraud consumer.
 * - internal/app, internal/config, internal/store, pkg/rabbitmq: Engine packages.
 */

package main

import (
	"context"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/bankva/transfer-engine/internal/app"
	"github.com/bankva/transfer-engine/internal/config"
	"github.com/bankva/transfer-engine/internal/store"
	"github.com/bankva/transfer-engine/pkg/rabbitmq"
)

func main() {
	// Load .env file for local development.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url must be configured\" env=DATABASE_URL")
	}

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}
	poolConfig.MaxConns = 50
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connected\"")

	repo := store.NewPostgresRepository(dbpool)

	// Initialize the RabbitMQ producer for the outbox relay. If the broker is
	// down at startup the relay keeps events queued in the outbox table.
	var publisher rabbitmq.Publisher
	producer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
	if err != nil {
		log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", err)
		publisher = &rabbitmq.FallbackPublisher{}
	} else {
		defer producer.Close()
		publisher = producer
		log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
	}

	// Redis backs the fraud consumer's replay dedupe. Its absence only
	// degrades dedupe, never the engine itself.
	var deduper app.EventDeduper
	if strings.TrimSpace(cfg.RedisURL) == "" {
		log.Println("level=warn component=bootstrap msg=\"redis url missing; event dedupe disabled\" env=REDIS_URL")
	} else {
		redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
		if parseErr != nil {
			log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; event dedupe disabled\" err=%v", parseErr)
		} else {
			redisClient := redis.NewClient(redisOptions)
			pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
			if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis ping failed; event dedupe disabled\" err=%v", pingErr)
			} else {
				defer redisClient.Close()
				deduper = app.NewRedisEventDeduper(redisClient, cfg.EventDedupeKeyPrefix, time.Duration(cfg.EventDedupeTTLMinutes)*time.Minute)
				log.Println("level=info component=bootstrap msg=\"redis connected\"")
			}
			cancelPing()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the outbox relay.
	dispatcher := app.NewOutboxDispatcher(repo, publisher).
		WithBatching(cfg.OutboxBatchSize, time.Duration(cfg.OutboxPollIntervalMs)*time.Millisecond)
	go dispatcher.Run(ctx)
	log.Println("level=info component=bootstrap msg=\"outbox dispatcher started\"")

	// Subscribe the fraud checker to the completion event stream.
	checker := app.NewFraudThresholdChecker(cfg.FraudThreshold(), deduper)
	consumer, err := rabbitmq.NewConsumer(cfg.RabbitMQURL)
	if err != nil {
		log.Printf("level=warn component=bootstrap msg=\"rabbitmq consumer unavailable; fraud checks disabled\" err=%v", err)
	} else {
		defer consumer.Close()
		bindings := map[string]func([]byte) bool{
			cfg.TransferRoutingKey: checker.HandleMessage,
		}
		if err := consumer.ConsumeWithBindings(cfg.TransferExchange, cfg.TransferEventQueue, bindings); err != nil {
			log.Printf("level=warn component=bootstrap msg=\"fraud consumer setup failed\" err=%v", err)
		} else {
			log.Printf("level=info component=bootstrap msg=\"fraud consumer started\" exchange=%s queue=%s routing_key=%s",
				cfg.TransferExchange, cfg.TransferEventQueue, cfg.TransferRoutingKey)
		}
	}

	<-ctx.Done()
	log.Println("level=info component=bootstrap msg=\"shutting down\"")

	// Give the relay a moment to finish its in-flight batch before the
	// deferred closes tear the connections down.
	time.Sleep(2 * time.Second)
}
