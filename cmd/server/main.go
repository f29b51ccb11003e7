package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/propensity-engine/internal/analytics"
	"github.com/ignite/propensity-engine/internal/api"
	"github.com/ignite/propensity-engine/internal/archive"
	"github.com/ignite/propensity-engine/internal/config"
	"github.com/ignite/propensity-engine/internal/oracle"
	"github.com/ignite/propensity-engine/internal/pkg/distlock"
	"github.com/ignite/propensity-engine/internal/pkg/logger"
	"github.com/ignite/propensity-engine/internal/repository/memory"
	"github.com/ignite/propensity-engine/internal/repository/postgres"
	"github.com/ignite/propensity-engine/internal/service/campaign"
	"github.com/ignite/propensity-engine/internal/service/customer"
	"github.com/ignite/propensity-engine/internal/service/prediction"
	"github.com/ignite/propensity-engine/internal/targeting"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func extractHost(dsn string) string {
	at := strings.Index(dsn, "@")
	if at < 0 {
		return "(unknown)"
	}
	rest := dsn[at+1:]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

// stores bundles the repositories one backend provides.
type stores struct {
	campaigns   campaign.Repository
	outcomes    campaign.OutcomeStore
	customers   customer.Repository
	source      targeting.CustomerSource
	predictions prediction.Repository
	analytics   analytics.Store
}

func postgresStores(db *sql.DB) stores {
	customers := postgres.NewCustomerRepo(db)
	predictions := postgres.NewPredictionRepo(db)
	return stores{
		campaigns:   postgres.NewCampaignRepo(db),
		outcomes:    predictions,
		customers:   customers,
		source:      customers,
		predictions: predictions,
		analytics:   postgres.NewAnalyticsRepo(db),
	}
}

func memoryStores() stores {
	m := memory.NewStore()
	return stores{
		campaigns:   m.Campaigns(),
		outcomes:    m.Predictions(),
		customers:   m.Customers(),
		source:      m.Customers(),
		predictions: m.Predictions(),
		analytics:   m.Analytics(),
	}
}

func main() {
	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║  Propensity Engine (cmd/server/main.go)                    ║")
	log.Println("║  Campaign targeting, scoring dispatch and analytics        ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))

	host := cfg.Server.GetHost()
	if err := checkPortAvailable(host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", cfg.Server.Port)

	// Database (optional; in-memory store otherwise)
	var db *sql.DB
	st := memoryStores()
	if cfg.Database.URL != "" {
		db, err = sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(30 * time.Minute)

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to database at %s: %v", extractHost(cfg.Database.URL), err)
		}
		defer db.Close()
		st = postgresStores(db)
		log.Printf("Connected to PostgreSQL at %s", extractHost(cfg.Database.URL))
	} else {
		log.Println("WARNING: no database configured, using in-memory store (data is lost on restart)")
	}

	// Redis (optional; run locks fall back to Postgres advisory or in-process)
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.URL})
		} else {
			redisClient = redis.NewClient(opts)
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err = redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Printf("WARNING: Redis unavailable (%v), run locks will not use Redis", err)
			redisClient.Close()
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("Connected to Redis")
		}
	}
	locks := distlock.NewProvider(redisClient, db, cfg.Dispatch.LockTTL())
	log.Printf("Campaign run locks: %s backend", locks.Backend())

	// Scoring oracle
	oracleClient := oracle.NewClient(oracle.Config{
		BaseURL:    cfg.Oracle.BaseURL,
		Timeout:    cfg.Oracle.Timeout(),
		MaxRetries: cfg.Oracle.MaxRetries,
	}, nil)
	var model api.ModelStatus
	if oracleClient.IsConfigured() {
		model = oracleClient
		log.Printf("Scoring oracle: %s (timeout %s, retries %d)",
			cfg.Oracle.BaseURL, cfg.Oracle.Timeout(), cfg.Oracle.MaxRetries)
	} else {
		log.Println("WARNING: scoring oracle not configured, runs will record every target as failed")
	}

	// Run-report archive (optional)
	var campaignOpts []campaign.Option
	if cfg.Archive.Enabled && cfg.Archive.S3Bucket != "" {
		archiver, err := archive.NewS3ArchiverFromEnv(context.Background(),
			cfg.Archive.S3Bucket, cfg.Archive.Region, cfg.Archive.Prefix)
		if err != nil {
			log.Printf("WARNING: run archive disabled: %v", err)
		} else {
			campaignOpts = append(campaignOpts, campaign.WithArchiver(archiver))
			log.Printf("Run reports archived to s3://%s/%s", cfg.Archive.S3Bucket, cfg.Archive.Prefix)
		}
	}

	campaignSvc := campaign.NewService(
		st.campaigns, st.outcomes, targeting.NewResolver(st.source), oracleClient,
		locks, campaign.Config{Workers: cfg.Dispatch.Workers}, campaignOpts...)
	handlers := api.NewHandlers(
		campaignSvc,
		customer.NewService(st.customers),
		prediction.NewService(st.predictions, st.customers, oracleClient),
		analytics.NewService(st.analytics),
		model,
		api.NewHealthChecker(db, redisClient, model, locks.Backend()),
	)
	server := api.NewServer(handlers, cfg.Server.AllowedOrigins)
	log.Printf("Dispatch workers: %d", cfg.Dispatch.Workers)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, cfg.Server.Port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Println("All services initialized, server is ready")

	<-done
	log.Println("Shutting down...")

	// Shutdown waits for in-flight runs up to the timeout.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
