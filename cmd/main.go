package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	_ "github.com/sbilibin2017/gw-bank-ledger/docs"
	"github.com/sbilibin2017/gw-bank-ledger/internal/dbtx"
	"github.com/sbilibin2017/gw-bank-ledger/internal/facades"
	"github.com/sbilibin2017/gw-bank-ledger/internal/handlers"
	"github.com/sbilibin2017/gw-bank-ledger/internal/jwt"
	"github.com/sbilibin2017/gw-bank-ledger/internal/logger"
	"github.com/sbilibin2017/gw-bank-ledger/internal/middlewares"
	"github.com/sbilibin2017/gw-bank-ledger/internal/migrations"
	"github.com/sbilibin2017/gw-bank-ledger/internal/repositories"
	"github.com/sbilibin2017/gw-bank-ledger/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// config holds everything read from the environment.
type config struct {
	AppHost  string
	AppPort  string
	LogLevel string

	PGHost         string
	PGPort         int
	PGUser         string
	PGPassword     string
	PGDB           string
	PGMaxOpenConns int
	PGMaxIdleConns int

	RedisHost         string
	RedisPort         int
	RedisDB           int
	RedisPassword     string
	RedisPoolSize     int
	RedisMinIdleConns int

	KafkaBrokers []string
	KafkaTopic   string

	JWTSecretKey string
	JWTExpSecond int

	AdminEmail        string
	AdminPasswordHash string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	AlertThreshold       decimal.Decimal
	AlertCooldownSecond  int
	AlertRetryAttempts   int
	AlertRetryIntervalMS int
	AlertQueueSize       int
	AlertWorkers         int
	AlertRatePerSecond   float64
}

// @title gw-bank-ledger API
// @version 1.0.0
// @description Account ledger with deposits, withdrawals, transfers, audit history and low-balance alerts
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns
// the application, database, Redis, Kafka, JWT, SMTP and alert configuration.
func parseConfig(path string) (cfg config, err error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}
	getInt := func(key, defaultValue string) (int, error) {
		v, err := strconv.Atoi(getEnv(key, defaultValue))
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return v, nil
	}

	// Application config
	cfg.AppHost = getEnv("APP_HOST", "localhost")
	cfg.AppPort = getEnv("APP_PORT", "8080")
	cfg.LogLevel = getEnv("APP_LOG_LEVEL", "info")

	// PostgreSQL config
	cfg.PGHost = getEnv("POSTGRES_HOST", "localhost")
	cfg.PGUser = getEnv("POSTGRES_USER", "user")
	cfg.PGPassword = getEnv("POSTGRES_PASSWORD", "password")
	cfg.PGDB = getEnv("POSTGRES_DB", "database")
	if cfg.PGPort, err = getInt("POSTGRES_PORT", "5432"); err != nil {
		return
	}
	if cfg.PGMaxOpenConns, err = getInt("POSTGRES_MAX_OPEN_CONNS", "16"); err != nil {
		return
	}
	if cfg.PGMaxIdleConns, err = getInt("POSTGRES_MAX_IDLE_CONNS", "8"); err != nil {
		return
	}

	// Redis config
	cfg.RedisHost = getEnv("REDIS_HOST", "localhost")
	if cfg.RedisPort, err = getInt("REDIS_PORT", "6379"); err != nil {
		return
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", "0"); err != nil {
		return
	}
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	if cfg.RedisPoolSize, err = getInt("REDIS_POOL_SIZE", "10"); err != nil {
		return
	}
	if cfg.RedisMinIdleConns, err = getInt("REDIS_MIN_IDLE_CONNS", "2"); err != nil {
		return
	}

	// Kafka config, publishing is off without brokers
	for _, b := range strings.Split(getEnv("KAFKA_BROKERS", ""), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "ledger.transactions")

	// JWT config
	cfg.JWTSecretKey = getEnv("JWT_SECRET_KEY", "my_super_secret_key")
	if cfg.JWTExpSecond, err = getInt("JWT_EXP_SECOND", "3600"); err != nil {
		return
	}

	// Administrator
	cfg.AdminEmail = getEnv("ADMIN_EMAIL", "")
	cfg.AdminPasswordHash = getEnv("ADMIN_PASSWORD_HASH", "")

	// SMTP config
	cfg.SMTPHost = getEnv("SMTP_HOST", "localhost")
	if cfg.SMTPPort, err = getInt("SMTP_PORT", "587"); err != nil {
		return
	}
	cfg.SMTPUser = getEnv("SMTP_USER", "")
	cfg.SMTPPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SMTPFrom = getEnv("SMTP_FROM", "no-reply@bank.local")

	// Alert config
	if cfg.AlertThreshold, err = decimal.NewFromString(getEnv("ALERT_THRESHOLD", "100.00")); err != nil {
		err = fmt.Errorf("ALERT_THRESHOLD: %w", err)
		return
	}
	if cfg.AlertCooldownSecond, err = getInt("ALERT_COOLDOWN_SECOND", "3600"); err != nil {
		return
	}
	if cfg.AlertRetryAttempts, err = getInt("ALERT_RETRY_ATTEMPTS", "3"); err != nil {
		return
	}
	if cfg.AlertRetryIntervalMS, err = getInt("ALERT_RETRY_INTERVAL_MS", "500"); err != nil {
		return
	}
	if cfg.AlertQueueSize, err = getInt("ALERT_QUEUE_SIZE", "256"); err != nil {
		return
	}
	if cfg.AlertWorkers, err = getInt("ALERT_WORKERS", "2"); err != nil {
		return
	}
	if cfg.AlertRatePerSecond, err = strconv.ParseFloat(getEnv("ALERT_RATE_PER_SECOND", "5"), 64); err != nil {
		err = fmt.Errorf("ALERT_RATE_PER_SECOND: %w", err)
		return
	}

	return
}

// run initializes the logger, database, Redis, Kafka writer, alert pipeline and HTTP server.
// It sets up routes, applies middleware, and handles graceful shutdown.
func run(ctx context.Context, cfg config) error {
	// Initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	log := logger.Log
	log.Infof("Logger initialized with level %s", cfg.LogLevel)

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.PGUser, cfg.PGPassword, cfg.PGHost, cfg.PGPort, cfg.PGDB)
	log.Infow("Connecting to PostgreSQL", "host", cfg.PGHost, "port", cfg.PGPort, "db", cfg.PGDB)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return fmt.Errorf("PostgreSQL connection error: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.PGMaxOpenConns)
	db.SetMaxIdleConns(cfg.PGMaxIdleConns)

	if err := migrations.Run(ctx, db.DB); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis connection error: %w", err)
	}
	defer rdb.Close()

	// Kafka writer
	var kafkaWriter services.KafkaWriter
	if len(cfg.KafkaBrokers) > 0 {
		w := &kafka.Writer{
			Addr:         kafka.TCP(cfg.KafkaBrokers...),
			Topic:        cfg.KafkaTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 5 * time.Second,
			MaxAttempts:  3,
		}
		defer w.Close()
		kafkaWriter = w
		log.Infow("Kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		log.Warn("KAFKA_BROKERS is empty, transaction events will not be published")
	}

	if cfg.AdminEmail == "" || cfg.AdminPasswordHash == "" {
		log.Warn("administrator credentials are not configured, admin login is disabled")
	}

	// Initialize JWT service
	tokens := jwt.New(
		jwt.WithSecretKey(cfg.JWTSecretKey),
		jwt.WithExpiration(time.Duration(cfg.JWTExpSecond)*time.Second),
	)

	// Initialize repositories
	accountWriteRepo := repositories.NewAccountWriteRepository(db)
	accountReadRepo := repositories.NewAccountReadRepository(db)
	txWriteRepo := repositories.NewTransactionWriteRepository(db)
	txReadRepo := repositories.NewTransactionReadRepository(db)
	cooldownRepo := repositories.NewAlertCooldownRepository(rdb, time.Duration(cfg.AlertCooldownSecond)*time.Second)
	txManager := dbtx.NewTxManager(db, nil)

	// Alert pipeline
	mailer := facades.NewSMTPMailerFacade(
		facades.NewSMTPDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		cfg.SMTPFrom,
	)
	alertService := services.NewAlertService(mailer,
		services.WithThreshold(cfg.AlertThreshold),
		services.WithCooldown(cooldownRepo),
		services.WithRetry(uint64(cfg.AlertRetryAttempts), time.Duration(cfg.AlertRetryIntervalMS)*time.Millisecond),
	)
	dispatcher := services.NewAlertDispatcher(alertService, cfg.AlertQueueSize, cfg.AlertWorkers, cfg.AlertRatePerSecond)
	dispatcherCtx, cancelDispatcher := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelDispatcher()
	dispatcher.Start(dispatcherCtx)

	// Initialize services
	accountService := services.NewAccountService(accountWriteRepo, accountReadRepo, tokens, services.AdminCredentials{
		Email:        cfg.AdminEmail,
		PasswordHash: cfg.AdminPasswordHash,
	})
	ledgerService := services.NewLedgerService(accountWriteRepo, txWriteRepo, txManager, dispatcher, kafkaWriter)
	reportService := services.NewReportService(accountReadRepo, txReadRepo)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware)
	r.Use(middlewares.MetricsMiddleware)

	r.Get("/health", handlers.NewHealthHandler(db))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/register", handlers.NewRegisterHandler(accountService))
		r.Post("/login", handlers.NewLoginHandler(accountService))

		// Account holder routes
		r.Group(func(r chi.Router) {
			r.Use(middlewares.AuthMiddleware(tokens))
			r.Use(middlewares.RequireRole(jwt.RoleUser))
			r.Get("/accounts/me", handlers.NewAccountHandler(accountService, tokens))
			r.Post("/accounts/me/deposit", handlers.NewDepositHandler(ledgerService, tokens))
			r.Post("/accounts/me/withdraw", handlers.NewWithdrawHandler(ledgerService, tokens))
			r.Post("/accounts/me/transfer", handlers.NewTransferHandler(ledgerService, tokens))
			r.Get("/accounts/me/recipients", handlers.NewRecipientsHandler(accountService, tokens))
			r.Get("/accounts/me/transactions", handlers.NewTransactionsHandler(reportService, tokens))
			r.Get("/accounts/me/report", handlers.NewReportHandler(reportService, tokens))
			r.Post("/accounts/me/alerts/check", handlers.NewAlertCheckHandler(accountService, alertService, tokens))
		})

		// Administrator routes
		r.Group(func(r chi.Router) {
			r.Use(middlewares.AuthMiddleware(tokens))
			r.Use(middlewares.RequireRole(jwt.RoleAdmin))
			r.Get("/admin/accounts", handlers.NewAdminAccountsHandler(accountService, tokens))
			r.Get("/admin/transactions", handlers.NewAdminTransactionsHandler(reportService, tokens))
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.AppHost, cfg.AppPort)),
	))

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		log.Infof("HTTP server listening on %s:%s", cfg.AppHost, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		dispatcher.Stop()
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown error", "error", err)
	}

	// Pending alerts are delivered after the last request has committed.
	dispatcher.Stop()

	log.Info("HTTP server stopped gracefully")
	return nil
}
