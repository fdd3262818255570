// Package config loads process configuration from an env file and the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/txn-lifecycle/internal/rules"
)

// Components that one process can serve.
const (
	ComponentTransaction  = "transaction"
	ComponentFraud        = "fraud"
	ComponentNotification = "notification"
	ComponentGateway      = "gateway"
)

// Config aggregates application configuration values.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	JWT       JWTConfig
	GRPC      GRPCConfig
	Policy    PolicyConfig
	Services  ServicesConfig
	Reconcile ReconcileConfig
}

// AppConfig governs the HTTP server and the components it serves.
type AppConfig struct {
	Host            string
	Port            string
	LogLevel        string
	Components      []string
	ShutdownTimeout time.Duration
}

// PostgresConfig describes the record store connection.
type PostgresConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DB           string
	MaxOpenConns int
	MaxIdleConns int
}

// DSN returns the pgx connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", c.User, c.Password, c.Host, c.Port, c.DB)
}

// RedisConfig describes the idempotency key store.
type RedisConfig struct {
	Host           string
	Port           int
	DB             int
	Password       string
	PoolSize       int
	MinIdleConns   int
	InFlightTTL    time.Duration // lifetime of a reservation whose transaction is not stored yet
}

// Addr returns host:port.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// KafkaConfig configures lifecycle event publishing. Empty Brokers disables it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// JWTConfig configures operator and service tokens.
type JWTConfig struct {
	SecretKey string
	Exp       time.Duration
}

// GRPCConfig configures the gRPC health endpoint. Empty Port disables it.
type GRPCConfig struct {
	Port string
}

// PolicyConfig holds the swappable classification parameters.
type PolicyConfig struct {
	DefaultCurrency      string
	BlockedAccountMarker string
	BlockedAccounts      []string
	HighValueThreshold   decimal.Decimal
	FraudReviewThreshold decimal.Decimal
	FraudHighThreshold   decimal.Decimal
}

// Thresholds converts the policy section into rule thresholds.
func (c PolicyConfig) Thresholds() rules.Thresholds {
	return rules.Thresholds{
		Blocked:   rules.BlockedAccounts(c.BlockedAccountMarker, c.BlockedAccounts),
		HighValue: c.HighValueThreshold,
		Review:    c.FraudReviewThreshold,
		High:      c.FraudHighThreshold,
	}
}

// ServicesConfig holds base URLs the gateway uses to reach the components.
type ServicesConfig struct {
	TransactionURL  string
	FraudURL        string
	NotificationURL string
	Timeout         time.Duration
}

// ReconcileConfig schedules the reconciliation job. Zero Interval disables it.
type ReconcileConfig struct {
	Interval    time.Duration
	Concurrency int
}

// Enabled reports whether component is served by this process.
func (c Config) Enabled(component string) bool {
	for _, name := range c.App.Components {
		if name == component {
			return true
		}
	}
	return false
}

// Load reads the env file at path (missing file is ignored), then the
// environment, applying defaults.
func Load(path string) (Config, error) {
	_ = godotenv.Load(path)

	var (
		cfg Config
		err error
	)

	cfg.App = AppConfig{
		Host:     getEnv("APP_HOST", "localhost"),
		Port:     getEnv("APP_PORT", "8080"),
		LogLevel: getEnv("APP_LOG_LEVEL", "info"),
		Components: splitCSV(getEnv("APP_COMPONENTS",
			strings.Join([]string{ComponentTransaction, ComponentFraud, ComponentNotification, ComponentGateway}, ","))),
	}
	for _, c := range cfg.App.Components {
		switch c {
		case ComponentTransaction, ComponentFraud, ComponentNotification, ComponentGateway:
		default:
			return Config{}, fmt.Errorf("unknown component %q in APP_COMPONENTS", c)
		}
	}
	if cfg.App.ShutdownTimeout, err = getSeconds("APP_SHUTDOWN_TIMEOUT_SECOND", 10); err != nil {
		return Config{}, err
	}

	cfg.Postgres = PostgresConfig{
		Host:     getEnv("POSTGRES_HOST", "localhost"),
		User:     getEnv("POSTGRES_USER", "user"),
		Password: getEnv("POSTGRES_PASSWORD", "password"),
		DB:       getEnv("POSTGRES_DB", "database"),
	}
	if cfg.Postgres.Port, err = getInt("POSTGRES_PORT", 5432); err != nil {
		return Config{}, err
	}
	if cfg.Postgres.MaxOpenConns, err = getInt("POSTGRES_MAX_OPEN_CONNS", 16); err != nil {
		return Config{}, err
	}
	if cfg.Postgres.MaxIdleConns, err = getInt("POSTGRES_MAX_IDLE_CONNS", 8); err != nil {
		return Config{}, err
	}

	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Password: getEnv("REDIS_PASSWORD", ""),
	}
	if cfg.Redis.Port, err = getInt("REDIS_PORT", 6379); err != nil {
		return Config{}, err
	}
	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.Redis.PoolSize, err = getInt("REDIS_POOL_SIZE", 10); err != nil {
		return Config{}, err
	}
	if cfg.Redis.MinIdleConns, err = getInt("REDIS_MIN_IDLE_CONNS", 2); err != nil {
		return Config{}, err
	}
	if cfg.Redis.InFlightTTL, err = getSeconds("IDEMPOTENCY_INFLIGHT_TTL_SECOND", 30); err != nil {
		return Config{}, err
	}
	if cfg.Redis.InFlightTTL == 0 {
		return Config{}, fmt.Errorf("invalid IDEMPOTENCY_INFLIGHT_TTL_SECOND: must be positive")
	}

	cfg.Kafka = KafkaConfig{
		Brokers: splitCSV(getEnv("KAFKA_BROKERS", "")),
		Topic:   getEnv("KAFKA_TOPIC", "transaction-lifecycle"),
		GroupID: getEnv("KAFKA_GROUP_ID", "txn-lifecycle-gateway"),
	}

	cfg.JWT = JWTConfig{SecretKey: getEnv("JWT_SECRET_KEY", "my_super_secret_key")}
	if cfg.JWT.Exp, err = getSeconds("JWT_EXP_SECOND", 3600); err != nil {
		return Config{}, err
	}

	cfg.GRPC = GRPCConfig{Port: getEnv("GRPC_PORT", "50051")}

	cfg.Policy = PolicyConfig{
		DefaultCurrency:      getEnv("DEFAULT_CURRENCY", "USD"),
		BlockedAccountMarker: getEnv("BLOCKED_ACCOUNT_MARKER", "BLOCKED"),
		BlockedAccounts:      splitCSV(getEnv("BLOCKED_ACCOUNTS", "")),
	}
	if cfg.Policy.HighValueThreshold, err = getDecimal("HIGH_VALUE_THRESHOLD", "5000"); err != nil {
		return Config{}, err
	}
	if cfg.Policy.FraudReviewThreshold, err = getDecimal("FRAUD_REVIEW_THRESHOLD", "5000"); err != nil {
		return Config{}, err
	}
	if cfg.Policy.FraudHighThreshold, err = getDecimal("FRAUD_HIGH_THRESHOLD", "10000"); err != nil {
		return Config{}, err
	}
	if cfg.Policy.FraudHighThreshold.LessThan(cfg.Policy.FraudReviewThreshold) {
		return Config{}, fmt.Errorf("FRAUD_HIGH_THRESHOLD %s is below FRAUD_REVIEW_THRESHOLD %s",
			cfg.Policy.FraudHighThreshold, cfg.Policy.FraudReviewThreshold)
	}

	self := fmt.Sprintf("http://%s:%s", cfg.App.Host, cfg.App.Port)
	cfg.Services = ServicesConfig{
		TransactionURL:  getEnv("TRANSACTION_SERVICE_URL", self),
		FraudURL:        getEnv("FRAUD_SERVICE_URL", self),
		NotificationURL: getEnv("NOTIFICATION_SERVICE_URL", self),
	}
	if cfg.Services.Timeout, err = getSeconds("SERVICE_TIMEOUT_SECOND", 5); err != nil {
		return Config{}, err
	}

	if cfg.Reconcile.Interval, err = getSeconds("RECONCILE_INTERVAL_SECOND", 60); err != nil {
		return Config{}, err
	}
	if cfg.Reconcile.Concurrency, err = getInt("RECONCILE_CONCURRENCY", 8); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getSeconds(key string, defaultValue int) (time.Duration, error) {
	v, err := getInt(key, defaultValue)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return time.Duration(v) * time.Second, nil
}

func getDecimal(key, defaultValue string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(getEnv(key, defaultValue))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
