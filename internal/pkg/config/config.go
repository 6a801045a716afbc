package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/KelluuhShit/loan-mpesa/internal/pkg/logger"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-level config
type ServerConfig struct {
	Port                     int      `yaml:"port"`
	ReadHeaderTimeoutSeconds int      `yaml:"read_header_timeout_seconds"`
	AllowedOrigins           []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	LogLevel string `yaml:"level"`
}

// MongoDB connection config
type MongoConfig struct {
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	URI             string        `yaml:"uri"`
	DBName          string        `yaml:"db_name"`
	MaxPoolSize     uint64        `yaml:"max_pool_size"`
	MinPoolSize     uint64        `yaml:"min_pool_size"`
	MaxConnIdleTime time.Duration `yaml:"-"`
	ConnectTimeout  time.Duration `yaml:"-"`
}

// Redis connection config
type RedisConfig struct {
	Addr           string        `yaml:"addr"`
	Password       string        `yaml:"password"`
	DB             int           `yaml:"db"`
	EnableTLS      bool          `yaml:"enable_tls"`
	ConnectTimeout time.Duration `yaml:"-"`
	CertContent    string        `yaml:"cert_content"`
}

// Kafka producer config for payment status events
type KafkaConfig struct {
	Server            string `yaml:"server"`
	PaymentEventTopic string `yaml:"payment_event_topic"`
	SecurityProtocol  string `yaml:"security_protocol"`
	SASLMechanism     string `yaml:"sasl_mechanism"`
	SASLUsername      string `yaml:"sasl_username"`
	SASLPassword      string `yaml:"sasl_password"`
	ClientID          string `yaml:"client_id"`
}

type PubSubConfig struct {
	ProjectID         string `yaml:"project_id"`
	NotificationTopic string `yaml:"notification_topic"`
}

type GCSConfig struct {
	BucketName string `yaml:"bucket_name"`
	FolderName string `yaml:"folder_name"`
}

type OtelConfig struct {
	ServiceName  string `yaml:"service_name"`
	CollectorURL string `yaml:"collector_url"`
}

// GatewayConfig holds the STK push provider endpoints
type GatewayConfig struct {
	InitiateURL            string        `yaml:"initiate_url"`
	StatusURL              string        `yaml:"status_url"`
	APIKey                 string        `yaml:"api_key"`
	InitiateTimeoutSeconds int           `yaml:"initiate_timeout_seconds"`
	StatusTimeoutSeconds   int           `yaml:"status_timeout_seconds"`
	InitiateTimeout        time.Duration `yaml:"-"`
	StatusTimeout          time.Duration `yaml:"-"`
}

// PaymentConfig drives the confirmation polling loop
type PaymentConfig struct {
	PollIntervalSeconds     int           `yaml:"poll_interval_seconds"`
	MaxPollDurationSeconds  int           `yaml:"max_poll_duration_seconds"`
	TransientErrorThreshold int           `yaml:"transient_error_threshold"`
	SessionTTLMinutes       int           `yaml:"session_ttl_minutes"`
	PollInterval            time.Duration `yaml:"-"`
	MaxPollDuration         time.Duration `yaml:"-"`
	SessionTTL              time.Duration `yaml:"-"`
}

type FeeTierConfig struct {
	Min int64 `yaml:"min"`
	Max int64 `yaml:"max"`
	Fee int64 `yaml:"fee"`
}

type LoanConfig struct {
	Limit         int64           `yaml:"limit"`
	Minimum       int64           `yaml:"minimum"`
	Step          int64           `yaml:"step"`
	RepaymentDays int             `yaml:"repayment_days"`
	FeeTiers      []FeeTierConfig `yaml:"fee_tiers"`
}

type WorkerConfig struct {
	PoolSize int `yaml:"pool_size"`
}

// AppConfig is the main config struct that holds all configs
type AppConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LogConfig     `yaml:"logging"`
	Mongo   MongoConfig   `yaml:"mongo"`
	Redis   RedisConfig   `yaml:"redis"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	PubSub  PubSubConfig  `yaml:"pubsub"`
	GCS     GCSConfig     `yaml:"gcs"`
	Otel    OtelConfig    `yaml:"otel"`
	Gateway GatewayConfig `yaml:"gateway"`
	Payment PaymentConfig `yaml:"payment"`
	Loan    LoanConfig    `yaml:"loan"`
	Worker  WorkerConfig  `yaml:"worker"`
}

// DefaultFeeTiers is the per-tier service fee table used when none is configured.
func DefaultFeeTiers() []FeeTierConfig {
	return []FeeTierConfig{
		{Min: 1000, Max: 5000, Fee: 1},
		{Min: 5500, Max: 10000, Fee: 150},
		{Min: 10500, Max: 20000, Fee: 250},
		{Min: 20500, Max: 27000, Fee: 350},
	}
}

func assignDefaultConfigValues(cfg *AppConfig) *AppConfig {

	// server config defaults
	cfg.Server.Port = GetEnvOrDefaultAsInt("SERVER_PORT", intOr(cfg.Server.Port, 8080))
	cfg.Server.ReadHeaderTimeoutSeconds = GetEnvOrDefaultAsInt("SERVER_READ_HEADER_TIMEOUT_SECONDS",
		intOr(cfg.Server.ReadHeaderTimeoutSeconds, 5))
	if origins := GetEnvOrDefaultAsString("SERVER_ALLOWED_ORIGINS", ""); origins != "" {
		cfg.Server.AllowedOrigins = strings.Split(origins, ",")
	}

	// log config defaults
	cfg.Logging.LogLevel = GetEnvOrDefaultAsString("LOGGING_LEVEL", stringOr(cfg.Logging.LogLevel, "info"))

	// MongoDB config defaults
	cfg.Mongo.URI = GetEnvOrDefaultAsString("MONGO_URI", cfg.Mongo.URI)
	cfg.Mongo.DBName = GetEnvOrDefaultAsString("MONGO_DB_NAME", cfg.Mongo.DBName)
	cfg.Mongo.Username = GetEnvOrDefaultAsString("MONGO_USERNAME", cfg.Mongo.Username)
	cfg.Mongo.Password = GetEnvOrDefaultAsString("MONGO_PASSWORD", cfg.Mongo.Password)
	cfg.Mongo.MaxPoolSize = GetEnvOrDefaultAsUint64("MONGO_MAX_POOL_SIZE", cfg.Mongo.MaxPoolSize)
	cfg.Mongo.MinPoolSize = GetEnvOrDefaultAsUint64("MONGO_MIN_POOL_SIZE", cfg.Mongo.MinPoolSize)
	cfg.Mongo.MaxConnIdleTime = time.Duration(GetEnvOrDefaultAsInt("MONGO_MAX_CONN_IDLE_MINUTES", 30)) * time.Minute
	cfg.Mongo.ConnectTimeout = time.Duration(GetEnvOrDefaultAsInt("MONGO_CONNECT_TIMEOUT_SECONDS", 10)) * time.Second

	// Redis config defaults
	cfg.Redis.Addr = GetEnvOrDefaultAsString("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = GetEnvOrDefaultAsString("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = GetEnvOrDefaultAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.EnableTLS = cfg.Redis.EnableTLS || GetEnvOrDefaultAsInt("REDIS_ENABLE_TLS", 0) == 1
	cfg.Redis.ConnectTimeout = time.Duration(GetEnvOrDefaultAsInt("REDIS_CONNECT_TIMEOUT_SECONDS", 10)) * time.Second
	cfg.Redis.CertContent = GetEnvOrDefaultAsString("REDIS_TLS_CERT", cfg.Redis.CertContent)

	// Kafka config defaults
	cfg.Kafka.Server = GetEnvOrDefaultAsString("KAFKA_SERVER", cfg.Kafka.Server)
	cfg.Kafka.PaymentEventTopic = GetEnvOrDefaultAsString("KAFKA_PAYMENT_EVENT_TOPIC", cfg.Kafka.PaymentEventTopic)
	cfg.Kafka.SecurityProtocol = GetEnvOrDefaultAsString("KAFKA_SECURITY_PROTOCOL", cfg.Kafka.SecurityProtocol)
	cfg.Kafka.SASLMechanism = GetEnvOrDefaultAsString("KAFKA_SASL_MECHANISM", cfg.Kafka.SASLMechanism)
	cfg.Kafka.SASLUsername = GetEnvOrDefaultAsString("KAFKA_SASL_USERNAME", cfg.Kafka.SASLUsername)
	cfg.Kafka.SASLPassword = GetEnvOrDefaultAsString("KAFKA_SASL_PASSWORD", cfg.Kafka.SASLPassword)
	cfg.Kafka.ClientID = GetEnvOrDefaultAsString("KAFKA_CLIENT_ID", stringOr(cfg.Kafka.ClientID, "loan-mpesa"))

	// PubSub config defaults
	cfg.PubSub.ProjectID = GetEnvOrDefaultAsString("PROJECT_ID", cfg.PubSub.ProjectID)
	cfg.PubSub.NotificationTopic = GetEnvOrDefaultAsString("PUBSUB_NOTIFICATION_TOPIC", cfg.PubSub.NotificationTopic)

	// GCS config defaults
	cfg.GCS.BucketName = GetEnvOrDefaultAsString("GCS_BUCKET_NAME", cfg.GCS.BucketName)
	cfg.GCS.FolderName = GetEnvOrDefaultAsString("GCS_FOLDER_NAME", stringOr(cfg.GCS.FolderName, "fee-receipts"))

	// otel config defaults
	cfg.Otel.ServiceName = GetEnvOrDefaultAsString("OTEL_SERVICE_NAME", stringOr(cfg.Otel.ServiceName, "loan-mpesa"))
	cfg.Otel.CollectorURL = GetEnvOrDefaultAsString("OTEL_COLLECTOR_URL", cfg.Otel.CollectorURL)

	// gateway config defaults
	cfg.Gateway.InitiateURL = GetEnvOrDefaultAsString("GATEWAY_INITIATE_URL", cfg.Gateway.InitiateURL)
	cfg.Gateway.StatusURL = GetEnvOrDefaultAsString("GATEWAY_STATUS_URL", cfg.Gateway.StatusURL)
	cfg.Gateway.APIKey = GetEnvOrDefaultAsString("GATEWAY_API_KEY", cfg.Gateway.APIKey)
	cfg.Gateway.InitiateTimeoutSeconds = GetEnvOrDefaultAsInt("GATEWAY_INITIATE_TIMEOUT_SECONDS",
		intOr(cfg.Gateway.InitiateTimeoutSeconds, 15))
	cfg.Gateway.StatusTimeoutSeconds = GetEnvOrDefaultAsInt("GATEWAY_STATUS_TIMEOUT_SECONDS",
		intOr(cfg.Gateway.StatusTimeoutSeconds, 20))
	cfg.Gateway.InitiateTimeout = time.Duration(cfg.Gateway.InitiateTimeoutSeconds) * time.Second
	cfg.Gateway.StatusTimeout = time.Duration(cfg.Gateway.StatusTimeoutSeconds) * time.Second

	// payment polling defaults
	cfg.Payment.PollIntervalSeconds = GetEnvOrDefaultAsInt("PAYMENT_POLL_INTERVAL_SECONDS",
		intOr(cfg.Payment.PollIntervalSeconds, 10))
	cfg.Payment.MaxPollDurationSeconds = GetEnvOrDefaultAsInt("PAYMENT_MAX_POLL_DURATION_SECONDS",
		intOr(cfg.Payment.MaxPollDurationSeconds, 300))
	cfg.Payment.TransientErrorThreshold = GetEnvOrDefaultAsInt("PAYMENT_TRANSIENT_ERROR_THRESHOLD",
		intOr(cfg.Payment.TransientErrorThreshold, 3))
	cfg.Payment.SessionTTLMinutes = GetEnvOrDefaultAsInt("PAYMENT_SESSION_TTL_MINUTES",
		intOr(cfg.Payment.SessionTTLMinutes, 30))
	cfg.Payment.PollInterval = time.Duration(cfg.Payment.PollIntervalSeconds) * time.Second
	cfg.Payment.MaxPollDuration = time.Duration(cfg.Payment.MaxPollDurationSeconds) * time.Second
	cfg.Payment.SessionTTL = time.Duration(cfg.Payment.SessionTTLMinutes) * time.Minute

	// loan defaults
	cfg.Loan.Limit = int64(GetEnvOrDefaultAsInt("LOAN_LIMIT", int(int64Or(cfg.Loan.Limit, 27000))))
	cfg.Loan.Minimum = int64(GetEnvOrDefaultAsInt("LOAN_MINIMUM", int(int64Or(cfg.Loan.Minimum, 1000))))
	cfg.Loan.Step = int64(GetEnvOrDefaultAsInt("LOAN_STEP", int(int64Or(cfg.Loan.Step, 500))))
	cfg.Loan.RepaymentDays = GetEnvOrDefaultAsInt("LOAN_REPAYMENT_DAYS", intOr(cfg.Loan.RepaymentDays, 30))
	if len(cfg.Loan.FeeTiers) == 0 {
		cfg.Loan.FeeTiers = DefaultFeeTiers()
	}

	cfg.Worker.PoolSize = GetEnvOrDefaultAsInt("WORKER_POOL_SIZE", intOr(cfg.Worker.PoolSize, 4))

	return cfg
}

// LoadFromConfigFilePath loads and parses config file into AppConfig
func LoadFromConfigFilePath(configPath string) (*AppConfig, error) {

	// #nosec G304: configPath comes from the deployment environment
	data, err := os.ReadFile(configPath)
	if err != nil {
		logger.Error("Failed to read config file", err, slog.String("path", configPath))
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.Error("Failed to unmarshal config", err)
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	defaultCfg := assignDefaultConfigValues(&cfg)

	if err := validateConfig(defaultCfg); err != nil {
		logger.Error("Config validation failed", err)
		return nil, err
	}

	logger.Info("Configuration loaded successfully", slog.String("path", configPath))

	return defaultCfg, nil
}

func validateConfig(cfg *AppConfig) error {
	mongo := cfg.Mongo
	if mongo.MinPoolSize < 5 || mongo.MinPoolSize > 10 {
		return fmt.Errorf("mongo.min_pool_size must be between 5 and 10, got %d", mongo.MinPoolSize)
	}
	if mongo.MaxPoolSize < 10 || mongo.MaxPoolSize > 50 {
		return fmt.Errorf("mongo.max_pool_size must be between 10 and 50, got %d", mongo.MaxPoolSize)
	}

	gateway := cfg.Gateway
	if gateway.InitiateURL == "" || gateway.StatusURL == "" {
		return errors.New("gateway.initiate_url and gateway.status_url are required")
	}
	if gateway.InitiateTimeout < 10*time.Second || gateway.InitiateTimeout > 15*time.Second {
		return fmt.Errorf("gateway.initiate_timeout_seconds must be between 10 and 15, got %v", gateway.InitiateTimeout)
	}
	if gateway.StatusTimeout < 15*time.Second || gateway.StatusTimeout > 20*time.Second {
		return fmt.Errorf("gateway.status_timeout_seconds must be between 15 and 20, got %v", gateway.StatusTimeout)
	}

	payment := cfg.Payment
	if payment.PollInterval < 5*time.Second || payment.PollInterval > 10*time.Second {
		return fmt.Errorf("payment.poll_interval_seconds must be between 5 and 10, got %v", payment.PollInterval)
	}
	if payment.MaxPollDuration <= 0 || payment.MaxPollDuration > 5*time.Minute {
		return fmt.Errorf("payment.max_poll_duration_seconds must be between 1 and 300, got %v", payment.MaxPollDuration)
	}
	if payment.TransientErrorThreshold < 1 {
		return fmt.Errorf("payment.transient_error_threshold must be at least 1, got %d", payment.TransientErrorThreshold)
	}

	if cfg.Worker.PoolSize < 1 {
		return fmt.Errorf("worker.pool_size must be at least 1, got %d", cfg.Worker.PoolSize)
	}

	return validateLoanConfig(cfg.Loan)
}

func validateLoanConfig(loan LoanConfig) error {
	if loan.Minimum <= 0 || loan.Step <= 0 {
		return fmt.Errorf("loan.minimum and loan.step must be positive, got %d and %d", loan.Minimum, loan.Step)
	}
	if loan.Limit < loan.Minimum {
		return fmt.Errorf("loan.limit %d is below loan.minimum %d", loan.Limit, loan.Minimum)
	}

	var prevMax int64
	for i, tier := range loan.FeeTiers {
		if tier.Min > tier.Max {
			return fmt.Errorf("loan.fee_tiers[%d]: min %d is greater than max %d", i, tier.Min, tier.Max)
		}
		if i > 0 && tier.Min <= prevMax {
			return fmt.Errorf("loan.fee_tiers[%d]: overlaps previous tier ending at %d", i, prevMax)
		}
		if tier.Fee < 0 || tier.Fee >= tier.Min {
			return fmt.Errorf("loan.fee_tiers[%d]: fee %d must be non-negative and below %d", i, tier.Fee, tier.Min)
		}
		prevMax = tier.Max
	}
	return nil
}

// GetEnvOrDefaultAsInt returns the value of the given env variable
// as an int or the default value if not set or invalid.
func GetEnvOrDefaultAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return int(value)
}

// GetEnvOrDefaultAsUint64 returns the value of the env variable
// as uint64 or the default value if not set or invalid.
func GetEnvOrDefaultAsUint64(key string, defaultValue uint64) uint64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func GetEnvOrDefaultAsString(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		if strings.TrimSpace(val) != "" {
			return val
		}
	}
	return defaultVal
}

func intOr(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func int64Or(v, def int64) int64 {
	if v == 0 {
		return def
	}
	return v
}

func stringOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// LoadFromConfig loads an optional .env file and then the config file path.
func LoadFromConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded", slog.String("reason", err.Error()))
	}

	configPath := GetEnvOrDefaultAsString("CONFIG_PATH", "configs/config.yaml")

	cfg, err := LoadFromConfigFilePath(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	return cfg, nil
}
