package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/bibbank/creditrisk/pkg/kafka"
	"github.com/bibbank/creditrisk/pkg/postgres"
)

// Estimator modes.
const (
	EstimatorLocal  = "local"
	EstimatorRemote = "remote"
	EstimatorStub   = "stub"
)

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
}

// Postgres converts to the shared pool configuration.
func (d DatabaseConfig) Postgres() postgres.Config {
	return postgres.Config{
		URL:      d.URL,
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		Database: d.Name,
		SSLMode:  d.SSLMode,
		MaxConns: int32(d.MaxConns),

		ApplicationName: "creditd",
	}
}

type KafkaConfig struct {
	Brokers       []string
	Topic         string
	TLS           bool
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string
}

// Client converts to the shared Kafka configuration.
func (k KafkaConfig) Client() kafka.Config {
	return kafka.Config{
		Brokers:       k.Brokers,
		TLS:           k.TLS,
		SASLEnabled:   k.SASLUsername != "",
		SASLMechanism: k.SASLMechanism,
		SASLUsername:  k.SASLUsername,
		SASLPassword:  k.SASLPassword,
	}
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type EstimatorConfig struct {
	Mode            string
	ModelPath       string
	URL             string
	CAFile          string
	Timeout         time.Duration
	RPS             float64
	MaxRetries      int
	StubProbability float64
}

type AuthConfig struct {
	JWTSecret    string
	JWTPublicKey string
	JWTIssuer    string
	JWTAudience  string
}

type Config struct {
	ServiceName      string
	Environment      string
	LogLevel         string
	LogFormat        string
	GRPCPort         int
	HTTPPort         int
	GRPCReflection   bool
	GRPCTLSCertFile  string
	GRPCTLSKeyFile   string
	HTTPRateLimitRPS float64
	HTTPRateBurst    int
	PolicyFile       string
	OTLPEndpoint     string
	DB               DatabaseConfig
	Kafka            KafkaConfig
	Redis            RedisConfig
	Estimator        EstimatorConfig
	Auth             AuthConfig
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Config{
		ServiceName:      "credit-service",
		Environment:      getEnv("ENVIRONMENT", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		GRPCPort:         getEnvInt("GRPC_PORT", 8091),
		HTTPPort:         getEnvInt("HTTP_PORT", 9091),
		GRPCReflection:   getEnvBool("GRPC_REFLECTION", false),
		GRPCTLSCertFile:  getEnv("GRPC_TLS_CERT_FILE", ""),
		GRPCTLSKeyFile:   getEnv("GRPC_TLS_KEY_FILE", ""),
		HTTPRateLimitRPS: getEnvFloat("HTTP_RATE_LIMIT_RPS", 50),
		HTTPRateBurst:    getEnvInt("HTTP_RATE_LIMIT_BURST", 100),
		PolicyFile:       getEnv("ENGINE_POLICY_FILE", ""),
		OTLPEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		DB: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "credit"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "creditrisk"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			Topic:         getEnv("KAFKA_TOPIC", "credit.assessment.events"),
			TLS:           getEnvBool("KAFKA_TLS", false),
			SASLMechanism: getEnv("KAFKA_SASL_MECHANISM", ""),
			SASLUsername:  getEnv("KAFKA_SASL_USERNAME", ""),
			SASLPassword:  getEnv("KAFKA_SASL_PASSWORD", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("CACHE_TTL", 15*time.Minute),
		},
		Estimator: EstimatorConfig{
			Mode:            strings.ToLower(getEnv("ESTIMATOR_MODE", EstimatorLocal)),
			ModelPath:       getEnv("MODEL_PATH", ""),
			URL:             getEnv("ESTIMATOR_URL", ""),
			CAFile:          getEnv("ESTIMATOR_CA_FILE", ""),
			Timeout:         getEnvDuration("ESTIMATOR_TIMEOUT", 0),
			RPS:             getEnvFloat("ESTIMATOR_RPS", 20),
			MaxRetries:      getEnvInt("ESTIMATOR_MAX_RETRIES", 0),
			StubProbability: getEnvFloat("ESTIMATOR_STUB_PROBABILITY", 0.2),
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("JWT_SECRET", ""),
			JWTPublicKey: getEnv("JWT_PUBLIC_KEY", ""),
			JWTIssuer:    getEnv("JWT_ISSUER", "bib-identity"),
			JWTAudience:  getEnv("JWT_AUDIENCE", ""),
		},
	}

	if path := getEnv("JWT_PUBLIC_KEY_FILE", ""); path != "" && cfg.Auth.JWTPublicKey == "" {
		pem, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read JWT_PUBLIC_KEY_FILE: %w", err)
		}
		cfg.Auth.JWTPublicKey = string(pem)
	}

	return cfg, cfg.Validate()
}

// Validate checks the settings that have no safe default.
func (c Config) Validate() error {
	var problems []string
	if c.DB.URL == "" && c.DB.Password == "" {
		problems = append(problems, "DATABASE_URL or DB_PASSWORD is required")
	}
	if c.Auth.JWTSecret == "" && c.Auth.JWTPublicKey == "" {
		problems = append(problems, "JWT_SECRET or JWT_PUBLIC_KEY is required")
	}
	switch c.Estimator.Mode {
	case EstimatorLocal, EstimatorStub:
	case EstimatorRemote:
		if c.Estimator.URL == "" {
			problems = append(problems, "ESTIMATOR_URL is required when ESTIMATOR_MODE=remote")
		}
	default:
		problems = append(problems, fmt.Sprintf("ESTIMATOR_MODE must be local, remote or stub, got %q", c.Estimator.Mode))
	}
	if c.Estimator.MaxRetries < 0 {
		problems = append(problems, "ESTIMATOR_MAX_RETRIES must not be negative")
	}
	if (c.GRPCTLSCertFile == "") != (c.GRPCTLSKeyFile == "") {
		problems = append(problems, "GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE must be set together")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
