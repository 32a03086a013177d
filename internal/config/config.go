package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// DebugModeEnv is the environment variable for debug mode.
	DebugModeEnv = "DEBUG_MODE"

	// LogLevelEnv is the environment variable for the minimum log level.
	LogLevelEnv = "LOG_LEVEL"

	// APIBaseURLEnv is the environment variable for the catalog backend base URL.
	APIBaseURLEnv = "API_BASE_URL"

	// APIResourceEnv is the environment variable for the products resource path.
	APIResourceEnv = "API_RESOURCE"

	// StoreDriverEnv selects the backend store: memory or postgres.
	StoreDriverEnv = "STORE_DRIVER"

	// DBHostEnv is the environment variable for database host.
	DBHostEnv = "DB_HOST"

	// DBPortEnv is the environment variable for database port.
	DBPortEnv = "DB_PORT"

	// DBUserEnv is the environment variable for database user.
	DBUserEnv = "DB_USER"

	// DBPassEnv is the environment variable for database password.
	DBPassEnv = "DB_PASS"

	// DBNameEnv is the environment variable for database name.
	DBNameEnv = "DB_NAME"

	// HTTPServerPortEnv is the environment variable for HTTP server port.
	HTTPServerPortEnv = "HTTP_SERVER_PORT"

	// MetricsServerPortEnv is the environment variable for metrics server port.
	MetricsServerPortEnv = "METRICS_SERVER_PORT"

	// EnvFilePath is the environment variable for .env file path (only for local/test environment).
	EnvFilePath = "ENV_PATH"

	// DefaultEnvFilePath is the default path to the .env file.
	DefaultEnvFilePath = ".env"

	// AWSRegionEnv is the environment variable for AWS region.
	AWSRegionEnv = "AWS_REGION"

	// AWSEndpointEnv is the environment variable for AWS endpoint.
	AWSEndpointEnv = "AWS_ENDPOINT"

	// SQSQueueURLEnv is the environment variable for SQS queue URL.
	SQSQueueURLEnv = "SQS_QUEUE_URL"
)

const (
	// DefaultAPIBaseURL is where the catalog backend listens in local development.
	DefaultAPIBaseURL = "http://localhost:3000"

	// DefaultAPIResource is the products resource path.
	DefaultAPIResource = "prodotti"

	// DefaultHTTPServerPort is the stand-in backend port.
	DefaultHTTPServerPort = "3000"

	// StoreDriverMemory keeps products in process memory.
	StoreDriverMemory = "memory"

	// StoreDriverPostgres keeps products in PostgreSQL.
	StoreDriverPostgres = "postgres"
)

var (
	// ErrMissingConfig is returned when required configuration values are missing.
	ErrMissingConfig = errors.New("missing config data")
)

// ClientConfig represents the catalog client configuration.
type ClientConfig struct {
	DebugMode bool
	LogLevel  string
	API       API
	AWS       AWSConfig
}

// ServerConfig represents the stand-in backend configuration.
type ServerConfig struct {
	DebugMode     bool
	LogLevel      string
	StoreDriver   string
	Database      DB
	HTTPServer    Server
	MetricsServer Server
	AWS           AWSConfig
}

// API represents the location of the products REST resource.
type API struct {
	BaseURL  string
	Resource string
}

// AWSConfig represents AWS-specific configuration settings.
type AWSConfig struct {
	Region      string
	Endpoint    string
	SQSQueueURL string
}

// Enabled reports whether an SQS queue is configured.
func (a AWSConfig) Enabled() bool {
	return a.SQSQueueURL != ""
}

// DB represents database configuration settings.
type DB struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
}

// Server represents server configuration settings.
type Server struct {
	Port string
}

func allNonEmpty(keyValues map[string]string) error {
	for key, value := range keyValues {
		if value == "" {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("error", "value is empty"))
			return fmt.Errorf("%w for key: %s", ErrMissingConfig, key)
		}
	}
	return nil
}

func allNumbers(keyValues map[string]string) error {
	for key, value := range keyValues {
		_, err := strconv.Atoi(value)
		if err != nil {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("value", value), slog.String("error", err.Error()))
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
	}
	return nil
}

func (c *ClientConfig) validate() error {
	if err := allNonEmpty(map[string]string{
		APIBaseURLEnv:  c.API.BaseURL,
		APIResourceEnv: c.API.Resource,
	}); err != nil {
		return fmt.Errorf("API configuration incomplete: %w", err)
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", APIBaseURLEnv, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s: scheme must be http or https, got %q", APIBaseURLEnv, u.Scheme)
	}

	return nil
}

func (c *ServerConfig) validate() error {
	if err := allNonEmpty(map[string]string{
		HTTPServerPortEnv: c.HTTPServer.Port,
	}); err != nil {
		return fmt.Errorf("server port configuration incomplete: %w", err)
	}

	ports := map[string]string{
		HTTPServerPortEnv: c.HTTPServer.Port,
	}
	if c.MetricsServer.Port != "" {
		ports[MetricsServerPortEnv] = c.MetricsServer.Port
	}

	switch c.StoreDriver {
	case StoreDriverMemory:
	case StoreDriverPostgres:
		if err := allNonEmpty(map[string]string{
			DBHostEnv: c.Database.Host,
			DBUserEnv: c.Database.User,
			DBNameEnv: c.Database.Name,
		}); err != nil {
			return fmt.Errorf("database configuration incomplete: %w", err)
		}
		ports[DBPortEnv] = c.Database.Port
	default:
		return fmt.Errorf("invalid %s: %q (want %s or %s)", StoreDriverEnv, c.StoreDriver, StoreDriverMemory, StoreDriverPostgres)
	}

	if err := allNumbers(ports); err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}

	return nil
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if val, err := strconv.ParseBool(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnv(name, defaultValue string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}
	return defaultValue
}

func logLevel(debug bool) string {
	if debug {
		return "debug"
	}
	return getEnv(LogLevelEnv, "info")
}

// ApplyEnvFile loads environment variables from the specified .env files.
func ApplyEnvFile(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

func applyDefaultEnvFile() {
	envPath := os.Getenv(EnvFilePath)
	if envPath == "" {
		envPath = DefaultEnvFilePath
	}
	if err := ApplyEnvFile(envPath); err != nil {
		// just log the error, maybe all envs are set in another way
		slog.Info("failed to load from .env", slog.Any("err", err))
	}
}

func loadAWS() AWSConfig {
	return AWSConfig{
		Region:      os.Getenv(AWSRegionEnv),
		Endpoint:    os.Getenv(AWSEndpointEnv),
		SQSQueueURL: os.Getenv(SQSQueueURLEnv),
	}
}

// LoadClientFromEnv loads the catalog client configuration from environment variables and validates it.
func LoadClientFromEnv() (*ClientConfig, error) {
	applyDefaultEnvFile()

	debug := getEnvAsBool(DebugModeEnv, false)
	conf := &ClientConfig{
		DebugMode: debug,
		LogLevel:  logLevel(debug),
		API: API{
			BaseURL:  strings.TrimRight(getEnv(APIBaseURLEnv, DefaultAPIBaseURL), "/"),
			Resource: strings.Trim(getEnv(APIResourceEnv, DefaultAPIResource), "/"),
		},
		AWS: loadAWS(),
	}

	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}

// LoadServerFromEnv loads the stand-in backend configuration from environment variables and validates it.
func LoadServerFromEnv() (*ServerConfig, error) {
	applyDefaultEnvFile()

	debug := getEnvAsBool(DebugModeEnv, false)
	conf := &ServerConfig{
		DebugMode:   debug,
		LogLevel:    logLevel(debug),
		StoreDriver: strings.ToLower(getEnv(StoreDriverEnv, StoreDriverMemory)),
		Database: DB{
			Host:     os.Getenv(DBHostEnv),
			User:     os.Getenv(DBUserEnv),
			Password: os.Getenv(DBPassEnv),
			Name:     os.Getenv(DBNameEnv),
			Port:     getEnv(DBPortEnv, "5432"),
		},
		HTTPServer: Server{
			Port: getEnv(HTTPServerPortEnv, DefaultHTTPServerPort),
		},
		MetricsServer: Server{
			Port: os.Getenv(MetricsServerPortEnv),
		},
		AWS: loadAWS(),
	}

	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}
