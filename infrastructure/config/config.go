package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverDynamoDB = "dynamodb"
	DriverSupabase = "supabase"
	DriverNone     = "none"
)

// Trace exporters
const (
	TracingNone   = "none"
	TracingStdout = "stdout"
	TracingOTLP   = "otlp"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"serverAddress"`
	Environment   string `yaml:"environment"`
	LogLevel      string `yaml:"logLevel"`

	// Storage drivers
	KVDriver          string `yaml:"kvDriver"`
	SQLitePath        string `yaml:"sqlitePath"`
	CatalogDriver     string `yaml:"catalogDriver"`
	ObjectStoreDriver string `yaml:"objectStoreDriver"`
	PublicBaseURL     string `yaml:"publicBaseUrl"`

	// AWS configuration
	AWSRegion    string `yaml:"awsRegion"`
	TableName    string `yaml:"tableName"`
	EventBusName string `yaml:"eventBusName"`

	// Supabase configuration
	SupabaseURL    string `yaml:"supabaseUrl"`
	SupabaseKey    string `yaml:"supabaseKey"`
	SupabaseBucket string `yaml:"supabaseBucket"`
	SupabaseTable  string `yaml:"supabaseTable"`

	// Uploads
	UploadTimeout  time.Duration `yaml:"uploadTimeout"`
	MaxUploadBytes int64         `yaml:"maxUploadBytes"`

	// Interaction ledger
	CleanupSchedule string `yaml:"cleanupSchedule"`
	Timezone        string `yaml:"timezone"`

	// Tracing
	TracingExporter string  `yaml:"tracingExporter"`
	OTLPEndpoint    string  `yaml:"otlpEndpoint"`
	TraceSampleRate float64 `yaml:"traceSampleRate"`

	// Feature flags
	EnableMetrics bool `yaml:"enableMetrics"`
	EnableCORS    bool `yaml:"enableCors"`

	// ConfigFile is the YAML file the configuration was overlaid with, if any
	ConfigFile string `yaml:"-"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		ServerAddress:     ":8080",
		Environment:       "development",
		LogLevel:          "info",
		KVDriver:          DriverMemory,
		SQLitePath:        "memebase.db",
		CatalogDriver:     DriverMemory,
		ObjectStoreDriver: DriverMemory,
		PublicBaseURL:     "http://localhost:8080/images",
		AWSRegion:         "us-west-2",
		TableName:         "memebase",
		SupabaseBucket:    "memes",
		SupabaseTable:     "memes",
		UploadTimeout:     30 * time.Second,
		MaxUploadBytes:    10 * 1024 * 1024,
		CleanupSchedule:   "@daily",
		Timezone:          "Local",
		TracingExporter:   TracingNone,
		TraceSampleRate:   1,
		EnableMetrics:     true,
		EnableCORS:        true,
	}
}

// LoadConfig builds the configuration from defaults, the optional YAML file
// named by CONFIG_FILE and environment variables, in increasing priority.
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
		cfg.ConfigFile = path
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadFile parses a YAML configuration file on top of the defaults, without
// environment overrides
func ReadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.overlayFile(path); err != nil {
		return nil, err
	}
	cfg.ConfigFile = path
	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.KVDriver = strings.ToLower(getEnv("KV_DRIVER", c.KVDriver))
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)
	c.CatalogDriver = strings.ToLower(getEnv("CATALOG_DRIVER", c.CatalogDriver))
	c.ObjectStoreDriver = strings.ToLower(getEnv("OBJECT_STORE_DRIVER", c.ObjectStoreDriver))
	c.PublicBaseURL = getEnv("PUBLIC_BASE_URL", c.PublicBaseURL)

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.TableName = getEnv("TABLE_NAME", c.TableName)
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)

	c.SupabaseURL = getEnv("SUPABASE_URL", c.SupabaseURL)
	c.SupabaseKey = getEnv("SUPABASE_KEY", c.SupabaseKey)
	c.SupabaseBucket = getEnv("SUPABASE_BUCKET", c.SupabaseBucket)
	c.SupabaseTable = getEnv("SUPABASE_TABLE", c.SupabaseTable)

	c.UploadTimeout = getEnvDuration("UPLOAD_TIMEOUT", c.UploadTimeout)
	c.MaxUploadBytes = getEnvInt64("MAX_UPLOAD_BYTES", c.MaxUploadBytes)

	c.CleanupSchedule = getEnv("CLEANUP_SCHEDULE", c.CleanupSchedule)
	c.Timezone = getEnv("TIMEZONE", c.Timezone)

	c.TracingExporter = strings.ToLower(getEnv("TRACING_EXPORTER", c.TracingExporter))
	c.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTLPEndpoint)
	c.TraceSampleRate = getEnvFloat("TRACE_SAMPLE_RATE", c.TraceSampleRate)

	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
}

// Validate checks that the selected drivers have what they need
func (c *Config) Validate() error {
	switch c.KVDriver {
	case DriverMemory, DriverDynamoDB:
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite key-value driver")
		}
	default:
		return fmt.Errorf("unknown KV_DRIVER %q", c.KVDriver)
	}

	switch c.CatalogDriver {
	case DriverMemory, DriverDynamoDB, DriverSupabase:
	default:
		return fmt.Errorf("unknown CATALOG_DRIVER %q", c.CatalogDriver)
	}

	switch c.ObjectStoreDriver {
	case DriverMemory, DriverSupabase, DriverNone:
	default:
		return fmt.Errorf("unknown OBJECT_STORE_DRIVER %q", c.ObjectStoreDriver)
	}

	switch c.TracingExporter {
	case TracingNone, TracingStdout, TracingOTLP:
	default:
		return fmt.Errorf("unknown TRACING_EXPORTER %q", c.TracingExporter)
	}
	if c.TraceSampleRate < 0 || c.TraceSampleRate > 1 {
		return fmt.Errorf("TRACE_SAMPLE_RATE must be between 0 and 1")
	}

	if c.usesSupabase() && (c.SupabaseURL == "" || c.SupabaseKey == "") {
		return fmt.Errorf("SUPABASE_URL and SUPABASE_KEY are required for the supabase drivers")
	}
	if (c.KVDriver == DriverDynamoDB || c.CatalogDriver == DriverDynamoDB) && c.TableName == "" {
		return fmt.Errorf("TABLE_NAME is required for the dynamodb drivers")
	}
	if c.UploadTimeout <= 0 {
		return fmt.Errorf("UPLOAD_TIMEOUT must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the time zone week buckets are computed in
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// UsesAWS reports whether any driver talks to AWS
func (c *Config) UsesAWS() bool {
	return c.KVDriver == DriverDynamoDB || c.CatalogDriver == DriverDynamoDB || c.EventBusName != ""
}

func (c *Config) usesSupabase() bool {
	return c.CatalogDriver == DriverSupabase || c.ObjectStoreDriver == DriverSupabase
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt64 gets an integer environment variable with a default value
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable ("30s", "1m") with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
