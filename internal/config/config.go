// Package config provides configuration for the second brain backend:
// environment variables first, optionally overlaid by a YAML file, with
// hot reloading in development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment names the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// Config is the full server configuration.
type Config struct {
	Environment Environment `yaml:"environment"`
	Port        int         `yaml:"port"`
	JWTSecret   string      `yaml:"jwtSecret"`

	AllowedOrigins []string `yaml:"allowedOrigins"`

	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	DynamoDB DynamoDBConfig `yaml:"dynamodb"`
	Blob     BlobConfig     `yaml:"blob"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Chunk    ChunkConfig    `yaml:"chunk"`
}

// DynamoDBConfig points at the note table.
type DynamoDBConfig struct {
	TableName string `yaml:"tableName"`
	IndexName string `yaml:"indexName"`
	Endpoint  string `yaml:"endpoint"` // non-empty for local development
	Region    string `yaml:"region"`
}

// BlobConfig configures the S3-compatible object store holding offloaded
// note content and canvas connection lists.
type BlobConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"useSSL"`
	PublicURL string `yaml:"publicUrl"`
}

// RedisConfig configures the optional listing cache. An empty Addr
// disables caching.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AIConfig configures the completion provider. An empty APIKey selects
// the canned mock provider.
type AIConfig struct {
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseUrl"`
	Model   string `yaml:"model"`
}

// ChunkConfig sets the inline content ceiling.
type ChunkConfig struct {
	Ceiling int `yaml:"ceiling"`
}

// Load reads configuration from the environment, then overlays the YAML
// file named by CONFIG_FILE when present.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:     Environment(getEnv("ENVIRONMENT", string(Development))),
		Port:            getEnvInt("PORT", 8080),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		AllowedOrigins:  []string{getEnv("ALLOWED_ORIGIN", "*")},
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		DynamoDB: DynamoDBConfig{
			TableName: getEnv("DYNAMODB_TABLE", "secondbrain-dev"),
			IndexName: getEnv("DYNAMODB_INDEX", "GSI1"),
			Endpoint:  os.Getenv("DYNAMODB_ENDPOINT"),
			Region:    getEnv("AWS_REGION", "us-east-1"),
		},
		Blob: BlobConfig{
			Endpoint:  getEnv("BLOB_ENDPOINT", "localhost:9000"),
			AccessKey: os.Getenv("BLOB_ACCESS_KEY"),
			SecretKey: os.Getenv("BLOB_SECRET_KEY"),
			Bucket:    getEnv("BLOB_BUCKET", "secondbrain-content"),
			UseSSL:    os.Getenv("BLOB_USE_SSL") == "true",
			PublicURL: os.Getenv("BLOB_PUBLIC_URL"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		AI: AIConfig{
			APIKey:  os.Getenv("AI_API_KEY"),
			BaseURL: os.Getenv("AI_BASE_URL"),
			Model:   os.Getenv("AI_MODEL"),
		},
		Chunk: ChunkConfig{
			Ceiling: getEnvInt("CHUNK_CEILING", 700),
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := overlayFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Chunk.Ceiling <= 0 {
		return fmt.Errorf("chunk ceiling must be positive, got %d", c.Chunk.Ceiling)
	}
	if c.DynamoDB.TableName == "" {
		return fmt.Errorf("dynamodb table name is required")
	}
	if c.Blob.Bucket == "" {
		return fmt.Errorf("blob bucket is required")
	}
	return nil
}

// IsDevelopment reports whether hot reloading and other development
// conveniences should be enabled.
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

func overlayFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
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
