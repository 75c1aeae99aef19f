package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Clamd    ClamdConfig    `mapstructure:"clamd"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port            int           `mapstructure:"port"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	InternalSecret  string        `mapstructure:"internal_secret"`
	FrontendBaseURL string        `mapstructure:"frontend_base_url"`
	PreviewScale    float64       `mapstructure:"preview_scale"`
	PreviewWidth    float64       `mapstructure:"preview_width"`
	PageCacheTTL    time.Duration `mapstructure:"page_cache_ttl"`
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig 包含 Redis 连接配置。
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Bucket          string `mapstructure:"bucket"`
}

// AuthConfig 管理后台会话设置。
type AuthConfig struct {
	SessionSecret  string        `mapstructure:"session_secret"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	LoginRateLimit int           `mapstructure:"login_rate_limit"`
}

// ClamdConfig 为空地址时跳过上传扫描。
type ClamdConfig struct {
	Address string `mapstructure:"address"`
}

// WorkerConfig 配置 asynq worker。
type WorkerConfig struct {
	Concurrency        int    `mapstructure:"concurrency"`
	InternalAPIBaseURL string `mapstructure:"internal_api_base_url"`
	// MetricsAddr 为空时不暴露 worker 指标。
	MetricsAddr        string `mapstructure:"metrics_addr"`
}

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// Addr 返回 host:port 形式的地址。
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Load reads configuration solely from environment variables (with optional defaults).
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := validate(*cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabase 只读取并校验数据库配置，供运维命令使用。
func LoadDatabase() (DatabaseConfig, error) {
	cfg, err := read()
	if err != nil {
		return DatabaseConfig{}, err
	}
	if err := validateDatabase(cfg.Database); err != nil {
		return DatabaseConfig{}, err
	}
	return cfg.Database, nil
}

func read() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.API.AllowedOrigins = splitOrigins(cfg.API.AllowedOrigins)
	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.allowed_origins", "http://localhost:5173")
	v.SetDefault("api.frontend_base_url", "http://localhost:5173")
	v.SetDefault("api.preview_scale", 0.5)
	v.SetDefault("api.preview_width", 1200)
	v.SetDefault("api.page_cache_ttl", "30s")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "phportfolio")
	v.SetDefault("database.user", "phportfolio")
	v.SetDefault("database.password", "phportfolio")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "portfolio")
	v.SetDefault("auth.session_ttl", "12h")
	v.SetDefault("auth.login_rate_limit", 20)
	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.internal_api_base_url", "http://localhost:8080")
	v.SetDefault("worker.metrics_addr", ":9091")
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                     "API_PORT",
		"api.allowed_origins":          "API_ALLOWED_ORIGINS",
		"api.internal_secret":          "INTERNAL_API_SECRET",
		"api.frontend_base_url":        "FRONTEND_BASE_URL",
		"api.preview_scale":            "PREVIEW_SCALE",
		"api.preview_width":            "PREVIEW_WIDTH",
		"api.page_cache_ttl":           "PAGE_CACHE_TTL",
		"database.host":                "DATABASE_HOST",
		"database.port":                "DATABASE_PORT",
		"database.name":                "POSTGRES_DB",
		"database.user":                "POSTGRES_USER",
		"database.password":            "POSTGRES_PASSWORD",
		"database.sslmode":             "DATABASE_SSLMODE",
		"redis.host":                   "REDIS_HOST",
		"redis.port":                   "REDIS_PORT",
		"minio.endpoint":               "MINIO_ENDPOINT",
		"minio.access_key_id":          "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":      "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":                "MINIO_USE_SSL",
		"minio.bucket":                 "MINIO_BUCKET",
		"auth.session_secret":          "SESSION_SECRET",
		"auth.session_ttl":             "SESSION_TTL",
		"auth.login_rate_limit":        "LOGIN_RATE_LIMIT",
		"clamd.address":                "CLAMD_ADDRESS",
		"worker.concurrency":           "WORKER_CONCURRENCY",
		"worker.internal_api_base_url": "INTERNAL_API_BASE_URL",
		"worker.metrics_addr":          "WORKER_METRICS_ADDR",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

// splitOrigins 兼容 "a,b" 与多值两种写法。
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, o := range strings.Split(item, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if cfg.API.InternalSecret == "" {
		return errors.New("internal api secret is required")
	}
	if cfg.API.PreviewScale <= 0 || cfg.API.PreviewScale > 1 {
		return errors.New("preview scale must be in (0,1]")
	}
	if err := validateDatabase(cfg.Database); err != nil {
		return err
	}
	if cfg.Redis.Host == "" {
		return errors.New("redis host is required")
	}
	if cfg.Redis.Port <= 0 {
		return errors.New("redis port must be positive")
	}
	if cfg.MinIO.Endpoint == "" {
		return errors.New("minio endpoint is required")
	}
	if cfg.MinIO.AccessKeyID == "" {
		return errors.New("minio access key id is required")
	}
	if cfg.MinIO.SecretAccessKey == "" {
		return errors.New("minio secret access key is required")
	}
	if cfg.MinIO.Bucket == "" {
		return errors.New("minio bucket is required")
	}
	if cfg.Auth.SessionSecret == "" {
		return errors.New("session secret is required")
	}
	if cfg.Auth.SessionTTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if cfg.Worker.Concurrency <= 0 {
		return errors.New("worker concurrency must be positive")
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	if d.Host == "" {
		return errors.New("database host is required")
	}
	if d.Port <= 0 {
		return errors.New("database port must be positive")
	}
	if d.Name == "" {
		return errors.New("database name is required")
	}
	if d.User == "" {
		return errors.New("database user is required")
	}
	if d.Password == "" {
		return errors.New("database password is required")
	}
	if d.SSLMode == "" {
		return errors.New("database sslmode is required")
	}
	return nil
}
