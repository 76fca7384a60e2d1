package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App            AppConfig            `mapstructure:"app"`
	Server         ServerConfig         `mapstructure:"server"`
	Store          StoreConfig          `mapstructure:"store"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Wikidata       WikidataConfig       `mapstructure:"wikidata"`
	Classification ClassificationConfig `mapstructure:"classification"`
	Audit          AuditConfig          `mapstructure:"audit"`
	RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`
	DedupWindow    time.Duration        `mapstructure:"dedup_window"`
	LogLevel       string               `mapstructure:"log_level"`
	LogDir         string               `mapstructure:"log_dir"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// StoreConfig 食譜資料來源設定
type StoreConfig struct {
	// Driver: csv / sqlite / postgres
	Driver        string `mapstructure:"driver"`
	CSVPath       string `mapstructure:"csv_path"`
	Table         string `mapstructure:"table"`
	Production    bool   `mapstructure:"production"`
	LocalDSN      string `mapstructure:"local_dsn"`
	ProductionDSN string `mapstructure:"production_dsn"`
}

// DSN 依環境選擇連線字串
func (s StoreConfig) DSN() string {
	if s.Production {
		return s.ProductionDSN
	}
	return s.LocalDSN
}

// RedisConfig 資料集快取設定
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
	Prefix   string        `mapstructure:"prefix"`
}

// WikidataConfig 外部知識庫設定
type WikidataConfig struct {
	APIURL        string        `mapstructure:"api_url"`
	SPARQLURL     string        `mapstructure:"sparql_url"`
	UserAgent     string        `mapstructure:"user_agent"`
	SearchTimeout time.Duration `mapstructure:"search_timeout"`
	QueryTimeout  time.Duration `mapstructure:"query_timeout"`
	Retry         RetryConfig   `mapstructure:"retry"`
	Breaker       BreakerConfig `mapstructure:"breaker"`
}

// RetryConfig 重試策略
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Backoff     time.Duration `mapstructure:"backoff"`
	MaxBackoff  time.Duration `mapstructure:"max_backoff"`
	StatusCodes []int         `mapstructure:"status_codes"`
}

// BreakerConfig 斷路器設定
type BreakerConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Failures uint32        `mapstructure:"failures"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ClassificationConfig 飲食分類設定
type ClassificationConfig struct {
	PolitenessMin time.Duration `mapstructure:"politeness_min"`
	PolitenessMax time.Duration `mapstructure:"politeness_max"`
	MinSpacing    time.Duration `mapstructure:"min_spacing"`
	Workers       int           `mapstructure:"workers"`
	OutputDir     string        `mapstructure:"output_dir"`
	QueueSize     int           `mapstructure:"queue_size"`
}

// AuditConfig 稽核報表設定
type AuditConfig struct {
	Threshold int    `mapstructure:"threshold"`
	Limit     int    `mapstructure:"limit"`
	OutputDir string `mapstructure:"output_dir"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定，.env 不存在時僅使用環境變數與預設值
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	_ = v.BindEnv("store.production", "PRODUCTION_KEY")
	_ = v.BindEnv("store.local_dsn", "LOCAL_DB_URI")
	_ = v.BindEnv("store.production_dsn", "PRODUCTION_DB_URI")
	_ = v.BindEnv("store.driver", "STORE_DRIVER")
	_ = v.BindEnv("store.csv_path", "RECIPES_CSV")
	_ = v.BindEnv("redis.enabled", "REDIS_ENABLED")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("wikidata.user_agent", "WIKIDATA_USER_AGENT")
	_ = v.BindEnv("classification.output_dir", "EXPORT_DIR")
	_ = v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("dedup_window", "DEDUP_WINDOW")
	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("server.port", "PORT")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "recipe-finder")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "60s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	// 資料來源
	v.SetDefault("store.driver", "csv")
	v.SetDefault("store.csv_path", "diet.csv")
	v.SetDefault("store.table", "recipes")
	v.SetDefault("store.production", false)
	v.SetDefault("store.local_dsn", "recipes.db")

	// Redis 資料集快取
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "10m")
	v.SetDefault("redis.prefix", "recipe-finder:dataset")

	// Wikidata
	v.SetDefault("wikidata.api_url", "https://www.wikidata.org/w/api.php")
	v.SetDefault("wikidata.sparql_url", "https://query.wikidata.org/sparql")
	v.SetDefault("wikidata.user_agent", "recipe-finder/1.0 (contact: admin@example.com)")
	v.SetDefault("wikidata.search_timeout", "25s")
	v.SetDefault("wikidata.query_timeout", "35s")
	v.SetDefault("wikidata.retry.max_attempts", 5)
	v.SetDefault("wikidata.retry.backoff", "1200ms")
	v.SetDefault("wikidata.retry.max_backoff", "30s")
	v.SetDefault("wikidata.retry.status_codes", []int{429, 500, 502, 503, 504})
	v.SetDefault("wikidata.breaker.enabled", true)
	v.SetDefault("wikidata.breaker.failures", 5)
	v.SetDefault("wikidata.breaker.timeout", "1m")

	// 分類
	v.SetDefault("classification.politeness_min", "300ms")
	v.SetDefault("classification.politeness_max", "700ms")
	v.SetDefault("classification.min_spacing", "300ms")
	v.SetDefault("classification.workers", 1)
	v.SetDefault("classification.output_dir", "exports")
	v.SetDefault("classification.queue_size", 4)

	// 稽核
	v.SetDefault("audit.threshold", 85)
	v.SetDefault("audit.limit", 1000)
	v.SetDefault("audit.output_dir", "reports")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "logs")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	switch config.Store.Driver {
	case "csv":
		if config.Store.CSVPath == "" {
			return fmt.Errorf("store.csv_path is required for the csv driver")
		}
	case "sqlite", "postgres":
		if config.Store.DSN() == "" {
			return fmt.Errorf("a database DSN is required for the %s driver", config.Store.Driver)
		}
		if config.Store.Table == "" {
			return fmt.Errorf("store.table is required")
		}
	default:
		return fmt.Errorf("unknown store driver %q", config.Store.Driver)
	}

	if config.Redis.Enabled && config.Redis.TTL <= 0 {
		return fmt.Errorf("invalid redis ttl")
	}

	if config.Wikidata.Retry.MaxAttempts < 1 {
		return fmt.Errorf("wikidata.retry.max_attempts must be at least 1")
	}
	if config.Wikidata.SearchTimeout <= 0 || config.Wikidata.QueryTimeout <= 0 {
		return fmt.Errorf("wikidata timeouts must be positive")
	}

	c := config.Classification
	if c.PolitenessMin < 0 || c.PolitenessMax < c.PolitenessMin {
		return fmt.Errorf("invalid politeness window %s-%s", c.PolitenessMin, c.PolitenessMax)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("invalid classification workers")
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("invalid classification queue size")
	}

	if config.Audit.Threshold < 0 || config.Audit.Threshold > 100 {
		return fmt.Errorf("audit threshold must be between 0 and 100")
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit settings")
	}

	return nil
}
