package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Env string

const (
	Dev        Env = "development"
	Test       Env = "test"
	Preview    Env = "preview"
	Production Env = "production"
)

type RabbitMQConfig struct {
	URL             string
	Exchange        string
	Queue           string
	RoutingKey      string
	Prefetch        int
	DeclareTopology bool
}

type RedisConfig struct {
	User     string
	Password string
	Host     string
	Port     int
	Scheme   string
}

// PostgresConfig is optional; enabled only when Host + Name are set.
type PostgresConfig struct {
	User     string
	Password string
	Host     string
	Port     int
	Name     string
}

// TursoConfig holds the sqlite (Turso remote) connection settings.
type TursoConfig struct {
	DSN   string
	Path  string
	Token string
}

type InngestConfig struct {
	AppID      string
	SigningKey string
	Dev        string
	ServeHost  string
	ServePath  string
}

// CrawlAPIConfig points at the external crawl-execution service that
// consumes crawl job payloads.
type CrawlAPIConfig struct {
	BaseURL  string
	Username string
	Password string
}

// HarvestConfig tunes the in-process product harvester.
type HarvestConfig struct {
	UserAgentDesktop string
	UserAgentMobile  string
	TimeoutMS        int
	MaxRetries       int
	OutDir           string
	PageCacheTTLSec  int
}

type Config struct {
	AppName string
	ENV     Env
	AppPort int

	LogLevel string

	Postgres PostgresConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Turso    TursoConfig
	Inngest  InngestConfig
	CrawlAPI CrawlAPIConfig
	Harvest  HarvestConfig
}

func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_NAME", "shelfwatch-product-harvester")
	v.SetDefault("APP_ENV", string(Dev))
	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_SCHEME", "redis")

	v.SetDefault("RABBITMQ_EXCHANGE", "events")
	v.SetDefault("RABBITMQ_QUEUE", "harvester.url.requested.v1")
	v.SetDefault("RABBITMQ_ROUTING_KEY", "harvester.url.requested.v1")
	v.SetDefault("RABBITMQ_PREFETCH", 1)
	v.SetDefault("RABBITMQ_DECLARE_TOPOLOGY", true)

	v.SetDefault("INNGEST_SERVE_PATH", "/api/inngest")

	v.SetDefault("HARVEST_UA_DESKTOP", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	v.SetDefault("HARVEST_UA_MOBILE", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148")
	v.SetDefault("HARVEST_TIMEOUT_MS", 15000)
	v.SetDefault("HARVEST_MAX_RETRIES", 2)
	v.SetDefault("HARVEST_OUT_DIR", "out")
	v.SetDefault("HARVEST_PAGE_CACHE_TTL_SEC", 900)

	return v
}

func NewConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppName: v.GetString("APP_NAME"),
		ENV:     Env(v.GetString("APP_ENV")),
		AppPort: v.GetInt("APP_PORT"),

		LogLevel: v.GetString("LOG_LEVEL"),

		Postgres: PostgresConfig{
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
		},

		Redis: RedisConfig{
			User:     v.GetString("REDIS_USER"),
			Password: v.GetString("REDIS_PASSWORD"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Scheme:   v.GetString("REDIS_SCHEME"),
		},

		RabbitMQ: RabbitMQConfig{
			URL:             v.GetString("RABBITMQ_URL"),
			Exchange:        v.GetString("RABBITMQ_EXCHANGE"),
			Queue:           v.GetString("RABBITMQ_QUEUE"),
			RoutingKey:      v.GetString("RABBITMQ_ROUTING_KEY"),
			Prefetch:        v.GetInt("RABBITMQ_PREFETCH"),
			DeclareTopology: v.GetBool("RABBITMQ_DECLARE_TOPOLOGY"),
		},

		Turso: TursoConfig{
			DSN:   v.GetString("TURSO_SQLITE_DSN"),
			Path:  v.GetString("TURSO_SQLITE_PATH"),
			Token: v.GetString("TURSO_SQLITE_TOKEN"),
		},

		Inngest: InngestConfig{
			AppID:      v.GetString("INNGEST_APP_ID"),
			SigningKey: v.GetString("INNGEST_SIGNING_KEY"),
			Dev:        v.GetString("INNGEST_DEV"),
			ServeHost:  v.GetString("INNGEST_SERVE_HOST"),
			ServePath:  v.GetString("INNGEST_SERVE_PATH"),
		},

		CrawlAPI: CrawlAPIConfig{
			BaseURL:  v.GetString("CRAWL_API_BASE_URL"),
			Username: v.GetString("CRAWL_API_USERNAME"),
			Password: v.GetString("CRAWL_API_PASSWORD"),
		},

		Harvest: HarvestConfig{
			UserAgentDesktop: v.GetString("HARVEST_UA_DESKTOP"),
			UserAgentMobile:  v.GetString("HARVEST_UA_MOBILE"),
			TimeoutMS:        v.GetInt("HARVEST_TIMEOUT_MS"),
			MaxRetries:       v.GetInt("HARVEST_MAX_RETRIES"),
			OutDir:           v.GetString("HARVEST_OUT_DIR"),
			PageCacheTTLSec:  v.GetInt("HARVEST_PAGE_CACHE_TTL_SEC"),
		},
	}

	if cfg.AppPort <= 0 || cfg.AppPort > 65535 {
		return nil, fmt.Errorf("invalid APP_PORT %d", cfg.AppPort)
	}
	if cfg.Postgres.Port <= 0 || cfg.Postgres.Port > 65535 {
		return nil, fmt.Errorf("invalid DB_PORT %d", cfg.Postgres.Port)
	}
	if cfg.Redis.Port <= 0 || cfg.Redis.Port > 65535 {
		return nil, fmt.Errorf("invalid REDIS_PORT %d", cfg.Redis.Port)
	}
	if cfg.Harvest.MaxRetries < 0 {
		return nil, fmt.Errorf("invalid HARVEST_MAX_RETRIES %d", cfg.Harvest.MaxRetries)
	}

	return cfg, nil
}
