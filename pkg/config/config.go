package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"cartCompanion/business/recommend"

	"github.com/joho/godotenv"
)

const (
	EventLogPostgres = "postgres"
	EventLogSQLite   = "sqlite"
	EventLogMemory   = "memory"

	CatalogSample = "sample"
	CatalogDB     = "db"

	StateStoreRedis    = "redis"
	StateStorePostgres = "postgres"
	StateStoreNone     = "none"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Model     ModelConfig
	Recommend RecommendConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Driver        string
	Host          string
	Port          string
	User          string
	Password      string
	Name          string
	SSLMode       string
	SQLitePath    string
	CatalogSource string
}

type JWTConfig struct {
	AdminSecret string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type ModelConfig struct {
	Path             string
	StateStore       string
	SnapshotInterval time.Duration
}

type RecommendConfig struct {
	PoolSize      int
	TopK          int
	BanditEnabled bool
	UCBAlpha      float64
	// items never recommended, e.g. out of stock
	ExcludedItems []string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	defaults := recommend.DefaultConfig()

	poolSize, err := strconv.Atoi(getEnv("RECO_POOL_SIZE", strconv.Itoa(defaults.CandidatePoolSize)))
	if err != nil || poolSize <= 0 {
		return nil, errors.New("invalid RECO_POOL_SIZE")
	}

	topK, err := strconv.Atoi(getEnv("RECO_TOP_K", strconv.Itoa(defaults.TopK)))
	if err != nil || topK < 0 {
		return nil, errors.New("invalid RECO_TOP_K")
	}

	banditEnabled, err := strconv.ParseBool(getEnv("RECO_BANDIT_ENABLED", strconv.FormatBool(defaults.BanditEnabled)))
	if err != nil {
		return nil, errors.New("invalid RECO_BANDIT_ENABLED")
	}

	alpha, err := strconv.ParseFloat(getEnv("RECO_UCB_ALPHA", strconv.FormatFloat(defaults.UCBAlpha, 'f', -1, 64)), 64)
	if err != nil || alpha < 0 {
		return nil, errors.New("invalid RECO_UCB_ALPHA")
	}

	snapshotEvery, err := time.ParseDuration(getEnv("BANDIT_SNAPSHOT_INTERVAL", "1m"))
	if err != nil {
		return nil, errors.New("invalid BANDIT_SNAPSHOT_INTERVAL")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Cart Companion API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8000"),
		},
		Database: DatabaseConfig{
			Driver:        strings.ToLower(getEnv("EVENT_LOG_DRIVER", EventLogSQLite)),
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnv("DB_PORT", "5432"),
			User:          getEnv("DB_USER", "postgres"),
			Password:      getEnv("DB_PASSWORD", ""),
			Name:          getEnv("DB_NAME", "cart_companion"),
			SSLMode:       getEnv("DB_SSL_MODE", "disable"),
			SQLitePath:    getEnv("SQLITE_PATH", "artifacts/cart_companion.db"),
			CatalogSource: strings.ToLower(getEnv("CATALOG_SOURCE", CatalogSample)),
		},
		JWT: JWTConfig{
			AdminSecret: getEnv("ADMIN_JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Model: ModelConfig{
			Path:             getEnv("MODEL_PATH", "artifacts/cart_companion_logistic.json"),
			StateStore:       strings.ToLower(getEnv("BANDIT_STATE_STORE", StateStoreNone)),
			SnapshotInterval: snapshotEvery,
		},
		Recommend: RecommendConfig{
			PoolSize:      poolSize,
			TopK:          topK,
			BanditEnabled: banditEnabled,
			UCBAlpha:      alpha,
			ExcludedItems: splitList(getEnv("RECO_EXCLUDED_ITEMS", "")),
		},
	}

	switch cfg.Database.Driver {
	case EventLogPostgres, EventLogSQLite, EventLogMemory:
	default:
		return nil, errors.New("EVENT_LOG_DRIVER must be postgres, sqlite or memory")
	}

	switch cfg.Database.CatalogSource {
	case CatalogSample, CatalogDB:
	default:
		return nil, errors.New("CATALOG_SOURCE must be sample or db")
	}
	if cfg.Database.CatalogSource == CatalogDB && cfg.Database.Driver == EventLogMemory {
		return nil, errors.New("CATALOG_SOURCE=db needs a database driver")
	}

	switch cfg.Model.StateStore {
	case StateStoreRedis, StateStoreNone:
	case StateStorePostgres:
		if cfg.Database.Driver == EventLogMemory {
			return nil, errors.New("BANDIT_STATE_STORE=postgres needs a database driver")
		}
	default:
		return nil, errors.New("BANDIT_STATE_STORE must be redis, postgres or none")
	}

	if cfg.Database.Driver == EventLogPostgres && cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	return cfg, nil
}

// RecommendConfig overlays the environment tunables on the engine defaults.
func (c *Config) RecommendConfig() recommend.Config {
	rc := recommend.DefaultConfig()
	rc.CandidatePoolSize = c.Recommend.PoolSize
	rc.TopK = c.Recommend.TopK
	rc.BanditEnabled = c.Recommend.BanditEnabled
	rc.UCBAlpha = c.Recommend.UCBAlpha
	return rc
}

// EligibilityChecker returns the exclusion list as a checker, or nil when it is empty.
func (c *Config) EligibilityChecker() recommend.EligibilityChecker {
	if len(c.Recommend.ExcludedItems) == 0 {
		return nil
	}
	return recommend.NewExcludeItems(c.Recommend.ExcludedItems)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}
