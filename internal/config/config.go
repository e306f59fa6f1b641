package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/Leganyst/room-booking/internal/model"
)

// Бэкенды хранилища бронирований.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMongo    = "mongo"
	BackendRedis    = "redis"
	BackendLocal    = "local"
)

type Config struct {
	App      AppConfig
	Store    StoreConfig
	DB       DBConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Catalog  model.Catalog
}

type AppConfig struct {
	Env      string
	LogLevel string
	GRPCAddr string
	HTTPAddr string
	Location *time.Location

	CancelSecret       string
	CancelSecretBcrypt string

	CORSOrigins []string
	// Лимит запросов на отмену с одного IP в минуту.
	CancelRateLimit int
}

type StoreConfig struct {
	Backend   string
	LocalPath string
	// Интервал опроса SQL-хранилища для подписки.
	PollInterval time.Duration
	// Таймаут одной операции с хранилищем.
	Timeout time.Duration
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

// Load читает .env (если есть) и переменные окружения.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	loc, err := time.LoadLocation(getEnv("APP_TIMEZONE", "Asia/Riyadh"))
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Env:                getEnv("APP_ENV", "production"),
			LogLevel:           getEnv("LOG_LEVEL", "info"),
			GRPCAddr:           getEnv("GRPC_ADDR", ":50051"),
			HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
			Location:           loc,
			CancelSecret:       getEnv("CANCEL_SECRET", "2410"),
			CancelSecretBcrypt: getEnv("CANCEL_SECRET_BCRYPT", ""),
			CORSOrigins:        getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			CancelRateLimit:    getEnvInt("CANCEL_RATE_LIMIT_PER_MIN", 10),
		},
		Store: StoreConfig{
			Backend:      strings.ToLower(getEnv("STORE_BACKEND", "")),
			LocalPath:    getEnv("LOCAL_STORE_PATH", "data/bookings.json"),
			PollInterval: time.Duration(getEnvInt("STORE_POLL_INTERVAL_MS", 2000)) * time.Millisecond,
			Timeout:      time.Duration(getEnvInt("STORE_TIMEOUT_SEC", 10)) * time.Second,
		},
		DB: loadDBConfig(),
		Mongo: MongoConfig{
			URI:        getEnv("MONGODB_URI", ""),
			Database:   getEnv("MONGODB_DATABASE", "school"),
			Collection: getEnv("MONGODB_COLLECTION", model.BookingsCollectionID),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Prefix:   getEnv("REDIS_PREFIX", model.BookingsCollectionID),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      getEnv("RABBITMQ_URL", ""),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "room-booking.events"),
		},
		Catalog: loadCatalog(),
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = cfg.detectBackend()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// detectBackend: облачное хранилище, если оно настроено, иначе локальный файл.
func (c *Config) detectBackend() string {
	switch {
	case c.Mongo.URI != "":
		return BackendMongo
	case c.Redis.Addr != "":
		return BackendRedis
	case c.DB.Host != "":
		return BackendPostgres
	default:
		return BackendLocal
	}
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendPostgres:
		return c.DB.validate()
	case BackendSQLite:
		if c.DB.SQLitePath == "" {
			return fmt.Errorf("invalid store config: SQLITE_PATH must not be empty")
		}
	case BackendMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("invalid store config: MONGODB_URI must not be empty")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("invalid store config: REDIS_ADDR must not be empty")
		}
	case BackendLocal:
		if c.Store.LocalPath == "" {
			return fmt.Errorf("invalid store config: LOCAL_STORE_PATH must not be empty")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	return nil
}

// loadCatalog позволяет переопределить предметы и классы:
// CATALOG_SUBJECTS="Math:الرياضيات,Art:الفنون", CATALOG_GRADE_LEVELS="7,8,9",
// CATALOG_GRADE_SECTIONS="أ,ب".
func loadCatalog() model.Catalog {
	c := model.DefaultCatalog()

	if subjects := getEnvList("CATALOG_SUBJECTS", nil); len(subjects) > 0 {
		c.Subjects = c.Subjects[:0:0]
		for _, s := range subjects {
			value, label, found := strings.Cut(s, ":")
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			if !found {
				label = value
			}
			c.Subjects = append(c.Subjects, model.Subject{Value: value, Label: strings.TrimSpace(label)})
		}
	}

	levels := getEnvList("CATALOG_GRADE_LEVELS", nil)
	sections := getEnvList("CATALOG_GRADE_SECTIONS", nil)
	if len(levels) > 0 || len(sections) > 0 {
		if len(levels) == 0 {
			for _, g := range c.Grades {
				levels = append(levels, g.Level)
			}
		}
		if len(sections) == 0 {
			sections = model.DefaultSections()
		}
		c.Grades = model.GradeLevels(levels, sections)
	}
	return c
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
