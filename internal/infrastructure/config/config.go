package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// devJWTSecret is used outside production when JWT_SECRET is unset.
const devJWTSecret = "portal-dev-secret-change-me"

type Config struct {
	Port           string        `env:"PORT,            default=5000"`
	Env            string        `env:"ENV,             default=development"`
	JWTSecret      string        `env:"JWT_SECRET"`
	JWTExpire      time.Duration `env:"JWT_EXPIRE,      default=720h"`
	LogLevel       string        `env:"LOG_LEVEL,       default=info"`
	LogPretty      bool          `env:"LOG_PRETTY,      default=false"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS, default=http://localhost:3000,http://localhost:5173"`
	ResetTokenTTL  time.Duration `env:"RESET_TOKEN_TTL, default=10m"`
	NotifyWorkers  int           `env:"NOTIFY_WORKERS,  default=4"`

	Mongo     MongoConfig
	Redis     RedisConfig
	S3        S3Config
	Bootstrap BootstrapConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI,      default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,       default=vikram_portal"`
	MaxPool  uint64 `env:"MONGO_MAX_POOL, default=10"`
	MinPool  uint64 `env:"MONGO_MIN_POOL, default=2"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,        default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=10"`
}

type S3Config struct {
	Endpoint   string        `env:"S3_ENDPOINT"`
	Region     string        `env:"S3_REGION,      default=us-east-1"`
	Bucket     string        `env:"S3_BUCKET,      default=portal-attachments"`
	AccessKey  string        `env:"S3_ACCESS_KEY"`
	SecretKey  string        `env:"S3_SECRET_KEY"`
	PresignTTL time.Duration `env:"S3_PRESIGN_TTL, default=15m"`
}

// BootstrapConfig names the administrator created on first start.
type BootstrapConfig struct {
	AdminEmail    string `env:"BOOTSTRAP_ADMIN_EMAIL,    default=admin@vikram.com"`
	AdminPassword string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads an optional .env file, then the environment. A missing JWT secret
// is an error in production and falls back to a development secret elsewhere;
// the second return value reports whether the fallback was used.
func Load(ctx context.Context, files ...string) (*Config, bool, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Missing dotenv files are fine: the environment alone is a valid source.
	_ = godotenv.Load(files...)

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, false, fmt.Errorf("config: %w", err)
	}

	if cfg.NotifyWorkers < 1 {
		return nil, false, errors.New("config: NOTIFY_WORKERS must be at least 1")
	}

	fallback := false
	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, false, errors.New("config: JWT_SECRET is required in production")
		}
		cfg.JWTSecret = devJWTSecret
		fallback = true
	}
	return &cfg, fallback, nil
}
