package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	ServiceName string
	LoggerLevel string

	AppPort int
	AppURL  string
	AppKey  string

	StorageDriver string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	MigrationsPath   string

	UploadDir   string
	AvatarMaxKB int

	// minutes
	SessionLifetime int
	// days
	RememberLifetime int

	TelegramBotToken string
	AdminID          int64

	SeedAdminName     string
	SeedAdminEmail    string
	SeedAdminPassword string
}

func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "towtruck"))
	cfg.LoggerLevel = cast.ToString(getOrReturnDefault("LOGGER_LEVEL", "debug"))

	cfg.AppPort = cast.ToInt(getOrReturnDefault("APP_PORT", 8080))
	cfg.AppURL = cast.ToString(getOrReturnDefault("APP_URL", "http://localhost:8080"))
	cfg.AppKey = cast.ToString(getOrReturnDefault("APP_KEY", "change-me"))

	cfg.StorageDriver = cast.ToString(getOrReturnDefault("STORAGE_DRIVER", StorageDriverPostgres))

	cfg.PostgresHost = cast.ToString(getOrReturnDefault("POSTGRES_HOST", "localhost"))
	cfg.PostgresPort = cast.ToString(getOrReturnDefault("POSTGRES_PORT", "5432"))
	cfg.PostgresUser = cast.ToString(getOrReturnDefault("POSTGRES_USER", "postgres"))
	cfg.PostgresPassword = cast.ToString(getOrReturnDefault("POSTGRES_PASSWORD", "1234"))
	cfg.PostgresDB = cast.ToString(getOrReturnDefault("POSTGRES_DB", "towtruck"))
	cfg.MigrationsPath = cast.ToString(getOrReturnDefault("MIGRATIONS_PATH", ""))

	cfg.UploadDir = cast.ToString(getOrReturnDefault("UPLOAD_DIR", "./storage/app/public"))
	cfg.AvatarMaxKB = cast.ToInt(getOrReturnDefault("AVATAR_MAX_KB", 2048))

	cfg.SessionLifetime = cast.ToInt(getOrReturnDefault("SESSION_LIFETIME", 120))
	cfg.RememberLifetime = cast.ToInt(getOrReturnDefault("REMEMBER_LIFETIME", 30))

	cfg.TelegramBotToken = cast.ToString(getOrReturnDefault("TG_BOT_TOKEN", ""))
	cfg.AdminID = cast.ToInt64(getOrReturnDefault("ADMIN_ID", 0))

	cfg.SeedAdminName = cast.ToString(getOrReturnDefault("SEED_ADMIN_NAME", "Admin"))
	cfg.SeedAdminEmail = cast.ToString(getOrReturnDefault("SEED_ADMIN_EMAIL", "admin@towtruck.com"))
	cfg.SeedAdminPassword = cast.ToString(getOrReturnDefault("SEED_ADMIN_PASSWORD", "password"))

	return cfg
}

// PostgresURL builds the connection string shared by pgx and golang-migrate.
func (c Config) PostgresURL() string {
	return "postgres://" + c.PostgresUser + ":" + c.PostgresPassword + "@" +
		c.PostgresHost + ":" + c.PostgresPort + "/" + c.PostgresDB + "?sslmode=disable"
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
