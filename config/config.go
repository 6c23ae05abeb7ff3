package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
)

var (
	APP_PORT    string
	APP_ENV     string
	LOG_LEVEL   string
	MAIN_ROUTES string

	JWTSecret     string
	JWTExpiration int

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	TenantID         uint
	DefaultAgingDays int
	RequestTimeout   time.Duration
	LoginRateLimit   int
	SnowflakeNode    int64

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	allowedOrigins []string
)

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Server
	APP_PORT = getEnv("APP_PORT", "9000")
	APP_ENV = getEnv("APP_ENV", "development")
	LOG_LEVEL = getEnv("LOG_LEVEL", "info")
	MAIN_ROUTES = getEnv("MAIN_ROUTES", "/api/v1")

	// JWT
	JWTSecret = getEnv("JWT_SECRET", "stock_app_dev_secret_change_me")
	JWTExpiration = getEnvAsInt("JWT_EXPIRATION", 86400)

	// Database
	DBDriver = getEnv("DB_DRIVER", "postgres")
	DBHost = getEnv("DB_HOST", "localhost")
	DBPort = getEnv("DB_PORT", "5432")
	DBUser = getEnv("DB_USER", "postgres")
	DBPassword = getEnv("DB_PASSWORD", "password")
	DBName = getEnv("DB_NAME", "stock_app")
	DBSSLMode = getEnv("DB_SSLMODE", "disable")
	SQLitePath = getEnv("SQLITE_PATH", "stock_app.db")

	// Domain
	TenantID = uint(getEnvAsInt("TENANT_ID", 1))
	DefaultAgingDays = getEnvAsInt("DEFAULT_AGING_DAYS", 365)
	RequestTimeout = getEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second)
	LoginRateLimit = getEnvAsInt("LOGIN_RATE_LIMIT", 10)
	SnowflakeNode = int64(getEnvAsInt("SNOWFLAKE_NODE", 1))

	// Mail; an empty host keeps notifications in the log only
	SMTPHost = getEnv("SMTP_HOST", "")
	SMTPPort = getEnvAsInt("SMTP_PORT", 587)
	SMTPUser = getEnv("SMTP_USER", "")
	SMTPPassword = getEnv("SMTP_PASSWORD", "")
	MailFrom = getEnv("MAIL_FROM", "stock-app@localhost")

	loadAllowedOrigins()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("15s") or plain seconds ("15").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func loadAllowedOrigins() {
	allowedOrigins = nil
	for _, origin := range strings.Split(getEnv("ALLOWED_ORIGINS", "http://127.0.0.1:3000,http://localhost:3000"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowedOrigins = append(allowedOrigins, origin)
		}
	}
}

// IsProduction reports whether APP_ENV is production.
func IsProduction() bool {
	return APP_ENV == "production" || getEnvAsBool("PRODUCTION", false)
}

func SetupCORS(app *fiber.App) {
	if len(allowedOrigins) == 0 {
		loadAllowedOrigins()
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOrigins, ","),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))
}
