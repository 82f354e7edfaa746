// config.go - Handles configuration for the project

package config // Declares the package name

import ( // Import required packages
	"errors"  // For the missing-secret error
	"log"     // For reporting a missing .env file
	"os"      // For reading environment variables
	"strconv" // For parsing numeric settings
	"strings" // For splitting list settings
	"time"    // For duration settings

	"github.com/joho/godotenv" // Loads .env into the process environment
)

// ErrMissingJWTSecret is returned by Load when JWT_SECRET is empty.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

type Config struct { // Config struct holds all configuration values
	Port            string        // HTTP port the server binds to
	GinMode         string        // gin mode (debug, release, test)
	DBDriver        string        // "sqlite" or "postgres"
	DBPath          string        // Path to the SQLite database file
	DatabaseURL     string        // Postgres DSN when DBDriver is postgres
	JWTSecret       string        // Secret key for JWT signing
	RedisAddr       string        // Redis address, empty disables the jobs cache
	RedisPassword   string        // Redis password
	CacheTTL        time.Duration // TTL of the cached open-jobs listing
	MQTTBroker      string        // MQTT broker, empty disables event mirroring
	MQTTTopicPrefix string        // Prefix of every event topic
	CORSOrigins     []string      // Allowed CORS origins ("*" allows all)
	RequestTimeout  time.Duration // Deadline attached to every request context
}

// Load reads config from the environment (and .env when present), using defaults
// for everything except the signing secret.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] no .env file found, using system environment variables")
	}

	cfg := &Config{
		Port:            getEnv("PORT", "4000"),
		GinMode:         getEnv("GIN_MODE", "release"),
		DBDriver:        strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBPath:          getEnv("DB_PATH", "data.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		CacheTTL:        getDuration("CACHE_TTL", time.Minute),
		MQTTBroker:      getEnv("MQTT_BROKER", ""),
		MQTTTopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "jobmarket"),
		CORSOrigins:     getList("CORS_ORIGINS", []string{"*"}),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 10*time.Second),
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	return cfg, nil
}

func getEnv(key, fallback string) string { // Helper to get env var or fallback
	if value := strings.TrimSpace(os.Getenv(key)); value != "" { // If env var is set, use it
		return value
	}
	return fallback // Otherwise, use fallback value
}

// getDuration accepts Go durations ("30s") or a bare number of seconds ("30").
func getDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	log.Printf("[config] invalid %s=%q, using %s", key, raw, fallback)
	return fallback
}

func getList(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
