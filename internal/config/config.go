package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config carries everything the server needs to start, loaded from
// environment variables with working local defaults.
type Config struct {
	ServerPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Lock acquisition is expected to contend, so it gets the wider retry
	// window; a failing commit usually means something is actually wrong, so
	// it gets a narrow one.
	LockExpiry        time.Duration
	LockMaxAttempts   int
	LockRetryDelay    time.Duration
	CommitMaxAttempts int
	CommitRetryDelay  time.Duration
}

func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "savings_accounts")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOCK_EXPIRY", "10s")
	v.SetDefault("LOCK_MAX_ATTEMPTS", 3)
	v.SetDefault("LOCK_RETRY_DELAY", "100ms")
	v.SetDefault("COMMIT_MAX_ATTEMPTS", 2)
	v.SetDefault("COMMIT_RETRY_DELAY", "50ms")

	return &Config{
		ServerPort: v.GetString("SERVER_PORT"),

		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		LockExpiry:        v.GetDuration("LOCK_EXPIRY"),
		LockMaxAttempts:   v.GetInt("LOCK_MAX_ATTEMPTS"),
		LockRetryDelay:    v.GetDuration("LOCK_RETRY_DELAY"),
		CommitMaxAttempts: v.GetInt("COMMIT_MAX_ATTEMPTS"),
		CommitRetryDelay:  v.GetDuration("COMMIT_RETRY_DELAY"),
	}
}

// DBConnectionString builds the lib/pq connection string.
func (c *Config) DBConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// UseRedis reports whether the distributed lock and sequence backends should
// be Redis. With no address configured the server falls back to the
// process-local implementations, which is only safe for a single instance.
func (c *Config) UseRedis() bool {
	return c.RedisAddr != ""
}
