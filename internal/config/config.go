package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppPort string

	BasicAuthUser string
	BasicAuthPass string

	PostgresDSN string
	RedisAddr   string

	CronSpec string

	// 单个源的抓取超时（秒）与批次缓存的 TTL（秒）
	FeedTimeoutSec  int
	CacheTTLSeconds int
}

func Load() *Config {
	cfg := &Config{
		AppPort:         getEnv("APP_PORT", "9000"),
		BasicAuthUser:   getEnv("APP_BASIC_USER", ""),
		BasicAuthPass:   getEnv("APP_BASIC_PASS", ""),
		PostgresDSN:     getEnv("POSTGRES_DSN", "host=localhost user=sentimenthub password=sentimenthub dbname=sentimenthub port=5432 sslmode=disable TimeZone=UTC"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6380"),
		CronSpec:        getEnv("CRON_SPEC", "*/5 * * * *"),
		FeedTimeoutSec:  getEnvInt("FEED_TIMEOUT", 10),
		CacheTTLSeconds: getEnvInt("CACHE_TTL", 300),
	}

	log.Printf("config loaded: port=%s cron=%s cache_ttl=%ds", cfg.AppPort, cfg.CronSpec, cfg.CacheTTLSeconds)
	return cfg
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: invalid %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}

// Now returns current time, 方便后续做可测试封装
func Now() time.Time {
	return time.Now()
}
