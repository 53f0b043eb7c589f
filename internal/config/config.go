package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host             string
	Port             int
	AllowOrigins     []string
	LogLevel         string
	LogFile          string
	MaxUploadMB      int
	DefaultThreshold float64
	MatchWorkers     int
	ShutdownTimeout  time.Duration
	RateLimitRPS     float64 // 0 — без ограничения
	RateLimitBurst   int
}

func Load() Config {
	port := atoiEnv("PORT", 8082)
	mb := atoiEnv("MAX_UPLOAD_MB", 64)
	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	threshold, err := strconv.ParseFloat(getenv("DEFAULT_THRESHOLD", "0.6"), 64)
	if err != nil || threshold < 0 || threshold > 1 {
		threshold = 0.6
	}
	workers := atoiEnv("MATCH_WORKERS", runtime.NumCPU())
	if workers < 1 {
		workers = 1
	}
	shutdown, err := time.ParseDuration(getenv("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil || shutdown <= 0 {
		shutdown = 10 * time.Second
	}
	rps, err := strconv.ParseFloat(getenv("RATE_LIMIT_RPS", "5"), 64)
	if err != nil || rps < 0 {
		rps = 5
	}

	return Config{
		Host:             getenv("HOST", "127.0.0.1"),
		Port:             port,
		AllowOrigins:     origins,
		LogLevel:         getenv("LOG_LEVEL", "info"),
		LogFile:          getenv("LOG_FILE", "logs/partcompare.log"),
		MaxUploadMB:      mb,
		DefaultThreshold: threshold,
		MatchWorkers:     workers,
		ShutdownTimeout:  shutdown,
		RateLimitRPS:     rps,
		RateLimitBurst:   atoiEnv("RATE_LIMIT_BURST", 10),
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoiEnv(k string, def int) int {
	v, err := strconv.Atoi(getenv(k, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return v
}
