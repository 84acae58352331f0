// Package config loads the gateway configuration from the process environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultUpstreamURL is the Bus Open Data Service datafeed endpoint.
const DefaultUpstreamURL = "https://data.bus-data.dft.gov.uk/api/v1/datafeed/"

type UpstreamCfg struct {
	BaseURL string
	APIKey  string
	// zero means no timeout
	Timeout     time.Duration
	EncodeQuery bool
}

type StaticCfg struct {
	PublicDir string
	IndexFile string
}

type MetricsCfg struct {
	Enabled bool
	Addr    string
	Path    string
}

type LogCfg struct {
	Level   string
	Console bool
	SampleN int
}

// Config is read once at startup and never mutated afterwards.
type Config struct {
	Addr            string
	Upstream        UpstreamCfg
	Static          StaticCfg
	Metrics         MetricsCfg
	Log             LogCfg
	ShutdownTimeout time.Duration
}

// LoadDotEnv reads KEY=VALUE pairs from path into the environment.
// Variables that are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

func FromEnv() Config {
	port := getenv("PORT", "3000")

	return Config{
		Addr: getenv("ADDR", ":"+port),
		Upstream: UpstreamCfg{
			BaseURL:     getenv("UPSTREAM_URL", DefaultUpstreamURL),
			APIKey:      os.Getenv("API_KEY"),
			Timeout:     getduration("UPSTREAM_TIMEOUT", 0),
			EncodeQuery: getbool("UPSTREAM_ENCODE_QUERY", false),
		},
		Static: StaticCfg{
			PublicDir: getenv("PUBLIC_DIR", "public"),
			IndexFile: getenv("INDEX_FILE", "index.html"),
		},
		Metrics: MetricsCfg{
			Enabled: getbool("METRICS_ENABLED", false),
			Addr:    getenv("METRICS_ADDR", ":9090"),
			Path:    getenv("METRICS_PATH", "/metrics"),
		},
		Log: LogCfg{
			Level:   getenv("LOG_LEVEL", "info"),
			Console: getbool("LOG_CONSOLE", false),
			SampleN: getint("LOG_SAMPLE_N", 0),
		},
		ShutdownTimeout: getduration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			return d
		}
	}
	return def
}
