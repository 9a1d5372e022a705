// Package config loads filterd's environment-driven configuration.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds filterd's runtime configuration.
type Config struct {
	Socket    SocketConfig
	Registry  RegistryConfig
	Metrics   MetricsConfig
	Tracing   TracingConfig
	Reattach  ReattachConfig
	Admin     AdminConfig
	Lifecycle LifecycleConfig
}

// SocketConfig controls which interface the filter socket is opened against
// and which BPF backend compiles its filter.
type SocketConfig struct {
	Interface string `env:"FILTERD_INTERFACE"`
	Backend   string `env:"FILTERD_BACKEND"` // "classic" or "extended"
}

// RegistryConfig points at the Redis instance filterd uses to persist and
// watch the current filter definitions.
type RegistryConfig struct {
	Addr      string `env:"REGISTRY_ADDR"`
	Password  string `env:"REGISTRY_PASSWORD"`
	DB        int    `env:"REGISTRY_DB"`
	KeyPrefix string `env:"REGISTRY_KEY_PREFIX"`
}

// MetricsConfig controls the Prometheus /metrics endpoint. The endpoint is
// served on the admin listener (Admin.ListenAddr); ListenAddr is not read by
// the server.
type MetricsConfig struct {
	Enabled    bool   `env:"METRICS_ENABLED"`
	ListenAddr string `env:"METRICS_LISTEN_ADDR"`
}

// TracingConfig controls the OpenTelemetry/Jaeger exporter.
type TracingConfig struct {
	Enabled     bool   `env:"TRACING_ENABLED"`
	JaegerURL   string `env:"TRACING_JAEGER_URL"`
	ServiceName string `env:"TRACING_SERVICE_NAME"`
}

// ReattachConfig bounds how often filterd is allowed to recompile and
// reattach a program in response to registry updates.
type ReattachConfig struct {
	RequestsPerSecond float64 `env:"REATTACH_RATE"`
	Burst             int     `env:"REATTACH_BURST"`
}

// AdminConfig controls the admin HTTP API.
type AdminConfig struct {
	ListenAddr string `env:"ADMIN_LISTEN_ADDR"`
}

// LifecycleConfig controls shutdown behavior.
type LifecycleConfig struct {
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

// Load reads configuration from the environment, filling in defaults for
// anything unset.
func Load() *Config {
	return &Config{
		Socket: SocketConfig{
			Interface: getEnv("FILTERD_INTERFACE", "eth0"),
			Backend:   getEnv("FILTERD_BACKEND", "classic"),
		},
		Registry: RegistryConfig{
			Addr:      getEnv("REGISTRY_ADDR", "localhost:6379"),
			Password:  getEnv("REGISTRY_PASSWORD", ""),
			DB:        getEnvInt("REGISTRY_DB", 0),
			KeyPrefix: getEnv("REGISTRY_KEY_PREFIX", "filterd:"),
		},
		Metrics: MetricsConfig{
			Enabled:    getEnvBool("METRICS_ENABLED", true),
			ListenAddr: getEnv("METRICS_LISTEN_ADDR", ":9090"),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvBool("TRACING_ENABLED", false),
			JaegerURL:   getEnv("TRACING_JAEGER_URL", "http://localhost:14268/api/traces"),
			ServiceName: getEnv("TRACING_SERVICE_NAME", "filterd"),
		},
		Reattach: ReattachConfig{
			RequestsPerSecond: getEnvFloat("REATTACH_RATE", 1),
			Burst:             getEnvInt("REATTACH_BURST", 3),
		},
		Admin: AdminConfig{
			ListenAddr: getEnv("ADMIN_LISTEN_ADDR", ":8080"),
		},
		Lifecycle: LifecycleConfig{
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		var result int
		fmt.Sscanf(v, "%d", &result)
		return result
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		var result float64
		fmt.Sscanf(v, "%f", &result)
		return result
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
