package config

import (
	"os"
	"time"
)

// Client captures the environment-driven settings for the verify CLI so main
// stays lean.
type Client struct {
	Authorization   string
	GatewayBaseURL  string
	EngineEndpoint  string
	ReturnURLScheme string
	UserAgent       string
	RequestTimeout  time.Duration
	ConfigCacheTTL  time.Duration
}

// FromEnv builds a Client config from environment variables.
func FromEnv() Client {
	cfg := Client{
		Authorization:   os.Getenv("TRIDENT_AUTHORIZATION"),
		GatewayBaseURL:  os.Getenv("TRIDENT_GATEWAY_URL"),
		EngineEndpoint:  os.Getenv("TRIDENT_ENGINE_URL"),
		ReturnURLScheme: os.Getenv("TRIDENT_RETURN_SCHEME"),
		UserAgent:       os.Getenv("TRIDENT_USER_AGENT"),
		RequestTimeout:  30 * time.Second,
		ConfigCacheTTL:  5 * time.Minute,
	}
	if cfg.ReturnURLScheme == "" {
		cfg.ReturnURLScheme = "trident.demo"
	}
	if raw := os.Getenv("TRIDENT_REQUEST_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if raw := os.Getenv("TRIDENT_CONFIG_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			cfg.ConfigCacheTTL = d
		}
	}
	return cfg
}
