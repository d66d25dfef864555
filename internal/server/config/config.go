// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the enigma server.
//
// Fields:
//   - EndpointAddrGRPC / EndpointAddrHTTP: bind addresses of both transports.
//   - DatabaseDriver: "pgx" (PostgreSQL) or "sqlite" (embedded).
//   - DatabaseDSN: DSN for the selected driver.
//   - SecretKey: HMAC secret for admin JWTs (HS256). Do not use test defaults in prod.
//   - AdminTokenValidityDuration: longest admin token lifetime the server accepts.
//   - SweepInterval: how often expired sessions are deleted; 0 disables.
//   - LogLevel: debug, info, warn or error.
//   - S3RootUser / S3RootPassword: credentials for the S3-compatible backend.
//   - S3Bucket / S3Region / S3BaseEndpoint: directory export target.
type Config struct {
	EndpointAddrGRPC           string
	EndpointAddrHTTP           string
	DatabaseDriver             string
	DatabaseDSN                string
	SecretKey                  string
	AdminTokenValidityDuration time.Duration
	SweepInterval              time.Duration
	LogLevel                   string
	S3RootUser                 string
	S3RootPassword             string
	S3Bucket                   string
	S3Region                   string
	S3BaseEndpoint             string
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = "file:enigma.db?_pragma=foreign_keys(1)"
	c.SecretKey = "secretKey"
	c.AdminTokenValidityDuration = 60 * time.Minute
	c.SweepInterval = 60 * time.Minute
	c.LogLevel = "info"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
