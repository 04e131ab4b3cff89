// Package config handles configuration for the serving and command
// processes: defaults, JSON overlay, environment variables and flags.
package config

import "time"

// DefaultServiceSecret is the development secret set by LoadDefaults. The
// command process refuses to start with it.
const DefaultServiceSecret = "secretKey"

// EnvPrefix namespaces every environment variable read by LoadConfig.
const EnvPrefix = "MEDIAGATE_"

// Config holds runtime settings shared by cmd/server and cmd/commandd.
//
// Fields:
//   - OwnerID: identity of the single administrator (chat user id).
//   - ServiceSecret: HMAC secret for caller credentials on the command channel.
//   - DatabaseDriver / DatabaseDSN: "sqlite" file path or "postgres" DSN (pgx).
//   - OwnerBypassToken: optional static token that always resolves to the owner.
//   - CacheTTL: freshness window of cached extraction results.
//   - CacheBackend / ValkeyAddr: "sql" keeps the cache in the database, "valkey" uses a valkey server.
//   - SweepInterval: period of the background sweep; zero leaves only the lazy sweep.
//   - S3*: bucket settings for usage report export.
type Config struct {
	OwnerID             string        `env:"OWNER_ID"`
	ServiceSecret       string        `env:"SERVICE_SECRET"`
	CallerTokenValidity time.Duration `env:"CALLER_TOKEN_VALIDITY"`

	DatabaseDriver string `env:"DATABASE_DRIVER"`
	DatabaseDSN    string `env:"DATABASE_DSN"`

	OwnerBypassToken string        `env:"OWNER_BYPASS_TOKEN"`
	CacheTTL         time.Duration `env:"CACHE_TTL"`
	CacheBackend     string        `env:"CACHE_BACKEND"`
	ValkeyAddr       string        `env:"VALKEY_ADDR"`
	SweepInterval    time.Duration `env:"SWEEP_INTERVAL"`

	EndpointAddrHTTP string `env:"HTTP_ADDR"`
	EndpointAddrGRPC string `env:"GRPC_ADDR"`

	ExtractorBinary string        `env:"EXTRACTOR_BINARY"`
	ExtractTimeout  time.Duration `env:"EXTRACT_TIMEOUT"`

	S3RootUser     string `env:"S3_ROOT_USER"`
	S3RootPassword string `env:"S3_ROOT_PASSWORD"`
	S3Bucket       string `env:"S3_BUCKET"`
	S3Region       string `env:"S3_REGION"`
	S3BaseEndpoint string `env:"S3_BASE_ENDPOINT"`

	APIName    string `env:"API_NAME"`
	APIVersion string `env:"API_VERSION"`
	Developer  string `env:"DEVELOPER"`
	Contact    string `env:"CONTACT"`

	LogLevel string `env:"LOG_LEVEL"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: ServiceSecret and the S3 credentials must be overridden in production.
func (c *Config) LoadDefaults() {
	c.ServiceSecret = DefaultServiceSecret
	c.CallerTokenValidity = 5 * time.Minute
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = "mediagate.db"
	c.CacheTTL = 600 * time.Second
	c.CacheBackend = "sql"
	c.ValkeyAddr = "127.0.0.1:6379"
	c.SweepInterval = time.Minute
	c.EndpointAddrHTTP = ":8080"
	c.EndpointAddrGRPC = ":50051"
	c.ExtractorBinary = "yt-dlp"
	c.ExtractTimeout = 90 * time.Second
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "reports"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.APIName = "Universal Media Downloader API"
	c.APIVersion = "1.4.0"
	c.Developer = ""
	c.Contact = ""
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	if err := parseEnv(cfg); err != nil {
		panic(err)
	}
	parseFlags(cfg)
	return cfg
}
