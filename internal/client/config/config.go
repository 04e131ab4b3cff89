package config

import "time"

// EnvPrefix namespaces the environment variables read by LoadConfig.
const EnvPrefix = "MEDIAGATE_"

// Config holds runtime settings for the operator CLI.
type Config struct {
	ServerEndpointAddr  string        `env:"COMMAND_ADDR"`
	CallerID            string        `env:"CALLER_ID"`
	ServiceSecret       string        `env:"SERVICE_SECRET"`
	CallerTokenValidity time.Duration `env:"CALLER_TOKEN_VALIDITY"`
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.CallerID = ""
	c.ServiceSecret = "secretKey"
	c.CallerTokenValidity = 5 * time.Minute
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON, the environment and command-line flags. Later sources take precedence.
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
