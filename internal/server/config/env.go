package config

import "github.com/caarlos0/env/v11"

// parseEnv overlays fields whose MEDIAGATE_* variable is set. Unset
// variables leave the current value untouched.
func parseEnv(cfg *Config) error {
	return env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix})
}
