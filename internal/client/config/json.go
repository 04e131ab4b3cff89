package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/mediagate/internal/flagx"
	"github.com/dmitrijs2005/mediagate/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	CallerID            string         `json:"caller_id"`
	ServiceSecret       string         `json:"service_secret"`
	CallerTokenValidity timex.Duration `json:"caller_token_validity"`
}

// parseJson overlays cfg with the non-empty values of the file named by
// -c/-config. Read or unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.CallerID != "" {
		cfg.CallerID = jc.CallerID
	}
	if jc.ServiceSecret != "" {
		cfg.ServiceSecret = jc.ServiceSecret
	}
	if jc.CallerTokenValidity.Duration != 0 {
		cfg.CallerTokenValidity = jc.CallerTokenValidity.Duration
	}
}
