package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/mediagate/internal/flagx"
	"github.com/dmitrijs2005/mediagate/internal/timex"
)

// JsonConfig is the on-disk shape of the optional configuration file.
// Interval fields use timex.Duration so both "10m" and integer nanoseconds
// are accepted.
type JsonConfig struct {
	OwnerID             string         `json:"owner_id"`
	ServiceSecret       string         `json:"service_secret"`
	CallerTokenValidity timex.Duration `json:"caller_token_validity"`
	DatabaseDriver      string         `json:"database_driver"`
	DatabaseDSN         string         `json:"database_dsn"`
	OwnerBypassToken    string         `json:"owner_bypass_token"`
	CacheTTL            timex.Duration `json:"cache_ttl"`
	CacheBackend        string         `json:"cache_backend"`
	ValkeyAddr          string         `json:"valkey_addr"`
	SweepInterval       timex.Duration `json:"sweep_interval"`
	EndpointAddrHTTP    string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC    string         `json:"endpoint_addr_grpc"`
	ExtractorBinary     string         `json:"extractor_binary"`
	ExtractTimeout      timex.Duration `json:"extract_timeout"`
	S3RootUser          string         `json:"s3_root_user"`
	S3RootPassword      string         `json:"s3_root_password"`
	S3Bucket            string         `json:"s3_bucket"`
	S3Region            string         `json:"s3_region"`
	S3BaseEndpoint      string         `json:"s3_base_endpoint"`
	APIName             string         `json:"api_name"`
	APIVersion          string         `json:"api_version"`
	Developer           string         `json:"developer"`
	Contact             string         `json:"contact"`
	LogLevel            string         `json:"log_level"`
}

// parseJson loads the file named by -c/-config, if any, and copies every
// non-empty value into config. Unreadable or malformed files panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.OwnerID, c.OwnerID)
	setString(&config.ServiceSecret, c.ServiceSecret)
	setDuration(&config.CallerTokenValidity, c.CallerTokenValidity)
	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.OwnerBypassToken, c.OwnerBypassToken)
	setDuration(&config.CacheTTL, c.CacheTTL)
	setString(&config.CacheBackend, c.CacheBackend)
	setString(&config.ValkeyAddr, c.ValkeyAddr)
	setDuration(&config.SweepInterval, c.SweepInterval)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.ExtractorBinary, c.ExtractorBinary)
	setDuration(&config.ExtractTimeout, c.ExtractTimeout)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.APIName, c.APIName)
	setString(&config.APIVersion, c.APIVersion)
	setString(&config.Developer, c.Developer)
	setString(&config.Contact, c.Contact)
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
