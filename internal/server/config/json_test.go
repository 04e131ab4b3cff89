package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"owner_id":           "42",
		"database_driver":    "postgres",
		"database_dsn":       "postgres://u:p@db:5432/mediagate",
		"cache_ttl":          "5m",
		"sweep_interval":     30000000000,
		"endpoint_addr_http": ":9090",
		"s3_bucket":          "bucket",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "42", cfg.OwnerID)
		assert.Equal(t, "postgres", cfg.DatabaseDriver)
		assert.Equal(t, "postgres://u:p@db:5432/mediagate", cfg.DatabaseDSN)
		assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
		assert.Equal(t, 30*time.Second, cfg.SweepInterval)
		assert.Equal(t, ":9090", cfg.EndpointAddrHTTP)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		// absent keys keep defaults
		assert.Equal(t, ":50051", cfg.EndpointAddrGRPC)
		assert.Equal(t, "yt-dlp", cfg.ExtractorBinary)
	})

	t.Run("no config flag, no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{OwnerID: "keep", CacheTTL: time.Minute}
		parseJson(cfg)

		assert.Equal(t, "keep", cfg.OwnerID)
		assert.Equal(t, time.Minute, cfg.CacheTTL)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
