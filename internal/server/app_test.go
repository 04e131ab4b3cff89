package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/mediagate/internal/logging"
	"github.com/dmitrijs2005/mediagate/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.OwnerID = "OWNER"
	c.DatabaseDSN = ":memory:"
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.ServiceSecret = "test-service-secret"
	return c
}

func TestNewApp_WiresServices(t *testing.T) {
	ctx := context.Background()

	app, err := NewApp(ctx, testConfig(), logging.NopLogger{})
	require.NoError(t, err)
	defer app.Close()

	tok, err := app.tokens.Mint(ctx, "OWNER", true)
	require.NoError(t, err)

	d, err := app.validator.Check(ctx, tok.Token)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, "OWNER", d.UserID)
}

func TestNewApp_CreatesSQLiteDirectory(t *testing.T) {
	c := testConfig()
	c.DatabaseDSN = filepath.Join(t.TempDir(), "state", "mediagate.db")

	app, err := NewApp(context.Background(), c, logging.NopLogger{})
	require.NoError(t, err)
	require.NoError(t, app.Close())

	_, err = os.Stat(c.DatabaseDSN)
	assert.NoError(t, err)
}

func TestNewApp_RejectsUnknownSettings(t *testing.T) {
	c := testConfig()
	c.DatabaseDriver = "oracle"
	_, err := NewApp(context.Background(), c, logging.NopLogger{})
	assert.Error(t, err)

	c = testConfig()
	c.CacheBackend = "memcached"
	_, err = NewApp(context.Background(), c, logging.NopLogger{})
	assert.ErrorContains(t, err, "memcached")
}

func TestRunCommands_StopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(), logging.NopLogger{})
	require.NoError(t, err)
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		assert.NoError(t, app.RunCommands(ctx))
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("RunCommands did not return after cancel")
	}
}

func TestRunServing_StopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(), logging.NopLogger{})
	require.NoError(t, err)
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.RunServing(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("RunServing did not return after cancel")
	}
}

func TestCheckServiceSecret(t *testing.T) {
	c := testConfig()
	assert.NoError(t, checkServiceSecret(c))

	c.ServiceSecret = config.DefaultServiceSecret
	assert.ErrorIs(t, checkServiceSecret(c), errWeakServiceSecret)

	c.ServiceSecret = ""
	assert.ErrorIs(t, checkServiceSecret(c), errWeakServiceSecret)
}

func TestRunCommands_RefusesDefaultSecret(t *testing.T) {
	c := testConfig()
	c.ServiceSecret = config.DefaultServiceSecret

	app, err := NewApp(context.Background(), c, logging.NopLogger{})
	require.NoError(t, err)
	defer app.Close()

	assert.ErrorIs(t, app.RunCommands(context.Background()), errWeakServiceSecret)
}
