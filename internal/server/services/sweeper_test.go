package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweep_RemovesLapsedRecordsOnly(t *testing.T) {
	e := newEnv(t, "")
	ctx := context.Background()

	_, err := e.verifications.Verify(ctx, testOwner, "short", 1)
	require.NoError(t, err)
	_, err = e.verifications.Verify(ctx, testOwner, "long", 10)
	require.NoError(t, err)
	_, err = e.tokens.Mint(ctx, "short", false)
	require.NoError(t, err)
	_, err = e.tokens.Mint(ctx, testOwner, true)
	require.NoError(t, err)

	res, err := e.sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{}, res)

	e.clock.Advance(24 * time.Hour)
	res, err = e.sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Verifications: 1, Tokens: 1}, res)

	n, err := e.rm.Tokens(e.db).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "owner token survives")
}

func TestRun_StopsOnCancel(t *testing.T) {
	e := newEnv(t, "")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		e.sweeper.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	e.sweeper.Run(context.Background(), 0)
}
