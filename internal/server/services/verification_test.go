package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/mediagate/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify_ListReportsDaysRemaining(t *testing.T) {
	e := newEnv(t, "")
	ctx := context.Background()

	_, err := e.verifications.Verify(ctx, testOwner, "u1", 30)
	require.NoError(t, err)

	list, err := e.verifications.List(ctx, testOwner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "u1", list[0].UserID)
	assert.GreaterOrEqual(t, list[0].DaysRemaining, 29)
	assert.LessOrEqual(t, list[0].DaysRemaining, 30)

	e.clock.Advance(time.Hour)
	list, err = e.verifications.List(ctx, testOwner)
	require.NoError(t, err)
	assert.Equal(t, 29, list[0].DaysRemaining)
}

func TestVerify_ReplacesPriorGrant(t *testing.T) {
	e := newEnv(t, "")
	ctx := context.Background()

	_, err := e.verifications.Verify(ctx, testOwner, "u1", 30)
	require.NoError(t, err)
	v, err := e.verifications.Verify(ctx, testOwner, "u1", 2)
	require.NoError(t, err)
	assert.Equal(t, testStart.Add(48*time.Hour).Unix(), v.Expires.Unix())
}

func TestVerify_RejectsBadInput(t *testing.T) {
	e := newEnv(t, "")
	ctx := context.Background()

	_, err := e.verifications.Verify(ctx, "intruder", "u1", 5)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = e.verifications.Verify(ctx, testOwner, "u1", 0)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = e.verifications.Verify(ctx, testOwner, " ", 3)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = e.verifications.List(ctx, "intruder")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestVerify_LongGrantStaysInFuture(t *testing.T) {
	e := newEnv(t, "")
	ctx := context.Background()

	v, err := e.verifications.Verify(ctx, testOwner, "u1", MaxGrantDays)
	require.NoError(t, err)
	assert.Equal(t, testStart.Unix()+int64(MaxGrantDays)*86400, v.Expires.Unix())
	assert.True(t, v.Expires.After(testStart))

	list, err := e.verifications.List(ctx, testOwner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, MaxGrantDays, list[0].DaysRemaining)

	_, err = e.tokens.Mint(ctx, "u1", false)
	assert.NoError(t, err)

	_, err = e.verifications.Verify(ctx, testOwner, "u2", 200000)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
	_, err = e.verifications.Extend(ctx, testOwner, "u1", 200000)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	list, err = e.verifications.List(ctx, testOwner)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestExtend_AddsToLiveGrant(t *testing.T) {
	e := newEnv(t, "")
	ctx := context.Background()

	_, err := e.verifications.Verify(ctx, testOwner, "u1", 10)
	require.NoError(t, err)

	v, err := e.verifications.Extend(ctx, testOwner, "u1", 5)
	require.NoError(t, err)
	assert.Equal(t, testStart.Add(15*24*time.Hour).Unix(), v.Expires.Unix())

	fresh, err := e.verifications.Extend(ctx, testOwner, "u2", 5)
	require.NoError(t, err)
	assert.Equal(t, testStart.Add(5*24*time.Hour).Unix(), fresh.Expires.Unix())
}

func TestExtend_LapsedGrantRestartsFromNow(t *testing.T) {
	e := newEnv(t, "")
	ctx := context.Background()

	_, err := e.verifications.Verify(ctx, testOwner, "u1", 1)
	require.NoError(t, err)
	e.clock.Advance(72 * time.Hour)

	v, err := e.verifications.Extend(ctx, testOwner, "u1", 1)
	require.NoError(t, err)
	assert.Equal(t, e.clock.Now().Add(24*time.Hour).Unix(), v.Expires.Unix())
}

func TestDelete_CascadesToTokens(t *testing.T) {
	e := newEnv(t, "")
	ctx := context.Background()

	_, err := e.verifications.Verify(ctx, testOwner, "u1", 30)
	require.NoError(t, err)
	tok, err := e.tokens.Mint(ctx, "u1", false)
	require.NoError(t, err)

	n, err := e.verifications.Delete(ctx, testOwner, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	d, err := e.validator.Check(ctx, tok.Token)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonInvalid, d.Reason)

	_, err = e.verifications.Delete(ctx, testOwner, "u1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
