package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay-wallets/pkg/types"
)

func TestSetPrimaryWalletPresentImmediately(t *testing.T) {
	h := newHarness(t)
	h.source.add(evmWallet("0xABC"))
	start := h.clock.Now()

	conv := h.ctrl.SetPrimaryWallet("0xABC")
	h.tick()
	requireDone(t, conv)

	primary, ok := h.ctrl.Primary()
	require.True(t, ok)
	assert.Equal(t, "0xABC", primary.Address)
	assert.Equal(t, 1, conv.Attempts())
	assert.Equal(t, DefaultPollInterval, h.clock.Since(start))
	assert.Equal(t, []string{"0xABC"}, h.activator.calls())
}

func TestSetPrimaryWalletAppearsOnFifthAttempt(t *testing.T) {
	h := newHarness(t)
	conv := h.ctrl.SetPrimaryWallet("0xABC")

	for i := 0; i < 4; i++ {
		h.tick()
	}
	// Attempt four has finished once the poll waits again
	h.clock.BlockUntil(1)
	assert.Equal(t, 4, conv.Attempts())
	_, ok := h.ctrl.Primary()
	assert.False(t, ok)

	h.source.add(evmWallet("0xABC"))
	h.clock.Advance(DefaultPollInterval)
	requireDone(t, conv)

	wallet, found := conv.Wallet()
	require.True(t, found)
	assert.Equal(t, "0xABC", wallet.Address)
	assert.Equal(t, 5, conv.Attempts())

	h.clock.Advance(time.Minute)
	assert.Equal(t, 5, conv.Attempts())
	assert.Len(t, h.activator.calls(), 1)
}

func TestSetPrimaryWalletTimesOut(t *testing.T) {
	h := newHarness(t)
	h.source.add(evmWallet("0xOTHER"))
	start := h.clock.Now()

	conv := h.ctrl.SetPrimaryWallet("0xABC")
	for i := 0; i < DefaultPollMaxAttempts; i++ {
		h.tick()
	}
	requireDone(t, conv)

	_, ok := h.ctrl.Primary()
	assert.False(t, ok)
	_, found := conv.Wallet()
	assert.False(t, found)
	assert.Equal(t, DefaultPollMaxAttempts, conv.Attempts())
	assert.Equal(t, 4*time.Second, h.clock.Since(start))
	assert.Empty(t, h.activator.calls())

	h.clock.Advance(time.Minute)
	assert.Equal(t, DefaultPollMaxAttempts, conv.Attempts())
}

func TestSetPrimaryWalletIgnoresWalletSeenOnLastAttempt(t *testing.T) {
	h := newHarness(t)
	conv := h.ctrl.SetPrimaryWallet("0xABC")

	for i := 0; i < DefaultPollMaxAttempts-1; i++ {
		h.tick()
	}
	h.clock.BlockUntil(1)
	assert.Equal(t, DefaultPollMaxAttempts-1, conv.Attempts())

	h.source.add(evmWallet("0xABC"))
	h.clock.Advance(DefaultPollInterval)
	requireDone(t, conv)

	assert.Equal(t, DefaultPollMaxAttempts, conv.Attempts())
	_, ok := h.ctrl.Primary()
	assert.False(t, ok)
	_, found := conv.Wallet()
	assert.False(t, found)
	assert.Empty(t, h.activator.calls())
}

func TestSetPrimaryWalletActivationFailureIsSwallowed(t *testing.T) {
	h := newHarness(t)
	h.activator.err = errBoom
	h.source.add(evmWallet("0xABC"))

	conv := h.ctrl.SetPrimaryWallet("0xABC")
	h.tick()
	requireDone(t, conv)

	primary, ok := h.ctrl.Primary()
	require.True(t, ok)
	assert.Equal(t, "0xABC", primary.Address)
	assert.Equal(t, 1, conv.Attempts())
	assert.Len(t, h.activator.calls(), 1)
}

func TestSetPrimaryWalletSolanaSkipsActivation(t *testing.T) {
	h := newHarness(t)
	h.source.add(solanaWallet("sol1"))

	conv := h.ctrl.SetPrimaryWallet("sol1")
	h.tick()
	requireDone(t, conv)

	primary, ok := h.ctrl.Primary()
	require.True(t, ok)
	assert.Equal(t, "sol1", primary.Address)
	assert.Empty(t, h.activator.calls())

	wallet := h.ctrl.Wallet()
	require.NotNil(t, wallet)
	assert.Equal(t, types.VMTypeSVM, wallet.VMType())
}

func TestSetPrimaryWalletAddressMatchIsExact(t *testing.T) {
	h := newHarness(t)
	h.source.add(evmWallet("0xabc"))

	conv := h.ctrl.SetPrimaryWallet("0xABC")
	for i := 0; i < DefaultPollMaxAttempts; i++ {
		h.tick()
	}
	requireDone(t, conv)

	_, ok := h.ctrl.Primary()
	assert.False(t, ok)
}

func TestCloseStopsConvergence(t *testing.T) {
	h := newHarness(t)
	conv := h.ctrl.SetPrimaryWallet("0xABC")

	h.tick()
	h.clock.BlockUntil(1)
	h.ctrl.Close()

	select {
	case <-conv.Done():
	default:
		t.Fatal("convergence still running after Close")
	}
	assert.Equal(t, 1, conv.Attempts())
}

func TestConvergenceWaitHonoursContext(t *testing.T) {
	h := newHarness(t)
	conv := h.ctrl.SetPrimaryWallet("0xABC")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := conv.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
