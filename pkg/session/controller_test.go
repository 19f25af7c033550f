package session

import (
	"context"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay-wallets/pkg/types"
)

const signerAddress = "0x00000000000000000000000000000000000000A1"

func promote(t *testing.T, h *harness, w types.ConnectedWallet) {
	t.Helper()
	h.source.add(w)
	conv := h.ctrl.SetPrimaryWallet(w.Address)
	h.tick()
	requireDone(t, conv)
}

func TestAdaptedWalletWaitsForSigningClient(t *testing.T) {
	h := newHarness(t)
	promote(t, h, evmWallet(signerAddress))

	assert.Nil(t, h.ctrl.Wallet())

	h.ctrl.SetSigningClient(fakeSigner{address: common.HexToAddress(signerAddress)})
	wallet := h.ctrl.Wallet()
	require.NotNil(t, wallet)
	assert.Equal(t, types.VMTypeEVM, wallet.VMType())

	h.ctrl.SetSigningClient(nil)
	assert.Nil(t, h.ctrl.Wallet())
}

func TestClearPrimaryDropsAdaptedWallet(t *testing.T) {
	h := newHarness(t)
	h.ctrl.SetSigningClient(fakeSigner{address: common.HexToAddress(signerAddress)})
	promote(t, h, evmWallet(signerAddress))
	require.NotNil(t, h.ctrl.Wallet())

	h.ctrl.ClearPrimary()
	assert.Nil(t, h.ctrl.Wallet())
	_, ok := h.ctrl.Primary()
	assert.False(t, ok)
}

func TestDisconnectOfPrimaryClearsIt(t *testing.T) {
	h := newHarness(t)
	promote(t, h, solanaWallet("sol1"))
	require.NotNil(t, h.ctrl.Wallet())

	h.ctrl.HandleDisconnected("sol2")
	assert.NotNil(t, h.ctrl.Wallet())

	h.ctrl.HandleDisconnected("sol1")
	assert.Nil(t, h.ctrl.Wallet())
	_, ok := h.ctrl.Primary()
	assert.False(t, ok)
}

func TestStaleAdaptationIsDropped(t *testing.T) {
	h := newHarness(t)
	h.selector.block = true
	h.selector.entered = make(chan struct{})
	h.selector.release = make(chan struct{})

	w := solanaWallet("sol1")
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ctrl.setPrimary(&w)
	}()

	<-h.selector.entered
	h.ctrl.ClearPrimary()
	close(h.selector.release)
	<-done

	assert.Nil(t, h.ctrl.Wallet())
}

func TestDisconnectOfOldPrimaryKeepsNewOne(t *testing.T) {
	h := newHarness(t)

	for i := 0; i < 200; i++ {
		old := solanaWallet("sol-old")
		next := solanaWallet("sol-new")
		h.ctrl.setPrimary(&old)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.ctrl.HandleDisconnected("sol-old")
		}()
		h.ctrl.setPrimary(&next)
		wg.Wait()

		primary, ok := h.ctrl.Primary()
		require.True(t, ok, "iteration %d", i)
		assert.Equal(t, "sol-new", primary.Address)
	}
}

func TestSignAndSendWithoutWallet(t *testing.T) {
	h := newHarness(t)

	_, err := h.ctrl.SignAndSend(context.Background(), []byte{1})
	assert.ErrorIs(t, err, ErrNoWallet)

	promote(t, h, solanaWallet("sol1"))
	sig, err := h.ctrl.SignAndSend(context.Background(), []byte{1})
	require.NoError(t, err)
	assert.Equal(t, "sig-sol1", sig)
}

func TestAdaptationRecomputedOnlyOnChange(t *testing.T) {
	h := newHarness(t)
	promote(t, h, solanaWallet("sol1"))

	h.selector.mu.Lock()
	calls := h.selector.calls
	h.selector.mu.Unlock()
	assert.Equal(t, 1, calls)

	_ = h.ctrl.Wallet()
	_ = h.ctrl.LinkedWallets()

	h.selector.mu.Lock()
	defer h.selector.mu.Unlock()
	assert.Equal(t, 1, h.selector.calls)
}
