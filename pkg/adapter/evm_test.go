package adapter

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay-wallets/pkg/types"
)

type recordingSender struct {
	sent []*ethtypes.Transaction
	err  error
}

func (r *recordingSender) SendTransaction(_ context.Context, tx *ethtypes.Transaction) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, tx)
	return nil
}

func newTestSigner(t *testing.T, chainID int64) (*KeyedSigner, *recordingSender, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	sender := &recordingSender{}
	return newKeyedSigner(sender, nil, key, chainID), sender, key
}

func unsignedTx(t *testing.T, chainID int64) []byte {
	t.Helper()
	to := common.HexToAddress("0x000000000000000000000000000000000000dEaD")
	tx := ethtypes.NewTx(&ethtypes.DynamicFeeTx{
		ChainID:   big.NewInt(chainID),
		Nonce:     7,
		GasTipCap: big.NewInt(1_000_000),
		GasFeeCap: big.NewInt(2_000_000_000),
		Gas:       21000,
		To:        &to,
		Value:     big.NewInt(1),
	})
	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	return raw
}

func TestAdaptEVMSignsAndSends(t *testing.T) {
	signer, sender, key := newTestSigner(t, 8453)

	wallet, err := AdaptEVM(signer)
	require.NoError(t, err)
	assert.Equal(t, types.VMTypeEVM, wallet.VMType())
	assert.Equal(t, int64(8453), wallet.ChainID())
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey).Hex(), wallet.Address())

	hash, err := wallet.SignAndSend(context.Background(), unsignedTx(t, 8453))
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	sent := sender.sent[0]
	assert.Equal(t, sent.Hash().Hex(), hash)
	assert.Equal(t, uint64(7), sent.Nonce())

	from, err := ethtypes.Sender(ethtypes.LatestSignerForChainID(big.NewInt(8453)), sent)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), from)
}

func TestAdaptEVMRejectsOtherChain(t *testing.T) {
	signer, sender, _ := newTestSigner(t, 8453)
	wallet, err := AdaptEVM(signer)
	require.NoError(t, err)

	_, err = wallet.SignAndSend(context.Background(), unsignedTx(t, 1))
	assert.Error(t, err)
	assert.Empty(t, sender.sent)
}

func TestAdaptEVMBadInput(t *testing.T) {
	signer, _, _ := newTestSigner(t, 1)
	wallet, err := AdaptEVM(signer)
	require.NoError(t, err)

	_, err = wallet.SignAndSend(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyTransaction)

	_, err = wallet.SignAndSend(context.Background(), []byte{0x02, 0xff, 0x01})
	assert.Error(t, err)
}

func TestAdaptEVMSendFailure(t *testing.T) {
	signer, sender, _ := newTestSigner(t, 1)
	sender.err = errors.New("nonce too low")

	wallet, err := AdaptEVM(signer)
	require.NoError(t, err)

	_, err = wallet.SignAndSend(context.Background(), unsignedTx(t, 1))
	assert.ErrorContains(t, err, "nonce too low")
}

func TestAdaptEVMNotReady(t *testing.T) {
	_, err := AdaptEVM(nil)
	assert.Error(t, err)
}

func TestKeyedSignerFromHex(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	hexKey := "0x" + common.Bytes2Hex(crypto.FromECDSA(key))

	addr, err := AddressFromKey(hexKey)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), addr)

	_, err = AddressFromKey("not-a-key")
	assert.Error(t, err)

	_, err = NewKeyedSigner("", hexKey, 1)
	assert.Error(t, err)

	_, err = NewKeyedSigner("http://localhost:8545", "", 1)
	assert.Error(t, err)
}
