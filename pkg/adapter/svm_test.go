package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay-wallets/pkg/chains"
	"relay-wallets/pkg/types"
)

// signedTransfer builds a wire-format transfer signed by payer
func signedTransfer(t *testing.T, payer *solana.Wallet) []byte {
	t.Helper()
	recipient := solana.NewWallet().PublicKey()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(5000, payer.PublicKey(), recipient).Build()},
		solana.Hash{},
		solana.TransactionPayer(payer.PublicKey()),
	)
	require.NoError(t, err)

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer.PublicKey()) {
			return &payer.PrivateKey
		}
		return nil
	})
	require.NoError(t, err)

	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	return raw
}

func TestAdaptSolanaDelegatesToWallet(t *testing.T) {
	payer := solana.NewWallet()
	conn := rpc.New("http://localhost:8899")

	var gotConn *rpc.Client
	var gotTx *solana.Transaction
	want := solana.Signature{1, 2, 3}
	signAndSend := func(_ context.Context, tx *solana.Transaction, c *rpc.Client, _ rpc.TransactionOpts) (solana.Signature, error) {
		gotTx = tx
		gotConn = c
		return want, nil
	}

	wallet, err := AdaptSolana(payer.PublicKey().String(), chains.ChainIDSolana, conn, rpc.TransactionOpts{}, signAndSend)
	require.NoError(t, err)
	assert.Equal(t, types.VMTypeSVM, wallet.VMType())
	assert.Equal(t, chains.ChainIDSolana, wallet.ChainID())
	assert.Equal(t, payer.PublicKey().String(), wallet.Address())

	sig, err := wallet.SignAndSend(context.Background(), signedTransfer(t, payer))
	require.NoError(t, err)
	assert.Equal(t, want.String(), sig)
	assert.Same(t, conn, gotConn)
	require.NotNil(t, gotTx)
	assert.Equal(t, payer.PublicKey(), gotTx.Message.AccountKeys[0])
}

func TestAdaptSolanaErrors(t *testing.T) {
	payer := solana.NewWallet()
	conn := rpc.New("http://localhost:8899")
	failing := func(context.Context, *solana.Transaction, *rpc.Client, rpc.TransactionOpts) (solana.Signature, error) {
		return solana.Signature{}, errors.New("user rejected")
	}

	_, err := AdaptSolana("not-base58-!", chains.ChainIDSolana, conn, rpc.TransactionOpts{}, failing)
	assert.Error(t, err)

	_, err = AdaptSolana(payer.PublicKey().String(), chains.ChainIDSolana, nil, rpc.TransactionOpts{}, failing)
	assert.Error(t, err)

	_, err = AdaptSolana(payer.PublicKey().String(), chains.ChainIDSolana, conn, rpc.TransactionOpts{}, nil)
	assert.Error(t, err)

	wallet, err := AdaptSolana(payer.PublicKey().String(), chains.ChainIDSolana, conn, rpc.TransactionOpts{}, failing)
	require.NoError(t, err)

	_, err = wallet.SignAndSend(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyTransaction)

	_, err = wallet.SignAndSend(context.Background(), signedTransfer(t, payer))
	assert.ErrorContains(t, err, "user rejected")
}

func TestKeypairSender(t *testing.T) {
	wallet := solana.NewWallet()

	sender, err := NewKeypairSender(wallet.PrivateKey.String())
	require.NoError(t, err)
	assert.Equal(t, wallet.PublicKey(), sender.PublicKey())

	_, err = NewKeypairSender("")
	assert.Error(t, err)

	_, err = NewKeypairSender("0OIl")
	assert.Error(t, err)
}

func TestParseCommitment(t *testing.T) {
	assert.Equal(t, rpc.CommitmentFinalized, ParseCommitment("Finalized"))
	assert.Equal(t, rpc.CommitmentProcessed, ParseCommitment("processed"))
	assert.Equal(t, rpc.CommitmentConfirmed, ParseCommitment("confirmed"))
	assert.Equal(t, rpc.CommitmentConfirmed, ParseCommitment(""))
}
