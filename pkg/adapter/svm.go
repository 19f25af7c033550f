package adapter

import (
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"relay-wallets/pkg/types"
)

// SignAndSendFunc signs and submits a Solana transaction, returning its signature
type SignAndSendFunc func(ctx context.Context, tx *solana.Transaction, conn *rpc.Client, opts rpc.TransactionOpts) (solana.Signature, error)

// svmWallet adapts a Solana wallet
type svmWallet struct {
	address     string
	chainID     int64
	conn        *rpc.Client
	opts        rpc.TransactionOpts
	signAndSend SignAndSendFunc
}

// AdaptSolana wraps a Solana wallet's sign-and-send capability
func AdaptSolana(address string, chainID int64, conn *rpc.Client, opts rpc.TransactionOpts, signAndSend SignAndSendFunc) (AdaptedWallet, error) {
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return nil, fmt.Errorf("invalid solana address: %w", err)
	}
	if conn == nil {
		return nil, fmt.Errorf("solana connection is required")
	}
	if signAndSend == nil {
		return nil, fmt.Errorf("sign and send function is required")
	}

	return &svmWallet{
		address:     address,
		chainID:     chainID,
		conn:        conn,
		opts:        opts,
		signAndSend: signAndSend,
	}, nil
}

func (w *svmWallet) VMType() types.VMType {
	return types.VMTypeSVM
}

func (w *svmWallet) Address() string {
	return w.address
}

func (w *svmWallet) ChainID() int64 {
	return w.chainID
}

// SignAndSend decodes a wire-format Solana transaction and hands it to the wallet
func (w *svmWallet) SignAndSend(ctx context.Context, rawTx []byte) (string, error) {
	if len(rawTx) == 0 {
		return "", ErrEmptyTransaction
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(rawTx))
	if err != nil {
		return "", fmt.Errorf("failed to decode transaction: %w", err)
	}

	sig, err := w.signAndSend(ctx, tx, w.conn, w.opts)
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	return sig.String(), nil
}
