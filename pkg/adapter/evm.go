package adapter

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"relay-wallets/pkg/types"
)

// EVMSigner is a ready signing client for one account-based wallet
type EVMSigner interface {
	Address() common.Address
	ChainID() *big.Int
	SignTx(tx *ethtypes.Transaction) (*ethtypes.Transaction, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
}

// evmWallet adapts an EVMSigner
type evmWallet struct {
	signer EVMSigner
}

// AdaptEVM wraps a ready EVM signing client
func AdaptEVM(signer EVMSigner) (AdaptedWallet, error) {
	if signer == nil {
		return nil, fmt.Errorf("signing client is not ready")
	}
	if signer.ChainID() == nil || signer.ChainID().Sign() <= 0 {
		return nil, fmt.Errorf("signing client has no chain id")
	}
	return &evmWallet{signer: signer}, nil
}

func (w *evmWallet) VMType() types.VMType {
	return types.VMTypeEVM
}

func (w *evmWallet) Address() string {
	return w.signer.Address().Hex()
}

func (w *evmWallet) ChainID() int64 {
	return w.signer.ChainID().Int64()
}

// SignAndSend decodes a typed (EIP-2718) or legacy RLP transaction, signs it
// with the signing client and submits it
func (w *evmWallet) SignAndSend(ctx context.Context, rawTx []byte) (string, error) {
	if len(rawTx) == 0 {
		return "", ErrEmptyTransaction
	}

	tx := new(ethtypes.Transaction)
	if err := tx.UnmarshalBinary(rawTx); err != nil {
		return "", fmt.Errorf("failed to decode transaction: %w", err)
	}

	// Legacy transactions only carry a chain id once signed
	if tx.Type() != ethtypes.LegacyTxType && tx.ChainId().Cmp(w.signer.ChainID()) != 0 {
		return "", fmt.Errorf("transaction is for chain %s, wallet is on chain %s", tx.ChainId(), w.signer.ChainID())
	}

	signed, err := w.signer.SignTx(tx)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := w.signer.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	return signed.Hash().Hex(), nil
}
