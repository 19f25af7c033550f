// Package adapter turns a wallet from either chain family into a uniform
// signing handle for the swap widget.
package adapter

import (
	"context"
	"errors"

	"relay-wallets/pkg/types"
)

// ErrEmptyTransaction is returned when SignAndSend receives no bytes
var ErrEmptyTransaction = errors.New("empty transaction")

// AdaptedWallet is a signing-capable handle shaped for the swap widget
type AdaptedWallet interface {
	// VMType returns the wallet family
	VMType() types.VMType

	// Address returns the wallet address
	Address() string

	// ChainID returns the swap-registry chain id the wallet signs for
	ChainID() int64

	// SignAndSend signs the serialized transaction and submits it,
	// returning the transaction hash (EVM) or signature (SVM)
	SignAndSend(ctx context.Context, rawTx []byte) (string, error)
}
