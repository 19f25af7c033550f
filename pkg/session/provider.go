package session

import (
	"context"

	"relay-wallets/pkg/types"
)

// WalletSource exposes the identity provider's cached wallet lists. Every
// call returns the current snapshot; the controller never mutates it.
type WalletSource interface {
	// Wallets returns the connected account-based (EVM) wallets
	Wallets() []types.ConnectedWallet

	// SolanaWallets returns the connected Solana wallets
	SolanaWallets() []types.ConnectedWallet
}

// ConnectOptions are passed to the identity provider when a new connection is requested
type ConnectOptions struct {
	Chain string // optional target-chain hint
}

// Connector asks the identity provider to start a new wallet connection.
// Success is reported later through Controller.HandleConnected.
type Connector interface {
	RequestConnection(ctx context.Context, opts ConnectOptions) error
}

// Activator marks a wallet active in the account-management subsystem
type Activator interface {
	SetActiveWallet(ctx context.Context, wallet types.ConnectedWallet) error
}
