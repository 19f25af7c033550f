package types

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// VMType identifies the wallet family a linked wallet belongs to
type VMType string

const (
	VMTypeEVM VMType = "evm" // Account-based chains carrying a chain id
	VMTypeSVM VMType = "svm" // Solana-family chains
)

// Direction tells the swap widget which side of a swap a new wallet is for
type Direction string

const (
	DirectionTo   Direction = "to"
	DirectionFrom Direction = "from"
)

// WalletMeta is the display metadata reported by the identity provider
type WalletMeta struct {
	Name string `json:"name,omitempty"`
	Icon string `json:"icon,omitempty"`
}

// SolanaSender is the native "send transaction" capability of a connected
// Solana wallet. The wallet signs tx and submits it over conn.
type SolanaSender interface {
	SendTransaction(ctx context.Context, tx *solana.Transaction, conn *rpc.Client, opts rpc.TransactionOpts) (solana.Signature, error)
}

// ConnectedWallet is one wallet session surfaced by the identity provider.
// Values are never mutated; a reconnect produces a new value.
type ConnectedWallet struct {
	Address          string     `json:"address"`
	ChainID          string     `json:"chain_id,omitempty"`       // e.g. "eip155:8453"; empty for Solana wallets
	ConnectorType    string     `json:"connector_type"`           // e.g. "injected", "solana_adapter"
	WalletClientType string     `json:"wallet_client_type"`       // e.g. "metamask", "phantom"
	Meta             WalletMeta `json:"meta"`
	ConnectedAt      time.Time  `json:"connected_at"`

	// Sender is set only for Solana wallets able to send transactions
	Sender SolanaSender `json:"-"`
}

// IsEVM reports whether the wallet carries a chain id
func (w ConnectedWallet) IsEVM() bool {
	return w.ChainID != ""
}

// IsSolana reports whether the wallet's connector belongs to the Solana family
func (w ConnectedWallet) IsSolana() bool {
	return strings.Contains(strings.ToLower(w.ConnectorType), "solana")
}

// EVMChainID parses the numeric chain id out of "eip155:<id>" or "<id>"
func (w ConnectedWallet) EVMChainID() (int64, error) {
	return ParseEVMChainID(w.ChainID)
}

// ParseEVMChainID parses a CAIP-2 eip155 chain id or a bare decimal id
func ParseEVMChainID(chainID string) (int64, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(chainID), "eip155:")
	if raw == "" {
		return 0, fmt.Errorf("empty chain id")
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chain id %q: %w", chainID, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid chain id %q", chainID)
	}

	return id, nil
}

// LinkedWallet is the normalized view of a connected wallet handed to the swap widget
type LinkedWallet struct {
	Address       string `json:"address"`
	WalletLogoURL string `json:"walletLogoUrl,omitempty"`
	VMType        VMType `json:"vmType"`
	Connector     string `json:"connector"`
}

// LinkParams are the parameters of a "link a new wallet" request
type LinkParams struct {
	Chain     string    `json:"chain,omitempty"`
	Direction Direction `json:"direction"`
}

// Validate checks the link parameters
func (p LinkParams) Validate() error {
	if p.Direction != DirectionTo && p.Direction != DirectionFrom {
		return fmt.Errorf("direction must be 'to' or 'from'")
	}
	return nil
}
