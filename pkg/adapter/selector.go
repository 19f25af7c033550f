package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"relay-wallets/pkg/chains"
	"relay-wallets/pkg/types"
)

// SelectorConfig configures the Solana branch of the selector
type SelectorConfig struct {
	SolanaRPC        string
	SolanaChainID    int64
	SolanaCommitment rpc.CommitmentType
	SkipPreflight    bool
}

// Selector picks the adapter matching the primary wallet's family
type Selector struct {
	config SelectorConfig
	dial   func(endpoint string) *rpc.Client
	logger *zap.Logger
}

// NewSelector creates a selector
func NewSelector(cfg SelectorConfig, logger *zap.Logger) *Selector {
	if cfg.SolanaChainID == 0 {
		cfg.SolanaChainID = chains.ChainIDSolana
	}
	if cfg.SolanaCommitment == "" {
		cfg.SolanaCommitment = rpc.CommitmentConfirmed
	}
	return &Selector{
		config: cfg,
		dial:   rpc.New,
		logger: logger,
	}
}

// Select builds the adapted wallet for primary, or returns nil when there is
// no usable wallet. Construction failures are never propagated.
func (s *Selector) Select(primary *types.ConnectedWallet, signer EVMSigner) (wallet AdaptedWallet) {
	if primary == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Debug("wallet adaptation panicked",
				zap.String("address", primary.Address),
				zap.Any("panic", r))
			wallet = nil
		}
	}()

	adapted, err := s.adapt(*primary, signer)
	if err != nil {
		s.logger.Debug("wallet adaptation failed",
			zap.String("address", primary.Address),
			zap.Error(err))
		return nil
	}
	return adapted
}

func (s *Selector) adapt(primary types.ConnectedWallet, signer EVMSigner) (AdaptedWallet, error) {
	switch {
	case primary.IsEVM():
		if signer == nil {
			return nil, nil
		}
		// A signer keyed to another wallet is not ready for this one
		if !strings.EqualFold(signer.Address().Hex(), primary.Address) {
			return nil, nil
		}
		return AdaptEVM(signer)

	case primary.IsSolana():
		if primary.Sender == nil {
			return nil, fmt.Errorf("solana wallet %s cannot send transactions", primary.Address)
		}
		if s.config.SolanaRPC == "" {
			return nil, fmt.Errorf("solana RPC endpoint not configured")
		}

		conn := s.dial(s.config.SolanaRPC)
		sender := primary.Sender
		signAndSend := func(ctx context.Context, tx *solana.Transaction, conn *rpc.Client, opts rpc.TransactionOpts) (solana.Signature, error) {
			return sender.SendTransaction(ctx, tx, conn, opts)
		}
		opts := rpc.TransactionOpts{
			SkipPreflight:       s.config.SkipPreflight,
			PreflightCommitment: s.config.SolanaCommitment,
		}
		return AdaptSolana(primary.Address, s.config.SolanaChainID, conn, opts, signAndSend)

	default:
		return nil, nil
	}
}
