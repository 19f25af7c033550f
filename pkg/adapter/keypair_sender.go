package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// KeypairSender is a Solana wallet's send capability backed by a local keypair
type KeypairSender struct {
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey
}

// NewKeypairSender loads a base58-encoded private key
func NewKeypairSender(base58Key string) (*KeypairSender, error) {
	if base58Key == "" {
		return nil, fmt.Errorf("private key not configured for Solana")
	}

	privateKey, err := solana.PrivateKeyFromBase58(base58Key)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &KeypairSender{
		privateKey: privateKey,
		publicKey:  privateKey.PublicKey(),
	}, nil
}

// PublicKey returns the wallet address
func (s *KeypairSender) PublicKey() solana.PublicKey {
	return s.publicKey
}

// SendTransaction signs tx with the keypair and submits it over conn
func (s *KeypairSender) SendTransaction(ctx context.Context, tx *solana.Transaction, conn *rpc.Client, opts rpc.TransactionOpts) (solana.Signature, error) {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.publicKey) {
			return &s.privateKey
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := conn.SendTransactionWithOpts(ctx, tx, opts)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	return sig, nil
}

// ParseCommitment maps a commitment name to the rpc commitment level
func ParseCommitment(commitment string) rpc.CommitmentType {
	switch strings.ToLower(commitment) {
	case "finalized":
		return rpc.CommitmentFinalized
	case "confirmed":
		return rpc.CommitmentConfirmed
	case "processed":
		return rpc.CommitmentProcessed
	default:
		return rpc.CommitmentConfirmed
	}
}
