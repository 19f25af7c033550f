package adapter

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// txSender is the part of ethclient.Client a KeyedSigner needs
type txSender interface {
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
}

// KeyedSigner is an EVM signing client backed by a local private key
type KeyedSigner struct {
	client     txSender
	closer     func()
	privateKey *ecdsa.PrivateKey
	address    common.Address
	chainID    *big.Int
}

// NewKeyedSigner connects to rpcURL and loads a hex-encoded private key
func NewKeyedSigner(rpcURL, hexKey string, chainID int64) (*KeyedSigner, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("RPC URL not configured for chain %d", chainID)
	}

	privateKey, err := parsePrivateKey(hexKey)
	if err != nil {
		return nil, err
	}

	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}

	return newKeyedSigner(client, client.Close, privateKey, chainID), nil
}

func newKeyedSigner(client txSender, closer func(), privateKey *ecdsa.PrivateKey, chainID int64) *KeyedSigner {
	return &KeyedSigner{
		client:     client,
		closer:     closer,
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
		chainID:    big.NewInt(chainID),
	}
}

// AddressFromKey derives the address controlled by a hex-encoded private key
func AddressFromKey(hexKey string) (common.Address, error) {
	privateKey, err := parsePrivateKey(hexKey)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(privateKey.PublicKey), nil
}

func parsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	if hexKey == "" {
		return nil, fmt.Errorf("private key not configured")
	}
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return privateKey, nil
}

// Address implements EVMSigner
func (s *KeyedSigner) Address() common.Address {
	return s.address
}

// ChainID implements EVMSigner
func (s *KeyedSigner) ChainID() *big.Int {
	return new(big.Int).Set(s.chainID)
}

// SignTx implements EVMSigner
func (s *KeyedSigner) SignTx(tx *ethtypes.Transaction) (*ethtypes.Transaction, error) {
	signed, err := ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(s.chainID), s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signed, nil
}

// SendTransaction implements EVMSigner
func (s *KeyedSigner) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error {
	return s.client.SendTransaction(ctx, tx)
}

// Close closes the client connection
func (s *KeyedSigner) Close() {
	if s.closer != nil {
		s.closer()
	}
}
