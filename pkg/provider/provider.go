// Package provider is a local identity provider: it keeps the connected
// wallets in a file-backed store and reports connection changes to the
// session controller.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"relay-wallets/pkg/adapter"
	"relay-wallets/pkg/chains"
	"relay-wallets/pkg/session"
	"relay-wallets/pkg/types"
)

const (
	DefaultEVMConnector    = "injected"
	DefaultSolanaConnector = "solana_adapter"
)

// ErrWalletNotFound is returned for operations on a wallet that is not connected
var ErrWalletNotFound = errors.New("wallet not connected")

// SignerFactory builds the EVM signing client for an activated wallet
type SignerFactory func(w types.ConnectedWallet) (adapter.EVMSigner, error)

// KeyedSignerFactory returns a SignerFactory backed by one local private key.
// Only the wallet whose address the key controls can be activated.
func KeyedSignerFactory(hexKey string, registry *chains.Registry) SignerFactory {
	return func(w types.ConnectedWallet) (adapter.EVMSigner, error) {
		address, err := adapter.AddressFromKey(hexKey)
		if err != nil {
			return nil, err
		}
		if !strings.EqualFold(address.Hex(), w.Address) {
			return nil, fmt.Errorf("no signing key for wallet %s", w.Address)
		}

		chainID, err := w.EVMChainID()
		if err != nil {
			return nil, err
		}
		chain, err := registry.ByID(chainID)
		if err != nil {
			return nil, err
		}

		return adapter.NewKeyedSigner(chain.HTTPRPCURL, hexKey, chainID)
	}
}

// Options configure a Provider
type Options struct {
	Storage       *Storage
	SignerFactory SignerFactory
	SolanaSender  *adapter.KeypairSender
	Logger        *zap.Logger
}

// Provider implements session.WalletSource, session.Connector and session.Activator
type Provider struct {
	storage       *Storage
	signerFactory SignerFactory
	solanaSender  *adapter.KeypairSender
	logger        *zap.Logger

	mu             sync.Mutex
	pending        *session.ConnectOptions
	signer         adapter.EVMSigner
	onConnect      func(types.ConnectedWallet)
	onDisconnect   func(address string)
	onSignerChange func(adapter.EVMSigner)
}

// New creates a provider
func New(opts Options) (*Provider, error) {
	if opts.Storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		storage:       opts.Storage,
		signerFactory: opts.SignerFactory,
		solanaSender:  opts.SolanaSender,
		logger:        logger,
	}, nil
}

// OnConnect registers the callback fired after a successful connection
func (p *Provider) OnConnect(fn func(types.ConnectedWallet)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onConnect = fn
}

// OnDisconnect registers the callback fired after a wallet is removed
func (p *Provider) OnDisconnect(fn func(address string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onDisconnect = fn
}

// OnSignerChange registers the callback receiving the active EVM signing client
func (p *Provider) OnSignerChange(fn func(adapter.EVMSigner)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onSignerChange = fn
}

// Wallets implements session.WalletSource
func (p *Provider) Wallets() []types.ConnectedWallet {
	var out []types.ConnectedWallet
	for _, w := range p.storage.List() {
		if w.IsEVM() {
			out = append(out, w)
		}
	}
	return out
}

// SolanaWallets implements session.WalletSource
func (p *Provider) SolanaWallets() []types.ConnectedWallet {
	var out []types.ConnectedWallet
	for _, w := range p.storage.List() {
		if w.IsEVM() {
			continue
		}
		out = append(out, p.withSender(w))
	}
	return out
}

// withSender attaches the local keypair to the wallet it controls
func (p *Provider) withSender(w types.ConnectedWallet) types.ConnectedWallet {
	if p.solanaSender != nil && p.solanaSender.PublicKey().String() == w.Address {
		w.Sender = p.solanaSender
	}
	return w
}

// RequestConnection implements session.Connector. The connection completes
// when Connect is called for the new wallet.
func (p *Provider) RequestConnection(_ context.Context, opts session.ConnectOptions) error {
	p.mu.Lock()
	p.pending = &opts
	p.mu.Unlock()

	p.logger.Info("wallet connection requested", zap.String("chain", opts.Chain))
	return nil
}

// PendingConnection returns the options of the last unanswered connection request
func (p *Provider) PendingConnection() (session.ConnectOptions, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pending == nil {
		return session.ConnectOptions{}, false
	}
	return *p.pending, true
}

// Connect records a newly connected wallet and notifies the OnConnect callback
func (p *Provider) Connect(w types.ConnectedWallet) (types.ConnectedWallet, error) {
	w, err := normalize(w)
	if err != nil {
		return types.ConnectedWallet{}, err
	}
	w.ConnectedAt = time.Now().UTC()
	w.Sender = nil

	if err := p.storage.Upsert(w); err != nil {
		return types.ConnectedWallet{}, fmt.Errorf("failed to save wallet: %w", err)
	}

	p.mu.Lock()
	p.pending = nil
	p.mu.Unlock()

	p.logger.Info("wallet connected",
		zap.String("address", w.Address),
		zap.String("chain_id", w.ChainID),
		zap.String("connector", w.ConnectorType))

	return p.connected(w), nil
}

// connected attaches the local sender to a Solana wallet and fires OnConnect
func (p *Provider) connected(w types.ConnectedWallet) types.ConnectedWallet {
	if !w.IsEVM() {
		w = p.withSender(w)
	}

	p.mu.Lock()
	onConnect := p.onConnect
	p.mu.Unlock()

	if onConnect != nil {
		onConnect(w)
	}
	return w
}

// Disconnect removes a wallet and notifies the OnDisconnect callback
func (p *Provider) Disconnect(address string) error {
	if _, err := p.storage.Get(address); err != nil {
		return fmt.Errorf("%w: %s", ErrWalletNotFound, address)
	}
	if err := p.storage.Delete(address); err != nil {
		return fmt.Errorf("failed to remove wallet: %w", err)
	}

	p.logger.Info("wallet disconnected", zap.String("address", address))
	p.released(address)
	return nil
}

// released drops the signer bound to address and fires OnDisconnect
func (p *Provider) released(address string) {
	p.mu.Lock()
	onDisconnect := p.onDisconnect
	signer := p.signer
	dropSigner := signer != nil && strings.EqualFold(signer.Address().Hex(), address)
	if dropSigner {
		p.signer = nil
	}
	onSignerChange := p.onSignerChange
	p.mu.Unlock()

	if dropSigner {
		closeSigner(signer)
		if onSignerChange != nil {
			onSignerChange(nil)
		}
	}
	if onDisconnect != nil {
		onDisconnect(address)
	}
}

// SetActiveWallet implements session.Activator: it builds the signing
// client for w and publishes it through the OnSignerChange callback.
func (p *Provider) SetActiveWallet(_ context.Context, w types.ConnectedWallet) error {
	if !w.IsEVM() {
		return fmt.Errorf("wallet %s is not an EVM wallet", w.Address)
	}
	if _, err := p.storage.Get(w.Address); err != nil {
		return fmt.Errorf("%w: %s", ErrWalletNotFound, w.Address)
	}
	if p.signerFactory == nil {
		return fmt.Errorf("no EVM signing key configured")
	}

	signer, err := p.signerFactory(w)
	if err != nil {
		return fmt.Errorf("failed to create signing client: %w", err)
	}

	p.mu.Lock()
	previous := p.signer
	p.signer = signer
	onSignerChange := p.onSignerChange
	p.mu.Unlock()

	if previous != nil {
		closeSigner(previous)
	}

	p.logger.Info("active wallet set",
		zap.String("address", w.Address),
		zap.String("chain_id", w.ChainID))

	if onSignerChange != nil {
		onSignerChange(signer)
	}
	return nil
}

// Close releases the active signing client
func (p *Provider) Close() {
	p.mu.Lock()
	signer := p.signer
	p.signer = nil
	p.mu.Unlock()

	if signer != nil {
		closeSigner(signer)
	}
}

func closeSigner(signer adapter.EVMSigner) {
	if c, ok := signer.(interface{ Close() }); ok {
		c.Close()
	}
}

// normalize validates w and fills in the default connector type
func normalize(w types.ConnectedWallet) (types.ConnectedWallet, error) {
	w.Address = strings.TrimSpace(w.Address)
	if w.Address == "" {
		return w, fmt.Errorf("address is required")
	}

	if w.IsEVM() {
		if !common.IsHexAddress(w.Address) {
			return w, fmt.Errorf("invalid EVM address: %s", w.Address)
		}
		if _, err := w.EVMChainID(); err != nil {
			return w, err
		}
		if w.ConnectorType == "" {
			w.ConnectorType = DefaultEVMConnector
		}
		return w, nil
	}

	if _, err := solana.PublicKeyFromBase58(w.Address); err != nil {
		return w, fmt.Errorf("invalid Solana address: %s", w.Address)
	}
	if w.ConnectorType == "" {
		w.ConnectorType = DefaultSolanaConnector
	}
	return w, nil
}
