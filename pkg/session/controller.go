// Package session mediates between the identity provider, the EVM signing
// client and the swap widget: it owns the primary wallet, the adapted
// signing handle and the outstanding link request.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"relay-wallets/pkg/adapter"
	"relay-wallets/pkg/types"
)

const (
	DefaultPollInterval    = 200 * time.Millisecond // Convergence check interval
	DefaultPollMaxAttempts = 20                     // Convergence attempt bound
)

// ErrNoWallet is returned when an operation needs an adapted wallet and there is none
var ErrNoWallet = errors.New("no usable wallet")

// WalletSelector builds the adapted wallet for a primary wallet
type WalletSelector interface {
	Select(primary *types.ConnectedWallet, signer adapter.EVMSigner) adapter.AdaptedWallet
}

// Options configure a Controller
type Options struct {
	Source    WalletSource
	Connector Connector
	Activator Activator
	Selector  WalletSelector
	Logger    *zap.Logger
	Clock     clockwork.Clock

	PollInterval    time.Duration
	PollMaxAttempts int
}

// Controller is the single writer of the primary wallet and the adapted wallet
type Controller struct {
	source    WalletSource
	activator Activator
	selector  WalletSelector
	broker    *LinkBroker
	logger    *zap.Logger
	clock     clockwork.Clock

	pollInterval    time.Duration
	pollMaxAttempts int

	mu         sync.RWMutex
	primary    *types.ConnectedWallet
	signer     adapter.EVMSigner
	adapted    adapter.AdaptedWallet
	generation uint64

	ctx    context.Context
	cancel context.CancelFunc
	polls  sync.WaitGroup
}

// NewController creates a controller; Close must be called to stop in-flight polls
func NewController(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	maxAttempts := opts.PollMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultPollMaxAttempts
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Controller{
		source:          opts.Source,
		activator:       opts.Activator,
		selector:        opts.Selector,
		broker:          NewLinkBroker(opts.Connector, logger.Named("broker")),
		logger:          logger,
		clock:           clock,
		pollInterval:    interval,
		pollMaxAttempts: maxAttempts,
		ctx:             ctx,
		cancel:          cancel,
	}
}

// Close stops in-flight convergence polls, rejects the outstanding link
// request and waits for the polls to exit
func (c *Controller) Close() {
	c.cancel()
	c.broker.Close()
	c.polls.Wait()
}

// Primary returns the primary wallet, if one is set
func (c *Controller) Primary() (types.ConnectedWallet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.primary == nil {
		return types.ConnectedWallet{}, false
	}
	return *c.primary, true
}

// Wallet returns the current adapted wallet, or nil
func (c *Controller) Wallet() adapter.AdaptedWallet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.adapted
}

// LinkedWallets projects the provider's current wallet lists
func (c *Controller) LinkedWallets() []types.LinkedWallet {
	return ProjectLinkedWallets(c.source.Wallets(), c.source.SolanaWallets())
}

// RequestLink starts a link request through the broker
func (c *Controller) RequestLink(ctx context.Context, params types.LinkParams) (*LinkRequest, error) {
	return c.broker.RequestLink(ctx, params)
}

// PendingLink returns the outstanding link request, or nil
func (c *Controller) PendingLink() *LinkRequest {
	return c.broker.Pending()
}

// LinkRequest returns the outstanding or a recently settled link request by id
func (c *Controller) LinkRequest(id string) *LinkRequest {
	return c.broker.Lookup(id)
}

// HandleConnected is called by the identity provider after a successful connection
func (c *Controller) HandleConnected(w types.ConnectedWallet) {
	c.broker.Resolve(w)
}

// HandleDisconnected is called by the identity provider when a wallet goes away
func (c *Controller) HandleDisconnected(address string) {
	c.mu.Lock()
	isPrimary := c.primary != nil && c.primary.Address == address
	if isPrimary {
		c.primary = nil
	}
	c.mu.Unlock()

	if isPrimary {
		c.logger.Info("primary wallet disconnected", zap.String("address", address))
		c.refreshAdapted()
	}
}

// ClearPrimary unsets the primary wallet
func (c *Controller) ClearPrimary() {
	c.setPrimary(nil)
}

// SetSigningClient publishes the EVM signing client for the active wallet;
// nil means no client is ready
func (c *Controller) SetSigningClient(signer adapter.EVMSigner) {
	c.mu.Lock()
	c.signer = signer
	c.mu.Unlock()

	c.refreshAdapted()
}

// SignAndSend hands a raw transaction to the current adapted wallet
func (c *Controller) SignAndSend(ctx context.Context, rawTx []byte) (string, error) {
	wallet := c.Wallet()
	if wallet == nil {
		return "", ErrNoWallet
	}
	return wallet.SignAndSend(ctx, rawTx)
}

func (c *Controller) setPrimary(w *types.ConnectedWallet) {
	c.mu.Lock()
	if w == nil {
		c.primary = nil
	} else {
		primary := *w
		c.primary = &primary
	}
	c.mu.Unlock()

	c.refreshAdapted()
}

// refreshAdapted rebuilds the adapted wallet from the current primary and
// signer. A result computed for an older generation is dropped.
func (c *Controller) refreshAdapted() {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	primary := c.primary
	signer := c.signer
	if primary == nil {
		c.adapted = nil
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	var adapted adapter.AdaptedWallet
	if c.selector != nil {
		adapted = c.selector.Select(primary, signer)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.adapted = adapted
}

// findWallet looks up address in the current snapshot, Solana wallets first
func (c *Controller) findWallet(address string) (types.ConnectedWallet, bool) {
	for _, list := range [][]types.ConnectedWallet{c.source.SolanaWallets(), c.source.Wallets()} {
		for _, w := range list {
			if w.Address == address {
				return w, true
			}
		}
	}
	return types.ConnectedWallet{}, false
}
