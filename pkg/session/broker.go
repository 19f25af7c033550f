package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"relay-wallets/pkg/types"
)

// ErrLinkSuperseded is returned by LinkRequest.Wait when a newer link request replaced it
var ErrLinkSuperseded = errors.New("link request superseded")

// ErrClosed is returned by LinkRequest.Wait when the controller shut down first
var ErrClosed = errors.New("session closed")

type linkResult struct {
	wallet types.LinkedWallet
	err    error
}

// LinkRequest is one in-flight "connect a new wallet for linking" request
type LinkRequest struct {
	ID     string
	Params types.LinkParams

	once   sync.Once
	done   chan struct{}
	result linkResult
}

func newLinkRequest(params types.LinkParams) *LinkRequest {
	return &LinkRequest{
		ID:     uuid.New().String(),
		Params: params,
		done:   make(chan struct{}),
	}
}

func (r *LinkRequest) settle(res linkResult) {
	r.once.Do(func() {
		r.result = res
		close(r.done)
	})
}

// Wait blocks until the request is fulfilled, superseded or closed, and may
// be called again afterwards. A done ctx only stops this wait; the request
// itself stays outstanding.
func (r *LinkRequest) Wait(ctx context.Context) (types.LinkedWallet, error) {
	select {
	case <-r.done:
		return r.result.wallet, r.result.err
	case <-ctx.Done():
		return types.LinkedWallet{}, ctx.Err()
	}
}

// Outcome reports the result without blocking; settled is false while the
// request is outstanding
func (r *LinkRequest) Outcome() (wallet types.LinkedWallet, settled bool, err error) {
	select {
	case <-r.done:
		return r.result.wallet, true, r.result.err
	default:
		return types.LinkedWallet{}, false, nil
	}
}

// LinkBroker holds at most one outstanding link request
type LinkBroker struct {
	connector Connector
	logger    *zap.Logger

	mu      sync.Mutex
	pending *LinkRequest
	recent  []*LinkRequest // settled requests, newest last
}

const maxRecentLinks = 16

// NewLinkBroker creates a broker that triggers connections through connector
func NewLinkBroker(connector Connector, logger *zap.Logger) *LinkBroker {
	return &LinkBroker{
		connector: connector,
		logger:    logger,
	}
}

// RequestLink supersedes any outstanding request, registers a new one and
// asks the identity provider for a new connection
func (b *LinkBroker) RequestLink(ctx context.Context, params types.LinkParams) (*LinkRequest, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	if b.pending != nil {
		b.logger.Debug("superseding link request", zap.String("request_id", b.pending.ID))
		b.pending.settle(linkResult{err: ErrLinkSuperseded})
		b.rememberLocked(b.pending)
		b.pending = nil
	}
	req := newLinkRequest(params)
	b.pending = req
	b.mu.Unlock()

	b.logger.Info("link request started",
		zap.String("request_id", req.ID),
		zap.String("chain", params.Chain),
		zap.String("direction", string(params.Direction)))

	if err := b.connector.RequestConnection(ctx, ConnectOptions{Chain: params.Chain}); err != nil {
		err = fmt.Errorf("failed to request wallet connection: %w", err)
		b.mu.Lock()
		if b.pending == req {
			b.pending = nil
		}
		b.mu.Unlock()
		req.settle(linkResult{err: err})
		return nil, err
	}

	return req, nil
}

// Resolve fulfils the outstanding request, if any, with the connected wallet
func (b *LinkBroker) Resolve(w types.ConnectedWallet) bool {
	b.mu.Lock()
	req := b.pending
	b.pending = nil
	if req != nil {
		req.settle(linkResult{wallet: ToLinkedWallet(w)})
		b.rememberLocked(req)
	}
	b.mu.Unlock()

	if req == nil {
		return false
	}

	b.logger.Info("link request fulfilled",
		zap.String("request_id", req.ID),
		zap.String("address", w.Address))
	return true
}

// Pending returns the outstanding request, or nil
func (b *LinkBroker) Pending() *LinkRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

// Close rejects the outstanding request with ErrClosed
func (b *LinkBroker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pending != nil {
		b.pending.settle(linkResult{err: ErrClosed})
		b.rememberLocked(b.pending)
		b.pending = nil
	}
}

// Lookup returns the outstanding or a recently settled request by id, or nil
func (b *LinkBroker) Lookup(id string) *LinkRequest {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pending != nil && b.pending.ID == id {
		return b.pending
	}
	for i := len(b.recent) - 1; i >= 0; i-- {
		if b.recent[i].ID == id {
			return b.recent[i]
		}
	}
	return nil
}

// rememberLocked keeps a settled request readable by id; b.mu must be held
func (b *LinkBroker) rememberLocked(req *LinkRequest) {
	b.recent = append(b.recent, req)
	if len(b.recent) > maxRecentLinks {
		b.recent = b.recent[len(b.recent)-maxRecentLinks:]
	}
}
