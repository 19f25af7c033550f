package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"relay-wallets/pkg/poll"
	"relay-wallets/pkg/types"
)

// Convergence tracks one "set primary wallet" poll
type Convergence struct {
	Address string

	done     chan struct{}
	mu       sync.Mutex
	wallet   *types.ConnectedWallet
	attempts int
}

// Done is closed once the poll has stopped
func (v *Convergence) Done() <-chan struct{} {
	return v.done
}

// Wait blocks until the poll stops or ctx is done, then returns the wallet
// promoted to primary, if any
func (v *Convergence) Wait(ctx context.Context) (types.ConnectedWallet, bool, error) {
	select {
	case <-v.done:
		w, ok := v.Wallet()
		return w, ok, nil
	case <-ctx.Done():
		return types.ConnectedWallet{}, false, ctx.Err()
	}
}

// Wallet returns the wallet promoted to primary, if the poll found one
func (v *Convergence) Wallet() (types.ConnectedWallet, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.wallet == nil {
		return types.ConnectedWallet{}, false
	}
	return *v.wallet, true
}

// Attempts returns the number of lookups made so far
func (v *Convergence) Attempts() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.attempts
}

// SetPrimaryWallet waits for address to show up in the provider's wallet
// list, then promotes it to primary and tries to mark it active. Connecting a
// wallet and seeing it in the cached list are not ordered, so the lookup is
// retried at a fixed interval for a bounded number of attempts.
func (c *Controller) SetPrimaryWallet(address string) *Convergence {
	conv := &Convergence{
		Address: address,
		done:    make(chan struct{}),
	}

	c.polls.Add(1)
	go func() {
		defer c.polls.Done()
		defer close(conv.done)
		c.converge(conv)
	}()

	return conv
}

func (c *Controller) converge(conv *Convergence) {
	logger := c.logger.With(zap.String("address", conv.Address))

	cfg := poll.Config{
		Interval:    c.pollInterval,
		MaxAttempts: c.pollMaxAttempts,
		Clock:       c.clock,
	}

	attempts, err := poll.Until(c.ctx, cfg, func(attempt int) bool {
		conv.mu.Lock()
		conv.attempts = attempt
		conv.mu.Unlock()

		// The bound is checked before the lookup: the last attempt only ends the poll
		if attempt >= c.pollMaxAttempts {
			return false
		}

		wallet, found := c.findWallet(conv.Address)

		conv.mu.Lock()
		if found {
			conv.wallet = &wallet
		}
		conv.mu.Unlock()

		if !found {
			return false
		}

		c.setPrimary(&wallet)
		if wallet.IsEVM() && c.activator != nil {
			if err := c.activator.SetActiveWallet(c.ctx, wallet); err != nil {
				logger.Warn("failed to activate primary wallet", zap.Error(err))
			}
		}
		return true
	})

	switch {
	case err == nil:
		logger.Info("primary wallet set", zap.Int("attempts", attempts))
	case errors.Is(err, poll.ErrExhausted):
		logger.Debug("primary wallet never appeared", zap.Int("attempts", attempts))
	default:
		logger.Debug("primary wallet poll stopped", zap.Int("attempts", attempts), zap.Error(err))
	}
}
