package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"relay-wallets/pkg/types"
)

// Watch follows the storage file for changes made by other processes, such
// as `relay-wallets wallets connect` run next to a server, and replays them
// through the OnConnect and OnDisconnect callbacks. The returned channel is
// closed once ctx is done and the watcher has stopped.
func (p *Provider) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	// Saves replace the file by rename, so the directory is watched
	dir := filepath.Dir(p.storage.GetFilePath())
	if err := os.MkdirAll(dir, 0755); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	p.logger.Debug("watching wallet storage", zap.String("path", p.storage.GetFilePath()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer watcher.Close()
		p.watchLoop(ctx, watcher)
	}()
	return done, nil
}

func (p *Provider) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	name := filepath.Base(p.storage.GetFilePath())

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Remove) {
				continue
			}
			p.sync()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Warn("wallet storage watcher error", zap.Error(err))
		}
	}
}

// sync reloads storage and replays the wallets that appeared or vanished
func (p *Provider) sync() {
	prev, next, err := p.storage.Reload()
	if err != nil {
		p.logger.Warn("failed to reload wallet storage", zap.Error(err))
		return
	}

	added, removed := diffWallets(prev, next)
	for _, w := range added {
		p.logger.Info("wallet connected externally", zap.String("address", w.Address))
		p.connected(w)
	}
	for _, address := range removed {
		p.logger.Info("wallet disconnected externally", zap.String("address", address))
		p.released(address)
	}
}

func diffWallets(prev, next []types.ConnectedWallet) (added []types.ConnectedWallet, removed []string) {
	seen := make(map[string]bool, len(prev))
	for _, w := range prev {
		seen[w.Address] = true
	}
	kept := make(map[string]bool, len(next))
	for _, w := range next {
		kept[w.Address] = true
		if !seen[w.Address] {
			added = append(added, w)
		}
	}
	for _, w := range prev {
		if !kept[w.Address] {
			removed = append(removed, w.Address)
		}
	}
	return added, removed
}
