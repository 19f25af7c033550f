package provider

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"relay-wallets/pkg/types"
)

const (
	DefaultStorageFileName = ".relay-wallets.json"
)

// Storage persists connected wallets in connection order
type Storage struct {
	filePath string
	mu       sync.RWMutex
	wallets  []types.ConnectedWallet
}

// WalletStorage represents the JSON structure for storage
type WalletStorage struct {
	Wallets []types.ConnectedWallet `json:"wallets"`
}

// DefaultStoragePath returns the store location in the home directory
func DefaultStoragePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, DefaultStorageFileName), nil
}

// NewStorage creates a new storage instance
func NewStorage(filePath string) (*Storage, error) {
	if filePath == "" {
		path, err := DefaultStoragePath()
		if err != nil {
			return nil, err
		}
		filePath = path
	}

	storage := &Storage{
		filePath: filePath,
	}

	// A missing file is created on first save
	if err := storage.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load wallets: %w", err)
	}

	return storage, nil
}

// load reads wallets from the storage file
func (s *Storage) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var walletStorage WalletStorage
	if err := json.Unmarshal(data, &walletStorage); err != nil {
		return fmt.Errorf("failed to unmarshal wallets: %w", err)
	}

	s.wallets = walletStorage.Wallets
	return nil
}

// Reload re-reads the storage file, replacing the in-memory wallets. The
// previous and current wallet lists are returned for diffing.
func (s *Storage) Reload() (prev, next []types.ConnectedWallet, err error) {
	s.mu.RLock()
	prev = append([]types.ConnectedWallet(nil), s.wallets...)
	s.mu.RUnlock()

	if err := s.load(); err != nil {
		if !os.IsNotExist(err) {
			return prev, prev, err
		}
		s.mu.Lock()
		s.wallets = nil
		s.mu.Unlock()
	}
	return prev, s.List(), nil
}

// saveLocked writes wallets to the storage file; s.mu must be held
func (s *Storage) saveLocked() error {
	data, err := json.MarshalIndent(WalletStorage{Wallets: s.wallets}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal wallets: %w", err)
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write to temporary file first, then rename for atomic write
	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write wallets: %w", err)
	}

	if err := os.Rename(tempFile, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Upsert stores w, replacing any wallet with the same address in place
func (s *Storage) Upsert(w types.ConnectedWallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]types.ConnectedWallet, 0, len(s.wallets)+1)
	replaced := false
	for _, existing := range s.wallets {
		if existing.Address == w.Address {
			next = append(next, w)
			replaced = true
			continue
		}
		next = append(next, existing)
	}
	if !replaced {
		next = append(next, w)
	}

	prev := s.wallets
	s.wallets = next
	if err := s.saveLocked(); err != nil {
		s.wallets = prev
		return err
	}
	return nil
}

// Delete removes the wallet with the given address
func (s *Storage) Delete(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]types.ConnectedWallet, 0, len(s.wallets))
	for _, existing := range s.wallets {
		if existing.Address != address {
			next = append(next, existing)
		}
	}
	if len(next) == len(s.wallets) {
		return fmt.Errorf("wallet '%s' not found", address)
	}

	prev := s.wallets
	s.wallets = next
	if err := s.saveLocked(); err != nil {
		s.wallets = prev
		return err
	}
	return nil
}

// Get retrieves a wallet by address
func (s *Storage) Get(address string) (types.ConnectedWallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, w := range s.wallets {
		if w.Address == address {
			return w, nil
		}
	}
	return types.ConnectedWallet{}, fmt.Errorf("wallet '%s' not found", address)
}

// List returns a copy of all wallets in connection order
func (s *Storage) List() []types.ConnectedWallet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]types.ConnectedWallet(nil), s.wallets...)
}

// GetFilePath returns the storage file path
func (s *Storage) GetFilePath() string {
	return s.filePath
}
