package chains

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"relay-wallets/pkg/types"
)

// Chain ids used by the swap widget's chain registry
const (
	ChainIDMainnet  int64 = 1
	ChainIDOptimism int64 = 10
	ChainIDBase     int64 = 8453
	ChainIDSolana   int64 = 792703809
)

// Currency is the native currency of a chain
type Currency struct {
	ID               string `json:"id"`
	Symbol           string `json:"symbol"`
	Name             string `json:"name"`
	Address          string `json:"address"`
	Decimals         int    `json:"decimals"`
	SupportsBridging bool   `json:"supportsBridging"`
}

// Chain describes one chain known to the swap widget
type Chain struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	DisplayName  string       `json:"displayName"`
	VMType       types.VMType `json:"vmType"`
	HTTPRPCURL   string       `json:"httpRpcUrl"`
	ExplorerURL  string       `json:"explorerUrl"`
	ExplorerName string       `json:"explorerName"`
	Currency     Currency     `json:"currency"`
}

const zeroAddress = "0x0000000000000000000000000000000000000000"

var ether = Currency{
	ID:               "eth",
	Symbol:           "ETH",
	Name:             "Ether",
	Address:          zeroAddress,
	Decimals:         18,
	SupportsBridging: true,
}

// DefaultChains returns the chains the demo ships with
func DefaultChains() []Chain {
	return []Chain{
		{
			ID:           ChainIDMainnet,
			Name:         "mainnet",
			DisplayName:  "Ethereum",
			VMType:       types.VMTypeEVM,
			HTTPRPCURL:   "https://eth.merkle.io",
			ExplorerURL:  "https://etherscan.io",
			ExplorerName: "Etherscan",
			Currency:     ether,
		},
		{
			ID:           ChainIDBase,
			Name:         "base",
			DisplayName:  "Base",
			VMType:       types.VMTypeEVM,
			HTTPRPCURL:   "https://mainnet.base.org",
			ExplorerURL:  "https://basescan.org",
			ExplorerName: "Basescan",
			Currency:     ether,
		},
		{
			ID:           ChainIDOptimism,
			Name:         "optimism",
			DisplayName:  "OP Mainnet",
			VMType:       types.VMTypeEVM,
			HTTPRPCURL:   "https://mainnet.optimism.io",
			ExplorerURL:  "https://optimistic.etherscan.io",
			ExplorerName: "Optimism Explorer",
			Currency:     ether,
		},
		{
			ID:           ChainIDSolana,
			Name:         "solana",
			DisplayName:  "Solana",
			VMType:       types.VMTypeSVM,
			HTTPRPCURL:   "https://api.mainnet-beta.solana.com",
			ExplorerURL:  "https://solscan.io",
			ExplorerName: "SolScan",
			Currency: Currency{
				ID:       "sol",
				Symbol:   "SOL",
				Name:     "Solana",
				Address:  "11111111111111111111111111111111",
				Decimals: 9,
			},
		},
	}
}

// Registry indexes chains by id and name
type Registry struct {
	mu     sync.RWMutex
	byID   map[int64]Chain
	byName map[string]int64
}

// NewRegistry creates a registry holding the given chains
func NewRegistry(chains ...Chain) *Registry {
	r := &Registry{
		byID:   make(map[int64]Chain),
		byName: make(map[string]int64),
	}
	for _, c := range chains {
		r.Register(c)
	}
	return r
}

// Register adds or replaces a chain
func (r *Registry) Register(c Chain) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byID[c.ID]; ok {
		delete(r.byName, strings.ToLower(old.Name))
	}
	r.byID[c.ID] = c
	r.byName[strings.ToLower(c.Name)] = c.ID
}

// SetRPCURL overrides the RPC endpoint of a registered chain
func (r *Registry) SetRPCURL(name, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("chain '%s' not found", name)
	}
	c := r.byID[id]
	c.HTTPRPCURL = url
	r.byID[id] = c
	return nil
}

// Get retrieves a chain by name
func (r *Registry) Get(name string) (Chain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return Chain{}, fmt.Errorf("chain '%s' not found", name)
	}
	return r.byID[id], nil
}

// ByID retrieves a chain by id
func (r *Registry) ByID(id int64) (Chain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return Chain{}, fmt.Errorf("chain %d not found", id)
	}
	return c, nil
}

// List returns all chains ordered by id
func (r *Registry) List() []Chain {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Chain, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
