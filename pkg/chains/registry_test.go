package chains

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay-wallets/pkg/types"
)

func TestDefaultRegistry(t *testing.T) {
	registry := NewRegistry(DefaultChains()...)

	solana, err := registry.Get("Solana")
	require.NoError(t, err)
	assert.Equal(t, ChainIDSolana, solana.ID)
	assert.Equal(t, types.VMTypeSVM, solana.VMType)
	assert.Equal(t, 9, solana.Currency.Decimals)

	base, err := registry.ByID(ChainIDBase)
	require.NoError(t, err)
	assert.Equal(t, "base", base.Name)
	assert.Equal(t, types.VMTypeEVM, base.VMType)

	ids := make([]int64, 0)
	for _, c := range registry.List() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int64{ChainIDMainnet, ChainIDOptimism, ChainIDBase, ChainIDSolana}, ids)
}

func TestRegistryUnknownChain(t *testing.T) {
	registry := NewRegistry(DefaultChains()...)

	_, err := registry.Get("arbitrum")
	assert.Error(t, err)

	_, err = registry.ByID(42161)
	assert.Error(t, err)

	assert.Error(t, registry.SetRPCURL("arbitrum", "https://arb1.arbitrum.io/rpc"))
}

func TestRegistrySetRPCURL(t *testing.T) {
	registry := NewRegistry(DefaultChains()...)

	require.NoError(t, registry.SetRPCURL("BASE", "http://localhost:8545"))

	base, err := registry.Get("base")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8545", base.HTTPRPCURL)
}

func TestRegistryReplaceRenamesChain(t *testing.T) {
	registry := NewRegistry(DefaultChains()...)

	registry.Register(Chain{ID: ChainIDOptimism, Name: "op", VMType: types.VMTypeEVM})

	_, err := registry.Get("optimism")
	assert.Error(t, err)

	op, err := registry.Get("op")
	require.NoError(t, err)
	assert.Equal(t, ChainIDOptimism, op.ID)
	assert.Len(t, registry.List(), 4)
}
