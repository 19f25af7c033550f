package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEVMChainID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "caip2", input: "eip155:8453", want: 8453},
		{name: "bare", input: "1", want: 1},
		{name: "padded", input: " eip155:10 ", want: 10},
		{name: "empty", input: "", wantErr: true},
		{name: "prefix only", input: "eip155:", wantErr: true},
		{name: "garbage", input: "solana:mainnet", wantErr: true},
		{name: "zero", input: "0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEVMChainID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConnectedWalletFamily(t *testing.T) {
	evm := ConnectedWallet{Address: "0xABC", ChainID: "eip155:1", ConnectorType: "injected"}
	assert.True(t, evm.IsEVM())
	assert.False(t, evm.IsSolana())

	sol := ConnectedWallet{Address: "9xQe", ConnectorType: "solana_adapter"}
	assert.False(t, sol.IsEVM())
	assert.True(t, sol.IsSolana())
}

func TestLinkParamsValidate(t *testing.T) {
	assert.NoError(t, LinkParams{Chain: "base", Direction: DirectionTo}.Validate())
	assert.NoError(t, LinkParams{Direction: DirectionFrom}.Validate())
	assert.Error(t, LinkParams{Chain: "base"}.Validate())
	assert.Error(t, LinkParams{Direction: "sideways"}.Validate())
}
