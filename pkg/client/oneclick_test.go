package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalogue = []Token{
	{AssetID: "nep141:eth", Symbol: "ETH", Blockchain: "eth", Decimals: 18},
	{AssetID: "nep141:usdc-eth", Symbol: "USDC", Blockchain: "eth", Decimals: 6},
	{AssetID: "nep141:usdc-sol", Symbol: "USDC", Blockchain: "sol", Decimals: 6},
	{AssetID: "nep141:sol", Symbol: "SOL", Blockchain: "sol", Decimals: 9},
	{AssetID: "nep141:usdc-base", Symbol: "USDC", Blockchain: "base", Decimals: 6},
}

func symbolsOf(tokens []Token) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Blockchain+"/"+t.Symbol)
	}
	return out
}

func TestFilterTokens(t *testing.T) {
	tests := []struct {
		name   string
		filter TokenFilter
		want   []string
	}{
		{"no filter", TokenFilter{}, []string{"eth/ETH", "eth/USDC", "sol/USDC", "sol/SOL", "base/USDC"}},
		{"by chain", TokenFilter{Chain: "SOL"}, []string{"sol/USDC", "sol/SOL"}},
		{"by symbol", TokenFilter{Symbol: "usd"}, []string{"eth/USDC", "sol/USDC", "base/USDC"}},
		{"by both", TokenFilter{Chain: "base", Symbol: "USDC"}, []string{"base/USDC"}},
		{"no match", TokenFilter{Chain: "btc"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, symbolsOf(FilterTokens(catalogue, tt.filter)))
		})
	}
}

func TestGroupByChain(t *testing.T) {
	byChain, chains := GroupByChain(catalogue)
	assert.Equal(t, []string{"base", "eth", "sol"}, chains)
	assert.Len(t, byChain["eth"], 2)
	assert.Len(t, byChain["base"], 1)
}

func TestSwapStatusIsFinal(t *testing.T) {
	for status, want := range map[string]bool{
		"SUCCESS":         true,
		"REFUNDED":        true,
		"FAILED":          true,
		"PENDING_DEPOSIT": false,
		"PROCESSING":      false,
	} {
		assert.Equal(t, want, SwapStatus{Status: status}.IsFinal(), status)
	}
}

func TestGetSwapStatusRequiresDepositAddress(t *testing.T) {
	c := NewOneClickClient("", "")
	_, err := c.GetSwapStatus(context.Background(), "")
	require.Error(t, err)
}
