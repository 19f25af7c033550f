package client

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	oneclick "github.com/defuse-protocol/one-click-sdk-go"
)

// Token is one entry of the swap widget's token catalogue
type Token struct {
	AssetID         string `json:"assetId"`
	Symbol          string `json:"symbol"`
	Blockchain      string `json:"blockchain"`
	Decimals        int    `json:"decimals"`
	ContractAddress string `json:"contractAddress,omitempty"`
}

// TokenFilter narrows a token listing; empty fields match everything
type TokenFilter struct {
	Chain  string
	Symbol string
}

// SwapStatus is the execution state of a swap identified by its deposit address
type SwapStatus struct {
	DepositAddress string    `json:"depositAddress"`
	Status         string    `json:"status"`
	UpdatedAt      time.Time `json:"updatedAt"`
	DepositTxs     []string  `json:"depositTxs,omitempty"`
	WithdrawalTxs  []string  `json:"withdrawalTxs,omitempty"`
	AmountIn       string    `json:"amountIn,omitempty"`
	AmountOut      string    `json:"amountOut,omitempty"`
}

// OneClickClient wraps the 1Click SDK
type OneClickClient struct {
	client   *oneclick.APIClient
	jwtToken string
}

// NewOneClickClient creates a new 1Click API client. An empty baseURL keeps
// the SDK's default server.
func NewOneClickClient(jwtToken, baseURL string) *OneClickClient {
	config := oneclick.NewConfiguration()
	if baseURL != "" {
		config.Servers = oneclick.ServerConfigurations{{URL: strings.TrimRight(baseURL, "/")}}
	}

	return &OneClickClient{
		client:   oneclick.NewAPIClient(config),
		jwtToken: jwtToken,
	}
}

// authenticated attaches the access token to ctx
func (c *OneClickClient) authenticated(ctx context.Context) context.Context {
	if c.jwtToken == "" {
		return ctx
	}
	return context.WithValue(ctx, oneclick.ContextAccessToken, c.jwtToken)
}

// GetSupportedTokens retrieves all supported tokens
func (c *OneClickClient) GetSupportedTokens(ctx context.Context) ([]Token, error) {
	resp, httpResp, err := c.client.OneClickAPI.GetTokens(c.authenticated(ctx)).Execute()
	if httpResp != nil {
		defer httpResp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tokens: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status code %d", httpResp.StatusCode)
	}

	tokens := make([]Token, 0, len(resp))
	for _, t := range resp {
		tokens = append(tokens, Token{
			AssetID:         t.GetAssetId(),
			Symbol:          t.GetSymbol(),
			Blockchain:      t.GetBlockchain(),
			Decimals:        int(t.GetDecimals()),
			ContractAddress: t.GetContractAddress(),
		})
	}
	return tokens, nil
}

// Tokens retrieves the supported tokens matching filter
func (c *OneClickClient) Tokens(ctx context.Context, filter TokenFilter) ([]Token, error) {
	tokens, err := c.GetSupportedTokens(ctx)
	if err != nil {
		return nil, err
	}
	return FilterTokens(tokens, filter), nil
}

// FilterTokens keeps tokens on filter.Chain whose symbol contains filter.Symbol
func FilterTokens(tokens []Token, filter TokenFilter) []Token {
	filtered := make([]Token, 0, len(tokens))
	symbol := strings.ToUpper(filter.Symbol)
	for _, token := range tokens {
		if filter.Chain != "" && !strings.EqualFold(token.Blockchain, filter.Chain) {
			continue
		}
		if symbol != "" && !strings.Contains(strings.ToUpper(token.Symbol), symbol) {
			continue
		}
		filtered = append(filtered, token)
	}
	return filtered
}

// GroupByChain groups tokens by blockchain and returns the sorted chain names
func GroupByChain(tokens []Token) (map[string][]Token, []string) {
	byChain := make(map[string][]Token)
	for _, token := range tokens {
		byChain[token.Blockchain] = append(byChain[token.Blockchain], token)
	}

	chains := make([]string, 0, len(byChain))
	for chain := range byChain {
		chains = append(chains, chain)
	}
	sort.Strings(chains)
	return byChain, chains
}

// GetSwapStatus checks the execution status of a swap
func (c *OneClickClient) GetSwapStatus(ctx context.Context, depositAddress string) (SwapStatus, error) {
	if depositAddress == "" {
		return SwapStatus{}, fmt.Errorf("deposit address is required")
	}

	resp, httpResp, err := c.client.OneClickAPI.GetExecutionStatus(c.authenticated(ctx)).DepositAddress(depositAddress).Execute()
	if httpResp != nil {
		defer httpResp.Body.Close()
	}
	if err != nil {
		return SwapStatus{}, fmt.Errorf("failed to get status: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return SwapStatus{}, fmt.Errorf("API returned status code %d", httpResp.StatusCode)
	}

	status := SwapStatus{
		DepositAddress: depositAddress,
		Status:         strings.ToUpper(resp.GetStatus()),
		UpdatedAt:      resp.GetUpdatedAt(),
	}

	details := resp.GetSwapDetails()
	for _, tx := range details.GetOriginChainTxHashes() {
		if hash := tx.GetHash(); hash != "" {
			status.DepositTxs = append(status.DepositTxs, hash)
		}
	}
	for _, tx := range details.GetDestinationChainTxHashes() {
		if hash := tx.GetHash(); hash != "" {
			status.WithdrawalTxs = append(status.WithdrawalTxs, hash)
		}
	}
	if details.HasAmountInFormatted() {
		status.AmountIn = details.GetAmountInFormatted()
	}
	if details.HasAmountOutFormatted() {
		status.AmountOut = details.GetAmountOutFormatted()
	}

	return status, nil
}

// IsFinal reports whether the swap reached a terminal status
func (s SwapStatus) IsFinal() bool {
	switch s.Status {
	case "SUCCESS", "COMPLETED", "FAILED", "REFUNDED":
		return true
	default:
		return false
	}
}
