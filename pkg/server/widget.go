package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"relay-wallets/pkg/chains"
)

const ethLogoURI = "https://assets.relay.link/icons/currencies/eth.png"

// DefaultToken preselects one side of the swap widget
type DefaultToken struct {
	ChainID  int64  `json:"chainId"`
	Address  string `json:"address"`
	Decimals int    `json:"decimals"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	LogoURI  string `json:"logoURI"`
}

// WidgetConfig is everything the swap widget needs to boot
type WidgetConfig struct {
	AppName      string       `json:"appName"`
	RelayAPIURL  string       `json:"baseApiUrl"`
	Source       string       `json:"source"`
	LogLevel     string       `json:"logLevel"`
	FromToken    DefaultToken `json:"fromToken"`
	ToToken      DefaultToken `json:"toToken"`
	PrivyAppID   string       `json:"privyAppId,omitempty"`
	PrivyAuthURL string       `json:"privyAuthUrl,omitempty"`
	DuneAPIKey   string       `json:"duneApiKey,omitempty"`
}

// EtherOn returns the native ETH token on an EVM chain
func EtherOn(chainID int64) DefaultToken {
	return DefaultToken{
		ChainID:  chainID,
		Address:  "0x0000000000000000000000000000000000000000",
		Decimals: 18,
		Name:     "ETH",
		Symbol:   "ETH",
		LogoURI:  ethLogoURI,
	}
}

// DefaultWidgetConfig swaps from ETH on Base to ETH on mainnet
func DefaultWidgetConfig() WidgetConfig {
	return WidgetConfig{
		AppName:     "Relay Privy Demo",
		RelayAPIURL: "https://api.relay.link",
		Source:      "relay-privy-demo",
		LogLevel:    "info",
		FromToken:   EtherOn(chains.ChainIDBase),
		ToToken:     EtherOn(chains.ChainIDMainnet),
	}
}

type configResponse struct {
	WidgetConfig
	Chains []chains.Chain `json:"chains"`
}

// GetConfig responds with the widget configuration and chain list
func (s *Server) GetConfig(c *gin.Context) {
	sendSuccess(c, http.StatusOK, configResponse{
		WidgetConfig: s.widget,
		Chains:       s.chainList(),
	})
}

// ListChains lists the chain registry
func (s *Server) ListChains(c *gin.Context) {
	sendList(c, s.chainList())
}

func (s *Server) chainList() []chains.Chain {
	if s.registry == nil {
		return []chains.Chain{}
	}
	return s.registry.List()
}
