package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"relay-wallets/pkg/chains"
	"relay-wallets/pkg/types"
)

// Config holds the application configuration
type Config struct {
	AppName    string
	Relay      RelayConfig
	Privy      PrivyConfig
	DuneAPIKey string
	Solana     SolanaConfig
	EVM        EVMConfig
	OneClick   OneClickConfig
	Server     ServerConfig
	Storage    StorageConfig
	Poll       PollConfig
	Log        LogConfig
}

// RelayConfig is the swap API the widget talks to
type RelayConfig struct {
	APIURL string
	Source string
}

// PrivyConfig holds opaque identity-provider settings passed to the widget
type PrivyConfig struct {
	AppID   string
	AuthURL string
}

// SolanaConfig holds Solana connection settings
type SolanaConfig struct {
	RPCURL        string
	PrivateKey    string // base58, backs a local wallet sender
	Commitment    string
	SkipPreflight bool
}

// EVMConfig holds EVM signing settings
type EVMConfig struct {
	PrivateKey string            // hex, backs the local signing client
	RPC        map[string]string // chain name -> RPC URL override
}

// OneClickConfig holds token catalogue API settings
type OneClickConfig struct {
	JWTToken string
	BaseURL  string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Listen      string
	CORSOrigins []string
}

// StorageConfig holds connected-wallet store settings
type StorageConfig struct {
	Path string
}

// PollConfig bounds the primary wallet convergence poll
type PollConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
	JSON  bool
}

const envPrefix = "RELAY_WALLETS"

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	return load(viper.GetViper())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetConfigName(".relay-wallets")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(".")

	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		AppName: v.GetString("app_name"),
		Relay: RelayConfig{
			APIURL: v.GetString("relay.api_url"),
			Source: v.GetString("relay.source"),
		},
		Privy: PrivyConfig{
			AppID:   v.GetString("privy.app_id"),
			AuthURL: v.GetString("privy.auth_url"),
		},
		DuneAPIKey: v.GetString("dune.api_key"),
		Solana: SolanaConfig{
			RPCURL:        v.GetString("solana.rpc_url"),
			PrivateKey:    v.GetString("solana.private_key"),
			Commitment:    v.GetString("solana.commitment"),
			SkipPreflight: v.GetBool("solana.skip_preflight"),
		},
		EVM: EVMConfig{
			PrivateKey: v.GetString("evm.private_key"),
			RPC:        rpcOverrides(v),
		},
		OneClick: OneClickConfig{
			JWTToken: v.GetString("oneclick.jwt_token"),
			BaseURL:  v.GetString("oneclick.base_url"),
		},
		Server: ServerConfig{
			Listen:      v.GetString("server.listen"),
			CORSOrigins: splitList(v.GetStringSlice("server.cors_origins")),
		},
		Storage: StorageConfig{
			Path: v.GetString("storage.path"),
		},
		Poll: PollConfig{
			Interval:    v.GetDuration("poll.interval"),
			MaxAttempts: v.GetInt("poll.max_attempts"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
			JSON:  v.GetBool("log.json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "Relay Privy Demo")
	v.SetDefault("relay.api_url", "https://api.relay.link")
	v.SetDefault("relay.source", "relay-privy-demo")
	v.SetDefault("solana.rpc_url", "https://api.mainnet-beta.solana.com")
	v.SetDefault("solana.commitment", "confirmed")
	v.SetDefault("oneclick.base_url", "https://1click.chaindefuser.com")
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("poll.interval", "200ms")
	v.SetDefault("poll.max_attempts", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}

// rpcOverrides merges the evm.rpc map from the config file with
// per-chain environment variables such as RELAY_WALLETS_EVM_RPC_BASE
func rpcOverrides(v *viper.Viper) map[string]string {
	overrides := make(map[string]string)
	for name, url := range v.GetStringMapString("evm.rpc") {
		overrides[strings.ToLower(name)] = url
	}
	for _, c := range chains.DefaultChains() {
		if c.VMType != types.VMTypeEVM {
			continue
		}
		if url := v.GetString("evm.rpc." + c.Name); url != "" {
			overrides[c.Name] = url
		}
	}
	return overrides
}

// splitList accepts both YAML lists and comma separated env values
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be positive, got %s", c.Poll.Interval)
	}
	if c.Poll.MaxAttempts <= 0 {
		return fmt.Errorf("poll.max_attempts must be positive, got %d", c.Poll.MaxAttempts)
	}
	switch strings.ToLower(c.Solana.Commitment) {
	case "processed", "confirmed", "finalized":
	default:
		return fmt.Errorf("solana.commitment must be processed, confirmed or finalized, got %q", c.Solana.Commitment)
	}
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen must not be empty")
	}
	return nil
}

// Registry builds the chain registry with the configured RPC endpoints
func (c *Config) Registry() (*chains.Registry, error) {
	registry := chains.NewRegistry(chains.DefaultChains()...)
	for name, url := range c.EVM.RPC {
		if err := registry.SetRPCURL(name, url); err != nil {
			return nil, fmt.Errorf("invalid evm.rpc entry: %w", err)
		}
	}
	if c.Solana.RPCURL != "" {
		if err := registry.SetRPCURL("solana", c.Solana.RPCURL); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
