package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"relay-wallets/config"
	"relay-wallets/pkg/adapter"
	"relay-wallets/pkg/chains"
	"relay-wallets/pkg/logger"
	"relay-wallets/pkg/provider"
	"relay-wallets/pkg/session"
)

// runtime is the wired wallet-session stack shared by the commands
type runtime struct {
	cfg        *config.Config
	logger     *zap.Logger
	registry   *chains.Registry
	provider   *provider.Provider
	controller *session.Controller
}

// newRuntime loads configuration and wires provider, selector and controller
func newRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Config{
		Level:       level,
		EnableJSON:  cfg.Log.JSON,
		EnableColor: !cfg.Log.JSON,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}

	storage, err := provider.NewStorage(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	opts := provider.Options{
		Storage: storage,
		Logger:  log.Named("provider"),
	}
	if cfg.EVM.PrivateKey != "" {
		opts.SignerFactory = provider.KeyedSignerFactory(cfg.EVM.PrivateKey, registry)
	}
	if cfg.Solana.PrivateKey != "" {
		sender, err := adapter.NewKeypairSender(cfg.Solana.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("solana.private_key: %w", err)
		}
		opts.SolanaSender = sender
	}

	p, err := provider.New(opts)
	if err != nil {
		return nil, err
	}

	selector := adapter.NewSelector(adapter.SelectorConfig{
		SolanaRPC:        cfg.Solana.RPCURL,
		SolanaCommitment: adapter.ParseCommitment(cfg.Solana.Commitment),
		SkipPreflight:    cfg.Solana.SkipPreflight,
	}, log.Named("selector"))

	controller := session.NewController(session.Options{
		Source:          p,
		Connector:       p,
		Activator:       p,
		Selector:        selector,
		Logger:          log.Named("session"),
		PollInterval:    cfg.Poll.Interval,
		PollMaxAttempts: cfg.Poll.MaxAttempts,
	})

	p.OnConnect(controller.HandleConnected)
	p.OnDisconnect(controller.HandleDisconnected)
	p.OnSignerChange(controller.SetSigningClient)

	return &runtime{
		cfg:        cfg,
		logger:     log,
		registry:   registry,
		provider:   p,
		controller: controller,
	}, nil
}

// Close stops in-flight polls and releases the signing client
func (r *runtime) Close() {
	r.controller.Close()
	r.provider.Close()
	_ = r.logger.Sync()
}
