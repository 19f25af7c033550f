package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"relay-wallets/pkg/chains"
	"relay-wallets/pkg/client"
	"relay-wallets/pkg/server"
)

const shutdownTimeout = 10 * time.Second

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the wallet-session controller over HTTP",
	Long: `Run the HTTP API the swap widget talks to: widget configuration, linked
wallets, link requests, primary wallet selection and transaction submission.

Wallets connected or disconnected with 'relay-wallets wallets' while the
server runs are picked up from the shared wallet store.

The server runs until interrupted (Ctrl+C or SIGTERM).

Examples:
  relay-wallets serve
  relay-wallets serve --listen 127.0.0.1:9000`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (overrides server.listen)")
}

func runServe(cmd *cobra.Command, args []string) {
	rt, err := newRuntime(cmd)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if err := serve(cmd, rt); err != nil {
		rt.Close()
		printError(err)
		os.Exit(1)
	}
	rt.Close()
}

func serve(cmd *cobra.Command, rt *runtime) error {
	cfg := rt.cfg

	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	opts := server.Options{
		Controller:     rt.controller,
		Connections:    rt.provider,
		Registry:       rt.registry,
		AllowedOrigins: cfg.Server.CORSOrigins,
		Logger:         rt.logger.Named("http"),
		Widget: server.WidgetConfig{
			AppName:      cfg.AppName,
			RelayAPIURL:  cfg.Relay.APIURL,
			Source:       cfg.Relay.Source,
			LogLevel:     cfg.Log.Level,
			FromToken:    server.EtherOn(chains.ChainIDBase),
			ToToken:      server.EtherOn(chains.ChainIDMainnet),
			PrivyAppID:   cfg.Privy.AppID,
			PrivyAuthURL: cfg.Privy.AuthURL,
			DuneAPIKey:   cfg.DuneAPIKey,
		},
	}
	if cfg.OneClick.JWTToken != "" {
		opts.Catalog = client.NewOneClickClient(cfg.OneClick.JWTToken, cfg.OneClick.BaseURL)
	} else {
		rt.logger.Warn("token catalogue disabled, set RELAY_WALLETS_ONECLICK_JWT_TOKEN to enable it")
	}

	listen := cfg.Server.Listen
	if serveListen != "" {
		listen = serveListen
	}

	httpServer := &http.Server{
		Addr:              listen,
		Handler:           server.New(opts).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watchDone, err := rt.provider.Watch(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		rt.logger.Info("shutting down")

		// Releases handlers blocked on link requests before draining
		rt.controller.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	color.Green("relay-wallets listening on %s", listen)
	rt.logger.Info("server started", zap.String("listen", listen))

	err = g.Wait()
	stop()
	<-watchDone
	return err
}
