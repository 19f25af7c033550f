package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"relay-wallets/config"
	"relay-wallets/pkg/client"
)

var (
	filterChain  string
	filterSymbol string
)

var tokensCmd = &cobra.Command{
	Use:     "tokens",
	Aliases: []string{"list-tokens"},
	Short:   "List the swap widget's token catalogue",
	Long: `List the tokens offered in the swap widget, fetched from the 1Click API.

You can filter tokens by blockchain or symbol.

Examples:
  relay-wallets tokens
  relay-wallets tokens --chain base
  relay-wallets tokens --symbol USDC`,
	Run: runListTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().StringVar(&filterChain, "chain", "", "Filter by blockchain")
	tokensCmd.Flags().StringVar(&filterSymbol, "symbol", "", "Filter by token symbol")
}

// catalogClient builds the 1Click client, which needs an API token
func catalogClient(cfg *config.Config) (*client.OneClickClient, error) {
	if cfg.OneClick.JWTToken == "" {
		return nil, fmt.Errorf("JWT token not found. Please set RELAY_WALLETS_ONECLICK_JWT_TOKEN environment variable or add oneclick.jwt_token to .relay-wallets.yaml")
	}
	return client.NewOneClickClient(cfg.OneClick.JWTToken, cfg.OneClick.BaseURL), nil
}

func runListTokens(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	apiClient, err := catalogClient(cfg)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	// Get tokens with spinner
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching supported tokens..."
		s.Start()
	}

	tokens, err := apiClient.Tokens(cmd.Context(), client.TokenFilter{Chain: filterChain, Symbol: filterSymbol})
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(tokens, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayTokens(tokens)
	}
}

func displayTokens(tokens []client.Token) {
	if len(tokens) == 0 {
		fmt.Println("\nNo tokens found matching the criteria.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	color.Green("                            SUPPORTED TOKENS")
	fmt.Println(strings.Repeat("=", 90))

	tokensByChain, chainNames := client.GroupByChain(tokens)

	for _, chain := range chainNames {
		color.Cyan("\n%s", strings.ToUpper(chain))
		fmt.Println(strings.Repeat("-", 90))

		for _, token := range tokensByChain[chain] {
			address := token.ContractAddress

			// Truncate address if too long
			if len(address) > 40 {
				address = address[:37] + "..."
			}

			fmt.Printf("  %-10s  %2d decimals  %s\n",
				color.YellowString(token.Symbol),
				token.Decimals,
				color.HiBlackString(address))
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	fmt.Printf("\nTotal: %d tokens across %d blockchains\n\n", len(tokens), len(chainNames))
}
