package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"relay-wallets/config"
	"relay-wallets/pkg/chains"
)

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List the chains offered to the swap widget",
	Long: `List the chains in the swap widget's registry with their RPC endpoints.

RPC endpoints can be overridden per chain with evm.rpc.<chain> and solana.rpc_url.

Examples:
  relay-wallets chains
  relay-wallets chains --json`,
	Run: runChains,
}

func init() {
	rootCmd.AddCommand(chainsCmd)
}

func runChains(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	registry, err := cfg.Registry()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	list := registry.List()
	if jsonOutput {
		jsonData, _ := json.MarshalIndent(list, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	displayChains(list)
}

func displayChains(list []chains.Chain) {
	fmt.Println("\n" + strings.Repeat("=", 90))
	color.Green("                                 CHAINS")
	fmt.Println(strings.Repeat("=", 90))

	for _, c := range list {
		fmt.Printf("\n  %-12s %s\n", color.CyanString(c.DisplayName), color.HiBlackString("(%s)", c.Name))
		fmt.Printf("  ID:          %d\n", c.ID)
		fmt.Printf("  VM:          %s\n", c.VMType)
		fmt.Printf("  Currency:    %s (%d decimals)\n", color.YellowString(c.Currency.Symbol), c.Currency.Decimals)
		fmt.Printf("  RPC:         %s\n", c.HTTPRPCURL)
		fmt.Printf("  Explorer:    %s\n", c.ExplorerURL)
	}

	fmt.Println("\n" + strings.Repeat("=", 90) + "\n")
}
