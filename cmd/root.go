package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "relay-wallets",
	Short: "A wallet-session controller for the Relay swap widget",
	Long: `relay-wallets keeps track of the wallets a user has connected, picks the
primary wallet the swap widget signs with, and brokers requests for linking
new wallets. Run it as an HTTP service for the widget or drive it from the
command line.

Examples:
  relay-wallets serve
  relay-wallets wallets connect 0xAbC... --chain-id eip155:8453 --client metamask
  relay-wallets wallets primary 0xAbC...
  relay-wallets chains
  relay-wallets tokens --chain base`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}
