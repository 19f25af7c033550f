package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"relay-wallets/config"
	"relay-wallets/pkg/client"
)

var (
	watchStatus   bool
	watchInterval int
)

var statusCmd = &cobra.Command{
	Use:   "status <deposit-address>",
	Short: "Check the status of a swap",
	Long: `Check the execution status of a swap started from the widget by its deposit address.

Examples:
  relay-wallets status 0x1234...abcd
  relay-wallets status 0x1234...abcd --watch
  relay-wallets status 0x1234...abcd --watch --interval 10`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates until the swap finishes")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 5, "Polling interval in seconds (when watching)")
}

func runStatus(cmd *cobra.Command, args []string) {
	depositAddress := args[0]
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

	if watchStatus {
		watchSwapStatus(cmd.Context(), apiClient, depositAddress, jsonOutput)
	} else {
		checkSwapStatus(cmd.Context(), apiClient, depositAddress, jsonOutput)
	}
}

func checkSwapStatus(ctx context.Context, apiClient *client.OneClickClient, depositAddress string, jsonOutput bool) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking swap status..."
		s.Start()
	}

	status, err := apiClient.GetSwapStatus(ctx, depositAddress)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(status, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayStatus(status)
	}
}

func watchSwapStatus(ctx context.Context, apiClient *client.OneClickClient, depositAddress string, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
		os.Exit(1)
	}
	if watchInterval <= 0 {
		printError(fmt.Errorf("interval must be positive"))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\nWatching swap status (Deposit Address: %s)\n", color.CyanString(depositAddress))
	fmt.Printf("Checking every %d seconds. Press Ctrl+C to stop.\n\n", watchInterval)

	ticker := time.NewTicker(time.Duration(watchInterval) * time.Second)
	defer ticker.Stop()

	// Check immediately first
	if checkAndDisplayStatus(ctx, apiClient, depositAddress) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if checkAndDisplayStatus(ctx, apiClient, depositAddress) {
				return
			}
		}
	}
}

// checkAndDisplayStatus reports whether the swap reached a final status
func checkAndDisplayStatus(ctx context.Context, apiClient *client.OneClickClient, depositAddress string) bool {
	status, err := apiClient.GetSwapStatus(ctx, depositAddress)
	if err != nil {
		color.Red("Error: %v", err)
		return false
	}

	displayStatus(status)
	return status.IsFinal()
}

func displayStatus(status client.SwapStatus) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                        SWAP STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Deposit Address: %s\n", color.CyanString(status.DepositAddress))
	fmt.Printf("  Status:          %s\n", getColoredStatus(status.Status))
	fmt.Printf("  Last Updated:    %s\n", status.UpdatedAt.Format("2006-01-02 15:04:05"))

	for _, hash := range status.DepositTxs {
		fmt.Printf("  Deposit Tx:      %s\n", color.HiBlackString(hash))
	}
	for _, hash := range status.WithdrawalTxs {
		fmt.Printf("  Withdrawal Tx:   %s\n", color.HiBlackString(hash))
	}

	if status.AmountIn != "" {
		fmt.Printf("  Amount In:       %s\n", status.AmountIn)
	}
	if status.AmountOut != "" {
		fmt.Printf("  Amount Out:      %s\n", status.AmountOut)
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func getColoredStatus(status string) string {
	switch status {
	case "SUCCESS", "COMPLETED":
		return color.GreenString(status)
	case "PENDING_DEPOSIT", "PENDING", "PROCESSING":
		return color.YellowString(status)
	case "FAILED", "REFUNDED":
		return color.RedString(status)
	case "INCOMPLETE_DEPOSIT":
		return color.MagentaString(status)
	default:
		return status
	}
}
