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

	"relay-wallets/pkg/types"
)

var (
	connectChainID   string
	connectConnector string
	connectClient    string
	connectIcon      string
	connectName      string
)

var walletsCmd = &cobra.Command{
	Use:     "wallets",
	Aliases: []string{"wallet"},
	Short:   "Manage connected wallets",
	Long: `List, connect and disconnect wallets, and choose the primary wallet the
swap widget signs with.`,
}

var walletsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List linked wallets",
	Long: `List connected wallets as the swap widget sees them: EVM wallets first,
then Solana wallets, each in connection order.

Examples:
  relay-wallets wallets list
  relay-wallets wallets list --json`,
	Run: runWalletsList,
}

var walletsConnectCmd = &cobra.Command{
	Use:   "connect <address>",
	Short: "Record a connected wallet",
	Long: `Record a wallet connection. A wallet with a chain id is an EVM wallet;
without one it is a Solana wallet.

Examples:
  relay-wallets wallets connect 0xAbC... --chain-id eip155:8453 --client metamask
  relay-wallets wallets connect 9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin --client phantom`,
	Args: cobra.ExactArgs(1),
	Run:  runWalletsConnect,
}

var walletsDisconnectCmd = &cobra.Command{
	Use:   "disconnect <address>",
	Short: "Remove a connected wallet",
	Args:  cobra.ExactArgs(1),
	Run:   runWalletsDisconnect,
}

var walletsPrimaryCmd = &cobra.Command{
	Use:   "primary <address>",
	Short: "Make a wallet the primary wallet",
	Long: `Wait for the wallet to show up in the connected-wallet list, make it the
primary wallet and report the signing handle the swap widget would use.

Examples:
  relay-wallets wallets primary 0xAbC...`,
	Args: cobra.ExactArgs(1),
	Run:  runWalletsPrimary,
}

func init() {
	rootCmd.AddCommand(walletsCmd)
	walletsCmd.AddCommand(walletsListCmd, walletsConnectCmd, walletsDisconnectCmd, walletsPrimaryCmd)

	walletsConnectCmd.Flags().StringVar(&connectChainID, "chain-id", "", "EVM chain id, e.g. eip155:8453 (omit for Solana)")
	walletsConnectCmd.Flags().StringVar(&connectConnector, "connector", "", "Connector type (default injected or solana_adapter)")
	walletsConnectCmd.Flags().StringVar(&connectClient, "client", "", "Wallet client type, e.g. metamask or phantom")
	walletsConnectCmd.Flags().StringVar(&connectIcon, "icon", "", "Wallet logo URL")
	walletsConnectCmd.Flags().StringVar(&connectName, "name", "", "Wallet display name")
}

func runWalletsList(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	rt, err := newRuntime(cmd)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer rt.Close()

	linked := rt.controller.LinkedWallets()
	if jsonOutput {
		jsonData, _ := json.MarshalIndent(linked, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	displayLinkedWallets(linked)
}

func displayLinkedWallets(linked []types.LinkedWallet) {
	if len(linked) == 0 {
		fmt.Println("\nNo wallets connected. Use 'relay-wallets wallets connect' to add one.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	color.Green("                              LINKED WALLETS")
	fmt.Println(strings.Repeat("=", 90))

	for _, w := range linked {
		vm := color.CyanString("%-3s", strings.ToUpper(string(w.VMType)))
		if w.VMType == types.VMTypeSVM {
			vm = color.MagentaString("%-3s", strings.ToUpper(string(w.VMType)))
		}
		fmt.Printf("  %s  %-46s  %s\n", vm, w.Address, color.HiBlackString(w.Connector))
	}

	fmt.Println(strings.Repeat("=", 90))
	fmt.Printf("\nTotal: %d wallets\n\n", len(linked))
}

func runWalletsConnect(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	rt, err := newRuntime(cmd)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer rt.Close()

	wallet, err := rt.provider.Connect(types.ConnectedWallet{
		Address:          args[0],
		ChainID:          connectChainID,
		ConnectorType:    connectConnector,
		WalletClientType: connectClient,
		Meta: types.WalletMeta{
			Name: connectName,
			Icon: connectIcon,
		},
	})
	if err != nil {
		rt.Close()
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(wallet, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	family := "Solana"
	if wallet.IsEVM() {
		family = "EVM (" + wallet.ChainID + ")"
	}
	printSuccess(fmt.Sprintf("%s Connected %s wallet %s", color.GreenString("✓"), family, color.CyanString(wallet.Address)))
}

func runWalletsDisconnect(cmd *cobra.Command, args []string) {
	rt, err := newRuntime(cmd)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer rt.Close()

	if err := rt.provider.Disconnect(args[0]); err != nil {
		rt.Close()
		printError(err)
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("%s Disconnected wallet %s", color.GreenString("✓"), color.CyanString(args[0])))
}

func runWalletsPrimary(cmd *cobra.Command, args []string) {
	address := args[0]
	jsonOutput, _ := cmd.Flags().GetBool("json")

	rt, err := newRuntime(cmd)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer rt.Close()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Waiting for wallet to become available..."
		s.Start()
	}

	conv := rt.controller.SetPrimaryWallet(address)
	wallet, found, err := conv.Wait(cmd.Context())
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		rt.Close()
		printError(err)
		os.Exit(1)
	}

	adapted := rt.controller.Wallet()

	if jsonOutput {
		out := map[string]interface{}{
			"address":  address,
			"found":    found,
			"attempts": conv.Attempts(),
		}
		if found {
			out["primary"] = wallet
		}
		if adapted != nil {
			out["wallet"] = map[string]interface{}{
				"vmType":  adapted.VMType(),
				"address": adapted.Address(),
				"chainId": adapted.ChainID(),
			}
		}
		jsonData, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	if !found {
		color.Yellow("\nWallet %s did not show up after %d attempts; primary wallet unchanged.\n", address, conv.Attempts())
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                        PRIMARY WALLET")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("\n  Address:         %s\n", color.CyanString(wallet.Address))
	if wallet.IsEVM() {
		fmt.Printf("  Chain:           %s\n", wallet.ChainID)
	}
	fmt.Printf("  Connector:       %s\n", wallet.ConnectorType)
	fmt.Printf("  Attempts:        %d\n", conv.Attempts())

	if adapted != nil {
		fmt.Printf("  Signing:         %s on chain %d\n", color.GreenString(strings.ToUpper(string(adapted.VMType()))), adapted.ChainID())
	} else {
		fmt.Printf("  Signing:         %s\n", color.YellowString("not available (no signing key for this wallet)"))
	}
	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}
