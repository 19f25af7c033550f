package session

import (
	"relay-wallets/pkg/types"
)

// ToLinkedWallet projects a connected wallet for the swap widget
func ToLinkedWallet(w types.ConnectedWallet) types.LinkedWallet {
	vmType := types.VMTypeSVM
	if w.IsEVM() {
		vmType = types.VMTypeEVM
	}
	return types.LinkedWallet{
		Address:       w.Address,
		WalletLogoURL: w.Meta.Icon,
		VMType:        vmType,
		Connector:     w.WalletClientType,
	}
}

// ProjectLinkedWallets maps EVM wallets followed by Solana wallets, keeping
// the order of each list
func ProjectLinkedWallets(evm, svm []types.ConnectedWallet) []types.LinkedWallet {
	linked := make([]types.LinkedWallet, 0, len(evm)+len(svm))
	for _, w := range evm {
		linked = append(linked, ToLinkedWallet(w))
	}
	for _, w := range svm {
		linked = append(linked, ToLinkedWallet(w))
	}
	return linked
}
