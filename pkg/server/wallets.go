package server

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"relay-wallets/pkg/adapter"
	"relay-wallets/pkg/provider"
	"relay-wallets/pkg/session"
	"relay-wallets/pkg/types"
)

// ListLinkedWallets lists the linked-wallet projection, EVM wallets first
func (s *Server) ListLinkedWallets(c *gin.Context) {
	sendList(c, s.controller.LinkedWallets())
}

type linkResponse struct {
	ID     string              `json:"id"`
	Status string              `json:"status"`
	Params types.LinkParams    `json:"params"`
	Wallet *types.LinkedWallet `json:"wallet,omitempty"`
}

// GetPendingLink describes the outstanding link request
func (s *Server) GetPendingLink(c *gin.Context) {
	req := s.controller.PendingLink()
	if req == nil {
		s.sendError(c, http.StatusNotFound, "No pending link request", nil)
		return
	}
	sendSuccess(c, http.StatusOK, linkResponse{ID: req.ID, Status: "pending", Params: req.Params})
}

// GetLinkRequest reports an outstanding or recently settled link request, so a
// client answered 202 can pick up the linked wallet later
func (s *Server) GetLinkRequest(c *gin.Context) {
	req := s.controller.LinkRequest(c.Param("id"))
	if req == nil {
		s.sendError(c, http.StatusNotFound, "Link request not found", nil)
		return
	}

	resp := linkResponse{ID: req.ID, Status: "pending", Params: req.Params}
	linked, settled, err := req.Outcome()
	switch {
	case !settled:
	case err == nil:
		resp.Status = "linked"
		resp.Wallet = &linked
	case errors.Is(err, session.ErrLinkSuperseded):
		resp.Status = "superseded"
	case errors.Is(err, session.ErrClosed):
		resp.Status = "closed"
	default:
		resp.Status = "failed"
	}
	sendSuccess(c, http.StatusOK, resp)
}

// LinkWallet asks the provider for a new wallet and waits for it to connect.
// With ?timeout=<duration> the handler gives up waiting and answers 202; the
// request itself stays outstanding.
func (s *Server) LinkWallet(c *gin.Context) {
	var params types.LinkParams
	if err := c.ShouldBindJSON(&params); err != nil {
		s.sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := params.Validate(); err != nil {
		s.sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	ctx := c.Request.Context()
	if raw := c.Query("timeout"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil || timeout <= 0 {
			s.sendError(c, http.StatusBadRequest, "Invalid timeout", err)
			return
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := s.controller.RequestLink(ctx, params)
	if err != nil {
		s.sendError(c, http.StatusBadGateway, "Failed to request wallet connection", err)
		return
	}

	linked, err := req.Wait(ctx)
	switch {
	case err == nil:
		sendSuccess(c, http.StatusOK, linkResponse{ID: req.ID, Status: "linked", Params: params, Wallet: &linked})
	case errors.Is(err, session.ErrLinkSuperseded):
		s.sendError(c, http.StatusConflict, "Link request superseded by a newer one", err)
	case errors.Is(err, session.ErrClosed):
		s.sendError(c, http.StatusServiceUnavailable, "Server shutting down", err)
	case errors.Is(err, context.DeadlineExceeded):
		sendSuccess(c, http.StatusAccepted, linkResponse{ID: req.ID, Status: "pending", Params: params})
	default:
		s.sendError(c, http.StatusRequestTimeout, "Stopped waiting for wallet connection", err)
	}
}

type setPrimaryRequest struct {
	Address string `json:"address" binding:"required"`
}

type setPrimaryResponse struct {
	Address  string                 `json:"address"`
	Status   string                 `json:"status"`
	Attempts int                    `json:"attempts,omitempty"`
	Primary  *types.ConnectedWallet `json:"primary,omitempty"`
}

// SetPrimaryWallet starts promoting a wallet to primary. With ?wait=true the
// handler blocks until the bounded poll ends.
func (s *Server) SetPrimaryWallet(c *gin.Context) {
	var req setPrimaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	conv := s.controller.SetPrimaryWallet(req.Address)
	if c.Query("wait") != "true" {
		sendSuccess(c, http.StatusAccepted, setPrimaryResponse{Address: req.Address, Status: "pending"})
		return
	}

	wallet, found, err := conv.Wait(c.Request.Context())
	if err != nil {
		s.sendError(c, http.StatusRequestTimeout, "Stopped waiting for wallet", err)
		return
	}

	resp := setPrimaryResponse{Address: req.Address, Attempts: conv.Attempts(), Status: "not_found"}
	if found {
		resp.Status = "primary"
		resp.Primary = &wallet
	}
	sendSuccess(c, http.StatusOK, resp)
}

type adaptedWalletView struct {
	VMType  types.VMType `json:"vmType"`
	Address string       `json:"address"`
	ChainID int64        `json:"chainId"`
}

type walletResponse struct {
	Primary *types.ConnectedWallet `json:"primary"`
	Wallet  *adaptedWalletView     `json:"wallet"`
}

// GetWallet describes the primary wallet and the adapted signing handle
func (s *Server) GetWallet(c *gin.Context) {
	var resp walletResponse
	if primary, ok := s.controller.Primary(); ok {
		resp.Primary = &primary
	}
	if wallet := s.controller.Wallet(); wallet != nil {
		resp.Wallet = &adaptedWalletView{
			VMType:  wallet.VMType(),
			Address: wallet.Address(),
			ChainID: wallet.ChainID(),
		}
	}
	sendSuccess(c, http.StatusOK, resp)
}

type transactionRequest struct {
	Transaction string `json:"transaction" binding:"required"` // base64 raw transaction
}

// SendTransaction signs and submits a raw transaction with the adapted wallet
func (s *Server) SendTransaction(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	raw, err := base64.StdEncoding.DecodeString(req.Transaction)
	if err != nil {
		s.sendError(c, http.StatusBadRequest, "Transaction must be base64 encoded", err)
		return
	}

	signature, err := s.controller.SignAndSend(c.Request.Context(), raw)
	switch {
	case err == nil:
		sendSuccess(c, http.StatusOK, gin.H{"signature": signature})
	case errors.Is(err, session.ErrNoWallet):
		s.sendError(c, http.StatusConflict, "No usable wallet", err)
	case errors.Is(err, adapter.ErrEmptyTransaction):
		s.sendError(c, http.StatusBadRequest, "Empty transaction", err)
	default:
		s.sendError(c, http.StatusBadGateway, fmt.Sprintf("Failed to send transaction: %v", err), err)
	}
}

type connectRequest struct {
	Address          string           `json:"address" binding:"required"`
	ChainID          string           `json:"chain_id"`
	ConnectorType    string           `json:"connector_type"`
	WalletClientType string           `json:"wallet_client_type"`
	Meta             types.WalletMeta `json:"meta"`
}

// Connect records a successful wallet connection reported by the provider
func (s *Server) Connect(c *gin.Context) {
	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	wallet, err := s.connections.Connect(types.ConnectedWallet{
		Address:          req.Address,
		ChainID:          req.ChainID,
		ConnectorType:    req.ConnectorType,
		WalletClientType: req.WalletClientType,
		Meta:             req.Meta,
	})
	if err != nil {
		s.sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}
	sendSuccess(c, http.StatusCreated, wallet)
}

// Disconnect removes a wallet reported gone by the provider
func (s *Server) Disconnect(c *gin.Context) {
	address := c.Param("address")
	if err := s.connections.Disconnect(address); err != nil {
		if errors.Is(err, provider.ErrWalletNotFound) {
			s.sendError(c, http.StatusNotFound, "Wallet not connected", err)
			return
		}
		s.sendError(c, http.StatusInternalServerError, "Failed to disconnect wallet", err)
		return
	}
	sendSuccessMessage(c, http.StatusOK, fmt.Sprintf("wallet %s disconnected", address))
}
