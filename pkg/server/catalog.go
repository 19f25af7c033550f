package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"relay-wallets/pkg/client"
)

var errNoCatalog = errors.New("token catalogue not configured")

// ListTokens lists the supported tokens, filtered by ?chain= and ?symbol=
func (s *Server) ListTokens(c *gin.Context) {
	if s.catalog == nil {
		s.sendError(c, http.StatusServiceUnavailable, "Token catalogue not configured", errNoCatalog)
		return
	}

	tokens, err := s.catalog.Tokens(c.Request.Context(), client.TokenFilter{
		Chain:  c.Query("chain"),
		Symbol: c.Query("symbol"),
	})
	if err != nil {
		s.sendError(c, http.StatusBadGateway, "Failed to fetch tokens", err)
		return
	}
	sendList(c, tokens)
}

// GetSwapStatus reports the execution status of a swap by deposit address
func (s *Server) GetSwapStatus(c *gin.Context) {
	if s.catalog == nil {
		s.sendError(c, http.StatusServiceUnavailable, "Token catalogue not configured", errNoCatalog)
		return
	}

	status, err := s.catalog.GetSwapStatus(c.Request.Context(), c.Param("deposit"))
	if err != nil {
		s.sendError(c, http.StatusBadGateway, "Failed to fetch swap status", err)
		return
	}
	sendSuccess(c, http.StatusOK, status)
}
