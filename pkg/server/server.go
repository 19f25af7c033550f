// Package server exposes the wallet-session controller to the swap widget over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"relay-wallets/pkg/chains"
	"relay-wallets/pkg/client"
	"relay-wallets/pkg/session"
	"relay-wallets/pkg/types"
)

const requestIDHeader = "X-Request-ID"

// ConnectionManager is the identity provider's connect/disconnect surface
type ConnectionManager interface {
	Connect(w types.ConnectedWallet) (types.ConnectedWallet, error)
	Disconnect(address string) error
}

// TokenCatalog serves the swap widget's token list and swap status lookups
type TokenCatalog interface {
	Tokens(ctx context.Context, filter client.TokenFilter) ([]client.Token, error)
	GetSwapStatus(ctx context.Context, depositAddress string) (client.SwapStatus, error)
}

// Options configure a Server
type Options struct {
	Controller     *session.Controller
	Connections    ConnectionManager
	Catalog        TokenCatalog // optional
	Registry       *chains.Registry
	Widget         WidgetConfig
	AllowedOrigins []string // CORS origins; none disables CORS
	Logger         *zap.Logger
}

// Server holds the HTTP handlers
type Server struct {
	controller  *session.Controller
	connections ConnectionManager
	catalog     TokenCatalog
	registry    *chains.Registry
	widget      WidgetConfig
	origins     []string
	logger      *zap.Logger
}

// New creates a server
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		controller:  opts.Controller,
		connections: opts.Connections,
		catalog:     opts.Catalog,
		registry:    opts.Registry,
		widget:      opts.Widget,
		origins:     opts.AllowedOrigins,
		logger:      logger,
	}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	if len(s.origins) > 0 {
		router.Use(s.configureCORS())
	}

	router.GET("/healthz", s.Health)

	api := router.Group("/api")
	{
		api.GET("/config", s.GetConfig)
		api.GET("/chains", s.ListChains)

		api.GET("/wallets", s.ListLinkedWallets)
		api.GET("/wallets/link", s.GetPendingLink)
		api.POST("/wallets/link", s.LinkWallet)
		api.GET("/wallets/link/:id", s.GetLinkRequest)
		api.POST("/wallets/primary", s.SetPrimaryWallet)

		api.GET("/wallet", s.GetWallet)
		api.POST("/wallet/transactions", s.SendTransaction)

		api.POST("/connections", s.Connect)
		api.DELETE("/connections/:address", s.Disconnect)

		api.GET("/tokens", s.ListTokens)
		api.GET("/swaps/:deposit", s.GetSwapStatus)
	}

	return router
}

// requestLogger tags each request with an id and logs its completion
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("requestID", requestID)
		c.Header(requestIDHeader, requestID)

		start := time.Now()
		c.Next()

		s.logger.Debug("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("request_id", requestID))
	}
}

// configureCORS lets the swap widget call the API from the browser
func (s *Server) configureCORS() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = s.origins
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", requestIDHeader}
	corsConfig.ExposeHeaders = []string{requestIDHeader}
	return cors.New(corsConfig)
}

// Health responds to /healthz
func (s *Server) Health(c *gin.Context) {
	sendSuccess(c, http.StatusOK, gin.H{"status": "ok"})
}
