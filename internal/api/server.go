// Package api exposes the core services over a JSON HTTP surface. It is a
// thin transport adapter: every money rule lives in the service and storage
// layers.
package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/savora-app/savora/internal/auth"
	"github.com/savora-app/savora/internal/middleware"
	"github.com/savora-app/savora/internal/service"
)

// Server bundles the services behind the HTTP handlers.
type Server struct {
	authSvc    *service.AuthService
	ledger     *service.LedgerService
	savings    *service.SavingsService
	groups     *service.GroupService
	chat       *service.ChatService
	profile    *service.ProfileService
	jwtManager *auth.JWTManager
}

// NewServer creates a Server.
func NewServer(
	authSvc *service.AuthService,
	ledger *service.LedgerService,
	savings *service.SavingsService,
	groups *service.GroupService,
	chat *service.ChatService,
	profile *service.ProfileService,
	jwtManager *auth.JWTManager,
) *Server {
	return &Server{
		authSvc:    authSvc,
		ledger:     ledger,
		savings:    savings,
		groups:     groups,
		chat:       chat,
		profile:    profile,
		jwtManager: jwtManager,
	}
}

// Routes registers every endpoint on the mux. Auth endpoints are public;
// everything else requires a Bearer token.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/signup", s.handleSignup)
	mux.HandleFunc("POST /auth/login", s.handleLogin)

	protected := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, middleware.RequireAuth(s.jwtManager, h))
	}

	protected("GET /me", s.handleMe)
	protected("POST /me/accounts", s.handleLinkAccount)
	protected("POST /me/accounts/{accountId}/primary", s.handleSetPrimaryAccount)
	protected("GET /me/notifications", s.handleListNotifications)
	protected("POST /me/notifications/{notificationId}/read", s.handleMarkNotificationRead)

	protected("POST /wallet/deposit", s.handleDeposit)
	protected("POST /wallet/withdraw", s.handleWithdraw)
	protected("POST /wallet/transfer", s.handleTransfer)
	protected("GET /wallet/transactions", s.handleListTransactions)

	protected("POST /goals", s.handleCreateGoal)
	protected("GET /goals", s.handleListGoals)
	protected("POST /goals/{goalId}/fund", s.handleFundGoal)

	protected("POST /groups", s.handleCreateGroup)
	protected("GET /groups", s.handleListGroups)
	protected("GET /groups/{groupId}", s.handleGetGroup)
	protected("POST /groups/{groupId}/join", s.handleJoinGroup)
	protected("POST /groups/{groupId}/contributions", s.handleContribute)
	protected("POST /groups/{groupId}/advance", s.handleAdvanceCycle)
	protected("POST /groups/{groupId}/payout-requests", s.handleRequestPayout)
	protected("POST /groups/{groupId}/payout-requests/{requestId}/approve", s.handleApprovePayout)
	protected("POST /groups/{groupId}/payout-requests/{requestId}/reject", s.handleRejectPayout)
	protected("POST /groups/{groupId}/messages", s.handlePostMessage)
	protected("GET /groups/{groupId}/messages", s.handleListMessages)

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
