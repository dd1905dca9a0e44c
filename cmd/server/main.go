package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/savora-app/savora/internal/api"
	"github.com/savora-app/savora/internal/auth"
	"github.com/savora-app/savora/internal/middleware"
	"github.com/savora-app/savora/internal/service"
	"github.com/savora-app/savora/internal/storage/sqlite"
	"github.com/savora-app/savora/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	logging.Setup()

	dbPath := getEnv("DB_PATH", "./data/savora.db")
	port := getEnvInt("PORT", 8080)
	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET must be set")
		os.Exit(1)
	}
	tokenTTL := time.Duration(getEnvInt("TOKEN_TTL_HOURS", 72)) * time.Hour
	ratePerMin := getEnvInt("RATE_LIMIT_PER_MIN", 300)

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	jwtManager := auth.NewJWTManager(jwtSecret, tokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)
	locks := service.NewAggregateLocks()

	server := api.NewServer(
		service.NewAuthService(authenticator, jwtManager, store),
		service.NewLedgerService(store, locks),
		service.NewSavingsService(store, locks),
		service.NewGroupService(store, locks),
		service.NewChatService(store),
		service.NewProfileService(store, locks),
		jwtManager,
	)

	mux := http.NewServeMux()
	server.Routes(mux)

	limiter := middleware.NewLimiter(ratePerMin)
	handler := middleware.Logging(
		middleware.CORS(
			middleware.Metrics(
				middleware.RateLimit(limiter, mux))))

	// h2c allows HTTP/2 without TLS when running behind a terminating proxy.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := fmt.Sprintf(":%d", port)
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
