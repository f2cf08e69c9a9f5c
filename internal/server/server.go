package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cakeshop/internal/config"
	"cakeshop/internal/media"
	custommiddleware "cakeshop/internal/middleware"
	"cakeshop/internal/repository"
	"cakeshop/internal/service"
	"cakeshop/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config      *config.Config
	logger      *zap.Logger
	db          *sql.DB
	redisClient *redis.Client
}

// NewServer wires repositories, services and handlers into the router
func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, redisClient *redis.Client, health func() map[string]string) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env == "development"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":   "ok",
			"database": health(),
		})
	})

	// Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	promotionRepo := repository.NewPromotionRepository(db)
	bannerRepo := repository.NewBannerRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg.JWT.Secret, cfg.JWT.AccessExpiry)
	catalogService := service.NewCatalogService(categoryRepo, productRepo, promotionRepo, bannerRepo, redisClient, logger)

	// Media client; upload stays mounted but answers with a structured error
	// when credentials are missing.
	mediaClient := media.NewClient(cfg.Media)
	if !mediaClient.Configured() {
		logger.Warn("Media credentials missing; image uploads are disabled")
	}

	// Middleware chains
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	requireAdmin := custommiddleware.RequireAdmin(logger)
	adminOnly := func(next http.Handler) http.Handler {
		return authMiddleware(requireAdmin(next))
	}

	loginLimiter := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 10,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit:login",
	}, logger)

	// Handlers
	transport.NewAuthHandler(authService, logger).RegisterRoutes(router, authMiddleware, loginLimiter)
	transport.NewCategoryHandler(catalogService, logger).RegisterRoutes(router, adminOnly)
	transport.NewProductHandler(catalogService, logger).RegisterRoutes(router, adminOnly)
	transport.NewPromotionHandler(catalogService, logger).RegisterRoutes(router, adminOnly)
	transport.NewBannerHandler(catalogService, logger).RegisterRoutes(router, adminOnly)
	transport.NewUploadHandler(mediaClient, logger).RegisterRoutes(router, adminOnly)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:      cfg,
		logger:      logger,
		db:          db,
		redisClient: redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
