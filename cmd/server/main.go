package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/medvault/share-server-go/internal/config"
	"github.com/medvault/share-server-go/internal/crypto"
	"github.com/medvault/share-server-go/internal/database"
	"github.com/medvault/share-server-go/internal/handler"
	"github.com/medvault/share-server-go/internal/jobs"
	"github.com/medvault/share-server-go/internal/middleware"
	"github.com/medvault/share-server-go/internal/model"
	"github.com/medvault/share-server-go/internal/redis"
	"github.com/medvault/share-server-go/internal/repository"
	"github.com/medvault/share-server-go/internal/service"
	"github.com/medvault/share-server-go/internal/token"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("ENVIRONMENT") == "production"
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	cipher, err := crypto.New(crypto.Config{
		SymmetricSecret:   cfg.EncryptionSecret,
		PrivateKeyPath:    cfg.RSAPrivateKeyPath,
		PublicKeyPath:     cfg.RSAPublicKeyPath,
		GenerateEphemeral: cfg.RSAPrivateKeyPath == "",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize cipher")
	}
	codec := token.NewCodec(cipher)

	userRepo := repository.NewUserRepository(db.DB)
	recordRepo := repository.NewRecordRepository(db.DB)
	tokenRepo := repository.NewShareTokenRepository(db.DB)
	accessLogRepo := repository.NewAccessLogRepository(db.DB)
	savedPatientRepo := repository.NewSavedPatientRepository(db.DB)
	noteRepo := repository.NewNoteRepository(db.DB)

	authService := service.NewAuthService(userRepo, service.NewRedisOTPStore(redisClient))
	recordService := service.NewRecordService(recordRepo)
	sharingService := service.NewSharingService(db, tokenRepo, recordRepo, accessLogRepo,
		codec, cfg.DefaultExpiry(), cfg.MaxExpiry())
	redemptionService := service.NewRedemptionService(db, tokenRepo, recordRepo,
		accessLogRepo, userRepo, codec)
	savedPatientService := service.NewSavedPatientService(savedPatientRepo, userRepo)
	noteService := service.NewNoteService(noteRepo, userRepo)
	adminService := service.NewAdminService(userRepo, recordRepo, tokenRepo, accessLogRepo)
	rateLimiter := service.NewRateLimiter(redisClient)

	authMiddleware := middleware.NewAuthMiddleware(userRepo)
	loginLimit := middleware.NewRateLimitMiddleware(rateLimiter,
		config.LoginRateLimitPerMin, time.Minute, "login")
	redeemLimit := middleware.NewRateLimitMiddleware(rateLimiter,
		config.RedeemRateLimitPerMin, time.Minute, "redeem")

	authHandler := handler.NewAuthHandler(authService, authMiddleware.Handler, loginLimit.Handler)
	recordHandler := handler.NewRecordHandler(recordService)
	sharingHandler := handler.NewSharingHandler(sharingService, adminService, cfg.ShareURL)
	redeemHandler := handler.NewRedeemHandler(redemptionService, adminService, redeemLimit.Handler)
	savedPatientHandler := handler.NewSavedPatientHandler(savedPatientService)
	noteHandler := handler.NewNoteHandler(noteService)
	adminHandler := handler.NewAdminHandler(adminService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes())

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Handler)
			r.Use(middleware.RequireRole(model.RolePatient))
			r.Mount("/records", recordHandler.Routes())
			r.Mount("/sharing/tokens", sharingHandler.Routes())
			r.Get("/sharing/activity", sharingHandler.Activity)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Handler)
			r.Use(middleware.RequireRole(model.RoleDoctor))
			r.Mount("/sharing", redeemHandler.Routes())
			r.Mount("/saved-patients", savedPatientHandler.Routes())
			r.Mount("/notes", noteHandler.Routes())
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Handler)
			r.Use(middleware.RequireRole(model.RoleAdmin))
			r.Mount("/admin", adminHandler.Routes())
		})
	})

	cleanupJob := jobs.NewCleanupJob(userRepo, config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
