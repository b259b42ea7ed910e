package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"urlcurt/internal/config"
	"urlcurt/internal/db"
	"urlcurt/internal/email"
	apihttp "urlcurt/internal/http"
	"urlcurt/internal/repository"
	"urlcurt/internal/service"
	"urlcurt/internal/sms"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	ctxPing, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	if err := db.Ping(ctxPing, pool); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}
	cancelPing()

	userRepo := repository.NewPgUserRepository(pool)

	// Un proveedor de email desconocido es error fatal de configuración:
	// se rechaza acá, no en el primer envío. Sin EMAIL_USER el transporte
	// queda deshabilitado y cada envío falla con un error explícito.
	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.EmailUser != "" {
		sender, err := email.NewSender(cfg.EmailService, cfg.EmailUser, cfg.EmailPassword, cfg.SMTPHost, cfg.SMTPPort)
		if err != nil {
			logger.Fatal("email sender init", zap.Error(err))
		}
		emailSender = sender
	}

	smsSender := sms.NewDisabledSender("sms sender not configured")
	if cfg.TwilioSID != "" {
		sender, err := sms.NewTwilioSender(cfg.TwilioSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber, logger)
		if err != nil {
			logger.Warn("twilio sender init failed", zap.Error(err))
		} else {
			smsSender = sender
		}
	}

	var resetStore service.ResetTokenStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			resetStore = service.NewRedisResetTokenStore(redisClient)
		}
		cancel()
	}

	tokenSvc := service.NewTokenServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTSessionTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTResetTTLMinutes)*time.Minute,
		resetStore,
	)

	authSvc := service.NewAuthService(logger, userRepo, tokenSvc, emailSender, smsSender, cfg.BaseURL)
	authHandler := apihttp.NewAuthHandler(logger, authSvc, tokenSvc)
	router := apihttp.NewRouter(logger, authHandler, tokenSvc)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
