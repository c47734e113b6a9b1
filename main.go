package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/wastewise/backend/auth"
	"github.com/wastewise/backend/config"
	"github.com/wastewise/backend/controllers"
	"github.com/wastewise/backend/database"
	"github.com/wastewise/backend/logging"
	"github.com/wastewise/backend/middleware"
	"github.com/wastewise/backend/notify"
	"github.com/wastewise/backend/utils"
)

const reapInterval = 15 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error("mongo disconnect", "err", err)
		}
	}()
	db := client.Database(cfg.DatabaseName)
	logger.Info("connected to MongoDB", "database", cfg.DatabaseName)

	if err := database.EnsureIndexes(ctx, db, cfg.CodeRetention); err != nil {
		log.Fatal(err)
	}

	accounts := database.NewAccountRepository(db)
	hasher := auth.NewBcryptHasher(cfg.BcryptCost, cfg.HashConcurrency)

	//seeding admin user
	if err := utils.SeedAdminUser(ctx, accounts, hasher, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword, logger); err != nil {
		log.Fatal(err)
	}

	var notifier auth.Notifier = notify.LogNotifier{Log: logger}
	if cfg.SMTPHost != "" {
		notifier = notify.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		logger.Warn("SMTP_HOST not set, verification codes are only logged at LOG_LEVEL=debug")
	}

	broker := auth.NewBroker(database.NewCodeRepository(db), notifier, cfg.CodeTTL, cfg.CodeRetention, logger)
	svc := auth.NewService(accounts, broker, hasher, auth.NewJWTSigner(cfg.JWTSecret, cfg.TokenTTL), logger)
	go broker.RunReaper(ctx, reapInterval)

	deps := controllers.Deps{
		Inventory: database.NewInventoryRepository(db),
		Waste:     database.NewWasteRepository(db),
		Limits:    controllers.QueryLimits{Default: cfg.DefaultQueryLimit, Max: cfg.MaxQueryLimit},
		Log:       logger,
	}
	if cfg.R2.Enabled() {
		r2, err := utils.NewR2Client(ctx, cfg.R2)
		if err != nil {
			log.Fatal(err)
		}
		deps.Uploader = r2
	}

	allowedOrigins := map[string]bool{}
	for _, origin := range cfg.AllowedOrigins {
		allowedOrigins[origin] = true
	}
	logger.Info("CORS configured", "origins", cfg.AllowedOrigins)

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Archive-URL", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestID())
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	controllers.RegisterRoutes(r, svc, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "err", err)
	}
}
