package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/morlov/merchant-admin/internal/config"
	s3infra "github.com/morlov/merchant-admin/internal/infra/s3"
	pgrepo "github.com/morlov/merchant-admin/internal/repo/postgres"
	redrepo "github.com/morlov/merchant-admin/internal/repo/redis"
	authsvc "github.com/morlov/merchant-admin/internal/services/auth"
	dashboardsvc "github.com/morlov/merchant-admin/internal/services/dashboard"
	merchantssvc "github.com/morlov/merchant-admin/internal/services/merchants"
	settingssvc "github.com/morlov/merchant-admin/internal/services/settings"
	userssvc "github.com/morlov/merchant-admin/internal/services/users"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	resetRepo := redrepo.NewResetRepo(redisClient)
	userRepo := pgrepo.NewUserRepo(pool)
	merchantRepo := pgrepo.NewMerchantRepo(pool)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
		if err := s3infra.EnsureBucket(ctx, c, cfg.S3.Bucket); err != nil {
			log.Warn("s3 bucket ensure failed, uploads will retry lazily", zap.Error(err))
		}
	}

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, sessionRepo, userRepo, resetRepo, authsvc.Config{
		RefreshTTL: cfg.Auth.RefreshTTL,
		ResetTTL:   cfg.Auth.ResetTokenTTL,
	})
	userService := userssvc.NewService(userRepo)
	merchantService := merchantssvc.NewService(merchantRepo)
	dashboardService := dashboardsvc.NewService(userRepo, merchantRepo)
	avatarStorage := settingssvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	settingsService := settingssvc.NewService(userRepo, avatarStorage)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:      authService,
		UserService:      userService,
		MerchantService:  merchantService,
		DashboardService: dashboardService,
		SettingsService:  settingsService,
		Logger:           log,
		Config:           cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
