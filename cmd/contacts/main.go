package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/adapters/db/postgres"
	myRedisRepo "github.com/Miraines/MoonyAndStarry/contacts-service/internal/adapters/db/redis"
	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/adapters/gravatar"
	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/adapters/mail"
	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/adapters/storage/s3"
	myHttp "github.com/Miraines/MoonyAndStarry/contacts-service/internal/adapters/transport/http"
	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/adapters/transport/http/dto"
	httpmw "github.com/Miraines/MoonyAndStarry/contacts-service/internal/adapters/transport/http/middleware"
	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/app/auth/jwt"
	authsvc "github.com/Miraines/MoonyAndStarry/contacts-service/internal/app/auth/service"
	contactsvc "github.com/Miraines/MoonyAndStarry/contacts-service/internal/app/contacts/service"
	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/domain/auth/repo"
	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/infra/clock"
	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/infra/config"
	lg "github.com/Miraines/MoonyAndStarry/contacts-service/internal/infra/log"
	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/infra/migrate"
	"golang.org/x/sync/errgroup"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		lg.Must("info").Fatal("failed to load config", zap.Error(err))
	}

	zapLog := lg.Must(cfg.LogLevel)
	defer zapLog.Sync()
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := gorm.Open(gormPostgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	redisCli := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisCli.Close()

	jwtUtil, err := jwt.NewJWTUtil(cfg, clock.System)
	if err != nil {
		zapLog.Fatal("failed to init JWT util", zap.Error(err))
	}

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var avatars repo.AvatarStore
	if cfg.S3Bucket != "" {
		store, err := s3.New(rootCtx, cfg)
		if err != nil {
			zapLog.Fatal("failed to init avatar storage", zap.Error(err))
		}
		avatars = store
	} else {
		zapLog.Warn("S3_BUCKET is not set, avatar uploads are disabled")
	}

	cache := myRedisRepo.NewRedisCache(redisCli)
	validate := dto.NewValidator()

	auth := authsvc.New(authsvc.Deps{
		Users:     postgres.NewPostgresUserRepo(db),
		Cache:     cache,
		JWT:       jwtUtil,
		Mailer:    mail.New(cfg),
		Avatars:   avatars,
		Gravatar:  gravatar.New(),
		Config:    cfg,
		Validator: validate,
		Log:       zapLog,
	})
	contacts := contactsvc.New(postgres.NewPostgresContactRepo(db), validate, clock.System)

	handler := myHttp.NewHandler(auth, contacts, zapLog, map[string]myHttp.HealthCheck{
		"db":    sqlDB.PingContext,
		"redis": cache.Ping,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	router := myHttp.NewRouter(rootCtx, cfg, handler, httpmw.NewMetrics(reg))

	srv := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		zapLog.Info("http server started", zap.String("addr", cfg.HTTPAddress))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case <-quit:
			zapLog.Info("shutdown signal received")
		case <-ctx.Done():
		}
		cancel()

		ctxShutdown, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		return srv.Shutdown(ctxShutdown)
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}
