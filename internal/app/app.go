package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	nats "github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/julianthant/codecave-sub000/config"
	httpadapter "github.com/julianthant/codecave-sub000/internal/adapters/http"
	apiv1 "github.com/julianthant/codecave-sub000/internal/adapters/http/api/v1"
	handlers "github.com/julianthant/codecave-sub000/internal/adapters/http/api/v1/handlers"
	authmw "github.com/julianthant/codecave-sub000/internal/adapters/http/middleware"
	natsadapter "github.com/julianthant/codecave-sub000/internal/adapters/nats"
	repo "github.com/julianthant/codecave-sub000/internal/adapters/postgres"
	"github.com/julianthant/codecave-sub000/internal/adapters/redisauthority"
	supaclient "github.com/julianthant/codecave-sub000/internal/adapters/supabase"
	"github.com/julianthant/codecave-sub000/internal/domain"
	"github.com/julianthant/codecave-sub000/internal/session"
	"github.com/julianthant/codecave-sub000/internal/usecase"
	pkglog "github.com/julianthant/codecave-sub000/pkg/log"
)

// App wires the whole service together. This is the single composition
// point: every dependency is constructed here and injected down.
type App struct {
	cfg      *config.Config
	logger   pkglog.Logger
	db       *gorm.DB
	natsConn *nats.Conn
	redis    *redis.Client
	echo     *echo.Echo
}

func New(ctx context.Context) (*App, error) {
	cfg := config.MustLoad()
	appLogger := pkglog.New(cfg.AppEnv)

	if missing := cfg.MissingCredentials(); len(missing) > 0 {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		appLogger.Warn().Strs("missing", missing).Msg("running without some external credentials")
	}

	db, err := gorm.Open(postgres.Open(buildDSN(cfg)), &gorm.Config{
		Logger:         loggerForGorm(cfg),
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		return nil, err
	}

	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		log.Printf("nats connect failed: %v", err)
	}

	var redisClient *redis.Client
	var authority session.Authority
	switch cfg.SessionAuthority {
	case "redis":
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		authority = redisauthority.New(redisClient)
	default:
		if nc == nil {
			return nil, errors.New("nats session authority selected but nats is unavailable")
		}
		authority = natsadapter.NewSessionAuthority(nc, cfg.NATSSessionVerifySubject)
	}

	userRepo := repo.NewUserRepository(db)
	signer, err := usecase.NewTokenSigner(cfg)
	if err != nil {
		return nil, err
	}

	service := usecase.NewAuthService(cfg, appLogger, userRepo, signer)
	supabase := supaclient.NewHTTPClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, 5*time.Second)
	bridge := usecase.NewSupabaseBridge(appLogger, userRepo, supabase)

	handler := handlers.NewAuthHandler(service)
	sessionGuard := authmw.NewSessionGuard(authority, cfg.SessionCookieName)
	supabaseGuard := authmw.NewSupabaseGuard(bridge)
	router := httpadapter.NewRouter(cfg, apiv1.NewRouter(handler, sessionGuard, supabaseGuard))

	if nc != nil {
		verifyHandler := natsadapter.NewVerifyHandler(signer)
		_ = verifyHandler.Subscribe(nc, cfg.NATSTokenVerifySubject, cfg.AppName)
	}

	e := echo.New()
	router.Setup(e)

	return &App{cfg: cfg, logger: appLogger, db: db, natsConn: nc, redis: redisClient, echo: e}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.echo.Shutdown(shutdownCtx)
	}()
	go func() {
		errCh <- a.echo.Start(fmt.Sprintf("%s:%s", a.cfg.HTTPHost, a.cfg.HTTPPort))
	}()
	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) Close() {
	if a.natsConn != nil {
		_ = a.natsConn.Drain()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func buildDSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s", cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
}

func loggerForGorm(cfg *config.Config) logger.Interface {
	level := logger.Silent
	switch cfg.AppEnv {
	case "local":
		level = logger.Info
	default:
		level = logger.Warn
	}
	return logger.Default.LogMode(level)
}
