package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sokoyetu/marketplace/internal/ads"
	"github.com/sokoyetu/marketplace/internal/config"
	"github.com/sokoyetu/marketplace/internal/db"
	"github.com/sokoyetu/marketplace/internal/http/api/admin"
	"github.com/sokoyetu/marketplace/internal/http/api/front"
	"github.com/sokoyetu/marketplace/internal/notify"
	"github.com/sokoyetu/marketplace/internal/payments"
	"github.com/sokoyetu/marketplace/internal/ratelimit"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the marketplace API server.
func RunServer(ctx context.Context, cfg config.AppConfig, defaultPort int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	if errAdmin := EnsureAdminFromEnv(conn); errAdmin != nil {
		return errAdmin
	}

	jwtConfig, _ := config.LoadJWTConfig(configPath)
	if jwtConfig.Secret == "" {
		return fmt.Errorf("jwt secret is not configured (set `jwt.secret` or env %s)", config.EnvJWTSecret)
	}
	services, _ := config.LoadServicesConfig(configPath)

	events := notify.NewPublisher(services.AMQPURL)
	defer events.Close()

	limiter := buildLimiter(services)

	ledger := payments.NewLedger(conn, events)
	catalog := ads.NewService(conn)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", healthzHandler(conn))
	front.RegisterFrontRoutes(engine, conn, jwtConfig, ledger, catalog, limiter)
	admin.RegisterAdminRoutes(engine, conn, jwtConfig)

	port := config.LoadServerPort(configPath, defaultPort)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: engine,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
			log.WithError(errShutdown).Error("server shutdown error")
		}
	}()

	log.Infof("starting marketplace server on :%d with config=%s", port, configPath)
	if errListen := srv.ListenAndServe(); errListen != nil && errListen != http.ErrServerClosed {
		return errListen
	}
	return nil
}

// buildLimiter picks the Redis limiter when configured, otherwise the
// in-process one. Single-replica deployments need no Redis.
func buildLimiter(services config.ServicesConfig) ratelimit.Limiter {
	if services.RedisAddr == "" {
		return ratelimit.NewMemoryLimiter()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     services.RedisAddr,
		Password: services.RedisPassword,
	})
	log.WithField("addr", services.RedisAddr).Info("rate limiting backed by redis")
	return ratelimit.NewRedisLimiter(client, "marketplace")
}

// healthzHandler reports process and database liveness.
func healthzHandler(conn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, errDB := conn.DB()
		if errDB != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
