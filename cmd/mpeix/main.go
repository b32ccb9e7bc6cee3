package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/bot"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/calendar"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/handler"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/middleware"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/repository"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/schedcache"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/service"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/telegram"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/upstream"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/vk"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/blobstore"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/config"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/database"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/logger"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/memcache"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/middleware/requestid"
)

const (
	cacheFileMaxAge = 120 * 24 * time.Hour
	janitorInterval = 24 * time.Hour
	shutdownGrace   = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		logr.Sugar().Fatalw("failed to open postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	if err := repository.EnsureSchema(ctx, db); err != nil {
		logr.Sugar().Fatalw("failed to ensure schema", "error", err)
	}

	// Cold cache tier: Redis when configured, the cache directory otherwise.
	var disk blobstore.Store
	var fsStore *blobstore.Filesystem
	if cfg.Redis.Addr != "" {
		client, err := blobstore.DialRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logr.Sugar().Fatalw("failed to dial redis", "error", err)
		}
		defer client.Close() //nolint:errcheck
		disk = blobstore.NewRedis(client, 0)
	} else {
		fsStore, err = blobstore.NewFilesystem(cfg.ScheduleCache.Dir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init cache dir", "error", err)
		}
		disk = fsStore
	}

	metrics := service.NewMetricsService()

	scheduleMem := memcache.New[schedcache.Key, models.Schedule](
		cfg.ScheduleCache.Capacity,
		memcache.WithMaxAgeCreation(cfg.ScheduleCache.Lifetime),
		memcache.WithMaxHits(cfg.ScheduleCache.MaxHits),
	)
	mediator := schedcache.NewMediator(scheduleMem, disk, logr)

	cal := calendar.NewEngine(cfg.ShiftConfigPath, logr)

	upstreamClient := upstream.NewClient(cfg.AppScheduleBaseURL, logr)
	upstreamClient.Observe = metrics.RecordUpstreamRequest

	cooldown := service.NewCooldown(cfg.CooldownDuration)
	resolver := service.NewIdResolver(upstreamClient, cfg.IDCache.Capacity, cfg.IDCache.Lifetime, cfg.IDCache.MaxHits, logr)
	schedules := service.NewScheduleService(mediator, resolver, upstreamClient, cal, cooldown, metrics, logr)
	search := service.NewSearchService(upstreamClient, repository.NewSearchRepository(db), cfg.SearchCache.Capacity, cfg.SearchCache.Lifetime, logr)

	dialogue := bot.NewDialogue(schedules, search, repository.NewPeerRepository(db), logr)

	tgClient := telegram.NewClient(cfg.Telegram.AccessToken, logr)
	vkClient := vk.NewClient(cfg.VK.AccessToken, logr)

	if err := tgClient.SetWebhook(ctx, cfg.Telegram.WebhookURL, cfg.Telegram.Secret); err != nil {
		logr.Sugar().Fatalw("failed to register telegram webhook", "error", err)
	}

	if fsStore != nil {
		go runJanitor(ctx, fsStore, logr)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestid.New())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.AppVersion())

	metricsHandler := handler.NewMetricsHandler(metrics)
	scheduleHandler := handler.NewScheduleHandler(schedules, resolver)
	searchHandler := handler.NewSearchHandler(search)
	telegramHandler := handler.NewTelegramHandler(dialogue, tgClient, metrics, cfg.Telegram.Secret, logr)
	vkHandler := handler.NewVKHandler(dialogue, vkClient, metrics, cfg.VK, logr)

	r.GET("/v1/health", metricsHandler.Alive)
	r.GET("/v1/search", searchHandler.Search)
	r.GET("/v1/:type/:name/id", scheduleHandler.GetID)
	r.GET("/v1/:type/:name/schedule/:offset", scheduleHandler.GetSchedule)
	r.POST("/v1/telegram_webhook_"+cfg.Telegram.Secret, telegramHandler.Webhook)
	r.POST("/v1/vk_callback", vkHandler.Callback)
	r.GET("/metrics", metricsHandler.Prometheus)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		logr.Sugar().Errorw("shutdown error", "error", err)
	}
}

// runJanitor prunes cache files that no reader has touched for a whole
// semester. Only the filesystem tier needs it; Redis blobs are bounded by
// the instance's own eviction policy.
func runJanitor(ctx context.Context, store *blobstore.Filesystem, logr *zap.Logger) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.CleanupOlderThan(cacheFileMaxAge)
			if err != nil {
				logr.Warn("cache cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				logr.Info("cache cleanup", zap.Int("removed", len(removed)))
			}
		}
	}
}
