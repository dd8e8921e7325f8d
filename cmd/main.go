package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"towtruck/config"
	"towtruck/pkg/api"
	"towtruck/pkg/filestore"
	"towtruck/pkg/logger"
	"towtruck/pkg/notify"
	"towtruck/service"
	"towtruck/storage"
	"towtruck/storage/memory"
	"towtruck/storage/postgres"
)

func main() {
	// 1. Config
	cfg := config.Load()

	// 2. Logger
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	// 3. Storage
	stg, err := openStorage(cfg, log)
	if err != nil {
		log.Error("failed to open storage", logger.Error(err))
		os.Exit(1)
	}
	defer stg.Close()

	// 4. Uploads and notifications
	disk, err := filestore.NewDisk(cfg.UploadDir, strings.TrimRight(cfg.AppURL, "/")+"/storage")
	if err != nil {
		log.Error("failed to prepare upload directory", logger.Error(err))
		os.Exit(1)
	}
	notifier, err := notify.New(cfg.TelegramBotToken, cfg.AdminID, log)
	if err != nil {
		log.Error("failed to initialize telegram notifier", logger.Error(err))
		os.Exit(1)
	}

	// 5. Services and HTTP
	svc := service.New(stg, disk, notifier, log, service.Options{
		AvatarMaxBytes: int64(cfg.AvatarMaxKB) * 1024,
	})
	handler := api.NewRouter(svc, stg.Session(), log, api.Options{
		ServiceName:      cfg.ServiceName,
		AppURL:           strings.TrimRight(cfg.AppURL, "/"),
		AppKey:           cfg.AppKey,
		SessionLifetime:  time.Duration(cfg.SessionLifetime) * time.Minute,
		RememberLifetime: time.Duration(cfg.RememberLifetime) * 24 * time.Hour,
		SecureCookies:    strings.HasPrefix(cfg.AppURL, "https://"),
		UploadDir:        disk.Root(),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go purgeSessions(ctx, stg.Session(), log)

	go func() {
		log.Info("HTTP server is starting", logger.Int("port", cfg.AppPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server stopped", logger.Error(err))
			os.Exit(1)
		}
	}()

	// 6. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	log.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", logger.Error(err))
	}
}

func openStorage(cfg config.Config, log logger.ILogger) (storage.IStorage, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		log.Warning("using in-memory storage, data is lost on restart")
		return memory.New(), nil
	case config.StorageDriverPostgres:
		return postgres.New(context.Background(), cfg, log)
	}
	return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
}

func purgeSessions(ctx context.Context, sessions storage.ISessionStorage, log logger.ILogger) {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.DeleteExpired(ctx)
			if err != nil {
				log.Error("failed to purge sessions", logger.Error(err))
				continue
			}
			if n > 0 {
				log.Debug("expired sessions purged", logger.Int64("count", n))
			}
		}
	}
}
