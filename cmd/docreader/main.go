package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/docreader/internal/config"
	"github.com/xxxsen/docreader/internal/handler"
	"github.com/xxxsen/docreader/internal/job"
	"github.com/xxxsen/docreader/internal/middleware"
	"github.com/xxxsen/docreader/internal/ocr"
	"github.com/xxxsen/docreader/internal/parser"
	"github.com/xxxsen/docreader/internal/schedule"
	"github.com/xxxsen/docreader/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "docreader",
		Short: "document parsing server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run docreader server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
			return runServer(cfg)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("temp_dir", cfg.TempDir),
		zap.String("ocr", cfg.OCR.Type),
	)

	engine, err := ocr.New(cfg.OCR)
	if err != nil {
		return fmt.Errorf("init ocr engine: %w", err)
	}
	p, err := parser.New(engine, cfg.TempDir)
	if err != nil {
		return fmt.Errorf("init parser: %w", err)
	}
	readerService := service.NewReaderService(p, int64(cfg.MaxBodySizeMB)<<20)

	deps := handler.RouterDeps{
		Reader:          handler.NewReadHandler(readerService),
		RateLimitWindow: time.Duration(cfg.RateLimitMillis) * time.Millisecond,
	}

	web, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	cleanup := job.NewTempCleanupJob(cfg.TempDir, time.Duration(cfg.CleanupMaxAgeH)*time.Hour)
	if err := scheduler.AddJob(cleanup, cfg.CleanupCron); err != nil {
		return fmt.Errorf("schedule cleanup job: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := web.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
