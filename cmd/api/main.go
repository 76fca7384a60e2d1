package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-finder/internal/api"
	"recipe-finder/internal/core/diet"
	"recipe-finder/internal/core/diet/wikidata"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/infrastructure/store"
	"recipe-finder/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogDir); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("wikidata_api", cfg.Wikidata.APIURL),
		zap.String("export_dir", cfg.Classification.OutputDir),
	)

	// 初始化資料來源
	source, closeStore, err := store.New(cfg)
	if err != nil {
		common.LogFatal("Failed to initialize record source", zap.Error(err))
	}
	defer func() {
		if err := closeStore(); err != nil {
			common.LogWarn("Failed to close record source", zap.Error(err))
		}
	}()

	// 每次分類執行使用獨立的知識庫用戶端
	pipeline := diet.NewPipeline(source, func() diet.KnowledgeBase {
		return wikidata.NewClient(cfg.Wikidata)
	}, cfg.Classification)

	if err := os.MkdirAll(cfg.Classification.OutputDir, 0o755); err != nil {
		common.LogFatal("Failed to create export directory", zap.Error(err))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	jobs := diet.NewJobManager(pipeline, cfg.Classification.OutputDir, cfg.Classification.QueueSize)
	jobs.Start(ctx)

	// 設置路由
	router := api.SetupRouter(cfg, api.Services{
		Source:   source,
		Pipeline: pipeline,
		Jobs:     jobs,
	})

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("Failed to start server",
				zap.Error(err),
			)
			os.Exit(1)
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown",
			zap.Error(err),
		)
	}

	// 停止匯出工作，進行中的分類會被取消
	stop()
	jobs.Close()

	common.LogInfo("Server exited")
}
