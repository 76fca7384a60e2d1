package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger 全局日誌實例，未初始化前為 no-op
	Logger  = zap.NewNop()
	LogMode string

	// 定義日誌級別的顏色
	levelColors = map[zapcore.Level]string{
		zapcore.DebugLevel: "\033[36m", // 青色
		zapcore.InfoLevel:  "\033[32m", // 綠色
		zapcore.WarnLevel:  "\033[33m", // 黃色
		zapcore.ErrorLevel: "\033[31m", // 紅色
		zapcore.FatalLevel: "\033[35m", // 紫色
	}
	resetColor = "\033[0m"

	// concise 模式下仍輸出的訊息
	conciseMessages = map[string]bool{
		"請求完成":                    true,
		"啟動應用":                    true,
		"Server exited":           true,
		"Shutting down server...": true,
		MsgClassificationDone:     true,
		MsgExportJobDone:          true,
	}
)

// 執行完成訊息，concise 模式下保留
const (
	MsgClassificationDone = "飲食分類完成"
	MsgExportJobDone      = "匯出工作完成"
)

// 自定義編碼器配置
func getEncoderConfig(colored bool) zapcore.EncoderConfig {
	cfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	if colored {
		cfg.EncodeLevel = customLevelEncoder
	}
	return cfg
}

// 自定義時間格式
func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05.000"))
}

// 自定義級別編碼器（添加顏色）
func customLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	level := l.String()
	switch l {
	case zapcore.DebugLevel:
		level = "DBG"
	case zapcore.InfoLevel:
		level = "INF"
	case zapcore.WarnLevel:
		level = "WRN"
	case zapcore.ErrorLevel:
		level = "ERR"
	case zapcore.FatalLevel:
		level = "FAT"
	}
	enc.AppendString(levelColors[l] + level + resetColor)
}

// ParseLevel 解析日誌級別，未知值回退為 info
func ParseLevel(logLevel string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(logLevel)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// InitLogger 初始化日誌系統，logDir 為空時只輸出到 console
func InitLogger(logLevel, logDir string) error {
	level := ParseLevel(logLevel)
	LogMode = os.Getenv("LOG_MODE")

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(getEncoderConfig(true)),
		zapcore.AddSync(os.Stdout),
		level,
	)

	cores := []zapcore.Core{consoleCore}
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		logFile, err := os.OpenFile(filepath.Join(logDir, "app.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(getEncoderConfig(false)),
			zapcore.AddSync(logFile),
			level,
		))
	}

	Logger = zap.New(zapcore.NewTee(cores...),
		zap.AddCallerSkip(1),
		zap.Fields(zap.String("service", "recipe-finder")),
	)
	zap.ReplaceGlobals(Logger)

	return nil
}

// LogInfo 記錄信息日誌
func LogInfo(msg string, fields ...zap.Field) {
	if LogMode == "concise" && !conciseMessages[msg] {
		return
	}
	Logger.Info(msg, fields...)
}

// LogError 記錄錯誤日誌
func LogError(msg string, fields ...zap.Field) {
	Logger.Error(msg, fields...)
}

// LogWarn 記錄警告日誌
func LogWarn(msg string, fields ...zap.Field) {
	Logger.Warn(msg, fields...)
}

// LogDebug 記錄調試日誌
func LogDebug(msg string, fields ...zap.Field) {
	Logger.Debug(msg, fields...)
}

// LogFatal 記錄致命錯誤日誌
func LogFatal(msg string, fields ...zap.Field) {
	Logger.Fatal(msg, fields...)
}

// Sync 同步日誌緩衝
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// LogCacheHit 記錄快取命中
func LogCacheHit(cacheType, key string) {
	LogDebug("快取命中", zap.String("類型", cacheType), zap.String("鍵", key))
}

// LogCacheMiss 記錄快取未命中
func LogCacheMiss(cacheType, key string) {
	LogDebug("快取未命中", zap.String("類型", cacheType), zap.String("鍵", key))
}

// LogLookup 記錄外部知識庫調用
func LogLookup(op, subject string, duration time.Duration, err error) {
	if err != nil {
		LogWarn("知識庫查詢失敗",
			zap.String("op", op),
			zap.String("subject", subject),
			zap.Duration("耗時", duration),
			zap.Error(err),
		)
		return
	}
	LogDebug("知識庫查詢成功",
		zap.String("op", op),
		zap.String("subject", subject),
		zap.Duration("耗時", duration),
	)
}
