package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environment 決定 logger 的輸出格式
type Environment string

const (
	// JSON 輸出，適合收集到 log 平台
	EnvironmentProduction Environment = "production"
	// Console 輸出，方便本機閱讀
	EnvironmentDevelopment Environment = "development"
)

// Config 定義 logger 設定
type Config struct {
	Environment Environment `yaml:"environment"`
	Level       string      `yaml:"level"` // "debug", "info", "warn", "error"
}

// New 依設定建立 zap logger
//
// 參數:
//
//	cfg: Config - logger 設定，空值使用 production + info
//
// 回傳值:
//
//	*zap.Logger: logger 實例
//	error: 設定錯誤
func New(cfg Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	switch cfg.Environment {
	case EnvironmentProduction, "":
		zapCfg = zap.NewProductionConfig()
	case EnvironmentDevelopment:
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("invalid log environment %q", cfg.Environment)
	}

	if strings.TrimSpace(cfg.Level) != "" {
		var level zapcore.Level
		if err := level.Set(cfg.Level); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}
	zapCfg.DisableStacktrace = true

	l, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l, nil
}

// OrNop nil logger 轉成 no-op logger
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
