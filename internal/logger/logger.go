// Package logger 构建 fieldsynth 使用的 zap 日志
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvDebug 开启调试日志的环境变量
const EnvDebug = "FIELDSYNTH_DEBUG"

// Options 日志配置
type Options struct {
	Debug bool   // 输出调试日志
	File  string // 日志文件路径，为空时只输出到标准错误
}

// DebugFromEnv 环境变量 FIELDSYNTH_DEBUG 为 1/true/on 时返回 true
func DebugFromEnv() bool {
	v := os.Getenv(EnvDebug)
	return v == "1" || v == "true" || v == "on"
}

// New 创建日志记录器。
// 非调试模式只输出警告与错误，调试模式输出全部日志并带调用位置。
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      opts.Debug,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	if !opts.Debug {
		cfg.EncoderConfig.CallerKey = zapcore.OmitKey
	}
	if opts.File != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, opts.File)
	}
	return cfg.Build()
}

// Must 同 New，失败时退回到不输出任何内容的日志
func Must(opts Options) *zap.Logger {
	log, err := New(opts)
	if err != nil {
		return zap.NewNop()
	}
	return log
}
