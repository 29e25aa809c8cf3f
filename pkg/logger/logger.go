package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 全局实例，Init 之前写日志走 Nop 不会崩
var log = zap.NewNop()

// Init 按配置构建全局日志实例
// format 取 json / console，output 取 stdout / stderr / file
func Init(level, format, output, filePath string) error {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}

	syncer, err := buildSyncer(output, filePath)
	if err != nil {
		return err
	}

	core := zapcore.NewCore(buildEncoder(format), syncer, zapLevel)
	log = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return nil
}

func buildEncoder(format string) zapcore.Encoder {
	if format == "json" {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

func buildSyncer(output, filePath string) (zapcore.WriteSyncer, error) {
	switch output {
	case "file":
		file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		return zapcore.AddSync(file), nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil
	default:
		return zapcore.AddSync(os.Stdout), nil
	}
}

// Sync 刷新缓冲，进程退出前调用
func Sync() {
	_ = log.Sync()
}

func Debug(msg string, fields ...zap.Field) {
	log.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	log.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	log.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	log.Error(msg, fields...)
}

// Fatal 记录后以非零码退出
func Fatal(msg string, fields ...zap.Field) {
	log.Fatal(msg, fields...)
}
