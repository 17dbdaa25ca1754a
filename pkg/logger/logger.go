package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It discards everything until InitLogger
// runs, so packages and their tests can log unconditionally.
var Log = zap.NewNop().Sugar()

func InitLogger(levelStr string) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	if levelStr == "" {
		levelStr = "info"
	}
	level, err := zapcore.ParseLevel(levelStr)
	if err != nil {
		level = zap.InfoLevel
	}

	// Console output only; the mock runs inside test harnesses and
	// containers that collect stdout.
	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)
	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level)

	Log = zap.New(core, zap.AddCaller()).Sugar()
	Log.Infof("Logger initialized at level: %s", level.String())
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Log.Sync()
}
