// Package logger provides the process-wide structured logger for waitline.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the global logger instance. Safe to use before Initialize
	// is called; it starts as a no-op sink.
	Logger *zap.SugaredLogger
	// JSONOutput records which encoding Initialize last selected.
	JSONOutput bool
)

func init() {
	Logger = zap.NewNop().Sugar()
}

// Initialize sets up the global logger. jsonOutput selects structured JSON
// suitable for log aggregation; otherwise a compact console encoding is used,
// which is what operators want when running a node or the dashboard in a
// terminal.
func Initialize(jsonOutput bool) error {
	JSONOutput = jsonOutput

	var zapLogger *zap.Logger
	var err error

	if jsonOutput {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		zapLogger, err = config.Build()
		if err != nil {
			return err
		}
	} else {
		encoderCfg := zap.NewDevelopmentEncoderConfig()
		encoderCfg.TimeKey = "t"
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapLogger = zap.New(
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(encoderCfg),
				zapcore.AddSync(os.Stdout),
				zap.InfoLevel,
			),
		)
	}

	Logger = zapLogger.Sugar()
	return nil
}

// Cleanup flushes any buffered log entries. Errors from Sync are often
// ignorable for stdout/stderr (EINVAL on some platforms), but are returned
// so callers can decide.
func Cleanup() error {
	if Logger != nil {
		return Logger.Sync()
	}
	return nil
}

// With returns a child logger with the given structured fields attached,
// useful for tagging every log line emitted by a node with its node id.
func With(keysAndValues ...interface{}) *zap.SugaredLogger {
	return Logger.With(keysAndValues...)
}

func Info(args ...interface{})                       { Logger.Info(args...) }
func Infof(format string, args ...interface{})       { Logger.Infof(format, args...) }
func Infow(msg string, kv ...interface{})             { Logger.Infow(msg, kv...) }
func Error(args ...interface{})                       { Logger.Error(args...) }
func Errorf(format string, args ...interface{})       { Logger.Errorf(format, args...) }
func Errorw(msg string, kv ...interface{})            { Logger.Errorw(msg, kv...) }
func Warn(args ...interface{})                        { Logger.Warn(args...) }
func Warnf(format string, args ...interface{})        { Logger.Warnf(format, args...) }
func Warnw(msg string, kv ...interface{})             { Logger.Warnw(msg, kv...) }
func Debug(args ...interface{})                       { Logger.Debug(args...) }
func Debugf(format string, args ...interface{})       { Logger.Debugf(format, args...) }
func Debugw(msg string, kv ...interface{})            { Logger.Debugw(msg, kv...) }
