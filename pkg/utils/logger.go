package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// The console owns the terminal, so logs never go to stdout while it runs
var logger = zap.NewNop()

// DefaultLogFile is the per-day debug log used when no file is configured
func DefaultLogFile(now time.Time) string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("atelier_%s.log", now.Format("2006-01-02")))
}

// InitLogger initializes the logging system. Without verbose every call is a no-op.
func InitLogger(verbose bool, logFile string) error {
	if !verbose {
		logger = zap.NewNop()
		return nil
	}
	if logFile == "" {
		logFile = DefaultLogFile(time.Now())
	}

	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	config.OutputPaths = []string{logFile}
	config.ErrorOutputPaths = []string{logFile}

	l, err := config.Build()
	if err != nil {
		return fmt.Errorf("creating log file %s: %w", logFile, err)
	}
	logger = l
	logger.Debug("Verbose logging enabled", zap.String("file", logFile))
	return nil
}

// InitServerLogger logs to stdout, JSON unless development is set
func InitServerLogger(development bool) error {
	var config zap.Config
	if development {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")

	l, err := config.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	logger = l
	return nil
}

// L returns the process logger
func L() *zap.Logger {
	return logger
}

// Log prints debug messages when verbose mode is enabled
func Log(text string, args ...interface{}) {
	logger.Sugar().Debugf(text, args...)
}

// CloseLogger flushes buffered entries
func CloseLogger() {
	_ = logger.Sync()
}
