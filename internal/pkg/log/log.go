// Package log provides structured, leveled logging backed by logrus.
// Until Start is called every log call is discarded.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
)

var (
	loggerMu sync.RWMutex
	logger   *logrus.Logger
	rotator  *rotatelogs.RotateLogs
)

// Start initializes the logging package with the given configuration.
// If no configuration is provided, it uses the default configuration.
func Start(cfgs ...*Config) error {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if logger != nil {
		return ErrLoggerAlreadyInitialized
	}

	cfg := defaultConfig()
	if len(cfgs) > 0 && cfgs[0] != nil {
		cfg = cfgs[0]
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidLevel, cfg.Level)
	}

	l := logrus.New()
	l.SetLevel(level)

	if cfg.JSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var writers []io.Writer
	if !cfg.NoStdout {
		writers = append(writers, os.Stdout)
	}

	if cfg.FileOutputDir != "" {
		if err := os.MkdirAll(cfg.FileOutputDir, 0o755); err != nil {
			return err
		}

		prefix := cfg.FilePrefix
		if prefix == "" {
			prefix = defaultConfig().FilePrefix
		}

		rotation := cfg.FileRotation
		if rotation <= 0 {
			rotation = defaultConfig().FileRotation
		}

		r, err := rotatelogs.New(
			fmt.Sprintf("%s_%s.log", filepath.Join(cfg.FileOutputDir, prefix), "%Y%m%d%H%M%S"),
			rotatelogs.WithRotationTime(rotation),
		)
		if err != nil {
			return err
		}

		rotator = r
		writers = append(writers, r)
	}

	switch len(writers) {
	case 0:
		l.SetOutput(io.Discard)
	case 1:
		l.SetOutput(writers[0])
	default:
		l.SetOutput(io.MultiWriter(writers...))
	}

	logger = l
	return nil
}

// Stop flushes and closes the log outputs. Start can be called again afterwards.
func Stop() {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if rotator != nil {
		rotator.Close()
		rotator = nil
	}

	logger = nil
}

// Public logging methods
func Debug(msg string, args ...any) {
	logWithLevel(logrus.DebugLevel, nil, msg, args...)
}

func Info(msg string, args ...any) {
	logWithLevel(logrus.InfoLevel, nil, msg, args...)
}

func Warn(msg string, args ...any) {
	logWithLevel(logrus.WarnLevel, nil, msg, args...)
}

func Error(msg string, args ...any) {
	logWithLevel(logrus.ErrorLevel, nil, msg, args...)
}

// logWithLevel merges the predefined fields with the key/value args and emits the entry
func logWithLevel(level logrus.Level, fields Fields, msg string, args ...any) {
	loggerMu.RLock()
	defer loggerMu.RUnlock()

	if logger == nil || !logger.IsLevelEnabled(level) {
		return
	}

	entryFields := make(logrus.Fields, len(fields)+len(args)/2)
	for k, v := range fields {
		entryFields[k] = v
	}

	for k, v := range argsToFields(args) {
		entryFields[k] = v
	}

	logger.WithFields(entryFields).Log(level, msg)
}

// argsToFields turns alternating key/value args into logrus fields.
// A trailing value without key is stored under "!BADKEY".
func argsToFields(args []any) logrus.Fields {
	fields := make(logrus.Fields, len(args)/2)

	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			fields["!BADKEY"] = args[i]
			break
		}

		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}

		fields[key] = args[i+1]
	}

	return fields
}
