// Package logger configures the process-wide zap logger.
package logger

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the level, encoding and sinks of the logger.
type Options struct {
	// Level is one of debug, info, warn, error.
	Level string
	// JSON switches the stderr encoder to JSON.
	JSON bool
	// File, when set, receives a copy of every entry at or above Level.
	File string
	// Output overrides stderr.
	Output io.Writer
}

// LevelFromFlags maps the global CLI flags onto a level name.
func LevelFromFlags(quiet, verbose bool, configured string) string {
	switch {
	case quiet:
		return "error"
	case verbose:
		return "debug"
	case configured != "":
		return configured
	default:
		return "info"
	}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "T",
		LevelKey:         "L",
		NameKey:          "N",
		CallerKey:        "",
		FunctionKey:      zapcore.OmitKey,
		MessageKey:       "M",
		StacktraceKey:    "S",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeDuration:   zapcore.SecondsDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		ConsoleSeparator: "  ",
	}
}

// New builds a logger from opts without installing it.
// The returned cleanup closes the log file, if any.
func New(opts Options) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	encCfg := encoderConfig()
	var enc zapcore.Encoder
	if opts.JSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(out), level)}
	cleanup := func() {}

	if opts.File != "" {
		//nolint:gosec // G304: log path comes from user config
		f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(f), level))
		cleanup = func() { _ = f.Close() }
	}

	return zap.New(zapcore.NewTee(cores...)), cleanup, nil
}

// Init builds a logger from opts and installs it as the zap global, so that
// zap.L() and zap.S() use it. It returns a function that flushes and closes it.
func Init(opts Options) (func(), error) {
	l, cleanup, err := New(opts)
	if err != nil {
		return nil, err
	}
	restore := zap.ReplaceGlobals(l)
	return func() {
		_ = l.Sync()
		cleanup()
		restore()
	}, nil
}
