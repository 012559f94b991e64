package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TransportStdio is the MCP transport that owns stdout.
const TransportStdio = "stdio"

// Options tune NewLogger beyond the environment defaults.
type Options struct {
	// Level overrides the environment level: debug, info, warn, error.
	Level string
	// Transport is stamped on every entry as "transport".
	Transport string
}

// NewLogger creates a zap logger for the given environment.
// prod uses JSON output, local/dev use console output. Everything is written
// to stderr since stdout carries the stdio protocol. Under the stdio
// transport the console encoder drops colors: MCP clients capture stderr
// into their own log files, where escape codes are noise.
func NewLogger(env string, opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	switch env {
	case "prod":
		cfg = zap.NewProductionConfig()
	case "local", "dev", "docker":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if opts.Transport == TransportStdio {
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
	default:
		return nil, fmt.Errorf("unknown environment %q for logger", env)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	if opts.Level != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	}
	if opts.Transport != "" {
		cfg.InitialFields = map[string]any{"transport": opts.Transport}
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}
