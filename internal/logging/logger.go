package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/wire"
	"github.com/trebuchet-org/nft-deployer/internal/domain/config"
)

// LogLevelEnv overrides the log level, e.g. NFTDEPLOY_LOG_LEVEL=debug
const LogLevelEnv = "NFTDEPLOY_LOG_LEVEL"

var LoggingSet = wire.NewSet(
	NewLogger,
)

// NewLogger creates a stderr logger based on runtime configuration
func NewLogger(cfg *config.RuntimeConfig) *slog.Logger {
	return NewLoggerTo(os.Stderr, cfg)
}

// NewLoggerTo creates a logger writing to w
func NewLoggerTo(w io.Writer, cfg *config.RuntimeConfig) *slog.Logger {
	level := ParseLevel(os.Getenv(LogLevelEnv), slog.LevelWarn)
	if cfg != nil && cfg.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove time for cleaner output
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a level name to a slog level, keeping fallback for unknown values
func ParseLevel(val string, fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}
