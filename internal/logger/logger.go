package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/jwebster45206/vehicle-vendor/internal/config"
	"github.com/jwebster45206/vehicle-vendor/pkg/host"
)

// Setup configures the global slog logger based on environment
func Setup(cfg *config.Config) *slog.Logger {
	return SetupTo(cfg, os.Stdout)
}

// SetupTo is Setup writing to w instead of stdout
func SetupTo(cfg *config.Config, w io.Writer) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	if cfg.Environment == "production" {
		// JSON format for production
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// OrDiscard returns logger, or a logger that drops everything when it is nil
func OrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}

// WithPlayer adds the acting player to logger context
func WithPlayer(logger *slog.Logger, id host.PlayerID) *slog.Logger {
	return logger.With("player", string(id))
}

// WithPurchase adds a purchase ID to logger context
func WithPurchase(logger *slog.Logger, purchaseID string) *slog.Logger {
	return logger.With("purchase_id", purchaseID)
}

// WithError adds error to logger context
func WithError(logger *slog.Logger, err error) *slog.Logger {
	return logger.With("error", err.Error())
}
