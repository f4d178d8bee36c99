package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/adapter/outbound/file"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/config"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/service"
)

// newLogger builds the process logger at the configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// buildEngine loads the corpus and freezes the engine per configuration.
// Every load-time failure surfaces here, before anything serves.
func buildEngine(cfg *config.Config) (*service.Engine, error) {
	builder, err := service.NewEngineBuilder()
	if err != nil {
		return nil, err
	}
	builder.
		MaxVariableRefDepth(cfg.Engine.MaxVariableRefDepth).
		MaxPolicyRefDepth(cfg.Engine.MaxPolicyRefDepth).
		IgnoreOldVersions(cfg.Engine.IgnoreOldPolicyVersions).
		StrictIssuerMatch(cfg.Engine.StrictAttributeIssuerMatch).
		RootID(cfg.Policy.RootID)

	docs, err := file.LoadCorpus(cfg.Policy.Locations)
	if err != nil {
		return nil, fmt.Errorf("loading policy sources: %w", err)
	}
	return builder.Build(docs)
}
