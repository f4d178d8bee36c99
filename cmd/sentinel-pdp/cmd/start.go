package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	httpadapter "github.com/Sentinel-Gate/Sentinelpdp/internal/adapter/inbound/http"
	auditfile "github.com/Sentinel-Gate/Sentinelpdp/internal/adapter/outbound/audit"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/adapter/outbound/memory"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/adapter/outbound/sqlite"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/config"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/audit"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/auth"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/service"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the HTTP decision API",
	Long: `Load the policy corpus, freeze the engine, and serve the decision
API until interrupted. All policy problems are fatal at startup; a serving
process answers every request, if only with Indeterminate.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return runServer(cfg)
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runServer(cfg *config.Config) error {
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	logger.Info("policy corpus loaded", slog.Int("locations", len(cfg.Policy.Locations)))

	if cfg.Tracing.Enabled {
		exporter, err := stdouttrace.New()
		if err != nil {
			return fmt.Errorf("creating trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
		otel.SetTracerProvider(tp)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(shutdownCtx)
		}()
	}

	auditStore, err := buildAuditStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = auditStore.Close() }()

	var cache *service.ResultCache
	if cfg.Cache.Enabled {
		ttl, _ := time.ParseDuration(cfg.Cache.TTL)
		cache = service.NewResultCache(cfg.Cache.Size, ttl)
	}

	registry := prometheus.NewRegistry()
	metrics := httpadapter.NewMetrics(registry)

	decisions := service.NewDecisionService(engine, service.DecisionServiceOptions{
		Cache:    cache,
		Audit:    auditStore,
		Observer: metrics,
		Tracer:   otel.Tracer("sentinel-pdp"),
		Logger:   logger,
	})

	handler := httpadapter.NewHandler(decisions, buildAPIKeyService(cfg), metrics, logger)
	server := &nethttp.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           handler.Routes(registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("decision API listening", slog.String("addr", cfg.Server.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", slog.String("signal", sig.String()))
	}

	timeout, _ := time.ParseDuration(cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return auditStore.Flush(shutdownCtx)
}

// buildAuditStore wires the configured audit sink.
func buildAuditStore(cfg *config.Config, logger *slog.Logger) (audit.Store, error) {
	switch cfg.Audit.Output {
	case "file":
		return auditfile.NewFileStore(auditfile.FileStoreConfig{
			Dir:           cfg.Audit.Dir,
			RetentionDays: cfg.Audit.RetentionDays,
			MaxFileSizeMB: cfg.Audit.MaxFileSizeMB,
		}, logger)
	case "sqlite":
		return sqlite.Open(cfg.Audit.Path)
	default:
		return audit.NopStore{}, nil
	}
}

// buildAPIKeyService seeds the credential store from configuration.
// Returns nil when no keys are configured, disabling authentication.
func buildAPIKeyService(cfg *config.Config) *auth.APIKeyService {
	if len(cfg.Auth.APIKeys) == 0 {
		return nil
	}
	store := memory.NewAuthStore()
	for _, id := range cfg.Auth.Identities {
		store.SeedIdentity(&auth.Identity{ID: id.ID, Name: id.Name})
	}
	for _, key := range cfg.Auth.APIKeys {
		store.SeedAPIKey(&auth.APIKey{Key: key.KeyHash, IdentityID: key.IdentityID})
	}
	return auth.NewAPIKeyService(store)
}
