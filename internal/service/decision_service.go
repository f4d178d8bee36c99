package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/audit"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/pdp"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/request"
)

// DecisionObserver receives decision outcomes for metrics. Implemented by
// the HTTP adapter's Prometheus metrics.
type DecisionObserver interface {
	ObserveDecision(decision string, cached bool, duration time.Duration)
}

// nopObserver is used when no metrics are wired.
type nopObserver struct{}

func (nopObserver) ObserveDecision(string, bool, time.Duration) {}

// DecisionServiceOptions configures optional collaborators.
type DecisionServiceOptions struct {
	// Cache enables decision caching when non-nil.
	Cache *ResultCache
	// Audit receives one record per decision; nil disables auditing.
	Audit audit.Store
	// Observer receives decision metrics; nil disables them.
	Observer DecisionObserver
	// Tracer traces evaluations; nil disables tracing.
	Tracer trace.Tracer
	// Logger logs decisions at debug level; nil uses the default logger.
	Logger *slog.Logger
}

// DecisionService fronts the engine with caching, audit fan-out, metrics,
// and tracing. It is the single entry point the transports call.
type DecisionService struct {
	engine   *Engine
	cache    *ResultCache
	audit    audit.Store
	observer DecisionObserver
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewDecisionService wires a decision service around a frozen engine.
func NewDecisionService(engine *Engine, opts DecisionServiceOptions) *DecisionService {
	s := &DecisionService{
		engine:   engine,
		cache:    opts.Cache,
		audit:    opts.Audit,
		observer: opts.Observer,
		tracer:   opts.Tracer,
		logger:   opts.Logger,
	}
	if s.audit == nil {
		s.audit = audit.NopStore{}
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	if s.tracer == nil {
		s.tracer = noop.NewTracerProvider().Tracer("sentinel-pdp")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Decide evaluates one request, consulting the decision cache first. The
// response is always well-formed; evaluation failures surface as
// Indeterminate results inside it.
func (s *DecisionService) Decide(ctx context.Context, req *request.Request) *pdp.Response {
	start := time.Now()
	key := RequestKey(req)

	ctx, span := s.tracer.Start(ctx, "pdp.decide")
	defer span.End()

	var (
		response *pdp.Response
		cached   bool
	)
	if s.cache != nil {
		response, cached = s.cache.Get(key)
	}
	if !cached {
		response = s.engine.Decide(req)
		if s.cache != nil {
			s.cache.Put(key, response)
		}
	}

	duration := time.Since(start)
	decision := response.Results[0].Decision
	span.SetAttributes(
		attribute.String("pdp.decision", decision.String()),
		attribute.Bool("pdp.cached", cached),
	)
	s.observer.ObserveDecision(decision.String(), cached, duration)
	s.logger.DebugContext(ctx, "decision evaluated",
		slog.String("decision", decision.String()),
		slog.Bool("cached", cached),
		slog.Duration("duration", duration),
	)
	s.record(ctx, key, response, duration, cached)
	return response
}

// record appends one audit record per result.
func (s *DecisionService) record(ctx context.Context, key uint64, response *pdp.Response, duration time.Duration, cached bool) {
	records := make([]audit.Record, 0, len(response.Results))
	for _, r := range response.Results {
		rec := audit.Record{
			ID:          uuid.NewString(),
			Timestamp:   time.Now().UTC(),
			RequestHash: fmt.Sprintf("%016x", key),
			Decision:    r.Decision.String(),
			Duration:    duration,
			Cached:      cached,
		}
		if r.Decision.IsIndeterminate() {
			rec.StatusCode = r.Status.Code()
			rec.StatusMessage = r.Status.Message
		}
		for _, o := range r.Obligations {
			rec.ObligationIDs = append(rec.ObligationIDs, o.ID)
		}
		for _, a := range r.Advice {
			rec.AdviceIDs = append(rec.AdviceIDs, a.ID)
		}
		records = append(records, rec)
	}
	if err := s.audit.Append(ctx, records...); err != nil {
		s.logger.WarnContext(ctx, "audit append failed", slog.String("error", err.Error()))
	}
}
