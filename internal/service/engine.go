// Package service contains application services: the engine builder that
// freezes registries into an immutable decision engine, and the decision
// service that fronts it with caching, auditing, and tracing.
package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/combining"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/expr"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/function"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/pdp"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/policy"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/value"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/provider"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/request"
)

// EngineBuilder assembles the registries and limits of a decision engine.
// Custom datatypes, functions, and combining algorithms may be added until
// Build, which freezes everything into an immutable, share-everywhere
// Engine.
type EngineBuilder struct {
	datatypes  *value.Registry
	functions  *function.Registry
	algorithms *combining.Registry

	maxVariableRefDepth int
	maxPolicyRefDepth   int
	ignoreOldVersions   bool
	strictIssuerMatch   bool
	rootID              string
	clock               func() time.Time
}

// NewEngineBuilder returns a builder preloaded with the standard XACML 3.0
// datatypes, functions, and combining algorithms. Depth bounds default to
// disabled.
func NewEngineBuilder() (*EngineBuilder, error) {
	datatypes := value.NewRegistry()
	if err := datatypes.RegisterStandard(); err != nil {
		return nil, fmt.Errorf("registering standard datatypes: %w", err)
	}
	functions := function.NewRegistry()
	if err := functions.RegisterStandard(); err != nil {
		return nil, fmt.Errorf("registering standard functions: %w", err)
	}
	algorithms := combining.NewRegistry()
	if err := algorithms.RegisterStandard(); err != nil {
		return nil, fmt.Errorf("registering standard combining algorithms: %w", err)
	}
	return &EngineBuilder{
		datatypes:           datatypes,
		functions:           functions,
		algorithms:          algorithms,
		maxVariableRefDepth: -1,
		maxPolicyRefDepth:   -1,
		clock:               time.Now,
	}, nil
}

// RegisterDatatype adds a custom datatype before the freeze.
func (b *EngineBuilder) RegisterDatatype(dt value.Datatype) error {
	return b.datatypes.Register(dt)
}

// RegisterFunction adds a custom function before the freeze.
func (b *EngineBuilder) RegisterFunction(f expr.Function) error {
	return b.functions.Register(f)
}

// RegisterRuleAlgorithm adds a custom rule-combining algorithm.
func (b *EngineBuilder) RegisterRuleAlgorithm(a combining.Algorithm) error {
	return b.algorithms.RegisterRule(a)
}

// RegisterPolicyAlgorithm adds a custom policy-combining algorithm.
func (b *EngineBuilder) RegisterPolicyAlgorithm(a combining.Algorithm) error {
	return b.algorithms.RegisterPolicy(a)
}

// MaxVariableRefDepth bounds nested variable references; negative disables.
func (b *EngineBuilder) MaxVariableRefDepth(n int) *EngineBuilder {
	b.maxVariableRefDepth = n
	return b
}

// MaxPolicyRefDepth bounds policy-set reference chains; negative disables.
func (b *EngineBuilder) MaxPolicyRefDepth(n int) *EngineBuilder {
	b.maxPolicyRefDepth = n
	return b
}

// IgnoreOldVersions keeps only the newest version per policy id.
func (b *EngineBuilder) IgnoreOldVersions(on bool) *EngineBuilder {
	b.ignoreOldVersions = on
	return b
}

// StrictIssuerMatch stops issuer-less request attributes from satisfying
// designators that require an issuer.
func (b *EngineBuilder) StrictIssuerMatch(on bool) *EngineBuilder {
	b.strictIssuerMatch = on
	return b
}

// RootID selects the root policy element when the corpus is ambiguous.
func (b *EngineBuilder) RootID(id string) *EngineBuilder {
	b.rootID = id
	return b
}

// Clock overrides the time source used for synthesized environment
// attributes. Tests use this for reproducible decisions.
func (b *EngineBuilder) Clock(clock func() time.Time) *EngineBuilder {
	b.clock = clock
	return b
}

// Build freezes the registries, loads the corpus, and returns the engine.
// Every load failure is fatal here; nothing is deferred to evaluation.
func (b *EngineBuilder) Build(docs []provider.Document) (*Engine, error) {
	b.datatypes.Freeze()
	b.functions.Freeze()
	b.algorithms.Freeze()

	env := &policy.CompileEnv{
		Datatypes:           b.datatypes,
		Functions:           b.functions,
		Algorithms:          b.algorithms,
		MaxVariableRefDepth: b.maxVariableRefDepth,
	}
	prov, err := provider.New(docs, env, provider.Config{
		MaxPolicyRefDepth: b.maxPolicyRefDepth,
		IgnoreOldVersions: b.ignoreOldVersions,
		RootID:            b.rootID,
	})
	if err != nil {
		return nil, fmt.Errorf("loading policy corpus: %w", err)
	}
	return &Engine{
		datatypes:         b.datatypes,
		provider:          prov,
		strictIssuerMatch: b.strictIssuerMatch,
		clock:             b.clock,
	}, nil
}

// Engine is the frozen decision engine: the compiled policy graph plus the
// registries it was compiled against. Safe for concurrent use; each
// decision gets its own evaluation context.
type Engine struct {
	datatypes         *value.Registry
	provider          *provider.Provider
	strictIssuerMatch bool
	clock             func() time.Time
}

// Provider exposes the policy provider for lookups by reference.
func (e *Engine) Provider() *provider.Provider { return e.provider }

// Decide evaluates one request against the root policy element and renders
// the response. It never returns an error: every evaluation failure is an
// Indeterminate result with an XACML status.
func (e *Engine) Decide(req *request.Request) *pdp.Response {
	ctx := request.NewContext(req, e.datatypes, e.strictIssuerMatch, e.clock())
	decision := e.provider.Root().Evaluate(ctx)

	result := pdp.Result{
		ID:          uuid.NewString(),
		Decision:    decision.Decision,
		Obligations: decision.Obligations,
		Advice:      decision.Advice,
	}
	if decision.Decision.IsIndeterminate() {
		result.Status = decision.Status
	}
	for _, inc := range ctx.IncludedAttributes() {
		v, err := e.datatypes.Parse(inc.DataType, inc.Value)
		if err != nil {
			// Unparseable included attributes are echoed as strings.
			v = value.String(inc.Value)
		}
		result.Attributes = append(result.Attributes, pdp.AttributeAssignment{
			AttributeID: inc.AttributeID,
			Category:    inc.Category,
			Issuer:      inc.Issuer,
			Value:       v,
		})
	}
	return &pdp.Response{Results: []pdp.Result{result}}
}
