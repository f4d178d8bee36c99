package policy

import (
	"fmt"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/combining"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/expr"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/pdp"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/value"
)

// FunctionProvider resolves function identifiers at compile time.
type FunctionProvider interface {
	Get(id string) (expr.Function, bool)
}

// AlgorithmProvider resolves combining-algorithm identifiers at compile
// time.
type AlgorithmProvider interface {
	RuleAlgorithm(id string) (combining.Algorithm, bool)
	PolicyAlgorithm(id string) (combining.Algorithm, bool)
}

// RefResolver resolves policy references during policy-set compilation. The
// chain is the active sequence of policy-set ids whose references are being
// followed; implementations reject cycles and depth overflow.
type RefResolver interface {
	ResolvePolicy(ref *RefDoc, chain []string) (*Policy, error)
	ResolvePolicySet(ref *RefDoc, chain []string) (*PolicySet, error)
}

// CompileEnv carries the frozen registries and limits the compiler works
// against.
type CompileEnv struct {
	Datatypes *value.Registry
	Functions FunctionProvider
	Algorithms AlgorithmProvider
	Resolver   RefResolver
	// MaxVariableRefDepth bounds nested variable references; negative
	// disables the bound.
	MaxVariableRefDepth int
}

// varScope resolves variable references within one policy, building each
// definition at most once and rejecting cycles and excessive nesting.
type varScope struct {
	env      *CompileEnv
	docs     map[string]*VariableDoc
	built    map[string]*expr.Variable
	visiting map[string]bool
	depth    int
}

func newVarScope(env *CompileEnv, docs []VariableDoc) (*varScope, error) {
	s := &varScope{
		env:      env,
		docs:     make(map[string]*VariableDoc, len(docs)),
		built:    make(map[string]*expr.Variable),
		visiting: make(map[string]bool),
	}
	for i := range docs {
		d := &docs[i]
		if _, ok := s.docs[d.VariableID]; ok {
			return nil, fmt.Errorf("duplicate variable definition %q", d.VariableID)
		}
		s.docs[d.VariableID] = d
	}
	return s, nil
}

// resolve returns the compiled variable, compiling the definition on first
// use. Definitions may reference later definitions; cycles are errors.
func (s *varScope) resolve(id string) (*expr.Variable, error) {
	if v, ok := s.built[id]; ok {
		return v, nil
	}
	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("undefined variable %q", id)
	}
	if s.visiting[id] {
		return nil, fmt.Errorf("variable reference cycle through %q", id)
	}
	if s.env.MaxVariableRefDepth >= 0 && s.depth >= s.env.MaxVariableRefDepth {
		return nil, fmt.Errorf("variable reference depth exceeds %d at %q", s.env.MaxVariableRefDepth, id)
	}
	s.visiting[id] = true
	s.depth++
	e, err := compileExpression(&doc.Expression, s.env, s)
	s.depth--
	delete(s.visiting, id)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", id, err)
	}
	v := expr.NewVariable(id, e)
	s.built[id] = v
	return v, nil
}

// resolveAll forces compilation of every definition so unused-but-broken
// definitions still fail at load time.
func (s *varScope) resolveAll() ([]*expr.Variable, error) {
	out := make([]*expr.Variable, 0, len(s.docs))
	for id := range s.docs {
		v, err := s.resolve(id)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// compileExpression builds one expression node, checking types as it goes.
func compileExpression(doc *ExpressionDoc, env *CompileEnv, scope *varScope) (expr.Expression, error) {
	switch {
	case doc.Value != nil:
		v, err := env.Datatypes.Parse(doc.Value.DataType, doc.Value.Value)
		if err != nil {
			return nil, err
		}
		return expr.NewLiteral(v), nil

	case doc.Designator != nil:
		d := doc.Designator
		if !env.Datatypes.Has(d.DataType) {
			return nil, fmt.Errorf("designator %s: unknown datatype %s", d.AttributeID, d.DataType)
		}
		return &expr.Designator{
			Category:      d.Category,
			AttributeID:   d.AttributeID,
			Issuer:        d.Issuer,
			Datatype:      d.DataType,
			MustBePresent: d.MustBePresent,
		}, nil

	case doc.Selector != nil:
		s := doc.Selector
		if !env.Datatypes.Has(s.DataType) {
			return nil, fmt.Errorf("selector %s: unknown datatype %s", s.Path, s.DataType)
		}
		return &expr.Selector{
			Category:      s.Category,
			Path:          s.Path,
			Datatype:      s.DataType,
			MustBePresent: s.MustBePresent,
		}, nil

	case doc.Apply != nil:
		fn, ok := env.Functions.Get(doc.Apply.FunctionID)
		if !ok {
			return nil, fmt.Errorf("unknown function %s", doc.Apply.FunctionID)
		}
		args := make([]expr.Expression, len(doc.Apply.Arguments))
		for i := range doc.Apply.Arguments {
			a, err := compileExpression(&doc.Apply.Arguments[i], env, scope)
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		return expr.NewApply(fn, args...)

	case doc.VariableReference != "":
		if scope == nil {
			return nil, fmt.Errorf("variable reference %q outside a policy", doc.VariableReference)
		}
		v, err := scope.resolve(doc.VariableReference)
		if err != nil {
			return nil, err
		}
		return expr.NewVarRef(v), nil

	case doc.Function != "":
		fn, ok := env.Functions.Get(doc.Function)
		if !ok {
			return nil, fmt.Errorf("unknown function %s", doc.Function)
		}
		return expr.NewFunctionRef(fn), nil

	default:
		return nil, fmt.Errorf("empty expression")
	}
}

// compileTarget builds the target clause structure. A nil or empty document
// target matches everything.
func compileTarget(doc *TargetDoc, env *CompileEnv, scope *varScope) (*Target, error) {
	if doc == nil || len(doc.AnyOf) == 0 {
		return nil, nil
	}
	clauses := make([][][]*Match, 0, len(doc.AnyOf))
	for _, any := range doc.AnyOf {
		anyClauses := make([][]*Match, 0, len(any.AllOf))
		for _, all := range any.AllOf {
			matches := make([]*Match, 0, len(all.Matches))
			for i := range all.Matches {
				m, err := compileMatch(&all.Matches[i], env, scope)
				if err != nil {
					return nil, err
				}
				matches = append(matches, m)
			}
			anyClauses = append(anyClauses, matches)
		}
		clauses = append(clauses, anyClauses)
	}
	return NewTarget(clauses), nil
}

func compileMatch(doc *MatchDoc, env *CompileEnv, scope *varScope) (*Match, error) {
	fn, ok := env.Functions.Get(doc.MatchID)
	if !ok {
		return nil, fmt.Errorf("unknown match function %s", doc.MatchID)
	}
	lit, err := compileExpression(&ExpressionDoc{Value: &doc.Value}, env, scope)
	if err != nil {
		return nil, err
	}
	var source expr.Expression
	switch {
	case doc.Designator != nil:
		source, err = compileExpression(&ExpressionDoc{Designator: doc.Designator}, env, scope)
	case doc.Selector != nil:
		source, err = compileExpression(&ExpressionDoc{Selector: doc.Selector}, env, scope)
	default:
		return nil, fmt.Errorf("match %s has neither designator nor selector", doc.MatchID)
	}
	if err != nil {
		return nil, err
	}
	m, err := NewMatch(fn, lit, source)
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", doc.MatchID, err)
	}
	return m, nil
}

func parseEffect(s string) (pdp.Effect, error) {
	switch s {
	case "Permit":
		return pdp.EffectPermit, nil
	case "Deny":
		return pdp.EffectDeny, nil
	}
	return 0, fmt.Errorf("invalid effect %q", s)
}

func compileObligations(docs []ObligationDoc, env *CompileEnv, scope *varScope) ([]ObligationExpression, error) {
	var out []ObligationExpression
	for _, d := range docs {
		effect, err := parseEffect(d.FulfillOn)
		if err != nil {
			return nil, fmt.Errorf("obligation %s: %w", d.ObligationID, err)
		}
		assigns, err := compileAssignments(d.Assignments, env, scope)
		if err != nil {
			return nil, fmt.Errorf("obligation %s: %w", d.ObligationID, err)
		}
		out = append(out, ObligationExpression{ID: d.ObligationID, FulfillOn: effect, Assignments: assigns})
	}
	return out, nil
}

func compileAdvice(docs []AdviceDoc, env *CompileEnv, scope *varScope) ([]AdviceExpression, error) {
	var out []AdviceExpression
	for _, d := range docs {
		effect, err := parseEffect(d.AppliesTo)
		if err != nil {
			return nil, fmt.Errorf("advice %s: %w", d.AdviceID, err)
		}
		assigns, err := compileAssignments(d.Assignments, env, scope)
		if err != nil {
			return nil, fmt.Errorf("advice %s: %w", d.AdviceID, err)
		}
		out = append(out, AdviceExpression{ID: d.AdviceID, AppliesTo: effect, Assignments: assigns})
	}
	return out, nil
}

func compileAssignments(docs []AssignmentDoc, env *CompileEnv, scope *varScope) ([]AssignmentExpression, error) {
	var out []AssignmentExpression
	for i := range docs {
		d := &docs[i]
		e, err := compileExpression(&d.Expression, env, scope)
		if err != nil {
			return nil, fmt.Errorf("assignment %s: %w", d.AttributeID, err)
		}
		out = append(out, AssignmentExpression{
			AttributeID: d.AttributeID,
			Category:    d.Category,
			Issuer:      d.Issuer,
			Expr:        e,
		})
	}
	return out, nil
}

// CompilePolicy builds a policy evaluator, performing every static check:
// version syntax, algorithm resolution, variable cycles, expression types.
func CompilePolicy(doc *PolicyDoc, env *CompileEnv) (*Policy, error) {
	version, err := ParseVersion(doc.Version)
	if err != nil {
		return nil, fmt.Errorf("policy %s: %w", doc.PolicyID, err)
	}
	alg, ok := env.Algorithms.RuleAlgorithm(doc.RuleCombining)
	if !ok {
		return nil, fmt.Errorf("policy %s: unknown rule-combining algorithm %s", doc.PolicyID, doc.RuleCombining)
	}
	scope, err := newVarScope(env, doc.Variables)
	if err != nil {
		return nil, fmt.Errorf("policy %s: %w", doc.PolicyID, err)
	}
	target, err := compileTarget(doc.Target, env, scope)
	if err != nil {
		return nil, fmt.Errorf("policy %s: %w", doc.PolicyID, err)
	}
	rules := make([]*Rule, 0, len(doc.Rules))
	seen := make(map[string]bool, len(doc.Rules))
	for i := range doc.Rules {
		rd := &doc.Rules[i]
		if seen[rd.RuleID] {
			return nil, fmt.Errorf("policy %s: duplicate rule %s", doc.PolicyID, rd.RuleID)
		}
		seen[rd.RuleID] = true
		r, err := compileRule(rd, env, scope)
		if err != nil {
			return nil, fmt.Errorf("policy %s: %w", doc.PolicyID, err)
		}
		rules = append(rules, r)
	}
	obligations, err := compileObligations(doc.Obligations, env, scope)
	if err != nil {
		return nil, fmt.Errorf("policy %s: %w", doc.PolicyID, err)
	}
	advice, err := compileAdvice(doc.Advice, env, scope)
	if err != nil {
		return nil, fmt.Errorf("policy %s: %w", doc.PolicyID, err)
	}
	variables, err := scope.resolveAll()
	if err != nil {
		return nil, fmt.Errorf("policy %s: %w", doc.PolicyID, err)
	}
	return &Policy{
		id:          doc.PolicyID,
		version:     version,
		description: doc.Description,
		target:      target,
		alg:         alg,
		rules:       rules,
		variables:   variables,
		obligations: obligations,
		advice:      advice,
	}, nil
}

func compileRule(doc *RuleDoc, env *CompileEnv, scope *varScope) (*Rule, error) {
	effect, err := parseEffect(doc.Effect)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", doc.RuleID, err)
	}
	target, err := compileTarget(doc.Target, env, scope)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", doc.RuleID, err)
	}
	var condition expr.Expression
	if doc.Condition != nil {
		condition, err = compileExpression(doc.Condition, env, scope)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", doc.RuleID, err)
		}
		if ct := condition.ReturnType(); ct != expr.ValueType(value.TypeBoolean) {
			return nil, fmt.Errorf("rule %s: condition must be a boolean, got %s", doc.RuleID, ct)
		}
	}
	obligations, err := compileObligations(doc.Obligations, env, scope)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", doc.RuleID, err)
	}
	advice, err := compileAdvice(doc.Advice, env, scope)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", doc.RuleID, err)
	}
	return &Rule{
		id:          doc.RuleID,
		effect:      effect,
		target:      target,
		condition:   condition,
		obligations: obligations,
		advice:      advice,
	}, nil
}

// CompilePolicySet builds a policy-set evaluator. The chain is the active
// sequence of policy-set ids being resolved through references; references
// encountered here extend it through the resolver, which enforces the cycle
// and depth rules.
func CompilePolicySet(doc *PolicySetDoc, env *CompileEnv, chain []string) (*PolicySet, error) {
	version, err := ParseVersion(doc.Version)
	if err != nil {
		return nil, fmt.Errorf("policy set %s: %w", doc.PolicySetID, err)
	}
	alg, ok := env.Algorithms.PolicyAlgorithm(doc.PolicyCombining)
	if !ok {
		return nil, fmt.Errorf("policy set %s: unknown policy-combining algorithm %s", doc.PolicySetID, doc.PolicyCombining)
	}
	target, err := compileTarget(doc.Target, env, nil)
	if err != nil {
		return nil, fmt.Errorf("policy set %s: %w", doc.PolicySetID, err)
	}

	// References below this set travel with this set's id on the chain.
	childChain := append(append([]string{}, chain...), doc.PolicySetID)

	var children []combining.Child
	var longest []string
	for i := range doc.Children {
		c := &doc.Children[i]
		switch {
		case c.Policy != nil:
			p, err := CompilePolicy(c.Policy, env)
			if err != nil {
				return nil, fmt.Errorf("policy set %s: %w", doc.PolicySetID, err)
			}
			children = append(children, p)
		case c.PolicySet != nil:
			ps, err := CompilePolicySet(c.PolicySet, env, chain)
			if err != nil {
				return nil, fmt.Errorf("policy set %s: %w", doc.PolicySetID, err)
			}
			children = append(children, ps)
			if len(ps.downstream) > len(longest) {
				longest = ps.downstream
			}
		case c.PolicyIDRef != nil:
			p, err := env.Resolver.ResolvePolicy(c.PolicyIDRef, childChain)
			if err != nil {
				return nil, fmt.Errorf("policy set %s: %w", doc.PolicySetID, err)
			}
			children = append(children, p)
		case c.PolicySetIDRef != nil:
			ps, err := env.Resolver.ResolvePolicySet(c.PolicySetIDRef, childChain)
			if err != nil {
				return nil, fmt.Errorf("policy set %s: %w", doc.PolicySetID, err)
			}
			children = append(children, ps)
			if refChain := append([]string{ps.id}, ps.downstream...); len(refChain) > len(longest) {
				longest = refChain
			}
		default:
			return nil, fmt.Errorf("policy set %s: empty child", doc.PolicySetID)
		}
	}

	obligations, err := compileObligations(doc.Obligations, env, nil)
	if err != nil {
		return nil, fmt.Errorf("policy set %s: %w", doc.PolicySetID, err)
	}
	advice, err := compileAdvice(doc.Advice, env, nil)
	if err != nil {
		return nil, fmt.Errorf("policy set %s: %w", doc.PolicySetID, err)
	}
	return &PolicySet{
		id:          doc.PolicySetID,
		version:     version,
		description: doc.Description,
		target:      target,
		alg:         alg,
		children:    children,
		obligations: obligations,
		advice:      advice,
		downstream:  longest,
	}, nil
}
