// Package provider loads a policy corpus, resolves policy references with
// cycle and depth protection, and selects the root policy element.
package provider

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/combining"
	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/policy"
)

// Config carries the provider's load-time knobs.
type Config struct {
	// MaxPolicyRefDepth bounds the length of any chain of policy-set
	// references, counting every set on the chain. Negative disables the
	// bound.
	MaxPolicyRefDepth int
	// IgnoreOldVersions keeps only the highest version per policy id.
	IgnoreOldVersions bool
	// RootID selects the root policy element explicitly. Required when
	// the corpus holds more than one candidate.
	RootID string
}

// Document is one parsed policy source. Exactly one of Policy and PolicySet
// is set; Source names where it came from for diagnostics.
type Document struct {
	Policy    *policy.PolicyDoc
	PolicySet *policy.PolicySetDoc
	Source    string
}

// versionedPolicy pairs a parsed document with its compiled evaluator.
type versionedPolicy struct {
	version  policy.Version
	source   string
	doc      *policy.PolicyDoc
	compiled *policy.Policy
}

type versionedPolicySet struct {
	version  policy.Version
	source   string
	doc      *policy.PolicySetDoc
	compiled *policy.PolicySet
	building bool
}

// Provider holds the compiled corpus. After New returns, the provider is
// immutable and safe for concurrent reads.
type Provider struct {
	cfg        Config
	policies   map[string][]*versionedPolicy    // newest first
	policySets map[string][]*versionedPolicySet // newest first
	root       combining.Child

	// loadEnv backs on-demand referent compilation during New only; the
	// compiled evaluators never touch it again.
	loadEnv *policy.CompileEnv
}

var _ policy.RefResolver = (*Provider)(nil)

// New indexes and compiles the corpus. Every failure is fatal and names the
// offending policy id, version, and source.
func New(docs []Document, env *policy.CompileEnv, cfg Config) (*Provider, error) {
	p := &Provider{
		cfg:        cfg,
		policies:   make(map[string][]*versionedPolicy),
		policySets: make(map[string][]*versionedPolicySet),
	}
	env.Resolver = p
	p.loadEnv = env

	if err := p.index(docs); err != nil {
		return nil, err
	}

	// Compile policies first: they reference nothing.
	for id, versions := range p.policies {
		for _, v := range versions {
			compiled, err := policy.CompilePolicy(v.doc, env)
			if err != nil {
				return nil, fmt.Errorf("%s (version %s, from %s): %w", id, v.version, v.source, err)
			}
			v.compiled = compiled
		}
	}

	// Compile policy sets eagerly; references resolve through the
	// bootstrap resolver, which compiles referents on demand.
	for id, versions := range p.policySets {
		for _, v := range versions {
			if err := p.build(v, env, nil); err != nil {
				return nil, fmt.Errorf("%s (version %s, from %s): %w", id, v.version, v.source, err)
			}
		}
	}

	root, err := p.selectRoot()
	if err != nil {
		return nil, err
	}
	p.root = root
	return p, nil
}

// index builds the id/version maps, rejecting duplicate (id, version)
// pairs and optionally dropping all but the newest version.
func (p *Provider) index(docs []Document) error {
	for _, d := range docs {
		switch {
		case d.Policy != nil:
			version, err := policy.ParseVersion(d.Policy.Version)
			if err != nil {
				return fmt.Errorf("%s (from %s): %w", d.Policy.PolicyID, d.Source, err)
			}
			id := d.Policy.PolicyID
			for _, existing := range p.policies[id] {
				if existing.version.Compare(version) == 0 {
					return fmt.Errorf("duplicate policy %s version %s (from %s and %s)",
						id, version, existing.source, d.Source)
				}
			}
			p.policies[id] = append(p.policies[id], &versionedPolicy{
				version: version, source: d.Source, doc: d.Policy,
			})
		case d.PolicySet != nil:
			version, err := policy.ParseVersion(d.PolicySet.Version)
			if err != nil {
				return fmt.Errorf("%s (from %s): %w", d.PolicySet.PolicySetID, d.Source, err)
			}
			id := d.PolicySet.PolicySetID
			for _, existing := range p.policySets[id] {
				if existing.version.Compare(version) == 0 {
					return fmt.Errorf("duplicate policy set %s version %s (from %s and %s)",
						id, version, existing.source, d.Source)
				}
			}
			p.policySets[id] = append(p.policySets[id], &versionedPolicySet{
				version: version, source: d.Source, doc: d.PolicySet,
			})
		default:
			return fmt.Errorf("empty policy document from %s", d.Source)
		}
	}

	for id := range p.policies {
		vs := p.policies[id]
		sort.Slice(vs, func(i, j int) bool { return vs[i].version.Compare(vs[j].version) > 0 })
		if p.cfg.IgnoreOldVersions {
			p.policies[id] = vs[:1]
		}
	}
	for id := range p.policySets {
		vs := p.policySets[id]
		sort.Slice(vs, func(i, j int) bool { return vs[i].version.Compare(vs[j].version) > 0 })
		if p.cfg.IgnoreOldVersions {
			p.policySets[id] = vs[:1]
		}
	}
	return nil
}

// build compiles one policy set version if not yet compiled. The chain is
// the active reference chain that led here; nil for top-level compilation.
func (p *Provider) build(v *versionedPolicySet, env *policy.CompileEnv, chain []string) error {
	if v.compiled != nil {
		return nil
	}
	if v.building {
		// The chain check reports cycles first; this guards re-entry
		// through distinct version constraints on one id.
		return fmt.Errorf("policy set %s is part of a reference cycle", v.doc.PolicySetID)
	}
	v.building = true
	defer func() { v.building = false }()
	compiled, err := policy.CompilePolicySet(v.doc, env, chain)
	if err != nil {
		return err
	}
	v.compiled = compiled
	return nil
}

// ResolvePolicy resolves a policy reference to the newest matching version.
func (p *Provider) ResolvePolicy(ref *policy.RefDoc, chain []string) (*policy.Policy, error) {
	constraints, err := parseConstraints(ref)
	if err != nil {
		return nil, err
	}
	v := latestPolicy(p.policies[ref.ID], constraints)
	if v == nil {
		return nil, fmt.Errorf("unresolved policy reference %s%s", ref.ID, constraintSuffix(ref))
	}
	if v.compiled == nil {
		return nil, fmt.Errorf("policy %s referenced before compilation", ref.ID)
	}
	return v.compiled, nil
}

// ResolvePolicySet resolves a policy-set reference, extending the active
// chain: a revisited id is a cycle, and a chain longer than the configured
// depth is fatal. The error names every id on the offending chain.
func (p *Provider) ResolvePolicySet(ref *policy.RefDoc, chain []string) (*policy.PolicySet, error) {
	constraints, err := parseConstraints(ref)
	if err != nil {
		return nil, err
	}
	for _, id := range chain {
		if id == ref.ID {
			return nil, fmt.Errorf("policy set reference cycle: %s", chainString(append(chain, ref.ID)))
		}
	}
	if p.cfg.MaxPolicyRefDepth >= 0 && len(chain)+1 > p.cfg.MaxPolicyRefDepth {
		return nil, fmt.Errorf("policy set reference chain %s exceeds depth %d",
			chainString(append(chain, ref.ID)), p.cfg.MaxPolicyRefDepth)
	}
	v := latestPolicySet(p.policySets[ref.ID], constraints)
	if v == nil {
		return nil, fmt.Errorf("unresolved policy set reference %s%s", ref.ID, constraintSuffix(ref))
	}
	if v.compiled == nil {
		if err := p.build(v, p.loadEnv, chain); err != nil {
			return nil, err
		}
	} else if p.cfg.MaxPolicyRefDepth >= 0 &&
		len(chain)+1+v.compiled.LongestReferenceChain() > p.cfg.MaxPolicyRefDepth {
		// The referent was compiled through a shorter chain; joining it
		// here would exceed the bound. Name the whole effective chain.
		full := append(append(append([]string{}, chain...), ref.ID), v.compiled.DownstreamChain()...)
		return nil, fmt.Errorf("policy set reference chain %s exceeds depth %d",
			chainString(full), p.cfg.MaxPolicyRefDepth)
	}
	return v.compiled, nil
}

func chainString(ids []string) string {
	return strings.Join(ids, " -> ")
}

func parseConstraints(ref *policy.RefDoc) (*policy.VersionConstraints, error) {
	if ref.Version == "" && ref.EarliestVersion == "" && ref.LatestVersion == "" {
		return nil, nil
	}
	c := &policy.VersionConstraints{}
	var err error
	if ref.Version != "" {
		if c.Version, err = policy.ParseVersionPattern(ref.Version); err != nil {
			return nil, fmt.Errorf("reference %s: %w", ref.ID, err)
		}
	}
	if ref.EarliestVersion != "" {
		if c.Earliest, err = policy.ParseVersion(ref.EarliestVersion); err != nil {
			return nil, fmt.Errorf("reference %s: %w", ref.ID, err)
		}
	}
	if ref.LatestVersion != "" {
		if c.Latest, err = policy.ParseVersion(ref.LatestVersion); err != nil {
			return nil, fmt.Errorf("reference %s: %w", ref.ID, err)
		}
	}
	return c, nil
}

func constraintSuffix(ref *policy.RefDoc) string {
	var parts []string
	if ref.Version != "" {
		parts = append(parts, "version "+ref.Version)
	}
	if ref.EarliestVersion != "" {
		parts = append(parts, "earliest "+ref.EarliestVersion)
	}
	if ref.LatestVersion != "" {
		parts = append(parts, "latest "+ref.LatestVersion)
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func latestPolicy(vs []*versionedPolicy, c *policy.VersionConstraints) *versionedPolicy {
	for _, v := range vs {
		if c.Accepts(v.version) {
			return v
		}
	}
	return nil
}

func latestPolicySet(vs []*versionedPolicySet, c *policy.VersionConstraints) *versionedPolicySet {
	for _, v := range vs {
		if c.Accepts(v.version) {
			return v
		}
	}
	return nil
}

// selectRoot picks the root policy element: an explicitly configured id, or
// the sole candidate in the corpus.
func (p *Provider) selectRoot() (combining.Child, error) {
	if p.cfg.RootID != "" {
		if vs, ok := p.policySets[p.cfg.RootID]; ok {
			return vs[0].compiled, nil
		}
		if vs, ok := p.policies[p.cfg.RootID]; ok {
			return vs[0].compiled, nil
		}
		return nil, fmt.Errorf("configured root policy %s not found in corpus", p.cfg.RootID)
	}
	switch {
	case len(p.policySets) == 1:
		for _, vs := range p.policySets {
			return vs[0].compiled, nil
		}
	case len(p.policySets) == 0 && len(p.policies) == 1:
		for _, vs := range p.policies {
			return vs[0].compiled, nil
		}
	case len(p.policySets) == 0 && len(p.policies) == 0:
		return nil, fmt.Errorf("empty policy corpus")
	}
	return nil, fmt.Errorf("ambiguous root: corpus holds %d policy sets and %d policies; configure the root id",
		len(p.policySets), len(p.policies))
}

// Root returns the root policy element's evaluator.
func (p *Provider) Root() combining.Child { return p.root }

// GetPolicy returns the cached evaluator of the newest policy version
// matching the constraints.
func (p *Provider) GetPolicy(id string, c *policy.VersionConstraints) (*policy.Policy, bool) {
	v := latestPolicy(p.policies[id], c)
	if v == nil || v.compiled == nil {
		return nil, false
	}
	return v.compiled, true
}

// GetPolicySet returns the cached evaluator of the newest policy-set
// version matching the constraints, re-checking that joining it to the
// caller's active chain stays within the depth bound.
func (p *Provider) GetPolicySet(id string, c *policy.VersionConstraints, activeChain []string) (*policy.PolicySet, error) {
	v := latestPolicySet(p.policySets[id], c)
	if v == nil || v.compiled == nil {
		return nil, fmt.Errorf("unknown policy set %s", id)
	}
	if p.cfg.MaxPolicyRefDepth >= 0 &&
		len(activeChain)+1+v.compiled.LongestReferenceChain() > p.cfg.MaxPolicyRefDepth {
		return nil, fmt.Errorf("policy set %s exceeds reference depth %d from the active chain",
			id, p.cfg.MaxPolicyRefDepth)
	}
	return v.compiled, nil
}
