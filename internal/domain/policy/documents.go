package policy

// Document types are the parsed, still-untyped form of XACML policy
// documents. Codecs (XML, JSON, YAML) produce this tree; the compiler turns
// it into evaluators, performing all static checks. Field names follow the
// XACML element names so codecs stay mechanical.

// ExpressionDoc is a tagged union; exactly one field is set.
type ExpressionDoc struct {
	Value             *AttributeValueDoc     `json:"value,omitempty" yaml:"value,omitempty"`
	Designator        *DesignatorDoc         `json:"designator,omitempty" yaml:"designator,omitempty"`
	Selector          *SelectorDoc           `json:"selector,omitempty" yaml:"selector,omitempty"`
	Apply             *ApplyDoc              `json:"apply,omitempty" yaml:"apply,omitempty"`
	VariableReference string                 `json:"variableReference,omitempty" yaml:"variableReference,omitempty"`
	Function          string                 `json:"function,omitempty" yaml:"function,omitempty"`
}

// AttributeValueDoc is a literal in its lexical form.
type AttributeValueDoc struct {
	DataType string `json:"dataType" yaml:"dataType"`
	Value    string `json:"value" yaml:"value"`
}

// DesignatorDoc is an attribute designator.
type DesignatorDoc struct {
	Category      string `json:"category" yaml:"category"`
	AttributeID   string `json:"attributeId" yaml:"attributeId"`
	DataType      string `json:"dataType" yaml:"dataType"`
	Issuer        string `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	MustBePresent bool   `json:"mustBePresent,omitempty" yaml:"mustBePresent,omitempty"`
}

// SelectorDoc is an attribute selector over a category's content fragment.
type SelectorDoc struct {
	Category      string `json:"category" yaml:"category"`
	Path          string `json:"path" yaml:"path"`
	DataType      string `json:"dataType" yaml:"dataType"`
	MustBePresent bool   `json:"mustBePresent,omitempty" yaml:"mustBePresent,omitempty"`
}

// ApplyDoc is a function application.
type ApplyDoc struct {
	FunctionID string          `json:"functionId" yaml:"functionId"`
	Arguments  []ExpressionDoc `json:"arguments" yaml:"arguments"`
}

// MatchDoc is one match clause of a target.
type MatchDoc struct {
	MatchID    string            `json:"matchId" yaml:"matchId"`
	Value      AttributeValueDoc `json:"value" yaml:"value"`
	Designator *DesignatorDoc    `json:"designator,omitempty" yaml:"designator,omitempty"`
	Selector   *SelectorDoc      `json:"selector,omitempty" yaml:"selector,omitempty"`
}

// AllOfDoc is a conjunction of matches.
type AllOfDoc struct {
	Matches []MatchDoc `json:"matches" yaml:"matches"`
}

// AnyOfDoc is a disjunction of AllOf clauses.
type AnyOfDoc struct {
	AllOf []AllOfDoc `json:"allOf" yaml:"allOf"`
}

// TargetDoc is a conjunction of AnyOf clauses. An empty target matches
// every request.
type TargetDoc struct {
	AnyOf []AnyOfDoc `json:"anyOf,omitempty" yaml:"anyOf,omitempty"`
}

// AssignmentDoc is one attribute assignment expression.
type AssignmentDoc struct {
	AttributeID string        `json:"attributeId" yaml:"attributeId"`
	Category    string        `json:"category,omitempty" yaml:"category,omitempty"`
	Issuer      string        `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	Expression  ExpressionDoc `json:"expression" yaml:"expression"`
}

// ObligationDoc is an obligation expression.
type ObligationDoc struct {
	ObligationID string          `json:"obligationId" yaml:"obligationId"`
	FulfillOn    string          `json:"fulfillOn" yaml:"fulfillOn"`
	Assignments  []AssignmentDoc `json:"assignments,omitempty" yaml:"assignments,omitempty"`
}

// AdviceDoc is an advice expression.
type AdviceDoc struct {
	AdviceID    string          `json:"adviceId" yaml:"adviceId"`
	AppliesTo   string          `json:"appliesTo" yaml:"appliesTo"`
	Assignments []AssignmentDoc `json:"assignments,omitempty" yaml:"assignments,omitempty"`
}

// VariableDoc is a variable definition.
type VariableDoc struct {
	VariableID string        `json:"variableId" yaml:"variableId"`
	Expression ExpressionDoc `json:"expression" yaml:"expression"`
}

// RuleDoc is a rule.
type RuleDoc struct {
	RuleID      string          `json:"ruleId" yaml:"ruleId"`
	Effect      string          `json:"effect" yaml:"effect"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Target      *TargetDoc      `json:"target,omitempty" yaml:"target,omitempty"`
	Condition   *ExpressionDoc  `json:"condition,omitempty" yaml:"condition,omitempty"`
	Obligations []ObligationDoc `json:"obligations,omitempty" yaml:"obligations,omitempty"`
	Advice      []AdviceDoc     `json:"advice,omitempty" yaml:"advice,omitempty"`
}

// PolicyDoc is a policy.
type PolicyDoc struct {
	PolicyID       string          `json:"policyId" yaml:"policyId"`
	Version        string          `json:"version" yaml:"version"`
	Description    string          `json:"description,omitempty" yaml:"description,omitempty"`
	Target         *TargetDoc      `json:"target,omitempty" yaml:"target,omitempty"`
	RuleCombining  string          `json:"ruleCombiningAlgId" yaml:"ruleCombiningAlgId"`
	Variables      []VariableDoc   `json:"variableDefinitions,omitempty" yaml:"variableDefinitions,omitempty"`
	Rules          []RuleDoc       `json:"rules" yaml:"rules"`
	Obligations    []ObligationDoc `json:"obligations,omitempty" yaml:"obligations,omitempty"`
	Advice         []AdviceDoc     `json:"advice,omitempty" yaml:"advice,omitempty"`
}

// RefDoc is a policy or policy-set reference with optional version
// constraints.
type RefDoc struct {
	ID              string `json:"id" yaml:"id"`
	Version         string `json:"version,omitempty" yaml:"version,omitempty"`
	EarliestVersion string `json:"earliestVersion,omitempty" yaml:"earliestVersion,omitempty"`
	LatestVersion   string `json:"latestVersion,omitempty" yaml:"latestVersion,omitempty"`
}

// PolicySetChildDoc is a tagged union; exactly one field is set.
type PolicySetChildDoc struct {
	Policy             *PolicyDoc    `json:"policy,omitempty" yaml:"policy,omitempty"`
	PolicySet          *PolicySetDoc `json:"policySet,omitempty" yaml:"policySet,omitempty"`
	PolicyIDRef        *RefDoc       `json:"policyIdReference,omitempty" yaml:"policyIdReference,omitempty"`
	PolicySetIDRef     *RefDoc       `json:"policySetIdReference,omitempty" yaml:"policySetIdReference,omitempty"`
}

// PolicySetDoc is a policy set.
type PolicySetDoc struct {
	PolicySetID     string              `json:"policySetId" yaml:"policySetId"`
	Version         string              `json:"version" yaml:"version"`
	Description     string              `json:"description,omitempty" yaml:"description,omitempty"`
	Target          *TargetDoc          `json:"target,omitempty" yaml:"target,omitempty"`
	PolicyCombining string              `json:"policyCombiningAlgId" yaml:"policyCombiningAlgId"`
	Children        []PolicySetChildDoc `json:"children" yaml:"children"`
	Obligations     []ObligationDoc     `json:"obligations,omitempty" yaml:"obligations,omitempty"`
	Advice          []AdviceDoc         `json:"advice,omitempty" yaml:"advice,omitempty"`
}
