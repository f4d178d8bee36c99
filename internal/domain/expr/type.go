// Package expr implements the XACML expression language: the expression
// tree, its typed evaluation results, and the evaluation context contract.
//
// Static types are checked when expressions are built, at policy load time.
// Evaluation therefore only surfaces runtime semantic failures, always as
// Indeterminate results, never as Go errors.
package expr

import "fmt"

// typeFunction marks the pseudo-datatype of a function reference, which is
// only valid as an argument to a higher-order function.
const typeFunction = "urn:oasis:names:tc:xacml:3.0:data-type:function"

// Type is the static type of an expression: a datatype plus whether the
// expression produces a bag of it.
type Type struct {
	Datatype string
	IsBag    bool
}

// ValueType is the static type of a single value of the given datatype.
func ValueType(datatype string) Type { return Type{Datatype: datatype} }

// BagType is the static type of a bag of the given datatype.
func BagType(datatype string) Type { return Type{Datatype: datatype, IsBag: true} }

// FunctionType is the static type of a function reference.
func FunctionType() Type { return Type{Datatype: typeFunction} }

// IsFunction reports whether the type is a function reference.
func (t Type) IsFunction() bool { return t.Datatype == typeFunction }

// String renders the type for diagnostics.
func (t Type) String() string {
	if t.IsBag {
		return fmt.Sprintf("bag<%s>", t.Datatype)
	}
	return t.Datatype
}
