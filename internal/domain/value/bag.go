package value

import "fmt"

// Bag is an unordered multiset of values sharing one datatype — the sole
// collection type in XACML. The zero Bag is an empty bag of no datatype;
// prefer EmptyBag so the datatype is known.
type Bag struct {
	dt    string
	elems []Value
}

// EmptyBag returns an empty bag of the given datatype.
func EmptyBag(datatype string) Bag {
	return Bag{dt: datatype}
}

// NewBag builds a bag of the given datatype. Every element must carry that
// datatype.
func NewBag(datatype string, elems ...Value) (Bag, error) {
	for _, e := range elems {
		if e.Type() != datatype {
			return Bag{}, fmt.Errorf("bag of %s cannot hold a %s element", datatype, e.Type())
		}
	}
	return Bag{dt: datatype, elems: elems}, nil
}

// BagOf builds a bag from one or more values of one datatype. It panics on a
// mixed-type argument list and is intended for literals in tests and
// compiled policies where the types are already checked.
func BagOf(elems ...Value) Bag {
	if len(elems) == 0 {
		return Bag{}
	}
	b, err := NewBag(elems[0].Type(), elems...)
	if err != nil {
		panic(err)
	}
	return b
}

// Type returns the bag's element datatype.
func (b Bag) Type() string { return b.dt }

// Size returns the number of elements, counting duplicates.
func (b Bag) Size() int { return len(b.elems) }

// Empty reports whether the bag has no elements.
func (b Bag) Empty() bool { return len(b.elems) == 0 }

// Values returns the bag's elements. The slice must not be mutated.
func (b Bag) Values() []Value { return b.elems }

// Contains reports whether the bag holds at least one element equal to v.
func (b Bag) Contains(v Value) bool {
	for _, e := range b.elems {
		if e.Equal(v) {
			return true
		}
	}
	return false
}

// count returns the multiplicity of v in the bag.
func (b Bag) count(v Value) int {
	n := 0
	for _, e := range b.elems {
		if e.Equal(v) {
			n++
		}
	}
	return n
}

// Equal reports multiset equality: same datatype and same multiplicity for
// every element.
func (b Bag) Equal(o Bag) bool {
	if b.dt != o.dt || len(b.elems) != len(o.elems) {
		return false
	}
	for _, e := range b.elems {
		if b.count(e) != o.count(e) {
			return false
		}
	}
	return true
}

// Intersection returns a bag holding the distinct values present in both
// bags.
func Intersection(a, b Bag) Bag {
	out := Bag{dt: a.dt}
	for _, e := range a.elems {
		if b.Contains(e) && !out.Contains(e) {
			out.elems = append(out.elems, e)
		}
	}
	return out
}

// Union returns a bag holding the distinct values present in either bag.
func Union(a, b Bag) Bag {
	out := Bag{dt: a.dt}
	for _, e := range a.elems {
		if !out.Contains(e) {
			out.elems = append(out.elems, e)
		}
	}
	for _, e := range b.elems {
		if !out.Contains(e) {
			out.elems = append(out.elems, e)
		}
	}
	return out
}

// Subset reports whether every distinct value of a is present in b.
func Subset(a, b Bag) bool {
	for _, e := range a.elems {
		if !b.Contains(e) {
			return false
		}
	}
	return true
}

// AtLeastOneMemberOf reports whether any value of a is present in b.
func AtLeastOneMemberOf(a, b Bag) bool {
	for _, e := range a.elems {
		if b.Contains(e) {
			return true
		}
	}
	return false
}

// SetEquals reports whether the two bags hold the same distinct values,
// ignoring multiplicity.
func SetEquals(a, b Bag) bool {
	return Subset(a, b) && Subset(b, a)
}
