package ctree

// Operator is the kind of an inner node of a concurrency tree.
// Leaves carry NoOperator.
type Operator int8

// Operators of concurrency trees.
const (
	NoOperator Operator = iota
	Sequential
	Concurrent
	Fallthrough
	Loop
)

// Operators lists all operator kinds in their canonical order.
var Operators = [...]Operator{Sequential, Concurrent, Fallthrough, Loop}

var symbols = [...]string{"", "→", "∧", "✕", "*"}
var names = [...]string{"Leaf", "Sequential", "Concurrent", "Fallthrough", "Loop"}

// Symbol returns the symbol used in canonical strings.
func (op Operator) Symbol() string {
	if op < NoOperator || op > Loop {
		return "?"
	}
	return symbols[op]
}

func (op Operator) String() string {
	if op < NoOperator || op > Loop {
		return "Operator(?)"
	}
	return names[op]
}

// Ordered is true for operators whose children are ordered, i.e. Sequential and Loop.
func (op Operator) Ordered() bool {
	return op == Sequential || op == Loop
}

// Unordered is true for Concurrent and Fallthrough.
func (op Operator) Unordered() bool {
	return op == Concurrent || op == Fallthrough
}

// OperatorFromSymbol returns the operator for a canonical symbol.
func OperatorFromSymbol(s string) (Operator, bool) {
	for _, op := range Operators {
		if symbols[op] == s {
			return op, true
		}
	}
	return NoOperator, false
}

// --- Nesting ---------------------------------------------------------------

// nesting lists, per parent operator, the operator kinds allowed as children.
// An operator never directly nests an operator of its own kind.
var nesting = map[Operator][]Operator{
	Sequential:  {Concurrent, Fallthrough, Loop},
	Concurrent:  {Sequential, Fallthrough, Loop},
	Fallthrough: {Sequential, Concurrent, Loop},
	Loop:        {Sequential, Concurrent, Fallthrough},
}

// MayNest returns true if an operator node of kind child may be a child of
// an operator node of kind parent.
func MayNest(parent, child Operator) bool {
	for _, op := range nesting[parent] {
		if op == child {
			return true
		}
	}
	return false
}

// NestedOperators returns the operator kinds allowed as children of parent.
func NestedOperators(parent Operator) []Operator {
	return nesting[parent]
}
