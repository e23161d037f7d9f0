// internal/types/rules.go
package types

/*
 * Rule IR node types.
 *
 * Provides the algebraic intermediate representation shared by the parsers
 * and both backends (runtime evaluator, dependency extractor). Nodes are
 * immutable values constructed once per rule-text string at load time.
 *
 * Key types:
 *   - Rule: AND/OR combination of child nodes
 *   - Identifier: item, event, or common-rule name (resolved at compile time)
 *   - FuncCall: named external predicate with structured arguments
 *   - CountItem: "N of these" threshold over a set of identifiers
 *
 * RuleNode is a sealed union; every consumer switches exhaustively over the
 * four concrete kinds so adding a node kind is a compile-time exercise.
 *
 * Dependencies: None (zero external dependencies)
 */

// RuleOp combines the children of a Rule or the members of a CountItem.
type RuleOp int

const (
	OpAnd RuleOp = iota
	OpOr
)

// String returns the operator as written in rule text.
func (op RuleOp) String() string {
	if op == OpAnd {
		return "&"
	}
	return "|"
}

// RuleNode is the sealed union of rule IR nodes.
type RuleNode interface {
	isRuleNode()
}

// Identifier names an item, an event, or a common-rule indirection.
// Resolution against the item/event namespace happens at compile time,
// not at parse time.
type Identifier string

// FuncCall is a named external predicate invocation. It is opaque to the
// rule engine: arguments are carried verbatim and handed to the registered
// function at evaluation time.
type FuncCall struct {
	Name string
	Args []Arg
}

// CountItem is satisfied when the player holds at least Count copies drawn
// from Items (OpAnd) or holds Count of the alternatives (OpOr). The actual
// counting is delegated to the host collection-state capability.
type CountItem struct {
	Items []Identifier
	Op    RuleOp
	Count int
}

// Rule combines child nodes with a single operator.
//
// Invariants, upheld by NewRule and the parsers:
//   - the child set is never empty
//   - no direct child is a Rule with the identical operator (associative
//     chains are flattened at construction)
//
// A single-child top-level Rule whose child is an Identifier outside the
// item namespace denotes indirection into the common-rule table.
type Rule struct {
	Op       RuleOp
	Children []RuleNode
}

func (Identifier) isRuleNode() {}
func (FuncCall) isRuleNode()   {}
func (CountItem) isRuleNode()  {}
func (Rule) isRuleNode()       {}

// NewRule builds a Rule, merging any child that is itself a Rule with the
// same operator into the new child list. Flattening here rather than as a
// post-pass keeps `a & (b & c)` and `a & b & c` identical in the IR.
func NewRule(op RuleOp, children ...RuleNode) Rule {
	flat := make([]RuleNode, 0, len(children))
	for _, child := range children {
		if inner, ok := child.(Rule); ok && inner.Op == op {
			flat = append(flat, inner.Children...)
			continue
		}
		flat = append(flat, child)
	}
	return Rule{Op: op, Children: flat}
}

// DependentItems records into acc every identifier reachable through the
// rule that could denote a concrete item or event. Nested rules and
// count-item members are walked; function calls are opaque and skipped.
// Callers own acc and must pass a freshly constructed map.
func (r Rule) DependentItems(acc map[Identifier]struct{}) {
	for _, child := range r.Children {
		switch node := child.(type) {
		case Identifier:
			acc[node] = struct{}{}
		case Rule:
			node.DependentItems(acc)
		case CountItem:
			for _, item := range node.Items {
				acc[item] = struct{}{}
			}
		case FuncCall:
			// opaque to the item walk
		}
	}
}

// Arg is the sealed union of function-call argument forms.
type Arg interface {
	isArg()
}

// ArgInt is a bare integer argument (decimal, hex, octal, or binary in the
// source text).
type ArgInt int

// ArgName is a bare identifier argument, handed to the function as a string
// literal. Names carrying the option-value prefix are resolved by the
// function itself.
type ArgName string

// ArgList is an ordered collection argument.
type ArgList []Arg

// ArgSet is an unordered collection argument.
type ArgSet []Arg

// ArgMap is a key-value collection argument.
type ArgMap []ArgPair

// ArgPair is a single key-value entry of an ArgMap.
type ArgPair struct {
	Key   Arg
	Value Arg
}

func (ArgInt) isArg()  {}
func (ArgName) isArg() {}
func (ArgList) isArg() {}
func (ArgSet) isArg()  {}
func (ArgMap) isArg()  {}
