// internal/types/conditions.go
package types

import (
	"fmt"
	"strings"
)

/*
 * Option-condition IR.
 *
 * Conditions compare configuration options against literals and select
 * which branch of a RuleWithOpts applies. They are never evaluated against
 * collected items.
 *
 * Negation design: negating a comparison rewrites its operator through the
 * closed inversion table (==/!=, </>=, >/<=) instead of wrapping a NOT
 * node; negating a compound toggles its Invert flag. Repeated negation
 * cancels, so !!C yields IR equal to C.
 */

// CmpOp is one of the six comparison operators of a ConditionNode.
type CmpOp int

const (
	CmpEq CmpOp = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

// Invert returns the logical negation of the operator. The six comparisons
// form a closed set under negation.
func (op CmpOp) Invert() CmpOp {
	switch op {
	case CmpEq:
		return CmpNe
	case CmpNe:
		return CmpEq
	case CmpLt:
		return CmpGe
	case CmpLe:
		return CmpGt
	case CmpGt:
		return CmpLe
	case CmpGe:
		return CmpLt
	}
	return op
}

// Mirror returns the operator with its operands exchanged, used when a
// comparison is written literal-first and normalized to option-first.
func (op CmpOp) Mirror() CmpOp {
	switch op {
	case CmpLt:
		return CmpGt
	case CmpLe:
		return CmpGe
	case CmpGt:
		return CmpLt
	case CmpGe:
		return CmpLe
	}
	return op
}

// String returns the operator as written in rule text.
func (op CmpOp) String() string {
	switch op {
	case CmpEq:
		return "=="
	case CmpNe:
		return "!="
	case CmpLt:
		return "<"
	case CmpLe:
		return "<="
	case CmpGt:
		return ">"
	case CmpGe:
		return ">="
	}
	return "?"
}

// CondNode is the sealed union of condition IR nodes.
type CondNode interface {
	isCondNode()

	// Negate returns the logical complement of the node.
	Negate() CondNode
}

// CondValue is the literal side of a comparison: a bare integer, or a named
// enumerated option value resolved against the option schema at validation
// time. Name is empty for integer literals.
type CondValue struct {
	Name string
	Int  int
}

// String renders the value as written in rule text.
func (v CondValue) String() string {
	if v.Name != "" {
		return v.Name
	}
	return fmt.Sprintf("%d", v.Int)
}

// ConditionNode is a single comparison `option <op> value`. The option name
// is always on the left; parsers normalize literal-first comparisons via
// CmpOp.Mirror.
type ConditionNode struct {
	Option string
	Op     CmpOp
	Value  CondValue
}

// Condition is a boolean tree over condition nodes. Invert applies to the
// whole node rather than being distributed over the children, which keeps
// the printed form compact and makes double negation cancel exactly.
type Condition struct {
	Op       RuleOp
	Invert   bool
	Children []CondNode
}

func (ConditionNode) isCondNode() {}
func (Condition) isCondNode()    {}

// Negate rewrites the comparison operator through the inversion table.
func (n ConditionNode) Negate() CondNode {
	n.Op = n.Op.Invert()
	return n
}

// Negate toggles the invert flag.
func (c Condition) Negate() CondNode {
	c.Invert = !c.Invert
	return c
}

// NewCondition builds a compound condition, merging any child that is a
// non-inverted Condition with the same operator, mirroring the Rule
// flattening invariant.
func NewCondition(op RuleOp, children ...CondNode) Condition {
	flat := make([]CondNode, 0, len(children))
	for _, child := range children {
		if inner, ok := child.(Condition); ok && inner.Op == op && !inner.Invert {
			flat = append(flat, inner.Children...)
			continue
		}
		flat = append(flat, child)
	}
	return Condition{Op: op, Children: flat}
}

// String renders the comparison as written in rule text.
func (n ConditionNode) String() string {
	return fmt.Sprintf("%s %s %s", n.Option, n.Op, n.Value)
}

// String renders the tree with explicit grouping.
func (c Condition) String() string {
	parts := make([]string, len(c.Children))
	for i, child := range c.Children {
		parts[i] = fmt.Sprint(child)
	}
	centre := strings.Join(parts, fmt.Sprintf(" %s ", c.Op))
	if c.Invert {
		return fmt.Sprintf("!(%s)", centre)
	}
	if len(parts) > 1 {
		return fmt.Sprintf("(%s)", centre)
	}
	return centre
}
