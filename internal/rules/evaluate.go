// internal/rules/evaluate.go
package rules

import (
	"github.com/ferrule/gatekeep/internal/types"
)

/*
 * Condition evaluation against the configuration source.
 *
 * Conditions select rule branches; they never touch the collection state.
 * Compound conditions short-circuit left to right and apply their invert
 * flag to the combined result rather than distributing it.
 *
 * Unknown option names evaluate false here, but validation rejects them
 * before compilation, so a compiled ruleset never reaches that path.
 */

// EvalCondition decides a branch condition under the engine's options.
func (e *Engine) EvalCondition(c types.CondNode) bool {
	switch node := c.(type) {
	case types.ConditionNode:
		value, ok := e.env.Opts.Option(node.Option)
		if !ok {
			return false
		}
		target := node.Value.Int
		if node.Value.Name != "" {
			target, ok = e.env.Opts.NamedValue(node.Value.Name)
			if !ok {
				return false
			}
		}
		return compare(node.Op, value, target)
	case types.Condition:
		result := node.Op == types.OpAnd
		for _, child := range node.Children {
			held := e.EvalCondition(child)
			if node.Op == types.OpAnd && !held {
				result = false
				break
			}
			if node.Op == types.OpOr && held {
				result = true
				break
			}
		}
		if node.Invert {
			return !result
		}
		return result
	}
	return false
}

// compare applies one of the six comparison operators.
func compare(op types.CmpOp, a, b int) bool {
	switch op {
	case types.CmpEq:
		return a == b
	case types.CmpNe:
		return a != b
	case types.CmpLt:
		return a < b
	case types.CmpLe:
		return a <= b
	case types.CmpGt:
		return a > b
	case types.CmpGe:
		return a >= b
	}
	return false
}
