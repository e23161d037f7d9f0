// internal/types/rules_test.go
package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewRule_FlattensSameOperator(t *testing.T) {
	inner := NewRule(OpAnd, Identifier("b"), Identifier("c"))
	rule := NewRule(OpAnd, Identifier("a"), inner)

	want := Rule{Op: OpAnd, Children: []RuleNode{Identifier("a"), Identifier("b"), Identifier("c")}}
	if diff := cmp.Diff(want, rule); diff != "" {
		t.Errorf("NewRule() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRule_KeepsDifferentOperator(t *testing.T) {
	inner := NewRule(OpOr, Identifier("b"), Identifier("c"))
	rule := NewRule(OpAnd, Identifier("a"), inner)

	if len(rule.Children) != 2 {
		t.Fatalf("len(Children) = %d, want 2", len(rule.Children))
	}
	nested, ok := rule.Children[1].(Rule)
	if !ok {
		t.Fatalf("Children[1] = %T, want Rule", rule.Children[1])
	}
	if nested.Op != OpOr {
		t.Errorf("nested.Op = %v, want OpOr", nested.Op)
	}
}

func TestNewRule_FlatteningAssociativity(t *testing.T) {
	a, b, c := Identifier("a"), Identifier("b"), Identifier("c")

	flat := NewRule(OpAnd, a, b, c)
	leftNested := NewRule(OpAnd, NewRule(OpAnd, a, b), c)
	rightNested := NewRule(OpAnd, a, NewRule(OpAnd, b, c))

	if diff := cmp.Diff(flat, leftNested); diff != "" {
		t.Errorf("(a & b) & c differs from a & b & c:\n%s", diff)
	}
	if diff := cmp.Diff(flat, rightNested); diff != "" {
		t.Errorf("a & (b & c) differs from a & b & c:\n%s", diff)
	}
}

func TestDependentItems(t *testing.T) {
	rule := NewRule(OpAnd,
		Identifier("boots"),
		NewRule(OpOr,
			Identifier("fly"),
			CountItem{Items: []Identifier{"gem_a", "gem_b"}, Op: OpOr, Count: 2},
		),
		FuncCall{Name: "can_fish", Args: []Arg{ArgName("old_rod")}},
	)

	acc := make(map[Identifier]struct{})
	rule.DependentItems(acc)

	want := map[Identifier]struct{}{
		"boots": {}, "fly": {}, "gem_a": {}, "gem_b": {},
	}
	if diff := cmp.Diff(want, acc); diff != "" {
		t.Errorf("DependentItems() mismatch (-want +got):\n%s", diff)
	}
}

func TestDependentItems_FreshAccumulators(t *testing.T) {
	rule := NewRule(OpAnd, Identifier("a"))

	first := make(map[Identifier]struct{})
	rule.DependentItems(first)
	second := make(map[Identifier]struct{})
	rule.DependentItems(second)

	if len(first) != 1 || len(second) != 1 {
		t.Errorf("walk results = %d, %d entries, want 1, 1", len(first), len(second))
	}
}
