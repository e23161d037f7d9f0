// internal/rules/compile_test.go
package rules

import (
	"errors"
	"testing"

	"github.com/ferrule/gatekeep/internal/types"
)

// fakeState is a map-backed collection state. ALL-policy counts sum copies
// across the set; ANY-policy counts distinct alternatives held.
type fakeState struct {
	counts map[string]int
	calls  []string
}

func stateOf(items ...string) *fakeState {
	counts := make(map[string]int)
	for _, item := range items {
		counts[item]++
	}
	return &fakeState{counts: counts}
}

func (s *fakeState) Has(item string) bool {
	s.calls = append(s.calls, "has")
	return s.counts[item] > 0
}

func (s *fakeState) HasAll(items []string) bool {
	s.calls = append(s.calls, "has_all")
	for _, item := range items {
		if s.counts[item] == 0 {
			return false
		}
	}
	return true
}

func (s *fakeState) HasAny(items []string) bool {
	s.calls = append(s.calls, "has_any")
	for _, item := range items {
		if s.counts[item] > 0 {
			return true
		}
	}
	return false
}

func (s *fakeState) HasCount(items []string, n int, combine types.RuleOp) bool {
	s.calls = append(s.calls, "has_count")
	total, held := 0, 0
	for _, item := range items {
		c := s.counts[item]
		total += c
		if c > 0 {
			held++
		}
	}
	if combine == types.OpAnd {
		return total >= n
	}
	return held >= n
}

// testEngine builds an engine over a small world. "boots" resolves to the
// label "Boots" to exercise identifier resolution; everything else is
// identity-labelled.
func testEngine() *Engine {
	return testEngineWithOptions(map[string]int{"opt": 1, "o1": 1, "o2": 1, "logic": 1})
}

func testEngineWithOptions(options map[string]int) *Engine {
	env := &Env{
		Items: map[string]string{
			"boots": "Boots",
			"fly":   "fly", "surf": "surf", "key_item": "key_item",
			"item_a": "item_a", "item_b": "item_b", "item_c": "item_c",
			"a": "a", "b": "b", "c": "c", "d": "d",
		},
		Events: map[string]struct{}{"event_beat_rival": {}},
		Common: make(map[string]Predicate),
		Funcs:  make(map[string]RuleFunc),
		Opts: StaticOptions{
			Values: options,
			Names:  map[string]int{"opt_most": 2},
		},
	}
	return NewEngine(env)
}

func TestCompile_SimpleAndOr(t *testing.T) {
	e := testEngine()

	predicate, err := e.Compile("boots & (fly | surf)")
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	tests := []struct {
		name  string
		state *fakeState
		want  bool
	}{
		{"boots and fly", stateOf("Boots", "fly"), true},
		{"boots and surf", stateOf("Boots", "surf"), true},
		{"boots alone", stateOf("Boots"), false},
		{"fly alone", stateOf("fly"), false},
		{"empty", stateOf(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := predicate(tt.state); got != tt.want {
				t.Errorf("predicate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompile_BareIdentifier(t *testing.T) {
	e := testEngine()

	predicate, err := e.Compile("key_item")
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	if !predicate(stateOf("key_item", "junk_a", "junk_b")) {
		t.Error("predicate() = false with key_item held, want true")
	}
	if predicate(stateOf("junk_a")) {
		t.Error("predicate() = true without key_item, want false")
	}
}

func TestCompile_BatchedDirectItems(t *testing.T) {
	e := testEngine()

	predicate, err := e.Compile("a & b & c")
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	state := stateOf("a", "b", "c")
	if !predicate(state) {
		t.Fatal("predicate() = false, want true")
	}
	if len(state.calls) != 1 || state.calls[0] != "has_all" {
		t.Errorf("calls = %v, want one batched has_all", state.calls)
	}
}

func TestCompile_CountSemantics(t *testing.T) {
	e := testEngine()

	anyTwo, err := e.Compile("[a|b|c]*2")
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}
	allTwo, err := e.Compile("[a&b&c]*2")
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	tests := []struct {
		name      string
		state     *fakeState
		wantAny   bool
		wantTotal bool
	}{
		{"two distinct", stateOf("a", "b"), true, true},
		{"two copies of one", stateOf("a", "a"), false, true},
		{"one in set one out", stateOf("a", "d"), false, false},
		{"empty", stateOf(), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := anyTwo(tt.state); got != tt.wantAny {
				t.Errorf("[a|b|c]*2 = %v, want %v", got, tt.wantAny)
			}
			if got := allTwo(tt.state); got != tt.wantTotal {
				t.Errorf("[a&b&c]*2 = %v, want %v", got, tt.wantTotal)
			}
		})
	}
}

func TestCompile_BranchOrderPrecedence(t *testing.T) {
	// Both o1 and o2 hold: the first branch must win, never the second.
	e := testEngineWithOptions(map[string]int{"o1": 1, "o2": 1})

	predicate, err := e.Compile("item_a if o1 == 1 else item_b if o2 == 1 else item_c")
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	if !predicate(stateOf("item_a")) {
		t.Error("predicate(item_a) = false, want true (first branch selected)")
	}
	if predicate(stateOf("item_b")) {
		t.Error("predicate(item_b) = true, want false (second branch must not be selected)")
	}
}

func TestCompile_UnresolvableBranchFallsBack(t *testing.T) {
	e := testEngineWithOptions(map[string]int{"opt": 1})

	predicate, err := e.Compile("item_a if opt == 9")
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	if !predicate(stateOf()) {
		t.Error("predicate() = false, want true (always-passable fallback)")
	}
}

func TestCompile_CommonRuleIndirection(t *testing.T) {
	e := testEngine()

	predicate, err := e.Compile("cut_badge")
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	// The table is populated after compilation; lookup is lazy.
	e.env.Common["cut_badge"] = func(s CollectionState) bool { return s.Has("Cascade Badge") }

	if !predicate(stateOf("Cascade Badge")) {
		t.Error("predicate() = false with badge held, want true")
	}
	if predicate(stateOf()) {
		t.Error("predicate() = true without badge, want false")
	}
}

func TestCompile_FuncCall(t *testing.T) {
	e := testEngine()
	e.env.Funcs["can_fish"] = func(args []types.Arg) Predicate {
		rod := string(args[0].(types.ArgName))
		return func(s CollectionState) bool { return s.Has(rod) }
	}

	predicate, err := e.Compile("boots & can_fish(old_rod)")
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	if !predicate(stateOf("Boots", "old_rod")) {
		t.Error("predicate() = false, want true")
	}
	if predicate(stateOf("Boots")) {
		t.Error("predicate() = true without the rod, want false")
	}
}

func TestCompile_EventIdentifier(t *testing.T) {
	e := testEngine()

	predicate, err := e.Compile("event_beat_rival")
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	if !predicate(stateOf("event_beat_rival")) {
		t.Error("predicate() = false with event collected, want true")
	}
}

func TestCompile_SemanticErrors(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name string
		text string
		want error
	}{
		{"zero threshold", "a*0", types.ErrNonPositiveCount},
		{"unknown count member", "[a|ghost]*2", types.ErrUnknownItem},
		{"unknown option", "a if nonsense == 1", types.ErrUnknownOption},
		{"unknown option value", "a if opt == opt_ghost", types.ErrUnknownOptionValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Compile(tt.text)
			if err == nil {
				t.Fatalf("Compile(%q) error = nil, want %v", tt.text, tt.want)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Compile(%q) error = %v, want %v", tt.text, err, tt.want)
			}
			var serr *types.SemanticError
			if !errors.As(err, &serr) {
				t.Errorf("Compile(%q) error %v is not a SemanticError", tt.text, err)
			}
		})
	}
}

func TestCompile_SyntaxErrorSurfaces(t *testing.T) {
	e := testEngine()

	_, err := e.Compile("a & (b | c")
	if err == nil {
		t.Fatal("Compile() error = nil, want syntax error")
	}
	var serr *types.SyntaxError
	if !errors.As(err, &serr) {
		t.Errorf("error %v is not a SyntaxError", err)
	}
}

func TestEvalCondition_ShortCircuitAndInvert(t *testing.T) {
	e := testEngineWithOptions(map[string]int{"a": 1, "b": 0})

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"and true false", "a == 1 & b == 1", false},
		{"or picks first", "a == 1 | b == 1", true},
		{"inverted or", "!(a == 1 | b == 1)", false},
		{"inverted and", "!(a == 1 & b == 1)", true},
		{"bare truthy", "a", true},
		{"bare falsy", "b", false},
		{"named value", "a < opt_most", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, err := e.Grammar().ParseCondition(tt.text)
			if err != nil {
				t.Fatalf("ParseCondition(%q) error = %v", tt.text, err)
			}
			if got := e.EvalCondition(cond); got != tt.want {
				t.Errorf("EvalCondition(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
