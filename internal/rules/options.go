// internal/rules/options.go
package rules

// StaticOptions is a map-backed configuration source: Values holds the
// current option settings, Names the enumerated option-value constants
// reachable from rule text.
type StaticOptions struct {
	Values map[string]int
	Names  map[string]int
}

func (o StaticOptions) Option(name string) (int, bool) {
	value, ok := o.Values[name]
	return value, ok
}

func (o StaticOptions) NamedValue(name string) (int, bool) {
	value, ok := o.Names[name]
	return value, ok
}
