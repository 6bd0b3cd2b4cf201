package param

import (
	"github.com/matzehuels/springlayout/pkg/errors"
)

// ErrUnknownParam is returned by [Set.Parse] for a name the set does not
// contain.
var ErrUnknownParam = errors.New(errors.ErrCodeNotFound, "unknown parameter")

// Value is a serialized parameter: its name and string value.
type Value struct {
	Name  string `json:"name" toml:"name" yaml:"name"`
	Value string `json:"value" toml:"value" yaml:"value"`
}

// Set is an ordered collection of parameters.
type Set []Param

// Lookup returns the parameter with the given name.
func (s Set) Lookup(name string) (Param, bool) {
	for _, p := range s {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// Parse sets the named parameter from its serialized value.
func (s Set) Parse(name, value string) error {
	p, ok := s.Lookup(name)
	if !ok {
		return errors.Wrap(errors.ErrCodeNotFound, ErrUnknownParam, "%q", name)
	}
	return p.Parse(value)
}

// Reset restores every parameter to its default.
func (s Set) Reset() {
	for _, p := range s {
		p.Reset()
	}
}

// Values serializes every parameter, in order.
func (s Set) Values() []Value {
	out := make([]Value, 0, len(s))
	for _, p := range s {
		out = append(out, Value{Name: p.Name(), Value: p.String()})
	}
	return out
}

// Apply sets every value whose name the set knows and skips the others,
// as presets written by other versions may name parameters that no longer
// exist. The first malformed value aborts with its error.
func (s Set) Apply(values []Value) error {
	for _, v := range values {
		p, ok := s.Lookup(v.Name)
		if !ok {
			continue
		}
		if err := p.Parse(v.Value); err != nil {
			return err
		}
	}
	return nil
}

// OnChange registers fn on every parameter of the set.
func (s Set) OnChange(fn func(Param)) {
	for _, p := range s {
		p.OnChange(fn)
	}
}
