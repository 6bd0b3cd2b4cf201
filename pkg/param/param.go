// Package param provides typed, bounded, serializable tuning parameters.
//
// Every strategy of the layout system (graph generators, embedders,
// rigid-edge models and path managers) exposes its tunables as a [Set] of
// parameters. Parameters know their name, a one-line description, their
// default and their valid range, and they round-trip through strings so that
// presets can persist them.
//
// # Kinds
//
//   - [Bool]: on/off switch
//   - [Int]: integer clamped to [min, max]
//   - [Real]: float clamped to [min, max], with a [Linear] or [Log] scale
//   - [Choice]: one of a fixed list of options
//   - [Text]: free-form string (file names)
//
// The scale of a Real only affects how it maps to a slider position in
// [0, 1] ([Real.Position], [Real.SetPosition]); the stored value is always
// the plain number.
//
// # Usage
//
//	c1 := param.NewLinear("C1", "spring strength", 2, 0, 5)
//	set := param.Set{c1}
//	p, _ := set.Lookup("C1")
//	_ = p.Parse("2.5")
//	fmt.Println(c1.Get()) // 2.5
package param

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/matzehuels/springlayout/pkg/errors"
)

// Kind identifies the type of a parameter.
type Kind string

// Parameter kinds.
const (
	KindBool   Kind = "bool"
	KindInt    Kind = "int"
	KindReal   Kind = "real"
	KindChoice Kind = "choice"
	KindText   Kind = "text"
)

// Param is the type-independent view of a parameter.
type Param interface {
	Name() string
	Desc() string
	Kind() Kind
	// String serializes the current value.
	String() string
	// Parse sets the value from its serialized form. Malformed input
	// returns an INVALID_ARGUMENT error and leaves the value unchanged.
	Parse(s string) error
	// Reset restores the default value.
	Reset()
	// OnChange registers fn to run after every change of value.
	OnChange(fn func(Param))
}

// Provider is implemented by every configurable strategy.
type Provider interface {
	Name() string
	Params() Set
}

// =============================================================================
// Common
// =============================================================================

type base struct {
	name      string
	desc      string
	listeners []func(Param)
}

func (b *base) Name() string { return b.name }
func (b *base) Desc() string { return b.desc }

func (b *base) OnChange(fn func(Param)) {
	b.listeners = append(b.listeners, fn)
}

func (b *base) notify(p Param) {
	for _, fn := range b.listeners {
		fn(p)
	}
}

func parseError(p Param, s string, err error) error {
	return errors.Wrap(errors.ErrCodeInvalidArgument, err, "parameter %s: invalid value %q", p.Name(), s)
}

// =============================================================================
// Bool
// =============================================================================

// Bool is an on/off parameter.
type Bool struct {
	base
	value, def bool
}

// NewBool returns a Bool parameter set to def.
func NewBool(name, desc string, def bool) *Bool {
	return &Bool{base: base{name: name, desc: desc}, value: def, def: def}
}

func (p *Bool) Kind() Kind     { return KindBool }
func (p *Bool) Get() bool      { return p.value }
func (p *Bool) Default() bool  { return p.def }
func (p *Bool) String() string { return strconv.FormatBool(p.value) }
func (p *Bool) Reset()         { p.Set(p.def) }

// Set changes the value and notifies listeners if it differs.
func (p *Bool) Set(v bool) {
	if p.value == v {
		return
	}
	p.value = v
	p.notify(p)
}

func (p *Bool) Parse(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return parseError(p, s, err)
	}
	p.Set(v)
	return nil
}

// =============================================================================
// Int
// =============================================================================

// Int is an integer parameter clamped to [Min, Max].
type Int struct {
	base
	value, def, min, max int
}

// NewInt returns an Int parameter set to def within [min, max].
func NewInt(name, desc string, def, min, max int) *Int {
	p := &Int{base: base{name: name, desc: desc}, min: min, max: max}
	p.value = p.clamp(def)
	p.def = p.value
	return p
}

func (p *Int) Kind() Kind     { return KindInt }
func (p *Int) Get() int       { return p.value }
func (p *Int) Default() int   { return p.def }
func (p *Int) Min() int       { return p.min }
func (p *Int) Max() int       { return p.max }
func (p *Int) String() string { return strconv.Itoa(p.value) }
func (p *Int) Reset()         { p.Set(p.def) }

func (p *Int) clamp(v int) int { return max(p.min, min(p.max, v)) }

// Set changes the value, clamped to the range.
func (p *Int) Set(v int) {
	v = p.clamp(v)
	if p.value == v {
		return
	}
	p.value = v
	p.notify(p)
}

func (p *Int) Parse(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return parseError(p, s, err)
	}
	p.Set(v)
	return nil
}

// Position returns the value's position in [0, 1] on a linear slider.
func (p *Int) Position() float64 {
	if p.max == p.min {
		return 0
	}
	return float64(p.value-p.min) / float64(p.max-p.min)
}

// SetPosition sets the value from a slider position in [0, 1].
func (p *Int) SetPosition(pos float64) {
	p.Set(int(math.Round(float64(p.min) + float64(p.max-p.min)*pos)))
}

// =============================================================================
// Real
// =============================================================================

// Scale determines how a Real maps to a slider position.
type Scale int

const (
	// Linear maps positions to values proportionally.
	Linear Scale = iota
	// Log maps positions to values exponentially; min must be positive.
	Log
)

// String returns "linear" or "log".
func (s Scale) String() string {
	if s == Log {
		return "log"
	}
	return "linear"
}

// Real is a floating-point parameter clamped to [Min, Max].
type Real struct {
	base
	value, def, min, max float64
	scale                Scale
}

// NewLinear returns a linearly scaled Real parameter.
func NewLinear(name, desc string, def, min, max float64) *Real {
	return newReal(name, desc, def, min, max, Linear)
}

// NewLog returns a logarithmically scaled Real parameter. min must be
// positive.
func NewLog(name, desc string, def, min, max float64) *Real {
	return newReal(name, desc, def, min, max, Log)
}

func newReal(name, desc string, def, min, max float64, scale Scale) *Real {
	p := &Real{base: base{name: name, desc: desc}, min: min, max: max, scale: scale}
	p.value = p.clamp(def)
	p.def = p.value
	return p
}

func (p *Real) Kind() Kind       { return KindReal }
func (p *Real) Get() float64     { return p.value }
func (p *Real) Default() float64 { return p.def }
func (p *Real) Min() float64     { return p.min }
func (p *Real) Max() float64     { return p.max }
func (p *Real) Scale() Scale     { return p.scale }
func (p *Real) Reset()           { p.Set(p.def) }

// String formats the value with the shortest exact representation.
func (p *Real) String() string {
	return strconv.FormatFloat(p.value, 'g', -1, 64)
}

func (p *Real) clamp(v float64) float64 {
	if math.IsNaN(v) {
		return p.min
	}
	return math.Max(p.min, math.Min(p.max, v))
}

// Set changes the value, clamped to the range.
func (p *Real) Set(v float64) {
	v = p.clamp(v)
	if p.value == v {
		return
	}
	p.value = v
	p.notify(p)
}

func (p *Real) Parse(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return parseError(p, s, err)
	}
	p.Set(v)
	return nil
}

// Position returns the value's slider position in [0, 1].
func (p *Real) Position() float64 {
	if p.max == p.min {
		return 0
	}
	if p.scale == Log {
		return math.Log(p.value/p.min) / math.Log(p.max/p.min)
	}
	return (p.value - p.min) / (p.max - p.min)
}

// SetPosition sets the value from a slider position in [0, 1].
func (p *Real) SetPosition(pos float64) {
	if p.scale == Log {
		p.Set(p.min * math.Exp(math.Log(p.max/p.min)*pos))
		return
	}
	p.Set(p.min + (p.max-p.min)*pos)
}

// =============================================================================
// Choice
// =============================================================================

// Choice selects one of a fixed list of options.
type Choice struct {
	base
	options    []string
	value, def int
}

// NewChoice returns a Choice over options with def selected. An unknown
// default selects the first option.
func NewChoice(name, desc string, options []string, def string) *Choice {
	i := max(0, slices.Index(options, def))
	return &Choice{base: base{name: name, desc: desc}, options: slices.Clone(options), value: i, def: i}
}

func (p *Choice) Kind() Kind           { return KindChoice }
func (p *Choice) Get() string          { return p.options[p.value] }
func (p *Choice) Index() int           { return p.value }
func (p *Choice) Options() []string    { return slices.Clone(p.options) }
func (p *Choice) String() string       { return p.Get() }
func (p *Choice) Reset()               { p.setIndex(p.def) }
func (p *Choice) Parse(s string) error { return p.Set(s) }

// Set selects the option equal to v. Unknown options return an
// INVALID_ARGUMENT error.
func (p *Choice) Set(v string) error {
	i := slices.Index(p.options, v)
	if i < 0 {
		return parseError(p, v, fmt.Errorf("options are %q", p.options))
	}
	p.setIndex(i)
	return nil
}

func (p *Choice) setIndex(i int) {
	if p.value == i {
		return
	}
	p.value = i
	p.notify(p)
}

// =============================================================================
// Text
// =============================================================================

// Text is a free-form string parameter.
type Text struct {
	base
	value, def string
}

// NewText returns a Text parameter set to def.
func NewText(name, desc, def string) *Text {
	return &Text{base: base{name: name, desc: desc}, value: def, def: def}
}

func (p *Text) Kind() Kind     { return KindText }
func (p *Text) Get() string    { return p.value }
func (p *Text) String() string { return p.value }
func (p *Text) Reset()         { p.Set(p.def) }

func (p *Text) Parse(s string) error {
	p.Set(s)
	return nil
}

// Set changes the value.
func (p *Text) Set(v string) {
	if p.value == v {
		return
	}
	p.value = v
	p.notify(p)
}
