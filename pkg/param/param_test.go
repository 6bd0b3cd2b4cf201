package param

import (
	"math"
	"testing"

	"github.com/matzehuels/springlayout/pkg/errors"
)

func TestRealClampAndRoundTrip(t *testing.T) {
	p := NewLinear("C1", "spring strength", 2, 0, 5)

	p.Set(7)
	if p.Get() != 5 {
		t.Errorf("Set(7) = %v, want 5 (clamped)", p.Get())
	}
	if err := p.Parse("0.1"); err != nil {
		t.Fatal(err)
	}
	if p.String() != "0.1" {
		t.Errorf("String() = %q, want %q", p.String(), "0.1")
	}
	if err := p.Parse("abc"); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("Parse(abc) error = %v, want INVALID_ARGUMENT", err)
	}
	if p.Get() != 0.1 {
		t.Errorf("failed Parse changed value to %v", p.Get())
	}
	p.Reset()
	if p.Get() != 2 {
		t.Errorf("Reset() = %v, want 2", p.Get())
	}
}

func TestRealPosition(t *testing.T) {
	tests := []struct {
		name string
		p    *Real
		pos  float64
		want float64
	}{
		{"linear mid", NewLinear("x", "", 0, 0, 2), 0.5, 1},
		{"linear end", NewLinear("x", "", 0, -1, 1), 1, 1},
		{"log mid", NewLog("x", "", 1, 0.1, 10), 0.5, 1},
		{"log start", NewLog("x", "", 1, 1e-1, 1e5), 0, 1e-1},
		{"log end", NewLog("x", "", 1, 1e-1, 1e5), 1, 1e5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.p.SetPosition(tt.pos)
			if math.Abs(tt.p.Get()-tt.want) > 1e-9*math.Max(1, tt.want) {
				t.Errorf("SetPosition(%v) = %v, want %v", tt.pos, tt.p.Get(), tt.want)
			}
			if math.Abs(tt.p.Position()-tt.pos) > 1e-9 {
				t.Errorf("Position() = %v, want %v", tt.p.Position(), tt.pos)
			}
		})
	}
}

func TestInt(t *testing.T) {
	p := NewInt("N", "iterations", 100, 10, 1000)
	p.Set(5)
	if p.Get() != 10 {
		t.Errorf("Set(5) = %d, want 10", p.Get())
	}
	if err := p.Parse("2.5"); err == nil {
		t.Error("Parse(2.5) should fail")
	}
	p.SetPosition(1)
	if p.Get() != 1000 {
		t.Errorf("SetPosition(1) = %d, want 1000", p.Get())
	}
}

func TestBool(t *testing.T) {
	p := NewBool("Grid", "", false)
	if err := p.Parse("true"); err != nil || !p.Get() {
		t.Errorf("Parse(true) = %v, %v", p.Get(), err)
	}
	if err := p.Parse("yes"); err == nil {
		t.Error("Parse(yes) should fail")
	}
}

func TestChoice(t *testing.T) {
	p := NewChoice("Mode", "", []string{"a", "b", "c"}, "b")
	if p.Get() != "b" || p.Index() != 1 {
		t.Errorf("default = %q/%d, want b/1", p.Get(), p.Index())
	}
	if err := p.Parse("c"); err != nil || p.Get() != "c" {
		t.Errorf("Parse(c) = %q, %v", p.Get(), err)
	}
	if err := p.Parse("z"); err == nil || p.Get() != "c" {
		t.Errorf("Parse(z) = %q, %v; want error and unchanged", p.Get(), err)
	}
	p.Reset()
	if p.Get() != "b" {
		t.Errorf("Reset() = %q, want b", p.Get())
	}
}

func TestOnChange(t *testing.T) {
	p := NewLinear("T", "", 1, 0, 5)
	var calls int
	p.OnChange(func(Param) { calls++ })

	p.Set(1)
	if calls != 0 {
		t.Errorf("unchanged Set notified %d times", calls)
	}
	p.Set(2)
	p.Set(9)
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestSet(t *testing.T) {
	c1 := NewLinear("C1", "", 2, 0, 5)
	n := NewInt("N", "", 100, 10, 1000)
	set := Set{c1, n}

	if err := set.Parse("N", "50"); err != nil || n.Get() != 50 {
		t.Errorf("Parse(N) = %d, %v", n.Get(), err)
	}
	if err := set.Parse("X", "1"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Parse(X) error = %v, want NOT_FOUND", err)
	}

	err := set.Apply([]Value{{"C1", "3"}, {"Unknown", "1"}})
	if err != nil || c1.Get() != 3 {
		t.Errorf("Apply() = %v, %v", c1.Get(), err)
	}

	vals := set.Values()
	if len(vals) != 2 || vals[0] != (Value{"C1", "3"}) || vals[1] != (Value{"N", "50"}) {
		t.Errorf("Values() = %v", vals)
	}

	set.Reset()
	if c1.Get() != 2 || n.Get() != 100 {
		t.Errorf("Reset() = %v, %v", c1.Get(), n.Get())
	}
}
