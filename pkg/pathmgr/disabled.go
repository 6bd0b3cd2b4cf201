package pathmgr

import (
	"github.com/matzehuels/springlayout/pkg/param"
)

// Disabled is the manager that never builds chains.
type Disabled struct {
	Base
}

// NewDisabled returns a manager without chains.
func NewDisabled() *Disabled {
	return &Disabled{Base: newBase(nil)}
}

func (d *Disabled) Name() string      { return DisabledName }
func (d *Disabled) Params() param.Set { return nil }
func (d *Disabled) Manage() error     { return d.manage(func() error { return nil }) }
