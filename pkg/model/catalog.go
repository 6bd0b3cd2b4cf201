package model

import (
	"math/rand/v2"

	"github.com/matzehuels/springlayout/pkg/embed"
	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/graph/generate"
	"github.com/matzehuels/springlayout/pkg/param"
	"github.com/matzehuels/springlayout/pkg/pathmgr"
	"github.com/matzehuels/springlayout/pkg/rigid"
)

// Strategy kinds, as used in presets and parameter overrides.
const (
	KindGraph       = "Graph"
	KindEmbedder    = "Embedder"
	KindRigid       = "REModel"
	KindPathManager = "PathManager"
	KindModel       = "Model"
)

// Kinds lists the strategy kinds in the order a configuration is applied.
var Kinds = []string{KindGraph, KindEmbedder, KindRigid, KindPathManager, KindModel}

// ErrUnknownStrategy is returned when a name matches no catalog entry.
var ErrUnknownStrategy = errors.New(errors.ErrCodeNotFound, "unknown strategy")

// Catalog holds one instance of every strategy a model can switch to.
//
// Instances keep their parameters while they are not in use, so switching
// back and forth preserves settings. A catalog belongs to one model: its
// embedders report to that model's environment and its path managers draw
// from that model's random source.
type Catalog struct {
	Generators []generate.Generator
	Embedders  []embed.Embedder
	Rigids     []rigid.Model
	Managers   []pathmgr.Manager
}

// NewCatalog builds the standard catalog. The first entry of each list is
// the default.
func NewCatalog(env embed.Env, rng *rand.Rand) *Catalog {
	return &Catalog{
		Generators: generate.All(),
		Embedders: []embed.Embedder{
			embed.NewEades(env),
			embed.NewFruchtermanReingold(env),
		},
		Rigids: []rigid.Model{
			rigid.NewNone(),
			rigid.NewStraight(),
			rigid.NewConvex(),
			rigid.NewConcave(),
		},
		Managers: []pathmgr.Manager{
			pathmgr.NewDisabled(),
			pathmgr.NewManual(rng),
			pathmgr.NewRandom(rng),
			pathmgr.NewAuto(rng),
		},
	}
}

func lookup[T param.Provider](kind string, items []T, name string) (T, error) {
	for _, it := range items {
		if it.Name() == name {
			return it, nil
		}
	}
	var zero T
	return zero, errors.Wrap(errors.ErrCodeNotFound, ErrUnknownStrategy, "unknown %s %q", kind, name)
}

func names[T param.Provider](items []T) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name()
	}
	return out
}

// Generator returns the generator called name.
func (c *Catalog) Generator(name string) (generate.Generator, error) {
	return lookup(KindGraph, c.Generators, name)
}

// Embedder returns the embedder called name.
func (c *Catalog) Embedder(name string) (embed.Embedder, error) {
	return lookup(KindEmbedder, c.Embedders, name)
}

// Rigid returns the rigid-edge model called name.
func (c *Catalog) Rigid(name string) (rigid.Model, error) {
	return lookup(KindRigid, c.Rigids, name)
}

// Manager returns the path manager called name.
func (c *Catalog) Manager(name string) (pathmgr.Manager, error) {
	return lookup(KindPathManager, c.Managers, name)
}

// Names returns the entry names of a kind, or nil for an unknown kind.
func (c *Catalog) Names(kind string) []string {
	switch kind {
	case KindGraph:
		return names(c.Generators)
	case KindEmbedder:
		return names(c.Embedders)
	case KindRigid:
		return names(c.Rigids)
	case KindPathManager:
		return names(c.Managers)
	}
	return nil
}

// Providers returns the entries of a kind as parameter providers.
func (c *Catalog) Providers(kind string) []param.Provider {
	var out []param.Provider
	switch kind {
	case KindGraph:
		for _, it := range c.Generators {
			out = append(out, it)
		}
	case KindEmbedder:
		for _, it := range c.Embedders {
			out = append(out, it)
		}
	case KindRigid:
		for _, it := range c.Rigids {
			out = append(out, it)
		}
	case KindPathManager:
		for _, it := range c.Managers {
			out = append(out, it)
		}
	}
	return out
}

// Provider returns the entry of a kind called name.
func (c *Catalog) Provider(kind, name string) (param.Provider, error) {
	return lookup(kind, c.Providers(kind), name)
}
