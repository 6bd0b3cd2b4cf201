// Package preset saves and restores the configuration of a layout model.
//
// A [Preset] records the model settings and, per strategy kind, the name
// of the strategy in use together with its parameter values. It can be
// captured from a running model and applied to another one.
//
// # Formats
//
// Three encodings are supported, chosen by file extension:
//
//   - text (.preset, .txt): one record per line, fields separated by "|":
//     ApplicationSetting|key|value, Kind|Name, Control|param|value
//   - TOML (.toml)
//   - YAML (.yaml, .yml)
//
// The text format is lenient: lines it does not understand are skipped.
// Applying a preset is lenient too: unknown strategy and parameter names
// are ignored, so presets from other versions still load.
package preset

import (
	"slices"
	"strconv"

	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/model"
	"github.com/matzehuels/springlayout/pkg/param"
)

// Setting keys.
const (
	SettingFixTranslation = "fixTranslation"
	SettingFixRotation    = "fixRotation"
)

// modelSection is the name written for the Model kind, which has no
// alternatives to choose from.
const modelSection = "default"

// Preset is a saved model configuration.
type Preset struct {
	Settings map[string]string `json:"settings,omitempty" toml:"settings,omitempty" yaml:"settings,omitempty"`
	Sections []Section         `json:"sections" toml:"sections" yaml:"sections"`
}

// Section holds the parameters of one strategy.
type Section struct {
	Kind   string        `json:"kind" toml:"kind" yaml:"kind"`
	Name   string        `json:"name" toml:"name" yaml:"name"`
	Params []param.Value `json:"params,omitempty" toml:"params,omitempty" yaml:"params,omitempty"`
}

// Section returns the first section of a kind.
func (p *Preset) Section(kind string) (Section, bool) {
	for _, s := range p.Sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return Section{}, false
}

// Validate checks kinds and names. Decoders call it; the text decoder
// never produces an invalid preset.
func (p *Preset) Validate() error {
	for key := range p.Settings {
		if err := errors.ValidateName(key); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPreset, err, "setting %q", key)
		}
	}
	for i, s := range p.Sections {
		if !slices.Contains(model.Kinds, s.Kind) {
			return errors.New(errors.ErrCodeInvalidPreset, "section %d: unknown kind %q", i, s.Kind)
		}
		if err := errors.ValidateName(s.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPreset, err, "section %d (%s)", i, s.Kind)
		}
		for _, v := range s.Params {
			if err := errors.ValidateName(v.Name); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPreset, err, "section %s|%s", s.Kind, s.Name)
			}
		}
	}
	return nil
}

// =============================================================================
// Capture / Apply
// =============================================================================

// Capture records the current configuration of m.
func Capture(m *model.Model) *Preset {
	p := &Preset{
		Settings: map[string]string{
			SettingFixTranslation: strconv.FormatBool(m.FixTranslation()),
			SettingFixRotation:    strconv.FormatBool(m.FixRotation()),
		},
	}
	for _, kind := range model.Kinds {
		name := m.Current(kind)
		if kind == model.KindModel {
			name = modelSection
		}
		p.Sections = append(p.Sections, Section{Kind: kind, Name: name, Params: m.Values(kind)})
	}
	return p
}

// Apply configures m from p: settings first, then the parameters of every
// section, then it switches to the named generator (building a new graph),
// embedder, rigid-edge model and path manager, in that order.
func Apply(m *model.Model, p *Preset) error {
	return apply(m, p, true)
}

// Configure is Apply without building a graph. The named generator is
// selected, so a later [model.Model.Generate] uses it.
func Configure(m *model.Model, p *Preset) error {
	return apply(m, p, false)
}

func apply(m *model.Model, p *Preset, generate bool) error {
	for key, value := range p.Settings {
		on, err := strconv.ParseBool(value)
		switch key {
		case SettingFixTranslation:
			if err == nil {
				m.SetFixTranslation(on)
			}
		case SettingFixRotation:
			if err == nil {
				m.SetFixRotation(on)
			}
		default:
			continue
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPreset, err, "setting %s", key)
		}
	}

	selected := map[string]string{}
	for _, s := range p.Sections {
		err := m.ApplyParams(s.Kind, s.Name, s.Params)
		switch {
		case errors.Is(err, errors.ErrCodeNotFound):
			m.Logger().Debug("preset section skipped", "kind", s.Kind, "name", s.Name)
			continue
		case err != nil:
			return errors.Wrap(errors.ErrCodeInvalidPreset, err, "section %s|%s", s.Kind, s.Name)
		}
		selected[s.Kind] = s.Name
	}

	if name, ok := selected[model.KindGraph]; ok {
		if err := m.UseGenerator(name); err != nil {
			return err
		}
		if generate {
			if err := m.Generate(); err != nil {
				return err
			}
		}
	}
	if name, ok := selected[model.KindEmbedder]; ok {
		if err := m.UseEmbedder(name); err != nil {
			return err
		}
	}
	if name, ok := selected[model.KindRigid]; ok {
		if err := m.UseRigid(name); err != nil {
			return err
		}
	}
	if name, ok := selected[model.KindPathManager]; ok {
		if err := m.UseManager(name); err != nil {
			return err
		}
	}
	return nil
}
