package preset

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/springlayout/pkg/embed"
	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/graph/generate"
	"github.com/matzehuels/springlayout/pkg/model"
	"github.com/matzehuels/springlayout/pkg/param"
	"github.com/matzehuels/springlayout/pkg/pathmgr"
	"github.com/matzehuels/springlayout/pkg/rigid"
)

func newModel() *model.Model {
	return model.New(model.Options{Seed: 3, Logger: log.New(io.Discard)})
}

const legacyPreset = `ApplicationSetting|antialias|true
ApplicationSetting|fixTranslation|true
ApplicationSetting|fixRotation|false
Graph|Tree
Control|depth|2
Control|numChilds|3
Embedder|Fruchterman & Reingold (91)
Control|C|100
Control|Grid|true
Control|Obsolete|1
REModel|Straight
Control|Rail mode|true
PathManager|Genetic
Control|Population|20
Model|default
Control|Friction|0.5
some garbage line
`

func TestDecodeText(t *testing.T) {
	p, err := Decode(strings.NewReader(legacyPreset), FormatText)
	require.NoError(t, err)

	require.Equal(t, "true", p.Settings[SettingFixTranslation])
	require.Equal(t, "true", p.Settings["antialias"])
	require.Len(t, p.Sections, 5)

	s, ok := p.Section(model.KindEmbedder)
	require.True(t, ok)
	require.Equal(t, embed.FruchtermanReingoldName, s.Name)
	require.Equal(t, []param.Value{
		{Name: "C", Value: "100"},
		{Name: "Grid", Value: "true"},
		{Name: "Obsolete", Value: "1"},
	}, s.Params)

	_, ok = p.Section("Renderer")
	require.False(t, ok)
}

func TestControlBeforeSectionIsDropped(t *testing.T) {
	p, err := Decode(strings.NewReader("Control|C|1\nEmbedder|Eades (84)\n"), FormatText)
	require.NoError(t, err)
	require.Len(t, p.Sections, 1)
	require.Empty(t, p.Sections[0].Params)
}

func TestApply(t *testing.T) {
	p, err := Decode(strings.NewReader(legacyPreset), FormatText)
	require.NoError(t, err)

	m := newModel()
	require.NoError(t, Apply(m, p))

	snap := m.Snapshot()
	require.Equal(t, generate.TreeName, snap.Generator)
	require.Len(t, snap.Vertices, 13, "tree of depth 2 with 3 children")
	require.Equal(t, embed.FruchtermanReingoldName, snap.Embedder)
	require.Equal(t, rigid.StraightName, snap.Rigid)
	require.Equal(t, pathmgr.DisabledName, snap.Manager, "unknown manager is skipped")
	require.True(t, m.FixTranslation())
	require.False(t, m.FixRotation())
	require.Equal(t, 0.5, m.Friction())

	values := m.Values(model.KindEmbedder)
	require.Contains(t, values, param.Value{Name: "C", Value: "100"})
	require.Contains(t, values, param.Value{Name: "Grid", Value: "true"})
}

func TestConfigureDoesNotGenerate(t *testing.T) {
	p := &Preset{Sections: []Section{{Kind: model.KindGraph, Name: generate.GilbertName}}}
	m := newModel()
	require.NoError(t, Configure(m, p))
	require.Equal(t, generate.GilbertName, m.Current(model.KindGraph))
	require.Nil(t, m.Graph())
}

func TestApplyErrors(t *testing.T) {
	tests := []struct {
		name   string
		preset *Preset
		code   errors.Code
	}{
		{
			"malformed setting",
			&Preset{Settings: map[string]string{SettingFixRotation: "maybe"}},
			errors.ErrCodeInvalidPreset,
		},
		{
			"malformed parameter",
			&Preset{Sections: []Section{{
				Kind: model.KindEmbedder, Name: embed.EadesName,
				Params: []param.Value{{Name: "C1", Value: "strong"}},
			}}},
			errors.ErrCodeInvalidPreset,
		},
		{
			"loader without file",
			&Preset{Sections: []Section{{Kind: model.KindGraph, Name: generate.MatrixName}}},
			errors.ErrCodeInvalidArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Apply(newModel(), tt.preset)
			require.True(t, errors.Is(err, tt.code), "error %v, want code %s", err, tt.code)
		})
	}
}

func TestCaptureApplyRoundTrip(t *testing.T) {
	src := newModel()
	require.NoError(t, src.UseEmbedder(embed.FruchtermanReingoldName))
	require.NoError(t, src.SetParam(model.KindEmbedder, "faExp", "3"))
	require.NoError(t, src.UseRigid(rigid.ConcaveName))
	require.NoError(t, src.UseManager(pathmgr.RandomName))
	require.NoError(t, src.SetParam(model.KindPathManager, "NumPaths", "7"))
	require.NoError(t, src.SetParam(model.KindGraph, "w", "3"))
	require.NoError(t, src.SetParam(model.KindGraph, "h", "3"))
	src.SetFixRotation(true)

	captured := Capture(src)
	require.Len(t, captured.Sections, len(model.Kinds))

	for _, format := range []Format{FormatText, FormatTOML, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, captured, format))
			decoded, err := Decode(&buf, format)
			require.NoError(t, err)
			require.Equal(t, captured, decoded)

			dst := newModel()
			require.NoError(t, Apply(dst, decoded))
			require.Equal(t, captured, Capture(dst))
			require.Len(t, dst.Snapshot().Vertices, 9)
		})
	}
}

func TestDecodeRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"unknown kind", FormatYAML, "sections:\n  - kind: Renderer\n    name: svg\n"},
		{"separator in name", FormatYAML, "sections:\n  - kind: Embedder\n    name: \"a|b\"\n"},
		{"bad toml", FormatTOML, "sections = [\n"},
		{"bad yaml", FormatYAML, "sections: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input), tt.format)
			require.True(t, errors.Is(err, errors.ErrCodeInvalidPreset), "error %v", err)
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"mesh.preset", FormatText},
		{"mesh.txt", FormatText},
		{"mesh.TOML", FormatTOML},
		{"conf/mesh.yml", FormatYAML},
		{"mesh.yaml", FormatYAML},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if err != nil || got != tt.want {
			t.Errorf("FormatFromPath(%q) = %q, %v, want %q", tt.path, got, err, tt.want)
		}
	}
	if _, err := FormatFromPath("mesh.json"); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("FormatFromPath(json) error = %v, want UNSUPPORTED", err)
	}
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	p := Capture(newModel())

	for _, name := range []string{"a.preset", "a.toml", "a.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(p, path))
		got, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, p, got, name)
	}

	_, err := Load(filepath.Join(dir, "missing.toml"))
	require.True(t, errors.Is(err, errors.ErrCodeFileNotFound))

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("= nope"), 0o644))
	_, err = Load(bad)
	require.True(t, errors.Is(err, errors.ErrCodeInvalidPreset))
}
