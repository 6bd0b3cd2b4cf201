package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/preset"
)

func TestPresetSaveConvertShow(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "tree.toml")
	yamlPath := filepath.Join(dir, "tree.yaml")
	textPath := filepath.Join(dir, "tree.preset")

	_, err := execute(t, "preset", "save", tomlPath, "--graph", "Tree", "--rigid", "Convex", "--set", "Graph.depth=2")
	require.NoError(t, err)

	p, err := preset.Load(tomlPath)
	require.NoError(t, err)
	s, ok := p.Section("Graph")
	require.True(t, ok)
	require.Equal(t, "Tree", s.Name)

	_, err = execute(t, "preset", "convert", tomlPath, yamlPath)
	require.NoError(t, err)
	_, err = execute(t, "preset", "convert", yamlPath, textPath)
	require.NoError(t, err)

	back, err := preset.Load(textPath)
	require.NoError(t, err)
	require.Len(t, back.Sections, len(p.Sections))
	for i, s := range p.Sections {
		require.Equal(t, s.Kind, back.Sections[i].Kind)
		require.Equal(t, s.Name, back.Sections[i].Name)
		require.Len(t, back.Sections[i].Params, len(s.Params))
	}

	out, err := execute(t, "preset", "show", yamlPath)
	require.NoError(t, err)
	for _, want := range []string{"Tree", "depth", "Convex", "Parameter"} {
		require.True(t, strings.Contains(out, want), "show output lacks %q", want)
	}
}

func TestPresetErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "preset", "show", filepath.Join(dir, "missing.toml"))
	require.True(t, errors.Is(err, errors.ErrCodeFileNotFound), "got %v", err)

	_, err = execute(t, "preset", "save", filepath.Join(dir, "p.toml"), "--embedder", "Spring")
	require.True(t, errors.Is(err, errors.ErrCodeNotFound), "got %v", err)

	_, err = execute(t, "preset", "convert", "only-one-arg")
	require.Error(t, err)
}
