package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/model"
)

func treeArgs(extra ...string) []string {
	args := []string{"run", "--graph", "Tree", "--set", "Graph.depth=2", "--set", "Graph.numChilds=3", "--steps", "10"}
	return append(args, extra...)
}

func TestRunWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "out", "tree")

	if _, err := execute(t, treeArgs("-f", "svg,json", "-o", base, "--no-cache")...); err != nil {
		t.Fatalf("run error: %v", err)
	}

	data, err := os.ReadFile(base + ".json")
	if err != nil {
		t.Fatalf("json output: %v", err)
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snap.Vertices) != 13 || snap.Iteration != 10 {
		t.Errorf("snapshot has %d vertices at iteration %d, want 13 at 10", len(snap.Vertices), snap.Iteration)
	}
	if info, err := os.Stat(base + ".svg"); err != nil || info.Size() == 0 {
		t.Errorf("svg output missing: %v", err)
	}
}

func TestRunUsesCache(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", home)
	out := filepath.Join(t.TempDir(), "tree")

	for range 2 {
		if _, err := execute(t, treeArgs("-o", out)...); err != nil {
			t.Fatalf("run error: %v", err)
		}
	}
	entries, err := os.ReadDir(filepath.Join(home, appName))
	if err != nil || len(entries) == 0 {
		t.Errorf("cache dir empty after run: %v", err)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"unknown format", treeArgs("-f", "pdf", "--no-cache"), errors.ErrCodeUnsupported},
		{"unknown embedder", treeArgs("--embedder", "Kamada-Kawai", "--no-cache"), errors.ErrCodeNotFound},
		{"malformed override", treeArgs("--set", "depth=2", "--no-cache"), errors.ErrCodeInvalidArgument},
		{"negative steps", []string{"run", "--steps", "-1", "--no-cache"}, errors.ErrCodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.args = append(tt.args, "-o", filepath.Join(t.TempDir(), "out"))
			_, err := execute(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("run error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := map[string][]byte{"svg": []byte("<svg/>"), "dot": []byte("graph G {}")}

	paths, err := writeArtifacts(filepath.Join(dir, "a"), artifacts)
	if err != nil {
		t.Fatalf("writeArtifacts error: %v", err)
	}
	want := []string{filepath.Join(dir, "a.dot"), filepath.Join(dir, "a.svg")}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("paths = %v, want %v", paths, want)
	}

	paths, err = writeArtifacts(filepath.Join(dir, "b.svg"), map[string][]byte{"svg": []byte("<svg/>")})
	if err != nil {
		t.Fatalf("writeArtifacts error: %v", err)
	}
	if len(paths) != 1 || paths[0] != filepath.Join(dir, "b.svg") {
		t.Errorf("paths = %v, want the given file name", paths)
	}
}
