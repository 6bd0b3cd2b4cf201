package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/param"
)

func TestListAll(t *testing.T) {
	out, err := execute(t, "list")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	for _, want := range []string{
		"Graph", "Embedder", "REModel", "PathManager", "Model",
		"QuadMesh", "Closed(X)", "Fruchterman & Reingold (91)", "Auto Temp",
		"Concave", "Rail mode", "NumPaths", "Friction",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("list output lacks %q", want)
		}
	}
}

func TestListKind(t *testing.T) {
	out, err := execute(t, "list", "embedder")
	if err != nil {
		t.Fatalf("list embedder error: %v", err)
	}
	if !strings.Contains(out, "Eades (84)") {
		t.Error("list embedder lacks Eades")
	}
	if strings.Contains(out, "QuadMesh") {
		t.Error("list embedder shows generators")
	}

	if _, err := execute(t, "list", "renderer"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("list renderer error = %v, want NOT_FOUND", err)
	}
}

func TestParamRange(t *testing.T) {
	tests := []struct {
		name string
		p    param.Param
		want string
	}{
		{"int", param.NewInt("n", "", 3, 1, 5), "1 .. 5"},
		{"linear", param.NewLinear("c", "", 1, 0, 2), "0 .. 2 (linear)"},
		{"log", param.NewLog("c", "", 1, 0.1, 10), "0.1 .. 10 (log)"},
		{"choice", param.NewChoice("d", "", []string{"x", "y"}, "x"), "x | y"},
		{"bool", param.NewBool("b", "", true), "true | false"},
		{"text", param.NewText("t", "", "file.txt"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := paramRange(tt.p); got != tt.want {
				t.Errorf("paramRange() = %q, want %q", got, tt.want)
			}
		})
	}
}
