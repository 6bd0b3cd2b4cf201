package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/model"
	"github.com/matzehuels/springlayout/pkg/param"
)

// listCommand creates the list command, which prints every strategy with
// its parameters.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [KIND]",
		Short: "List strategies and their parameters",
		Long: `List prints the strategies of each kind with their parameters and defaults.
The strategy marked with * is the default choice.

Kinds: ` + strings.Join(model.Kinds, ", "),
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: model.Kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := model.Kinds
			if len(args) == 1 {
				kind, err := matchKind(args[0])
				if err != nil {
					return err
				}
				kinds = []string{kind}
			}
			m := model.New(model.Options{Logger: quietLogger()})
			out := cmd.OutOrStdout()
			for i, kind := range kinds {
				if i > 0 {
					fmt.Fprintln(out)
				}
				listKind(out, m, kind)
			}
			return nil
		},
	}
}

// matchKind finds a kind by name without regard to case.
func matchKind(s string) (string, error) {
	for _, k := range model.Kinds {
		if strings.EqualFold(k, s) {
			return k, nil
		}
	}
	return "", errors.New(errors.ErrCodeNotFound, "unknown kind %q (kinds: %s)", s, strings.Join(model.Kinds, ", "))
}

// listKind writes the table of one kind.
func listKind(w io.Writer, m *model.Model, kind string) {
	providers := m.Catalog().Providers(kind)
	if kind == model.KindModel {
		providers = []param.Provider{m.Settings()}
	}
	current := m.Current(kind)

	var rows [][]string
	for _, p := range providers {
		name := p.Name()
		if name == current && kind != model.KindModel {
			name += " *"
		}
		params := p.Params()
		if len(params) == 0 {
			rows = append(rows, []string{name, "", "", "", ""})
		}
		for i, pr := range params {
			if i > 0 {
				name = ""
			}
			rows = append(rows, []string{name, pr.Name(), string(pr.Kind()), pr.String(), paramRange(pr)})
		}
	}

	fmt.Fprintln(w, StyleTitle.Render(kind))
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Strategy", "Parameter", "Type", "Default", "Range").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return StyleHeader
			case col == 0:
				return StyleHighlight
			case col == 3:
				return StyleValue
			}
			return StyleDim
		})
	fmt.Fprintln(w, t.Render())
}

// paramRange describes the accepted values of a parameter.
func paramRange(p param.Param) string {
	switch p := p.(type) {
	case *param.Int:
		return fmt.Sprintf("%d .. %d", p.Min(), p.Max())
	case *param.Real:
		return fmt.Sprintf("%g .. %g (%s)", p.Min(), p.Max(), p.Scale())
	case *param.Choice:
		return strings.Join(p.Options(), " | ")
	case *param.Bool:
		return "true | false"
	}
	return ""
}
