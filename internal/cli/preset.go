package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/springlayout/pkg/pipeline"
	"github.com/matzehuels/springlayout/pkg/preset"
)

// presetCommand creates the preset management command.
func (c *CLI) presetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Convert, inspect and save presets",
		Long: `Presets store the chosen strategies and their parameters.

The format follows the file extension: .toml, .yaml/.yml, or the line-based
text format for .preset, .txt and files without extension.`,
	}

	cmd.AddCommand(c.presetConvertCommand())
	cmd.AddCommand(c.presetShowCommand())
	cmd.AddCommand(c.presetSaveCommand())

	return cmd
}

// presetConvertCommand creates the "preset convert" subcommand.
func (c *CLI) presetConvertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Convert a preset between formats",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := preset.Load(args[0])
			if err != nil {
				return err
			}
			if err := preset.Save(p, args[1]); err != nil {
				return err
			}
			printSuccess("Converted %s", args[0])
			printFile(args[1])
			return nil
		},
	}
}

// presetShowCommand creates the "preset show" subcommand.
func (c *CLI) presetShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show FILE",
		Short: "Print the settings and parameters of a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := preset.Load(args[0])
			if err != nil {
				return err
			}
			showPreset(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

// presetSaveCommand creates the "preset save" subcommand, which writes the
// configuration given by flags, with every parameter spelled out.
func (c *CLI) presetSaveCommand() *cobra.Command {
	var config configFlags
	cmd := &cobra.Command{
		Use:   "save OUT",
		Short: "Save the configuration given by flags as a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := config.options()
			opts.Logger = c.Logger
			m, err := pipeline.Build(opts, nil)
			if err != nil {
				return err
			}
			if err := preset.Save(preset.Capture(m), args[0]); err != nil {
				return err
			}
			printSuccess("Saved preset")
			printFile(args[0])
			return nil
		},
	}
	config.bind(cmd, false)
	return cmd
}

// showPreset writes the settings and a table of sections.
func showPreset(w io.Writer, p *preset.Preset) {
	keys := make([]string, 0, len(p.Settings))
	for k := range p.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintln(w, StyleDim.Render(k+":")+" "+StyleValue.Render(p.Settings[k]))
	}

	var rows [][]string
	for _, s := range p.Sections {
		if len(s.Params) == 0 {
			rows = append(rows, []string{s.Kind, s.Name, "", ""})
		}
		for i, v := range s.Params {
			kind, name := s.Kind, s.Name
			if i > 0 {
				kind, name = "", ""
			}
			rows = append(rows, []string{kind, name, v.Name, v.Value})
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Kind", "Strategy", "Parameter", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return StyleHeader
			case col == 1:
				return StyleHighlight
			case col == 3:
				return StyleValue
			}
			return StyleDim
		})
	fmt.Fprintln(w, t.Render())
}
