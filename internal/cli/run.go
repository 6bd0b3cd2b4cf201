package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/observability"
	"github.com/matzehuels/springlayout/pkg/pipeline"
)

// runOpts holds the command-line flags for the run command.
type runOpts struct {
	config  configFlags
	output  string   // base path of the outputs; the format is appended
	formats []string // svg, png, dot, json
	width   int
	height  int
	forces  bool // draw force vectors
	labels  bool // draw vertex ids
	noCache bool
	refresh bool
}

// runCommand creates the run command for batch simulations.
func (c *CLI) runCommand() *cobra.Command {
	var formatsStr string
	opts := runOpts{width: pipeline.DefaultWidth, height: pipeline.DefaultHeight}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate a layout and write the final drawing",
		Long: `Run builds a model from a preset and flags, steps it and renders the result.

Examples:
  springlayout run --graph QuadMesh --set Graph.w=12 --set Graph.h=12 -f svg,png
  springlayout run --preset cylinder.toml --manager Auto --until-finished -o cylinder`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			return c.runRun(cmd.Context(), opts)
		},
	}

	opts.config.bind(cmd, true)
	cmd.Flags().StringVarP(&opts.output, "output", "o", defaultOutput, "output base path; the format is appended as extension")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot, json (comma-separated)")
	cmd.Flags().IntVar(&opts.width, "width", opts.width, "canvas width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", opts.height, "canvas height in pixels")
	cmd.Flags().BoolVar(&opts.forces, "forces", false, "draw embedder forces")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "draw vertex ids")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if cached")

	return cmd
}

// runRun executes the simulation and writes one file per format.
func (c *CLI) runRun(ctx context.Context, opts runOpts) error {
	popts := opts.config.options()
	popts.Formats = opts.formats
	popts.Width = opts.width
	popts.Height = opts.height
	popts.Forces = opts.forces
	popts.Labels = opts.labels
	popts.Refresh = opts.refresh
	popts.Logger = c.Logger
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Simulating...")
	runner.Hooks = observability.Multi(runner.Hooks, &spinnerHooks{spinner: spinner, total: popts.Steps})
	spinner.Start()

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		spinner.StopWithError("Simulation failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Simulated %d steps", result.Stats.Steps))

	paths, err := writeArtifacts(opts.output, result.Artifacts)
	if err != nil {
		return err
	}

	printSuccess("Layout ready")
	printStats(result.Stats, result.CacheInfo.SnapshotHit)
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// writeArtifacts writes each artifact to base.<format> and returns the
// paths in format order. A base already ending in the only format's
// extension is used as is.
func writeArtifacts(base string, artifacts map[string][]byte) ([]string, error) {
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	if len(formats) == 1 && strings.EqualFold(filepath.Ext(base), "."+formats[0]) {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create output directory")
		}
	}

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := base + "." + f
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// spinnerHooks reports step progress on a spinner.
type spinnerHooks struct {
	observability.NoopSimulationHooks
	spinner *Spinner
	total   int
}

func (h *spinnerHooks) OnStep(_ context.Context, info observability.StepInfo) {
	if info.Iteration%25 != 0 {
		return
	}
	h.spinner.SetMessage("Simulating... step %d/%d, %d paths", info.Iteration, h.total, info.Paths)
}
