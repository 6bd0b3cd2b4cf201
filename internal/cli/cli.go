// Package cli implements the springlayout command-line interface.
//
// The commands drive a [model.Model] in three ways: "run" steps a batch
// simulation and writes the final drawing, "watch" shows a live terminal
// monitor, and "serve" exposes the running model over HTTP. All three take
// the same configuration flags, resolved by [pipeline.Options].
//
// # Commands
//
//   - run: simulate and write svg, png, dot or json outputs
//   - watch: live terminal monitor with keyboard control
//   - serve: HTTP viewer and control API
//   - preset: convert, show and save presets
//   - list: available strategies and their parameters
//   - cache: manage the result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/springlayout/pkg/buildinfo"
	"github.com/matzehuels/springlayout/pkg/cache"
	"github.com/matzehuels/springlayout/pkg/observability"
	"github.com/matzehuels/springlayout/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "springlayout"

	// defaultOutput is the base name of run outputs.
	defaultOutput = "layout"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Springlayout draws graphs with interactive spring embedders",
		Long:         `Springlayout lays out graphs with force-directed embedders, straightens chosen paths with rigid-edge models and searches for paths that improve the drawing.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.runCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.presetCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Cache keys are scoped by
// build so results of other versions are never reused.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cc, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(cc, cache.NewScopedKeyer(nil, buildinfo.CacheScope()), c.Logger)
	r.Hooks = observability.NewLogHooks(c.Logger)
	return r, nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/springlayout/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Configuration Flags
// =============================================================================

// configFlags select and tune the strategies of a model. Every command that
// builds a model binds them.
type configFlags struct {
	preset        string
	graph         string
	embedder      string
	rigid         string
	manager       string
	set           []string
	seed          uint64
	placement     string
	steps         int
	untilFinished bool
}

// bind registers the flags on cmd. Step limits only make sense for batch
// runs, so withSteps controls them.
func (f *configFlags) bind(cmd *cobra.Command, withSteps bool) {
	fl := cmd.Flags()
	fl.StringVar(&f.preset, "preset", "", "preset file (text, toml or yaml)")
	fl.StringVar(&f.graph, "graph", "", "graph generator, e.g. QuadMesh, Tree, \"Gilbert (Random)\"")
	fl.StringVar(&f.embedder, "embedder", "", "embedder, e.g. \"Eades (84)\"")
	fl.StringVar(&f.rigid, "rigid", "", "rigid-edge model: None, Straight, Convex, Concave")
	fl.StringVar(&f.manager, "manager", "", "path manager: Disabled, Manual, Random, Auto")
	fl.StringArrayVar(&f.set, "set", nil, "parameter override Kind.Param=value (repeatable)")
	fl.Uint64Var(&f.seed, "seed", pipeline.DefaultSeed, "random seed")
	fl.StringVar(&f.placement, "placement", "", "initial placement: uniform (default), simplex")
	if withSteps {
		fl.IntVar(&f.steps, "steps", pipeline.DefaultSteps, "maximum number of steps")
		fl.BoolVar(&f.untilFinished, "until-finished", false, "stop once the embedder reports a finished layout")
	}
	registerStrategyCompletions(cmd)
}

// options converts the flags into pipeline options.
func (f *configFlags) options() pipeline.Options {
	return pipeline.Options{
		Preset:        f.preset,
		Graph:         f.graph,
		Embedder:      f.embedder,
		Rigid:         f.rigid,
		Manager:       f.manager,
		Set:           f.set,
		Seed:          f.seed,
		Placement:     f.placement,
		Steps:         f.steps,
		UntilFinished: f.untilFinished,
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return pipeline.DefaultFormats
	}
	return strings.Split(s, ",")
}
