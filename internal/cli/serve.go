package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	slerrors "github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/model"
	"github.com/matzehuels/springlayout/pkg/observability"
	"github.com/matzehuels/springlayout/pkg/pipeline"
	"github.com/matzehuels/springlayout/pkg/preset"
	"github.com/matzehuels/springlayout/pkg/render"
)

const shutdownTimeout = 5 * time.Second

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	config   configFlags
	addr     string
	watch    bool // reload the preset file on change
	throttle time.Duration
	width    int
	height   int
}

// serveCommand creates the HTTP viewer.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:     ":8080",
		throttle: 10 * time.Millisecond,
		width:    pipeline.DefaultWidth,
		height:   pipeline.DefaultHeight,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a running layout over HTTP",
		Long: `Serve runs the simulation and exposes it over HTTP.

Routes:
  GET    /api/snapshot              current state as JSON
  GET    /api/snapshot.svg|png|dot  current drawing (?graphviz=1 renders dot with neato)
  POST   /api/run, /api/pause       resume or pause stepping
  POST   /api/reset                 reset vertex positions
  POST   /api/commands/{name}       run a path manager command
  POST   /api/select/{id}           extend the selection by a vertex
  POST   /api/selection/store       store the selection as a path
  DELETE /api/selection             drop the selection
  GET    /api/preset                current configuration (?format=toml|yaml|text)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	opts.config.bind(cmd, false)
	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "reload the preset file when it changes")
	cmd.Flags().DurationVar(&opts.throttle, "throttle", opts.throttle, "minimum duration of one step")
	cmd.Flags().IntVar(&opts.width, "width", opts.width, "canvas width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", opts.height, "canvas height in pixels")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	if opts.watch && opts.config.preset == "" {
		return slerrors.New(slerrors.ErrCodeInvalidArgument, "--watch needs --preset")
	}
	popts := opts.config.options()
	popts.Logger = c.Logger
	m, err := pipeline.Build(popts, observability.NewLogHooks(c.Logger))
	if err != nil {
		return err
	}
	m.SetRunning(true)

	s := newServer(m, render.Options{Width: opts.width, Height: opts.height}, c.Logger)
	srv := &http.Server{Addr: opts.addr, Handler: s.routes(), ReadHeaderTimeout: 5 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := m.Run(ctx, model.RunOptions{Throttle: opts.throttle, Paused: true})
		return err
	})
	g.Go(func() error {
		c.Logger.Info("serving", "addr", opts.addr, "run", m.ID())
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if opts.watch {
		g.Go(func() error { return s.watchPreset(ctx, opts.config.preset) })
	}
	return g.Wait()
}

// =============================================================================
// Server
// =============================================================================

// server exposes one model over HTTP. The model synchronizes itself, so
// handlers call it directly from any goroutine.
type server struct {
	model  *model.Model
	render render.Options
	logger *log.Logger
}

func newServer(m *model.Model, opts render.Options, logger *log.Logger) *server {
	return &server{model: m, render: opts, logger: logger}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleIndex)
	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/snapshot.svg", s.handleDrawing(render.FormatSVG))
		r.Get("/snapshot.png", s.handleDrawing(render.FormatPNG))
		r.Get("/snapshot.dot", s.handleDOT)
		r.Post("/run", s.handleRunning(true))
		r.Post("/pause", s.handleRunning(false))
		r.Post("/reset", s.handleReset)
		r.Post("/commands/{name}", s.handleCommand)
		r.Post("/select/{id}", s.handleSelect)
		r.Post("/selection/store", s.handleStoreSelection)
		r.Delete("/selection", s.handleClearSelection)
		r.Get("/preset", s.handlePreset)
	})
	return r
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "duration", time.Since(start))
	})
}

// =============================================================================
// Handlers
// =============================================================================

const indexPage = `<!doctype html>
<html><head><title>springlayout</title></head>
<body style="margin:0;background:#fafafa">
<img id="drawing" src="/api/snapshot.svg" alt="layout">
<script>
setInterval(function () {
  document.getElementById("drawing").src = "/api/snapshot.svg?t=" + Date.now();
}, 200);
</script>
</body></html>
`

func (s *server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexPage))
}

func (s *server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := render.JSON(&buf, s.model.Snapshot()); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf.Bytes())
}

func (s *server) handleDrawing(format render.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var buf bytes.Buffer
		var err error
		switch format {
		case render.FormatPNG:
			w.Header().Set("Content-Type", "image/png")
			err = render.PNG(&buf, s.model.Snapshot(), s.render)
		default:
			w.Header().Set("Content-Type", "image/svg+xml")
			err = render.SVG(&buf, s.model.Snapshot(), s.render)
		}
		if err != nil {
			s.writeError(w, err)
			return
		}
		_, _ = w.Write(buf.Bytes())
	}
}

// handleDOT serves the DOT source, or with ?graphviz=1 the drawing neato
// makes of it with the positions pinned.
func (s *server) handleDOT(w http.ResponseWriter, r *http.Request) {
	dot := render.DOT(s.model.Snapshot(), s.render)
	if ok, _ := strconv.ParseBool(r.URL.Query().Get("graphviz")); !ok {
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(dot))
		return
	}
	svg, err := render.GraphvizSVG(r.Context(), dot)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *server) handleRunning(on bool) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.model.SetRunning(on)
		s.writeStatus(w)
	}
}

func (s *server) handleReset(w http.ResponseWriter, _ *http.Request) {
	if err := s.model.ResetVertices(); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeStatus(w)
}

func (s *server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if err := s.model.Command(chi.URLParam(r, "name")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeStatus(w)
}

func (s *server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, slerrors.Wrap(slerrors.ErrCodeInvalidArgument, err, "vertex id"))
		return
	}
	if err := s.model.Select(id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeStatus(w)
}

func (s *server) handleStoreSelection(w http.ResponseWriter, _ *http.Request) {
	if err := s.model.StoreSelection(); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeStatus(w)
}

func (s *server) handleClearSelection(w http.ResponseWriter, _ *http.Request) {
	s.model.ClearSelection()
	s.writeStatus(w)
}

func (s *server) handlePreset(w http.ResponseWriter, r *http.Request) {
	format := preset.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = preset.FormatTOML
	}
	var buf bytes.Buffer
	if err := preset.Encode(&buf, preset.Capture(s.model), format); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// status is the reply of control routes.
type status struct {
	Running   bool     `json:"running"`
	Iteration int      `json:"iteration"`
	Commands  []string `json:"commands,omitempty"`
}

func (s *server) writeStatus(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, status{
		Running:   s.model.Running(),
		Iteration: s.model.Iteration(),
		Commands:  s.model.Commands(),
	})
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	code := slerrors.GetCode(err)
	st := httpStatus(code)
	if st == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, st, map[string]string{"error": slerrors.UserMessage(err), "code": string(code)})
}

// httpStatus maps error codes to HTTP status codes.
func httpStatus(code slerrors.Code) int {
	switch code {
	case slerrors.ErrCodeNotFound, slerrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case slerrors.ErrCodeInvalidArgument, slerrors.ErrCodeInvalidName, slerrors.ErrCodeInvalidFormat,
		slerrors.ErrCodeInvalidPreset, slerrors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case slerrors.ErrCodeUnsupported:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, st int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(st)
	_ = json.NewEncoder(w).Encode(v)
}

// =============================================================================
// Preset Reloading
// =============================================================================

// watchPreset applies the preset file to the model every time it is
// written. The directory is watched because editors often replace files
// instead of writing them in place.
func (s *server) watchPreset(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return slerrors.Wrap(slerrors.ErrCodeInternal, err, "create file watcher")
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return slerrors.Wrap(slerrors.ErrCodeInvalidPath, err, "watch %s", path)
	}
	s.logger.Info("watching preset", "path", target)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			_ = s.reload(target)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("file watcher", "error", err)
		}
	}
}

// reload applies the preset at path. A file that does not load is logged
// and ignored, so a save in the middle of an edit does no harm.
func (s *server) reload(path string) error {
	p, err := preset.Load(path)
	if err != nil {
		s.logger.Warn("preset not reloaded", "path", path, "error", slerrors.UserMessage(err))
		return err
	}
	if err := preset.Apply(s.model, p); err != nil {
		s.logger.Warn("preset not applied", "path", path, "error", slerrors.UserMessage(err))
		return err
	}
	s.logger.Info("preset reloaded", "path", path, "run", s.model.ID())
	return nil
}
