// Command panelmap lays out LED pixels on every face of a structure mesh and
// writes the per-panel transforms and wiring order as JSON.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/banshee-data/ledpanel/internal/config"
	"github.com/banshee-data/ledpanel/internal/export"
	"github.com/banshee-data/ledpanel/internal/fsutil"
	"github.com/banshee-data/ledpanel/internal/mesh"
	"github.com/banshee-data/ledpanel/internal/monitoring"
	"github.com/banshee-data/ledpanel/internal/panel"
	"github.com/banshee-data/ledpanel/internal/preview"
	"github.com/banshee-data/ledpanel/internal/timeutil"
	"github.com/banshee-data/ledpanel/internal/version"
)

var (
	meshPath    = flag.String("mesh", "", "Structure mesh JSON exported from the model (required)")
	configPath  = flag.String("config", "", "Layout config (.json, .yaml or .yml); built-in defaults when empty")
	outPath     = flag.String("out", "panels.json", "Output document path")
	workers     = flag.Int("workers", 0, "Panels processed in parallel (0 uses the config value, then one per CPU)")
	plotDir     = flag.String("plot-dir", "", "Write a PNG plot per panel into this directory")
	htmlPath    = flag.String("html", "", "Write an HTML scene preview to this path")
	strict      = flag.Bool("strict", false, "Exit with status 2 when any panel fails")
	verbose     = flag.Bool("v", false, "Log the per-stage geometry trace")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// Exit codes.
const (
	exitOK     = 0
	exitError  = 1
	exitFailed = 2
)

var errNoPanels = errors.New("mesh has no faces")

type runOptions struct {
	Mesh    string
	Config  string
	Out     string
	Workers int
	PlotDir string
	HTML    string
}

type summary struct {
	Panels   int
	Failures int
	Pixels   int
	RunID    string
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	logger := newLogger(os.Stderr, *verbose)
	bindMonitoring(logger, *verbose)

	if *meshPath == "" {
		logger.Fatal().Msg("-mesh is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	opts := runOptions{
		Mesh:    *meshPath,
		Config:  *configPath,
		Out:     *outPath,
		Workers: *workers,
		PlotDir: *plotDir,
		HTML:    *htmlPath,
	}
	clock := timeutil.RealClock{}
	start := clock.Now()
	sum, err := run(ctx, opts, fsutil.OSFileSystem{}, clock, logger)
	stop()
	os.Exit(exitCode(sum, err, *strict, clock.Since(start), logger))
}

func exitCode(sum summary, err error, strict bool, elapsed time.Duration, logger zerolog.Logger) int {
	if err != nil {
		logger.Error().Err(err).Msg("layout failed")
		return exitError
	}
	logger.Info().
		Str("run_id", sum.RunID).
		Int("panels", sum.Panels).
		Int("failures", sum.Failures).
		Int("pixels", sum.Pixels).
		Dur("elapsed", elapsed).
		Msg("layout complete")
	if strict && sum.Failures > 0 {
		return exitFailed
	}
	return exitOK
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

// bindMonitoring routes library logging through logger.
func bindMonitoring(logger zerolog.Logger, verbose bool) {
	monitoring.SetLogger(func(format string, v ...interface{}) {
		logger.Info().Msgf(format, v...)
	})
	if !verbose {
		monitoring.SetDebugLogger(nil)
		return
	}
	monitoring.SetDebugLogger(func(format string, v ...interface{}) {
		logger.Debug().Msgf(format, v...)
	})
}

func loadConfig(fsys fsutil.FileSystem, path string) (*config.LayoutConfig, error) {
	if path == "" {
		return config.EmptyLayoutConfig(), nil
	}
	return config.LoadLayoutConfig(fsys, path)
}

func run(ctx context.Context, o runOptions, fsys fsutil.FileSystem, clock timeutil.Clock, logger zerolog.Logger) (summary, error) {
	cfg, err := loadConfig(fsys, o.Config)
	if err != nil {
		return summary{}, err
	}
	opts, err := cfg.PanelOptions()
	if err != nil {
		return summary{}, fmt.Errorf("invalid configuration: %w", err)
	}
	n := o.Workers
	if n <= 0 {
		n = cfg.GetWorkers()
	}

	structures, err := mesh.Load(fsys, o.Mesh)
	if err != nil {
		return summary{}, err
	}
	polys, err := mesh.Polygons(structures)
	if err != nil {
		return summary{}, err
	}
	if len(polys) == 0 {
		return summary{}, errNoPanels
	}
	lo, hi := panel.Bounds(polys)
	logger.Info().
		Str("mesh", o.Mesh).
		Int("structures", len(structures)).
		Int("polygons", len(polys)).
		Str("bounds", fmt.Sprintf("%.3f .. %.3f", [3]float64{lo.X, lo.Y, lo.Z}, [3]float64{hi.X, hi.Y, hi.Z})).
		Int("workers", n).
		Msg("mesh loaded")

	for name := range opts.Overrides {
		if !hasPanel(polys, name) {
			logger.Warn().Str("panel", name).Msg("override does not match any panel")
		}
	}

	outcomes := panel.ProcessAll(ctx, polys, opts, n)
	if err := ctx.Err(); err != nil {
		return summary{}, fmt.Errorf("layout interrupted: %w", err)
	}

	var results []panel.Result
	sum := summary{}
	for _, out := range outcomes {
		if out.Err != nil {
			sum.Failures++
			logger.Warn().Str("panel", out.Name).Str("kind", export.Kind(out.Err)).Err(out.Err).Msg("panel failed")
			continue
		}
		results = append(results, out.Result)
		sum.Pixels += len(out.Result.Lights)
	}
	sum.Panels = len(results)

	doc := export.NewDocument(outcomes, clock)
	sum.RunID = doc.RunID
	if err := doc.Write(fsys, o.Out); err != nil {
		return sum, err
	}
	logger.Info().Str("path", o.Out).Msg("wrote layout")

	if o.PlotDir != "" {
		count, err := preview.PlotAll(fsys, results, o.PlotDir)
		if err != nil {
			return sum, fmt.Errorf("failed to write plots: %w", err)
		}
		logger.Info().Str("dir", o.PlotDir).Int("plots", count).Msg("wrote plots")
	}
	if o.HTML != "" {
		var buf bytes.Buffer
		if err := preview.WriteSceneHTML(&buf, results); err != nil {
			return sum, err
		}
		if err := fsutil.WriteFileAll(fsys, o.HTML, buf.Bytes()); err != nil {
			return sum, err
		}
		logger.Info().Str("path", o.HTML).Msg("wrote scene preview")
	}
	return sum, nil
}

func hasPanel(polys []panel.Polygon, name string) bool {
	for _, p := range polys {
		if p.Name == name {
			return true
		}
	}
	return false
}
