// Command objects-replay replays a scenario of segment and place insertions
// through the object updater, printing per-cycle statistics and optionally
// writing an HTML scene view, a cycle plot and a SQLite run log.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/banshee-data/objectgraph/internal/config"
	"github.com/banshee-data/objectgraph/internal/monitor"
	"github.com/banshee-data/objectgraph/internal/objects"
	"github.com/banshee-data/objectgraph/internal/runlog"
	"github.com/banshee-data/objectgraph/internal/scenario"
	"github.com/banshee-data/objectgraph/internal/scenegraph"
	"github.com/banshee-data/objectgraph/internal/timeutil"
	"github.com/banshee-data/objectgraph/internal/version"
)

const program = "objects-replay"

// Timer names for the replay loop.
const (
	timingApply  = "replay/apply"
	timingUpdate = "replay/update"
)

var errUsage = errors.New("usage error")

type options struct {
	configPath   string
	scenarioPath string
	htmlPath     string
	plotPath     string
	dbPath       string
	logLevel     string
	showVersion  bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet(program, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", config.DefaultConfigPath, "Object updater config (JSON)")
	fs.StringVar(&o.scenarioPath, "scenario", "", "Scenario file to replay (JSON, required)")
	fs.StringVar(&o.htmlPath, "html", "", "Write the final scene as an HTML scatter to this file")
	fs.StringVar(&o.plotPath, "plot", "", "Write a per-cycle statistics plot to this file (.png, .svg, .pdf)")
	fs.StringVar(&o.dbPath, "db", "", "Record the run in this SQLite database")
	fs.StringVar(&o.logLevel, "log-level", "ops", "Updater logging: none, ops, diag or trace")
	fs.BoolVar(&o.showVersion, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.showVersion {
		return o, nil
	}
	if o.scenarioPath == "" {
		fmt.Fprintln(stderr, "-scenario is required")
		fs.Usage()
		return o, errUsage
	}
	return o, nil
}

// logWriters routes the updater streams at or above level to w.
func logWriters(level string, w io.Writer) (objects.LogWriters, error) {
	switch level {
	case "none":
		return objects.LogWriters{}, nil
	case "ops":
		return objects.LogWriters{Ops: w}, nil
	case "diag":
		return objects.LogWriters{Ops: w, Diag: w}, nil
	case "trace":
		return objects.LogWriters{Ops: w, Diag: w, Trace: w}, nil
	}
	return objects.LogWriters{}, fmt.Errorf("unknown log level %q (want none, ops, diag or trace)", level)
}

func run(args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if o.showVersion {
		fmt.Fprintln(stdout, version.String(program))
		return nil
	}

	writers, err := logWriters(o.logLevel, stderr)
	if err != nil {
		return err
	}
	objects.SetLogWriters(writers)

	fileCfg, err := config.LoadObjectsConfig(o.configPath)
	if err != nil {
		return err
	}
	cfg, err := objects.ConfigFromFile(fileCfg)
	if err != nil {
		return err
	}
	if err := scenario.CheckObjectPrefix(cfg.Prefix); err != nil {
		return fmt.Errorf("%s: %w", o.configPath, err)
	}
	updater, err := objects.NewUpdater(cfg)
	if err != nil {
		return err
	}

	sc, err := scenario.Load(o.scenarioPath)
	if err != nil {
		return err
	}
	if err := sc.CheckFeatureDim(cfg.Tasks.Dim()); err != nil {
		return fmt.Errorf("%s does not match the task set: %w", o.scenarioPath, err)
	}

	var (
		store *runlog.Store
		runID string
	)
	if o.dbPath != "" {
		store, err = runlog.Open(o.dbPath)
		if err != nil {
			return fmt.Errorf("open run log: %w", err)
		}
		defer store.Close()
		cfgJSON, err := json.Marshal(fileCfg)
		if err != nil {
			return err
		}
		runID, err = store.StartRun(sc.Name, string(cfgJSON), time.Now())
		if err != nil {
			return err
		}
		log.Printf("recording run %s to %s", runID, o.dbPath)
	}

	g := scenegraph.New()
	timings := timeutil.NewTimings(nil)
	stats := make([]objects.CycleStats, 0, len(sc.Cycles))
	for i, c := range sc.Cycles {
		ts := sc.Timestamp(i)
		stop := timings.Start(timingApply)
		err := scenario.Apply(g, c, ts)
		stop()
		if err != nil {
			return fmt.Errorf("cycle %d: %w", i, err)
		}
		stop = timings.Start(timingUpdate)
		updater.Update(g, ts)
		stop()
		st := updater.LastStats()
		stats = append(stats, st)
		fmt.Fprintln(stdout, st)
		if store != nil {
			if err := store.RecordCycle(runID, st); err != nil {
				return err
			}
		}
	}
	if store != nil {
		if err := store.FinishRun(runID, time.Now()); err != nil {
			return err
		}
	}

	printSummary(stdout, g, updater)
	printTimings(stdout, timings)

	if o.htmlPath != "" {
		f, err := os.Create(o.htmlPath)
		if err != nil {
			return fmt.Errorf("create html output: %w", err)
		}
		if err := monitor.RenderSceneHTML(f, g, sc.Name); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	if o.plotPath != "" {
		if err := monitor.SaveCyclePlot(o.plotPath, stats); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(w io.Writer, g *scenegraph.Graph, u *objects.Updater) {
	snap := u.Snapshot()
	fmt.Fprintf(w, "segments=%d objects=%d places=%d components=%d ignored=%d\n",
		g.NumNodes(scenegraph.SegmentsLayer), g.NumNodes(scenegraph.ObjectsLayer),
		g.NumNodes(scenegraph.PlacesLayer), len(snap.Components), len(snap.Ignored))
	for _, n := range g.LayerNodes(scenegraph.ObjectsLayer) {
		attrs := scenegraph.MustSemantic(n)
		parent := "-"
		if p, ok := n.Parent(); ok {
			parent = p.Label()
		}
		fmt.Fprintf(w, "  %s %-12s parent=%s center=(%.2f, %.2f, %.2f)\n", n.ID.Label(), attrs.Name, parent,
			attrs.Position.X, attrs.Position.Y, attrs.Position.Z)
	}
	if active := u.ActiveObjects(); len(active) > 0 {
		fmt.Fprintf(w, "unsettled: %v\n", active)
	}
}

func printTimings(w io.Writer, t *timeutil.Timings) {
	for _, name := range t.Names() {
		fmt.Fprintf(w, "%s: %v\n", name, t.Get(name))
	}
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		if !errors.Is(err, errUsage) {
			log.Printf("%s: %v", program, err)
		}
		os.Exit(1)
	}
}
