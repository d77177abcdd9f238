package objects

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/objectgraph/internal/clustering"
	"github.com/banshee-data/objectgraph/internal/config"
	"github.com/banshee-data/objectgraph/internal/scenegraph"
	"github.com/banshee-data/objectgraph/internal/semantics"
	"github.com/banshee-data/objectgraph/internal/timeutil"
)

// NearestFinder answers single-nearest queries over the place layer. Find
// calls fn once with the nearest node, or not at all.
type NearestFinder interface {
	Find(pos r3.Vec, fn func(id scenegraph.NodeID, distance float64)) bool
}

// FinderFactory builds a NearestFinder over the current place layer. The
// updater calls it once per cycle.
type FinderFactory func(places []*scenegraph.Node) NearestFinder

// KDTreeFinder is the default FinderFactory.
func KDTreeFinder(places []*scenegraph.Node) NearestFinder {
	return scenegraph.NewNearestNodeFinder(places)
}

// Config holds the updater parameters. It is validated once by NewUpdater.
type Config struct {
	Prefix              byte // object symbol category
	Intersection        IntersectionPolicy
	Metric              semantics.Metric
	Tasks               *semantics.TaskSet
	Oracle              clustering.Oracle
	MinSegmentScore     float64
	MinObjectScore      float64
	NeighborMaxDistance float64 // advisory; 0 disables the warning
	AuxiliaryMerge      AuxiliaryMerge
	NewFinder           FinderFactory
	Clock               timeutil.Clock
}

// DefaultConfig returns production defaults around the given task set.
func DefaultConfig(tasks *semantics.TaskSet) Config {
	return Config{
		Prefix:          'O',
		Intersection:    OverlapIntersection{},
		Metric:          semantics.CosineMetric{},
		Tasks:           tasks,
		Oracle:          defaultOracle(),
		MinSegmentScore: 0.2,
		MinObjectScore:  0.2,
		AuxiliaryMerge:  DefaultAuxiliaryMerge,
		NewFinder:       KDTreeFinder,
		Clock:           timeutil.RealClock{},
	}
}

func defaultOracle() *clustering.Agglomerative {
	sel := clustering.DefaultSelectorConfig()
	return &clustering.Agglomerative{Temperature: sel.Temperature, Tolerance: sel.Tolerance}
}

// ConfigFromFile derives the updater config from a loaded ObjectsConfig.
// The task set comes from tasks_file when set, else from the inline tasks.
func ConfigFromFile(fc *config.ObjectsConfig) (Config, error) {
	metric, err := semantics.MetricByName(fc.GetMetric())
	if err != nil {
		return Config{}, err
	}

	var tasks *semantics.TaskSet
	switch {
	case fc.GetTasksFile() != "":
		tasks, err = semantics.LoadTaskSetCSV(fc.GetTasksFile())
	case fc.Tasks != nil:
		var labels []string
		if len(fc.Tasks.Labels) > 0 {
			labels = fc.Tasks.Labels
		}
		tasks, err = semantics.NewTaskSet(labels, fc.Tasks.Embeddings)
	default:
		err = fmt.Errorf("no task set configured (set tasks or tasks_file)")
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to load task set: %w", err)
	}

	oracle, err := clustering.NewOracle(clustering.SelectorConfig{
		Method:      fc.GetSelectorMethod(),
		Temperature: fc.GetSelectorTemperature(),
		Tolerance:   fc.GetSelectorTolerance(),
	})
	if err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig(tasks)
	cfg.Prefix = fc.GetPrefix()
	cfg.Intersection = OverlapIntersection{Tolerance: fc.GetEdgeTolerance()}
	cfg.Metric = metric
	cfg.Oracle = oracle
	cfg.MinSegmentScore = fc.GetMinSegmentScore()
	cfg.MinObjectScore = fc.GetMinObjectScore()
	cfg.NeighborMaxDistance = fc.GetNeighborMaxDistance()
	return cfg, nil
}

// withDefaults checks the config and fills unset collaborators.
func (c Config) withDefaults() (Config, error) {
	if c.Tasks == nil || c.Tasks.Len() == 0 {
		return c, fmt.Errorf("objects: a non-empty task set is required")
	}
	if c.NeighborMaxDistance < 0 {
		return c, fmt.Errorf("objects: neighbor max distance must be non-negative, got %f", c.NeighborMaxDistance)
	}
	if c.Prefix == 0 {
		c.Prefix = 'O'
	}
	if c.Intersection == nil {
		c.Intersection = OverlapIntersection{}
	}
	if c.Metric == nil {
		c.Metric = semantics.CosineMetric{}
	}
	if c.Oracle == nil {
		c.Oracle = defaultOracle()
	}
	if c.AuxiliaryMerge == nil {
		c.AuxiliaryMerge = DefaultAuxiliaryMerge
	}
	if c.NewFinder == nil {
		c.NewFinder = KDTreeFinder
	}
	if c.Clock == nil {
		c.Clock = timeutil.RealClock{}
	}
	return c, nil
}
