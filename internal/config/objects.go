package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// DefaultConfigPath is the path to the canonical object-clustering defaults file.
const DefaultConfigPath = "config/objects.defaults.json"

// ObjectsConfig is the root configuration of the object updater. It is read
// once at startup; the updater does not reload it mid-run.
type ObjectsConfig struct {
	// Object symbols are Prefix followed by a monotonically increasing index.
	Prefix *string `json:"prefix,omitempty"`

	// Segment connectivity
	EdgeTolerance *float64 `json:"edge_tolerance,omitempty"` // metres; negative requires penetration

	// Relevance scoring
	Metric          *string      `json:"metric,omitempty"` // cosine, dot or l2
	Tasks           *TasksConfig `json:"tasks,omitempty"`
	TasksFile       *string      `json:"tasks_file,omitempty"` // CSV, relative to the config file
	MinSegmentScore *float64     `json:"min_segment_score,omitempty"`
	MinObjectScore  *float64     `json:"min_object_score,omitempty"`

	// Clustering
	Selector *SelectorConfig `json:"selector,omitempty"`

	// Anchor attachment; 0 disables the advisory cap.
	NeighborMaxDistance *float64 `json:"neighbor_max_distance,omitempty"`

	baseDir string
}

// TasksConfig is an inline task set.
type TasksConfig struct {
	Labels     []string    `json:"labels,omitempty"`
	Embeddings [][]float64 `json:"embeddings"`
}

// SelectorConfig configures the clustering oracle.
type SelectorConfig struct {
	Method      *string  `json:"method,omitempty"` // agglomerative or single
	Temperature *float64 `json:"temperature,omitempty"`
	Tolerance   *float64 `json:"tolerance,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }

// EmptyObjectsConfig returns an ObjectsConfig with all fields set to nil.
// Use LoadObjectsConfig to load actual values from the defaults file.
func EmptyObjectsConfig() *ObjectsConfig {
	return &ObjectsConfig{}
}

// LoadObjectsConfig loads an ObjectsConfig from a JSON file.
// The file must have a .json extension and be under 1MB. Fields omitted
// from the file fall back to the Get* defaults.
func LoadObjectsConfig(path string) (*ObjectsConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyObjectsConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	cfg.baseDir = filepath.Dir(cleanPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *ObjectsConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/objects-replay/ and deeper
	}
	for _, path := range candidates {
		if cfg, err := LoadObjectsConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *ObjectsConfig) Validate() error {
	if c.Prefix != nil {
		if len(*c.Prefix) != 1 || (*c.Prefix)[0] < '!' || (*c.Prefix)[0] > '~' {
			return fmt.Errorf("prefix must be a single printable ASCII character, got %q", *c.Prefix)
		}
	}

	if c.EdgeTolerance != nil && !isFinite(*c.EdgeTolerance) {
		return fmt.Errorf("edge_tolerance must be finite, got %f", *c.EdgeTolerance)
	}

	if c.Metric != nil {
		switch strings.ToLower(*c.Metric) {
		case "cosine", "dot", "l2":
		default:
			return fmt.Errorf("unknown metric %q (want cosine, dot or l2)", *c.Metric)
		}
	}

	if c.Tasks != nil && c.TasksFile != nil && *c.TasksFile != "" {
		return fmt.Errorf("tasks and tasks_file are mutually exclusive")
	}
	if c.Tasks != nil {
		if err := c.Tasks.validate(); err != nil {
			return err
		}
	}

	for name, v := range map[string]*float64{
		"min_segment_score": c.MinSegmentScore,
		"min_object_score":  c.MinObjectScore,
	} {
		if v != nil && math.IsNaN(*v) {
			return fmt.Errorf("%s must be a number", name)
		}
	}

	if c.Selector != nil {
		if c.Selector.Method != nil {
			switch strings.ToLower(*c.Selector.Method) {
			case "agglomerative", "single":
			default:
				return fmt.Errorf("unknown selector method %q (want agglomerative or single)", *c.Selector.Method)
			}
		}
		if c.Selector.Temperature != nil && !(*c.Selector.Temperature > 0) {
			return fmt.Errorf("selector temperature must be positive, got %f", *c.Selector.Temperature)
		}
		if c.Selector.Tolerance != nil && !(*c.Selector.Tolerance >= 0) {
			return fmt.Errorf("selector tolerance must be non-negative, got %f", *c.Selector.Tolerance)
		}
	}

	if c.NeighborMaxDistance != nil && !(*c.NeighborMaxDistance >= 0) {
		return fmt.Errorf("neighbor_max_distance must be non-negative, got %f", *c.NeighborMaxDistance)
	}
	return nil
}

func (t *TasksConfig) validate() error {
	if len(t.Embeddings) == 0 {
		return fmt.Errorf("tasks.embeddings must not be empty")
	}
	if len(t.Labels) > 0 && len(t.Labels) != len(t.Embeddings) {
		return fmt.Errorf("tasks has %d labels for %d embeddings", len(t.Labels), len(t.Embeddings))
	}
	dim := len(t.Embeddings[0])
	for i, e := range t.Embeddings {
		if len(e) == 0 || len(e) != dim {
			return fmt.Errorf("tasks.embeddings[%d] has dimension %d, want %d", i, len(e), dim)
		}
	}
	return nil
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// GetPrefix returns the object symbol prefix or the default 'O'.
func (c *ObjectsConfig) GetPrefix() byte {
	if c.Prefix == nil || len(*c.Prefix) == 0 {
		return 'O'
	}
	return (*c.Prefix)[0]
}

// GetEdgeTolerance returns the edge_tolerance value or the default.
func (c *ObjectsConfig) GetEdgeTolerance() float64 {
	if c.EdgeTolerance == nil {
		return 0
	}
	return *c.EdgeTolerance
}

// GetMetric returns the metric name or the default.
func (c *ObjectsConfig) GetMetric() string {
	if c.Metric == nil || *c.Metric == "" {
		return "cosine"
	}
	return strings.ToLower(*c.Metric)
}

// GetTasksFile returns the tasks_file path resolved against the directory
// of the loaded config file, or "" when unset.
func (c *ObjectsConfig) GetTasksFile() string {
	if c.TasksFile == nil || *c.TasksFile == "" {
		return ""
	}
	if filepath.IsAbs(*c.TasksFile) || c.baseDir == "" {
		return *c.TasksFile
	}
	return filepath.Join(c.baseDir, *c.TasksFile)
}

// GetMinSegmentScore returns the min_segment_score value or the default.
func (c *ObjectsConfig) GetMinSegmentScore() float64 {
	if c.MinSegmentScore == nil {
		return 0.2
	}
	return *c.MinSegmentScore
}

// GetMinObjectScore returns the min_object_score value or the default.
func (c *ObjectsConfig) GetMinObjectScore() float64 {
	if c.MinObjectScore == nil {
		return 0.2
	}
	return *c.MinObjectScore
}

// GetSelectorMethod returns the selector method or the default.
func (c *ObjectsConfig) GetSelectorMethod() string {
	if c.Selector == nil || c.Selector.Method == nil || *c.Selector.Method == "" {
		return "agglomerative"
	}
	return strings.ToLower(*c.Selector.Method)
}

// GetSelectorTemperature returns the selector temperature or the default.
func (c *ObjectsConfig) GetSelectorTemperature() float64 {
	if c.Selector == nil || c.Selector.Temperature == nil {
		return 0.1
	}
	return *c.Selector.Temperature
}

// GetSelectorTolerance returns the selector tolerance or the default.
func (c *ObjectsConfig) GetSelectorTolerance() float64 {
	if c.Selector == nil || c.Selector.Tolerance == nil {
		return 0.1
	}
	return *c.Selector.Tolerance
}

// GetNeighborMaxDistance returns the neighbor_max_distance value or the default.
func (c *ObjectsConfig) GetNeighborMaxDistance() float64 {
	if c.NeighborMaxDistance == nil {
		return 0 // cap disabled
	}
	return *c.NeighborMaxDistance
}
