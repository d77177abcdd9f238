package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestEmptyObjectsConfigDefaults(t *testing.T) {
	cfg := EmptyObjectsConfig()

	if got := cfg.GetPrefix(); got != 'O' {
		t.Errorf("GetPrefix() = %q, want 'O'", got)
	}
	if got := cfg.GetEdgeTolerance(); got != 0 {
		t.Errorf("GetEdgeTolerance() = %f, want 0", got)
	}
	if got := cfg.GetMetric(); got != "cosine" {
		t.Errorf("GetMetric() = %q, want cosine", got)
	}
	if got := cfg.GetMinSegmentScore(); got != 0.2 {
		t.Errorf("GetMinSegmentScore() = %f, want 0.2", got)
	}
	if got := cfg.GetMinObjectScore(); got != 0.2 {
		t.Errorf("GetMinObjectScore() = %f, want 0.2", got)
	}
	if got := cfg.GetSelectorMethod(); got != "agglomerative" {
		t.Errorf("GetSelectorMethod() = %q, want agglomerative", got)
	}
	if got := cfg.GetSelectorTemperature(); got != 0.1 {
		t.Errorf("GetSelectorTemperature() = %f, want 0.1", got)
	}
	if got := cfg.GetSelectorTolerance(); got != 0.1 {
		t.Errorf("GetSelectorTolerance() = %f, want 0.1", got)
	}
	if got := cfg.GetNeighborMaxDistance(); got != 0 {
		t.Errorf("GetNeighborMaxDistance() = %f, want 0", got)
	}
	if got := cfg.GetTasksFile(); got != "" {
		t.Errorf("GetTasksFile() = %q, want empty", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("empty config should validate: %v", err)
	}
}

func TestLoadObjectsConfig(t *testing.T) {
	path := writeConfig(t, "objects.json", `{
  "prefix": "X",
  "edge_tolerance": 0.05,
  "metric": "DOT",
  "tasks_file": "tasks.csv",
  "min_segment_score": 0.3,
  "selector": {"method": "single"},
  "neighbor_max_distance": 4.5
}`)

	cfg, err := LoadObjectsConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.GetPrefix() != 'X' {
		t.Errorf("GetPrefix() = %q, want 'X'", cfg.GetPrefix())
	}
	if cfg.GetEdgeTolerance() != 0.05 {
		t.Errorf("GetEdgeTolerance() = %f, want 0.05", cfg.GetEdgeTolerance())
	}
	if cfg.GetMetric() != "dot" {
		t.Errorf("GetMetric() = %q, want dot", cfg.GetMetric())
	}
	if want := filepath.Join(filepath.Dir(path), "tasks.csv"); cfg.GetTasksFile() != want {
		t.Errorf("GetTasksFile() = %q, want %q", cfg.GetTasksFile(), want)
	}
	if cfg.GetMinSegmentScore() != 0.3 {
		t.Errorf("GetMinSegmentScore() = %f, want 0.3", cfg.GetMinSegmentScore())
	}
	// Unset fields keep their defaults.
	if cfg.GetMinObjectScore() != 0.2 {
		t.Errorf("GetMinObjectScore() = %f, want 0.2", cfg.GetMinObjectScore())
	}
	if cfg.GetSelectorMethod() != "single" {
		t.Errorf("GetSelectorMethod() = %q, want single", cfg.GetSelectorMethod())
	}
	if cfg.GetSelectorTemperature() != 0.1 {
		t.Errorf("GetSelectorTemperature() = %f, want 0.1", cfg.GetSelectorTemperature())
	}
	if cfg.GetNeighborMaxDistance() != 4.5 {
		t.Errorf("GetNeighborMaxDistance() = %f, want 4.5", cfg.GetNeighborMaxDistance())
	}
}

func TestLoadObjectsConfigAbsoluteTasksFile(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "elsewhere.csv")
	path := writeConfig(t, "objects.json", `{"tasks_file": "`+filepath.ToSlash(abs)+`"}`)

	cfg, err := LoadObjectsConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.GetTasksFile() != filepath.ToSlash(abs) {
		t.Errorf("GetTasksFile() = %q, want %q", cfg.GetTasksFile(), abs)
	}
}

func TestLoadObjectsConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"wrong extension", "objects.yaml", `{}`, "extension"},
		{"bad json", "objects.json", `{"prefix":`, "parse"},
		{"long prefix", "objects.json", `{"prefix": "OB"}`, "prefix"},
		{"unknown metric", "objects.json", `{"metric": "manhattan"}`, "metric"},
		{"both task sources", "objects.json", `{"tasks": {"embeddings": [[1]]}, "tasks_file": "t.csv"}`, "mutually exclusive"},
		{"empty tasks", "objects.json", `{"tasks": {"embeddings": []}}`, "embeddings"},
		{"ragged tasks", "objects.json", `{"tasks": {"embeddings": [[1, 0], [1]]}}`, "dimension"},
		{"label count", "objects.json", `{"tasks": {"labels": ["a"], "embeddings": [[1], [0]]}}`, "labels"},
		{"unknown selector", "objects.json", `{"selector": {"method": "kmeans"}}`, "selector method"},
		{"zero temperature", "objects.json", `{"selector": {"temperature": 0}}`, "temperature"},
		{"negative tolerance", "objects.json", `{"selector": {"tolerance": -0.5}}`, "tolerance"},
		{"negative distance", "objects.json", `{"neighbor_max_distance": -1}`, "neighbor_max_distance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.body)
			_, err := LoadObjectsConfig(path)
			if err == nil {
				t.Fatalf("LoadObjectsConfig() succeeded, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}

	if _, err := LoadObjectsConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadObjectsConfigTooLarge(t *testing.T) {
	body := `{"metric": "cosine"` + strings.Repeat(" ", 1024*1024) + `}`
	path := writeConfig(t, "big.json", body)
	if _, err := LoadObjectsConfig(path); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("expected too large error, got %v", err)
	}
}

func TestValidatePointerFields(t *testing.T) {
	cfg := &ObjectsConfig{
		Prefix:              ptrString("p"),
		EdgeTolerance:       ptrFloat64(-0.1),
		NeighborMaxDistance: ptrFloat64(2),
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	if cfg.GetPrefix() != 'p' {
		t.Errorf("GetPrefix() = %q, want 'p'", cfg.GetPrefix())
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if cfg.Tasks == nil || len(cfg.Tasks.Embeddings) == 0 {
		t.Fatal("defaults file should carry an inline task set")
	}
	if cfg.GetPrefix() != 'O' {
		t.Errorf("GetPrefix() = %q, want 'O'", cfg.GetPrefix())
	}
}
