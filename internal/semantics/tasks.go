package semantics

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ErrDimensionMismatch reports a feature whose length differs from the
// task embedding dimension.
var ErrDimensionMismatch = errors.New("semantics: feature dimension mismatch")

// TaskSet is a fixed group of task embeddings, one per row.
type TaskSet struct {
	labels     []string
	embeddings *mat.Dense
}

// Score is the result of aligning a feature with a task set.
type Score struct {
	Value float64 // best metric score
	Index int     // row of the best task, -1 for an empty set
}

// NewTaskSet builds a task set from labels and embeddings. Labels may be
// nil, in which case tasks are labelled by index.
func NewTaskSet(labels []string, embeddings [][]float64) (*TaskSet, error) {
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("task set needs at least one embedding")
	}
	if labels != nil && len(labels) != len(embeddings) {
		return nil, fmt.Errorf("task set has %d labels for %d embeddings", len(labels), len(embeddings))
	}
	dim := len(embeddings[0])
	if dim == 0 {
		return nil, fmt.Errorf("task embeddings must be non-empty")
	}
	m := mat.NewDense(len(embeddings), dim, nil)
	for i, e := range embeddings {
		if len(e) != dim {
			return nil, fmt.Errorf("task embedding %d has dimension %d, want %d", i, len(e), dim)
		}
		m.SetRow(i, e)
	}
	if labels == nil {
		labels = make([]string, len(embeddings))
		for i := range labels {
			labels[i] = fmt.Sprintf("task_%d", i)
		}
	}
	return &TaskSet{labels: append([]string(nil), labels...), embeddings: m}, nil
}

// LoadTaskSetCSV reads a task set from a CSV file with one task per line:
// a label followed by the embedding values. Lines starting with '#' are
// comments.
func LoadTaskSetCSV(path string) (*TaskSet, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open task file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var labels []string
	var embeddings [][]float64
	for line := 1; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read task file: %w", err)
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("task file record %d: want label and at least one value", line)
		}
		values := make([]float64, len(rec)-1)
		for i, field := range rec[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("task file record %d value %d: %w", line, i, err)
			}
			values[i] = v
		}
		labels = append(labels, strings.TrimSpace(rec[0]))
		embeddings = append(embeddings, values)
	}
	return NewTaskSet(labels, embeddings)
}

// Len returns the number of tasks.
func (t *TaskSet) Len() int {
	if t == nil || t.embeddings == nil {
		return 0
	}
	r, _ := t.embeddings.Dims()
	return r
}

// Dim returns the embedding dimension.
func (t *TaskSet) Dim() int {
	_, c := t.embeddings.Dims()
	return c
}

// Label returns the label of task i.
func (t *TaskSet) Label(i int) string { return t.labels[i] }

// Embedding returns a view of task i's embedding. Do not modify it.
func (t *TaskSet) Embedding(i int) []float64 { return t.embeddings.RawRowView(i) }

// Scores aligns the feature with every task, in task order. It panics with
// ErrDimensionMismatch when the feature length differs from Dim.
func (t *TaskSet) Scores(metric Metric, feature []float64) []float64 {
	if len(feature) != t.Dim() {
		panic(fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(feature), t.Dim()))
	}
	out := make([]float64, t.Len())
	for i := range out {
		out[i] = metric.Score(feature, t.Embedding(i))
	}
	return out
}

// BestScore returns the best aligned task for a feature. Ties resolve to the
// lowest task index.
func (t *TaskSet) BestScore(metric Metric, feature []float64) Score {
	best := Score{Value: math.Inf(-1), Index: -1}
	if t.Len() == 0 {
		return best
	}
	for i, s := range t.Scores(metric, feature) {
		if s > best.Value {
			best = Score{Value: s, Index: i}
		}
	}
	return best
}
