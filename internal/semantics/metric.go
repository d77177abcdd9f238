// Package semantics scores semantic features against a fixed set of tasks.
//
// A TaskSet is a group of task embeddings; a Metric aligns a feature with a
// single embedding (higher is better). BestScore reports the best aligned
// task for a feature.
package semantics

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Metric scores the alignment of two equally sized vectors. Higher scores
// mean closer alignment.
type Metric interface {
	Score(lhs, rhs []float64) float64
	Name() string
}

// CosineMetric scores by cosine similarity in [-1, 1]. A zero vector scores 0.
type CosineMetric struct{}

// Score implements Metric.
func (CosineMetric) Score(lhs, rhs []float64) float64 {
	nl := floats.Norm(lhs, 2)
	nr := floats.Norm(rhs, 2)
	if nl == 0 || nr == 0 {
		return 0
	}
	return floats.Dot(lhs, rhs) / (nl * nr)
}

// Name implements Metric.
func (CosineMetric) Name() string { return "cosine" }

// DotMetric scores by the raw inner product.
type DotMetric struct{}

// Score implements Metric.
func (DotMetric) Score(lhs, rhs []float64) float64 { return floats.Dot(lhs, rhs) }

// Name implements Metric.
func (DotMetric) Name() string { return "dot" }

// NegativeL2Metric scores by negated Euclidean distance, so identical
// vectors score 0 and everything else scores below it.
type NegativeL2Metric struct{}

// Score implements Metric.
func (NegativeL2Metric) Score(lhs, rhs []float64) float64 { return -floats.Distance(lhs, rhs, 2) }

// Name implements Metric.
func (NegativeL2Metric) Name() string { return "l2" }

// MetricByName resolves a configured metric name. An empty name selects cosine.
func MetricByName(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "cosine":
		return CosineMetric{}, nil
	case "dot":
		return DotMetric{}, nil
	case "l2":
		return NegativeL2Metric{}, nil
	default:
		return nil, fmt.Errorf("unknown metric %q (want cosine, dot or l2)", name)
	}
}
