package clustering

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/objectgraph/internal/scenegraph"
	"github.com/banshee-data/objectgraph/internal/semantics"
)

// taskPosterior returns p(y|x) for one segment: a softmax over its task
// scores at the given temperature.
func taskPosterior(n *scenegraph.Node, tasks *semantics.TaskSet, metric semantics.Metric, temperature float64) []float64 {
	feature := scenegraph.MustSemantic(n).FeatureVector()
	scores := tasks.Scores(metric, feature)
	return softmax(scores, temperature)
}

func softmax(scores []float64, temperature float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}
	peak := floats.Max(scores)
	for i, s := range scores {
		out[i] = math.Exp((s - peak) / temperature)
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}

// mutualInformation returns I(X;Y) for a uniform p(x) over the given
// conditionals: H(Y) minus the mean conditional entropy.
func mutualInformation(conditionals [][]float64) float64 {
	if len(conditionals) == 0 {
		return 0
	}
	marginal := make([]float64, len(conditionals[0]))
	var conditional float64
	for _, c := range conditionals {
		floats.Add(marginal, c)
		conditional += stat.Entropy(c)
	}
	n := float64(len(conditionals))
	floats.Scale(1/n, marginal)
	mi := stat.Entropy(marginal) - conditional/n
	if mi < 0 {
		// Rounding only; I(X;Y) is non-negative.
		return 0
	}
	return mi
}

// mergeCost is the information lost by merging two clusters with weights
// wi, wj and conditionals pi, pj: (wi+wj) times the weighted Jensen-Shannon
// divergence.
func mergeCost(wi, wj float64, pi, pj []float64) float64 {
	total := wi + wj
	if total == 0 {
		return 0
	}
	ai, aj := wi/total, wj/total
	mid := make([]float64, len(pi))
	floats.AddScaledTo(mid, mid, ai, pi)
	floats.AddScaled(mid, aj, pj)
	js := ai*stat.KullbackLeibler(pi, mid) + aj*stat.KullbackLeibler(pj, mid)
	if js < 0 {
		js = 0
	}
	return total * js
}

// mergeConditionals returns the weighted mean of two conditionals.
func mergeConditionals(wi, wj float64, pi, pj []float64) []float64 {
	out := make([]float64, len(pi))
	total := wi + wj
	floats.AddScaledTo(out, out, wi/total, pi)
	floats.AddScaled(out, wj/total, pj)
	return out
}
