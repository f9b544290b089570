package predict

import (
	"math"
	"math/rand"
	"sort"
)

// Sample is one labeled training row in FeatureNames order.
type Sample struct {
	Features [4]float64
	Target   float64
}

// GenerateTrainingData synthesizes labeled study sessions. The target
// combines study load, sleep debt, break scarcity and focus loss with
// gaussian noise, clipped to [0,100].
func GenerateTrainingData(n int, rng *rand.Rand) []Sample {
	samples := make([]Sample, n)
	for i := range samples {
		study := 1 + rng.Float64()*19
		sleep := 2 + rng.Float64()*13
		breaks := float64(5 + rng.Intn(56))
		conc := float64(1 + rng.Intn(5))

		risk := 5.5*study - 4.5*sleep + 0.3*(60-breaks) + 7*(5-conc) + rng.NormFloat64()*6
		risk = math.Min(100, math.Max(0, risk))

		samples[i] = Sample{
			Features: [4]float64{study, sleep, breaks, conc},
			Target:   risk,
		}
	}
	return samples
}

type TrainConfig struct {
	Trees    int
	MaxDepth int
	MinLeaf  int
}

func DefaultTrainConfig() TrainConfig {
	return TrainConfig{Trees: 200, MaxDepth: 5, MinLeaf: 5}
}

// TrainForest fits a bootstrap-aggregated forest of regression trees
// grown by recursive variance-reduction splitting.
func TrainForest(samples []Sample, cfg TrainConfig, rng *rand.Rand) *Artifact {
	a := &Artifact{
		SchemaVersion: 1,
		Features:      append([]string(nil), FeatureNames...),
		Trees:         make([]Tree, cfg.Trees),
	}
	for t := 0; t < cfg.Trees; t++ {
		boot := make([]int, len(samples))
		for i := range boot {
			boot[i] = rng.Intn(len(samples))
		}
		b := treeBuilder{samples: samples, cfg: cfg}
		b.grow(boot, 0)
		a.Trees[t] = Tree{Nodes: b.nodes}
	}
	return a
}

// Evaluate returns mean squared error and R2 over samples.
func Evaluate(a *Artifact, samples []Sample) (mse, r2 float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	var targetSum float64
	for _, s := range samples {
		targetSum += s.Target
	}
	targetMean := targetSum / float64(len(samples))

	var residual, total float64
	for _, s := range samples {
		pred := a.Predict(s.Features[:])
		residual += (s.Target - pred) * (s.Target - pred)
		total += (s.Target - targetMean) * (s.Target - targetMean)
	}
	mse = residual / float64(len(samples))
	if total > 0 {
		r2 = 1 - residual/total
	}
	return mse, r2
}

type treeBuilder struct {
	samples []Sample
	cfg     TrainConfig
	nodes   []Node
}

// grow appends the subtree covering idx and returns its root index.
// Nodes are appended parent-first so child indexes always exceed the
// parent's, matching the artifact validator.
func (b *treeBuilder) grow(idx []int, depth int) int {
	node := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: -1, Value: b.meanTarget(idx)})

	if depth >= b.cfg.MaxDepth || len(idx) < 2*b.cfg.MinLeaf {
		return node
	}
	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return node
	}

	var left, right []int
	for _, i := range idx {
		if b.samples[i].Features[feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < b.cfg.MinLeaf || len(right) < b.cfg.MinLeaf {
		return node
	}

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[node] = Node{Feature: feature, Threshold: threshold, Left: l, Right: r}
	return node
}

// bestSplit scans every feature for the threshold minimizing the summed
// within-side squared error, using prefix sums over the sorted order.
func (b *treeBuilder) bestSplit(idx []int) (int, float64, bool) {
	bestCost := math.Inf(1)
	bestFeature := -1
	var bestThreshold float64

	var totalSum, totalSq float64
	for _, i := range idx {
		y := b.samples[i].Target
		totalSum += y
		totalSq += y * y
	}

	order := make([]int, len(idx))
	for f := 0; f < len(FeatureNames); f++ {
		copy(order, idx)
		sort.Slice(order, func(i, j int) bool {
			return b.samples[order[i]].Features[f] < b.samples[order[j]].Features[f]
		})

		var leftSum, leftSq float64
		for i := 0; i < len(order)-1; i++ {
			y := b.samples[order[i]].Target
			leftSum += y
			leftSq += y * y

			cur := b.samples[order[i]].Features[f]
			next := b.samples[order[i+1]].Features[f]
			if cur == next {
				continue
			}
			nl := float64(i + 1)
			nr := float64(len(order) - i - 1)
			if i+1 < b.cfg.MinLeaf || len(order)-i-1 < b.cfg.MinLeaf {
				continue
			}

			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			cost := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if cost < bestCost {
				bestCost = cost
				bestFeature = f
				bestThreshold = (cur + next) / 2
			}
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

func (b *treeBuilder) meanTarget(idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += b.samples[i].Target
	}
	return sum / float64(len(idx))
}
