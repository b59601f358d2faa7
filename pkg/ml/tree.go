package ml

import (
	"math"
	"sort"
)

// treeNode is one node of a gradient-fitted regression tree. Nodes are
// JSON-serialized as part of the persisted model.
type treeNode struct {
	IsLeaf       bool      `json:"is_leaf"`
	Value        float64   `json:"value,omitempty"` // leaf output, already Newton-stepped
	FeatureIndex int       `json:"feature_index,omitempty"`
	Feature      string    `json:"feature,omitempty"`
	Threshold    float64   `json:"threshold,omitempty"`
	Gain         float64   `json:"gain,omitempty"`
	SamplesCount int       `json:"samples_count"`
	Left         *treeNode `json:"left,omitempty"`
	Right        *treeNode `json:"right,omitempty"`
}

// regressionTree fits a single tree to gradient/hessian statistics. It is
// the base learner of the boosted ensemble; leaf values carry the Newton
// step sum(g)/(sum(h)+lambda).
type regressionTree struct {
	Root *treeNode `json:"root"`
}

// treeParams bundles the growth constraints shared by every tree of an ensemble
type treeParams struct {
	maxDepth       int
	minSamplesLeaf int
	lambda         float64 // L2 regularization on leaf weights
	featureNames   []string
}

const maxThresholdCandidates = 32

// fitTree grows a tree over the given row indices. grad holds the negative
// gradients, hess the hessians; featureSet restricts which feature indices
// the tree may split on.
func fitTree(X [][]float64, grad, hess []float64, indices []int, featureSet []int, p treeParams) *regressionTree {
	t := &regressionTree{}
	t.Root = buildNode(X, grad, hess, indices, featureSet, p, 0)
	return t
}

func buildNode(X [][]float64, grad, hess []float64, indices []int, featureSet []int, p treeParams, depth int) *treeNode {
	node := &treeNode{SamplesCount: len(indices)}

	sumG, sumH := 0.0, 0.0
	for _, idx := range indices {
		sumG += grad[idx]
		sumH += hess[idx]
	}
	node.Value = sumG / (sumH + p.lambda)

	if depth >= p.maxDepth || len(indices) < 2*p.minSamplesLeaf {
		node.IsLeaf = true
		return node
	}

	feature, threshold, gain := findBestSplit(X, grad, hess, indices, featureSet, p, sumG, sumH)
	if feature < 0 || gain <= 0 {
		node.IsLeaf = true
		return node
	}

	var left, right []int
	for _, idx := range indices {
		if X[idx][feature] <= threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	if len(left) < p.minSamplesLeaf || len(right) < p.minSamplesLeaf {
		node.IsLeaf = true
		return node
	}

	node.FeatureIndex = feature
	node.Feature = p.featureNames[feature]
	node.Threshold = threshold
	node.Gain = gain
	node.Left = buildNode(X, grad, hess, left, featureSet, p, depth+1)
	node.Right = buildNode(X, grad, hess, right, featureSet, p, depth+1)
	return node
}

// findBestSplit scans every candidate feature and threshold for the split
// with the largest gain, scored as the xgboost split objective
// G_l^2/(H_l+lambda) + G_r^2/(H_r+lambda) - G^2/(H+lambda).
func findBestSplit(X [][]float64, grad, hess []float64, indices []int, featureSet []int, p treeParams, sumG, sumH float64) (int, float64, float64) {
	bestFeature := -1
	bestThreshold := 0.0
	bestGain := 0.0
	parentScore := sumG * sumG / (sumH + p.lambda)

	for _, feature := range featureSet {
		thresholds := candidateThresholds(X, indices, feature)
		for _, threshold := range thresholds {
			gl, hl := 0.0, 0.0
			nLeft := 0
			for _, idx := range indices {
				if X[idx][feature] <= threshold {
					gl += grad[idx]
					hl += hess[idx]
					nLeft++
				}
			}
			nRight := len(indices) - nLeft
			if nLeft < p.minSamplesLeaf || nRight < p.minSamplesLeaf {
				continue
			}
			gr := sumG - gl
			hr := sumH - hl
			gain := gl*gl/(hl+p.lambda) + gr*gr/(hr+p.lambda) - parentScore
			if gain > bestGain {
				bestGain = gain
				bestFeature = feature
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestGain
}

// candidateThresholds returns midpoints between consecutive unique feature
// values, thinned to at most maxThresholdCandidates quantile points for wide
// value ranges.
func candidateThresholds(X [][]float64, indices []int, feature int) []float64 {
	seen := make(map[float64]bool, len(indices))
	values := make([]float64, 0, len(indices))
	for _, idx := range indices {
		v := X[idx][feature]
		if math.IsNaN(v) {
			continue
		}
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	if len(values) < 2 {
		return nil
	}
	sort.Float64s(values)

	if len(values)-1 <= maxThresholdCandidates {
		thresholds := make([]float64, len(values)-1)
		for i := 0; i < len(values)-1; i++ {
			thresholds[i] = (values[i] + values[i+1]) / 2
		}
		return thresholds
	}

	thresholds := make([]float64, 0, maxThresholdCandidates)
	step := float64(len(values)-1) / float64(maxThresholdCandidates+1)
	for i := 1; i <= maxThresholdCandidates; i++ {
		pos := int(float64(i) * step)
		if pos >= len(values)-1 {
			pos = len(values) - 2
		}
		thresholds = append(thresholds, (values[pos]+values[pos+1])/2)
	}
	return thresholds
}

// predict returns the leaf value for one sample
func (t *regressionTree) predict(x []float64) float64 {
	node := t.Root
	for !node.IsLeaf {
		if x[node.FeatureIndex] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// accumulateGain adds each split's gain to the per-feature importance totals
func (t *regressionTree) accumulateGain(importance map[string]float64) {
	var walk func(n *treeNode)
	walk = func(n *treeNode) {
		if n == nil || n.IsLeaf {
			return
		}
		importance[n.Feature] += n.Gain
		walk(n.Left)
		walk(n.Right)
	}
	walk(t.Root)
}
