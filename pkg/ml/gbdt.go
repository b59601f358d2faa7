package ml

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/exoscan-ai/exoscan-go/pkg/models"
)

// GradientBoostedClassifier is a multi-class gradient-boosted tree ensemble.
// With exactly two classes it boosts a single logistic chain; with more it
// boosts one tree per class per round against the softmax gradient. The
// whole struct round-trips through encoding/json, which is how the model
// store persists it.
type GradientBoostedClassifier struct {
	Rounds          int                 `json:"rounds"`
	MaxDepth        int                 `json:"max_depth"`
	LearningRate    float64             `json:"learning_rate"`
	Subsample       float64             `json:"subsample"`
	ColsampleBytree float64             `json:"colsample_bytree"`
	MinSamplesLeaf  int                 `json:"min_samples_leaf"`
	Lambda          float64             `json:"lambda"`
	FeatureNames    []string            `json:"feature_names"`
	Classes         []string            `json:"classes"`
	NumFeatures     int                 `json:"num_features"`
	NumClasses      int                 `json:"num_classes"`
	BaseScore       []float64           `json:"base_score"` // initial log-odds per class
	Ensembles       [][]*regressionTree `json:"ensembles"`  // [class][round]; binary uses a single chain
	Seed            int64               `json:"seed"`
}

// NewGradientBoostedClassifier builds an untrained ensemble from hyperparameters
func NewGradientBoostedClassifier(h models.Hyperparameters, seed int64) *GradientBoostedClassifier {
	h = h.Normalize()
	return &GradientBoostedClassifier{
		Rounds:          h.Rounds,
		MaxDepth:        h.MaxDepth,
		LearningRate:    h.LearningRate,
		Subsample:       h.Subsample,
		ColsampleBytree: h.ColsampleBytree,
		MinSamplesLeaf:  h.MinSamplesLeaf,
		Lambda:          1.0,
		Seed:            seed,
	}
}

// Train fits the ensemble. X is the null-filled feature matrix, y the
// encoded labels (dense indices into classes), classes the decoded label
// strings in encoding order.
func (gb *GradientBoostedClassifier) Train(X [][]float64, y []int, classes []string, featureNames []string) error {
	if len(X) == 0 {
		return fmt.Errorf("empty training data")
	}
	if len(X) != len(y) {
		return fmt.Errorf("X and y must have same number of samples")
	}
	if len(featureNames) != len(X[0]) {
		return fmt.Errorf("feature names must match number of features")
	}
	if len(classes) < 2 {
		return fmt.Errorf("need at least 2 classes, got %d", len(classes))
	}

	gb.FeatureNames = featureNames
	gb.NumFeatures = len(X[0])
	gb.Classes = classes
	gb.NumClasses = len(classes)

	rng := rand.New(rand.NewSource(gb.Seed))
	params := treeParams{
		maxDepth:       gb.MaxDepth,
		minSamplesLeaf: gb.MinSamplesLeaf,
		lambda:         gb.Lambda,
		featureNames:   featureNames,
	}

	if gb.NumClasses == 2 {
		gb.trainBinary(X, y, rng, params)
	} else {
		gb.trainSoftmax(X, y, rng, params)
	}
	return nil
}

// trainBinary boosts a single chain against the logistic loss; class index 1
// is the positive side of the sigmoid.
func (gb *GradientBoostedClassifier) trainBinary(X [][]float64, y []int, rng *rand.Rand, params treeParams) {
	n := len(X)
	pos := 0
	for _, yi := range y {
		pos += yi
	}
	base := logOdds(float64(pos) / float64(n))
	gb.BaseScore = []float64{base}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = base
	}

	grad := make([]float64, n)
	hess := make([]float64, n)
	chain := make([]*regressionTree, 0, gb.Rounds)

	for round := 0; round < gb.Rounds; round++ {
		for i := 0; i < n; i++ {
			p := sigmoid(scores[i])
			grad[i] = float64(y[i]) - p
			hess[i] = p * (1 - p)
		}
		indices := gb.sampleRows(n, rng)
		features := gb.sampleFeatures(rng)
		tree := fitTree(X, grad, hess, indices, features, params)
		chain = append(chain, tree)
		for i := 0; i < n; i++ {
			scores[i] += gb.LearningRate * tree.predict(X[i])
		}
	}
	gb.Ensembles = [][]*regressionTree{chain}
}

// trainSoftmax boosts one chain per class against the cross-entropy gradient
func (gb *GradientBoostedClassifier) trainSoftmax(X [][]float64, y []int, rng *rand.Rand, params treeParams) {
	n := len(X)
	k := gb.NumClasses

	gb.BaseScore = make([]float64, k)
	scores := make([][]float64, n)
	for i := range scores {
		scores[i] = make([]float64, k)
	}

	grad := make([]float64, n)
	hess := make([]float64, n)
	gb.Ensembles = make([][]*regressionTree, k)

	for round := 0; round < gb.Rounds; round++ {
		probs := make([][]float64, n)
		for i := 0; i < n; i++ {
			probs[i] = softmax(scores[i])
		}
		for class := 0; class < k; class++ {
			for i := 0; i < n; i++ {
				target := 0.0
				if y[i] == class {
					target = 1.0
				}
				p := probs[i][class]
				grad[i] = target - p
				hess[i] = p * (1 - p)
			}
			indices := gb.sampleRows(n, rng)
			features := gb.sampleFeatures(rng)
			tree := fitTree(X, grad, hess, indices, features, params)
			gb.Ensembles[class] = append(gb.Ensembles[class], tree)
			for i := 0; i < n; i++ {
				scores[i][class] += gb.LearningRate * tree.predict(X[i])
			}
		}
	}
}

// PredictProba returns the per-class probabilities for one sample, in class
// encoding order. Probabilities sum to 1.
func (gb *GradientBoostedClassifier) PredictProba(x []float64) ([]float64, error) {
	if len(gb.Ensembles) == 0 {
		return nil, fmt.Errorf("model not trained")
	}
	if len(x) != gb.NumFeatures {
		return nil, fmt.Errorf("expected %d features, got %d", gb.NumFeatures, len(x))
	}

	if gb.NumClasses == 2 {
		score := gb.BaseScore[0]
		for _, tree := range gb.Ensembles[0] {
			score += gb.LearningRate * tree.predict(x)
		}
		p := sigmoid(score)
		return []float64{1 - p, p}, nil
	}

	scores := make([]float64, gb.NumClasses)
	for class, chain := range gb.Ensembles {
		s := gb.BaseScore[class]
		for _, tree := range chain {
			s += gb.LearningRate * tree.predict(x)
		}
		scores[class] = s
	}
	return softmax(scores), nil
}

// Predict returns the arg-max class index and its probability
func (gb *GradientBoostedClassifier) Predict(x []float64) (int, float64, error) {
	probs, err := gb.PredictProba(x)
	if err != nil {
		return 0, 0, err
	}
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return best, probs[best], nil
}

// FeatureImportance returns the total split gain contributed by each
// feature, normalized to sum to 1. Features never split on score 0.
func (gb *GradientBoostedClassifier) FeatureImportance() map[string]float64 {
	importance := make(map[string]float64, len(gb.FeatureNames))
	for _, name := range gb.FeatureNames {
		importance[name] = 0
	}
	for _, chain := range gb.Ensembles {
		for _, tree := range chain {
			tree.accumulateGain(importance)
		}
	}
	total := 0.0
	for _, v := range importance {
		total += v
	}
	if total > 0 {
		for name := range importance {
			importance[name] /= total
		}
	}
	return importance
}

// sampleRows draws the subsample of row indices used by one boosting round.
// With Subsample >= 1 every row participates.
func (gb *GradientBoostedClassifier) sampleRows(n int, rng *rand.Rand) []int {
	if gb.Subsample >= 1 {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}
	count := int(float64(n) * gb.Subsample)
	if count < 1 {
		count = 1
	}
	perm := rng.Perm(n)
	return perm[:count]
}

// sampleFeatures draws the feature subset available to one tree
func (gb *GradientBoostedClassifier) sampleFeatures(rng *rand.Rand) []int {
	if gb.ColsampleBytree >= 1 {
		features := make([]int, gb.NumFeatures)
		for i := range features {
			features[i] = i
		}
		return features
	}
	count := int(float64(gb.NumFeatures) * gb.ColsampleBytree)
	if count < 1 {
		count = 1
	}
	perm := rng.Perm(gb.NumFeatures)
	return perm[:count]
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func logOdds(p float64) float64 {
	const eps = 1e-6
	if p < eps {
		p = eps
	}
	if p > 1-eps {
		p = 1 - eps
	}
	return math.Log(p / (1 - p))
}

func softmax(scores []float64) []float64 {
	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}
	sum := 0.0
	probs := make([]float64, len(scores))
	for i, s := range scores {
		probs[i] = math.Exp(s - maxScore)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
