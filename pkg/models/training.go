package models

import "time"

// Hyperparameters holds the tunable knobs of the boosted-tree classifier.
// Zero values fall back to the defaults below at training time.
type Hyperparameters struct {
	Rounds          int     `json:"rounds" yaml:"rounds"`                     // Boosting rounds
	MaxDepth        int     `json:"max_depth" yaml:"max_depth"`               // Maximum tree depth
	LearningRate    float64 `json:"learning_rate" yaml:"learning_rate"`       // Shrinkage per round
	Subsample       float64 `json:"subsample" yaml:"subsample"`               // Row sampling fraction per round
	ColsampleBytree float64 `json:"colsample_bytree" yaml:"colsample_bytree"` // Feature sampling fraction per tree
	MinSamplesLeaf  int     `json:"min_samples_leaf" yaml:"min_samples_leaf"` // Minimum samples per leaf
}

// DefaultHyperparameters returns the parameters used when a training request
// does not override them.
func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		Rounds:          100,
		MaxDepth:        6,
		LearningRate:    0.1,
		Subsample:       0.8,
		ColsampleBytree: 0.8,
		MinSamplesLeaf:  1,
	}
}

// Normalize fills zero-valued fields with defaults
func (h Hyperparameters) Normalize() Hyperparameters {
	d := DefaultHyperparameters()
	if h.Rounds <= 0 {
		h.Rounds = d.Rounds
	}
	if h.MaxDepth <= 0 {
		h.MaxDepth = d.MaxDepth
	}
	if h.LearningRate <= 0 {
		h.LearningRate = d.LearningRate
	}
	if h.Subsample <= 0 || h.Subsample > 1 {
		h.Subsample = d.Subsample
	}
	if h.ColsampleBytree <= 0 || h.ColsampleBytree > 1 {
		h.ColsampleBytree = d.ColsampleBytree
	}
	if h.MinSamplesLeaf <= 0 {
		h.MinSamplesLeaf = d.MinSamplesLeaf
	}
	return h
}

// TrainingReport holds everything the trainer measured on the held-out test
// partition plus the frozen context needed to interpret it.
type TrainingReport struct {
	SchemaID          SchemaID           `json:"schema_id"`
	LabelColumn       string             `json:"label_column"`
	IDColumn          string             `json:"id_column"`
	FeatureColumns    []string           `json:"feature_columns"`
	NumFeatures       int                `json:"n_features"`
	LabelClasses      []string           `json:"label_classes"`
	NumClasses        int                `json:"n_classes"`
	NumTrainSamples   int                `json:"n_train_samples"`
	NumTestSamples    int                `json:"n_test_samples"`
	Accuracy          float64            `json:"accuracy"`
	PrecisionByClass  map[string]float64 `json:"precision_by_class"`
	RecallByClass     map[string]float64 `json:"recall_by_class"`
	F1ByClass         map[string]float64 `json:"f1_by_class"`
	ConfusionMatrix   [][]int            `json:"confusion_matrix"` // rows = actual, cols = predicted, label encoding order
	FeatureImportance []FeatureWeight    `json:"feature_importance"`
	Hyperparameters   Hyperparameters    `json:"hyperparameters"`
	Warnings          []string           `json:"warnings,omitempty"`
	TrainedAt         time.Time          `json:"trained_at"`
}

// FeatureWeight is one entry of the ranked feature-importance listing
type FeatureWeight struct {
	Feature string  `json:"feature"`
	Weight  float64 `json:"weight"`
}

// Prediction is the per-row output of the predictor
type Prediction struct {
	RowID          string             `json:"row_id"`
	PredictedLabel string             `json:"predicted_label"`
	Confidence     float64            `json:"confidence"`
	Probabilities  map[string]float64 `json:"probabilities"`
	OriginalLabel  string             `json:"original_label,omitempty"`
}

// UnknownLabel is the sentinel used when a prediction row carries no
// ground-truth label.
const UnknownLabel = "UNKNOWN"

// ConfirmationVerdict wraps a prediction with the confirm/reject decision
type ConfirmationVerdict struct {
	Prediction
	NormalizedLabel string `json:"normalized_label"`
	IsConfirmable   bool   `json:"is_confirmable"`
}

// ConfirmationResult is the output of a full confirmation pass over a dataset
type ConfirmationResult struct {
	Confirmed []ConfirmationVerdict `json:"confirmed"`
	Rejected  []ConfirmationVerdict `json:"rejected"`
	Summary   ConfirmationSummary   `json:"summary"`
}

// ConfirmationSummary aggregates a confirmation pass
type ConfirmationSummary struct {
	Total            int     `json:"total"`
	ConfirmedCount   int     `json:"confirmed_count"`
	RejectedCount    int     `json:"rejected_count"`
	ConfirmationRate float64 `json:"confirmation_rate"`
}
