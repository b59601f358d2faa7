package ml

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/exoscan-ai/exoscan-go/pkg/dataset"
	"github.com/exoscan-ai/exoscan-go/pkg/models"
)

// TrainedModel bundles a fitted classifier with the context frozen at
// training time: the feature set, the label encoding and the columns they
// were derived from. The model store persists and restores it as one unit.
type TrainedModel struct {
	SchemaID       models.SchemaID            `json:"schema_id"`
	LabelColumn    string                     `json:"label_column"`
	IDColumn       string                     `json:"id_column"`
	FeatureColumns []string                   `json:"feature_columns"`
	Encoder        LabelEncoder               `json:"encoder"`
	Classifier     *GradientBoostedClassifier `json:"classifier"`
	Report         models.TrainingReport      `json:"report"`
}

// TrainOptions are the caller-supplied knobs of one training run
type TrainOptions struct {
	TestFraction    float64
	Seed            int64
	Hyperparameters models.Hyperparameters
}

// minTrainingRows is the row count under which training proceeds with a warning
const minTrainingRows = 10

// Train fits a gradient-boosted classifier on a labeled dataset. The
// feature set is derived here and frozen into the returned model; every
// later prediction against this model reuses it unchanged.
func Train(ds *dataset.Dataset, desc models.SchemaDescriptor, opts TrainOptions) (*TrainedModel, error) {
	if ds.NumRows() == 0 {
		return nil, &models.ErrEmptyDataset{}
	}
	if !desc.HasLabels || desc.LabelColumn == "" {
		return nil, &models.ErrMissingLabelColumn{SchemaID: desc.SchemaID}
	}
	if opts.TestFraction <= 0 || opts.TestFraction >= 1 {
		opts.TestFraction = 0.2
	}
	hp := opts.Hyperparameters.Normalize()

	// Rows without a label cannot train; keep the rest
	labelCol := ds.Column(desc.LabelColumn)
	if labelCol == nil {
		return nil, &models.ErrMissingLabelColumn{SchemaID: desc.SchemaID, Candidates: []string{desc.LabelColumn}}
	}
	labeled := ds.FilterRows(func(row int) bool { return !labelCol.Null[row] })
	if labeled.NumRows() == 0 {
		return nil, &models.ErrMissingLabelColumn{SchemaID: desc.SchemaID, Candidates: []string{desc.LabelColumn}}
	}

	var warnings []string
	if dropped := ds.NumRows() - labeled.NumRows(); dropped > 0 {
		warnings = append(warnings, fmt.Sprintf("dropped %d row(s) with missing label", dropped))
	}
	if labeled.NumRows() < minTrainingRows {
		warnings = append(warnings, fmt.Sprintf("only %d training rows; metrics will be unreliable", labeled.NumRows()))
	}

	features := SelectFeatures(labeled, desc.LabelColumn, desc.IDColumn)
	if len(features) == 0 {
		return nil, &models.ErrNoUsableFeatures{SchemaID: desc.SchemaID}
	}

	X, err := BuildMatrix(labeled, features, desc.SchemaID)
	if err != nil {
		return nil, err
	}

	labels := make([]string, labeled.NumRows())
	for i := range labels {
		labels[i] = strings.TrimSpace(labeled.StringValue(desc.LabelColumn, i))
	}

	var encoder LabelEncoder
	encoder.Fit(labels)
	if len(encoder.Classes) < 2 {
		return nil, fmt.Errorf("training needs at least 2 distinct label values, got %d", len(encoder.Classes))
	}
	y, err := encoder.Transform(labels)
	if err != nil {
		return nil, fmt.Errorf("failed to encode labels: %w", err)
	}

	trainIdx, testIdx, err := StratifiedSplit(y, encoder.Classes, opts.TestFraction, opts.Seed)
	if err != nil {
		return nil, err
	}

	trainX, trainY := selectRows(X, y, trainIdx)
	testX, testY := selectRows(X, y, testIdx)

	classifier := NewGradientBoostedClassifier(hp, opts.Seed)
	if err := classifier.Train(trainX, trainY, encoder.Classes, features); err != nil {
		return nil, fmt.Errorf("failed to fit classifier: %w", err)
	}

	predY := make([]int, len(testX))
	for i, x := range testX {
		pred, _, err := classifier.Predict(x)
		if err != nil {
			return nil, fmt.Errorf("evaluation failed at test row %d: %w", i, err)
		}
		predY[i] = pred
	}
	metrics := CalculateMetrics(testY, predY, encoder.Classes)

	report := models.TrainingReport{
		SchemaID:          desc.SchemaID,
		LabelColumn:       desc.LabelColumn,
		IDColumn:          desc.IDColumn,
		FeatureColumns:    features,
		NumFeatures:       len(features),
		LabelClasses:      encoder.Classes,
		NumClasses:        len(encoder.Classes),
		NumTrainSamples:   len(trainX),
		NumTestSamples:    len(testX),
		Accuracy:          metrics.Accuracy,
		PrecisionByClass:  metrics.Precision,
		RecallByClass:     metrics.Recall,
		F1ByClass:         metrics.F1Score,
		ConfusionMatrix:   metrics.ConfusionMatrix,
		FeatureImportance: rankedImportance(classifier.FeatureImportance()),
		Hyperparameters:   hp,
		Warnings:          warnings,
		TrainedAt:         time.Now().UTC(),
	}

	return &TrainedModel{
		SchemaID:       desc.SchemaID,
		LabelColumn:    desc.LabelColumn,
		IDColumn:       desc.IDColumn,
		FeatureColumns: features,
		Encoder:        encoder,
		Classifier:     classifier,
		Report:         report,
	}, nil
}

func selectRows(X [][]float64, y []int, indices []int) ([][]float64, []int) {
	outX := make([][]float64, len(indices))
	outY := make([]int, len(indices))
	for i, idx := range indices {
		outX[i] = X[idx]
		outY[i] = y[idx]
	}
	return outX, outY
}

// rankedImportance sorts normalized importances descending, with the feature
// name as tiebreaker so the ordering is deterministic.
func rankedImportance(importance map[string]float64) []models.FeatureWeight {
	ranked := make([]models.FeatureWeight, 0, len(importance))
	for feature, weight := range importance {
		ranked = append(ranked, models.FeatureWeight{Feature: feature, Weight: weight})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Weight != ranked[j].Weight {
			return ranked[i].Weight > ranked[j].Weight
		}
		return ranked[i].Feature < ranked[j].Feature
	})
	return ranked
}
