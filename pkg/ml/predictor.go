package ml

import (
	"fmt"
	"strings"

	"github.com/exoscan-ai/exoscan-go/pkg/dataset"
	"github.com/exoscan-ai/exoscan-go/pkg/models"
)

// Predict applies a trained model to a dataset, producing one prediction
// per row. The model's frozen feature set is re-applied as-is: a dataset
// missing any frozen feature column fails with *models.ErrFeatureMismatch
// instead of being silently zero-filled. Null fill uses the means of the
// dataset being predicted, not the training dataset.
func Predict(model *TrainedModel, ds *dataset.Dataset) ([]models.Prediction, error) {
	if model == nil || model.Classifier == nil {
		return nil, &models.ErrModelNotTrained{}
	}
	if ds.NumRows() == 0 {
		return nil, &models.ErrEmptyDataset{}
	}

	X, err := BuildMatrix(ds, model.FeatureColumns, model.SchemaID)
	if err != nil {
		return nil, err
	}

	labelCol := ds.Column(model.LabelColumn)

	predictions := make([]models.Prediction, ds.NumRows())
	for i, x := range X {
		probs, err := model.Classifier.PredictProba(x)
		if err != nil {
			return nil, fmt.Errorf("prediction failed at row %d: %w", i, err)
		}

		best := 0
		for c, p := range probs {
			if p > probs[best] {
				best = c
			}
		}
		label, err := model.Encoder.Inverse(best)
		if err != nil {
			return nil, fmt.Errorf("prediction failed at row %d: %w", i, err)
		}

		byClass := make(map[string]float64, len(probs))
		for c, p := range probs {
			byClass[model.Encoder.Classes[c]] = p
		}

		original := models.UnknownLabel
		if labelCol != nil && !labelCol.Null[i] {
			original = strings.TrimSpace(ds.StringValue(model.LabelColumn, i))
		}

		predictions[i] = models.Prediction{
			RowID:          ds.StringValue(model.IDColumn, i),
			PredictedLabel: label,
			Confidence:     probs[best],
			Probabilities:  byClass,
			OriginalLabel:  original,
		}
	}
	return predictions, nil
}
