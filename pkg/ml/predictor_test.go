package ml

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exoscan-ai/exoscan-go/pkg/dataset"
	"github.com/exoscan-ai/exoscan-go/pkg/models"
)

func trainKeplerModel(t *testing.T) *TrainedModel {
	t.Helper()
	ds := makeKeplerDataset(t, 120, 0)
	model, err := Train(ds, keplerDescriptor(), TrainOptions{
		TestFraction:    0.2,
		Seed:            42,
		Hyperparameters: testHyperparameters(),
	})
	require.NoError(t, err)
	return model
}

func TestPredict(t *testing.T) {
	model := trainKeplerModel(t)

	t.Run("one prediction per row", func(t *testing.T) {
		ds := makeKeplerDataset(t, 30, 0)
		predictions, err := Predict(model, ds)
		require.NoError(t, err)
		require.Len(t, predictions, 30)

		for i, p := range predictions {
			assert.Equal(t, ds.StringValue("kepoi_name", i), p.RowID)
			assert.Contains(t, model.Encoder.Classes, p.PredictedLabel)
			assert.Equal(t, ds.StringValue("koi_pdisposition", i), p.OriginalLabel)

			sum := 0.0
			for _, prob := range p.Probabilities {
				sum += prob
			}
			assert.InDelta(t, 1.0, sum, 1e-9)
			assert.Equal(t, p.Probabilities[p.PredictedLabel], p.Confidence)
		}
	})

	t.Run("rows without labels report UNKNOWN", func(t *testing.T) {
		ds := makeKeplerDataset(t, 0, 10)
		predictions, err := Predict(model, ds)
		require.NoError(t, err)
		for _, p := range predictions {
			assert.Equal(t, models.UnknownLabel, p.OriginalLabel)
		}
	})

	t.Run("absent label column reports UNKNOWN", func(t *testing.T) {
		ds, err := dataset.New([]dataset.Column{
			{Name: "kepoi_name", Kind: dataset.KindString, Text: []string{"K1.01"}, Null: []bool{false}},
			{Name: "koi_period", Kind: dataset.KindNumeric, Float: []float64{11.0}, Null: []bool{false}},
			{Name: "koi_depth", Kind: dataset.KindNumeric, Float: []float64{600.0}, Null: []bool{false}},
		})
		require.NoError(t, err)

		predictions, err := Predict(model, ds)
		require.NoError(t, err)
		require.Len(t, predictions, 1)
		assert.Equal(t, models.UnknownLabel, predictions[0].OriginalLabel)
	})

	t.Run("missing feature column fails", func(t *testing.T) {
		ds, err := dataset.New([]dataset.Column{
			{Name: "kepoi_name", Kind: dataset.KindString, Text: []string{"K1.01"}, Null: []bool{false}},
			{Name: "koi_period", Kind: dataset.KindNumeric, Float: []float64{11.0}, Null: []bool{false}},
		})
		require.NoError(t, err)

		_, err = Predict(model, ds)
		var mismatch *models.ErrFeatureMismatch
		require.True(t, errors.As(err, &mismatch))
		assert.Equal(t, []string{"koi_depth"}, mismatch.MissingColumns)
	})

	t.Run("nil model fails", func(t *testing.T) {
		ds := makeKeplerDataset(t, 5, 0)
		_, err := Predict(nil, ds)
		var notTrained *models.ErrModelNotTrained
		assert.True(t, errors.As(err, &notTrained))
	})

	t.Run("empty dataset fails", func(t *testing.T) {
		ds, err := dataset.New([]dataset.Column{
			{Name: "kepoi_name", Kind: dataset.KindString, Text: nil, Null: nil},
		})
		require.NoError(t, err)
		_, err = Predict(model, ds)
		var empty *models.ErrEmptyDataset
		assert.True(t, errors.As(err, &empty))
	})
}
