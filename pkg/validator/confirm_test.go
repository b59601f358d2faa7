package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exoscan-ai/exoscan-go/pkg/models"
)

func TestNormalizeLabel(t *testing.T) {
	cases := map[string]string{
		"CP":             LabelConfirmed,
		"KP":             LabelConfirmed,
		"PC":             LabelCandidate,
		"APC":            LabelCandidate,
		"FP":             LabelFalsePositive,
		"FA":             LabelFalsePositive,
		"CONFIRMED":      LabelConfirmed,
		"confirmed":      LabelConfirmed,
		" pc ":           LabelCandidate,
		"FALSE POSITIVE": LabelFalsePositive,
		"REFUTED":        "REFUTED", // unrecognized labels pass through
	}
	for input, want := range cases {
		assert.Equal(t, want, NormalizeLabel(input), "input %q", input)
	}
}

func prediction(id, label string, confidence float64) models.Prediction {
	return models.Prediction{
		RowID:          id,
		PredictedLabel: label,
		Confidence:     confidence,
	}
}

func TestConfirm(t *testing.T) {
	t.Run("splits on class and threshold", func(t *testing.T) {
		predictions := []models.Prediction{
			prediction("a", LabelConfirmed, 0.95),     // confirmed
			prediction("b", LabelConfirmed, 0.55),     // below threshold
			prediction("c", LabelCandidate, 0.99),     // wrong class
			prediction("d", LabelFalsePositive, 0.99), // wrong class
		}

		result := Confirm(predictions, DefaultPositiveClasses, ConfirmThreshold)

		require.Len(t, result.Confirmed, 1)
		assert.Equal(t, "a", result.Confirmed[0].RowID)
		assert.True(t, result.Confirmed[0].IsConfirmable)
		require.Len(t, result.Rejected, 3)

		assert.Equal(t, 4, result.Summary.Total)
		assert.Equal(t, 1, result.Summary.ConfirmedCount)
		assert.Equal(t, 3, result.Summary.RejectedCount)
		assert.InDelta(t, 0.25, result.Summary.ConfirmationRate, 1e-12)
	})

	t.Run("exactly at the threshold is rejected", func(t *testing.T) {
		predictions := []models.Prediction{
			prediction("edge", LabelConfirmed, ConfirmThreshold),
			prediction("above", LabelConfirmed, ConfirmThreshold+1e-9),
		}

		result := Confirm(predictions, DefaultPositiveClasses, ConfirmThreshold)

		require.Len(t, result.Confirmed, 1)
		assert.Equal(t, "above", result.Confirmed[0].RowID)
		require.Len(t, result.Rejected, 1)
		assert.Equal(t, "edge", result.Rejected[0].RowID)
	})

	t.Run("tess codes normalize before matching", func(t *testing.T) {
		predictions := []models.Prediction{
			prediction("t1", "CP", 0.9),
			prediction("t2", "KP", 0.9),
			prediction("t3", "PC", 0.9),
		}

		result := Confirm(predictions, DefaultPositiveClasses, ConfirmThreshold)

		require.Len(t, result.Confirmed, 2)
		assert.Equal(t, LabelConfirmed, result.Confirmed[0].NormalizedLabel)
		require.Len(t, result.Rejected, 1)
		assert.Equal(t, LabelCandidate, result.Rejected[0].NormalizedLabel)
	})

	t.Run("custom positive classes", func(t *testing.T) {
		predictions := []models.Prediction{
			prediction("x", LabelCandidate, 0.9),
		}

		result := Confirm(predictions, []string{LabelCandidate}, ConfirmThreshold)
		assert.Len(t, result.Confirmed, 1)
	})

	t.Run("idempotent", func(t *testing.T) {
		predictions := []models.Prediction{
			prediction("a", LabelConfirmed, 0.95),
			prediction("b", "PC", 0.85),
			prediction("c", LabelFalsePositive, 0.6),
		}

		first := Confirm(predictions, DefaultPositiveClasses, ConfirmThreshold)
		second := Confirm(predictions, DefaultPositiveClasses, ConfirmThreshold)
		assert.Equal(t, first, second)
	})

	t.Run("empty input", func(t *testing.T) {
		result := Confirm(nil, DefaultPositiveClasses, ConfirmThreshold)
		assert.Empty(t, result.Confirmed)
		assert.Empty(t, result.Rejected)
		assert.Equal(t, 0, result.Summary.Total)
		assert.Equal(t, 0.0, result.Summary.ConfirmationRate)
	})
}
