package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateMetrics(t *testing.T) {
	classes := []string{"CANDIDATE", "CONFIRMED"}

	t.Run("perfect prediction", func(t *testing.T) {
		y := []int{0, 1, 0, 1}
		m := CalculateMetrics(y, y, classes)
		assert.Equal(t, 1.0, m.Accuracy)
		assert.Equal(t, 4, m.Correct)
		assert.Equal(t, [][]int{{2, 0}, {0, 2}}, m.ConfusionMatrix)
		assert.Equal(t, 1.0, m.Precision["CANDIDATE"])
		assert.Equal(t, 1.0, m.Recall["CONFIRMED"])
		assert.Equal(t, 1.0, m.F1Score["CANDIDATE"])
	})

	t.Run("mixed prediction", func(t *testing.T) {
		yTrue := []int{0, 0, 0, 1, 1, 1}
		yPred := []int{0, 0, 1, 1, 1, 0}
		m := CalculateMetrics(yTrue, yPred, classes)

		assert.InDelta(t, 4.0/6.0, m.Accuracy, 1e-12)
		assert.Equal(t, [][]int{{2, 1}, {1, 2}}, m.ConfusionMatrix)
		assert.InDelta(t, 2.0/3.0, m.Precision["CANDIDATE"], 1e-12)
		assert.InDelta(t, 2.0/3.0, m.Recall["CANDIDATE"], 1e-12)
		assert.Equal(t, map[string]int{"CANDIDATE": 3, "CONFIRMED": 3}, m.Support)
	})

	t.Run("class never predicted has zero precision", func(t *testing.T) {
		yTrue := []int{0, 1, 1}
		yPred := []int{0, 0, 0}
		m := CalculateMetrics(yTrue, yPred, classes)
		assert.Equal(t, 0.0, m.Precision["CONFIRMED"])
		assert.Equal(t, 0.0, m.Recall["CONFIRMED"])
		assert.Equal(t, 0.0, m.F1Score["CONFIRMED"])
	})

	t.Run("empty input", func(t *testing.T) {
		m := CalculateMetrics(nil, nil, classes)
		assert.Equal(t, 0.0, m.Accuracy)
		assert.Equal(t, 0, m.TotalSamples)
		require.Len(t, m.ConfusionMatrix, 2)
	})
}
