package ml

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelEncoder(t *testing.T) {
	t.Run("classes are sorted regardless of observation order", func(t *testing.T) {
		var le LabelEncoder
		le.Fit([]string{"FALSE POSITIVE", "CONFIRMED", "CANDIDATE", "CONFIRMED"})
		assert.Equal(t, []string{"CANDIDATE", "CONFIRMED", "FALSE POSITIVE"}, le.Classes)

		var reordered LabelEncoder
		reordered.Fit([]string{"CANDIDATE", "FALSE POSITIVE", "CONFIRMED"})
		assert.Equal(t, le.Classes, reordered.Classes)
	})

	t.Run("transform and inverse round trip", func(t *testing.T) {
		var le LabelEncoder
		le.Fit([]string{"CONFIRMED", "CANDIDATE"})

		encoded, err := le.Transform([]string{"CONFIRMED", "CANDIDATE", "CONFIRMED"})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 0, 1}, encoded)

		label, err := le.Inverse(1)
		require.NoError(t, err)
		assert.Equal(t, "CONFIRMED", label)
	})

	t.Run("unknown label is an error", func(t *testing.T) {
		var le LabelEncoder
		le.Fit([]string{"CONFIRMED", "CANDIDATE"})
		_, err := le.Transform([]string{"REFUTED"})
		assert.Error(t, err)
	})

	t.Run("index out of range is an error", func(t *testing.T) {
		var le LabelEncoder
		le.Fit([]string{"CONFIRMED"})
		_, err := le.Inverse(3)
		assert.Error(t, err)
		_, err = le.Inverse(-1)
		assert.Error(t, err)
	})

	t.Run("survives JSON round trip", func(t *testing.T) {
		var le LabelEncoder
		le.Fit([]string{"CANDIDATE", "CONFIRMED"})

		data, err := json.Marshal(&le)
		require.NoError(t, err)

		var restored LabelEncoder
		require.NoError(t, json.Unmarshal(data, &restored))

		encoded, err := restored.Transform([]string{"CONFIRMED"})
		require.NoError(t, err)
		assert.Equal(t, []int{1}, encoded)
	})
}
