package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exoscan-ai/exoscan-go/pkg/dataset"
	"github.com/exoscan-ai/exoscan-go/pkg/models"
)

func mustParse(t *testing.T, csv string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.ParseCSVString(csv)
	require.NoError(t, err)
	return ds
}

func TestDetect(t *testing.T) {
	t.Run("kepler layout", func(t *testing.T) {
		ds := mustParse(t, "kepoi_name,koi_pdisposition,koi_period\nK00752.01,CANDIDATE,9.48\n")
		desc, err := Detect(ds)
		require.NoError(t, err)
		assert.Equal(t, models.SchemaKepler, desc.SchemaID)
		assert.Equal(t, "koi_pdisposition", desc.LabelColumn)
		assert.Equal(t, "kepoi_name", desc.IDColumn)
		assert.True(t, desc.HasLabels)
	})

	t.Run("kepler falls back to koi_disposition", func(t *testing.T) {
		ds := mustParse(t, "kepoi_name,koi_disposition,koi_period,koi_duration\n"+
			"K00001.01,CONFIRMED,9.48,2.9\nK00002.01,CANDIDATE,3.52,1.1\nK00003.01,FALSE POSITIVE,1.73,4.2\n")
		desc, err := Detect(ds)
		require.NoError(t, err)
		assert.Equal(t, models.SchemaKepler, desc.SchemaID)
		assert.Equal(t, "koi_disposition", desc.LabelColumn)
		assert.True(t, desc.HasLabels)
	})

	t.Run("tess layout", func(t *testing.T) {
		ds := mustParse(t, "toi,tfopwg_disp,pl_orbper\n1000.01,PC,2.17\n")
		desc, err := Detect(ds)
		require.NoError(t, err)
		assert.Equal(t, models.SchemaTESS, desc.SchemaID)
		assert.Equal(t, "tfopwg_disp", desc.LabelColumn)
		assert.Equal(t, "toi", desc.IDColumn)
	})

	t.Run("k2 layout needs both markers", func(t *testing.T) {
		ds := mustParse(t, "pl_name,pl_orbper,disposition\nK2-18 b,32.9,CONFIRMED\n")
		desc, err := Detect(ds)
		require.NoError(t, err)
		assert.Equal(t, models.SchemaK2, desc.SchemaID)
		assert.Equal(t, "disposition", desc.LabelColumn)

		// pl_name alone is not enough
		partial := mustParse(t, "pl_name,disposition\nK2-18 b,CONFIRMED\n")
		_, err = Detect(partial)
		assert.Error(t, err)
	})

	t.Run("kepler wins over overlapping markers", func(t *testing.T) {
		// A table carrying both the KOI and TOI marker columns resolves
		// to the higher-priority kepler layout.
		ds := mustParse(t, "kepoi_name,koi_disposition,toi,tfopwg_disp\nK00752.01,CONFIRMED,1000.01,PC\n")
		desc, err := Detect(ds)
		require.NoError(t, err)
		assert.Equal(t, models.SchemaKepler, desc.SchemaID)
	})

	t.Run("label candidates tried in priority order", func(t *testing.T) {
		// koi_pdisposition present but fully null: fall through to koi_disposition
		ds := mustParse(t, "kepoi_name,koi_pdisposition,koi_disposition\nK00752.01,,CONFIRMED\nK00753.01,,CANDIDATE\n")
		desc, err := Detect(ds)
		require.NoError(t, err)
		assert.Equal(t, "koi_disposition", desc.LabelColumn)
		assert.True(t, desc.HasLabels)
	})

	t.Run("fully null label means prediction only", func(t *testing.T) {
		ds := mustParse(t, "toi,tfopwg_disp,pl_orbper\n1000.01,,2.17\n1001.01,,5.66\n")
		desc, err := Detect(ds)
		require.NoError(t, err)
		assert.Equal(t, models.SchemaTESS, desc.SchemaID)
		assert.False(t, desc.HasLabels)
		assert.Empty(t, desc.LabelColumn)
	})

	t.Run("unrecognized columns", func(t *testing.T) {
		ds := mustParse(t, "a,b,c\n1,2,3\n")
		_, err := Detect(ds)
		var notRecognized *models.ErrSchemaNotRecognized
		require.True(t, errors.As(err, &notRecognized))
		assert.Equal(t, []string{"a", "b", "c"}, notRecognized.SampleColumns)
	})

	t.Run("sample columns capped at ten", func(t *testing.T) {
		ds := mustParse(t, "c1,c2,c3,c4,c5,c6,c7,c8,c9,c10,c11,c12\n1,2,3,4,5,6,7,8,9,10,11,12\n")
		_, err := Detect(ds)
		var notRecognized *models.ErrSchemaNotRecognized
		require.True(t, errors.As(err, &notRecognized))
		assert.Len(t, notRecognized.SampleColumns, 10)
	})
}

func TestLabelCandidates(t *testing.T) {
	assert.Equal(t, []string{"koi_pdisposition", "koi_disposition"}, LabelCandidates(models.SchemaKepler))
	assert.Equal(t, []string{"tfopwg_disp"}, LabelCandidates(models.SchemaTESS))
	assert.Equal(t, []string{"disposition"}, LabelCandidates(models.SchemaK2))
	assert.Nil(t, LabelCandidates(models.SchemaID("unknown")))
}

func TestValidate(t *testing.T) {
	t.Run("labeled dataset", func(t *testing.T) {
		ds := mustParse(t, "kepoi_name,koi_pdisposition,koi_period\nK00752.01,CANDIDATE,9.48\nK00753.01,FALSE POSITIVE,1.73\n")
		v, err := Validate(ds)
		require.NoError(t, err)
		assert.True(t, v.IsValid)
		assert.Equal(t, 2, v.TotalRows)
		assert.Equal(t, 3, v.TotalColumns)
		assert.Equal(t, []string{"koi_period"}, v.NumericColumns)
		assert.Equal(t, map[string]int{"CANDIDATE": 1, "FALSE POSITIVE": 1}, v.LabelDistribution)
		assert.Empty(t, v.Warnings)
	})

	t.Run("prediction-only dataset carries a warning", func(t *testing.T) {
		ds := mustParse(t, "toi,tfopwg_disp,pl_orbper\n1000.01,,2.17\n")
		v, err := Validate(ds)
		require.NoError(t, err)
		assert.True(t, v.IsValid)
		assert.NotEmpty(t, v.Warnings)
		assert.Empty(t, v.LabelDistribution)
	})

	t.Run("unrecognized dataset is invalid", func(t *testing.T) {
		ds := mustParse(t, "x,y\n1,2\n")
		v, err := Validate(ds)
		assert.Error(t, err)
		assert.False(t, v.IsValid)
		assert.NotEmpty(t, v.Errors)
	})
}
