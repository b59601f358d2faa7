package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	t.Run("infers column types", func(t *testing.T) {
		ds, err := ParseCSVString("name,period,habitable\nKepler-22b,289.9,true\nKepler-10b,0.84,false\n")
		require.NoError(t, err)

		assert.Equal(t, 2, ds.NumRows())
		assert.Equal(t, []string{"name", "period", "habitable"}, ds.ColumnNames())
		assert.Equal(t, KindString, ds.Column("name").Kind)
		assert.Equal(t, KindNumeric, ds.Column("period").Kind)
		assert.Equal(t, KindBoolean, ds.Column("habitable").Kind)
	})

	t.Run("skips comment banner lines", func(t *testing.T) {
		content := "# This file was produced by the NASA Exoplanet Archive\n" +
			"# Column kepoi_name: KOI Name\n" +
			"kepoi_name,koi_period\nK00752.01,9.48\n"
		ds, err := ParseCSVString(content)
		require.NoError(t, err)
		assert.Equal(t, 1, ds.NumRows())
		assert.True(t, ds.HasColumn("kepoi_name"))
	})

	t.Run("empty cells become nulls", func(t *testing.T) {
		ds, err := ParseCSVString("a,b\n1.5,\n,x\n2.5,y\n")
		require.NoError(t, err)

		a := ds.Column("a")
		require.NotNil(t, a)
		assert.Equal(t, KindNumeric, a.Kind)
		assert.Equal(t, 1, a.NullCount())

		b := ds.Column("b")
		assert.Equal(t, KindString, b.Kind)
		assert.Equal(t, 1, b.NullCount())
	})

	t.Run("mixed column falls back to string", func(t *testing.T) {
		ds, err := ParseCSVString("v\n1.5\nnot-a-number\n")
		require.NoError(t, err)
		assert.Equal(t, KindString, ds.Column("v").Kind)
	})

	t.Run("all-empty column is fully null", func(t *testing.T) {
		ds, err := ParseCSVString("a,empty\n1,\n2,\n")
		require.NoError(t, err)
		col := ds.Column("empty")
		assert.Equal(t, ds.NumRows(), col.NullCount())
	})

	t.Run("no header is an error", func(t *testing.T) {
		_, err := ParseCSVString("")
		assert.Error(t, err)
	})
}

func TestColumnMean(t *testing.T) {
	t.Run("ignores nulls", func(t *testing.T) {
		ds, err := ParseCSVString("v\n1\n\n3\n")
		require.NoError(t, err)
		mean, ok := ds.Column("v").Mean()
		require.True(t, ok)
		assert.InDelta(t, 2.0, mean, 1e-12)
	})

	t.Run("undefined for fully null column", func(t *testing.T) {
		ds, err := ParseCSVString("a,v\n1,\n2,\n")
		require.NoError(t, err)
		_, ok := ds.Column("v").Mean()
		assert.False(t, ok)
	})

	t.Run("undefined for text column", func(t *testing.T) {
		ds, err := ParseCSVString("v\nx\ny\n")
		require.NoError(t, err)
		_, ok := ds.Column("v").Mean()
		assert.False(t, ok)
	})
}

func TestFilterRows(t *testing.T) {
	ds, err := ParseCSVString("name,score\na,1\nb,2\nc,3\n")
	require.NoError(t, err)

	filtered := ds.FilterRows(func(row int) bool {
		return ds.Column("score").Float[row] > 1.5
	})

	assert.Equal(t, 2, filtered.NumRows())
	assert.Equal(t, "b", filtered.StringValue("name", 0))
	assert.Equal(t, "c", filtered.StringValue("name", 1))
	// Source dataset is untouched
	assert.Equal(t, 3, ds.NumRows())
}

func TestLabelDistribution(t *testing.T) {
	ds, err := ParseCSVString("disp\nCONFIRMED\nCANDIDATE\nCONFIRMED\n\n")
	require.NoError(t, err)

	dist := ds.LabelDistribution("disp")
	assert.Equal(t, map[string]int{"CONFIRMED": 2, "CANDIDATE": 1}, dist)
}
