package ml

import (
	"github.com/exoscan-ai/exoscan-go/pkg/dataset"
	"github.com/exoscan-ai/exoscan-go/pkg/models"
)

// SelectFeatures derives the usable feature columns of a dataset: numeric,
// not fully null, and neither the label nor the identifier column. Order
// follows the dataset's native column order, which keeps feature-importance
// reporting reproducible between runs.
func SelectFeatures(ds *dataset.Dataset, labelColumn, idColumn string) []string {
	var features []string
	for _, col := range ds.Columns() {
		if col.Name == labelColumn || col.Name == idColumn {
			continue
		}
		if !col.IsNumeric() {
			continue
		}
		if col.NullCount() >= ds.NumRows() {
			continue
		}
		features = append(features, col.Name)
	}
	return features
}

// BuildMatrix extracts the feature columns into a dense matrix, filling
// missing values with the column's mean over this dataset, or 0 when the
// mean is undefined. Every requested column must exist; absent columns are
// reported through *models.ErrFeatureMismatch rather than zero-filled.
func BuildMatrix(ds *dataset.Dataset, features []string, schemaID models.SchemaID) ([][]float64, error) {
	var missing []string
	for _, name := range features {
		col := ds.Column(name)
		if col == nil || !col.IsNumeric() {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &models.ErrFeatureMismatch{SchemaID: schemaID, MissingColumns: missing}
	}

	n := ds.NumRows()
	X := make([][]float64, n)
	for i := range X {
		X[i] = make([]float64, len(features))
	}

	for j, name := range features {
		col := ds.Column(name)
		fill := 0.0
		if mean, ok := col.Mean(); ok {
			fill = mean
		}
		for i := 0; i < n; i++ {
			if col.Null[i] {
				X[i][j] = fill
			} else {
				X[i][j] = col.Float[i]
			}
		}
	}
	return X, nil
}
