// Package schema detects which of the three NASA survey table layouts a
// dataset uses and identifies its label and identifier columns. Detection
// never renames or drops columns; it only classifies.
package schema

import (
	"github.com/exoscan-ai/exoscan-go/pkg/dataset"
	"github.com/exoscan-ai/exoscan-go/pkg/models"
)

// formatDefinition describes one recognized survey layout
type formatDefinition struct {
	id              models.SchemaID
	name            string
	markerColumns   []string // all must be present for the format to match
	labelCandidates []string // tried in order; first present-and-populated wins
	idColumn        string
	documentation   string
	expectedLabels  []string
}

// Definitions are evaluated in this order; a dataset carrying markers for
// several formats resolves to the first match.
var formatDefinitions = []formatDefinition{
	{
		id:              models.SchemaKepler,
		name:            "Kepler Objects of Interest (KOI)",
		markerColumns:   []string{"kepoi_name"},
		labelCandidates: []string{"koi_pdisposition", "koi_disposition"},
		idColumn:        "kepoi_name",
		documentation:   "https://exoplanetarchive.ipac.caltech.edu/docs/API_kepcandidate_columns.html",
		expectedLabels:  []string{"CONFIRMED", "CANDIDATE", "FALSE POSITIVE"},
	},
	{
		id:              models.SchemaTESS,
		name:            "TESS Objects of Interest (TOI)",
		markerColumns:   []string{"toi"},
		labelCandidates: []string{"tfopwg_disp"},
		idColumn:        "toi",
		documentation:   "https://exoplanetarchive.ipac.caltech.edu/docs/API_TOI_columns.html",
		expectedLabels:  []string{"APC", "CP", "FA", "FP", "KP", "PC"},
	},
	{
		id:              models.SchemaK2,
		name:            "K2 Planets and Candidates",
		markerColumns:   []string{"pl_name", "pl_orbper"},
		labelCandidates: []string{"disposition"},
		idColumn:        "pl_name",
		documentation:   "https://exoplanetarchive.ipac.caltech.edu/docs/API_k2pandc_columns.html",
		expectedLabels:  []string{"CANDIDATE", "FALSE POSITIVE", "CONFIRMED", "FALSE POSITIVE CANDIDATE"},
	},
}

const sampleColumnLimit = 10

// Detect classifies a dataset into one of the known survey layouts and
// resolves its label column. A recognized dataset without a populated label
// column is still valid (HasLabels=false, prediction-only); an unrecognized
// column set returns *models.ErrSchemaNotRecognized.
func Detect(ds *dataset.Dataset) (models.SchemaDescriptor, error) {
	for _, def := range formatDefinitions {
		if !hasAll(ds, def.markerColumns) {
			continue
		}
		desc := models.SchemaDescriptor{
			SchemaID:       def.id,
			SchemaName:     def.name,
			IDColumn:       def.idColumn,
			ExpectedLabels: def.expectedLabels,
			Documentation:  def.documentation,
		}
		if label, ok := resolveLabelColumn(ds, def.labelCandidates); ok {
			desc.LabelColumn = label
			desc.HasLabels = true
		}
		return desc, nil
	}

	names := ds.ColumnNames()
	if len(names) > sampleColumnLimit {
		names = names[:sampleColumnLimit]
	}
	return models.SchemaDescriptor{}, &models.ErrSchemaNotRecognized{SampleColumns: names}
}

// LabelCandidates returns the label column candidates of a schema, in
// priority order.
func LabelCandidates(id models.SchemaID) []string {
	for _, def := range formatDefinitions {
		if def.id == id {
			return def.labelCandidates
		}
	}
	return nil
}

// resolveLabelColumn picks the first candidate that exists and has at least
// one non-null value. A present but fully null candidate does not qualify.
func resolveLabelColumn(ds *dataset.Dataset, candidates []string) (string, bool) {
	for _, candidate := range candidates {
		col := ds.Column(candidate)
		if col == nil {
			continue
		}
		if col.NullCount() < ds.NumRows() {
			return candidate, true
		}
	}
	return "", false
}

func hasAll(ds *dataset.Dataset, names []string) bool {
	for _, name := range names {
		if !ds.HasColumn(name) {
			return false
		}
	}
	return true
}

// Validate runs detection and summarizes the dataset without modifying it
func Validate(ds *dataset.Dataset) (models.DatasetValidation, error) {
	desc, err := Detect(ds)
	if err != nil {
		return models.DatasetValidation{
			IsValid: false,
			Errors:  []string{err.Error()},
		}, err
	}

	v := models.DatasetValidation{
		IsValid:        true,
		Schema:         desc,
		TotalRows:      ds.NumRows(),
		TotalColumns:   ds.NumColumns(),
		NumericColumns: ds.NumericColumns(),
	}
	if desc.HasLabels {
		v.LabelDistribution = ds.LabelDistribution(desc.LabelColumn)
	} else {
		v.Warnings = append(v.Warnings, "no populated label column; dataset is usable for prediction only")
	}
	if !ds.HasColumn(desc.IDColumn) {
		v.IsValid = false
		v.Errors = append(v.Errors, "missing identifier column: "+desc.IDColumn)
	}
	return v, nil
}
