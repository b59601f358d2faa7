package models

// SchemaID identifies one of the NASA survey table layouts the service recognizes
type SchemaID string

const (
	SchemaKepler SchemaID = "kepler" // Kepler Objects of Interest (KOI)
	SchemaTESS   SchemaID = "tess"   // TESS Objects of Interest (TOI)
	SchemaK2     SchemaID = "k2"     // K2 Planets and Candidates
)

// Valid reports whether the schema id is one of the recognized layouts
func (s SchemaID) Valid() bool {
	switch s {
	case SchemaKepler, SchemaTESS, SchemaK2:
		return true
	}
	return false
}

// SchemaDescriptor is the result of format detection on a dataset.
// It is derived once per dataset and never mutated afterwards.
type SchemaDescriptor struct {
	SchemaID       SchemaID `json:"schema_id"`
	SchemaName     string   `json:"schema_name"`
	LabelColumn    string   `json:"label_column,omitempty"`
	IDColumn       string   `json:"id_column"`
	HasLabels      bool     `json:"has_labels"`
	ExpectedLabels []string `json:"expected_labels"`
	Documentation  string   `json:"documentation,omitempty"`
}

// DatasetValidation summarizes a dataset after format detection.
// The dataset itself is returned to the caller unmodified.
type DatasetValidation struct {
	IsValid           bool             `json:"is_valid"`
	Schema            SchemaDescriptor `json:"schema"`
	LabelDistribution map[string]int   `json:"label_distribution,omitempty"`
	TotalRows         int              `json:"total_rows"`
	TotalColumns      int              `json:"total_columns"`
	NumericColumns    []string         `json:"numeric_columns"`
	Errors            []string         `json:"errors,omitempty"`
	Warnings          []string         `json:"warnings,omitempty"`
}
