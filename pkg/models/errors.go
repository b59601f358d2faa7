package models

import (
	"fmt"
	"strings"
)

// ErrSchemaNotRecognized is returned when a dataset's columns match none of
// the known survey layouts. SampleColumns carries up to the first ten column
// names observed, for diagnostics.
type ErrSchemaNotRecognized struct {
	SampleColumns []string
}

func (e *ErrSchemaNotRecognized) Error() string {
	return fmt.Sprintf("dataset format not recognized (supported: kepler [kepoi_name], tess [toi], k2 [pl_name + pl_orbper]); columns seen: %s",
		strings.Join(e.SampleColumns, ", "))
}

// ErrMissingLabelColumn is returned when training is requested on a dataset
// whose recognized schema has no usable label column.
type ErrMissingLabelColumn struct {
	SchemaID   SchemaID
	Candidates []string
}

func (e *ErrMissingLabelColumn) Error() string {
	return fmt.Sprintf("no label column for training: schema %q has none of %s populated",
		e.SchemaID, strings.Join(e.Candidates, ", "))
}

// ErrEmptyDataset is returned when an operation receives a dataset with zero rows
type ErrEmptyDataset struct{}

func (e *ErrEmptyDataset) Error() string { return "dataset is empty (0 rows)" }

// ErrNoUsableFeatures is returned when feature selection yields no columns
type ErrNoUsableFeatures struct {
	SchemaID SchemaID
}

func (e *ErrNoUsableFeatures) Error() string {
	return fmt.Sprintf("no usable numeric feature columns for schema %q", e.SchemaID)
}

// ErrModelNotTrained is returned when prediction is requested for a schema
// with no persisted model.
type ErrModelNotTrained struct {
	SchemaID SchemaID
}

func (e *ErrModelNotTrained) Error() string {
	return fmt.Sprintf("no trained model for schema %q; train a model first", e.SchemaID)
}

// ErrFeatureMismatch is returned when a prediction dataset lacks columns that
// were frozen into the model's feature set at training time. Missing columns
// are never silently zero-filled.
type ErrFeatureMismatch struct {
	SchemaID       SchemaID
	MissingColumns []string
}

func (e *ErrFeatureMismatch) Error() string {
	return fmt.Sprintf("dataset is missing %d feature column(s) required by the %q model: %s",
		len(e.MissingColumns), e.SchemaID, strings.Join(e.MissingColumns, ", "))
}

// ErrStratificationInfeasible is returned when a label class is too small to
// survive a stratified train/test split.
type ErrStratificationInfeasible struct {
	Class string
	Count int
}

func (e *ErrStratificationInfeasible) Error() string {
	return fmt.Sprintf("stratified split infeasible: class %q has only %d sample(s), need at least 2", e.Class, e.Count)
}
