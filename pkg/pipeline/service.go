// Package pipeline wires format detection, feature selection, training,
// prediction and confirmation into the operation surface the API exposes.
// All cross-request state lives in the model store; the service itself only
// carries locks and configuration.
package pipeline

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/exoscan-ai/exoscan-go/pkg/dataset"
	"github.com/exoscan-ai/exoscan-go/pkg/ml"
	"github.com/exoscan-ai/exoscan-go/pkg/models"
	"github.com/exoscan-ai/exoscan-go/pkg/modelstore"
	"github.com/exoscan-ai/exoscan-go/pkg/schema"
	"github.com/exoscan-ai/exoscan-go/pkg/validator"
)

// Service is the training/prediction orchestrator. At most one training run
// per schema is in flight at a time; prediction for the same schema reads
// whatever model the store last committed.
type Service struct {
	store   *modelstore.Store
	log     zerolog.Logger
	mu      sync.Mutex
	inTrain map[models.SchemaID]*sync.Mutex
}

// NewService creates a pipeline service over a model store
func NewService(store *modelstore.Store, log zerolog.Logger) *Service {
	return &Service{
		store:   store,
		log:     log.With().Str("component", "pipeline").Logger(),
		inTrain: make(map[models.SchemaID]*sync.Mutex),
	}
}

func (s *Service) trainLock(id models.SchemaID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.inTrain[id]
	if !ok {
		lock = &sync.Mutex{}
		s.inTrain[id] = lock
	}
	return lock
}

// Analyze detects a dataset's schema and summarizes it without training
func (s *Service) Analyze(ds *dataset.Dataset) (models.DatasetValidation, error) {
	return schema.Validate(ds)
}

// TrainRequest carries the parameters of one training call
type TrainRequest struct {
	TestFraction    float64
	Seed            int64
	Hyperparameters models.Hyperparameters
}

// Train detects the dataset's schema, fits a model and persists it,
// overwriting any previous model for that schema.
func (s *Service) Train(ds *dataset.Dataset, req TrainRequest) (*models.TrainingReport, error) {
	if ds.NumRows() == 0 {
		return nil, &models.ErrEmptyDataset{}
	}
	desc, err := schema.Detect(ds)
	if err != nil {
		return nil, err
	}
	if !desc.HasLabels {
		return nil, &models.ErrMissingLabelColumn{
			SchemaID:   desc.SchemaID,
			Candidates: schema.LabelCandidates(desc.SchemaID),
		}
	}

	lock := s.trainLock(desc.SchemaID)
	lock.Lock()
	defer lock.Unlock()

	s.log.Info().
		Str("schema", string(desc.SchemaID)).
		Str("label_column", desc.LabelColumn).
		Int("rows", ds.NumRows()).
		Msg("training started")

	model, err := ml.Train(ds, desc, ml.TrainOptions{
		TestFraction:    req.TestFraction,
		Seed:            req.Seed,
		Hyperparameters: req.Hyperparameters,
	})
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(model); err != nil {
		return nil, fmt.Errorf("failed to persist model: %w", err)
	}

	s.log.Info().
		Str("schema", string(desc.SchemaID)).
		Float64("accuracy", model.Report.Accuracy).
		Int("features", model.Report.NumFeatures).
		Msg("training finished")
	return &model.Report, nil
}

// Predict detects the dataset's schema, loads its persisted model and
// returns per-row predictions. Missing a model is an explicit error, never
// an empty result.
func (s *Service) Predict(ds *dataset.Dataset) ([]models.Prediction, error) {
	if ds.NumRows() == 0 {
		return nil, &models.ErrEmptyDataset{}
	}
	desc, err := schema.Detect(ds)
	if err != nil {
		return nil, err
	}
	model, err := s.store.Load(desc.SchemaID)
	if err != nil {
		return nil, err
	}
	return ml.Predict(model, ds)
}

// ValidateCandidates runs the confirmation flow: rows whose current
// disposition is CANDIDATE or FALSE POSITIVE are predicted, and each
// prediction is checked against the positive classes and the confirmation
// threshold.
func (s *Service) ValidateCandidates(ds *dataset.Dataset) (*models.ConfirmationResult, error) {
	if ds.NumRows() == 0 {
		return nil, &models.ErrEmptyDataset{}
	}
	desc, err := schema.Detect(ds)
	if err != nil {
		return nil, err
	}

	candidates := ds
	if desc.HasLabels {
		labelCol := ds.Column(desc.LabelColumn)
		candidates = ds.FilterRows(func(row int) bool {
			if labelCol.Null[row] {
				return false
			}
			switch validator.NormalizeLabel(ds.StringValue(desc.LabelColumn, row)) {
			case validator.LabelCandidate, validator.LabelFalsePositive:
				return true
			}
			return false
		})
	}
	if candidates.NumRows() == 0 {
		return &models.ConfirmationResult{
			Confirmed: []models.ConfirmationVerdict{},
			Rejected:  []models.ConfirmationVerdict{},
		}, nil
	}

	model, err := s.store.Load(desc.SchemaID)
	if err != nil {
		return nil, err
	}
	predictions, err := ml.Predict(model, candidates)
	if err != nil {
		return nil, err
	}

	result := validator.Confirm(predictions, validator.DefaultPositiveClasses, validator.ConfirmThreshold)
	s.log.Info().
		Str("schema", string(desc.SchemaID)).
		Int("analyzed", result.Summary.Total).
		Int("confirmed", result.Summary.ConfirmedCount).
		Msg("confirmation analysis finished")
	return &result, nil
}

// ModelStats returns the stored training report for a schema
func (s *Service) ModelStats(id models.SchemaID) (*models.TrainingReport, error) {
	model, err := s.store.Load(id)
	if err != nil {
		return nil, err
	}
	return &model.Report, nil
}

// ListModels returns the training reports of all persisted models
func (s *Service) ListModels() ([]models.TrainingReport, error) {
	return s.store.List()
}

// DeleteModel removes the persisted model for a schema
func (s *Service) DeleteModel(id models.SchemaID) error {
	return s.store.Delete(id)
}
