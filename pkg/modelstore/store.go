// Package modelstore persists one trained model per schema in SQLite. A
// save is a single-row upsert inside a transaction, so the classifier blob,
// feature set, label encoding and metrics always travel together: a load
// can never observe a classifier paired with metadata from a different
// training run.
package modelstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/exoscan-ai/exoscan-go/pkg/ml"
	"github.com/exoscan-ai/exoscan-go/pkg/models"
)

// Store is a SQLite-backed model store. Save and load for the same schema
// are serialized by a per-schema lock; different schemas do not contend.
type Store struct {
	db    *sql.DB
	mu    sync.Mutex
	locks map[models.SchemaID]*sync.RWMutex
}

// Open opens (and if needed initializes) a model store at the given path.
// The pool holds several connections, so ":memory:" would give each
// connection its own empty database; tests use a file under t.TempDir()
// instead.
func Open(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_journal_mode=WAL&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db, locks: make(map[models.SchemaID]*sync.RWMutex)}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trained_models (
		schema_id TEXT PRIMARY KEY,
		label_column TEXT NOT NULL,
		id_column TEXT NOT NULL,
		feature_columns TEXT NOT NULL,
		label_classes TEXT NOT NULL,
		classifier TEXT NOT NULL,
		report TEXT NOT NULL,
		trained_at DATETIME NOT NULL
	);`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) lockFor(id models.SchemaID) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.RWMutex{}
		s.locks[id] = lock
	}
	return lock
}

// Save persists a trained model, replacing any previous model for the same
// schema. The write is atomic: either the whole model lands or nothing does.
func (s *Store) Save(model *ml.TrainedModel) error {
	if model == nil || model.Classifier == nil {
		return fmt.Errorf("refusing to save an untrained model")
	}
	if !model.SchemaID.Valid() {
		return fmt.Errorf("invalid schema id %q", model.SchemaID)
	}

	lock := s.lockFor(model.SchemaID)
	lock.Lock()
	defer lock.Unlock()

	classifierJSON, err := json.Marshal(model.Classifier)
	if err != nil {
		return fmt.Errorf("failed to serialize classifier: %w", err)
	}
	featuresJSON, err := json.Marshal(model.FeatureColumns)
	if err != nil {
		return fmt.Errorf("failed to serialize feature columns: %w", err)
	}
	classesJSON, err := json.Marshal(model.Encoder.Classes)
	if err != nil {
		return fmt.Errorf("failed to serialize label classes: %w", err)
	}
	reportJSON, err := json.Marshal(model.Report)
	if err != nil {
		return fmt.Errorf("failed to serialize training report: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO trained_models
			(schema_id, label_column, id_column, feature_columns, label_classes, classifier, report, trained_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(schema_id) DO UPDATE SET
			label_column = excluded.label_column,
			id_column = excluded.id_column,
			feature_columns = excluded.feature_columns,
			label_classes = excluded.label_classes,
			classifier = excluded.classifier,
			report = excluded.report,
			trained_at = excluded.trained_at`,
		string(model.SchemaID), model.LabelColumn, model.IDColumn,
		string(featuresJSON), string(classesJSON), string(classifierJSON),
		string(reportJSON), model.Report.TrainedAt)
	if err != nil {
		return fmt.Errorf("failed to save model for schema %q: %w", model.SchemaID, err)
	}

	return tx.Commit()
}

// Load restores the trained model for a schema. A schema with no persisted
// model returns *models.ErrModelNotTrained.
func (s *Store) Load(id models.SchemaID) (*ml.TrainedModel, error) {
	lock := s.lockFor(id)
	lock.RLock()
	defer lock.RUnlock()

	row := s.db.QueryRow(`
		SELECT label_column, id_column, feature_columns, label_classes, classifier, report
		FROM trained_models WHERE schema_id = ?`, string(id))

	var labelColumn, idColumn, featuresJSON, classesJSON, classifierJSON, reportJSON string
	err := row.Scan(&labelColumn, &idColumn, &featuresJSON, &classesJSON, &classifierJSON, &reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &models.ErrModelNotTrained{SchemaID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load model for schema %q: %w", id, err)
	}

	model := &ml.TrainedModel{
		SchemaID:    id,
		LabelColumn: labelColumn,
		IDColumn:    idColumn,
	}
	if err := json.Unmarshal([]byte(featuresJSON), &model.FeatureColumns); err != nil {
		return nil, fmt.Errorf("corrupt feature columns for schema %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(classesJSON), &model.Encoder.Classes); err != nil {
		return nil, fmt.Errorf("corrupt label classes for schema %q: %w", id, err)
	}
	model.Classifier = &ml.GradientBoostedClassifier{}
	if err := json.Unmarshal([]byte(classifierJSON), model.Classifier); err != nil {
		return nil, fmt.Errorf("corrupt classifier for schema %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(reportJSON), &model.Report); err != nil {
		return nil, fmt.Errorf("corrupt training report for schema %q: %w", id, err)
	}
	return model, nil
}

// List returns the training reports of every persisted model, newest first
func (s *Store) List() ([]models.TrainingReport, error) {
	rows, err := s.db.Query(`SELECT report FROM trained_models ORDER BY trained_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer rows.Close()

	var reports []models.TrainingReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, err
		}
		var report models.TrainingReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			return nil, fmt.Errorf("corrupt training report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// Delete removes the persisted model for a schema, if any
func (s *Store) Delete(id models.SchemaID) error {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	_, err := s.db.Exec(`DELETE FROM trained_models WHERE schema_id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete model for schema %q: %w", id, err)
	}
	return nil
}
