package api

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/exoscan-ai/exoscan-go/pkg/dataset"
	"github.com/exoscan-ai/exoscan-go/pkg/models"
)

// DatasetEntry is one uploaded dataset held in memory between calls
type DatasetEntry struct {
	ID         string                    `json:"id"`
	Filename   string                    `json:"filename"`
	UploadedAt time.Time                 `json:"uploaded_at"`
	Rows       int                       `json:"rows"`
	Columns    int                       `json:"columns"`
	Validation *models.DatasetValidation `json:"validation,omitempty"`

	ds *dataset.Dataset
}

// DatasetRegistry keeps uploaded datasets in memory, keyed by uuid, and
// evicts entries older than the TTL on a cron schedule. Uploads are
// request-scoped working data, not durable state.
type DatasetRegistry struct {
	mu      sync.RWMutex
	entries map[string]*DatasetEntry
	ttl     time.Duration
	log     zerolog.Logger
	cron    *cron.Cron
	onCount func(n int)
}

// NewDatasetRegistry creates a registry evicting entries older than ttl.
// onCount, when non-nil, is called with the entry count after every change.
func NewDatasetRegistry(ttl time.Duration, log zerolog.Logger, onCount func(n int)) *DatasetRegistry {
	return &DatasetRegistry{
		entries: make(map[string]*DatasetEntry),
		ttl:     ttl,
		log:     log.With().Str("component", "dataset_registry").Logger(),
		onCount: onCount,
	}
}

// StartEviction schedules the eviction sweep to run every minute
func (r *DatasetRegistry) StartEviction() error {
	r.cron = cron.New()
	if _, err := r.cron.AddFunc("@every 1m", r.evictExpired); err != nil {
		return fmt.Errorf("failed to schedule dataset eviction: %w", err)
	}
	r.cron.Start()
	return nil
}

// StopEviction stops the eviction schedule
func (r *DatasetRegistry) StopEviction() {
	if r.cron != nil {
		r.cron.Stop()
	}
}

func (r *DatasetRegistry) evictExpired() {
	cutoff := time.Now().Add(-r.ttl)
	r.mu.Lock()
	evicted := 0
	for id, entry := range r.entries {
		if entry.UploadedAt.Before(cutoff) {
			delete(r.entries, id)
			evicted++
		}
	}
	n := len(r.entries)
	r.mu.Unlock()

	if evicted > 0 {
		r.log.Info().Int("evicted", evicted).Int("remaining", n).Msg("evicted expired datasets")
	}
	r.notify(n)
}

func (r *DatasetRegistry) notify(n int) {
	if r.onCount != nil {
		r.onCount(n)
	}
}

// Add stores a dataset and returns its registry entry
func (r *DatasetRegistry) Add(filename string, ds *dataset.Dataset, validation *models.DatasetValidation) *DatasetEntry {
	entry := &DatasetEntry{
		ID:         uuid.New().String(),
		Filename:   filename,
		UploadedAt: time.Now().UTC(),
		Rows:       ds.NumRows(),
		Columns:    ds.NumColumns(),
		Validation: validation,
		ds:         ds,
	}
	r.mu.Lock()
	r.entries[entry.ID] = entry
	n := len(r.entries)
	r.mu.Unlock()
	r.notify(n)
	return entry
}

// Get returns the dataset stored under an id
func (r *DatasetRegistry) Get(id string) (*DatasetEntry, *dataset.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok {
		return nil, nil, fmt.Errorf("dataset %q not found (expired or never uploaded)", id)
	}
	return entry, entry.ds, nil
}

// Delete removes a dataset from the registry
func (r *DatasetRegistry) Delete(id string) bool {
	r.mu.Lock()
	_, ok := r.entries[id]
	delete(r.entries, id)
	n := len(r.entries)
	r.mu.Unlock()
	r.notify(n)
	return ok
}

// List returns all entries, newest first
func (r *DatasetRegistry) List() []*DatasetEntry {
	r.mu.RLock()
	entries := make([]*DatasetEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].UploadedAt.After(entries[j].UploadedAt)
	})
	return entries
}
