// Package api exposes the pipeline over HTTP: dataset upload and
// management, training, prediction, confirmation analysis and model stats.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/exoscan-ai/exoscan-go/pkg/models"
	"github.com/exoscan-ai/exoscan-go/pkg/observability"
	"github.com/exoscan-ai/exoscan-go/pkg/pipeline"
)

// Server bundles the HTTP handlers with their dependencies
type Server struct {
	service     *pipeline.Service
	registry    *DatasetRegistry
	metrics     *observability.Metrics
	log         zerolog.Logger
	maxUpload   int64
	testFrac    float64
	defaultSeed int64
	training    models.Hyperparameters
}

// ServerOptions configures a Server
type ServerOptions struct {
	MaxUploadBytes int64
	TestFraction   float64
	DefaultSeed    int64
	Training       models.Hyperparameters // default when a train request carries none
}

// NewServer creates the API server
func NewServer(service *pipeline.Service, registry *DatasetRegistry, metrics *observability.Metrics, log zerolog.Logger, opts ServerOptions) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 100 << 20
	}
	if opts.TestFraction <= 0 || opts.TestFraction >= 1 {
		opts.TestFraction = 0.2
	}
	return &Server{
		service:     service,
		registry:    registry,
		metrics:     metrics,
		log:         log.With().Str("component", "api").Logger(),
		maxUpload:   opts.MaxUploadBytes,
		testFrac:    opts.TestFraction,
		defaultSeed: opts.DefaultSeed,
		training:    opts.Training.Normalize(),
	}
}

// Router builds the HTTP route table
func (s *Server) Router(promRegistry *prometheus.Registry) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/datasets/upload", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/datasets", s.handleListDatasets).Methods(http.MethodGet)
	r.HandleFunc("/datasets/{id}", s.handleDeleteDataset).Methods(http.MethodDelete)
	r.HandleFunc("/datasets/{id}/analyze", s.handleAnalyze).Methods(http.MethodPost)
	r.HandleFunc("/datasets/{id}/train", s.handleTrain).Methods(http.MethodPost)

	r.HandleFunc("/predict", s.handlePredict).Methods(http.MethodPost)
	r.HandleFunc("/validate/{id}", s.handleValidate).Methods(http.MethodPost)

	r.HandleFunc("/models", s.handleListModels).Methods(http.MethodGet)
	r.HandleFunc("/model/stats", s.handleModelStats).Methods(http.MethodGet)
	r.HandleFunc("/models/{schema}", s.handleDeleteModel).Methods(http.MethodDelete)

	r.Handle("/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// errorResponse is the uniform error body
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// writeError maps the pipeline's error taxonomy onto HTTP statuses
func writeError(w http.ResponseWriter, err error) {
	kind := "internal"
	status := http.StatusInternalServerError

	var (
		notRecognized *models.ErrSchemaNotRecognized
		missingLabel  *models.ErrMissingLabelColumn
		empty         *models.ErrEmptyDataset
		noFeatures    *models.ErrNoUsableFeatures
		notTrained    *models.ErrModelNotTrained
		mismatch      *models.ErrFeatureMismatch
		stratify      *models.ErrStratificationInfeasible
	)
	switch {
	case errors.As(err, &notRecognized):
		kind, status = "schema_not_recognized", http.StatusBadRequest
	case errors.As(err, &missingLabel):
		kind, status = "missing_label_column", http.StatusUnprocessableEntity
	case errors.As(err, &empty):
		kind, status = "empty_dataset", http.StatusBadRequest
	case errors.As(err, &noFeatures):
		kind, status = "no_usable_features", http.StatusUnprocessableEntity
	case errors.As(err, &notTrained):
		kind, status = "model_not_trained", http.StatusConflict
	case errors.As(err, &mismatch):
		kind, status = "feature_mismatch", http.StatusUnprocessableEntity
	case errors.As(err, &stratify):
		kind, status = "stratification_infeasible", http.StatusUnprocessableEntity
	}

	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}
