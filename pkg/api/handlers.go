package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/exoscan-ai/exoscan-go/pkg/dataset"
	"github.com/exoscan-ai/exoscan-go/pkg/models"
	"github.com/exoscan-ai/exoscan-go/pkg/pipeline"
)

// handleUpload accepts a multipart CSV upload, detects its schema and
// stores it in the registry. Unrecognized tables are rejected here so later
// calls can assume a known schema.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid multipart form: %v", err), Kind: "bad_request"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file field", Kind: "bad_request"})
		return
	}
	defer file.Close()

	ds, err := dataset.ParseCSV(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "bad_request"})
		return
	}

	validation, err := s.service.Analyze(ds)
	if err != nil {
		writeError(w, err)
		return
	}

	entry := s.registry.Add(header.Filename, ds, &validation)
	s.log.Info().
		Str("dataset_id", entry.ID).
		Str("filename", entry.Filename).
		Str("schema", string(validation.Schema.SchemaID)).
		Int("rows", entry.Rows).
		Msg("dataset uploaded")
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"datasets": s.registry.List()})
}

func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.registry.Delete(id) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "dataset not found", Kind: "not_found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	_, ds, err := s.registry.Get(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Kind: "not_found"})
		return
	}
	validation, err := s.service.Analyze(ds)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, validation)
}

// trainRequestBody is the JSON body of POST /datasets/{id}/train
type trainRequestBody struct {
	TestFraction    float64                 `json:"test_fraction,omitempty"`
	Seed            *int64                  `json:"seed,omitempty"`
	Hyperparameters *models.Hyperparameters `json:"hyperparameters,omitempty"`
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	_, ds, err := s.registry.Get(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Kind: "not_found"})
		return
	}

	var body trainRequestBody
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err), Kind: "bad_request"})
			return
		}
	}

	req := pipeline.TrainRequest{
		TestFraction:    s.testFrac,
		Seed:            s.defaultSeed,
		Hyperparameters: s.training,
	}
	if body.TestFraction > 0 && body.TestFraction < 1 {
		req.TestFraction = body.TestFraction
	}
	if body.Seed != nil {
		req.Seed = *body.Seed
	}
	if body.Hyperparameters != nil {
		req.Hyperparameters = *body.Hyperparameters
	}

	start := time.Now()
	report, err := s.service.Train(ds, req)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	schemaLabel := "unknown"
	if report != nil {
		schemaLabel = string(report.SchemaID)
	}
	s.metrics.TrainTotal.WithLabelValues(schemaLabel, outcome).Inc()
	s.metrics.OpDuration.WithLabelValues("train").Observe(time.Since(start).Seconds())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// predictRequestBody references an uploaded dataset or carries inline CSV
type predictRequestBody struct {
	DatasetID string `json:"dataset_id,omitempty"`
	CSV       string `json:"csv,omitempty"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var body predictRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err), Kind: "bad_request"})
		return
	}

	var ds *dataset.Dataset
	switch {
	case body.DatasetID != "":
		var err error
		_, ds, err = s.registry.Get(body.DatasetID)
		if err != nil {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Kind: "not_found"})
			return
		}
	case body.CSV != "":
		var err error
		ds, err = dataset.ParseCSVString(body.CSV)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "bad_request"})
			return
		}
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "either dataset_id or csv is required", Kind: "bad_request"})
		return
	}

	start := time.Now()
	predictions, err := s.service.Predict(ds)
	s.metrics.OpDuration.WithLabelValues("predict").Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.PredictTotal.WithLabelValues("error").Inc()
	} else {
		s.metrics.PredictTotal.WithLabelValues("ok").Inc()
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"predictions": predictions,
		"count":       len(predictions),
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	_, ds, err := s.registry.Get(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Kind: "not_found"})
		return
	}

	start := time.Now()
	result, err := s.service.ValidateCandidates(ds)
	s.metrics.ConfirmTotal.Inc()
	s.metrics.OpDuration.WithLabelValues("confirm").Observe(time.Since(start).Seconds())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	reports, err := s.service.ListModels()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"models": reports})
}

func (s *Server) handleModelStats(w http.ResponseWriter, r *http.Request) {
	id := models.SchemaID(r.URL.Query().Get("schema"))
	if !id.Valid() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "schema query parameter must be one of kepler, tess, k2", Kind: "bad_request"})
		return
	}
	report, err := s.service.ModelStats(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleDeleteModel(w http.ResponseWriter, r *http.Request) {
	id := models.SchemaID(mux.Vars(r)["schema"])
	if !id.Valid() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "schema must be one of kepler, tess, k2", Kind: "bad_request"})
		return
	}
	if err := s.service.DeleteModel(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": string(id)})
}
