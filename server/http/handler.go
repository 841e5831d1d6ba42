package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/w-h-a/insight/completer"
	"github.com/w-h-a/insight/internal/service/datasets"
	"github.com/w-h-a/insight/store"
)

type ingestRequest struct {
	DatasetID  string `json:"dataset_id"`
	FileHash   string `json:"file_hash"`
	SchemaText string `json:"schema"`
}

type ingestResponse struct {
	DatasetID string `json:"dataset_id"`
	Version   string `json:"version"`
	FileHash  string `json:"file_hash"`
	Cached    bool   `json:"cached"`
}

type analyzeRequest struct {
	DatasetID    string `json:"dataset_id"`
	Version      string `json:"version,omitempty"`
	AnalysisText string `json:"analysis,omitempty"`
}

type analyzeResponse struct {
	DatasetID       string `json:"dataset_id"`
	Version         string `json:"version"`
	SchemaCached    bool   `json:"schema_cached"`
	AnalysisCached  bool   `json:"analysis_cached"`
	InsightsCached  bool   `json:"insights_cached"`
	InsightsCreated int    `json:"insights_created"`
}

type queryRequest struct {
	DatasetID string `json:"dataset_id"`
	Version   string `json:"version,omitempty"`
	Question  string `json:"question"`
}

type queryResponse struct {
	DatasetID string `json:"dataset_id"`
	Version   string `json:"version"`
	QueryHash string `json:"query_hash"`
	Cached    bool   `json:"cached"`
	Answer    string `json:"answer"`
}

type versionsResponse struct {
	DatasetID string   `json:"dataset_id"`
	Versions  []string `json:"versions"`
}

type insightResponse struct {
	ID           string  `json:"insight_id"`
	DatasetID    string  `json:"dataset_id"`
	Version      string  `json:"version"`
	Summary      string  `json:"summary"`
	Confidence   float64 `json:"confidence"`
	SemanticHash string  `json:"semantic_hash"`
}

type insightsResponse struct {
	DatasetID string            `json:"dataset_id"`
	Insights  []insightResponse `json:"insights"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type handler struct {
	service *datasets.Service
}

func (h *handler) ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	result, err := h.service.Ingest(r.Context(), req.DatasetID, req.FileHash, req.SchemaText)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{
		DatasetID: result.DatasetID,
		Version:   result.Version,
		FileHash:  result.FileHash,
		Cached:    result.Cached,
	})
}

func (h *handler) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	result, err := h.service.Analyze(r.Context(), req.DatasetID, req.Version, req.AnalysisText)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		DatasetID:       result.DatasetID,
		Version:         result.Version,
		SchemaCached:    result.SchemaCached,
		AnalysisCached:  result.AnalysisCached,
		InsightsCached:  result.InsightsCached,
		InsightsCreated: result.InsightsCreated,
	})
}

func (h *handler) query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	result, err := h.service.Query(r.Context(), req.DatasetID, req.Version, req.Question)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		DatasetID: result.DatasetID,
		Version:   result.Version,
		QueryHash: result.QueryHash,
		Cached:    result.Cached,
		Answer:    result.Answer,
	})
}

func (h *handler) versions(w http.ResponseWriter, r *http.Request) {
	datasetID := mux.Vars(r)["dataset"]

	versions, err := h.service.Versions(r.Context(), datasetID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, versionsResponse{
		DatasetID: datasetID,
		Versions:  versions,
	})
}

func (h *handler) insights(w http.ResponseWriter, r *http.Request) {
	datasetID := mux.Vars(r)["dataset"]
	version := r.URL.Query().Get("version")

	insights, err := h.service.Insights(r.Context(), datasetID, version)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, insightsResponse{
		DatasetID: datasetID,
		Insights:  toInsightResponses(insights),
	})
}

func toInsightResponses(insights []store.Insight) []insightResponse {
	rsp := make([]insightResponse, 0, len(insights))
	for _, insight := range insights {
		rsp = append(rsp, insightResponse{
			ID:           insight.ID,
			DatasetID:    insight.DatasetID,
			Version:      insight.Version,
			Summary:      insight.Summary,
			Confidence:   insight.Confidence,
			SemanticHash: insight.SemanticHash,
		})
	}
	return rsp
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, datasets.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, datasets.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, completer.ErrUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// NewRouter mounts the API under /api/v1.
func NewRouter(service *datasets.Service) *mux.Router {
	h := &handler{service: service}

	router := mux.NewRouter()

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/ingest", h.ingest).Methods(http.MethodPost)
	api.HandleFunc("/analyze", h.analyze).Methods(http.MethodPost)
	api.HandleFunc("/query", h.query).Methods(http.MethodPost)
	api.HandleFunc("/datasets/{dataset}/versions", h.versions).Methods(http.MethodGet)
	api.HandleFunc("/datasets/{dataset}/insights", h.insights).Methods(http.MethodGet)

	return router
}
