package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// TaskResponse acknowledges a background task submission
// @Description Background task acknowledgment
type TaskResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status" example:"pending"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status of the API (checks database and queue connections)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "A backing service is unavailable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
	}
	if s.taskQueue != nil {
		if err := s.taskQueue.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "task queue unavailable")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Retrieval endpoints

// SearchRequest is the search endpoint body
type SearchRequest struct {
	Query   string            `json:"query"`
	Mode    domain.SearchMode `json:"mode,omitempty"`
	TopK    int               `json:"top_k,omitempty"`
	Filters domain.Filters    `json:"filters,omitempty"`
}

// handleSearch godoc
// @Summary      Similarity search
// @Description  Embeds the query and returns ranked matches from the corpus
// @Tags         Search
// @Accept       json
// @Produce      json
// @Param        request  body      SearchRequest  true  "Search parameters"
// @Security     BearerAuth
// @Success      200      {object}  domain.SearchResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      502      {object}  ErrorResponse  "Embedding backend failed"
// @Router       /search [post]
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.retrievalService.Search(r.Context(), req.Query, domain.SearchOptions{
		Mode:    req.Mode,
		TopK:    req.TopK,
		Filters: req.Filters,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Ingestion endpoints

// IngestRequest is the synchronous ingestion body
type IngestRequest struct {
	SourceID string      `json:"source_id"`
	Text     string      `json:"text"`
	Tags     domain.Tags `json:"tags,omitempty"`
}

// handleIngest godoc
// @Summary      Ingest a document
// @Description  Chunks, embeds and indexes one document synchronously. Re-ingesting a source ID replaces its vectors.
// @Tags         Ingestion
// @Accept       json
// @Produce      json
// @Param        request  body      IngestRequest  true  "Document to ingest"
// @Security     BearerAuth
// @Success      200      {object}  driving.IngestResult
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      502      {object}  ErrorResponse  "Embedding backend failed"
// @Router       /ingest [post]
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.ingestionService.Ingest(r.Context(), req.SourceID, req.Text, req.Tags)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// IngestBatchRequest is the batch ingestion body
type IngestBatchRequest struct {
	Documents []driving.BatchDocument `json:"documents"`
}

// handleIngestBatch godoc
// @Summary      Ingest multiple documents
// @Description  Ingests a batch of documents with rate-limit pacing. Failing documents are skipped, not fatal.
// @Tags         Ingestion
// @Accept       json
// @Produce      json
// @Param        request  body      IngestBatchRequest  true  "Documents to ingest"
// @Security     BearerAuth
// @Success      200      {array}   driving.IngestResult
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Router       /ingest/batch [post]
func (s *Server) handleIngestBatch(w http.ResponseWriter, r *http.Request) {
	var req IngestBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, "documents is required")
		return
	}

	results, err := s.ingestionService.IngestBatch(r.Context(), req.Documents)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// PathRequest carries a filesystem path for background ingestion
type PathRequest struct {
	Path string `json:"path"`
}

// handleIngestFileAsync godoc
// @Summary      Ingest a file in the background
// @Description  Enqueues extraction and ingestion of a single file. Poll the task endpoint for progress.
// @Tags         Ingestion
// @Accept       json
// @Produce      json
// @Param        request  body      PathRequest  true  "File path"
// @Security     BearerAuth
// @Success      202      {object}  TaskResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      500      {object}  ErrorResponse  "Queue unavailable"
// @Router       /ingest/file [post]
func (s *Server) handleIngestFileAsync(w http.ResponseWriter, r *http.Request) {
	s.enqueuePathTask(w, r, domain.NewIngestFileTask)
}

// handleIngestFolderAsync godoc
// @Summary      Ingest a folder in the background
// @Description  Enqueues recursive extraction and ingestion of every readable file under the folder.
// @Tags         Ingestion
// @Accept       json
// @Produce      json
// @Param        request  body      PathRequest  true  "Folder path"
// @Security     BearerAuth
// @Success      202      {object}  TaskResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      500      {object}  ErrorResponse  "Queue unavailable"
// @Router       /ingest/folder [post]
func (s *Server) handleIngestFolderAsync(w http.ResponseWriter, r *http.Request) {
	s.enqueuePathTask(w, r, domain.NewIngestFolderTask)
}

func (s *Server) enqueuePathTask(w http.ResponseWriter, r *http.Request, newTask func(string) *domain.Task) {
	var req PathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	task := newTask(req.Path)
	if err := s.taskQueue.Enqueue(r.Context(), task); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to enqueue task")
		return
	}

	writeJSON(w, http.StatusAccepted, TaskResponse{
		TaskID: task.ID,
		Status: string(task.Status),
	})
}

// handleGetTask godoc
// @Summary      Get task status
// @Description  Returns the current state of a background task
// @Tags         Ingestion
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Security     BearerAuth
// @Success      200  {object}  domain.Task
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      404  {object}  ErrorResponse  "Task not found"
// @Router       /tasks/{id} [get]
func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("id")

	task, err := s.taskQueue.GetTask(r.Context(), taskID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// Source registry endpoints

// handleListSources godoc
// @Summary      List ingested sources
// @Description  Lists registered sources, newest first
// @Tags         Sources
// @Produce      json
// @Param        limit   query     int  false  "Maximum results (default 50)"
// @Param        offset  query     int  false  "Results to skip"
// @Security     BearerAuth
// @Success      200     {array}   domain.Source
// @Failure      401     {object}  ErrorResponse  "Unauthorized"
// @Failure      500     {object}  ErrorResponse  "Internal server error"
// @Router       /sources [get]
func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	sources, err := s.ingestionService.ListSources(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if sources == nil {
		sources = []*domain.Source{}
	}

	writeJSON(w, http.StatusOK, sources)
}

// handleDeleteSource godoc
// @Summary      Delete a source
// @Description  Removes all vectors and the registry entry for a source
// @Tags         Sources
// @Produce      json
// @Param        id   path      string  true  "Source ID"
// @Security     BearerAuth
// @Success      200  {object}  StatusResponse
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      404  {object}  ErrorResponse  "Source not found"
// @Router       /sources/{id} [delete]
func (s *Server) handleDeleteSource(w http.ResponseWriter, r *http.Request) {
	sourceID := r.PathValue("id")
	if sourceID == "" {
		writeError(w, http.StatusBadRequest, "source id is required")
		return
	}

	if err := s.ingestionService.DeleteSource(r.Context(), sourceID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleStats godoc
// @Summary      Vector store statistics
// @Description  Returns total vector count and a per-source breakdown
// @Tags         Sources
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.StoreStats
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /stats [get]
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ingestionService.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Drafting endpoints

// handleGenerateDraft godoc
// @Summary      Generate a draft
// @Description  Retrieves grounding passages and produces a draft with references and suggestions
// @Tags         Drafts
// @Accept       json
// @Produce      json
// @Param        request  body      domain.GenerationRequest  true  "Drafting instruction"
// @Security     BearerAuth
// @Success      200      {object}  domain.GenerationResult
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      502      {object}  ErrorResponse  "Generation backend failed"
// @Router       /drafts [post]
func (s *Server) handleGenerateDraft(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.generationService.GenerateDraft(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// RefineRequest asks for a rewrite of an existing draft
type RefineRequest struct {
	Text         string `json:"text"`
	Instructions string `json:"instructions"`
}

// DraftTextResponse wraps generated or refined draft text
type DraftTextResponse struct {
	Text string `json:"text"`
}

// handleRefineDraft godoc
// @Summary      Refine a draft
// @Description  Rewrites the draft per the instructions. Requires a configured generation backend.
// @Tags         Drafts
// @Accept       json
// @Produce      json
// @Param        request  body      RefineRequest  true  "Draft and instructions"
// @Security     BearerAuth
// @Success      200      {object}  DraftTextResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      503      {object}  ErrorResponse  "No generation backend configured"
// @Router       /drafts/refine [post]
func (s *Server) handleRefineDraft(w http.ResponseWriter, r *http.Request) {
	var req RefineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	text, err := s.generationService.Refine(r.Context(), req.Text, req.Instructions)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DraftTextResponse{Text: text})
}

// CompareRequest holds the two drafts to compare
type CompareRequest struct {
	DraftA string `json:"draft_a"`
	DraftB string `json:"draft_b"`
}

// ComparisonResponse wraps a clause-by-clause comparison
type ComparisonResponse struct {
	Comparison string `json:"comparison"`
}

// handleCompareDrafts godoc
// @Summary      Compare two drafts
// @Description  Produces a clause-by-clause comparison of two drafts
// @Tags         Drafts
// @Accept       json
// @Produce      json
// @Param        request  body      CompareRequest  true  "Drafts to compare"
// @Security     BearerAuth
// @Success      200      {object}  ComparisonResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      503      {object}  ErrorResponse  "No generation backend configured"
// @Router       /drafts/compare [post]
func (s *Server) handleCompareDrafts(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comparison, err := s.generationService.Compare(r.Context(), req.DraftA, req.DraftB)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ComparisonResponse{Comparison: comparison})
}

// DraftTextRequest carries draft text for analysis endpoints
type DraftTextRequest struct {
	Text string `json:"text"`
}

// handleExtractSections godoc
// @Summary      Extract draft sections
// @Description  Splits a draft into named sections. Advisory; returns an empty map when extraction fails.
// @Tags         Drafts
// @Accept       json
// @Produce      json
// @Param        request  body      DraftTextRequest  true  "Draft text"
// @Security     BearerAuth
// @Success      200      {object}  domain.SectionMap
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Router       /drafts/sections [post]
func (s *Server) handleExtractSections(w http.ResponseWriter, r *http.Request) {
	var req DraftTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sections, err := s.generationService.ExtractSections(r.Context(), req.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sections)
}

// SuggestionsResponse wraps improvement suggestions
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// handleSuggestImprovements godoc
// @Summary      Suggest draft improvements
// @Description  Returns a bounded list of improvement suggestions for a draft
// @Tags         Drafts
// @Accept       json
// @Produce      json
// @Param        request  body      DraftTextRequest  true  "Draft text"
// @Security     BearerAuth
// @Success      200      {object}  SuggestionsResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Router       /drafts/suggestions [post]
func (s *Server) handleSuggestImprovements(w http.ResponseWriter, r *http.Request) {
	var req DraftTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	suggestions, err := s.generationService.SuggestImprovements(r.Context(), req.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SuggestionsResponse{Suggestions: suggestions})
}

// AI settings endpoints

// handleGetAISettings godoc
// @Summary      Get AI settings
// @Description  Returns the stored AI provider configuration. API keys are never returned.
// @Tags         Settings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.AISettings
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      404  {object}  ErrorResponse  "No settings saved"
// @Router       /settings/ai [get]
func (s *Server) handleGetAISettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settingsService.GetAISettings(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

// handleUpdateAISettings godoc
// @Summary      Update AI settings
// @Description  Updates provider configuration and hot-reloads the affected services
// @Tags         Settings
// @Accept       json
// @Produce      json
// @Param        request  body      driving.UpdateAISettingsRequest  true  "Settings update"
// @Security     BearerAuth
// @Success      200      {object}  driving.AISettingsStatus
// @Failure      400      {object}  ErrorResponse  "Invalid provider or request"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Router       /settings/ai [put]
func (s *Server) handleUpdateAISettings(w http.ResponseWriter, r *http.Request) {
	var req driving.UpdateAISettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := s.settingsService.UpdateAISettings(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// handleGetAIStatus godoc
// @Summary      AI service status
// @Description  Reports availability of the embedding service, LLM and vector store
// @Tags         Settings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  driving.AISettingsStatus
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /settings/ai/status [get]
func (s *Server) handleGetAIStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.settingsService.GetAIStatus(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps domain errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidProvider):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, domain.ErrDependencyFailed), errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
