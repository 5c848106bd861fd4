// Package handlers provides HTTP handlers for the SCM assistant API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/supplyhub/scm-assistant/internal/agent"
	"github.com/supplyhub/scm-assistant/internal/observability"
	"github.com/supplyhub/scm-assistant/internal/retrieval"
)

// QueryHandler handles question answering requests.
type QueryHandler struct {
	logger *observability.Logger
	agent  *agent.Agent
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(logger *observability.Logger, agent *agent.Agent) *QueryHandler {
	return &QueryHandler{logger: logger, agent: agent}
}

// QueryRequestDTO represents the API request for a query.
type QueryRequestDTO struct {
	Query string `json:"query"`
}

// QueryResponseDTO represents the API response.
type QueryResponseDTO struct {
	Answer     string        `json:"answer"`
	Sources    []CitationDTO `json:"sources"`
	Confidence float64       `json:"confidence"`
	Domain     string        `json:"domain"`
	Formatted  string        `json:"formatted"`
}

// CitationDTO represents one cited source.
type CitationDTO struct {
	ChunkID string  `json:"chunkId"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
	Text    string  `json:"text"`
	Snippet string  `json:"snippet,omitempty"`
}

// ErrorDTO represents an API error response.
type ErrorDTO struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Query handles POST /api/v1/query.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var reqDTO QueryRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if reqDTO.Query == "" {
		h.writeError(w, http.StatusBadRequest, "query is required", "")
		return
	}

	result, err := h.agent.Run(r.Context(), reqDTO.Query)
	if err != nil {
		h.logger.Error().Err(err).Msg("Query failed")
		h.writeError(w, http.StatusInternalServerError, "query failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(toResponseDTO(result)); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func toResponseDTO(res *agent.Result) QueryResponseDTO {
	dto := QueryResponseDTO{
		Answer:     res.Answer,
		Sources:    make([]CitationDTO, 0, len(res.Sources)),
		Confidence: res.Confidence,
		Domain:     res.Domain,
		Formatted:  res.Formatted,
	}
	for _, s := range res.Sources {
		dto.Sources = append(dto.Sources, toCitationDTO(s))
	}
	return dto
}

func toCitationDTO(c retrieval.Citation) CitationDTO {
	return CitationDTO{
		ChunkID: c.ChunkID,
		Source:  c.Source,
		Score:   c.Score,
		Text:    c.Text,
		Snippet: c.Supplement,
	}
}

func (h *QueryHandler) writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorDTO{Error: message, Details: details})
}
