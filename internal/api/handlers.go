package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"sqlagent/cli/internal/logging"
)

const maxBodyBytes = 64 << 10

type queryRequest struct {
	Question string `json:"question"`
	APIKey   string `json:"api_key,omitempty"`
}

type queryResponse struct {
	Status   string `json:"status"`
	Response string `json:"response"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "question must not be empty"})
		return
	}
	if !s.authorized(r, req.APIKey) {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Detail: "invalid api key"})
		return
	}

	answer, err := s.asker.Ask(r.Context(), req.Question)
	if err != nil {
		log.Error().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("query failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Detail: "error processing query: " + logging.Mask(err.Error()),
		})
		return
	}
	writeJSON(w, http.StatusOK, queryResponse{Status: "success", Response: answer})
}

func (s *Server) authorized(r *http.Request, bodyKey string) bool {
	if s.apiKey == "" {
		return true
	}
	key := bodyKey
	if key == "" {
		key = r.Header.Get("X-API-Key")
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(s.apiKey)) == 1
}
