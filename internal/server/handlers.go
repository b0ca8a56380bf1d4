package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adilevin/donna/internal/dialogue"
	"github.com/adilevin/donna/internal/timeutil"
)

// Health Check

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	status := map[string]interface{}{
		"status": "healthy",
		"gcal":   "disconnected",
	}
	if s.gcalClient != nil && s.gcalClient.IsAuthenticated() {
		status["gcal"] = "connected"
	}

	respondJSON(w, http.StatusOK, status)
}

// Chat API

type chatRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	UserID         string `json:"user_id"`
	UserName       string `json:"user_name,omitempty"`
	Timezone       string `json:"timezone,omitempty"`
	CurrentTime    string `json:"current_time,omitempty"` // RFC 3339; defaults to server time
	Message        string `json:"message"`
}

type chatResponse struct {
	ConversationID string `json:"conversation_id"`
	Status         string `json:"status"`
	Message        string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.UserID) == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	user, err := s.db.EnsureUser(req.UserID, req.UserName, req.Timezone)
	if err != nil {
		s.logger.Error().Err(err).Str("external_id", req.UserID).Msg("failed to ensure user")
		respondError(w, http.StatusInternalServerError, "failed to resolve user")
		return
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = user.Timezone
	}

	now := time.Now()
	if req.CurrentTime != "" {
		parsed, err := timeutil.ParseClientTime(req.CurrentTime, timezone)
		if err != nil {
			respondError(w, http.StatusBadRequest, "current_time must be RFC 3339 or a local datetime")
			return
		}
		now = parsed
	}

	// A fresh conversation id makes the first turn of a new exchange; the
	// client echoes it back to continue the same conversation.
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	resp := s.controller.HandleTurn(r.Context(), dialogue.Turn{
		ConversationID: conversationID,
		UserID:         user.ID,
		Timezone:       timezone,
		Now:            now,
		Message:        req.Message,
	})

	respondJSON(w, http.StatusOK, chatResponse{
		ConversationID: conversationID,
		Status:         string(resp.Status),
		Message:        resp.Message,
	})
}

// Google Calendar API

func (s *Server) handleGCalStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"connected": false,
		"message":   "Not configured",
	}

	if s.gcalClient != nil {
		if s.gcalClient.IsAuthenticated() {
			status["connected"] = true
			status["message"] = "Connected"
		} else {
			status["message"] = "Not authenticated"
		}
	}

	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleGCalConnect(w http.ResponseWriter, r *http.Request) {
	if s.gcalClient == nil {
		respondError(w, http.StatusServiceUnavailable, "Google Calendar not configured")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"auth_url": s.gcalClient.AuthURL("state-token"),
	})
}

func (s *Server) handleGCalExchangeCode(w http.ResponseWriter, r *http.Request) {
	if s.gcalClient == nil {
		respondError(w, http.StatusServiceUnavailable, "Google Calendar not configured")
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		respondError(w, http.StatusBadRequest, "code is required")
		return
	}

	if err := s.gcalClient.ExchangeCode(r.Context(), req.Code); err != nil {
		s.logger.Error().Err(err).Msg("OAuth code exchange failed")
		respondError(w, http.StatusBadRequest, "failed to exchange code")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "connected"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
