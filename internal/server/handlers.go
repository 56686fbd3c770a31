package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/msami123/Web-chat-bot/internal/chat"
	"github.com/msami123/Web-chat-bot/internal/domain"
)

type retrieveRequest struct {
	Query    string `json:"query"`
	Lang     string `json:"lang"`
	K        int    `json:"k"`
	MaxChars int    `json:"max_chars"`
}

type retrieveResponse struct {
	Results []domain.ScoredChunk `json:"results"`
}

type contextResponse struct {
	Context string         `json:"context"`
	Chunks  []domain.Chunk `json:"chunks"`
}

type chatRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
	// QuickAction selects a quick action by its 1-based position instead
	// of a free-text message.
	QuickAction int `json:"quick_action"`
}

type chatResponse struct {
	ConversationID string     `json:"conversation_id"`
	Reply          chat.Reply `json:"reply"`
}

type conversationResponse struct {
	ID       string           `json:"id"`
	Messages []domain.Message `json:"messages"`
}

type reloadResponse struct {
	Chunks     int `json:"chunks"`
	Vocabulary int `json:"vocabulary"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeQuery(w http.ResponseWriter, r *http.Request) (retrieveRequest, bool) {
	var req retrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return req, false
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "query is required")
		return req, false
	}
	if req.K < 0 || req.MaxChars < 0 {
		writeError(w, http.StatusBadRequest, "validation_failed", "k and max_chars must not be negative")
		return req, false
	}
	return req, true
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeQuery(w, r)
	if !ok {
		return
	}
	results := s.bot.Retrieve(req.Query, req.Lang, req.K)
	writeJSON(w, http.StatusOK, retrieveResponse{Results: results})
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeQuery(w, r)
	if !ok {
		return
	}
	text, chunks := s.bot.Context(req.Query, req.Lang, req.K, req.MaxChars)
	writeJSON(w, http.StatusOK, contextResponse{Context: text, Chunks: chunks})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	question := req.Message
	if req.QuickAction != 0 {
		actions := chat.QuickActions()
		if req.QuickAction < 1 || req.QuickAction > len(actions) {
			writeError(w, http.StatusBadRequest, "validation_failed", "unknown quick action")
			return
		}
		question = actions[req.QuickAction-1].Question()
	}
	if strings.TrimSpace(question) == "" {
		writeError(w, http.StatusBadRequest, "empty_message", chat.ErrEmptyMessage.Error())
		return
	}

	var conv *chat.Conversation
	created := false
	if req.ConversationID == "" {
		conv, created = s.conversations.create(), true
	} else {
		id, err := uuid.Parse(req.ConversationID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "conversation_id is not a UUID")
			return
		}
		var found bool
		if conv, found = s.conversations.get(id); !found {
			writeError(w, http.StatusNotFound, "conversation_not_found", "conversation not found")
			return
		}
	}

	ctx := r.Context()
	if s.answerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.answerTimeout)
		defer cancel()
	}
	reply, err := s.bot.Ask(ctx, conv, question)
	if err != nil {
		if created {
			s.conversations.remove(conv.ID)
		}
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{ConversationID: conv.ID.String(), Reply: reply})
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "conversation id is not a UUID")
		return
	}
	conv, ok := s.conversations.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "conversation_not_found", "conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, conversationResponse{ID: conv.ID.String(), Messages: conv.Messages()})
}

func (s *Server) handleQuickActions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]chat.QuickAction{"actions": chat.QuickActions()})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	idx, err := s.bot.Reload(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{Chunks: idx.Len(), Vocabulary: idx.VocabularySize()})
}
