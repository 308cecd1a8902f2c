package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kwlam/sitechat/internal/conversation"
)

type messageRequest struct {
	Message string `json:"message"`
	PageURL string `json:"page_url,omitempty"`
}

type messageResponse struct {
	ConversationID string `json:"conversation_id"`
	Reply          string `json:"reply"`
	Error          string `json:"error,omitempty"`
}

type historyMessage struct {
	Role      string `json:"role"`
	Body      string `json:"body"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
}

// RegisterRoutes mounts the widget-facing chat endpoints.
func RegisterRoutes(r chi.Router, pipeline *Pipeline, fp conversation.Fingerprinter) {
	r.Post("/api/chat/message", func(w http.ResponseWriter, req *http.Request) {
		var in messageRequest
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		reply, err := pipeline.SendMessage(req.Context(), SendRequest{
			Fingerprint:    fp.Fingerprint(req),
			UserAgent:      req.UserAgent(),
			PageURL:        pageURL(in.PageURL, req),
			AcceptLanguage: req.Header.Get("Accept-Language"),
			Body:           in.Message,
		})
		if errors.Is(err, ErrEmptyMessage) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
			return
		}
		if err != nil {
			log.Printf("chat: handling message: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to process message"})
			return
		}

		out := messageResponse{ConversationID: reply.ConversationID, Reply: reply.Body}
		if reply.Failed {
			out.Error = string(reply.ErrorKind)
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Get("/api/chat/history", func(w http.ResponseWriter, req *http.Request) {
		conversationID := req.URL.Query().Get("conversation_id")
		msgs, err := pipeline.History(req.Context(), conversationID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "conversation_id is required"})
			return
		}

		out := make([]historyMessage, 0, len(msgs))
		for _, m := range msgs {
			out = append(out, historyMessage{
				Role:      m.Role,
				Body:      m.Body,
				Type:      m.Type,
				CreatedAt: m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"conversation_id": conversationID,
			"messages":        out,
		})
	})
}

// pageURL prefers the widget-reported page, falling back to the
// Referer header for plain HTTP clients.
func pageURL(fromBody string, req *http.Request) string {
	if fromBody != "" {
		return fromBody
	}
	return req.Referer()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("chat: encoding response: %v", err)
	}
}
