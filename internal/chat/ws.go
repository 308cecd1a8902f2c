package chat

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/kwlam/sitechat/internal/conversation"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Type    string `json:"type"` // "message"
	Content string `json:"content"`
	PageURL string `json:"page_url,omitempty"`
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type           string `json:"type"` // "response" or "error"
	ConversationID string `json:"conversation_id,omitempty"`
	Content        string `json:"content"`
	ErrorKind      string `json:"error_kind,omitempty"`
}

// RegisterWebSocket mounts the streaming chat endpoint. The widget
// falls back to the POST endpoint when the upgrade fails.
func RegisterWebSocket(r chi.Router, pipeline *Pipeline, fp conversation.Fingerprinter) {
	r.Get("/api/chat/ws", func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			log.Printf("chat: websocket upgrade: %v", err)
			return
		}
		defer conn.Close()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("chat: websocket read: %v", err)
				}
				return
			}

			var in wsRequest
			if err := json.Unmarshal(msg, &in); err != nil {
				sendWS(conn, wsResponse{Type: "error", Content: "invalid message format"})
				continue
			}
			if in.Type != "" && in.Type != "message" {
				sendWS(conn, wsResponse{Type: "error", Content: "unknown message type: " + in.Type})
				continue
			}

			reply, err := pipeline.SendMessage(req.Context(), SendRequest{
				Fingerprint:    fp.Fingerprint(req),
				UserAgent:      req.UserAgent(),
				PageURL:        pageURL(in.PageURL, req),
				AcceptLanguage: req.Header.Get("Accept-Language"),
				Body:           in.Content,
			})
			if err == ErrEmptyMessage {
				sendWS(conn, wsResponse{Type: "error", Content: "content is required"})
				continue
			}
			if err != nil {
				log.Printf("chat: websocket message: %v", err)
				sendWS(conn, wsResponse{Type: "error", Content: "failed to process message"})
				continue
			}

			out := wsResponse{
				Type:           "response",
				ConversationID: reply.ConversationID,
				Content:        reply.Body,
			}
			if reply.Failed {
				out.ErrorKind = string(reply.ErrorKind)
			}
			sendWS(conn, out)
		}
	})
}

func sendWS(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("chat: websocket write: %v", err)
	}
}
