package refine

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// sessionRequest is the incoming WebSocket message format.
type sessionRequest struct {
	Type          string `json:"type"` // "start", "answer", "defer", "cancel"
	PromptContent string `json:"prompt_content,omitempty"`
	LabelContext  string `json:"label_context,omitempty"`
	Label         string `json:"label,omitempty"`
	Content       string `json:"content,omitempty"`
}

// sessionResponse is the outgoing WebSocket message format.
type sessionResponse struct {
	Type            string   `json:"type"` // "question", "refined", "cancelled", "error"
	Question        string   `json:"question,omitempty"`
	Index           int      `json:"index,omitempty"`
	Total           int      `json:"total,omitempty"`
	Missing         []string `json:"missing,omitempty"`
	ImportanceScore int      `json:"importance_score,omitempty"`
	RefinedText     string   `json:"refined_text,omitempty"`
	CloseFlow       bool     `json:"close_flow,omitempty"`
	Error           string   `json:"error,omitempty"`
	Kind            string   `json:"kind,omitempty"`
}

// RegisterSessionRoute mounts the live clarification session endpoint.
// Each connection carries exactly one session; the connection closing
// before completion counts as abandonment.
func RegisterSessionRoute(r chi.Router, engine *Engine, logger *log.Logger) {
	r.Get("/api/refine/session", handleSession(engine, logger))
}

func handleSession(engine *Engine, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("websocket upgrade", "err", err)
			return
		}
		defer conn.Close()

		var session *Session

		for {
			var req sessionRequest
			if err := conn.ReadJSON(&req); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Error("websocket read", "err", err)
				}
				if session != nil {
					session.Cancel()
				}
				return
			}

			switch req.Type {
			case "start":
				if session != nil {
					sendSessionError(conn, logger, "invalid_input", "session already started")
					continue
				}
				session = NewSession(engine, req.PromptContent, req.LabelContext, req.Label)
				step, err := session.Start(r.Context())
				if err != nil {
					sendRefineError(conn, logger, err)
					return
				}
				sendStep(conn, logger, step)
				if step.Done {
					return
				}

			case "answer", "defer":
				if session == nil || session.State() != StateAwaitingAnswer {
					sendSessionError(conn, logger, "invalid_input", "no question awaiting an answer")
					continue
				}
				var step *Step
				var err error
				if req.Type == "answer" {
					step, err = session.Answer(r.Context(), req.Content)
				} else {
					step, err = session.Defer(r.Context())
				}
				if err != nil {
					if session.State() == StateFailed {
						sendRefineError(conn, logger, err)
						return
					}
					sendSessionError(conn, logger, "invalid_input", err.Error())
					continue
				}
				sendStep(conn, logger, step)
				if step.Done {
					return
				}

			case "cancel":
				closeFlow := true
				if session != nil {
					closeFlow = session.Cancel() == CloseFlow
				}
				send(conn, logger, sessionResponse{Type: "cancelled", CloseFlow: closeFlow})
				return

			default:
				sendSessionError(conn, logger, "invalid_input", "unknown message type: "+req.Type)
			}
		}
	}
}

func sendStep(conn *websocket.Conn, logger *log.Logger, step *Step) {
	if step.Done {
		send(conn, logger, sessionResponse{Type: "refined", RefinedText: step.RefinedText})
		return
	}
	resp := sessionResponse{
		Type:     "question",
		Question: step.Question,
		Index:    step.Index,
		Total:    step.Total,
	}
	if step.Clarification != nil {
		resp.Missing = step.Clarification.Missing
		resp.ImportanceScore = step.Clarification.ImportanceScore
	}
	send(conn, logger, resp)
}

func sendRefineError(conn *websocket.Conn, logger *log.Logger, err error) {
	kind := "provider"
	switch {
	case errors.Is(err, ErrEmptyPrompt):
		kind = "invalid_input"
	case NotConfigured(err):
		kind = "not_configured"
	}
	send(conn, logger, sessionResponse{Type: "error", Error: err.Error(), Kind: kind})
}

func sendSessionError(conn *websocket.Conn, logger *log.Logger, kind, message string) {
	send(conn, logger, sessionResponse{Type: "error", Error: message, Kind: kind})
}

func send(conn *websocket.Conn, logger *log.Logger, resp sessionResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		logger.Error("websocket write", "err", err)
	}
}
