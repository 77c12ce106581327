package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"nusantara-quiz-service/internal/app"
	"nusantara-quiz-service/internal/domain"
)

// WSHandler serves the interactive play flow: the client connects for a quiz,
// receives the shuffled presentation, submits answers, and gets the scoring
// result back on the same connection.
type WSHandler struct {
	query    *app.QueryService
	quiz     *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(query *app.QueryService, quiz *app.QuizService) *WSHandler {
	return &WSHandler{
		query: query,
		quiz:  quiz,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type submitPayload struct {
	Answers []submittedAnswer `json:"answers"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and drives a single quiz round trip. The
// userId query parameter is optional; without it the submission is anonymous
// and no attempt is recorded.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	userID := r.URL.Query().Get("userId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	presented, err := h.query.FreshQuiz(r.Context(), quizID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	if err := conn.WriteJSON(outboundMessage[app.PresentedQuiz]{Type: "quiz", Payload: presented}); err != nil {
		log.Printf("ws write error: %v", err)
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case "submit":
			var payload submitPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "invalid submit payload"}})
				continue
			}
			answers := make([]domain.SubmittedAnswer, 0, len(payload.Answers))
			for _, a := range payload.Answers {
				answers = append(answers, a.toDomain())
			}
			report, err := h.quiz.Submit(r.Context(), domain.Submission{
				QuizID:  quizID,
				UserID:  userID,
				Answers: answers,
			})
			if err != nil {
				_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
				continue
			}
			if err := conn.WriteJSON(outboundMessage[app.ScoreReport]{Type: "result", Payload: report}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		default:
			_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}
}
