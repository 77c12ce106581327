package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"nusantara-quiz-service/internal/app"
	"nusantara-quiz-service/internal/domain"
)

// Handler exposes the quiz engine over plain JSON endpoints.
type Handler struct {
	query *app.QueryService
	quiz  *app.QuizService
}

func NewHandler(query *app.QueryService, quiz *app.QuizService) *Handler {
	return &Handler{query: query, quiz: quiz}
}

type quizInfo struct {
	QuizID string `json:"quiz_id"`
	Title  string `json:"title"`
}

type freshQuizResponse struct {
	Quiz      quizInfo                `json:"quiz"`
	Questions []app.PresentedQuestion `json:"questions"`
}

type reviewResponse struct {
	AlreadyCompleted   bool                 `json:"already_completed"`
	QuizTitle          string               `json:"quiz_title"`
	Score              int                  `json:"score"`
	CompletedAt        time.Time            `json:"completed_at"`
	Questions          []app.QuestionResult `json:"questions"`
	HistoryUnavailable bool                 `json:"history_unavailable,omitempty"`
}

type noQuizResponse struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// DailyQuiz serves GET /api/quiz/daily?userId=...
func (h *Handler) DailyQuiz(w http.ResponseWriter, r *http.Request) {
	view, err := h.query.DailyQuiz(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeView(w, view)
}

// ProvinceQuiz serves GET /api/quiz/province/{provinceID}
func (h *Handler) ProvinceQuiz(w http.ResponseWriter, r *http.Request) {
	provinceID := strings.TrimPrefix(r.URL.Path, "/api/quiz/province/")
	if provinceID == "" || strings.Contains(provinceID, "/") {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "missing province id"})
		return
	}
	view, err := h.query.ProvinceQuiz(r.Context(), provinceID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeView(w, view)
}

type submitRequest struct {
	QuizID  string            `json:"quiz_id"`
	UserID  string            `json:"user_id,omitempty"`
	Answers []submittedAnswer `json:"answers"`
}

// submittedAnswer is the stable wire shape: answer is an option id string, a
// free-text string, or a list of {pair_id, selected} depending on type.
type submittedAnswer struct {
	QuestionID string              `json:"question_id"`
	Type       domain.QuestionType `json:"type"`
	Answer     json.RawMessage     `json:"answer"`
}

// toDomain decodes the polymorphic answer field. Malformed answer payloads
// decode to an empty value and score as incorrect; they are not an error.
func (a submittedAnswer) toDomain() domain.SubmittedAnswer {
	out := domain.SubmittedAnswer{QuestionID: a.QuestionID, Type: a.Type}
	switch a.Type {
	case domain.TypeMultipleChoice:
		_ = json.Unmarshal(a.Answer, &out.OptionID)
	case domain.TypeShortAnswer:
		_ = json.Unmarshal(a.Answer, &out.Text)
	case domain.TypeMatching:
		_ = json.Unmarshal(a.Answer, &out.Matches)
	}
	return out
}

// Submit serves POST /api/quiz/submit.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Message: "method not allowed"})
		return
	}
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid submission payload"})
		return
	}
	report, err := h.quiz.Submit(r.Context(), submissionFromRequest(req))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func submissionFromRequest(req submitRequest) domain.Submission {
	sub := domain.Submission{QuizID: req.QuizID, UserID: req.UserID}
	if req.Answers != nil {
		sub.Answers = make([]domain.SubmittedAnswer, 0, len(req.Answers))
		for _, a := range req.Answers {
			sub.Answers = append(sub.Answers, a.toDomain())
		}
	}
	return sub
}

func (h *Handler) writeView(w http.ResponseWriter, view app.QuizView) {
	switch view.Kind {
	case app.ViewNone:
		writeJSON(w, http.StatusOK, noQuizResponse{Available: false, Message: "no quiz configured"})
	case app.ViewFresh:
		writeJSON(w, http.StatusOK, freshQuizResponse{
			Quiz:      quizInfo{QuizID: view.Fresh.QuizID, Title: view.Fresh.Title},
			Questions: view.Fresh.Questions,
		})
	case app.ViewReview:
		if view.HistoryErr != nil {
			log.Printf("review enrichment failed: %v", view.HistoryErr)
		}
		writeJSON(w, http.StatusOK, reviewResponse{
			AlreadyCompleted:   true,
			QuizTitle:          view.Review.QuizTitle,
			Score:              view.Review.Score,
			CompletedAt:        view.Review.CompletedAt,
			Questions:          view.Review.Questions,
			HistoryUnavailable: view.HistoryErr != nil,
		})
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidSubmission):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrAttemptNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: err.Error()})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}
