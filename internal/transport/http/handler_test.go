package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nusantara-quiz-service/internal/app"
	"nusantara-quiz-service/internal/domain"
	"nusantara-quiz-service/internal/infra/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	catalog := memory.NewCatalog([]domain.Quiz{
		{ID: "quiz-1", Title: "Kuis Harian", Category: domain.CategoryDaily, ScheduledOn: &today, CreatedAt: today},
		{ID: "quiz-jabar", Title: "Kuis Jawa Barat", Category: domain.CategoryProvince, ProvinceID: "jawa-barat", CreatedAt: today},
	})
	bank := memory.NewQuestionBank(memory.NewStaticQuestionSource(map[string][]domain.Question{
		"quiz-1": {
			domain.MultipleChoiceQuestion{
				QuestionBase: domain.QuestionBase{ID: "q1", QuizID: "quiz-1", Text: "Pakaian adat?", Points: 1},
				Options: []domain.Option{
					{ID: "o1", Text: "Kebaya Sunda", Correct: true},
					{ID: "o2", Text: "Ulos", Correct: false},
				},
			},
			domain.MatchingQuestion{
				QuestionBase: domain.QuestionBase{ID: "q2", QuizID: "quiz-1", Text: "Jodohkan", Points: 2},
				Pairs: []domain.MatchingPair{
					{ID: "p1", Left: "Tari Saman", Right: "Aceh"},
					{ID: "p2", Left: "Tari Kecak", Right: "Bali"},
				},
			},
		},
		"quiz-jabar": {
			domain.ShortAnswerQuestion{
				QuestionBase: domain.QuestionBase{ID: "q3", QuizID: "quiz-jabar", Text: "Alat musik khas?", Points: 1},
				AnswerKeys:   []string{"Angklung"},
			},
		},
	}), time.Minute)
	tracker := app.NewAttemptTracker(memory.NewAttemptStore(), time.UTC)
	queryService := app.NewQueryService(catalog, bank, tracker)
	quizService := app.NewQuizService(catalog, bank, tracker)
	handler := NewHandler(queryService, quizService)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/quiz/daily", handler.DailyQuiz)
	mux.HandleFunc("/api/quiz/province/", handler.ProvinceQuiz)
	mux.HandleFunc("/api/quiz/submit", handler.Submit)
	return httptest.NewServer(mux)
}

func TestDailyQuizEndpoint(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/quiz/daily?userId=u1")
	if err != nil {
		t.Fatalf("get daily: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var fresh struct {
		Quiz struct {
			QuizID string `json:"quiz_id"`
			Title  string `json:"title"`
		} `json:"quiz"`
		Questions []map[string]any `json:"questions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fresh); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fresh.Quiz.QuizID != "quiz-1" || len(fresh.Questions) != 2 {
		t.Fatalf("unexpected payload %+v", fresh)
	}
	for _, q := range fresh.Questions {
		if opts, ok := q["options"].([]any); ok {
			for _, o := range opts {
				if _, leaked := o.(map[string]any)["correct"]; leaked {
					t.Fatalf("correctness flag leaked to client: %+v", o)
				}
			}
		}
	}
}

func TestSubmitEndpointAndReviewShortCircuit(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	// Wire shape: answer is a raw string for multiple choice, a list of
	// {pair_id, selected} for matching.
	body := []byte(`{
		"quiz_id": "quiz-1",
		"user_id": "u1",
		"answers": [
			{"question_id": "q1", "type": "multiple_choice", "answer": "o1"},
			{"question_id": "q2", "type": "matching", "answer": [
				{"pair_id": "p1", "selected": "Aceh"},
				{"pair_id": "p2", "selected": "Papua"}
			]}
		]
	}`)
	resp, err := http.Post(server.URL+"/api/quiz/submit", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post submit: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var report struct {
		TotalPoints  int     `json:"totalPoints"`
		EarnedPoints float64 `json:"earnedPoints"`
		AttemptID    string  `json:"attempt_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	// q1 correct (1) + 1 of 2 pairs (1.0) = 2.0 of 3
	if report.TotalPoints != 3 || report.EarnedPoints != 2.0 {
		t.Fatalf("unexpected score %+v", report)
	}
	if report.AttemptID == "" {
		t.Fatalf("expected persisted attempt id")
	}

	// The same user now gets the review payload instead of a fresh quiz.
	resp2, err := http.Get(server.URL + "/api/quiz/daily?userId=u1")
	if err != nil {
		t.Fatalf("get daily after submit: %v", err)
	}
	defer resp2.Body.Close()
	var review struct {
		AlreadyCompleted bool   `json:"already_completed"`
		QuizTitle        string `json:"quiz_title"`
		Score            int    `json:"score"`
	}
	if err := json.NewDecoder(resp2.Body).Decode(&review); err != nil {
		t.Fatalf("decode review: %v", err)
	}
	if !review.AlreadyCompleted || review.QuizTitle != "Kuis Harian" || review.Score != 2 {
		t.Fatalf("unexpected review %+v", review)
	}
}

func TestSubmitValidationAndNotFound(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/quiz/submit", "application/json", bytes.NewReader([]byte(`{"answers": []}`)))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing quiz id, got %d", resp.StatusCode)
	}

	resp, err = http.Post(server.URL+"/api/quiz/submit", "application/json", bytes.NewReader([]byte(`{"quiz_id": "ghost", "answers": []}`)))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown quiz, got %d", resp.StatusCode)
	}
}

func TestProvinceQuizEndpoint(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/quiz/province/jawa-barat")
	if err != nil {
		t.Fatalf("get province: %v", err)
	}
	defer resp.Body.Close()
	var fresh struct {
		Quiz struct {
			QuizID string `json:"quiz_id"`
		} `json:"quiz"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fresh); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fresh.Quiz.QuizID != "quiz-jabar" {
		t.Fatalf("unexpected quiz %+v", fresh)
	}

	resp2, err := http.Get(server.URL + "/api/quiz/province/papua")
	if err != nil {
		t.Fatalf("get missing province: %v", err)
	}
	defer resp2.Body.Close()
	var none struct {
		Available bool `json:"available"`
	}
	if err := json.NewDecoder(resp2.Body).Decode(&none); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp2.StatusCode != http.StatusOK || none.Available {
		t.Fatalf("expected explicit no-quiz signal, got %d %+v", resp2.StatusCode, none)
	}
}
