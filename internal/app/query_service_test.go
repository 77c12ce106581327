package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"nusantara-quiz-service/internal/app"
	"nusantara-quiz-service/internal/domain"
	"nusantara-quiz-service/internal/infra/memory"
)

var testDay = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func newQueryFixture(t *testing.T, quizzes []domain.Quiz) (*app.QueryService, *app.QuizService, *memory.AttemptStore) {
	t.Helper()
	_, questions := shuffleFixture()
	banks := map[string][]domain.Question{}
	for _, quiz := range quizzes {
		banks[quiz.ID] = questions
	}
	catalog := memory.NewCatalog(quizzes)
	bank := memory.NewQuestionBank(memory.NewStaticQuestionSource(banks), time.Minute)
	store := memory.NewAttemptStore()
	tracker := app.NewAttemptTrackerWithClock(store, time.UTC, func() time.Time { return testDay })
	return app.NewQueryService(catalog, bank, tracker),
		app.NewQuizService(catalog, bank, tracker),
		store
}

func dailyQuizzes() []domain.Quiz {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	return []domain.Quiz{
		{ID: "quiz-1", Title: "Kuis Harian", Category: domain.CategoryDaily, ScheduledOn: &day, CreatedAt: day},
	}
}

func TestDailyQuizReturnsFreshShuffledQuiz(t *testing.T) {
	ctx := context.Background()
	query, _, store := newQueryFixture(t, dailyQuizzes())

	view, err := query.DailyQuiz(ctx, "u1")
	if err != nil {
		t.Fatalf("daily quiz: %v", err)
	}
	if view.Kind != app.ViewFresh || view.Fresh == nil {
		t.Fatalf("expected fresh view, got %+v", view)
	}
	if view.Fresh.QuizID != "quiz-1" || len(view.Fresh.Questions) != 3 {
		t.Fatalf("unexpected fresh payload %+v", view.Fresh)
	}
	// Entering the quiz page opens an in-progress attempt.
	if _, ok, _ := store.FindInProgress(ctx, "u1", "quiz-1"); !ok {
		t.Fatalf("expected in-progress attempt after fresh view")
	}
}

func TestDailyQuizStripsAnswerData(t *testing.T) {
	ctx := context.Background()
	query, _, _ := newQueryFixture(t, dailyQuizzes())

	view, err := query.DailyQuiz(ctx, "")
	if err != nil {
		t.Fatalf("daily quiz: %v", err)
	}
	for _, q := range view.Fresh.Questions {
		switch q.Type {
		case domain.TypeShortAnswer:
			// Nothing to check beyond the prompt being present.
			if q.Text == "" {
				t.Fatalf("short answer prompt missing")
			}
		case domain.TypeMatching:
			if len(q.Prompts) != len(q.Choices) {
				t.Fatalf("prompt/choice count mismatch: %+v", q)
			}
		}
	}
}

func TestDailyQuizNoQuizConfigured(t *testing.T) {
	ctx := context.Background()
	query, _, _ := newQueryFixture(t, nil)

	view, err := query.DailyQuiz(ctx, "u1")
	if err != nil {
		t.Fatalf("daily quiz: %v", err)
	}
	if view.Kind != app.ViewNone {
		t.Fatalf("expected explicit no-quiz signal, got %+v", view)
	}
}

func TestDailyQuizShortCircuitsToReview(t *testing.T) {
	ctx := context.Background()
	query, quiz, _ := newQueryFixture(t, dailyQuizzes())

	report, err := quiz.Submit(ctx, domain.Submission{
		QuizID: "quiz-1",
		UserID: "u1",
		Answers: []domain.SubmittedAnswer{
			{QuestionID: "mc1", Type: domain.TypeMultipleChoice, OptionID: "o1"},
		},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if report.AttemptID == "" {
		t.Fatalf("expected persisted attempt id")
	}

	view, err := query.DailyQuiz(ctx, "u1")
	if err != nil {
		t.Fatalf("daily quiz after completion: %v", err)
	}
	if view.Kind != app.ViewReview || view.Review == nil {
		t.Fatalf("expected review view, got %+v", view)
	}
	if !view.Review.CompletedAt.Equal(testDay) {
		t.Fatalf("expected completion time %v, got %v", testDay, view.Review.CompletedAt)
	}
	if view.Review.QuizTitle != "Kuis Harian" || len(view.Review.Questions) != 3 {
		t.Fatalf("unexpected review payload %+v", view.Review)
	}
	if view.HistoryErr != nil {
		t.Fatalf("unexpected history error: %v", view.HistoryErr)
	}
	// The other user still gets a fresh quiz.
	other, err := query.DailyQuiz(ctx, "u2")
	if err != nil {
		t.Fatalf("daily quiz other user: %v", err)
	}
	if other.Kind != app.ViewFresh {
		t.Fatalf("expected fresh view for other user, got %+v", other)
	}
}

func TestDailyQuizPickIsDeterministic(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	quizzes := []domain.Quiz{
		{ID: "quiz-b", Title: "B", Category: domain.CategoryDaily, ScheduledOn: &day, CreatedAt: day.Add(2 * time.Hour)},
		{ID: "quiz-a", Title: "A", Category: domain.CategoryDaily, ScheduledOn: &day, CreatedAt: day.Add(time.Hour)},
	}
	query, _, _ := newQueryFixture(t, quizzes)

	for i := 0; i < 5; i++ {
		view, err := query.DailyQuiz(ctx, "")
		if err != nil {
			t.Fatalf("daily quiz: %v", err)
		}
		if view.Fresh.QuizID != "quiz-a" {
			t.Fatalf("expected earliest-created quiz, got %s", view.Fresh.QuizID)
		}
	}
}

func TestProvinceQuiz(t *testing.T) {
	ctx := context.Background()
	quizzes := []domain.Quiz{
		{ID: "quiz-jabar", Title: "Jawa Barat", Category: domain.CategoryProvince, ProvinceID: "jawa-barat", CreatedAt: testDay},
	}
	query, _, _ := newQueryFixture(t, quizzes)

	view, err := query.ProvinceQuiz(ctx, "jawa-barat")
	if err != nil {
		t.Fatalf("province quiz: %v", err)
	}
	if view.Kind != app.ViewFresh || view.Fresh.QuizID != "quiz-jabar" {
		t.Fatalf("expected fresh province quiz, got %+v", view)
	}

	missing, err := query.ProvinceQuiz(ctx, "papua")
	if err != nil {
		t.Fatalf("province quiz missing: %v", err)
	}
	if missing.Kind != app.ViewNone {
		t.Fatalf("expected no-quiz signal for unknown province, got %+v", missing)
	}
}

type failingBank struct{}

func (failingBank) QuestionsForQuiz(context.Context, string) ([]domain.Question, error) {
	return nil, errors.New("store unavailable")
}

func TestReviewDegradesWhenBankFails(t *testing.T) {
	ctx := context.Background()
	quizzes := dailyQuizzes()
	catalog := memory.NewCatalog(quizzes)
	store := memory.NewAttemptStore()
	tracker := app.NewAttemptTrackerWithClock(store, time.UTC, func() time.Time { return testDay })

	if _, err := tracker.Complete(ctx, "u1", "quiz-1", 7, nil); err != nil {
		t.Fatalf("complete: %v", err)
	}

	query := app.NewQueryService(catalog, failingBank{}, tracker)
	view, err := query.DailyQuiz(ctx, "u1")
	if err != nil {
		t.Fatalf("daily quiz: %v", err)
	}
	if view.Kind != app.ViewReview || view.Review == nil {
		t.Fatalf("expected degraded review, got %+v", view)
	}
	if view.HistoryErr == nil {
		t.Fatalf("expected history error to be surfaced")
	}
	if view.Review.Score != 7 {
		t.Fatalf("score must survive enrichment failure, got %d", view.Review.Score)
	}
}
