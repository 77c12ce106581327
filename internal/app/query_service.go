package app

import (
	"context"
	"fmt"
	"time"

	"nusantara-quiz-service/internal/domain"
)

// QuizViewKind tags the three possible outcomes of a quiz query.
type QuizViewKind string

const (
	// ViewNone means no quiz is configured for the requested scope. This is
	// an explicit signal, not an error.
	ViewNone QuizViewKind = "none"
	// ViewFresh carries a shuffled quiz ready to play.
	ViewFresh QuizViewKind = "fresh"
	// ViewReview carries the user's completed attempt for post-hoc display.
	ViewReview QuizViewKind = "review"
)

// CompletedReview is the post-completion payload: the user's answers joined
// against the authoritative correct answers, plus the final stored score.
type CompletedReview struct {
	QuizID      string           `json:"quiz_id"`
	QuizTitle   string           `json:"quiz_title"`
	Score       int              `json:"score"`
	CompletedAt time.Time        `json:"completed_at"`
	Questions   []QuestionResult `json:"questions"`
}

// QuizView is the query result. When Kind is ViewReview and the question bank
// could not be reached for enrichment, Review still carries the score and
// completion time while HistoryErr records what failed, so callers can tell
// a full review apart from a degraded one without inspecting string fields.
type QuizView struct {
	Kind       QuizViewKind
	Fresh      *PresentedQuiz
	Review     *CompletedReview
	HistoryErr error
}

// QueryService is the read-side entry point: it decides whether a request
// gets a fresh shuffled quiz, a completed-attempt review, or nothing.
type QueryService struct {
	catalog  QuizCatalog
	bank     QuestionBank
	attempts *AttemptTracker
}

func NewQueryService(catalog QuizCatalog, bank QuestionBank, attempts *AttemptTracker) *QueryService {
	return &QueryService{catalog: catalog, bank: bank, attempts: attempts}
}

// DailyQuiz resolves today's daily quiz for a user. If the user already
// completed an attempt today, the stored attempt is replayed as a review and
// no shuffling happens. Candidates are consumed in catalog order, so repeated
// requests within one day land on the same quiz.
func (s *QueryService) DailyQuiz(ctx context.Context, userID string) (QuizView, error) {
	today := s.attempts.Today()
	candidates, err := s.catalog.FindQuizzes(ctx, QuizFilter{
		Category:    domain.CategoryDaily,
		ScheduledOn: &today,
	})
	if err != nil {
		return QuizView{}, fmt.Errorf("find daily quizzes: %w", err)
	}
	if len(candidates) == 0 {
		return QuizView{Kind: ViewNone}, nil
	}

	if userID != "" {
		attempt, done, err := s.attempts.CompletedToday(ctx, userID, quizIDs(candidates))
		if err != nil {
			return QuizView{}, err
		}
		if done {
			return s.reviewView(ctx, attempt, candidates), nil
		}
	}

	quiz := candidates[0]
	if userID != "" {
		if _, err := s.attempts.StartOrResume(ctx, userID, quiz.ID); err != nil {
			return QuizView{}, err
		}
	}
	return s.freshView(ctx, quiz)
}

// ProvinceQuiz resolves the quiz for a province. Province quizzes are not
// day-gated and may be replayed, so no attempt short-circuit applies.
func (s *QueryService) ProvinceQuiz(ctx context.Context, provinceID string) (QuizView, error) {
	candidates, err := s.catalog.FindQuizzes(ctx, QuizFilter{
		Category:   domain.CategoryProvince,
		ProvinceID: provinceID,
	})
	if err != nil {
		return QuizView{}, fmt.Errorf("find province quizzes: %w", err)
	}
	if len(candidates) == 0 {
		return QuizView{Kind: ViewNone}, nil
	}
	return s.freshView(ctx, candidates[0])
}

// FreshQuiz shuffles an explicit quiz for presentation, regardless of
// category. Used by the websocket play flow.
func (s *QueryService) FreshQuiz(ctx context.Context, quizID string) (PresentedQuiz, error) {
	quiz, err := s.catalog.GetQuiz(ctx, quizID)
	if err != nil {
		return PresentedQuiz{}, err
	}
	questions, err := s.bank.QuestionsForQuiz(ctx, quiz.ID)
	if err != nil {
		return PresentedQuiz{}, fmt.Errorf("load questions: %w", err)
	}
	return PresentQuiz(quiz, questions), nil
}

func (s *QueryService) freshView(ctx context.Context, quiz domain.Quiz) (QuizView, error) {
	questions, err := s.bank.QuestionsForQuiz(ctx, quiz.ID)
	if err != nil {
		return QuizView{}, fmt.Errorf("load questions: %w", err)
	}
	presented := PresentQuiz(quiz, questions)
	return QuizView{Kind: ViewFresh, Fresh: &presented}, nil
}

// reviewView re-joins a stored attempt against the authoritative bank. The
// score and completion time come from the attempt itself, so a question-bank
// failure degrades the review instead of hiding the completion.
func (s *QueryService) reviewView(ctx context.Context, attempt domain.Attempt, candidates []domain.Quiz) QuizView {
	review := &CompletedReview{
		QuizID: attempt.QuizID,
		Score:  attempt.Score,
	}
	if attempt.FinishedAt != nil {
		review.CompletedAt = *attempt.FinishedAt
	}
	for _, quiz := range candidates {
		if quiz.ID == attempt.QuizID {
			review.QuizTitle = quiz.Title
			break
		}
	}

	questions, err := s.bank.QuestionsForQuiz(ctx, attempt.QuizID)
	if err != nil {
		return QuizView{Kind: ViewReview, Review: review, HistoryErr: fmt.Errorf("load questions for review: %w", err)}
	}
	report := ScoreSubmission(questions, domain.Submission{
		QuizID:  attempt.QuizID,
		UserID:  attempt.UserID,
		Answers: attempt.Answers,
	})
	review.Questions = report.Results
	return QuizView{Kind: ViewReview, Review: review}
}

func quizIDs(quizzes []domain.Quiz) []string {
	ids := make([]string, 0, len(quizzes))
	for _, q := range quizzes {
		ids = append(ids, q.ID)
	}
	return ids
}
