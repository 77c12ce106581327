package app

import (
	"context"
	"time"

	"nusantara-quiz-service/internal/domain"
)

// QuestionBank reads the authoritative question set for a quiz, with
// type-specific sub-entities (options, pairs, answer keys) eagerly loaded.
// The engine never mutates it.
type QuestionBank interface {
	QuestionsForQuiz(ctx context.Context, quizID string) ([]domain.Question, error)
}

// QuizFilter narrows a catalog lookup. A nil ScheduledOn means any date; an
// empty ProvinceID means any province.
type QuizFilter struct {
	Category    domain.QuizCategory
	ScheduledOn *time.Time
	ProvinceID  string
}

// QuizCatalog resolves quiz metadata. FindQuizzes must return results in a
// stable order (creation order) so the day's quiz identity does not flap
// between requests.
type QuizCatalog interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	FindQuizzes(ctx context.Context, filter QuizFilter) ([]domain.Quiz, error)
}

// AttemptStore persists attempts. Mutations are single atomic conditional
// writes so concurrent stateless instances stay safe without locks;
// CompleteIfInProgress must compare-and-set on finished_at being null.
type AttemptStore interface {
	GetAttempt(ctx context.Context, attemptID string) (domain.Attempt, error)
	FindInProgress(ctx context.Context, userID, quizID string) (domain.Attempt, bool, error)
	FindCompletedInWindow(ctx context.Context, userID string, quizIDs []string, from, to time.Time) (domain.Attempt, bool, error)
	CreateInProgress(ctx context.Context, attempt domain.Attempt) error
	CreateCompleted(ctx context.Context, attempt domain.Attempt) error
	CompleteIfInProgress(ctx context.Context, attemptID string, score int, answers []domain.SubmittedAnswer, finishedAt time.Time) (bool, error)
}
