package app

import (
	"context"
	"fmt"
	"log"
	"math"

	"nusantara-quiz-service/internal/domain"
)

// QuizService contains the write-side use case: scoring a submission and
// recording the attempt.
type QuizService struct {
	catalog  QuizCatalog
	bank     QuestionBank
	attempts *AttemptTracker
}

func NewQuizService(catalog QuizCatalog, bank QuestionBank, attempts *AttemptTracker) *QuizService {
	return &QuizService{catalog: catalog, bank: bank, attempts: attempts}
}

// Submit validates and scores a submission. For identified users the attempt
// is completed with the rounded score; anonymous submissions are scored
// without touching the store. A persistence failure is logged and swallowed
// so the scoring result is never lost to a history-tracking hiccup.
func (s *QuizService) Submit(ctx context.Context, sub domain.Submission) (ScoreReport, error) {
	if sub.QuizID == "" || sub.Answers == nil {
		return ScoreReport{}, domain.ErrInvalidSubmission
	}
	if _, err := s.catalog.GetQuiz(ctx, sub.QuizID); err != nil {
		return ScoreReport{}, err
	}
	questions, err := s.bank.QuestionsForQuiz(ctx, sub.QuizID)
	if err != nil {
		return ScoreReport{}, fmt.Errorf("load questions: %w", err)
	}

	report := ScoreSubmission(questions, sub)

	if sub.UserID != "" {
		stored := int(math.Round(report.EarnedPoints))
		attempt, err := s.attempts.Complete(ctx, sub.UserID, sub.QuizID, stored, sub.Answers)
		if err != nil {
			log.Printf("attempt persistence failed for user %s quiz %s: %v", sub.UserID, sub.QuizID, err)
		} else {
			report.AttemptID = attempt.ID
			report.UserID = sub.UserID
		}
	}
	return report, nil
}
