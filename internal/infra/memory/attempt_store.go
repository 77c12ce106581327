package memory

import (
	"context"
	"sync"
	"time"

	"nusantara-quiz-service/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptStore. The
// conditional-write semantics match the SQL store: completion only succeeds
// while finished_at is still null.
type AttemptStore struct {
	mu       sync.Mutex
	attempts map[string]domain.Attempt
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{attempts: make(map[string]domain.Attempt)}
}

func (s *AttemptStore) GetAttempt(_ context.Context, attemptID string) (domain.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, ok := s.attempts[attemptID]
	if !ok {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

func (s *AttemptStore) FindInProgress(_ context.Context, userID, quizID string) (domain.Attempt, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found domain.Attempt
	var ok bool
	for _, attempt := range s.attempts {
		if attempt.UserID != userID || attempt.QuizID != quizID || attempt.Completed() {
			continue
		}
		if !ok || attempt.StartedAt.After(found.StartedAt) {
			found = attempt
			ok = true
		}
	}
	return found, ok, nil
}

func (s *AttemptStore) FindCompletedInWindow(_ context.Context, userID string, quizIDs []string, from, to time.Time) (domain.Attempt, bool, error) {
	inScope := make(map[string]struct{}, len(quizIDs))
	for _, id := range quizIDs {
		inScope[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var found domain.Attempt
	var ok bool
	for _, attempt := range s.attempts {
		if attempt.UserID != userID || !attempt.Completed() {
			continue
		}
		if _, scoped := inScope[attempt.QuizID]; !scoped {
			continue
		}
		finished := *attempt.FinishedAt
		if finished.Before(from) || !finished.Before(to) {
			continue
		}
		if !ok || finished.After(*found.FinishedAt) {
			found = attempt
			ok = true
		}
	}
	return found, ok, nil
}

func (s *AttemptStore) CreateInProgress(_ context.Context, attempt domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt.FinishedAt = nil
	s.attempts[attempt.ID] = attempt
	return nil
}

func (s *AttemptStore) CreateCompleted(_ context.Context, attempt domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attempt.ID] = attempt
	return nil
}

func (s *AttemptStore) CompleteIfInProgress(_ context.Context, attemptID string, score int, answers []domain.SubmittedAnswer, finishedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, ok := s.attempts[attemptID]
	if !ok || attempt.Completed() {
		return false, nil
	}
	attempt.FinishedAt = &finishedAt
	attempt.Score = score
	attempt.Answers = answers
	s.attempts[attemptID] = attempt
	return true, nil
}
