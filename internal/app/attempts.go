package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nusantara-quiz-service/internal/domain"
)

// AttemptTracker drives the attempt lifecycle: NoAttempt -> InProgress ->
// Completed, one-directional. It leans on the store's conditional writes for
// safety under concurrent submissions; there is no application-level locking.
type AttemptTracker struct {
	store AttemptStore
	clock func() time.Time
	loc   *time.Location
}

func NewAttemptTracker(store AttemptStore, loc *time.Location) *AttemptTracker {
	return NewAttemptTrackerWithClock(store, loc, time.Now)
}

// NewAttemptTrackerWithClock is test-only for deterministic timestamps.
func NewAttemptTrackerWithClock(store AttemptStore, loc *time.Location, now func() time.Time) *AttemptTracker {
	if loc == nil {
		loc = time.UTC
	}
	return &AttemptTracker{store: store, clock: now, loc: loc}
}

// StartOrResume returns the user's in-progress attempt for the quiz if one
// exists; re-entering the quiz page mid-attempt must not create a duplicate.
// Otherwise it opens a fresh attempt.
func (t *AttemptTracker) StartOrResume(ctx context.Context, userID, quizID string) (domain.Attempt, error) {
	existing, ok, err := t.store.FindInProgress(ctx, userID, quizID)
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("find in-progress attempt: %w", err)
	}
	if ok {
		return existing, nil
	}

	attempt := domain.Attempt{
		ID:        uuid.NewString(),
		UserID:    userID,
		QuizID:    quizID,
		StartedAt: t.clock(),
	}
	if err := t.store.CreateInProgress(ctx, attempt); err != nil {
		return domain.Attempt{}, fmt.Errorf("create attempt: %w", err)
	}
	return attempt, nil
}

// Complete moves the user's attempt to its terminal state. First completion
// wins: if another submission already completed the attempt, the stored
// score is returned untouched. When no in-progress attempt exists (the user
// submitted without ever loading the quiz page), creation and completion
// collapse into a single write.
func (t *AttemptTracker) Complete(ctx context.Context, userID, quizID string, score int, answers []domain.SubmittedAnswer) (domain.Attempt, error) {
	now := t.clock()

	existing, ok, err := t.store.FindInProgress(ctx, userID, quizID)
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("find in-progress attempt: %w", err)
	}
	if !ok {
		// No open attempt. If the user already completed this quiz today,
		// that result stands; re-submissions never overwrite it.
		from, to := t.dayWindow()
		winner, done, err := t.store.FindCompletedInWindow(ctx, userID, []string{quizID}, from, to)
		if err != nil {
			return domain.Attempt{}, fmt.Errorf("find completed attempt: %w", err)
		}
		if done {
			return winner, nil
		}

		attempt := domain.Attempt{
			ID:         uuid.NewString(),
			UserID:     userID,
			QuizID:     quizID,
			StartedAt:  now,
			FinishedAt: &now,
			Score:      score,
			Answers:    answers,
		}
		if err := t.store.CreateCompleted(ctx, attempt); err != nil {
			return domain.Attempt{}, fmt.Errorf("create completed attempt: %w", err)
		}
		return attempt, nil
	}

	won, err := t.store.CompleteIfInProgress(ctx, existing.ID, score, answers, now)
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("complete attempt: %w", err)
	}
	if !won {
		// A concurrent submission got there first; hand back its result.
		winner, err := t.store.GetAttempt(ctx, existing.ID)
		if err != nil {
			return domain.Attempt{}, fmt.Errorf("load completed attempt: %w", err)
		}
		return winner, nil
	}

	existing.FinishedAt = &now
	existing.Score = score
	existing.Answers = answers
	return existing, nil
}

// CompletedToday returns the most relevant completed attempt among the given
// quizzes within the current quiz-day window.
func (t *AttemptTracker) CompletedToday(ctx context.Context, userID string, quizIDs []string) (domain.Attempt, bool, error) {
	from, to := t.dayWindow()
	attempt, ok, err := t.store.FindCompletedInWindow(ctx, userID, quizIDs, from, to)
	if err != nil {
		return domain.Attempt{}, false, fmt.Errorf("find completed attempt: %w", err)
	}
	return attempt, ok, nil
}

// Today is the current calendar date in the tracker's location, used for
// scheduled-quiz matching.
func (t *AttemptTracker) Today() time.Time {
	now := t.clock().In(t.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, t.loc)
}

// dayWindow bounds the quiz day: [midnight, next midnight) in the configured
// location.
func (t *AttemptTracker) dayWindow() (time.Time, time.Time) {
	start := t.Today()
	return start, start.AddDate(0, 0, 1)
}
