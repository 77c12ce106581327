package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"nusantara-quiz-service/internal/domain"
)

// AttemptStore persists attempts in Postgres. Completion is a conditional
// update on finished_at being null, so concurrent submissions race safely:
// exactly one write wins and the rest see zero affected rows.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

const attemptColumns = `id, user_id, quiz_id, started_at, finished_at, score, COALESCE(answers, 'null'::jsonb)`

func (s *AttemptStore) GetAttempt(ctx context.Context, attemptID string) (domain.Attempt, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM attempts WHERE id=$1`, attemptID)
	attempt, err := scanAttempt(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("load attempt: %w", err)
	}
	return attempt, nil
}

func (s *AttemptStore) FindInProgress(ctx context.Context, userID, quizID string) (domain.Attempt, bool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM attempts
		 WHERE user_id=$1 AND quiz_id=$2 AND finished_at IS NULL
		 ORDER BY started_at DESC LIMIT 1`, userID, quizID)
	attempt, err := scanAttempt(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Attempt{}, false, nil
	}
	if err != nil {
		return domain.Attempt{}, false, fmt.Errorf("find in-progress attempt: %w", err)
	}
	return attempt, true, nil
}

func (s *AttemptStore) FindCompletedInWindow(ctx context.Context, userID string, quizIDs []string, from, to time.Time) (domain.Attempt, bool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM attempts
		 WHERE user_id=$1 AND quiz_id = ANY($2) AND finished_at >= $3 AND finished_at < $4
		 ORDER BY finished_at DESC LIMIT 1`, userID, quizIDs, from, to)
	attempt, err := scanAttempt(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Attempt{}, false, nil
	}
	if err != nil {
		return domain.Attempt{}, false, fmt.Errorf("find completed attempt: %w", err)
	}
	return attempt, true, nil
}

func (s *AttemptStore) CreateInProgress(ctx context.Context, attempt domain.Attempt) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO attempts (id, user_id, quiz_id, started_at, score)
		 VALUES ($1, $2, $3, $4, 0)`,
		attempt.ID, attempt.UserID, attempt.QuizID, attempt.StartedAt)
	if err != nil {
		return fmt.Errorf("create attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) CreateCompleted(ctx context.Context, attempt domain.Attempt) error {
	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO attempts (id, user_id, quiz_id, started_at, finished_at, score, answers)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		attempt.ID, attempt.UserID, attempt.QuizID, attempt.StartedAt, attempt.FinishedAt, attempt.Score, answers)
	if err != nil {
		return fmt.Errorf("create completed attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) CompleteIfInProgress(ctx context.Context, attemptID string, score int, answers []domain.SubmittedAnswer, finishedAt time.Time) (bool, error) {
	encoded, err := json.Marshal(answers)
	if err != nil {
		return false, fmt.Errorf("marshal answers: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE attempts SET finished_at=$2, score=$3, answers=$4
		 WHERE id=$1 AND finished_at IS NULL`,
		attemptID, finishedAt, score, encoded)
	if err != nil {
		return false, fmt.Errorf("complete attempt: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanAttempt(row pgx.Row) (domain.Attempt, error) {
	var attempt domain.Attempt
	var answers []byte
	if err := row.Scan(&attempt.ID, &attempt.UserID, &attempt.QuizID, &attempt.StartedAt, &attempt.FinishedAt, &attempt.Score, &answers); err != nil {
		return domain.Attempt{}, err
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &attempt.Answers); err != nil {
			return domain.Attempt{}, fmt.Errorf("unmarshal answers: %w", err)
		}
	}
	return attempt, nil
}
