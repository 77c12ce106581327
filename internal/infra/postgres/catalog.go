package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"nusantara-quiz-service/internal/app"
	"nusantara-quiz-service/internal/domain"
)

// Catalog resolves quiz metadata from Postgres. FindQuizzes orders by
// creation so the first candidate for a day stays the same across requests.
type Catalog struct {
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

func (c *Catalog) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := c.pool.QueryRow(ctx,
		`SELECT id, title, category, COALESCE(province_id, ''), scheduled_on, created_at
		 FROM quizzes WHERE id=$1`, quizID).
		Scan(&quiz.ID, &quiz.Title, &quiz.Category, &quiz.ProvinceID, &quiz.ScheduledOn, &quiz.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	return quiz, nil
}

func (c *Catalog) FindQuizzes(ctx context.Context, filter app.QuizFilter) ([]domain.Quiz, error) {
	query := `SELECT id, title, category, COALESCE(province_id, ''), scheduled_on, created_at
		 FROM quizzes WHERE category=$1`
	args := []interface{}{string(filter.Category)}
	if filter.ScheduledOn != nil {
		args = append(args, *filter.ScheduledOn)
		query += fmt.Sprintf(" AND scheduled_on = $%d::date", len(args))
	}
	if filter.ProvinceID != "" {
		args = append(args, filter.ProvinceID)
		query += fmt.Sprintf(" AND province_id = $%d", len(args))
	}
	query += " ORDER BY created_at, id"

	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find quizzes: %w", err)
	}
	defer rows.Close()

	var out []domain.Quiz
	for rows.Next() {
		var quiz domain.Quiz
		if err := rows.Scan(&quiz.ID, &quiz.Title, &quiz.Category, &quiz.ProvinceID, &quiz.ScheduledOn, &quiz.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		out = append(out, quiz)
	}
	return out, rows.Err()
}
