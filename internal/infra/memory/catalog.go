package memory

import (
	"context"
	"sort"

	"nusantara-quiz-service/internal/app"
	"nusantara-quiz-service/internal/domain"
)

// Catalog is a static in-memory quiz catalog for tests and database-less
// demo runs. Results come back in creation order so the daily pick stays
// stable, mirroring the SQL catalog's ORDER BY.
type Catalog struct {
	quizzes []domain.Quiz
}

func NewCatalog(quizzes []domain.Quiz) *Catalog {
	sorted := make([]domain.Quiz, len(quizzes))
	copy(sorted, quizzes)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return &Catalog{quizzes: sorted}
}

func (c *Catalog) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	for _, quiz := range c.quizzes {
		if quiz.ID == quizID {
			return quiz, nil
		}
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (c *Catalog) FindQuizzes(_ context.Context, filter app.QuizFilter) ([]domain.Quiz, error) {
	var out []domain.Quiz
	for _, quiz := range c.quizzes {
		if quiz.Category != filter.Category {
			continue
		}
		if filter.ProvinceID != "" && quiz.ProvinceID != filter.ProvinceID {
			continue
		}
		if filter.ScheduledOn != nil {
			if quiz.ScheduledOn == nil {
				continue
			}
			want := *filter.ScheduledOn
			got := *quiz.ScheduledOn
			if got.Year() != want.Year() || got.YearDay() != want.YearDay() {
				continue
			}
		}
		out = append(out, quiz)
	}
	return out, nil
}
