package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"nusantara-quiz-service/internal/domain"
)

// QuestionBank loads questions and their type-specific sub-entities from
// Postgres. Sub-entities are batch-loaded per type so a quiz with no matching
// questions never touches the matching_pairs table.
type QuestionBank struct {
	pool *pgxpool.Pool
}

func NewQuestionBank(pool *pgxpool.Pool) *QuestionBank {
	return &QuestionBank{pool: pool}
}

type questionRow struct {
	base domain.QuestionBase
	kind domain.QuestionType
}

func (b *QuestionBank) QuestionsForQuiz(ctx context.Context, quizID string) ([]domain.Question, error) {
	rows, err := b.pool.Query(ctx,
		`SELECT id, quiz_id, type, text, COALESCE(image_url, ''), points
		 FROM questions WHERE quiz_id=$1 ORDER BY position, id`, quizID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var ordered []questionRow
	idsByKind := map[domain.QuestionType][]string{}
	for rows.Next() {
		var row questionRow
		if err := rows.Scan(&row.base.ID, &row.base.QuizID, &row.kind, &row.base.Text, &row.base.ImageURL, &row.base.Points); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		ordered = append(ordered, row)
		idsByKind[row.kind] = append(idsByKind[row.kind], row.base.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}

	options := map[string][]domain.Option{}
	if ids := idsByKind[domain.TypeMultipleChoice]; len(ids) > 0 {
		if options, err = b.loadOptions(ctx, ids); err != nil {
			return nil, err
		}
	}
	pairs := map[string][]domain.MatchingPair{}
	if ids := idsByKind[domain.TypeMatching]; len(ids) > 0 {
		if pairs, err = b.loadPairs(ctx, ids); err != nil {
			return nil, err
		}
	}
	keys := map[string][]string{}
	if ids := idsByKind[domain.TypeShortAnswer]; len(ids) > 0 {
		if keys, err = b.loadAnswerKeys(ctx, ids); err != nil {
			return nil, err
		}
	}

	questions := make([]domain.Question, 0, len(ordered))
	for _, row := range ordered {
		switch row.kind {
		case domain.TypeMultipleChoice:
			questions = append(questions, domain.MultipleChoiceQuestion{QuestionBase: row.base, Options: options[row.base.ID]})
		case domain.TypeShortAnswer:
			questions = append(questions, domain.ShortAnswerQuestion{QuestionBase: row.base, AnswerKeys: keys[row.base.ID]})
		case domain.TypeMatching:
			questions = append(questions, domain.MatchingQuestion{QuestionBase: row.base, Pairs: pairs[row.base.ID]})
		default:
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownQuestionType, row.kind)
		}
	}
	return questions, nil
}

func (b *QuestionBank) loadOptions(ctx context.Context, questionIDs []string) (map[string][]domain.Option, error) {
	rows, err := b.pool.Query(ctx,
		`SELECT question_id, id, text, is_correct
		 FROM question_options WHERE question_id = ANY($1) ORDER BY id`, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}
	defer rows.Close()

	out := map[string][]domain.Option{}
	for rows.Next() {
		var questionID string
		var opt domain.Option
		if err := rows.Scan(&questionID, &opt.ID, &opt.Text, &opt.Correct); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		out[questionID] = append(out[questionID], opt)
	}
	return out, rows.Err()
}

func (b *QuestionBank) loadPairs(ctx context.Context, questionIDs []string) (map[string][]domain.MatchingPair, error) {
	rows, err := b.pool.Query(ctx,
		`SELECT question_id, id, left_text, right_text
		 FROM matching_pairs WHERE question_id = ANY($1) ORDER BY id`, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("load matching pairs: %w", err)
	}
	defer rows.Close()

	out := map[string][]domain.MatchingPair{}
	for rows.Next() {
		var questionID string
		var pair domain.MatchingPair
		if err := rows.Scan(&questionID, &pair.ID, &pair.Left, &pair.Right); err != nil {
			return nil, fmt.Errorf("scan matching pair: %w", err)
		}
		out[questionID] = append(out[questionID], pair)
	}
	return out, rows.Err()
}

func (b *QuestionBank) loadAnswerKeys(ctx context.Context, questionIDs []string) (map[string][]string, error) {
	rows, err := b.pool.Query(ctx,
		`SELECT question_id, correct_text
		 FROM answer_keys WHERE question_id = ANY($1) ORDER BY id`, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("load answer keys: %w", err)
	}
	defer rows.Close()

	out := map[string][]string{}
	for rows.Next() {
		var questionID, text string
		if err := rows.Scan(&questionID, &text); err != nil {
			return nil, fmt.Errorf("scan answer key: %w", err)
		}
		out[questionID] = append(out[questionID], text)
	}
	return out, rows.Err()
}
