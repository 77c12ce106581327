package redis

import (
	"context"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"nusantara-quiz-service/internal/domain"
)

// QuestionSource fetches authoritative question sets from a backing store.
type QuestionSource interface {
	QuestionsForQuiz(ctx context.Context, quizID string) ([]domain.Question, error)
}

// QuestionBank is a read-through Redis cache over a question source. The
// serialized question set for a quiz is stored as:
// SET quiz:{quizID}:questions {json}
type QuestionBank struct {
	client *redis.Client
	source QuestionSource
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionBank(client *redis.Client, source QuestionSource, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (b *QuestionBank) QuestionsForQuiz(ctx context.Context, quizID string) ([]domain.Question, error) {
	key := b.key(quizID)

	if cached, err := b.client.Get(ctx, key).Bytes(); err == nil {
		if questions, err := domain.DecodeQuestions(cached); err == nil {
			return questions, nil
		}
		// Corrupt cache entry: drop it and reload from the source.
		_ = b.client.Del(ctx, key).Err()
	}

	result, err, _ := b.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if cached, err := b.client.Get(ctx, key).Bytes(); err == nil {
			if questions, err := domain.DecodeQuestions(cached); err == nil {
				return questions, nil
			}
		}

		questions, err := b.source.QuestionsForQuiz(ctx, quizID)
		if err != nil {
			return nil, err
		}

		if encoded, err := domain.EncodeQuestions(questions); err == nil {
			_ = b.client.Set(ctx, key, encoded, b.ttlWithJitter()).Err()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (b *QuestionBank) key(quizID string) string {
	return "quiz:" + quizID + ":questions"
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}
