package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"nusantara-quiz-service/internal/domain"
)

// QuestionSource fetches authoritative question sets from a backing store.
type QuestionSource interface {
	QuestionsForQuiz(ctx context.Context, quizID string) ([]domain.Question, error)
}

// QuestionBank caches question sets with TTL to avoid repeated store hits.
type QuestionBank struct {
	source QuestionSource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuestions
}

type cachedQuestions struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionBank(source QuestionSource, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuestions),
	}
}

func (b *QuestionBank) QuestionsForQuiz(ctx context.Context, quizID string) ([]domain.Question, error) {
	now := b.clock()

	b.mu.RLock()
	if entry, ok := b.cache[quizID]; ok && entry.expiresAt.After(now) {
		b.mu.RUnlock()
		return entry.questions, nil
	}
	b.mu.RUnlock()

	result, err, _ := b.sf.Do(quizID, func() (interface{}, error) {
		now := b.clock()
		b.mu.RLock()
		if entry, ok := b.cache[quizID]; ok && entry.expiresAt.After(now) {
			b.mu.RUnlock()
			return entry.questions, nil
		}
		b.mu.RUnlock()

		questions, err := b.source.QuestionsForQuiz(ctx, quizID)
		if err != nil {
			return nil, err
		}

		b.mu.Lock()
		b.cache[quizID] = cachedQuestions{
			questions: questions,
			expiresAt: now.Add(b.ttlWithJitter()),
		}
		b.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}

// StaticQuestionSource serves question sets from an in-memory map (useful for
// tests/demos). Unknown quizzes yield an empty set, matching the SQL bank.
type StaticQuestionSource struct {
	questions map[string][]domain.Question
}

func NewStaticQuestionSource(questions map[string][]domain.Question) *StaticQuestionSource {
	return &StaticQuestionSource{questions: questions}
}

func (s *StaticQuestionSource) QuestionsForQuiz(_ context.Context, quizID string) ([]domain.Question, error) {
	return s.questions[quizID], nil
}
