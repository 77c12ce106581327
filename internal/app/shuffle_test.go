package app_test

import (
	"fmt"
	"sort"
	"testing"

	"nusantara-quiz-service/internal/app"
	"nusantara-quiz-service/internal/domain"
)

func TestShufflePreservesContent(t *testing.T) {
	quiz, questions := shuffleFixture()

	presented := app.PresentQuiz(quiz, questions)

	if presented.QuizID != quiz.ID || presented.Title != quiz.Title {
		t.Fatalf("quiz identity changed: %+v", presented)
	}
	if len(presented.Questions) != len(questions) {
		t.Fatalf("expected %d questions, got %d", len(questions), len(presented.Questions))
	}

	wantIDs := map[string]bool{}
	for _, q := range questions {
		wantIDs[q.Base().ID] = true
	}
	for _, pq := range presented.Questions {
		if !wantIDs[pq.ID] {
			t.Fatalf("unexpected question id %q", pq.ID)
		}
		delete(wantIDs, pq.ID)
	}
	if len(wantIDs) != 0 {
		t.Fatalf("questions dropped by shuffle: %v", wantIDs)
	}

	for _, pq := range presented.Questions {
		if pq.ID != "mc1" {
			continue
		}
		var got []string
		for _, opt := range pq.Options {
			got = append(got, opt.Text)
		}
		sort.Strings(got)
		want := []string{"Baju Bodo", "Kebaya Sunda", "Ulos"}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Fatalf("option texts changed: got %v want %v", got, want)
		}
	}
}

func TestMatchingShuffleRightMultisetInvariant(t *testing.T) {
	quiz, questions := shuffleFixture()

	presented := app.PresentQuiz(quiz, questions)
	for _, pq := range presented.Questions {
		if pq.Type != domain.TypeMatching {
			continue
		}
		if len(pq.Prompts) != 4 || len(pq.Choices) != 4 {
			t.Fatalf("expected 4 prompts and 4 choices, got %d/%d", len(pq.Prompts), len(pq.Choices))
		}
		var rights []string
		for _, c := range pq.Choices {
			rights = append(rights, c.Text)
		}
		sort.Strings(rights)
		want := []string{"Aceh", "Bali", "Papua", "Sumatera Barat"}
		if fmt.Sprint(rights) != fmt.Sprint(want) {
			t.Fatalf("right-text multiset changed: got %v want %v", rights, want)
		}
		promptIDs := map[string]bool{}
		for _, p := range pq.Prompts {
			promptIDs[p.PairID] = true
		}
		for _, id := range []string{"p1", "p2", "p3", "p4"} {
			if !promptIDs[id] {
				t.Fatalf("pair id %s missing from prompts", id)
			}
		}
	}
}

func TestShuffleProducesDifferentOrderings(t *testing.T) {
	quiz := domain.Quiz{ID: "quiz-1", Title: "Kuis"}
	var questions []domain.Question
	for i := 0; i < 12; i++ {
		questions = append(questions, domain.ShortAnswerQuestion{
			QuestionBase: domain.QuestionBase{ID: fmt.Sprintf("q%d", i), Points: 1},
			AnswerKeys:   []string{"x"},
		})
	}

	first := app.PresentQuiz(quiz, questions)
	second := app.PresentQuiz(quiz, questions)

	// With 12 questions the odds of both draws matching the input order are
	// negligible; hitting this failure twice in a row means the shuffle is
	// not shuffling.
	sameAsInput := func(p app.PresentedQuiz) bool {
		for i, pq := range p.Questions {
			if pq.ID != questions[i].Base().ID {
				return false
			}
		}
		return true
	}
	if sameAsInput(first) && sameAsInput(second) {
		t.Fatalf("two consecutive shuffles preserved input order")
	}
}

func TestShuffleEmptyMatchingPassesThrough(t *testing.T) {
	pq := app.PresentQuestion(domain.MatchingQuestion{
		QuestionBase: domain.QuestionBase{ID: "m0", Text: "empty", Points: 1},
	})
	if len(pq.Prompts) != 0 || len(pq.Choices) != 0 {
		t.Fatalf("expected empty lists, got %+v", pq)
	}
}

func TestShuffleDoesNotMutateInput(t *testing.T) {
	quiz, questions := shuffleFixture()
	var order []string
	for _, q := range questions {
		order = append(order, q.Base().ID)
	}

	_ = app.PresentQuiz(quiz, questions)

	for i, q := range questions {
		if q.Base().ID != order[i] {
			t.Fatalf("input slice mutated at %d: %s != %s", i, q.Base().ID, order[i])
		}
	}
}

func shuffleFixture() (domain.Quiz, []domain.Question) {
	quiz := domain.Quiz{ID: "quiz-1", Title: "Kuis Budaya"}
	questions := []domain.Question{
		domain.MultipleChoiceQuestion{
			QuestionBase: domain.QuestionBase{ID: "mc1", Text: "Pakaian adat Jawa Barat?", Points: 1},
			Options: []domain.Option{
				{ID: "o1", Text: "Kebaya Sunda", Correct: true},
				{ID: "o2", Text: "Ulos", Correct: false},
				{ID: "o3", Text: "Baju Bodo", Correct: false},
			},
		},
		domain.ShortAnswerQuestion{
			QuestionBase: domain.QuestionBase{ID: "sa1", Text: "Ibu kota Jawa Timur?", Points: 1},
			AnswerKeys:   []string{"Surabaya"},
		},
		domain.MatchingQuestion{
			QuestionBase: domain.QuestionBase{ID: "m1", Text: "Jodohkan tarian dengan provinsinya", Points: 2},
			Pairs: []domain.MatchingPair{
				{ID: "p1", Left: "Tari Saman", Right: "Aceh"},
				{ID: "p2", Left: "Tari Kecak", Right: "Bali"},
				{ID: "p3", Left: "Tari Piring", Right: "Sumatera Barat"},
				{ID: "p4", Left: "Tari Yospan", Right: "Papua"},
			},
		},
	}
	return quiz, questions
}
