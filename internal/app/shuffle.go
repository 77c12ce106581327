package app

import (
	"fmt"
	"math/rand"

	"nusantara-quiz-service/internal/domain"
)

// PresentedOption is an answer choice with the correctness flag stripped.
type PresentedOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// MatchPrompt is the left side of a matching pair; the pair id is kept so the
// client can report which right-text was dropped on it.
type MatchPrompt struct {
	PairID string `json:"pair_id"`
	Left   string `json:"left"`
}

// MatchChoice is a draggable right-side text. IDs are synthetic; only the
// text is echoed back in submissions.
type MatchChoice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// PresentedQuestion is the client-facing shape of a question. It carries no
// ordering or flag that would reveal the correct answer.
type PresentedQuestion struct {
	ID       string              `json:"id"`
	Type     domain.QuestionType `json:"type"`
	Text     string              `json:"text"`
	ImageURL string              `json:"imageUrl,omitempty"`
	Points   int                 `json:"points"`
	Options  []PresentedOption   `json:"options,omitempty"`
	Prompts  []MatchPrompt       `json:"prompts,omitempty"`
	Choices  []MatchChoice       `json:"choices,omitempty"`
}

// PresentedQuiz is the fresh-quiz payload returned to a client about to play.
type PresentedQuiz struct {
	QuizID    string              `json:"quiz_id"`
	Title     string              `json:"title"`
	Questions []PresentedQuestion `json:"questions"`
}

// PresentQuiz permutes question order and builds presentation-safe questions.
// It does not mutate its input. Shuffling goes through rand.Shuffle
// (Fisher-Yates over the shared locked source), so every call is an
// independent uniform draw.
func PresentQuiz(quiz domain.Quiz, questions []domain.Question) PresentedQuiz {
	shuffled := make([]domain.Question, len(questions))
	copy(shuffled, questions)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	presented := make([]PresentedQuestion, 0, len(shuffled))
	for _, q := range shuffled {
		presented = append(presented, PresentQuestion(q))
	}
	return PresentedQuiz{QuizID: quiz.ID, Title: quiz.Title, Questions: presented}
}

// PresentQuestion strips answer data from a single question and shuffles its
// client-visible lists. For matching questions the left prompts and right
// choices get two independent permutations over the same pair set, so every
// prompt keeps exactly one valid choice somewhere in the shuffled list.
func PresentQuestion(q domain.Question) PresentedQuestion {
	base := q.Base()
	out := PresentedQuestion{
		ID:       base.ID,
		Type:     q.Kind(),
		Text:     base.Text,
		ImageURL: base.ImageURL,
		Points:   base.PointsOrDefault(),
	}

	switch qq := q.(type) {
	case domain.MultipleChoiceQuestion:
		options := make([]PresentedOption, 0, len(qq.Options))
		for _, opt := range qq.Options {
			options = append(options, PresentedOption{ID: opt.ID, Text: opt.Text})
		}
		rand.Shuffle(len(options), func(i, j int) {
			options[i], options[j] = options[j], options[i]
		})
		out.Options = options
	case domain.ShortAnswerQuestion:
		// Nothing beyond the prompt; answer keys never leave the server.
	case domain.MatchingQuestion:
		prompts := make([]MatchPrompt, 0, len(qq.Pairs))
		rights := make([]string, 0, len(qq.Pairs))
		for _, pair := range qq.Pairs {
			prompts = append(prompts, MatchPrompt{PairID: pair.ID, Left: pair.Left})
			rights = append(rights, pair.Right)
		}
		rand.Shuffle(len(prompts), func(i, j int) {
			prompts[i], prompts[j] = prompts[j], prompts[i]
		})
		rand.Shuffle(len(rights), func(i, j int) {
			rights[i], rights[j] = rights[j], rights[i]
		})
		choices := make([]MatchChoice, 0, len(rights))
		for i, text := range rights {
			choices = append(choices, MatchChoice{ID: fmt.Sprintf("c%d", i+1), Text: text})
		}
		out.Prompts = prompts
		out.Choices = choices
	}
	return out
}
