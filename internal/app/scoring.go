package app

import (
	"strings"

	"nusantara-quiz-service/internal/domain"
)

// PairResult reports one matching pair in a scored question, including the
// expected right text for review rendering.
type PairResult struct {
	PairID   string `json:"pair_id"`
	Left     string `json:"left"`
	Expected string `json:"expected"`
	Selected string `json:"selected,omitempty"`
	Correct  bool   `json:"correct"`
}

// QuestionResult is the per-question outcome of a scoring pass. It carries
// the user's submitted value and the authoritative correct value(s) so a
// client can render a review without another round trip.
type QuestionResult struct {
	QuestionID      string                  `json:"question_id"`
	Type            domain.QuestionType     `json:"type"`
	Text            string                  `json:"text"`
	Points          int                     `json:"points"`
	Earned          float64                 `json:"earned"`
	Correct         bool                    `json:"correct"`
	Answered        bool                    `json:"answered"`
	Submitted       *domain.SubmittedAnswer `json:"submitted,omitempty"`
	CorrectOptionID string                  `json:"correct_option_id,omitempty"`
	AcceptedAnswers []string                `json:"accepted_answers,omitempty"`
	Pairs           []PairResult            `json:"pairs,omitempty"`
}

// ScoreReport aggregates a scoring pass. EarnedPoints is unrounded; the
// rounded value lives on the persisted attempt.
type ScoreReport struct {
	TotalPoints  int              `json:"totalPoints"`
	EarnedPoints float64          `json:"earnedPoints"`
	Results      []QuestionResult `json:"results"`
	AttemptID    string           `json:"attempt_id,omitempty"`
	UserID       string           `json:"user_id,omitempty"`
}

// ScoreSubmission compares a submission against the authoritative question
// set. It iterates the authoritative questions, not the submission, so
// unanswered questions score zero and result order is stable regardless of
// how the client arranged its answers. It never trusts correctness data from
// the submission and never errors on malformed-but-structurally-valid input.
func ScoreSubmission(questions []domain.Question, sub domain.Submission) ScoreReport {
	report := ScoreReport{Results: make([]QuestionResult, 0, len(questions))}
	for _, q := range questions {
		result := scoreQuestion(q, sub)
		report.TotalPoints += result.Points
		report.EarnedPoints += result.Earned
		report.Results = append(report.Results, result)
	}
	return report
}

func scoreQuestion(q domain.Question, sub domain.Submission) QuestionResult {
	base := q.Base()
	result := QuestionResult{
		QuestionID: base.ID,
		Type:       q.Kind(),
		Text:       base.Text,
		Points:     base.PointsOrDefault(),
	}

	answer, answered := sub.AnswerFor(base.ID)
	if answered {
		result.Answered = true
		result.Submitted = &answer
	}

	switch qq := q.(type) {
	case domain.MultipleChoiceQuestion:
		correct, hasCorrect := qq.CorrectOption()
		if hasCorrect {
			result.CorrectOptionID = correct.ID
		}
		// A question with no option marked correct can never be answered
		// correctly; it still contributes its points to the total.
		if answered && hasCorrect && answer.OptionID == correct.ID {
			result.Correct = true
			result.Earned = float64(result.Points)
		}
	case domain.ShortAnswerQuestion:
		result.AcceptedAnswers = qq.AnswerKeys
		if answered && matchesAnyKey(answer.Text, qq.AnswerKeys) {
			result.Correct = true
			result.Earned = float64(result.Points)
		}
	case domain.MatchingQuestion:
		result.Pairs = scorePairs(qq.Pairs, answer.Matches)
		correctPairs := 0
		for _, p := range result.Pairs {
			if p.Correct {
				correctPairs++
			}
		}
		if len(qq.Pairs) > 0 {
			result.Earned = float64(correctPairs) / float64(len(qq.Pairs)) * float64(result.Points)
			result.Correct = correctPairs == len(qq.Pairs)
		}
	}
	return result
}

// matchesAnyKey applies the exact trimmed comparison: a submitted text is
// correct iff it equals one of the keys after trimming. Deliberately
// case-sensitive.
func matchesAnyKey(text string, keys []string) bool {
	trimmed := strings.TrimSpace(text)
	for _, key := range keys {
		if trimmed == strings.TrimSpace(key) {
			return true
		}
	}
	return false
}

// scorePairs evaluates each authoritative pair against the submitted
// selections. Selections referencing unknown pair ids are simply ignored.
func scorePairs(pairs []domain.MatchingPair, selections []domain.MatchSelection) []PairResult {
	selected := make(map[string]string, len(selections))
	for _, sel := range selections {
		selected[sel.PairID] = sel.Selected
	}
	results := make([]PairResult, 0, len(pairs))
	for _, pair := range pairs {
		sel := selected[pair.ID]
		results = append(results, PairResult{
			PairID:   pair.ID,
			Left:     pair.Left,
			Expected: pair.Right,
			Selected: sel,
			Correct:  sel != "" && sel == pair.Right,
		})
	}
	return results
}
