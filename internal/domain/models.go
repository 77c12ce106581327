package domain

import "time"

// QuizCategory separates the daily rotation from province-scoped quizzes.
type QuizCategory string

const (
	CategoryDaily    QuizCategory = "daily"
	CategoryProvince QuizCategory = "province"
)

// Quiz is authored elsewhere; the engine only reads it.
type Quiz struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Category    QuizCategory `json:"category"`
	ProvinceID  string       `json:"provinceId,omitempty"`
	ScheduledOn *time.Time   `json:"scheduledOn,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// QuestionType discriminates the three supported question kinds.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeShortAnswer    QuestionType = "short_answer"
	TypeMatching       QuestionType = "matching"
)

// Question is a sealed sum over the three concrete question kinds, so scoring
// and shuffling can switch exhaustively instead of branching on a raw type
// string.
type Question interface {
	Base() QuestionBase
	Kind() QuestionType
}

// QuestionBase carries the fields shared by every question kind.
type QuestionBase struct {
	ID       string `json:"id"`
	QuizID   string `json:"quizId"`
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl,omitempty"`
	Points   int    `json:"points"` // defaults to 1 if zero or negative
}

// PointsOrDefault floors the point value at 1.
func (b QuestionBase) PointsOrDefault() int {
	if b.Points < 1 {
		return 1
	}
	return b.Points
}

// Option is a candidate answer for a multiple choice question.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// MatchingPair is the one true left/right correspondence within a matching
// question. Left and right sides are each used at most once per question.
type MatchingPair struct {
	ID    string `json:"id"`
	Left  string `json:"left"`
	Right string `json:"right"`
}

// MultipleChoiceQuestion expects exactly one option to be marked correct; a
// question with no correct option is kept but can never be scored correct.
type MultipleChoiceQuestion struct {
	QuestionBase
	Options []Option `json:"options"`
}

func (q MultipleChoiceQuestion) Base() QuestionBase { return q.QuestionBase }
func (q MultipleChoiceQuestion) Kind() QuestionType { return TypeMultipleChoice }

// CorrectOption returns the first option flagged correct.
func (q MultipleChoiceQuestion) CorrectOption() (Option, bool) {
	for _, opt := range q.Options {
		if opt.Correct {
			return opt, true
		}
	}
	return Option{}, false
}

// ShortAnswerQuestion accepts any of its keys as a correct answer. Comparison
// is exact after trimming, case-sensitive.
type ShortAnswerQuestion struct {
	QuestionBase
	AnswerKeys []string `json:"answerKeys"`
}

func (q ShortAnswerQuestion) Base() QuestionBase { return q.QuestionBase }
func (q ShortAnswerQuestion) Kind() QuestionType { return TypeShortAnswer }

// MatchingQuestion awards partial credit per correctly matched pair.
type MatchingQuestion struct {
	QuestionBase
	Pairs []MatchingPair `json:"pairs"`
}

func (q MatchingQuestion) Base() QuestionBase { return q.QuestionBase }
func (q MatchingQuestion) Kind() QuestionType { return TypeMatching }

// Attempt tracks a user's relationship to one quiz. FinishedAt is nil while
// the attempt is in progress; once set it is never overwritten.
type Attempt struct {
	ID         string            `json:"id"`
	UserID     string            `json:"userId"`
	QuizID     string            `json:"quizId"`
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt *time.Time        `json:"finishedAt,omitempty"`
	Score      int               `json:"score"`
	Answers    []SubmittedAnswer `json:"answers,omitempty"`
}

// Completed reports whether the attempt reached its terminal state.
func (a Attempt) Completed() bool { return a.FinishedAt != nil }

// MatchSelection is the client's claim that a right-side text was dropped on
// the given pair.
type MatchSelection struct {
	PairID   string `json:"pair_id"`
	Selected string `json:"selected"`
}

// SubmittedAnswer holds one answer in its type-specific shape. Exactly one of
// OptionID, Text, or Matches is meaningful, selected by Type.
type SubmittedAnswer struct {
	QuestionID string           `json:"question_id"`
	Type       QuestionType     `json:"type"`
	OptionID   string           `json:"option_id,omitempty"`
	Text       string           `json:"text,omitempty"`
	Matches    []MatchSelection `json:"matches,omitempty"`
}

// Submission is transient; it is never persisted as its own entity. An empty
// UserID marks an anonymous submission, which is scored but leaves no attempt.
type Submission struct {
	QuizID  string
	UserID  string
	Answers []SubmittedAnswer
}

// AnswerFor returns the submitted answer for a question, if any.
func (s Submission) AnswerFor(questionID string) (SubmittedAnswer, bool) {
	for _, a := range s.Answers {
		if a.QuestionID == questionID {
			return a, true
		}
	}
	return SubmittedAnswer{}, false
}
