package domain

import (
	"encoding/json"
	"fmt"
)

// questionEnvelope is the serialized form of a Question. The sum type cannot
// round-trip through encoding/json on its own, so caches and fixtures go
// through this envelope.
type questionEnvelope struct {
	QuestionBase
	Kind       QuestionType   `json:"kind"`
	Options    []Option       `json:"options,omitempty"`
	AnswerKeys []string       `json:"answerKeys,omitempty"`
	Pairs      []MatchingPair `json:"pairs,omitempty"`
}

// EncodeQuestions serializes a question list for cache storage.
func EncodeQuestions(questions []Question) ([]byte, error) {
	envelopes := make([]questionEnvelope, 0, len(questions))
	for _, q := range questions {
		env := questionEnvelope{QuestionBase: q.Base(), Kind: q.Kind()}
		switch qq := q.(type) {
		case MultipleChoiceQuestion:
			env.Options = qq.Options
		case ShortAnswerQuestion:
			env.AnswerKeys = qq.AnswerKeys
		case MatchingQuestion:
			env.Pairs = qq.Pairs
		default:
			return nil, fmt.Errorf("%w: %T", ErrUnknownQuestionType, q)
		}
		envelopes = append(envelopes, env)
	}
	return json.Marshal(envelopes)
}

// DecodeQuestions is the inverse of EncodeQuestions.
func DecodeQuestions(data []byte) ([]Question, error) {
	var envelopes []questionEnvelope
	if err := json.Unmarshal(data, &envelopes); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	questions := make([]Question, 0, len(envelopes))
	for _, env := range envelopes {
		switch env.Kind {
		case TypeMultipleChoice:
			questions = append(questions, MultipleChoiceQuestion{QuestionBase: env.QuestionBase, Options: env.Options})
		case TypeShortAnswer:
			questions = append(questions, ShortAnswerQuestion{QuestionBase: env.QuestionBase, AnswerKeys: env.AnswerKeys})
		case TypeMatching:
			questions = append(questions, MatchingQuestion{QuestionBase: env.QuestionBase, Pairs: env.Pairs})
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownQuestionType, env.Kind)
		}
	}
	return questions, nil
}
