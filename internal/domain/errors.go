package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz id does not resolve in the catalog.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptNotFound indicates an attempt id does not resolve in the store.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrInvalidSubmission is returned when a submission is structurally
	// incomplete (missing quiz id or answers list).
	ErrInvalidSubmission = errors.New("invalid submission")
	// ErrUnknownQuestionType is returned when decoding a question whose type
	// discriminator is not one of the supported kinds.
	ErrUnknownQuestionType = errors.New("unknown question type")
)
