package tokenizer

import (
	"errors"
)

// ErrNilCounter is returned when counting without a Counter.
var ErrNilCounter = errors.New("nil tokenizer counter")

// CountResult captures the outcome of counting a document.
type CountResult struct {
	Tokens int
	Model  string
}

// CountDocument estimates the tokens of document with counter.
func CountDocument(counter Counter, document string) (CountResult, error) {
	if counter == nil {
		return CountResult{}, ErrNilCounter
	}
	tokens, countError := counter.CountString(document)
	if countError != nil {
		return CountResult{}, countError
	}
	return CountResult{Tokens: tokens, Model: counter.Name()}, nil
}
