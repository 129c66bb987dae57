// Package tokenizer estimates how many model tokens a rendered document costs.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

// Config captures tokenizer selection parameters.
type Config struct {
	Model string
}

const (
	// DefaultModel is used when no model is configured.
	DefaultModel        = "gpt-4o"
	defaultEncodingName = "cl100k_base"

	errorFallbackEncodingFormat = "initialize fallback tokenizer %s: %w"
)

// NewCounter returns a tiktoken Counter for the configured model together with
// the name of the model or encoding it resolved to. Models tiktoken does not
// know fall back to the cl100k_base encoding.
func NewCounter(config Config) (Counter, string, error) {
	modelName := strings.ToLower(strings.TrimSpace(config.Model))
	if modelName == "" {
		modelName = DefaultModel
	}
	encoding, encodingError := tiktoken.EncodingForModel(modelName)
	if encodingError == nil && encoding != nil {
		return tiktokenCounter{encoding: encoding, name: modelName}, modelName, nil
	}
	fallbackEncoding, fallbackError := tiktoken.GetEncoding(defaultEncodingName)
	if fallbackError != nil {
		return nil, "", fmt.Errorf(errorFallbackEncodingFormat, defaultEncodingName, fallbackError)
	}
	return tiktokenCounter{encoding: fallbackEncoding, name: defaultEncodingName}, defaultEncodingName, nil
}
