package nl2sql

import (
	"context"
	"errors"
)

var ErrEmptySQL = errors.New("model returned no SQL")

type Result struct {
	SQL      string `json:"sql"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// Translator turns a natural-language question into SQL text.
type Translator interface {
	Translate(ctx context.Context, question string) (Result, error)
}

// ChatClient sends a single prompt to a hosted language model and returns
// the reply text.
type ChatClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}
