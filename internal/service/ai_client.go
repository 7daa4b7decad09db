package service

import (
	"context"
	"errors"
)

// Advisor errors. None of them reach callers of Advisor.Recommend: each one
// turns into a fallback pick.
var (
	ErrAIDisabled            = errors.New("generative API is not enabled (missing API key)")
	ErrUnparseableCompletion = errors.New("completion is not a valid meal pick")
	ErrDishNotOnMenu         = errors.New("completion names a dish that is not on the menu")
)

// AIClient is the interface for generative text providers
type AIClient interface {
	// Complete returns the model's reply to a system and a user message
	Complete(ctx context.Context, system, user string) (string, error)

	// IsEnabled returns whether the AI client is configured and ready
	IsEnabled() bool
}
