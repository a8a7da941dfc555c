package domain

import "errors"

var (
	// ErrInvalidPrompt signals an empty or oversized user prompt.
	ErrInvalidPrompt = errors.New("invalid prompt")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrLLMProviderError signals a language model provider failure.
	ErrLLMProviderError = errors.New("llm provider error")
	// ErrProductNotFound signals a missing product document.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidProduct signals a product that cannot be stored.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrStoreUnavailable signals that the product store is refusing calls.
	ErrStoreUnavailable = errors.New("product store unavailable")
)
