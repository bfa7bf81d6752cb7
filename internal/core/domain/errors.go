package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown source kind or normaliser type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured
	// or could not be reached. Questions cannot be answered without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrEmbeddingFailed indicates a single embedding request failed.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// Index Errors.

	// ErrDimensionMismatch indicates a vector does not match the index dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrModelMismatch indicates the index was built with a different embedding model.
	ErrModelMismatch = errors.New("embedding model mismatch")

	// ErrIndexInconsistency indicates the vector index and identifier map disagree.
	// Run `kassist index rebuild` to recover.
	ErrIndexInconsistency = errors.New("index inconsistency")

	// Generation Errors.

	// ErrGenerationFailed indicates the generative model returned an error or no candidates.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrGenerationTimeout indicates the generative model did not answer in time.
	ErrGenerationTimeout = errors.New("generation timed out")
)
