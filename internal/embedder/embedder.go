package embedder

import (
	"context"
	"errors"
	"fmt"

	"github.com/gocontext/retrieval/internal/tokencount"
)

// Common errors
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrProviderFailed    = errors.New("embedding provider failed")
	ErrUnsupportedModel  = errors.New("unsupported model")
	ErrEmptyText         = errors.New("text cannot be empty")
	ErrBatchTooLarge     = errors.New("batch size exceeds limit")
	ErrNoProviderEnabled = errors.New("no embedding provider configured")
)

// Embedding represents a vector embedding with metadata. Tokens is the
// tokencount estimate for the text that produced it, carried alongside the
// vector so callers can fold embedding cost into the same budget accounting
// the Retriever and Pipeline already use for context packing.
type Embedding struct {
	Vector    []float32
	Dimension int
	Provider  string
	Model     string
	Tokens    int
}

// EmbeddingRequest represents a request to generate embeddings
type EmbeddingRequest struct {
	Text  string
	Model string // Optional: override default model
}

// BatchEmbeddingRequest represents a batch request
type BatchEmbeddingRequest struct {
	Texts []string
	Model string // Optional: override default model
}

// BatchEmbeddingResponse represents a batch response
type BatchEmbeddingResponse struct {
	Embeddings  []*Embedding
	Provider    string
	Model       string
	TotalTokens int
}

// Embedder interface defines methods for generating embeddings
type Embedder interface {
	// GenerateEmbedding generates a single embedding for the given text
	GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error)

	// GenerateBatch generates embeddings for multiple texts efficiently
	GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error)

	// Dimension returns the embedding dimension for this provider
	Dimension() int

	// Provider returns the provider name
	Provider() string

	// Model returns the model name
	Model() string

	// Close releases any resources held by the embedder
	Close() error
}

// ValidateRequest validates an embedding request
func ValidateRequest(req EmbeddingRequest) error {
	if req.Text == "" {
		return ErrEmptyText
	}
	return nil
}

// ValidateBatchRequest validates a batch embedding request, rejecting it if
// any text is empty or if the combined tokencount estimate exceeds
// MaxBatchTokens.
func ValidateBatchRequest(req BatchEmbeddingRequest) error {
	if len(req.Texts) == 0 {
		return fmt.Errorf("%w: no texts provided", ErrInvalidInput)
	}

	for i, text := range req.Texts {
		if text == "" {
			return fmt.Errorf("%w: text at index %d is empty", ErrInvalidInput, i)
		}
	}

	if len(req.Texts) > MaxBatchSize {
		return fmt.Errorf("%w: %d texts exceeds the %d-item limit", ErrBatchTooLarge, len(req.Texts), MaxBatchSize)
	}

	if tokens := tokencount.CountAll(req.Texts...); tokens > MaxBatchTokens {
		return fmt.Errorf("%w: %d estimated tokens exceeds the %d-token limit", ErrBatchTooLarge, tokens, MaxBatchTokens)
	}

	return nil
}
