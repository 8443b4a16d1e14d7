package domain

import "errors"

var (
	// ErrResultNotFound signals a missing scan result.
	ErrResultNotFound = errors.New("scan result not found")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingUnavailable signals that the embedding model could not be
	// initialized; the semantic layer is disabled while this persists.
	ErrEmbeddingUnavailable = errors.New("embedding model unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrUnsupportedFileType signals an upload with a disallowed extension.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrFileTooLarge signals an upload above the configured size limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrEmptyFile signals an upload with no content.
	ErrEmptyFile = errors.New("empty file")
	// ErrUnauthorized signals a missing or wrong admin key.
	ErrUnauthorized = errors.New("unauthorized")
)
