package storage

import (
	"github.com/wikiharvest/wikiharvest/internal/types"
)

// Emitter is the interface for record output sinks.
type Emitter interface {
	// Emit writes one article record to the output stream.
	Emit(record *types.ArticleRecord) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the sink identifier.
	Name() string
}
