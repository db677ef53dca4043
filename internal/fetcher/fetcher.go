package fetcher

import (
	"context"

	"github.com/wikiharvest/wikiharvest/internal/types"
)

// Fetcher is the interface for page retrieval implementations.
// The crawl driver depends on this interface so traversal logic can be
// tested with an injected fake.
type Fetcher interface {
	// Fetch retrieves the content at the given request's URL.
	Fetch(ctx context.Context, req *types.Request) (*types.Response, error)

	// Close releases any resources held by the fetcher.
	Close() error
}
