// Package blob abstracts binary object storage for uploaded media.
package blob

import (
	"context"
	"io"
)

// Store persists binary objects under string keys and returns the public URL
// they are served from.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (url string, err error)
}
