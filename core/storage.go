package core

import (
	"context"
	"io"
)

// FileStorage is any service that can persist uploaded files in long-term
// object storage and hand back a publicly reachable URL.
type FileStorage interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader) (url string, err error)
}
