// Package storage persists processed product images behind a pluggable
// Uploader so deployments can choose local disk or a hosted media service.
package storage

import "context"

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}
