// Package kvstore provides the durable key-value stores the cart is
// persisted into. Every implementation namespaces its keys with
// GenerateKey so several services can share one backend.
package kvstore

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("kvstore: key not found")

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	GenerateKey(operation, key string) string
	Close() error
}

func generateKey(namespace, operation, key string) string {
	return fmt.Sprintf("%s:%s:%s", namespace, operation, key)
}
