// Package kv provides the durable key-value storage used for carts, settings
// and order history. Values are opaque strings; callers own the encoding.
package kv

import "context"

type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes key; removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}
