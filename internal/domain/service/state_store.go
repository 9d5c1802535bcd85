package service

import "time"

// StateStore is a TTL-backed key-value store for short-lived handshake
// values: OAuth state parameters and similar one-time codes. Reads consume
// the entry (delete-on-read) so every value is single-use. The store is
// injected rather than kept as module-global state so it can be backed by a
// durable store when the service runs as multiple instances.
type StateStore interface {
	// Put stores a value under key for at most ttl.
	Put(key, value string, ttl time.Duration)

	// Take returns the value for key and removes it. The second return is
	// false when the key is absent or expired.
	Take(key string) (string, bool)
}
