// Package delivery defines the contract every server-like component
// (HTTP API, scheduled worker) fulfills so main can start them uniformly.
package delivery

import "context"

// Delivery is a long-running serving component.
type Delivery interface {
	// Serve blocks until the component stops or fails.
	Serve(ctx context.Context) error
}
