// Package delivery defines the contract shared by every inbound transport.
package delivery

import "context"

// Delivery is a long-running transport (HTTP API, push worker) started by main.
type Delivery interface {
	Serve(ctx context.Context) error
}
