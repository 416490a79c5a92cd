package websockets

import (
	"context"
)

// Publisher defines the interface for broadcasting messages to subscribed
// clients. Implementations must never block on slow subscribers; settlement
// treats publishing as fire-and-forget.
type Publisher interface {
	Publish(ctx context.Context, message Message) error
}
