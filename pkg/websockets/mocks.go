package websockets

import (
	"context"
	"sync"
)

// NoOpPublisher is a mock publisher that does nothing.
type NoOpPublisher struct{}

// Publish does nothing.
func (p *NoOpPublisher) Publish(ctx context.Context, message Message) error {
	return nil
}

// SpyPublisher is a mock publisher that records every published message.
type SpyPublisher struct {
	mu       sync.Mutex
	messages []Message
}

// Publish records the message.
func (p *SpyPublisher) Publish(_ context.Context, message Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, message)
	return nil
}

// Messages returns a copy of everything published so far.
func (p *SpyPublisher) Messages() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Message, len(p.messages))
	copy(out, p.messages)
	return out
}
