// Package memory contains in-memory ingest implementations for tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/huntstack/drone-crawler/internal/ingest"
)

// PublishedMessage captures one publish call.
type PublishedMessage struct {
	Key     string
	Payload ingest.Payload
}

// Publisher stores published payloads for inspection. Err, when set, makes
// every publish fail without recording.
type Publisher struct {
	mu       sync.RWMutex
	messages []PublishedMessage
	Err      error
}

// NewPublisher returns a memory Publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Publish records the message and returns a pseudo ID.
func (p *Publisher) Publish(_ context.Context, key string, payload ingest.Payload) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return "", p.Err
	}
	p.messages = append(p.messages, PublishedMessage{Key: key, Payload: payload})
	return fmt.Sprintf("memory-%d", len(p.messages)), nil
}

// Messages returns the recorded publishes.
func (p *Publisher) Messages() []PublishedMessage {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]PublishedMessage, len(p.messages))
	copy(out, p.messages)
	return out
}

// Refinery records every direct hand-off.
type Refinery struct {
	mu     sync.RWMutex
	events []PublishedMessage
	Err    error
}

// NewRefinery returns a memory Refinery.
func NewRefinery() *Refinery {
	return &Refinery{}
}

// ProcessRawEvent records the key/value pair.
func (r *Refinery) ProcessRawEvent(_ context.Context, key string, value ingest.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, PublishedMessage{Key: key, Payload: value})
	return nil
}

// Events returns the recorded hand-offs.
func (r *Refinery) Events() []PublishedMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]PublishedMessage, len(r.events))
	copy(out, r.events)
	return out
}
