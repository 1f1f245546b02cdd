package generation

import (
	"context"
	"sync"
)

// MockGenerator replays scripted replies in order, for tests. Once the script
// is exhausted the last entry repeats.
type MockGenerator struct {
	mu       sync.Mutex
	replies  []MockReply
	requests []*Request
}

// MockReply is one scripted reply. When Err is set it is returned instead of Text.
type MockReply struct {
	Text  string
	Model string
	Err   error
	// Block, when set, waits for ctx to be done and returns its error.
	Block bool
}

// NewMockGenerator returns a generator that replays replies.
func NewMockGenerator(replies ...MockReply) *MockGenerator {
	return &MockGenerator{replies: replies}
}

// Generate records req and returns the next scripted reply.
func (m *MockGenerator) Generate(ctx context.Context, req *Request) (*Response, error) {
	m.mu.Lock()
	i := len(m.requests)
	m.requests = append(m.requests, req)
	var reply MockReply
	if len(m.replies) > 0 {
		if i >= len(m.replies) {
			i = len(m.replies) - 1
		}
		reply = m.replies[i]
	}
	m.mu.Unlock()

	if reply.Block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if reply.Err != nil {
		return nil, reply.Err
	}
	model := reply.Model
	if model == "" {
		model = "mock-model"
	}
	return &Response{Text: reply.Text, Model: model}, nil
}

// Requests returns the requests received so far.
func (m *MockGenerator) Requests() []*Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Request, len(m.requests))
	copy(out, m.requests)
	return out
}
