package client

import (
	"context"
	"sync"

	"github.com/meikuraledutech/pipeline"
)

// Submitter serializes submissions from one editing session: starting a new
// submission cancels the one in flight, whose caller gets ErrSuperseded.
// A response therefore never lands after a newer submission has started.
type Submitter struct {
	client *Client

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

func NewSubmitter(c *Client) *Submitter {
	return &Submitter{client: c}
}

// Submit behaves like Client.Submit but supersedes any earlier call still
// in flight.
func (s *Submitter) Submit(ctx context.Context, p pipeline.Payload) (*pipeline.Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	s.cancel = cancel
	s.mu.Unlock()

	out, err := s.client.Submit(ctx, p)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return nil, ErrSuperseded
	}
	s.cancel = nil
	return out, err
}
