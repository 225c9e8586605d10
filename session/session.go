// Package session ties one editing session's graph to its validation
// submissions.
package session

import (
	"context"
	"errors"

	"github.com/meikuraledutech/pipeline"
)

// ErrEmptyPipeline is returned by Submit while the graph has no nodes.
var ErrEmptyPipeline = errors.New("session: add nodes to submit")

// Submitter sends a payload to the validation service.
// *client.Submitter and *client.Client both satisfy it.
type Submitter interface {
	Submit(ctx context.Context, p pipeline.Payload) (*pipeline.Outcome, error)
}

// Session owns a Store for the lifetime of one editor.
type Session struct {
	Store     *pipeline.Store
	submitter Submitter
}

// New starts a session over store; a nil store starts an empty graph.
func New(store *pipeline.Store, sub Submitter) *Session {
	if store == nil {
		store = pipeline.NewStore()
	}
	return &Session{Store: store, submitter: sub}
}

// CanSubmit reports whether submission is enabled.
func (s *Session) CanSubmit() bool {
	nodes, _ := s.Store.Len()
	return nodes > 0
}

// Submit snapshots the graph and sends it for validation. The graph is
// never modified, whatever the outcome.
func (s *Session) Submit(ctx context.Context) (*pipeline.Outcome, error) {
	if !s.CanSubmit() {
		return nil, ErrEmptyPipeline
	}
	return s.submitter.Submit(ctx, pipeline.Serialize(s.Store.Snapshot()))
}
