package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/pipeline"
	"github.com/meikuraledutech/pipeline/session"
)

type stubSubmitter struct {
	got []pipeline.Payload
	out *pipeline.Outcome
	err error
}

func (s *stubSubmitter) Submit(_ context.Context, p pipeline.Payload) (*pipeline.Outcome, error) {
	s.got = append(s.got, p)
	return s.out, s.err
}

func TestSubmit_EmptyGraphIsGated(t *testing.T) {
	stub := &stubSubmitter{}
	sess := session.New(nil, stub)

	assert.False(t, sess.CanSubmit())
	_, err := sess.Submit(context.Background())
	assert.ErrorIs(t, err, session.ErrEmptyPipeline)
	assert.Empty(t, stub.got)
}

func TestSubmit_SendsSnapshot(t *testing.T) {
	stub := &stubSubmitter{out: &pipeline.Outcome{IsDAG: true, NodeCount: 1}}
	sess := session.New(pipeline.NewStore(), stub)
	_, err := sess.Store.AddNode(pipeline.TypeLLM, pipeline.Position{})
	require.NoError(t, err)

	out, err := sess.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, out.IsDAG)
	require.Len(t, stub.got, 1)
	assert.Equal(t, "llm-1", stub.got[0].Nodes[0].ID)
}

func TestSubmit_ErrorLeavesGraphUntouched(t *testing.T) {
	stub := &stubSubmitter{err: errors.New("unreachable")}
	sess := session.New(nil, stub)
	in, err := sess.Store.AddNode(pipeline.TypeInput, pipeline.Position{})
	require.NoError(t, err)
	out, err := sess.Store.AddNode(pipeline.TypeOutput, pipeline.Position{})
	require.NoError(t, err)
	_, err = sess.Store.Connect(in, in+"-value", out, out+"-value")
	require.NoError(t, err)
	before := sess.Store.Snapshot()

	_, err = sess.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, before, sess.Store.Snapshot())
}
