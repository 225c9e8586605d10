package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/pipeline"
	"github.com/meikuraledutech/pipeline/client"
)

// threeNodeGraph builds input -> text -> output.
func threeNodeGraph(t *testing.T) *pipeline.Store {
	t.Helper()
	s := pipeline.NewStore()
	in, err := s.AddNode(pipeline.TypeInput, pipeline.Position{})
	require.NoError(t, err)
	txt, err := s.AddNode(pipeline.TypeText, pipeline.Position{X: 200})
	require.NoError(t, err)
	out, err := s.AddNode(pipeline.TypeOutput, pipeline.Position{X: 400})
	require.NoError(t, err)
	_, err = s.Connect(in, in+"-value", txt, txt+"-input")
	require.NoError(t, err)
	_, err = s.Connect(txt, txt+"-output", out, out+"-value")
	require.NoError(t, err)
	return s
}

func respond(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pipelines/parse", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var p map[string]json.RawMessage
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Contains(t, p, "nodes")
		assert.Contains(t, p, "edges")

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSubmit_ValidDAG(t *testing.T) {
	srv := respond(t, http.StatusOK, `{"is_dag": true, "num_nodes": 3, "num_edges": 2}`)
	s := threeNodeGraph(t)

	out, err := client.New(srv.URL).Submit(context.Background(), pipeline.Serialize(s.Snapshot()))
	require.NoError(t, err)

	assert.Equal(t, &pipeline.Outcome{IsDAG: true, NodeCount: 3, EdgeCount: 2}, out)
	assert.Equal(t, pipeline.VerdictValid, out.Verdict())
}

func TestSubmit_Cyclic(t *testing.T) {
	srv := respond(t, http.StatusOK, `{"is_dag": false, "num_nodes": 3, "num_edges": 3}`)

	out, err := client.New(srv.URL + "/").Submit(context.Background(), pipeline.Serialize(threeNodeGraph(t).Snapshot()))
	require.NoError(t, err)
	assert.Equal(t, pipeline.VerdictCyclic, out.Verdict())
}

func TestSubmit_StatusError(t *testing.T) {
	srv := respond(t, http.StatusInternalServerError, `{"error":"boom"}`)

	_, err := client.New(srv.URL).Submit(context.Background(), pipeline.Payload{})
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrSubmission)

	var se *client.SubmissionError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, client.KindStatus, se.Kind)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Contains(t, se.Error(), "500")
}

func TestSubmit_DecodeError(t *testing.T) {
	srv := respond(t, http.StatusOK, `not json`)

	_, err := client.New(srv.URL).Submit(context.Background(), pipeline.Payload{})
	var se *client.SubmissionError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, client.KindDecode, se.Kind)
}

func TestSubmit_UnreachableLeavesStoreUntouched(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	s := threeNodeGraph(t)
	_, err := client.New(url).Submit(context.Background(), pipeline.Serialize(s.Snapshot()))

	var se *client.SubmissionError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, client.KindNetwork, se.Kind)
	assert.Zero(t, se.StatusCode)

	nodes, edges := s.Len()
	assert.Equal(t, 3, nodes)
	assert.Equal(t, 2, edges)
}

func TestSubmitter_SupersedesInFlight(t *testing.T) {
	var (
		calls   atomic.Int32
		started = make(chan struct{})
		release = make(chan struct{})
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			close(started)
			select {
			case <-r.Context().Done():
			case <-release:
			}
			_, _ = w.Write([]byte(`{"is_dag": false, "num_nodes": 1, "num_edges": 0}`))
			return
		}
		_, _ = w.Write([]byte(`{"is_dag": true, "num_nodes": 2, "num_edges": 0}`))
	}))
	defer srv.Close()
	defer close(release)

	sub := client.NewSubmitter(client.New(srv.URL))

	stale := make(chan error, 1)
	go func() {
		_, err := sub.Submit(context.Background(), pipeline.Payload{})
		stale <- err
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("first submission never reached the server")
	}

	out, err := sub.Submit(context.Background(), pipeline.Payload{})
	require.NoError(t, err)
	assert.True(t, out.IsDAG)
	assert.Equal(t, 2, out.NodeCount)

	select {
	case err := <-stale:
		assert.True(t, errors.Is(err, client.ErrSuperseded), "got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("superseded submission did not return")
	}
}

func TestSubmitter_PassesThroughErrors(t *testing.T) {
	srv := respond(t, http.StatusBadGateway, "")

	_, err := client.NewSubmitter(client.New(srv.URL)).Submit(context.Background(), pipeline.Payload{})
	var se *client.SubmissionError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
}
