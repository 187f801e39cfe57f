package sink

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSink_Write(t *testing.T) {
	var got Envelope
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/batches", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "1", r.Header.Get("X-Batch-Bucket"))
		assert.Equal(t, "5", r.Header.Get("X-Batch-Seq"))
		assert.NotEmpty(t, r.Header.Get("X-Batch-Id"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, JSONCodec{}.Unmarshal(body, &got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewHTTPSink(srv.Client(), JSONCodec{}, HTTPConfig{ServiceURL: srv.URL, AuthKey: "secret"}, nil)
	env := testEnvelope(t, 5)
	require.NoError(t, s.Write(context.Background(), env))
	assert.Equal(t, env, got)
}

func TestHTTPSink_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewHTTPSink(srv.Client(), JSONCodec{}, HTTPConfig{
		ServiceURL: srv.URL,
		MaxRetries: 5,
		RetryBase:  time.Millisecond,
		RetryMax:   5 * time.Millisecond,
	}, nil)
	require.NoError(t, s.Write(context.Background(), testEnvelope(t, 0)))
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPSink_ClientErrorIsFinal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad batch", http.StatusBadRequest)
	}))
	defer srv.Close()

	s := NewHTTPSink(srv.Client(), JSONCodec{}, HTTPConfig{ServiceURL: srv.URL, MaxRetries: 5, RetryBase: time.Millisecond}, nil)
	err := s.Write(context.Background(), testEnvelope(t, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPSink_GivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewHTTPSink(srv.Client(), JSONCodec{}, HTTPConfig{
		ServiceURL: srv.URL,
		MaxRetries: 2,
		RetryBase:  time.Millisecond,
		RetryMax:   time.Millisecond,
	}, nil)
	assert.Error(t, s.Write(context.Background(), testEnvelope(t, 0)))
	assert.Equal(t, int32(3), calls.Load())

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Write(context.Background(), testEnvelope(t, 0)), ErrClosed)
}
