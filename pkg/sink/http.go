package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/bft-labs/seqbatch/pkg/lifecycle"
	"github.com/bft-labs/seqbatch/pkg/log"
)

const batchesEndpoint = "/v1/batches"

// HTTPClient abstracts HTTP request execution for testing and custom transports.
// The standard *http.Client satisfies this interface.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPConfig configures HTTPSink.
type HTTPConfig struct {
	// ServiceURL is the base URL; envelopes go to ServiceURL + "/v1/batches".
	ServiceURL string
	AuthKey    string

	// MaxRetries bounds retries of transport errors and 5xx responses.
	MaxRetries int
	RetryBase  time.Duration
	RetryMax   time.Duration
}

// statusError is a non-2xx response.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.code, e.body)
}

// HTTPSink POSTs every envelope to an ingestion service.
type HTTPSink struct {
	client HTTPClient
	codec  Codec
	cfg    HTTPConfig
	logger log.Logger
	closed atomic.Bool
}

// NewHTTPSink creates an HTTP sink. A nil logger discards.
func NewHTTPSink(client HTTPClient, codec Codec, cfg HTTPConfig, logger log.Logger) *HTTPSink {
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = 10 * time.Second
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &HTTPSink{client: client, codec: codec, cfg: cfg, logger: logger}
}

// Write sends env, retrying transient failures.
func (s *HTTPSink) Write(ctx context.Context, env Envelope) error {
	if s.closed.Load() {
		return ErrClosed
	}

	body, err := s.codec.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope %d: %w", env.Seq, err)
	}

	bo := lifecycle.NewBackoff(s.cfg.RetryBase, s.cfg.RetryMax)
	for attempt := 0; ; attempt++ {
		err := s.send(ctx, env, body)
		if err == nil {
			return nil
		}
		if !retryable(err) || attempt >= s.cfg.MaxRetries || ctx.Err() != nil {
			return fmt.Errorf("send envelope %d: %w", env.Seq, err)
		}
		s.logger.Warn("send failed, retrying",
			log.Int("seq", int(env.Seq)),
			log.Int("attempt", attempt+1),
			log.Err(err))
		if werr := bo.Wait(ctx); werr != nil {
			return fmt.Errorf("send envelope %d: %w", env.Seq, err)
		}
	}
}

func (s *HTTPSink) send(ctx context.Context, env Envelope, body []byte) error {
	url := s.cfg.ServiceURL + batchesEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", s.codec.ContentType())
	req.Header.Set("X-Batch-Id", env.ID)
	req.Header.Set("X-Batch-Seq", strconv.FormatUint(env.Seq, 10))
	req.Header.Set("X-Batch-Bucket", strconv.Itoa(env.Bucket))
	if s.cfg.AuthKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.AuthKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &statusError{code: resp.StatusCode, body: string(respBody)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// retryable reports transport errors and 5xx/429 responses.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Close marks the sink closed. The HTTP client is not owned.
func (s *HTTPSink) Close() error {
	s.closed.Store(true)
	return nil
}
