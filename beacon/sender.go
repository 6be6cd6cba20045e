// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package beacon

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultTimeout = 5 * time.Second

var ErrSenderClosed = errors.New("pixel sender closed")

// Sender dispatches a pixel. Sends are fire and forget: nothing about the
// outcome is returned and nothing is retried.
type Sender interface {
	Send(url string)
}

// SenderFunc adapts a function to a Sender.
type SenderFunc func(string)

func (f SenderFunc) Send(url string) {
	f(url)
}

// SenderConfig configures an HTTPSender.
type SenderConfig struct {
	// Timeout bounds a single pixel request. Defaults to DefaultTimeout.
	Timeout time.Duration `validate:"gte=0"`

	// UserAgent is sent with each request when set.
	UserAgent string
}

// HTTPSender issues each pixel as a background GET request.
type HTTPSender struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	measures  Measures
	logger    *zap.Logger

	lock   sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewHTTPSender returns an HTTPSender. A nil client uses a fresh http.Client.
func NewHTTPSender(config SenderConfig, client *http.Client, measures Measures, logger *zap.Logger) *HTTPSender {
	if client == nil {
		client = new(http.Client)
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPSender{
		client:    client,
		timeout:   config.Timeout,
		userAgent: config.UserAgent,
		measures:  measures,
		logger:    logger,
	}
}

func (s *HTTPSender) Send(url string) {
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		s.measures.count(DroppedOutcome)
		s.logger.Debug("dropping pixel", zap.Error(ErrSenderClosed))
		return
	}
	s.wg.Add(1)
	s.lock.Unlock()

	go func() {
		defer s.wg.Done()
		s.send(url)
	}()
}

func (s *HTTPSender) send(url string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		s.measures.count(FailureOutcome)
		s.logger.Error("failed to create pixel request", zap.Error(err))
		return
	}
	if len(s.userAgent) > 0 {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.measures.count(FailureOutcome)
		s.logger.Debug("failed to send pixel", zap.Error(err))
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		s.measures.count(RejectedOutcome)
		s.logger.Debug("pixel rejected", zap.Int("status", resp.StatusCode))
		return
	}
	s.measures.count(SuccessOutcome)
}

// Close stops accepting pixels and waits for in flight requests until ctx
// is done.
func (s *HTTPSender) Close(ctx context.Context) error {
	s.lock.Lock()
	s.closed = true
	s.lock.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
