// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package identifier

import (
	"context"
	"net/http"
	"time"

	"github.com/xmidt-org/quantcastid/storage"
	"go.uber.org/zap"
)

// Result is the outcome of a Resolve.
type Result struct {
	Value string

	// Created is set when Value was generated by this call.
	Created bool

	// Persisted is false when a generated Value could not be written and
	// only lives for the current document.
	Persisted bool
}

// Option configures a Store.
type Option func(*Store)

// WithRootDomain sets the cookie domain identifiers are written under.
func WithRootDomain(domain string) Option {
	return func(s *Store) {
		s.rootDomain = domain
	}
}

// WithExpiry sets the lifetime of newly written identifiers. Non-positive
// values leave the default in place.
func WithExpiry(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithExpiryDays is WithExpiry expressed in days, capped at MaxExpiryDays.
func WithExpiryDays(days int) Option {
	days = min(days, MaxExpiryDays)
	return WithExpiry(time.Duration(days) * 24 * time.Hour)
}

func WithNow(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithGenerator(g Generator) Option {
	return func(s *Store) {
		if g != nil {
			s.generator = g
		}
	}
}

func WithSameSite(mode http.SameSite) Option {
	return func(s *Store) {
		s.sameSite = mode
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Store reads and creates the identifier of a single document.
type Store struct {
	storage    storage.Storage
	rootDomain string
	expiry     time.Duration
	sameSite   http.SameSite
	now        func() time.Time
	generator  Generator
	logger     *zap.Logger
}

// NewStore returns a Store over st. A nil st behaves as storage.Unavailable.
func NewStore(st storage.Storage, opts ...Option) *Store {
	if st == nil {
		st = storage.Unavailable
	}
	s := &Store{
		storage:   st,
		expiry:    DefaultExpiry,
		sameSite:  http.SameSiteLaxMode,
		now:       time.Now,
		generator: NewGenerator(),
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Resolve returns the stored identifier. With forceCreate unset it never
// writes and reports false when no identifier exists. With forceCreate set a
// missing identifier is generated and written; the value is returned even
// when the write fails.
func (s *Store) Resolve(ctx context.Context, forceCreate bool) (Result, bool) {
	if v, ok := s.storage.GetCookie(ctx, CookieName); ok {
		return Result{Value: v, Persisted: true}, true
	}
	if !forceCreate {
		return Result{}, false
	}

	now := s.now()
	r := Result{
		Value:   s.generator.Generate(now),
		Created: true,
	}

	err := s.storage.SetCookie(ctx, storage.Cookie{
		Name:     CookieName,
		Value:    r.Value,
		Expires:  now.Add(s.expiry),
		Path:     "/",
		Domain:   s.rootDomain,
		SameSite: s.sameSite,
	})
	if err != nil {
		s.logger.Warn("failed to persist identifier, using it for this document only",
			zap.String("domain", s.rootDomain), zap.Error(err))
		return r, true
	}

	r.Persisted = true
	s.logger.Debug("created identifier", zap.String("domain", s.rootDomain))
	return r, true
}
