// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package page models a single document lifecycle: the storage it can reach,
// the domain it belongs to, and the moment it finishes loading.
package page

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xmidt-org/quantcastid/storage"
	"go.uber.org/zap"
)

// Option configures a Document.
type Option func(*Document)

func WithID(id string) Option {
	return func(d *Document) {
		if len(id) > 0 {
			d.id = id
		}
	}
}

// WithHost sets the host the document was served from.
func WithHost(host string) Option {
	return func(d *Document) {
		d.host = host
	}
}

func WithRootDomainResolver(r RootDomainResolver) Option {
	return func(d *Document) {
		if r != nil {
			d.resolver = r
		}
	}
}

// WithMeasureTag sets the check that reports whether the host page already
// runs its own measurement tag.
func WithMeasureTag(check func() bool) Option {
	return func(d *Document) {
		if check != nil {
			d.measureTag = check
		}
	}
}

// WithLocation sets the time zone of the client.
func WithLocation(l *time.Location) Option {
	return func(d *Document) {
		if l != nil {
			d.location = l
		}
	}
}

func WithScreen(s Screen) Option {
	return func(d *Document) {
		d.screen = &s
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.logger = l
		}
	}
}

// Document is one page load.
type Document struct {
	id         string
	storage    storage.Storage
	host       string
	resolver   RootDomainResolver
	measureTag func() bool
	location   *time.Location
	screen     *Screen
	ready      *Ready
	logger     *zap.Logger

	domainOnce sync.Once
	rootDomain string

	lock  sync.Mutex
	slots map[any]any
}

// NewDocument returns a document that is not loaded yet. A nil st behaves
// as storage.Unavailable.
func NewDocument(st storage.Storage, opts ...Option) *Document {
	if st == nil {
		st = storage.Unavailable
	}
	d := &Document{
		id:         uuid.NewString(),
		storage:    st,
		resolver:   RootDomain,
		measureTag: func() bool { return false },
		location:   time.UTC,
		ready:      NewReady(),
		logger:     zap.NewNop(),
		slots:      map[any]any{},
	}
	for _, o := range opts {
		o(d)
	}
	d.logger = d.logger.With(zap.String("document", d.id))
	return d
}

func (d *Document) ID() string {
	return d.id
}

func (d *Document) Storage() storage.Storage {
	return d.storage
}

func (d *Document) Host() string {
	return d.host
}

// RootDomain returns the domain first party cookies are written under. It is
// resolved on first use.
func (d *Document) RootDomain() string {
	d.domainOnce.Do(func() {
		d.rootDomain = d.resolver(d.host)
	})
	return d.rootDomain
}

// MeasureTagPresent reports whether the host page runs its own measurement
// tag.
func (d *Document) MeasureTagPresent() bool {
	return d.measureTag()
}

func (d *Document) Location() *time.Location {
	return d.location
}

// Screen returns the client display, if one was reported.
func (d *Document) Screen() (Screen, bool) {
	if d.screen == nil {
		return Screen{}, false
	}
	return *d.screen, true
}

func (d *Document) Logger() *zap.Logger {
	return d.logger
}

func (d *Document) Ready() *Ready {
	return d.ready
}

// Load marks the document as loaded.
func (d *Document) Load() {
	d.ready.Fire()
}

func (d *Document) Loaded() bool {
	return d.ready.Fired()
}

// Slot returns the value attached to the document under key, calling create
// to attach one if none exists.
func (d *Document) Slot(key any, create func() any) any {
	d.lock.Lock()
	defer d.lock.Unlock()
	if v, ok := d.slots[key]; ok {
		return v
	}
	v := create()
	d.slots[key] = v
	return v
}
