// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package quantcast implements the quantcastId identity submodule.
package quantcast

import (
	"context"
	"time"

	"github.com/xmidt-org/quantcastid/beacon"
	"github.com/xmidt-org/quantcastid/consent"
	"github.com/xmidt-org/quantcastid/identifier"
	"github.com/xmidt-org/quantcastid/page"
	"github.com/xmidt-org/quantcastid/userid"
	"go.uber.org/zap"
)

// Name is the key the submodule registers and reports its id under.
const Name = "quantcastId"

// Option configures a Submodule.
type Option func(*Submodule)

func WithNow(now func() time.Time) Option {
	return func(s *Submodule) {
		if now != nil {
			s.now = now
		}
	}
}

func WithGenerator(g identifier.Generator) Option {
	return func(s *Submodule) {
		if g != nil {
			s.generator = g
		}
	}
}

func WithMeasures(m Measures) Option {
	return func(s *Submodule) {
		s.measures = m
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Submodule) {
		if l != nil {
			s.logger = l
		}
	}
}

// Submodule resolves the first party identifier of a document and reports
// it once the document has loaded.
type Submodule struct {
	config    Config
	gate      *consent.Gate
	sender    beacon.Sender
	now       func() time.Time
	generator identifier.Generator
	measures  Measures
	logger    *zap.Logger
}

// reportContext is captured by GetID and handed to the deferred report.
type reportContext struct {
	ctx    context.Context
	signal *consent.Signal
	config reportingConfig
}

var _ userid.Submodule = (*Submodule)(nil)

// New returns a Submodule that dispatches its pixels through sender.
func New(config Config, sender beacon.Sender, opts ...Option) (*Submodule, error) {
	config, err := config.validate()
	if err != nil {
		return nil, err
	}

	s := &Submodule{
		config:    config,
		sender:    sender,
		now:       time.Now,
		generator: identifier.NewGenerator(),
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}

	s.gate, err = consent.NewGate(config.ConsentRule, s.logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Submodule) Name() string {
	return Name
}

// Decode returns value unchanged; stored identifiers are already final.
func (s *Submodule) Decode(value string) string {
	return value
}

// GetID returns the identifier already stored for doc without creating one,
// and arms the document's report. Only the context of the last GetID before
// the document loads is used.
func (s *Submodule) GetID(ctx context.Context, doc *page.Document, config userid.Config, signal *consent.Signal) userid.Response {
	rc := reportContext{
		ctx:    ctx,
		signal: signal,
		config: newReportingConfig(config.Params, s.config.ExpiryDays),
	}

	var resp userid.Response
	if r, ok := s.identifiers(doc, rc.config).Resolve(ctx, false); ok {
		resp.ID = userid.IDs{Name: r.Value}
	}

	s.trigger(doc).Arm(rc)
	return resp
}

func (s *Submodule) identifiers(doc *page.Document, rc reportingConfig) *identifier.Store {
	return identifier.NewStore(doc.Storage(),
		identifier.WithRootDomain(doc.RootDomain()),
		identifier.WithExpiryDays(rc.ExpiryDays),
		identifier.WithSameSite(s.config.sameSite()),
		identifier.WithNow(s.now),
		identifier.WithGenerator(s.generator),
		identifier.WithLogger(doc.Logger()),
	)
}

// trigger returns the report trigger this submodule attached to doc.
func (s *Submodule) trigger(doc *page.Document) *page.Trigger[reportContext] {
	return doc.Slot(s, func() any {
		return page.NewTrigger(doc.Ready(), func(rc reportContext) {
			s.report(doc, rc)
		})
	}).(*page.Trigger[reportContext])
}

func (s *Submodule) report(doc *page.Document, rc reportContext) {
	logger := doc.Logger().With(zap.String("domain", doc.RootDomain()))

	if doc.MeasureTagPresent() {
		s.measures.report(SuppressedOutcome)
		logger.Debug("measurement tag present, skipping report")
		return
	}
	if !s.gate.Permits(rc.signal) {
		s.measures.report(DeniedOutcome)
		logger.Debug("consent denied, skipping report")
		return
	}

	r, ok := s.identifiers(doc, rc.config).Resolve(rc.ctx, true)
	if !ok {
		s.measures.report(FailedOutcome)
		logger.Error("failed to resolve identifier")
		return
	}
	if r.Created {
		s.measures.created(r.Persisted)
	}

	p := beacon.Params{
		New:          r.Created,
		Identifier:   r.Value,
		Domain:       doc.RootDomain(),
		Time:         s.now().In(doc.Location()),
		HashedUserID: rc.config.HashedUserID,
		PartnerCode:  s.config.PartnerCode,
	}
	if screen, ok := doc.Screen(); ok {
		p.Screen = screen.String()
	}

	u, err := p.URL(s.config.PixelURL)
	if err != nil {
		s.measures.report(FailedOutcome)
		logger.Error("failed to build pixel url", zap.Error(err))
		return
	}

	s.sender.Send(u)
	s.measures.report(SentOutcome)
	logger.Debug("sent report", zap.Bool("created", r.Created), zap.Bool("persisted", r.Persisted))
}
