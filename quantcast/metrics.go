// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package quantcast

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	ReportCounter            = "reports_total"
	IdentifierCreatedCounter = "identifiers_created_total"
)

// Labels
const (
	OutcomeLabel   = "outcome"
	PersistedLabel = "persisted"
)

// Label Values
const (
	SentOutcome       = "sent"
	SuppressedOutcome = "suppressed"
	DeniedOutcome     = "denied"
	FailedOutcome     = "failed"
)

// ProvideMetrics returns the Metrics relevant to this package
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: ReportCounter,
				Help: "Counter for the number of document reports and their outcomes.",
			},
			OutcomeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: IdentifierCreatedCounter,
				Help: "Counter for the number of identifiers created, by whether they could be stored.",
			},
			PersistedLabel,
		),
	)
}

type Measures struct {
	fx.In
	Reports            *prometheus.CounterVec `name:"reports_total"`
	IdentifiersCreated *prometheus.CounterVec `name:"identifiers_created_total"`
}

// NewMeasures builds unregistered measures.
func NewMeasures() Measures {
	return Measures{
		Reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: ReportCounter,
			Help: ReportCounter,
		}, []string{OutcomeLabel}),
		IdentifiersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: IdentifierCreatedCounter,
			Help: IdentifierCreatedCounter,
		}, []string{PersistedLabel}),
	}
}

func (m Measures) report(outcome string) {
	if m.Reports != nil {
		m.Reports.With(prometheus.Labels{OutcomeLabel: outcome}).Inc()
	}
}

func (m Measures) created(persisted bool) {
	if m.IdentifiersCreated != nil {
		m.IdentifiersCreated.With(prometheus.Labels{PersistedLabel: strconv.FormatBool(persisted)}).Inc()
	}
}
