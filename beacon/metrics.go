// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package beacon

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	SendCounter = "pixel_send_total"
)

// Labels
const (
	OutcomeLabel = "outcome"
)

// Label Values
const (
	SuccessOutcome  = "success"
	FailureOutcome  = "failure"
	RejectedOutcome = "rejected"
	DroppedOutcome  = "dropped"
)

// ProvideMetrics returns the Metrics relevant to this package
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: SendCounter,
				Help: "Counter for the number of pixels sent and their outcomes.",
			},
			OutcomeLabel,
		),
	)
}

type Measures struct {
	fx.In
	Sends *prometheus.CounterVec `name:"pixel_send_total"`
}

// NewMeasures builds unregistered measures.
func NewMeasures() Measures {
	return Measures{
		Sends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: SendCounter,
			Help: "Counter for the number of pixels sent and their outcomes.",
		}, []string{OutcomeLabel}),
	}
}

func (m Measures) count(outcome string) {
	if m.Sends != nil {
		m.Sends.With(prometheus.Labels{OutcomeLabel: outcome}).Inc()
	}
}
