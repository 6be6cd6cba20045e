// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/quantcastid/store"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Generic Metrics
const (
	QuerySuccessCounter = "store_query_success_count"
	QueryFailureCounter = "store_query_failure_count"
)

// DynamoDB metrics
const (
	ReadCapacityConsumedCounter  = "read_capacity_unit_consumed"
	WriteCapacityConsumedCounter = "write_capacity_unit_consumed"
)

// ProvideMetrics returns the Metrics relevant to this package
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: QuerySuccessCounter,
				Help: "The total number of successful store queries",
			},
			store.TypeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: QueryFailureCounter,
				Help: "The total number of failed store queries",
			},
			store.TypeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: ReadCapacityConsumedCounter,
				Help: "The number of read capacity units consumed by the operation.",
			},
			store.TypeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: WriteCapacityConsumedCounter,
				Help: "The number of write capacity units consumed by the operation.",
			},
			store.TypeLabel,
		),
	)
}

type Measures struct {
	fx.In
	QuerySuccessCount *prometheus.CounterVec `name:"store_query_success_count"`
	QueryFailureCount *prometheus.CounterVec `name:"store_query_failure_count"`

	// DynamoDB Metrics
	ReadCapacityUnitConsumedCount  *prometheus.CounterVec `name:"read_capacity_unit_consumed"`
	WriteCapacityUnitConsumedCount *prometheus.CounterVec `name:"write_capacity_unit_consumed"`
}

// NewMeasures builds unregistered measures. It is meant for tests and for
// callers that use a store outside of an fx application.
func NewMeasures() Measures {
	counter := func(name string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: name}, []string{store.TypeLabel})
	}
	return Measures{
		QuerySuccessCount:              counter(QuerySuccessCounter),
		QueryFailureCount:              counter(QueryFailureCounter),
		ReadCapacityUnitConsumedCount:  counter(ReadCapacityConsumedCounter),
		WriteCapacityUnitConsumedCount: counter(WriteCapacityConsumedCounter),
	}
}
