// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/quantcastid/model"
	"github.com/xmidt-org/quantcastid/store"
	"github.com/xmidt-org/quantcastid/store/db/metric"
)

// instrumented counts query outcomes for any backend. A missing item is a
// successful read, not a failure.
type instrumented struct {
	store.S
	measures metric.Measures
}

// Instrument wraps s so that each query outcome is counted.
func Instrument(s store.S, measures metric.Measures) store.S {
	return &instrumented{S: s, measures: measures}
}

func (i *instrumented) Push(ctx context.Context, key model.Key, item model.Item) error {
	err := i.S.Push(ctx, key, item)
	i.observe(store.InsertType, err)
	return err
}

func (i *instrumented) Get(ctx context.Context, key model.Key) (model.Item, error) {
	item, err := i.S.Get(ctx, key)
	i.observe(store.ReadType, err)
	return item, err
}

func (i *instrumented) Delete(ctx context.Context, key model.Key) (model.Item, error) {
	item, err := i.S.Delete(ctx, key)
	i.observe(store.DeleteType, err)
	return item, err
}

func (i *instrumented) observe(queryType string, err error) {
	labels := prometheus.Labels{store.TypeLabel: queryType}
	if err != nil && !errors.Is(err, store.ErrItemNotFound) {
		i.measures.QueryFailureCount.With(labels).Inc()
		return
	}
	i.measures.QuerySuccessCount.With(labels).Inc()
}
