// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/xmidt-org/quantcastid/model"
	"github.com/xmidt-org/quantcastid/store"
	"github.com/xmidt-org/quantcastid/store/db/metric"
	"github.com/xmidt-org/quantcastid/store/test"
)

func TestInstrument(t *testing.T) {
	key := model.Key{Bucket: "device", ID: "__qca"}
	item := model.Item{ID: "__qca", Value: "B0-1-2"}

	tcs := []struct {
		Description     string
		Setup           func(m *test.MockDB)
		Call            func(s store.S) error
		Type            string
		ExpectedSuccess float64
		ExpectedFailure float64
	}{
		{
			Description: "Push success",
			Setup: func(m *test.MockDB) {
				m.On("Push", key, item).Return(nil)
			},
			Call: func(s store.S) error {
				return s.Push(context.Background(), key, item)
			},
			Type:            store.InsertType,
			ExpectedSuccess: 1,
		},
		{
			Description: "Push failure",
			Setup: func(m *test.MockDB) {
				m.On("Push", key, item).Return(errors.New("db down"))
			},
			Call: func(s store.S) error {
				return s.Push(context.Background(), key, item)
			},
			Type:            store.InsertType,
			ExpectedFailure: 1,
		},
		{
			Description: "Get not found is not a failure",
			Setup: func(m *test.MockDB) {
				m.On("Get", key).Return(model.Item{}, store.KeyNotFoundError{Key: key})
			},
			Call: func(s store.S) error {
				_, err := s.Get(context.Background(), key)
				return err
			},
			Type:            store.ReadType,
			ExpectedSuccess: 1,
		},
		{
			Description: "Delete failure",
			Setup: func(m *test.MockDB) {
				m.On("Delete", key).Return(model.Item{}, errors.New("timeout"))
			},
			Call: func(s store.S) error {
				_, err := s.Delete(context.Background(), key)
				return err
			},
			Type:            store.DeleteType,
			ExpectedFailure: 1,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert := assert.New(t)
			m := new(test.MockDB)
			tc.Setup(m)
			measures := metric.NewMeasures()
			s := Instrument(m, measures)

			_ = tc.Call(s)

			assert.Equal(tc.ExpectedSuccess, testutil.ToFloat64(measures.QuerySuccessCount.WithLabelValues(tc.Type)))
			assert.Equal(tc.ExpectedFailure, testutil.ToFloat64(measures.QueryFailureCount.WithLabelValues(tc.Type)))
			m.AssertExpectations(t)
		})
	}
}
