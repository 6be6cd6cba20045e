// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/xmidt-org/quantcastid/model"
)

type MockDB struct {
	mock.Mock
}

func (s *MockDB) Push(_ context.Context, key model.Key, item model.Item) error {
	args := s.Called(key, item)
	return args.Error(0)
}

func (s *MockDB) Get(_ context.Context, key model.Key) (model.Item, error) {
	args := s.Called(key)
	return args.Get(0).(model.Item), args.Error(1)
}

func (s *MockDB) Delete(_ context.Context, key model.Key) (model.Item, error) {
	args := s.Called(key)
	return args.Get(0).(model.Item), args.Error(1)
}

func (s *MockDB) Close() {
	s.Called()
}

func (s *MockDB) Ping() error {
	args := s.Called()
	return args.Error(0)
}
