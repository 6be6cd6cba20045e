// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/mock"
	"github.com/xmidt-org/quantcastid/model"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) PutItem(_ context.Context, input *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(input)
	return args.Get(0).(*dynamodb.PutItemOutput), args.Error(1)
}

func (m *mockClient) GetItem(_ context.Context, input *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(input)
	return args.Get(0).(*dynamodb.GetItemOutput), args.Error(1)
}

func (m *mockClient) DeleteItem(_ context.Context, input *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := m.Called(input)
	return args.Get(0).(*dynamodb.DeleteItemOutput), args.Error(1)
}

type mockService struct {
	mock.Mock
}

func (m *mockService) Push(_ context.Context, key model.Key, item model.Item) (*types.ConsumedCapacity, error) {
	args := m.Called(key, item)
	return args.Get(0).(*types.ConsumedCapacity), args.Error(1)
}

func (m *mockService) Get(_ context.Context, key model.Key) (model.Item, *types.ConsumedCapacity, error) {
	args := m.Called(key)
	return args.Get(0).(model.Item), args.Get(1).(*types.ConsumedCapacity), args.Error(2)
}

func (m *mockService) Delete(_ context.Context, key model.Key) (model.Item, *types.ConsumedCapacity, error) {
	args := m.Called(key)
	return args.Get(0).(model.Item), args.Get(1).(*types.ConsumedCapacity), args.Error(2)
}
