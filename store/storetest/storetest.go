// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xmidt-org/quantcastid/model"
	"github.com/xmidt-org/quantcastid/store"
)

var GenericTestKey = model.Key{
	Bucket: "device-1234",
	ID:     "__qca",
}

var GenericTestItem = model.Item{
	ID:     "__qca",
	Value:  "B0-1967-1583427600000",
	Domain: "example.com",
	Path:   "/",
}

// StoreTest runs the basic push, get, delete cycle every backend must honor.
func StoreTest(s store.S, t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	err := s.Push(ctx, GenericTestKey, GenericTestItem)
	assert.NoError(err)

	retVal, err := s.Get(ctx, GenericTestKey)
	assert.NoError(err)
	assert.Equal(GenericTestItem, retVal)

	retVal, err = s.Delete(ctx, GenericTestKey)
	assert.NoError(err)
	assert.Equal(GenericTestItem, retVal)

	retVal, err = s.Get(ctx, GenericTestKey)
	assert.Equal(model.Item{}, retVal)
	assert.True(errors.Is(err, store.ErrItemNotFound))
}
