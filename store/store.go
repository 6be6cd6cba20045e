// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"

	"github.com/xmidt-org/quantcastid/model"
)

const (
	// TypeLabel is for labeling metrics; if there is a single metric for
	// successful queries, the typeLabel and corresponding type can be used
	// when incrementing the metric.
	TypeLabel  = "type"
	InsertType = "insert"
	DeleteType = "delete"
	ReadType   = "read"
	PingType   = "ping"
)

// S is the item DAO every storage backend implements.
type S interface {
	Push(ctx context.Context, key model.Key, item model.Item) error
	Get(ctx context.Context, key model.Key) (model.Item, error)
	Delete(ctx context.Context, key model.Key) (model.Item, error)
}
