// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/xmidt-org/quantcastid/model"
	"github.com/xmidt-org/quantcastid/store"
	"go.uber.org/zap"
)

// ItemJar keeps the cookies of one client partition in an item store. It is
// used for clients, such as devices, that have no browser cookie jar.
type ItemJar struct {
	store  store.S
	bucket string
	now    func() time.Time
	logger *zap.Logger
}

// NewItemJar returns the cookie storage of the client partition bucket.
func NewItemJar(s store.S, bucket string, logger *zap.Logger) *ItemJar {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemJar{
		store:  s,
		bucket: bucket,
		now:    time.Now,
		logger: logger,
	}
}

func (j *ItemJar) key(name string) model.Key {
	return model.Key{Bucket: j.bucket, ID: name}
}

func (j *ItemJar) GetCookie(ctx context.Context, name string) (string, bool) {
	item, err := j.store.Get(ctx, j.key(name))
	if err != nil {
		if !errors.Is(err, store.ErrItemNotFound) {
			j.logger.Error("failed to read cookie from store", zap.String("bucket", j.bucket),
				zap.String("name", name), zap.Error(err))
		}
		return "", false
	}
	return item.Value, len(item.Value) > 0
}

func (j *ItemJar) SetCookie(ctx context.Context, c Cookie) error {
	item := model.Item{
		ID:     c.Name,
		Value:  c.Value,
		Domain: c.Domain,
		Path:   c.Path,
	}

	if !c.Expires.IsZero() {
		ttl := int64(math.Ceil(c.Expires.Sub(j.now()).Seconds()))
		if ttl <= 0 {
			_, err := j.store.Delete(ctx, j.key(c.Name))
			if errors.Is(err, store.ErrItemNotFound) {
				return nil
			}
			return err
		}
		item.TTL = &ttl
	}

	return j.store.Push(ctx, j.key(c.Name), item)
}
