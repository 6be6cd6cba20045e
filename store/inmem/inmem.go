// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/xmidt-org/quantcastid/model"
	"github.com/xmidt-org/quantcastid/store"
)

type expireableItem struct {
	model.Item
	expiration *time.Time
}

type InMem struct {
	data map[string]map[string]expireableItem
	lock sync.Mutex
	now  func() time.Time
}

func NewInMem() *InMem {
	return &InMem{
		data: map[string]map[string]expireableItem{},
		now:  time.Now,
	}
}

func (i *InMem) Push(_ context.Context, key model.Key, item model.Item) error {
	i.lock.Lock()
	defer i.lock.Unlock()
	if i.data[key.Bucket] == nil {
		i.data[key.Bucket] = map[string]expireableItem{}
	}
	storingItem := expireableItem{Item: item}
	if item.TTL != nil {
		expiration := i.now().Add(time.Second * time.Duration(*item.TTL))
		storingItem.expiration = &expiration
	}
	i.data[key.Bucket][key.ID] = storingItem
	return nil
}

// hasExpired returns true if the given item has expired and false otherwise.
// For an unexpired item with an expiration date, the current TTL is updated.
// Note: expired items are automatically removed from the internal map.
func (i *InMem) hasExpired(item *expireableItem, bucket map[string]expireableItem, bucketName, id string) bool {
	if item.expiration == nil {
		return false
	}
	secondsBeforeExpiry := int64(item.expiration.Sub(i.now()).Seconds())
	if secondsBeforeExpiry <= 0 {
		i.deleteItem(bucketName, id, bucket)
		return true
	}
	item.TTL = &secondsBeforeExpiry
	return false
}

func (i *InMem) Get(_ context.Context, key model.Key) (model.Item, error) {
	i.lock.Lock()
	defer i.lock.Unlock()
	item, ok := i.lookup(key)
	if !ok {
		return model.Item{}, store.KeyNotFoundError{Key: key}
	}
	return item.Item, nil
}

func (i *InMem) Delete(_ context.Context, key model.Key) (model.Item, error) {
	i.lock.Lock()
	defer i.lock.Unlock()
	item, ok := i.lookup(key)
	if !ok {
		return model.Item{}, store.KeyNotFoundError{Key: key}
	}
	i.deleteItem(key.Bucket, key.ID, i.data[key.Bucket])
	return item.Item, nil
}

func (i *InMem) lookup(key model.Key) (expireableItem, bool) {
	bucket, ok := i.data[key.Bucket]
	if !ok {
		return expireableItem{}, false
	}
	item, ok := bucket[key.ID]
	if !ok {
		return expireableItem{}, false
	}
	if i.hasExpired(&item, bucket, key.Bucket, key.ID) {
		return expireableItem{}, false
	}
	return item, true
}

func (i *InMem) deleteItem(bucketName string, itemID string, bucket map[string]expireableItem) {
	delete(bucket, itemID)
	if len(bucket) == 0 {
		delete(i.data, bucketName)
	}
}
