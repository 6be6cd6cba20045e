// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cassandra

import (
	"context"
	"encoding/json"

	"emperror.dev/errors"
	"github.com/gocql/gocql"
	"github.com/hailocab/go-hostpool"
	"github.com/xmidt-org/quantcastid/model"
	"github.com/xmidt-org/quantcastid/store"
	"go.uber.org/zap"
)

type dbStore interface {
	store.S
	Close()
	Ping() error
}

var (
	errNoDataResponse = errors.NewPlain("no data from query")
	errServerClosed   = errors.NewPlain("server is closed")
)

type cassandraExecutor struct {
	session *gocql.Session
	logger  *zap.Logger
}

func connect(clusterConfig *gocql.ClusterConfig, logger *zap.Logger) (dbStore, error) {
	clusterConfig.PoolConfig.HostSelectionPolicy = gocql.HostPoolHostPolicy(hostpool.New(nil))
	session, err := clusterConfig.CreateSession()
	if err != nil {
		return nil, err
	}

	return &cassandraExecutor{session: session, logger: logger}, nil
}

func (s *cassandraExecutor) Push(ctx context.Context, key model.Key, item model.Item) error {
	data, err := json.Marshal(&item)
	if err != nil {
		return errors.WrapWithDetails(err, "failed to marshal item", "bucket", key.Bucket)
	}

	var ttl int64
	if item.TTL != nil {
		ttl = *item.TTL
	}

	return s.session.Query("INSERT INTO cookies (bucket, id, data) VALUES (?,?,?) USING TTL ?",
		key.Bucket, key.ID, data, ttl).WithContext(ctx).Exec()
}

func (s *cassandraExecutor) Get(ctx context.Context, key model.Key) (model.Item, error) {
	var (
		data []byte
		ttl  int64
	)
	iter := s.session.Query("SELECT data, ttl(data) from cookies WHERE bucket = ? AND id = ?",
		key.Bucket, key.ID).WithContext(ctx).Iter()
	defer func() {
		if err := iter.Close(); err != nil {
			s.logger.Error("failed to close iter", zap.String("bucket", key.Bucket), zap.String("id", key.ID), zap.Error(err))
		}
	}()
	for iter.Scan(&data, &ttl) {
		item := model.Item{}
		err := errors.WrapIfWithDetails(json.Unmarshal(data, &item), "failed to unmarshal item", "bucket", key.Bucket)
		item.TTL = nil
		if ttl > 0 {
			item.TTL = &ttl
		}
		return item, err
	}
	return model.Item{}, errNoDataResponse
}

func (s *cassandraExecutor) Delete(ctx context.Context, key model.Key) (model.Item, error) {
	item, err := s.Get(ctx, key)
	if err != nil {
		return item, err
	}
	err = s.session.Query("DELETE from cookies WHERE bucket = ? AND id = ?", key.Bucket, key.ID).WithContext(ctx).Exec()
	return item, err
}

func (s *cassandraExecutor) Close() {
	s.session.Close()
}

func (s *cassandraExecutor) Ping() error {
	if s.session.Closed() {
		return errServerClosed
	}
	return nil
}
