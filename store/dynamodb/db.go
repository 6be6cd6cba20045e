// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dynamodb

import (
	"context"
	"time"

	"emperror.dev/emperror"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/quantcastid/model"
	"github.com/xmidt-org/quantcastid/store"
	"github.com/xmidt-org/quantcastid/store/db/metric"
	"go.uber.org/zap"
)

const (
	defaultTable      = "identifiers"
	defaultMaxRetries = 3
)

type Config struct {
	// Table is the name of the table holding the items.
	// (Optional) Defaults to "identifiers".
	Table string

	// Endpoint overrides the service endpoint, i.e. for a local dynamodb.
	// (Optional)
	Endpoint string

	Region string

	// MaxRetries is the maximum number of attempts the SDK makes per request.
	// (Optional) Defaults to 3.
	MaxRetries int

	// AccessKey and SecretKey provide static credentials. When unset the
	// default credentials chain is used.
	AccessKey string
	SecretKey string
}

type dao struct {
	s        service
	measures metric.Measures
	logger   *zap.Logger
}

// NewDynamoDB returns a dynamodb backed store.S.
func NewDynamoDB(ctx context.Context, config Config, measures metric.Measures, logger *zap.Logger) (store.S, error) {
	validateConfig(&config)
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Region),
		awsconfig.WithRetryMaxAttempts(config.MaxRetries),
	}
	if config.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKey, config.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, emperror.WrapWith(err, "Loading aws configuration failed", "region", config.Region)
	}

	c := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
		}
	})

	return newDAO(&executor{c: c, tableName: config.Table, now: time.Now}, measures, logger), nil
}

func newDAO(s service, measures metric.Measures, logger *zap.Logger) *dao {
	return &dao{s: s, measures: measures, logger: logger}
}

func (d *dao) Push(ctx context.Context, key model.Key, item model.Item) error {
	consumedCapacity, err := d.s.Push(ctx, key, item)
	d.updateMetrics(consumedCapacity, store.InsertType)
	return err
}

func (d *dao) Get(ctx context.Context, key model.Key) (model.Item, error) {
	item, consumedCapacity, err := d.s.Get(ctx, key)
	d.updateMetrics(consumedCapacity, store.ReadType)
	return item, err
}

func (d *dao) Delete(ctx context.Context, key model.Key) (model.Item, error) {
	item, consumedCapacity, err := d.s.Delete(ctx, key)
	d.updateMetrics(consumedCapacity, store.DeleteType)
	return item, err
}

// updateMetrics records the capacity units reported for the operation. Reads
// consume read capacity; pushes and deletes consume write capacity.
func (d *dao) updateMetrics(consumedCapacity *types.ConsumedCapacity, action string) {
	if consumedCapacity == nil || consumedCapacity.CapacityUnits == nil {
		return
	}
	d.logger.Debug("Updating consumed capacity", zap.String("action", action),
		zap.Float64("consumed", *consumedCapacity.CapacityUnits))
	labels := prometheus.Labels{store.TypeLabel: action}
	if action == store.ReadType {
		d.measures.ReadCapacityUnitConsumedCount.With(labels).Add(*consumedCapacity.CapacityUnits)
		return
	}
	d.measures.WriteCapacityUnitConsumedCount.With(labels).Add(*consumedCapacity.CapacityUnits)
}

func validateConfig(config *Config) {
	if config.Table == "" {
		config.Table = defaultTable
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = defaultMaxRetries
	}
}
