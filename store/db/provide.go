// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"

	"github.com/spf13/viper"
	"github.com/xmidt-org/quantcastid/store"
	"github.com/xmidt-org/quantcastid/store/cassandra"
	"github.com/xmidt-org/quantcastid/store/db/metric"
	"github.com/xmidt-org/quantcastid/store/dynamodb"
	"github.com/xmidt-org/quantcastid/store/inmem"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Configs selects the item store backend. At most one should be set; with
// none set the in memory store is used.
type Configs struct {
	Dynamo   *dynamodb.Config
	Yugabyte *cassandra.Config
}

type SetupIn struct {
	fx.In
	Configs  Configs
	Measures metric.Measures
	LC       fx.Lifecycle
	Logger   *zap.Logger
}

func Provide() fx.Option {
	return fx.Options(
		fx.Provide(
			unmarshalConfigs,
			SetupStore,
		),
	)
}

func unmarshalConfigs(v *viper.Viper) (Configs, error) {
	var c Configs
	err := v.UnmarshalKey("store", &c)
	return c, err
}

func SetupStore(in SetupIn) (store.S, error) {
	if in.Configs.Dynamo != nil {
		in.Logger.Info("using dynamodb store implementation")
		s, err := dynamodb.NewDynamoDB(context.Background(), *in.Configs.Dynamo, in.Measures, in.Logger)
		if err != nil {
			return nil, err
		}
		return Instrument(s, in.Measures), nil
	}
	if in.Configs.Yugabyte != nil {
		in.Logger.Info("using yugabyte store implementation")
		s, err := cassandra.NewCassandra(*in.Configs.Yugabyte, in.Measures, in.LC, in.Logger)
		if err != nil {
			return nil, err
		}
		return Instrument(s, in.Measures), nil
	}
	in.Logger.Info("using in memory store implementation")
	return Instrument(inmem.NewInMem(), in.Measures), nil
}
