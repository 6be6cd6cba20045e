// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package quantcast

import (
	"github.com/spf13/viper"
	"github.com/xmidt-org/quantcastid/beacon"
	"github.com/xmidt-org/quantcastid/userid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type senderIn struct {
	fx.In
	Config   Config
	Measures beacon.Measures
	LC       fx.Lifecycle
	Logger   *zap.Logger
}

type submoduleIn struct {
	fx.In
	Config   Config
	Sender   beacon.Sender
	Measures Measures
	Logger   *zap.Logger
}

// Provide builds the submodule and registers it with the userid registry.
func Provide() fx.Option {
	return fx.Options(
		ProvideMetrics(),
		beacon.ProvideMetrics(),
		fx.Provide(
			unmarshalConfig,
			provideSender,
			provideSubmodule,
		),
		fx.Invoke(register),
	)
}

func unmarshalConfig(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.UnmarshalKey("quantcast", &c); err != nil {
		return c, err
	}
	return c.validate()
}

func provideSender(in senderIn) beacon.Sender {
	s := beacon.NewHTTPSender(in.Config.Sender, nil, in.Measures, in.Logger)
	in.LC.Append(fx.Hook{
		OnStop: s.Close,
	})
	return s
}

func provideSubmodule(in submoduleIn) (*Submodule, error) {
	return New(in.Config, in.Sender,
		WithMeasures(in.Measures),
		WithLogger(in.Logger),
	)
}

func register(r *userid.Registry, s *Submodule) error {
	return r.Register(userid.Category, s)
}
