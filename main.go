// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xmidt-org/candlelight"
	"github.com/xmidt-org/quantcastid/quantcast"
	"github.com/xmidt-org/quantcastid/store/db"
	"github.com/xmidt-org/quantcastid/store/db/metric"
	"github.com/xmidt-org/quantcastid/userid"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

const (
	applicationName = "quantcastid"
	apiBase         = "api/v1"
)

var (
	GitCommit = "undefined"
	Version   = "undefined"
	BuildTime = "undefined"
)

func main() {
	v, logger, err := setup(os.Args[1:])
	switch {
	case errors.Is(err, pflag.ErrHelp):
		return
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		fx.Supply(logger, v),
		provideMetrics(),
		metric.ProvideMetrics(),
		db.Provide(),
		userid.Provide(),
		quantcast.Provide(),
		fx.Provide(
			provideTracingConfig,
			candlelight.New,
			unmarshalServers,
		),
		fx.Invoke(
			BuildPrimaryRoutes,
			BuildMetricsRoutes,
			BuildHealthRoutes,
		),
	)

	switch err := app.Err(); {
	case errors.Is(err, pflag.ErrHelp):
		return
	case err == nil:
		app.Run()
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func provideTracingConfig(v *viper.Viper) (candlelight.Config, error) {
	var config candlelight.Config
	err := v.UnmarshalKey("tracing", &config)
	if err != nil {
		return candlelight.Config{}, err
	}
	config.ApplicationName = applicationName
	return config, nil
}
