// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/viper"
	"github.com/xmidt-org/touchstone"
	"github.com/xmidt-org/touchstone/touchhttp"
	"go.uber.org/fx"
)

const (
	defaultNamespace = "xmidt"
)

// provideMetrics builds the metrics registry and the server instrumentation
// and makes them available to the container
func provideMetrics() fx.Option {
	return fx.Options(
		touchstone.Provide(),
		fx.Provide(
			unmarshalMetricsConfig,
			fx.Annotated{
				Name: "servers.primary.metrics",
				Target: touchhttp.ServerBundle{}.NewInstrumenter(
					touchhttp.ServerLabel, "primary",
				),
			},
			fx.Annotated{
				Name: "servers.health.metrics",
				Target: touchhttp.ServerBundle{}.NewInstrumenter(
					touchhttp.ServerLabel, "health",
				),
			},
		),
	)
}

func unmarshalMetricsConfig(v *viper.Viper) (touchstone.Config, error) {
	var c touchstone.Config
	if err := v.UnmarshalKey("prometheus", &c); err != nil {
		return c, err
	}
	if len(c.DefaultNamespace) == 0 {
		c.DefaultNamespace = defaultNamespace
	}
	if len(c.DefaultSubsystem) == 0 {
		c.DefaultSubsystem = applicationName
	}
	return c, nil
}
