// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"github.com/xmidt-org/candlelight"
	"github.com/xmidt-org/httpaux"
	"github.com/xmidt-org/httpaux/recovery"
	"github.com/xmidt-org/quantcastid/userid"
	"github.com/xmidt-org/touchstone/touchhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	defaultReadHeaderTimeout = 5 * time.Second
	defaultHealthPath        = "/health"
	defaultMetricsPath       = "/metrics"
)

// ServerConfig describes one HTTP listener. A server without an address is
// not started.
type ServerConfig struct {
	Address           string
	Path              string
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
}

type ServersConfig struct {
	Primary ServerConfig
	Metrics ServerConfig
	Health  ServerConfig
}

func unmarshalServers(v *viper.Viper) (ServersConfig, error) {
	var c ServersConfig
	err := v.UnmarshalKey("servers", &c)
	return c, err
}

type PrimaryRoutesIn struct {
	fx.In
	Config  ServersConfig
	Metrics touchhttp.ServerInstrumenter `name:"servers.primary.metrics"`
	// Tracing will be used to set up tracing instrumentation code.
	Tracing candlelight.Tracing
	Handler userid.Handler `name:"userid_handler"`
	LC      fx.Lifecycle
	Logger  *zap.Logger
}

type HealthRoutesIn struct {
	fx.In
	Config  ServersConfig
	Metrics touchhttp.ServerInstrumenter `name:"servers.health.metrics"`
	LC      fx.Lifecycle
	Logger  *zap.Logger
}

type MetricsRoutesIn struct {
	fx.In
	Config   ServersConfig
	Gatherer prometheus.Gatherer
	LC       fx.Lifecycle
	Logger   *zap.Logger
}

func BuildPrimaryRoutes(in PrimaryRoutesIn) {
	router := mux.NewRouter()

	options := []otelmux.Option{
		otelmux.WithTracerProvider(in.Tracing.TracerProvider()),
		otelmux.WithPropagators(in.Tracing.Propagator()),
	}
	router.Use(otelmux.Middleware("server_primary", options...))

	idPath := fmt.Sprintf("/%s/%s/{name}", apiBase, userid.Category)
	router.Handle(idPath, in.Handler).Methods(http.MethodGet, http.MethodPost)

	chain := alice.New(
		recovery.Middleware(recovery.WithStatusCode(555)),
		candlelight.EchoFirstTraceNodeInfo(in.Tracing, false),
		in.Metrics.Then,
	)
	bindServer(in.LC, in.Logger, "primary", in.Config.Primary, chain.Then(router))
}

func BuildHealthRoutes(in HealthRoutesIn) {
	path := in.Config.Health.Path
	if len(path) == 0 {
		path = defaultHealthPath
	}

	router := mux.NewRouter()
	router.Handle(path, httpaux.ConstantHandler{
		StatusCode: http.StatusOK,
	}).Methods(http.MethodGet)
	bindServer(in.LC, in.Logger, "health", in.Config.Health, in.Metrics.Then(router))
}

func BuildMetricsRoutes(in MetricsRoutesIn) {
	path := in.Config.Metrics.Path
	if len(path) == 0 {
		path = defaultMetricsPath
	}

	router := mux.NewRouter()
	router.Handle(path, promhttp.HandlerFor(in.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	bindServer(in.LC, in.Logger, "metrics", in.Config.Metrics, router)
}

func newServer(c ServerConfig, h http.Handler) *http.Server {
	if c.ReadHeaderTimeout <= 0 {
		c.ReadHeaderTimeout = defaultReadHeaderTimeout
	}
	return &http.Server{
		Addr:              c.Address,
		Handler:           h,
		ReadHeaderTimeout: c.ReadHeaderTimeout,
		ReadTimeout:       c.ReadTimeout,
		WriteTimeout:      c.WriteTimeout,
		IdleTimeout:       c.IdleTimeout,
	}
}

func bindServer(lc fx.Lifecycle, logger *zap.Logger, name string, c ServerConfig, h http.Handler) {
	logger = logger.With(zap.String("server", name))
	if len(c.Address) == 0 {
		logger.Info("server has no address, not starting")
		return
	}

	s := newServer(c, h)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			l, err := new(net.ListenConfig).Listen(ctx, "tcp", s.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen for %s server: %w", name, err)
			}
			logger.Info("starting server", zap.String("address", l.Addr().String()))
			go func() {
				if err := s.Serve(l); !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server exited", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: s.Shutdown,
	})
}
