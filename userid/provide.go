// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package userid

import (
	"net/http"

	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/xmidt-org/quantcastid/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Handler http.Handler

type handlerIn struct {
	fx.In

	Registry *Registry
	Store    store.S `optional:"true"`
	Config   TransportConfig
	Logger   *zap.Logger
}

// Provide builds the registry and the id handler.
func Provide() fx.Option {
	return fx.Provide(
		NewRegistry,
		unmarshalTransportConfig,
		fx.Annotated{
			Name:   "userid_handler",
			Target: newHandler,
		},
	)
}

func unmarshalTransportConfig(v *viper.Viper) (TransportConfig, error) {
	var c TransportConfig
	if err := v.UnmarshalKey("userId", &c); err != nil {
		return c, err
	}
	return newTransportConfig(c)
}

func newTransportConfig(c TransportConfig) (TransportConfig, error) {
	if err := validator.New().Struct(c); err != nil {
		return c, err
	}
	if len(c.Storage) == 0 {
		c.Storage = CookieStorage
	}
	if len(c.DeviceHeader) == 0 {
		c.DeviceHeader = DeviceHeaderKey
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = defaultMaxBodyBytes
	}
	return c, nil
}

// NewHandler returns the handler serving /userId/{name}.
func NewHandler(r *Registry, s store.S, config TransportConfig, logger *zap.Logger) (Handler, error) {
	config, err := newTransportConfig(config)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	t := transport{config: config, store: s}
	return kithttp.NewServer(
		newGetIDEndpoint(r),
		t.decodeIDRequest,
		encodeIDResponse,
		kithttp.ServerBefore(requestLogger(logger)),
		kithttp.ServerErrorEncoder(encodeError),
	), nil
}

func newHandler(in handlerIn) (Handler, error) {
	return NewHandler(in.Registry, in.Store, in.Config, in.Logger)
}
