// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cassandra

import (
	"context"
	"time"

	"emperror.dev/emperror"
	"emperror.dev/errors"
	"github.com/gocql/gocql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/quantcastid/model"
	"github.com/xmidt-org/quantcastid/store"
	"github.com/xmidt-org/quantcastid/store/db/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	defaultOpTimeout             = time.Duration(10) * time.Second
	defaultDatabase              = "quantcastid"
	defaultNumRetries            = 0
	defaultWaitTimeMult          = 1
	defaultMaxNumberConnsPerHost = 2
	pingInterval                 = time.Second * 5
)

var errNoHosts = errors.NewPlain("number of hosts must be > 0")

type Config struct {
	// Hosts to  connect to. Must have at least one
	Hosts []string

	// Database aka Keyspace for cassandra
	Database string

	// OpTimeout
	OpTimeout time.Duration

	// SSLRootCert used for enabling tls to the cluster. SSLKey, and SSLCert must also be set.
	SSLRootCert string
	// SSLKey used for enabling tls to the cluster. SSLRootCert, and SSLCert must also be set.
	SSLKey string
	// SSLCert used for enabling tls to the cluster. SSLRootCert, and SSLRootCert must also be set.
	SSLCert string
	// If you want to verify the hostname and server cert (like a wildcard for cass cluster) then you should turn this on
	// This option is basically the inverse of InSecureSkipVerify
	// See InSecureSkipVerify in http://golang.org/pkg/crypto/tls/ for more info
	EnableHostVerification bool

	// Username to authenticate into the cluster. Password must also be provided.
	Username string
	// Password to authenticate into the cluster. Username must also be provided.
	Password string

	// NumRetries for connecting to the db
	NumRetries int

	// WaitTimeMult the amount of time to wait before retrying to connect to the db
	WaitTimeMult time.Duration

	// MaxConnsPerHost max number of connections per host
	MaxConnsPerHost int
}

type CassandraClient struct {
	client   dbStore
	config   Config
	logger   *zap.Logger
	measures metric.Measures
}

// NewCassandra connects to the cluster and keeps pinging it for the lifetime
// of the application.
func NewCassandra(config Config, measures metric.Measures, lc fx.Lifecycle, logger *zap.Logger) (*CassandraClient, error) {
	client, err := CreateCassandraClient(config, measures, logger)
	if err != nil {
		return nil, err
	}
	ticker := doEvery(pingInterval, func(_ time.Time) {
		if err := client.Ping(); err != nil {
			logger.Error("ping failed", zap.Error(err))
		}
	})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			ticker.Stop()
			client.Close()
			return nil
		},
	})
	return client, nil
}

func doEvery(d time.Duration, f func(time.Time)) *time.Ticker {
	ticker := time.NewTicker(d)
	go func() {
		for x := range ticker.C {
			f(x)
		}
	}()
	return ticker
}

func CreateCassandraClient(config Config, measures metric.Measures, logger *zap.Logger) (*CassandraClient, error) {
	if len(config.Hosts) == 0 {
		return nil, errNoHosts
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	validateConfig(&config)

	clusterConfig := gocql.NewCluster(config.Hosts...)
	clusterConfig.Consistency = gocql.LocalQuorum
	clusterConfig.Keyspace = config.Database
	clusterConfig.Timeout = config.OpTimeout
	clusterConfig.NumConns = config.MaxConnsPerHost
	// let retry package handle it
	clusterConfig.RetryPolicy = &gocql.SimpleRetryPolicy{NumRetries: 1}
	// setup ssl
	if config.SSLRootCert != "" && config.SSLCert != "" && config.SSLKey != "" {
		clusterConfig.SslOpts = &gocql.SslOptions{
			CertPath:               config.SSLCert,
			KeyPath:                config.SSLKey,
			CaPath:                 config.SSLRootCert,
			EnableHostVerification: config.EnableHostVerification,
		}
	}
	// setup authentication
	if config.Username != "" && config.Password != "" {
		clusterConfig.Authenticator = gocql.PasswordAuthenticator{
			Username: config.Username,
			Password: config.Password,
		}
	}

	session, err := connect(clusterConfig, logger)

	// retry if it fails
	waitTime := 1 * time.Second
	for attempt := 0; attempt < config.NumRetries && err != nil; attempt++ {
		time.Sleep(waitTime)
		session, err = connect(clusterConfig, logger)
		waitTime = waitTime * config.WaitTimeMult
	}
	if err != nil {
		return nil, emperror.WrapWith(err, "Connecting to database failed", "hosts", config.Hosts)
	}

	return &CassandraClient{
		client:   session,
		config:   config,
		logger:   logger,
		measures: measures,
	}, nil
}

func (s *CassandraClient) Push(ctx context.Context, key model.Key, item model.Item) error {
	return s.client.Push(ctx, key, item)
}

func (s *CassandraClient) Get(ctx context.Context, key model.Key) (model.Item, error) {
	item, err := s.client.Get(ctx, key)
	if errors.Is(err, errNoDataResponse) {
		return item, store.KeyNotFoundError{Key: key}
	}
	return item, err
}

func (s *CassandraClient) Delete(ctx context.Context, key model.Key) (model.Item, error) {
	item, err := s.client.Delete(ctx, key)
	if errors.Is(err, errNoDataResponse) {
		return item, store.KeyNotFoundError{Key: key}
	}
	return item, err
}

func (s *CassandraClient) Close() {
	s.client.Close()
}

// Ping is for pinging the database to verify that the connection is still good.
func (s *CassandraClient) Ping() error {
	labels := prometheus.Labels{store.TypeLabel: store.PingType}
	err := s.client.Ping()
	if err != nil {
		s.measures.QueryFailureCount.With(labels).Inc()
		return emperror.Wrap(err, "Pinging connection failed")
	}
	s.measures.QuerySuccessCount.With(labels).Inc()
	return nil
}

func validateConfig(config *Config) {
	zeroDuration := time.Duration(0) * time.Second

	if config.OpTimeout == zeroDuration {
		config.OpTimeout = defaultOpTimeout
	}

	if config.Database == "" {
		config.Database = defaultDatabase
	}
	if config.NumRetries < 0 {
		config.NumRetries = defaultNumRetries
	}
	if config.WaitTimeMult < 1 {
		config.WaitTimeMult = defaultWaitTimeMult
	}
	if config.MaxConnsPerHost <= 0 {
		config.MaxConnsPerHost = defaultMaxNumberConnsPerHost
	}
}
