/*
 * Copyright 2018 The Trickster Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package redis is the redis implementation of the shelfcache storage client
// and supports Standalone, Sentinel and Cluster
package redis

import (
	"crypto/tls"
	"errors"
	"time"

	"github.com/trickstercache/shelfcache/pkg/cache"
	"github.com/trickstercache/shelfcache/pkg/cache/redis/options"
	"github.com/trickstercache/shelfcache/pkg/cache/status"

	"github.com/go-redis/redis"
)

var (
	// CacheClient implements the cache.Client interface
	_ cache.Client = &CacheClient{}
)

// ErrInvalidEndpointConfig is returned when a standard client has no endpoint
var ErrInvalidEndpointConfig = errors.New("invalid 'endpoint' config")

// ErrInvalidEndpointsConfig is returned when a cluster or sentinel client has no endpoints
var ErrInvalidEndpointsConfig = errors.New("invalid 'endpoints' config")

// ErrInvalidSentinalMasterConfig is returned when a sentinel client has no master
var ErrInvalidSentinalMasterConfig = errors.New("invalid 'sentinel_master' config")

// CacheClient represents a redis cache client that conforms to the cache.Client interface
type CacheClient struct {
	Name   string
	Config *options.Options
	client redis.Cmdable
	closer func() error
}

// New returns a new, unconnected redis client
func New(name string, cfg *options.Options) *CacheClient {
	if cfg == nil {
		cfg = options.New()
	}
	return &CacheClient{
		Name:   name,
		Config: cfg,
	}
}

// Connect connects to the configured Redis endpoint
func (c *CacheClient) Connect() error {
	switch c.Config.ClientType {
	case "sentinel":
		opts, err := c.sentinelOpts()
		if err != nil {
			return err
		}
		client := redis.NewFailoverClient(opts)
		c.closer = client.Close
		c.client = client
	case "cluster":
		opts, err := c.clusterOpts()
		if err != nil {
			return err
		}
		client := redis.NewClusterClient(opts)
		c.closer = client.Close
		c.client = client
	default:
		opts, err := c.clientOpts()
		if err != nil {
			return err
		}
		client := redis.NewClient(opts)
		c.closer = client.Close
		c.client = client
	}
	return c.client.Ping().Err()
}

// Remove deletes the keys from Redis
func (c *CacheClient) Remove(cacheKeys ...string) error {
	if len(cacheKeys) == 0 {
		return nil
	}
	return c.client.Del(cacheKeys...).Err()
}

// Store places the the data into the Redis Cache using the provided Key and TTL
func (c *CacheClient) Store(cacheKey string, data []byte, ttl time.Duration) error {
	return c.client.Set(cacheKey, data, ttl).Err()
}

// Retrieve gets data from the Redis Cache using the provided Key
func (c *CacheClient) Retrieve(cacheKey string) ([]byte, status.LookupStatus, error) {
	res, err := c.client.Get(cacheKey).Bytes()
	if err == nil {
		return res, status.LookupStatusHit, nil
	}
	if err == redis.Nil {
		return nil, status.LookupStatusKeyMiss, cache.ErrKNF
	}
	return nil, status.LookupStatusError, err
}

// Close closes the underlying redis client
func (c *CacheClient) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

func (c *CacheClient) tlsConfig() *tls.Config {
	if !c.Config.UseTLS {
		return nil
	}
	return &tls.Config{MinVersion: tls.VersionTLS12}
}

func (c *CacheClient) clientOpts() (*redis.Options, error) {
	if c.Config.Endpoint == "" {
		return nil, ErrInvalidEndpointConfig
	}
	return &redis.Options{
		Network:         c.Config.Protocol,
		Addr:            c.Config.Endpoint,
		Password:        c.Config.Password,
		DB:              c.Config.DB,
		MaxRetries:      c.Config.MaxRetries,
		MinRetryBackoff: c.Config.MinRetryBackoff,
		MaxRetryBackoff: c.Config.MaxRetryBackoff,
		DialTimeout:     c.Config.DialTimeout,
		ReadTimeout:     c.Config.ReadTimeout,
		WriteTimeout:    c.Config.WriteTimeout,
		PoolSize:        c.Config.PoolSize,
		MinIdleConns:    c.Config.MinIdleConns,
		MaxConnAge:      c.Config.MaxConnAge,
		PoolTimeout:     c.Config.PoolTimeout,
		IdleTimeout:     c.Config.IdleTimeout,
		TLSConfig:       c.tlsConfig(),
	}, nil
}

func (c *CacheClient) sentinelOpts() (*redis.FailoverOptions, error) {
	if len(c.Config.Endpoints) == 0 {
		return nil, ErrInvalidEndpointsConfig
	}
	if c.Config.SentinelMaster == "" {
		return nil, ErrInvalidSentinalMasterConfig
	}
	return &redis.FailoverOptions{
		SentinelAddrs:   c.Config.Endpoints,
		MasterName:      c.Config.SentinelMaster,
		Password:        c.Config.Password,
		DB:              c.Config.DB,
		MaxRetries:      c.Config.MaxRetries,
		MinRetryBackoff: c.Config.MinRetryBackoff,
		MaxRetryBackoff: c.Config.MaxRetryBackoff,
		DialTimeout:     c.Config.DialTimeout,
		ReadTimeout:     c.Config.ReadTimeout,
		WriteTimeout:    c.Config.WriteTimeout,
		PoolSize:        c.Config.PoolSize,
		MinIdleConns:    c.Config.MinIdleConns,
		MaxConnAge:      c.Config.MaxConnAge,
		PoolTimeout:     c.Config.PoolTimeout,
		IdleTimeout:     c.Config.IdleTimeout,
		TLSConfig:       c.tlsConfig(),
	}, nil
}

func (c *CacheClient) clusterOpts() (*redis.ClusterOptions, error) {
	if len(c.Config.Endpoints) == 0 {
		return nil, ErrInvalidEndpointsConfig
	}
	return &redis.ClusterOptions{
		Addrs:           c.Config.Endpoints,
		Password:        c.Config.Password,
		MaxRetries:      c.Config.MaxRetries,
		MinRetryBackoff: c.Config.MinRetryBackoff,
		MaxRetryBackoff: c.Config.MaxRetryBackoff,
		DialTimeout:     c.Config.DialTimeout,
		ReadTimeout:     c.Config.ReadTimeout,
		WriteTimeout:    c.Config.WriteTimeout,
		PoolSize:        c.Config.PoolSize,
		MinIdleConns:    c.Config.MinIdleConns,
		MaxConnAge:      c.Config.MaxConnAge,
		PoolTimeout:     c.Config.PoolTimeout,
		IdleTimeout:     c.Config.IdleTimeout,
		TLSConfig:       c.tlsConfig(),
	}, nil
}
