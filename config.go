package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/hjson/hjson-go/v4"
	"github.com/spf13/afero"
)

const (
	DefaultHTTPTimeout       = 10 * time.Second
	DefaultRateLimitInterval = 100 * time.Millisecond
	DefaultRateLimitBurst    = 10
	DefaultCacheSize         = 10000
	DefaultCacheTTL          = time.Hour
	DefaultListen            = "127.0.0.1:8000"

	ChainModeSequential = "sequential"
	ChainModeParallel   = "parallel"

	CacheKindNone      = "none"
	CacheKindRistretto = "ristretto"
	CacheKindLRU       = "lru"
	CacheKindRedis     = "redis"
)

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v interface{}

	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("cannot unmarshal duration: %w", err)
	}

	vv, ok := v.(string)
	if !ok {
		return fmt.Errorf("incorrect duration: %v", v)
	}

	dur, err := time.ParseDuration(vv)
	if err != nil {
		return fmt.Errorf("cannot parse duration: %w", err)
	}

	d.Duration = dur

	return nil
}

type config struct {
	Listen    string           `json:"listen"`
	BasicAuth configBasicAuth  `json:"basic_auth"`
	Chain     configChain      `json:"chain"`
	Cache     configCache      `json:"cache"`
	Providers []configProvider `json:"providers"`
}

func (c config) GetListen() string {
	if c.Listen == "" {
		return DefaultListen
	}

	return c.Listen
}

func (c config) GetProviders() []configProvider {
	return c.Providers
}

type configBasicAuth struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

func (c configBasicAuth) Enabled() bool {
	return c.User != "" || c.Password != ""
}

type configChain struct {
	Mode           string `json:"mode"`
	WorkerPoolSize uint   `json:"worker_pool_size"`
}

func (c configChain) GetMode() string {
	if c.Mode == "" {
		return ChainModeSequential
	}

	return c.Mode
}

func (c configChain) GetWorkerPoolSize() int {
	return int(c.WorkerPoolSize)
}

type configCache struct {
	Kind         string      `json:"kind"`
	Size         uint        `json:"size"`
	TTL          duration    `json:"ttl"`
	SingleFlight bool        `json:"singleflight"`
	Redis        configRedis `json:"redis"`
}

func (c configCache) GetKind() string {
	if c.Kind == "" {
		return CacheKindNone
	}

	return c.Kind
}

func (c configCache) GetSize() int {
	if c.Size == 0 {
		return DefaultCacheSize
	}

	return int(c.Size)
}

func (c configCache) GetTTL() time.Duration {
	if c.TTL.Duration == 0 {
		return DefaultCacheTTL
	}

	return c.TTL.Duration
}

type configRedis struct {
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Prefix   string `json:"prefix"`
}

type configProvider struct {
	Name               string            `json:"name"`
	Limit              int               `json:"limit"`
	RateLimitInterval  duration          `json:"rate_limit_interval"`
	RateLimitBurst     uint              `json:"rate_limit_burst"`
	HTTPTimeout        duration          `json:"http_timeout"`
	SpecificParameters map[string]string `json:"specific_parameters"`
}

func (c configProvider) GetName() string {
	return c.Name
}

func (c configProvider) GetLimit() int {
	return c.Limit
}

func (c configProvider) GetRateLimitInterval() time.Duration {
	if c.RateLimitInterval.Duration == 0 {
		return DefaultRateLimitInterval
	}

	return c.RateLimitInterval.Duration
}

func (c configProvider) GetRateLimitBurst() int {
	if c.RateLimitBurst == 0 {
		return DefaultRateLimitBurst
	}

	return int(c.RateLimitBurst)
}

func (c configProvider) GetHTTPTimeout() time.Duration {
	if c.HTTPTimeout.Duration == 0 {
		return DefaultHTTPTimeout
	}

	return c.HTTPTimeout.Duration
}

// GetSpecificParameters returns parameters with expanded environment
// variables so secrets could be kept in .env file.
func (c configProvider) GetSpecificParameters() map[string]string {
	rv := make(map[string]string, len(c.SpecificParameters))

	for k, v := range c.SpecificParameters {
		rv[k] = os.ExpandEnv(v)
	}

	return rv
}

func parseConfig(fs afero.Fs, path string) (*config, error) {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	conf := config{}
	rawMap := map[string]interface{}{}

	if err := hjson.Unmarshal(content, &rawMap); err != nil {
		return nil, fmt.Errorf("cannot parse json: %w", err)
	}

	rawBytes, _ := json.Marshal(rawMap)

	if err := json.Unmarshal(rawBytes, &conf); err != nil {
		return nil, fmt.Errorf("incorrect config structure: %w", err)
	}

	if _, _, err := net.SplitHostPort(conf.GetListen()); err != nil {
		return nil, fmt.Errorf("incorrect host:port for listen: %w", err)
	}

	switch conf.Chain.GetMode() {
	case ChainModeSequential, ChainModeParallel:
	default:
		return nil, fmt.Errorf("unknown chain mode %s", conf.Chain.GetMode())
	}

	switch conf.Cache.GetKind() {
	case CacheKindNone, CacheKindRistretto, CacheKindLRU:
	case CacheKindRedis:
		if conf.Cache.Redis.Address == "" {
			return nil, errors.New("redis address is required for redis cache")
		}
	default:
		return nil, fmt.Errorf("unknown cache kind %s", conf.Cache.GetKind())
	}

	if len(conf.Providers) == 0 {
		return nil, errors.New("at least one provider has to be configured")
	}

	seenProviderNames := map[string]struct{}{}

	for _, v := range conf.Providers {
		name := strings.TrimSpace(v.GetName())

		if _, ok := seenProviderNames[name]; ok {
			return nil, fmt.Errorf("name %s is duplicated", name)
		}

		if v.GetLimit() < 0 {
			return nil, fmt.Errorf("incorrect limit of %s provider: %d", name, v.GetLimit())
		}

		seenProviderNames[name] = struct{}{}
	}

	return &conf, nil
}
