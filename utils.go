package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/9seconds/geocoder/geolib"
	"github.com/9seconds/geocoder/providers"
	"github.com/9seconds/geocoder/strategies"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
)

// service is a fully wired geocoder built from the config.
type service struct {
	provider geolib.Provider
	stats    geolib.StatsSource
	registry *prometheus.Registry
	closers  []func()
}

// Close releases resources in reverse order of their creation.
func (s *service) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func makeRootContext() (context.Context, context.CancelFunc) {
	rootCtx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)

	go func() {
		for range sigChan {
			cancel()
		}
	}()

	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	return rootCtx, cancel
}

// loadEnv reads variables from env file. Missing default file is not
// an error.
func loadEnv(fs afero.Fs, path string, required bool) error {
	file, err := fs.Open(path)

	switch {
	case errors.Is(err, os.ErrNotExist) && !required:
		return nil
	case err != nil:
		return fmt.Errorf("cannot open env file: %w", err)
	}

	defer file.Close()

	values, err := godotenv.Parse(file)
	if err != nil {
		return fmt.Errorf("cannot parse env file: %w", err)
	}

	for k, v := range values {
		if _, ok := os.LookupEnv(k); !ok {
			os.Setenv(k, v) // nolint: errcheck
		}
	}

	return nil
}

func makeService(conf *config, fs afero.Fs, log geolib.Logger) (*service, error) {
	rv := &service{
		registry: prometheus.NewRegistry(),
	}

	rv.registry.MustRegister(collectors.NewGoCollector())

	onReloadError := func(string, error) {}
	if reloadLog, ok := log.(interface{ ReloadError(string, error) }); ok {
		onReloadError = reloadLog.ReloadError
	}

	provs, closers, err := makeProviders(conf, fs, onReloadError)
	if err != nil {
		return nil, err
	}

	rv.closers = append(rv.closers, closers...)

	opts := []geolib.ChainOption{
		geolib.WithChainLogger(log),
		geolib.WithChainMetrics(geolib.NewMetrics(rv.registry)),
	}

	var chain geolib.Provider

	switch conf.Chain.GetMode() {
	case ChainModeParallel:
		parallelChain, err := geolib.NewParallelChain(provs, conf.Chain.GetWorkerPoolSize(), opts...)
		if err != nil {
			rv.Close()

			return nil, fmt.Errorf("cannot create parallel chain: %w", err)
		}

		rv.closers = append(rv.closers, parallelChain.Shutdown)
		rv.stats = parallelChain
		chain = parallelChain
	default:
		sequentialChain := geolib.NewChain(provs, opts...)
		rv.stats = sequentialChain
		chain = sequentialChain
	}

	strategy, err := makeStrategy(conf.Cache, log, rv)
	if err != nil {
		rv.Close()

		return nil, err
	}

	if strategy == nil {
		rv.provider = chain
	} else {
		rv.provider = geolib.NewCache(strategy, chain)
	}

	return rv, nil
}

func makeStrategy(conf configCache, log geolib.Logger, svc *service) (geolib.CacheStrategy, error) {
	var strategy geolib.CacheStrategy

	switch conf.GetKind() {
	case CacheKindNone:
		return nil, nil
	case CacheKindRistretto:
		cache, err := strategies.NewRistretto(uint(conf.GetSize()), conf.GetTTL())
		if err != nil {
			return nil, err
		}

		svc.closers = append(svc.closers, cache.Close)
		strategy = cache
	case CacheKindLRU:
		strategy = strategies.NewLRU(conf.GetSize(), conf.GetTTL())
	case CacheKindRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Address,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})

		svc.closers = append(svc.closers, func() {
			client.Close()
		})
		strategy = strategies.NewRedis(client, conf.GetTTL(), conf.Redis.Prefix, log)
	default:
		return nil, fmt.Errorf("unknown cache kind %s", conf.GetKind())
	}

	if conf.SingleFlight {
		strategy = strategies.NewSingleFlight(strategy)
	}

	return strategy, nil
}

func makeProviders(conf *config, fs afero.Fs,
	onReloadError func(string, error)) ([]geolib.Provider, []func(), error) {
	rv := make([]geolib.Provider, 0, len(conf.GetProviders()))
	closers := []func(){}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	for _, v := range conf.GetProviders() {
		prov, err := makeProvider(v, fs)
		if err != nil {
			closeAll()

			return nil, nil, fmt.Errorf("cannot create %s provider: %w", v.GetName(), err)
		}

		if err := prov.SetLimit(v.GetLimit()); err != nil {
			closeAll()

			return nil, nil, fmt.Errorf("cannot set a limit for %s provider: %w", v.GetName(), err)
		}

		if closer, ok := prov.(io.Closer); ok {
			closers = append(closers, func() {
				closer.Close()
			})
		}

		reloadEvery, err := durationParam(v.GetSpecificParameters()["reload_every"])
		if err != nil {
			closeAll()

			return nil, nil, fmt.Errorf("incorrect reload_every of %s provider: %w", v.GetName(), err)
		}

		if reloadable, ok := prov.(providers.Reloadable); ok && reloadEvery > 0 {
			ctx, cancel := context.WithCancel(context.Background())

			go providers.RunReloader(ctx, clockwork.NewRealClock(), reloadable, reloadEvery, onReloadError)

			closers = append(closers, cancel)
		}

		rv = append(rv, prov)
	}

	return rv, closers, nil
}

func makeProvider(conf configProvider, fs afero.Fs) (geolib.Provider, error) {
	params := conf.GetSpecificParameters()

	switch conf.GetName() {
	case providers.NameIPInfo:
		return providers.NewIPInfo(makeHTTPClient(conf), params["auth_token"]), nil
	case providers.NameIPStack:
		return providers.NewIPStack(makeHTTPClient(conf), params["auth_token"], boolParam(params["secure"]))
	case providers.NameKeyCDN:
		return providers.NewKeyCDN(makeHTTPClient(conf), params["site_url"]), nil
	case providers.NameIP2C:
		return providers.NewIP2C(makeHTTPClient(conf)), nil
	case providers.NameMaxmind:
		return providers.NewMaxmind(fs, params["path"])
	case providers.NameNominatim:
		return providers.NewNominatim(makeHTTPClient(conf), params["endpoint"], params["email"]), nil
	case providers.NameMapbox:
		return providers.NewMapbox(makeHTTPClient(conf), params["auth_token"])
	}

	return nil, fmt.Errorf("unsupported provider name: %s", conf.GetName())
}

func makeHTTPClient(conf configProvider) geolib.HTTPClient {
	jar, err := cookiejar.New(nil)
	if err != nil {
		panic(err)
	}

	httpClient := &http.Client{
		Timeout: conf.GetHTTPTimeout(),
		Jar:     jar,
	}

	return geolib.NewHTTPClient(httpClient, geolib.HTTPClientOptions{
		UserAgent:         "geocoder/" + version,
		RateLimitInterval: conf.GetRateLimitInterval(),
		RateLimitBurst:    conf.GetRateLimitBurst(),
	})
}

func durationParam(param string) (time.Duration, error) {
	if param == "" {
		return 0, nil
	}

	return time.ParseDuration(param)
}

func boolParam(param string) bool {
	switch strings.ToLower(param) {
	case "1", "true", "enabled", "yes":
		return true
	default:
		return false
	}
}
