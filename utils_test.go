package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/9seconds/geocoder/geolib"
	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/suite"
)

type ServiceTestSuite struct {
	suite.Suite

	ctx context.Context
	fs  afero.Fs
}

func (suite *ServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.fs = afero.NewMemMapFs()
}

func (suite *ServiceTestSuite) makeService(conf *config) *service {
	svc, err := makeService(conf, suite.fs, geolib.NoopLogger{})

	suite.Require().NoError(err)
	suite.T().Cleanup(svc.Close)

	return svc
}

func (suite *ServiceTestSuite) defaultConfig() *config {
	return &config{
		Providers: []configProvider{
			{Name: "ip2c", Limit: 2},
			{Name: "ipinfo"},
		},
	}
}

func (suite *ServiceTestSuite) assertLocalhost(prov geolib.Provider) {
	results, err := prov.Geocode(suite.ctx, "127.0.0.1")

	suite.NoError(err)
	suite.Len(results, 1)
	suite.Equal("ip2c", results[0].ProvidedBy)
}

func (suite *ServiceTestSuite) TestSequentialWithoutCache() {
	svc := suite.makeService(suite.defaultConfig())

	chain, ok := svc.provider.(*geolib.Chain)

	suite.True(ok)
	suite.Len(chain.Providers(), 2)
	suite.Equal(2, chain.Providers()[0].Limit())
	suite.Len(svc.stats.Stats(), 2)
	suite.assertLocalhost(svc.provider)
}

func (suite *ServiceTestSuite) TestParallelWithCache() {
	conf := suite.defaultConfig()
	conf.Chain.Mode = ChainModeParallel
	conf.Chain.WorkerPoolSize = 4
	conf.Cache.Kind = CacheKindLRU
	conf.Cache.SingleFlight = true

	svc := suite.makeService(conf)

	cache, ok := svc.provider.(*geolib.Cache)

	suite.True(ok)

	_, ok = cache.Delegate().(*geolib.ParallelChain)

	suite.True(ok)
	suite.assertLocalhost(svc.provider)
	suite.assertLocalhost(svc.provider)
	suite.EqualValues(1, svc.stats.Stats()[0].SuccessCount())
}

func (suite *ServiceTestSuite) TestRistretto() {
	conf := suite.defaultConfig()
	conf.Cache.Kind = CacheKindRistretto

	svc := suite.makeService(conf)

	suite.IsType(&geolib.Cache{}, svc.provider)
	suite.assertLocalhost(svc.provider)
}

func (suite *ServiceTestSuite) TestRedis() {
	server := miniredis.RunT(suite.T())

	conf := suite.defaultConfig()
	conf.Cache.Kind = CacheKindRedis
	conf.Cache.Redis.Address = server.Addr()
	conf.Cache.Redis.Prefix = "test:"

	svc := suite.makeService(conf)

	suite.assertLocalhost(svc.provider)
	suite.Len(server.Keys(), 1)
}

func (suite *ServiceTestSuite) TestMetricsAreRegistered() {
	svc := suite.makeService(suite.defaultConfig())

	suite.assertLocalhost(svc.provider)

	families, err := svc.registry.Gather()

	suite.NoError(err)

	names := []string{}
	for _, v := range families {
		names = append(names, v.GetName())
	}

	suite.Contains(names, "geocoder_lookups_total")
}

func (suite *ServiceTestSuite) TestUnknownProvider() {
	_, err := makeService(&config{
		Providers: []configProvider{{Name: "unknown"}},
	}, suite.fs, geolib.NoopLogger{})

	suite.Error(err)
}

func (suite *ServiceTestSuite) TestMaxmindWithoutDatabase() {
	_, err := makeService(&config{
		Providers: []configProvider{
			{Name: "ip2c"},
			{
				Name:               "maxmind",
				SpecificParameters: map[string]string{"path": "/GeoLite2-City.mmdb"},
			},
		},
	}, suite.fs, geolib.NoopLogger{})

	suite.Error(err)
}

func (suite *ServiceTestSuite) TestMapboxWithoutToken() {
	_, err := makeService(&config{
		Providers: []configProvider{{Name: "mapbox"}},
	}, suite.fs, geolib.NoopLogger{})

	suite.Error(err)
}

func TestService(t *testing.T) {
	suite.Run(t, &ServiceTestSuite{})
}

type LoadEnvTestSuite struct {
	suite.Suite

	fs afero.Fs
}

func (suite *LoadEnvTestSuite) SetupTest() {
	suite.fs = afero.NewMemMapFs()
}

func (suite *LoadEnvTestSuite) TestMissingOptional() {
	suite.NoError(loadEnv(suite.fs, ".env", false))
}

func (suite *LoadEnvTestSuite) TestMissingRequired() {
	suite.Error(loadEnv(suite.fs, ".env", true))
}

func (suite *LoadEnvTestSuite) TestLoad() {
	suite.T().Setenv("GEOCODER_TEST_EXISTING", "keep")

	content := "GEOCODER_TEST_NEW=value\nGEOCODER_TEST_EXISTING=replace\n"

	suite.NoError(afero.WriteFile(suite.fs, ".env", []byte(content), 0o600))
	suite.NoError(loadEnv(suite.fs, ".env", true))

	suite.T().Cleanup(func() {
		os.Unsetenv("GEOCODER_TEST_NEW")
	})

	suite.Equal("value", os.Getenv("GEOCODER_TEST_NEW"))
	suite.Equal("keep", os.Getenv("GEOCODER_TEST_EXISTING"))
}

func TestLoadEnv(t *testing.T) {
	suite.Run(t, &LoadEnvTestSuite{})
}

func (suite *ServiceTestSuite) TestIncorrectReloadEvery() {
	_, err := makeService(&config{
		Providers: []configProvider{
			{
				Name:               "ip2c",
				SpecificParameters: map[string]string{"reload_every": "often"},
			},
		},
	}, suite.fs, geolib.NoopLogger{})

	suite.Error(err)
}

func TestDurationParam(t *testing.T) {
	value, err := durationParam("")
	if err != nil || value != 0 {
		t.Errorf("empty value: %v, %v", value, err)
	}

	value, err = durationParam("6h")
	if err != nil || value != 6*time.Hour {
		t.Errorf("6h: %v, %v", value, err)
	}

	if _, err := durationParam("often"); err == nil {
		t.Error("error is expected")
	}
}

func TestBoolParam(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes", "enabled"} {
		if !boolParam(v) {
			t.Errorf("%s should be true", v)
		}
	}

	for _, v := range []string{"", "0", "false", "no", "whatever"} {
		if boolParam(v) {
			t.Errorf("%s should be false", v)
		}
	}
}
