package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/9seconds/geocoder/geolib"
	"github.com/spf13/afero"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

const (
	shutdownTimeout = 10 * time.Second
	defaultEnvFile  = ".env"
)

var version = "dev"

var (
	app = kingpin.New(
		"geocoder",
		"Geocoding service with a chain of fallback providers and caching.")

	debug = app.Flag("debug", "Run in debug mode.").
		Short('d').
		Envar("GEOCODER_DEBUG").
		Bool()
	envFile = app.Flag("env-file", "Path to the env file with secrets. Default is .env if it exists.").
		Envar("GEOCODER_ENV_FILE").
		String()

	serveCommand    = app.Command("serve", "Run HTTP API.")
	serveConfigPath = serveCommand.Arg("config-path", "Path to the config.").
			Required().
			String()

	geocodeCommand    = app.Command("geocode", "Geocode a single query.")
	geocodeConfigPath = geocodeCommand.Arg("config-path", "Path to the config.").
				Required().
				String()
	geocodeQuery = geocodeCommand.Arg("query", "An address or IP address.").
			Required().
			String()

	reverseCommand    = app.Command("reverse", "Reverse geocode coordinates.")
	reverseConfigPath = reverseCommand.Arg("config-path", "Path to the config.").
				Required().
				String()
	reverseLat = reverseCommand.Arg("lat", "Latitude.").
			Required().
			Float64()
	reverseLng = reverseCommand.Arg("lng", "Longitude.").
			Required().
			Float64()
)

func main() {
	app.Version(version)

	command := kingpin.MustParse(app.Parse(os.Args[1:]))
	fs := afero.NewOsFs()
	log := newLogger(os.Stderr, *debug)

	envFilePath, envFileRequired := *envFile, true
	if envFilePath == "" {
		envFilePath, envFileRequired = defaultEnvFile, false
	}

	if err := loadEnv(fs, envFilePath, envFileRequired); err != nil {
		app.Fatalf("cannot load env file: %v", err)
	}

	ctx, cancel := makeRootContext()
	defer cancel()

	var err error

	switch command {
	case serveCommand.FullCommand():
		err = runServe(ctx, fs, log, *serveConfigPath)
	case geocodeCommand.FullCommand():
		err = runLookup(fs, log, *geocodeConfigPath, func(provider geolib.Provider) (geolib.Results, error) {
			return provider.Geocode(ctx, *geocodeQuery)
		})
	case reverseCommand.FullCommand():
		err = runLookup(fs, log, *reverseConfigPath, func(provider geolib.Provider) (geolib.Results, error) {
			return provider.Reverse(ctx, *reverseLat, *reverseLng)
		})
	}

	if err != nil {
		cancel()
		app.Fatalf("%v", err)
	}
}

func runServe(ctx context.Context, fs afero.Fs, log *logger, configPath string) error {
	conf, err := parseConfig(fs, configPath)
	if err != nil {
		return fmt.Errorf("cannot read config: %w", err)
	}

	svc, err := makeService(conf, fs, log)
	if err != nil {
		return err
	}

	defer svc.Close()

	handler := geolib.NewHTTPHandler(svc.provider, geolib.HTTPHandlerOptions{
		Stats:    svc.stats,
		Gatherer: svc.registry,
	})

	srv := &http.Server{
		Addr:              conf.GetListen(),
		Handler:           newBasicAuthMiddleware(handler, conf.BasicAuth),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		srv.Shutdown(shutdownCtx) // nolint: errcheck
	}()

	log.ServerInfo("listen on " + conf.GetListen())

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.ServerError(err)

		return fmt.Errorf("server has failed: %w", err)
	}

	log.ServerInfo("server has been stopped")

	return nil
}

func runLookup(fs afero.Fs, log *logger, configPath string,
	lookup func(geolib.Provider) (geolib.Results, error)) error {
	conf, err := parseConfig(fs, configPath)
	if err != nil {
		return fmt.Errorf("cannot read config: %w", err)
	}

	svc, err := makeService(conf, fs, log)
	if err != nil {
		return err
	}

	defer svc.Close()

	results, err := lookup(svc.provider)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)

	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")

	return encoder.Encode(struct {
		Results geolib.Results `json:"results"`
	}{
		Results: results,
	})
}
