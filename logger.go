package main

import (
	"io"

	"github.com/9seconds/geocoder/geolib"
	"github.com/rs/zerolog"
)

type logger struct {
	lookupLog zerolog.Logger
	cacheLog  zerolog.Logger
	reloadLog zerolog.Logger
	serverLog zerolog.Logger
}

func (l *logger) LookupError(provider, query string, err error) {
	l.lookupLog.Warn().Str("provider", provider).Str("query", query).Err(err).Msg("")
}

func (l *logger) CacheError(key string, err error) {
	l.cacheLog.Warn().Str("key", key).Err(err).Msg("")
}

func (l *logger) ReloadError(provider string, err error) {
	l.reloadLog.Warn().Str("provider", provider).Err(err).Msg("")
}

func (l *logger) ServerInfo(msg string) {
	l.serverLog.Info().Msg(msg)
}

func (l *logger) ServerError(err error) {
	l.serverLog.Error().Err(err).Msg("")
}

var _ geolib.Logger = &logger{}

func newLogger(writer io.Writer, debug bool) *logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	makeLog := func(eventName string) zerolog.Logger {
		return zerolog.New(writer).
			Level(level).
			With().
			Timestamp().
			Str("event_name", eventName).
			Logger()
	}

	return &logger{
		lookupLog: makeLog("lookup"),
		cacheLog:  makeLog("cache"),
		reloadLog: makeLog("reload"),
		serverLog: makeLog("server"),
	}
}
