package providers

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/9seconds/geocoder/geolib"
	"github.com/oschwald/geoip2-golang"
	"github.com/spf13/afero"
)

const maxmindLanguage = "en"

type maxmindProvider struct {
	*geolib.Base

	fs   afero.Fs
	path string

	dbReader     *geoip2.Reader
	dbModTime    time.Time
	dbClosed     bool
	dbReaderLock sync.RWMutex
}

func (m *maxmindProvider) Geocode(_ context.Context, query string) (geolib.Results, error) {
	if results, err := checkIPQuery(m.Base, query); results != nil || err != nil {
		return results, err
	}

	query = strings.TrimSpace(query)

	m.dbReaderLock.RLock()
	defer m.dbReaderLock.RUnlock()

	if m.dbReader == nil {
		return nil, m.Fail(geolib.KindUnknown, query, ErrDatabaseIsClosed)
	}

	record, err := m.dbReader.City(net.ParseIP(query))
	if err != nil {
		return nil, m.Fail(geolib.KindUnknown, query,
			fmt.Errorf("cannot lookup this ip address: %w", err))
	}

	if record.Country.IsoCode == "" && record.Location.Latitude == 0 && record.Location.Longitude == 0 {
		return nil, m.NoResult(query)
	}

	result := geolib.Result{
		Locality:    geolib.StringOrNil(record.City.Names[maxmindLanguage]),
		PostalCode:  geolib.StringOrNil(record.Postal.Code),
		Country:     geolib.StringOrNil(record.Country.Names[maxmindLanguage]),
		CountryCode: geolib.StringOrNil(record.Country.IsoCode),
		Timezone:    geolib.StringOrNil(record.Location.TimeZone),
		ProvidedBy:  NameMaxmind,
	}

	if record.Location.Latitude != 0 || record.Location.Longitude != 0 {
		result.Latitude = geolib.Float(record.Location.Latitude)
		result.Longitude = geolib.Float(record.Location.Longitude)
	}

	if len(record.Subdivisions) > 0 {
		result.Region = geolib.StringOrNil(record.Subdivisions[0].Names[maxmindLanguage])
		result.RegionCode = geolib.StringOrNil(record.Subdivisions[0].IsoCode)
	}

	if len(record.Subdivisions) > 1 {
		result.County = geolib.StringOrNil(record.Subdivisions[1].Names[maxmindLanguage])
		result.CountyCode = geolib.StringOrNil(record.Subdivisions[1].IsoCode)
	}

	geolib.FillCountry(&result)

	return geolib.Results{result}, nil
}

func (m *maxmindProvider) Reverse(_ context.Context, lat, lng float64) (geolib.Results, error) {
	return nil, m.Unsupported(geolib.ReverseQuery(lat, lng), reasonReverseNotSupported)
}

// Reload opens a database file again if its modification time has
// changed. Lookups which are in progress keep using an old reader.
func (m *maxmindProvider) Reload() error {
	stat, err := m.fs.Stat(m.path)
	if err != nil {
		return fmt.Errorf("cannot stat a database file: %w", err)
	}

	m.dbReaderLock.RLock()
	closed := m.dbClosed
	unchanged := m.dbReader != nil && stat.ModTime().Equal(m.dbModTime)
	m.dbReaderLock.RUnlock()

	switch {
	case closed:
		return ErrDatabaseIsClosed
	case unchanged:
		return nil
	}

	reader, err := openMaxmind(m.fs, m.path)
	if err != nil {
		return err
	}

	m.dbReaderLock.Lock()

	if m.dbClosed {
		m.dbReaderLock.Unlock()
		reader.Close()

		return ErrDatabaseIsClosed
	}

	oldReader := m.dbReader
	m.dbReader = reader
	m.dbModTime = stat.ModTime()

	m.dbReaderLock.Unlock()

	if oldReader != nil {
		oldReader.Close()
	}

	return nil
}

// Close releases a database. All lookups and reloads after that fail.
func (m *maxmindProvider) Close() error {
	m.dbReaderLock.Lock()
	defer m.dbReaderLock.Unlock()

	m.dbClosed = true

	if m.dbReader == nil {
		return nil
	}

	err := m.dbReader.Close()
	m.dbReader = nil

	return err
}

func openMaxmind(fs afero.Fs, path string) (*geoip2.Reader, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("cannot read a database file: %w", err)
	}

	reader, err := geoip2.FromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("cannot initialize a reader of maxminddb: %w", err)
	}

	return reader, nil
}

// NewMaxmind opens a City database by a given path. Database is read
// into memory completely. Provider implements Reloadable so a database
// file could be replaced without a restart.
func NewMaxmind(fs afero.Fs, path string) (geolib.Provider, error) {
	prov := &maxmindProvider{
		Base: geolib.NewBase(NameMaxmind),
		fs:   fs,
		path: path,
	}

	if err := prov.Reload(); err != nil {
		return nil, err
	}

	return prov, nil
}
