// Package geoip resolves visitor IP addresses to countries.
// Lookups degrade to empty results when no database is installed.
package geoip

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/biter777/countries"
	"github.com/oschwald/geoip2-golang"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/dreamdigital/landing/internal/logging"
)

const databaseFile = "GeoLite2-Country.mmdb"

// downloadURL is the jsDelivr mirror of the geolite2-country npm package
var downloadURL = "https://cdn.jsdelivr.net/npm/geolite2-country/GeoLite2-Country.mmdb.gz"

var (
	mu     sync.RWMutex
	reader *geoip2.Reader
)

// Init opens the GeoLite2 country database in dataDir, downloading it when
// missing. Failures are logged; the service keeps running without lookups.
func Init(dataDir string) error {
	log := logging.Named("geoip")
	dbPath := filepath.Join(dataDir, databaseFile)

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		log.Info("geoip database not found; attempting download", zap.String("path", dbPath))
		if err := downloadDatabase(dbPath); err != nil {
			log.Warn("geoip database download failed; country tallies disabled", zap.Error(err))
			return nil
		}
		log.Info("geoip database downloaded")
	}

	r, err := geoip2.Open(dbPath)
	if err != nil {
		log.Warn("could not load geoip database; country tallies disabled", zap.Error(err))
		return nil
	}

	mu.Lock()
	if reader != nil {
		_ = reader.Close()
	}
	reader = r
	mu.Unlock()

	log.Info("geoip database loaded", zap.String("path", dbPath))
	return nil
}

// Available reports whether lookups are backed by a database
func Available() bool {
	mu.RLock()
	defer mu.RUnlock()
	return reader != nil
}

// LookupCountry returns the ISO 3166-1 alpha-2 code for ip, or ""
func LookupCountry(ipStr string) string {
	mu.RLock()
	defer mu.RUnlock()
	if reader == nil {
		return ""
	}

	ip := net.ParseIP(strings.TrimSpace(ipStr))
	if ip == nil || ip.IsLoopback() || ip.IsPrivate() {
		return ""
	}

	record, err := reader.Country(ip)
	if err != nil {
		logging.L().Debug("geoip lookup error", zap.String("ip", ipStr), zap.Error(err))
		return ""
	}
	return record.Country.IsoCode
}

// CountryName returns the English name for an alpha-2 code, or the code itself
func CountryName(code string) string {
	c := countries.ByName(strings.ToUpper(code))
	if c == countries.Unknown {
		return code
	}
	return c.String()
}

// Close releases the database
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if reader == nil {
		return nil
	}
	err := reader.Close()
	reader = nil
	return err
}

// downloadDatabase fetches and decompresses the database into dbPath
func downloadDatabase(dbPath string) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return err
	}

	logging.L().Info("downloading geoip database", zap.String("url", downloadURL))

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)
	req.SetRequestURI(downloadURL)

	client := &fasthttp.Client{MaxResponseBodySize: 64 << 20}
	if err := client.DoTimeout(req, resp, 2*time.Minute); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("download failed with status %d", resp.StatusCode())
	}

	gz, err := gzip.NewReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer func() { _ = gz.Close() }()

	// Stage in a temp file, renamed on success
	tmp := dbPath + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, gz); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write database: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dbPath)
}
