package parble

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment variable read by LoadSettings
	EnvPrefix = "PARBLE"

	// DefaultTimeout applies to every request that does not override it
	DefaultTimeout = 30 * time.Second
)

// Secret holds a credential that must never end up in logs
type Secret string

// String masks the secret
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "**********"
}

// MarshalText masks the secret in structured output
func (s Secret) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Value returns the raw secret
func (s Secret) Value() string {
	return string(s)
}

// Settings holds the connection details of a Parble API
type Settings struct {
	// URL always ends with a single "/"
	URL            string
	APIKey         Secret
	DefaultTimeout time.Duration

	base *url.URL
}

// LoadSettings resolves the settings from the given values, falling back to
// PARBLE_URL, PARBLE_API_KEY and PARBLE_DEFAULT_TIMEOUT (seconds) for every
// empty argument. All invalid fields are reported in a single ConfigurationError.
func LoadSettings(rawURL, apiKey string, timeout time.Duration) (*Settings, error) {
	var seconds string
	if timeout > 0 {
		seconds = strconv.FormatFloat(timeout.Seconds(), 'f', -1, 64)
	}
	return ParseSettings(rawURL, apiKey, seconds)
}

// ParseSettings is LoadSettings with the timeout given as text seconds, the way
// config files and the environment carry it. An unparsable timeout is reported
// as an invalid default_timeout along with any other invalid field.
func ParseSettings(rawURL, apiKey, timeout string) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetDefault("default_timeout", int(DefaultTimeout/time.Second))
	for _, key := range []string{"url", "api_key", "default_timeout"} {
		_ = v.BindEnv(key)
	}

	if rawURL != "" {
		v.Set("url", rawURL)
	}
	if apiKey != "" {
		v.Set("api_key", apiKey)
	}
	if strings.TrimSpace(timeout) != "" {
		v.Set("default_timeout", strings.TrimSpace(timeout))
	}

	var invalid []string

	base, err := parseBaseURL(v.GetString("url"))
	if err != nil {
		invalid = append(invalid, "url")
	}

	key := strings.TrimSpace(v.GetString("api_key"))
	if key == "" {
		invalid = append(invalid, "api_key")
	}

	seconds, err := cast.ToFloat64E(v.Get("default_timeout"))
	if err != nil || seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		invalid = append(invalid, "default_timeout")
	}

	if len(invalid) > 0 {
		return nil, &ConfigurationError{Fields: invalid}
	}

	return &Settings{
		URL:            base.String(),
		APIKey:         Secret(key),
		DefaultTimeout: time.Duration(seconds * float64(time.Second)),
		base:           base,
	}, nil
}

// parseBaseURL accepts absolute http(s) URLs and normalizes the path to end
// with exactly one "/" so relative references resolve below it.
func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrConfiguration
	}
	// A query or fragment would end up after the trailing "/"
	if u.RawQuery != "" || u.ForceQuery || u.Fragment != "" {
		return nil, ErrConfiguration
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/"
	u.RawPath = ""
	return u, nil
}

// baseURL returns the parsed base URL
func (s *Settings) baseURL() *url.URL {
	if s.base == nil {
		s.base, _ = parseBaseURL(s.URL)
	}
	return s.base
}
