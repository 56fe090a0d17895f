package parble

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	testURL    = "https://api.parble.com/v1/"
	testAPIKey = "FooBar"
	testFileID = "636baf52b9753d4ce1e210d0"
)

const loremText = `Lorem ipsum dolor sit amet, consectetur adipiscing elit.
Donec elementum in turpis et interdum.
Praesent a dolor condimentum nisi pretium sodales sollicitudin eu augue.`

// newTestServer starts a server whose base URL mimics the /v1/ API prefix
func newTestServer(t *testing.T, handler http.Handler) (*httptest.Server, *Settings) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	settings, err := LoadSettings(server.URL+"/v1", testAPIKey, 0)
	require.NoError(t, err)

	return server, settings
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	_, settings := newTestServer(t, handler)
	return NewClient(settings, zerolog.Nop())
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PARBLE_URL", "")
	t.Setenv("PARBLE_API_KEY", "")
	t.Setenv("PARBLE_DEFAULT_TIMEOUT", "")
}
