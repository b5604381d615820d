package shodan

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestClientRequiresAPIKey(t *testing.T) {
	client := NewClient("", quietLogger())

	_, err := client.Search(context.Background(), "port:502", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key required")

	_, err = client.HostInfo(context.Background(), "1.2.3.4")
	assert.Error(t, err)
}

func TestClientSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shodan/host/search", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "port:502", r.URL.Query().Get("query"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"total": 1,
			"matches": [{
				"ip_str": "203.0.113.10",
				"org": "Port Authority",
				"country_name": "Netherlands",
				"vulns": ["CVE-2020-15782"],
				"data": [{"port": 502, "transport": "tcp", "_shodan": {"module": "modbus"}}]
			}]
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key", quietLogger())
	client.baseURL = server.URL

	results, err := client.Search(context.Background(), "port:502", 10)
	require.NoError(t, err)

	require.Len(t, results.Matches, 1)
	host := results.Matches[0]
	assert.Equal(t, "203.0.113.10", host.IP)
	assert.Equal(t, []string{"CVE-2020-15782"}, host.Vulns)
	require.Len(t, host.Services, 1)
	assert.Equal(t, "modbus", host.Services[0].ServiceName())
}

func TestClientHostInfoErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("bad-key", quietLogger())
	client.baseURL = server.URL

	_, err := client.HostInfo(context.Background(), "1.2.3.4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestServiceBannerName(t *testing.T) {
	var banner ServiceBanner
	assert.Equal(t, "unknown", banner.ServiceName())

	banner.Product = "nginx"
	assert.Equal(t, "nginx", banner.ServiceName())

	banner.Shodan.Module = "http"
	assert.Equal(t, "http", banner.ServiceName())
}
