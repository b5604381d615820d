package shodan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://api.shodan.io"

// ServiceBanner is one exposed service in a host report
type ServiceBanner struct {
	Port      int    `json:"port"`
	Transport string `json:"transport"`
	Product   string `json:"product"`
	Version   string `json:"version"`
	Shodan    struct {
		Module string `json:"module"`
	} `json:"_shodan"`
}

// ServiceName returns the best available name for the service
func (b ServiceBanner) ServiceName() string {
	if b.Shodan.Module != "" {
		return b.Shodan.Module
	}
	if b.Product != "" {
		return b.Product
	}
	return "unknown"
}

// HostReport is the JSON record the scan-data API returns for one host
type HostReport struct {
	IP        string          `json:"ip_str"`
	Org       string          `json:"org"`
	City      string          `json:"city"`
	Country   string          `json:"country_name"`
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	Vulns     []string        `json:"vulns"`
	Services  []ServiceBanner `json:"data"`
}

// SearchResults holds the response of a search query
type SearchResults struct {
	Matches []HostReport `json:"matches"`
	Total   int          `json:"total"`
}

// Client queries the scan-data REST API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates an API client. Requests fail until an API key is set.
func NewClient(apiKey string, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.New()
	}
	if apiKey == "" {
		logger.Warn("No Shodan API key provided. API requests will not work.")
	}

	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// Search runs a host search query and returns up to limit matches
func (c *Client) Search(ctx context.Context, query string, limit int) (*SearchResults, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("API key required for searches")
	}

	params := url.Values{
		"key":   {c.apiKey},
		"query": {query},
		"limit": {strconv.Itoa(limit)},
	}

	var results SearchResults
	if err := c.get(ctx, "/shodan/host/search", params, &results); err != nil {
		return nil, err
	}

	c.logger.Infof("Search %q returned %d matches", query, len(results.Matches))
	return &results, nil
}

// HostInfo looks up a single IP address
func (c *Client) HostInfo(ctx context.Context, ip string) (*HostReport, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("API key required for host lookups")
	}

	params := url.Values{"key": {c.apiKey}}

	var report HostReport
	if err := c.get(ctx, "/shodan/host/"+ip, params, &report); err != nil {
		return nil, err
	}

	return &report, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("querying scan-data API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("scan-data API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding API response: %w", err)
	}

	return nil
}
