// Package bing is a Bing Web Search v7 connector
package bing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bububa/content-agents/tools/websearch"
)

// DefaultBaseURL is the Bing Web Search v7 endpoint
const DefaultBaseURL = "https://api.bing.microsoft.com/v7.0/search"

// ErrMissingKey is returned when no subscription key is configured
var ErrMissingKey = errors.New("bing: missing api key")

type Option func(*Connector)

func WithBaseURL(baseURL string) Option {
	return func(c *Connector) {
		c.baseURL = baseURL
	}
}

func WithMarket(market string) Option {
	return func(c *Connector) {
		c.market = market
	}
}

func WithHttpClient(clt *http.Client) Option {
	return func(c *Connector) {
		c.httpClient = clt
	}
}

// Connector queries Bing Web Search
type Connector struct {
	apiKey     string
	baseURL    string
	market     string
	httpClient *http.Client
}

var _ websearch.Connector = (*Connector)(nil)

// New returns a Bing connector authenticated with apiKey
func New(apiKey string, opts ...Option) *Connector {
	ret := &Connector{apiKey: apiKey}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.baseURL == "" {
		ret.baseURL = DefaultBaseURL
	}
	if ret.httpClient == nil {
		ret.httpClient = http.DefaultClient
	}
	return ret
}

type searchResponse struct {
	WebPages struct {
		Value []struct {
			Name            string `json:"name"`
			URL             string `json:"url"`
			Snippet         string `json:"snippet"`
			DateLastCrawled string `json:"dateLastCrawled"`
		} `json:"value"`
	} `json:"webPages"`
}

// Search implements websearch.Connector
func (c *Connector) Search(ctx context.Context, query string, count int, offset int) ([]websearch.Result, error) {
	if c.apiKey == "" {
		return nil, ErrMissingKey
	}
	values := url.Values{}
	values.Set("q", query)
	values.Set("count", strconv.Itoa(count))
	values.Set("offset", strconv.Itoa(offset))
	if c.market != "" {
		values.Set("mkt", c.market)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", c.baseURL, values.Encode()), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error querying bing: %w", err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from bing: %d", httpResp.StatusCode)
	}
	var resp searchResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, err
	}
	ret := make([]websearch.Result, 0, len(resp.WebPages.Value))
	for _, v := range resp.WebPages.Value {
		ret = append(ret, websearch.Result{
			Title:     v.Name,
			URL:       v.URL,
			Snippet:   v.Snippet,
			Published: v.DateLastCrawled,
		})
	}
	return ret, nil
}
