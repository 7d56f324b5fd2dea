// Package searxng searches a SearxNG instance
package searxng

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bububa/content-agents/tools"
	"github.com/bububa/content-agents/tools/websearch"
)

type Category = string

const (
	EmptyCategory       Category = ""
	GeneralCategory     Category = "general"
	NewsCategory        Category = "news"
	SocialMediaCategory Category = "social_media"
)

// Input Schema for input to a tool for searching for information, news, references, and other content using SearxNG.
type Input struct {
	// Queries list of search queries.
	Queries []string `json:"queries" jsonschema:"title=queries,description=List of search queries."`
	// Category: Category of the search queries."
	Category Category `json:"category,omitempty" jsonschema:"title=category,enum=general,enum=news,enum=social_media,default=general,description=Category of the search queries."`
}

func NewInput(category Category, queries []string) *Input {
	return &Input{
		Queries:  queries,
		Category: category,
	}
}

// SearchResultItem represents a single search result item
type SearchResultItem struct {
	// URL The URL of the search result
	URL string `json:"url" jsonschema:"title=url,description=The URL of the search result"`
	// Title The title of the search result
	Title string `json:"title" jsonschema:"title=title,description=The title of the search result"`
	// Content The content snippet of the search result
	Content string `json:"content,omitempty" jsonschema:"title=content,description=The content snippet of the search result"`
	// Query The query used to obtain this search result
	Query string `json:"query" jsonschema:"title=query,description=The query used to obtain this search result"`
	// Category The category of the search result
	Category Category `json:"category,omitempty" jsonschema:"title=category,description=The category of the search result"`
	// Metadata additional metadata of the search result
	Metadata string `json:"metadata,omitempty" jsonschema:"title=metadata,description=Additional metadata of the search result"`
	// PublishedDate The published date of the search result
	PublishedDate string `json:"publishedDate,omitempty" jsonschema:"title=published_date,description=The published date of the search result"`
}

// SearchResponse represents the entire response from the local search engine
type SearchResponse struct {
	Query           string             `json:"query"`
	NumberOfResults int                `json:"number_of_results"`
	Results         []SearchResultItem `json:"results"`
}

// Output represents the output of the SearxNG search tool.
type Output struct {
	// Results List of search result items
	Results []SearchResultItem `json:"results" jsonschema:"title=results,description=List of search result items"`
	// Category The category of the search results
	Category Category `json:"category,omitempty" jsonschema:"title=category,description=Category of the search results."`
}

func (s Output) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

type Config struct {
	toolOptions []tools.Option
	language    string
	baseURL     string
	maxResults  int
	httpClient  *http.Client
}

// SearxngSearch is a tool for performing searches on SearxNG based on the provided queries and category.
type SearxngSearch struct {
	*tools.Func[Input, *Output]
	Config
}

var (
	_ tools.Tool          = (*SearxngSearch)(nil)
	_ websearch.Connector = (*SearxngSearch)(nil)
)

func New(opts ...Option) *SearxngSearch {
	ret := new(SearxngSearch)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.maxResults == 0 {
		ret.maxResults = 10
	}
	if ret.httpClient == nil {
		ret.httpClient = http.DefaultClient
	}
	toolOpts := append([]tools.Option{
		tools.WithTitle("searxng_search"),
		tools.WithDescription("Search for information, news, references, and other content using SearxNG."),
	}, ret.toolOptions...)
	ret.Func = tools.NewFunc(ret.Run, toolOpts...)
	return ret
}

// Run Runs the SearxNGTool synchronously with the given parameters
func (t *SearxngSearch) Run(ctx context.Context, input *Input) (*Output, error) {
	if len(input.Queries) == 0 {
		return nil, errors.New("no search queries")
	}
	ret := &Output{
		Category: input.Category,
		Results:  make([]SearchResultItem, 0, t.maxResults),
	}
	seen := make(map[string]struct{})
	for _, query := range input.Queries {
		items, err := t.fetchSearchResults(ctx, query, input.Category)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if item.URL == "" || item.Title == "" || item.Content == "" {
				continue
			}
			if _, found := seen[item.URL]; found {
				continue
			}
			seen[item.URL] = struct{}{}
			ret.Results = append(ret.Results, item)
			if len(ret.Results) >= t.maxResults {
				return ret, nil
			}
		}
	}
	return ret, nil
}

// Search implements websearch.Connector
func (t *SearxngSearch) Search(ctx context.Context, query string, count int, offset int) ([]websearch.Result, error) {
	out, err := t.Run(ctx, NewInput(GeneralCategory, []string{query}))
	if err != nil {
		return nil, err
	}
	items := out.Results
	if offset >= len(items) {
		return nil, nil
	}
	items = items[offset:]
	if count > 0 && len(items) > count {
		items = items[:count]
	}
	ret := make([]websearch.Result, 0, len(items))
	for _, item := range items {
		ret = append(ret, websearch.Result{
			Title:     item.Title,
			URL:       item.URL,
			Snippet:   item.Content,
			Published: item.PublishedDate,
		})
	}
	return ret, nil
}

// fetchSearchResults queries the local search engine and returns the parsed search response
func (t *SearxngSearch) fetchSearchResults(ctx context.Context, query string, category Category) ([]SearchResultItem, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("safesearch", "0")
	values.Set("format", "json")
	values.Set("engines", "bing,duckduckgo,google,startpage,yandex")
	if t.language != "" {
		values.Set("language", t.language)
	}
	if category != "" {
		values.Set("categories", category)
	}
	searchURL := fmt.Sprintf("%s/search?%s", t.baseURL, values.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}

	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error querying local search engine: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from search engine: %d", httpResp.StatusCode)
	}

	var searchResponse SearchResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&searchResponse); err != nil {
		return nil, err
	}
	for idx := range searchResponse.Results {
		searchResponse.Results[idx].Query = query
	}

	return searchResponse.Results, nil
}
