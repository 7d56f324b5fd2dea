// Package websearch is the web search engine plugin: one search function over a pluggable connector.
package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/bububa/content-agents/tools"
)

const (
	// DefaultTitle is the function name of the search tool
	DefaultTitle = "search"
	// DefaultCount is the number of results returned when the model does not ask for more
	DefaultCount = 5
	// MaxCount caps the number of results returned to the model
	MaxCount = 20
)

// ErrEmptyQuery is returned for blank queries
var ErrEmptyQuery = errors.New("empty search query")

// Result is one web search hit
type Result struct {
	// Title is the page title
	Title string `json:"title"`
	// URL is the page address
	URL string `json:"url"`
	// Snippet is the content snippet returned by the engine
	Snippet string `json:"snippet,omitempty"`
	// Published is the published or crawl date when known
	Published string `json:"published,omitempty"`
}

// Connector is a search engine backend
type Connector interface {
	Search(ctx context.Context, query string, count int, offset int) ([]Result, error)
}

// Input of the search function
type Input struct {
	// Query is the search query
	Query string `json:"query" jsonschema:"title=query,description=The search query."`
	// Count is the number of results to return
	Count int `json:"count,omitempty" jsonschema:"title=count,description=Number of results to return. Defaults to 5."`
	// Offset is the number of results to skip
	Offset int `json:"offset,omitempty" jsonschema:"title=offset,description=Number of results to skip."`
}

// Output of the search function
type Output struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
}

func (o Output) String() string {
	bs, _ := json.Marshal(o)
	return string(bs)
}

// New returns the search tool over connector
func New(connector Connector, opts ...tools.Option) *tools.Func[Input, *Output] {
	opts = append([]tools.Option{
		tools.WithTitle(DefaultTitle),
		tools.WithDescription("Search the web for the latest information on a topic. Returns page titles, URLs and snippets."),
	}, opts...)
	return tools.NewFunc(func(ctx context.Context, input *Input) (*Output, error) {
		return Search(ctx, connector, input)
	}, opts...)
}

// Search normalizes input and queries connector
func Search(ctx context.Context, connector Connector, input *Input) (*Output, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	count := input.Count
	if count <= 0 {
		count = DefaultCount
	}
	count = min(count, MaxCount)
	results, err := connector.Search(ctx, query, count, max(input.Offset, 0))
	if err != nil {
		return nil, err
	}
	if len(results) > count {
		results = results[:count]
	}
	return &Output{Query: query, Results: results}, nil
}
