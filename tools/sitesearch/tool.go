// Package sitesearch answers semantic queries against the content of a single web site
package sitesearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"

	"github.com/bububa/content-agents/tools"
	"github.com/bububa/content-agents/tools/splitter"
	"github.com/bububa/content-agents/tools/webscraper"
)

const DefaultTopK = 3

var ErrNoEmbedding = errors.New("sitesearch: embedding function is required")

// Input of the site search function
type Input struct {
	// Query is the question to answer from the site content
	Query string `json:"query" jsonschema:"title=query,description=The semantic search query." validate:"required"`
	// URL is the site page to search
	URL string `json:"url" jsonschema:"title=url,description=URL of the web site page to search in." validate:"required,url"`
	// TopK is the number of passages to return
	TopK int `json:"top_k,omitempty" jsonschema:"title=top_k,description=Number of passages to return. Defaults to 3."`
}

// Passage is one matching chunk of the site content
type Passage struct {
	Content    string  `json:"content"`
	Similarity float32 `json:"similarity"`
}

// Output of the site search function
type Output struct {
	URL      string    `json:"url"`
	Title    string    `json:"title,omitempty"`
	Passages []Passage `json:"passages"`
}

func (o Output) String() string {
	bs, _ := json.Marshal(o)
	return string(bs)
}

type Option func(*SiteSearch)

func WithScraper(scraper *webscraper.Webscraper) Option {
	return func(s *SiteSearch) {
		s.scraper = scraper
	}
}

func WithSplitter(sp *splitter.Splitter) Option {
	return func(s *SiteSearch) {
		s.splitter = sp
	}
}

func WithDB(db *chromem.DB) Option {
	return func(s *SiteSearch) {
		s.db = db
	}
}

func WithToolOptions(opts ...tools.Option) Option {
	return func(s *SiteSearch) {
		s.toolOptions = append(s.toolOptions, opts...)
	}
}

// SiteSearch scrapes a page once, indexes its sentence chunks in an in-memory
// vector collection and queries them.
type SiteSearch struct {
	*tools.Func[Input, *Output]
	toolOptions []tools.Option
	embed       chromem.EmbeddingFunc
	scraper     *webscraper.Webscraper
	splitter    *splitter.Splitter
	db          *chromem.DB
	mu          sync.Mutex
	titles      map[string]string
}

func New(embed chromem.EmbeddingFunc, opts ...Option) *SiteSearch {
	ret := &SiteSearch{
		embed:  embed,
		titles: make(map[string]string),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.scraper == nil {
		ret.scraper = webscraper.New()
	}
	if ret.splitter == nil {
		ret.splitter = splitter.New(splitter.WithChunkSize(120), splitter.WithOverlap(15))
	}
	if ret.db == nil {
		ret.db = chromem.NewDB()
	}
	toolOpts := append([]tools.Option{
		tools.WithTitle("site_search"),
		tools.WithDescription("Semantic search within the content of a specific web site page. Use it to find facts and figures on a known site."),
	}, ret.toolOptions...)
	ret.Func = tools.NewFunc(ret.Run, toolOpts...)
	return ret
}

func (s *SiteSearch) Run(ctx context.Context, input *Input) (*Output, error) {
	if s.embed == nil {
		return nil, ErrNoEmbedding
	}
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, errors.New("empty query")
	}
	col, title, err := s.collection(ctx, input.URL)
	if err != nil {
		return nil, err
	}
	ret := &Output{URL: input.URL, Title: title}
	topK := input.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	topK = min(topK, col.Count())
	if topK == 0 {
		return ret, nil
	}
	results, err := col.Query(ctx, query, topK, nil, nil)
	if err != nil {
		return nil, err
	}
	ret.Passages = make([]Passage, 0, len(results))
	for _, res := range results {
		ret.Passages = append(ret.Passages, Passage{Content: res.Content, Similarity: res.Similarity})
	}
	return ret, nil
}

// collection returns the indexed collection of link, scraping and indexing it on first use
func (s *SiteSearch) collection(ctx context.Context, link string) (*chromem.Collection, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := uuid.NewSHA1(uuid.NameSpaceURL, []byte(link)).String()
	if col := s.db.GetCollection(name, s.embed); col != nil {
		return col, s.titles[name], nil
	}
	page, err := s.scraper.Run(ctx, webscraper.NewInput(link, false))
	if err != nil {
		return nil, "", fmt.Errorf("sitesearch: scrape %s: %w", link, err)
	}
	chunks := s.splitter.Split(page.Content)
	docs := make([]chromem.Document, 0, len(chunks))
	for idx, chunk := range chunks {
		docs = append(docs, chromem.Document{
			ID:       uuid.NewString(),
			Content:  chunk,
			Metadata: map[string]string{"url": link, "chunk": fmt.Sprint(idx)},
		})
	}
	col, err := s.db.CreateCollection(name, map[string]string{"url": link}, s.embed)
	if err != nil {
		return nil, "", err
	}
	for _, doc := range docs {
		if err := col.AddDocument(ctx, doc); err != nil {
			err = fmt.Errorf("sitesearch: index %s: %w", link, err)
			if delErr := s.db.DeleteCollection(name); delErr != nil {
				err = errors.Join(err, fmt.Errorf("sitesearch: drop collection %s: %w", name, delErr))
			}
			return nil, "", err
		}
	}
	if page.Metadata != nil {
		s.titles[name] = page.Metadata.Title
	}
	return col, s.titles[name], nil
}
