// Package webscraper fetches a web page and returns its main content as markdown
package webscraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"
	"github.com/gabriel-vasile/mimetype"

	"github.com/bububa/content-agents/tools"
)

var (
	ErrContentTooLarge = errors.New("content length exceeds maximum")
	ErrNotHTML         = errors.New("content is not a html page")
	blankLinesRegex    = regexp.MustCompile(`(\r?\n){3,}`)
)

// Input schema for the webpage scraper.
type Input struct {
	// URL of the webpage to scrape.
	URL string `json:"url" jsonschema:"title=url,description=URL of the webpage to scrape." validate:"required,url"`
	// IncludeLinks Whether to preserve hyperlinks in the markdown output.
	IncludeLinks bool `json:"include_links,omitempty" jsonschema:"title=include_links,description=Whether to preserve hyperlinks in the markdown output."`
}

func NewInput(link string, includeLinks bool) *Input {
	return &Input{
		URL:          link,
		IncludeLinks: includeLinks,
	}
}

// Metadata Schema for webpage metadata
type Metadata struct {
	// Title is the title of the webpage.
	Title string `json:"title,omitempty" jsonschema:"title=title,description=The title of the webpage."`
	// Author is the author of the webpage content.
	Author string `json:"author,omitempty" jsonschema:"title=author,description=The Author of the webpage."`
	// Description is the meta description of the webpage.
	Description string `json:"description,omitempty" jsonschema:"title=description,description=The meta description of the webpage."`
	// Keywords is the meta keywords of the webpage.
	Keywords string `json:"keywords,omitempty" jsonschema:"title=keywords,description=The meta keywords of the webpage."`
	// SiteName is the name of the website.
	SiteName string `json:"sitename,omitempty" jsonschema:"title=sitename,description=The name of the website."`
	// Domain is the domain name of the website.
	Domain string `json:"domain,omitempty" jsonschema:"title=domain,description=The domain name of the website."`
}

// Output Schema for the output of the webpage scraper.
type Output struct {
	// Content The scraped content in markdown format.
	Content string `json:"content,omitempty" jsonschema:"title=content,description=The scraped content in markdown format."`
	// Metadata is metadata about the scraped webpage.
	Metadata *Metadata `json:"metadata,omitempty" jsonschema:"title=metadata,description=Metadata about the webpage."`
}

func (o Output) String() string {
	bs, _ := json.Marshal(o)
	return string(bs)
}

type Config struct {
	toolOptions []tools.Option
	userAgent   string
	timeout     time.Duration
	// maxContentLength Maximum content length in bytes to process.
	maxContentLength int64
	httpClient       *http.Client
}

// Webscraper is the "scrape" function of the web scraping plugin
type Webscraper struct {
	*tools.Func[Input, *Output]
	Config
}

func New(opts ...Option) *Webscraper {
	ret := new(Webscraper)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.userAgent == "" {
		ret.userAgent = DefaultUserAgent
	}
	if ret.timeout == 0 {
		ret.timeout = DefaultTimeout
	}
	if ret.maxContentLength == 0 {
		ret.maxContentLength = DefaultMaxContentLength
	}
	if ret.httpClient == nil {
		ret.httpClient = &http.Client{Timeout: ret.timeout}
	}
	toolOpts := append([]tools.Option{
		tools.WithTitle("scrape"),
		tools.WithDescription("Scrape a webpage by URL and return its main content as markdown together with the page metadata."),
	}, ret.toolOptions...)
	ret.Func = tools.NewFunc(ret.Run, toolOpts...)
	return ret
}

func (t *Webscraper) Run(ctx context.Context, input *Input) (*Output, error) {
	parsedURL, err := url.ParseRequestURI(input.URL)
	if err != nil {
		return nil, err
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme: %s", parsedURL.Scheme)
	}
	doc, err := t.fetch(ctx, parsedURL.String())
	if err != nil {
		return nil, err
	}
	meta := &Metadata{Domain: parsedURL.Host}
	t.extractMetadata(doc, meta)
	if !input.IncludeLinks {
		doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
			sel.ReplaceWithHtml(html.EscapeString(sel.Text()))
		})
	}
	mainContent := t.extractMainContent(doc)
	markdown, err := htmltomarkdown.ConvertString(
		mainContent,
		converter.WithDomain(fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)),
	)
	if err != nil {
		return nil, err
	}
	return &Output{
		Content:  CleanMarkdown(markdown),
		Metadata: meta,
	}, nil
}

func (t *Webscraper) fetch(ctx context.Context, link string) (*goquery.Document, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("User-Agent", t.userAgent)
	httpReq.Header.Set("Accept", DefaultAccept)
	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", link, httpResp.StatusCode)
	}
	if httpResp.ContentLength > t.maxContentLength {
		return nil, fmt.Errorf("%w of %d bytes", ErrContentTooLarge, t.maxContentLength)
	}
	body, err := io.ReadAll(io.LimitReader(httpResp.Body, t.maxContentLength+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > t.maxContentLength {
		return nil, fmt.Errorf("%w of %d bytes", ErrContentTooLarge, t.maxContentLength)
	}
	if mime := mimetype.Detect(body); !mime.Is("text/html") && !mime.Is("application/xhtml+xml") {
		return nil, fmt.Errorf("%w: %s", ErrNotHTML, mime.String())
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

// extractMetadata extracts metadata from the webpage
func (t *Webscraper) extractMetadata(doc *goquery.Document, meta *Metadata) {
	meta.Title = strings.TrimSpace(doc.Find("head title").First().Text())
	meta.Author, _ = doc.Find("meta[name='author']").Attr("content")
	meta.Description, _ = doc.Find("meta[name='description']").Attr("content")
	meta.Keywords, _ = doc.Find("meta[name='keywords']").Attr("content")
	meta.SiteName, _ = doc.Find("meta[property='og:site_name']").Attr("content")
}

// extractMainContent extracts the main content from the webpage using custom heuristics
func (t *Webscraper) extractMainContent(doc *goquery.Document) string {
	for _, tag := range []string{"script", "style", "nav", "header", "footer", "noscript", "iframe"} {
		doc.Find(tag).Remove()
	}
	contentCandidates := []string{
		"main",
		"article",
		"#content, #main",
		".content, .main",
		"body",
	}
	for _, selector := range contentCandidates {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if txt, err := sel.Html(); err == nil && strings.TrimSpace(txt) != "" {
			return txt
		}
	}
	ret, _ := doc.Html()
	return ret
}

// CleanMarkdown removes excessive whitespace and normalizes formatting
func CleanMarkdown(content string) string {
	content = blankLinesRegex.ReplaceAllString(content, "\n\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n")) + "\n"
}
