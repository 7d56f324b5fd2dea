// Package web serves the content agents form pages.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"gitlab.com/golang-commonmark/markdown"

	"github.com/bububa/content-agents/assistant"
	"github.com/bububa/content-agents/config"
	"github.com/bububa/content-agents/newsroom"
)

const (
	AppTitle = "Content Agents"
	// FailureMessage is shown for every failed run, details go to the log
	FailureMessage = "The agents could not complete the request. Check the keys and endpoint in the sidebar and try again."
	// EmptySubjectMessage is shown when the subject field is blank
	EmptySubjectMessage = "Please enter a subject."
	// maxFormSize bounds the submitted form
	maxFormSize = 1 << 20
)

//go:embed templates/*.html
var templatesFS embed.FS

// Runner runs the flows with per request settings
type Runner interface {
	Ask(ctx context.Context, settings config.Settings, subject string) (string, error)
	Content(ctx context.Context, settings config.Settings, subject string) (*newsroom.Result, error)
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// Server renders the pages and runs one flow per form submission
type Server struct {
	settings config.Settings
	runner   Runner
	logger   *slog.Logger
	tmpl     *template.Template
	md       *markdown.Markdown
	mux      *http.ServeMux
}

// New returns a server running the flows through runner with settings as defaults
func New(settings config.Settings, runner Runner, opts ...Option) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/page.html")
	if err != nil {
		return nil, err
	}
	ret := &Server{
		settings: settings,
		runner:   runner,
		tmpl:     tmpl,
		md:       markdown.New(markdown.HTML(false), markdown.Linkify(true), markdown.Typographer(false)),
		mux:      http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	ret.mux.HandleFunc("GET /{$}", ret.index)
	ret.mux.HandleFunc("GET /assistant", ret.assistantForm)
	ret.mux.HandleFunc("POST /assistant", ret.assistantSubmit)
	ret.mux.HandleFunc("GET /content", ret.contentForm)
	ret.mux.HandleFunc("POST /content", ret.contentSubmit)
	ret.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return ret, nil
}

// Handler returns the http handler with request logging
func (s *Server) Handler() http.Handler {
	return LoggingMiddleware(s.logger)(s.mux)
}

type formValues struct {
	AzureOpenAIEndpoint   string
	AzureOpenAIVersion    string
	AzureOpenAIDeployment string
}

type page struct {
	Title       string
	Description string
	// Path is the form action, empty for pages without a form
	Path    string
	Form    formValues
	Subject string
	Error   string
	Output  template.HTML
	Posts   []newsroom.SocialMediaPost
}

func (s *Server) newPage(title string, path string) *page {
	return &page{
		Title: title,
		Path:  path,
		Form: formValues{
			AzureOpenAIEndpoint:   s.settings.LLM.Endpoint,
			AzureOpenAIVersion:    s.settings.LLM.WithDefaults().APIVersion,
			AzureOpenAIDeployment: s.settings.LLM.WithDefaults().Deployment,
		},
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, p *page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, "page.html", p); err != nil {
		s.logger.ErrorContext(r.Context(), "render page", "path", r.URL.Path, "error", err)
	}
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	p := s.newPage(AppTitle, "")
	p.Description = "Ask the web search assistant a question, or let the newsroom crew write an article and social media posts about a financial subject."
	s.render(w, r, http.StatusOK, p)
}

func (s *Server) assistantForm(w http.ResponseWriter, r *http.Request) {
	p := s.newPage(AppTitle+": Assistant", "/assistant")
	p.Subject = assistant.DefaultSubject
	s.render(w, r, http.StatusOK, p)
}

func (s *Server) contentForm(w http.ResponseWriter, r *http.Request) {
	p := s.newPage(AppTitle+": Newsroom", "/content")
	s.render(w, r, http.StatusOK, p)
}

// submission parses the form into the page and the settings of the run
func (s *Server) submission(w http.ResponseWriter, r *http.Request, p *page) (config.Settings, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseForm(); err != nil {
		s.logger.WarnContext(r.Context(), "invalid form", "error", err)
		p.Error = "The form could not be read."
		s.render(w, r, http.StatusBadRequest, p)
		return config.Settings{}, false
	}
	creds := config.Credentials{
		AzureOpenAIKey:        strings.TrimSpace(r.PostFormValue("azure_openai_key")),
		AzureOpenAIEndpoint:   strings.TrimSpace(r.PostFormValue("azure_openai_endpoint")),
		AzureOpenAIVersion:    strings.TrimSpace(r.PostFormValue("azure_openai_version")),
		AzureOpenAIDeployment: strings.TrimSpace(r.PostFormValue("azure_openai_deployment")),
		BingAPIKey:            strings.TrimSpace(r.PostFormValue("bing_api_key")),
	}
	settings := s.settings.WithCredentials(creds)
	p.Form = formValues{
		AzureOpenAIEndpoint:   settings.LLM.Endpoint,
		AzureOpenAIVersion:    settings.LLM.WithDefaults().APIVersion,
		AzureOpenAIDeployment: settings.LLM.WithDefaults().Deployment,
	}
	p.Subject = r.PostFormValue("subject")
	if strings.TrimSpace(p.Subject) == "" {
		p.Error = EmptySubjectMessage
		s.render(w, r, http.StatusBadRequest, p)
		return config.Settings{}, false
	}
	return settings, true
}

func (s *Server) runContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.settings.RunTimeout > 0 {
		return context.WithTimeout(r.Context(), s.settings.RunTimeout)
	}
	return context.WithCancel(r.Context())
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, p *page, flow string, err error) {
	s.logger.ErrorContext(r.Context(), "flow failed", "flow", flow, "error", err)
	p.Error = FailureMessage
	status := http.StatusInternalServerError
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}
	s.render(w, r, status, p)
}

func (s *Server) assistantSubmit(w http.ResponseWriter, r *http.Request) {
	p := s.newPage(AppTitle+": Assistant", "/assistant")
	settings, ok := s.submission(w, r, p)
	if !ok {
		return
	}
	ctx, cancel := s.runContext(r)
	defer cancel()
	answer, err := s.runner.Ask(ctx, settings, p.Subject)
	if err != nil {
		s.fail(w, r, p, "assistant", err)
		return
	}
	p.Output = s.markdown(answer)
	s.render(w, r, http.StatusOK, p)
}

func (s *Server) contentSubmit(w http.ResponseWriter, r *http.Request) {
	p := s.newPage(AppTitle+": Newsroom", "/content")
	settings, ok := s.submission(w, r, p)
	if !ok {
		return
	}
	ctx, cancel := s.runContext(r)
	defer cancel()
	res, err := s.runner.Content(ctx, settings, p.Subject)
	if err != nil {
		s.fail(w, r, p, "content", err)
		return
	}
	p.Output = s.markdown(res.Markdown())
	p.Posts = res.Posts()
	s.render(w, r, http.StatusOK, p)
}

// markdown renders model output, raw html in the source is escaped
func (s *Server) markdown(src string) template.HTML {
	return template.HTML(s.md.RenderToString([]byte(src)))
}
