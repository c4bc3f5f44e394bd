package callback

import (
	"context"
	"crypto/tls"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"streamkit/pkg/logging"
)

const (
	// DefaultListenAddress matches the local redirect URI https://localhost:3000.
	DefaultListenAddress = "127.0.0.1:3000"

	// DefaultPath is the path the redirect URI points at.
	DefaultPath = "/"

	// Timeout is how long a login waits for the redirect.
	Timeout = 10 * time.Minute
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Handler completes a login from the redirect query and reports whether it succeeded.
// (*auth.UserTokenProvider).HandleRedirect satisfies it.
type Handler func(ctx context.Context, query url.Values) bool

// Config configures a Server.
type Config struct {
	ListenAddress string
	Path          string

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// SelfSigned serves HTTPS with a throwaway certificate for localhost when
	// no key pair is configured. Browsers warn about it once per login.
	SelfSigned bool
}

// Result is the outcome of the first redirect the server received.
type Result struct {
	OK               bool
	Error            string
	ErrorDescription string
}

// Server is a short-lived local HTTP server that receives one login redirect.
type Server struct {
	cfg     Config
	handler Handler

	server   *http.Server
	listener net.Listener
	baseURL  string
	ctx      context.Context

	resultCh chan Result
	errorCh  chan error
	once     sync.Once
	stopOnce sync.Once
	done     chan struct{}

	mu      sync.Mutex
	outcome *Result

	selfSigned bool

	// linger keeps the server up after the redirect so the browser can load the outcome page.
	linger time.Duration
}

// NewServer creates a callback server that passes redirects to handler.
func NewServer(cfg Config, handler Handler) *Server {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}

	return &Server{
		cfg:      cfg,
		handler:  handler,
		resultCh: make(chan Result, 1),
		errorCh:  make(chan error, 1),
		done:     make(chan struct{}),
		linger:   2 * time.Second,
	}
}

// Start begins listening and returns the URL the server answers on.
// The server stops when ctx is cancelled.
func (s *Server) Start(ctx context.Context) (string, error) {
	useTLS := s.cfg.TLSCertFile != "" && s.cfg.TLSKeyFile != ""
	if (s.cfg.TLSCertFile == "") != (s.cfg.TLSKeyFile == "") {
		return "", errors.New("both a TLS certificate and key are required")
	}

	listener, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		return "", fmt.Errorf("failed to start callback server on %s: %w", s.cfg.ListenAddress, err)
	}

	scheme := "http"
	if useTLS || s.cfg.SelfSigned {
		cert, err := s.certificate(useTLS)
		if err != nil {
			_ = listener.Close()
			return "", err
		}
		listener = tls.NewListener(listener, &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		})
		scheme = "https"
	}

	port := listener.Addr().(*net.TCPAddr).Port
	s.listener = listener
	s.baseURL = fmt.Sprintf("%s://localhost:%d", scheme, port)
	s.ctx = ctx

	s.server = &http.Server{
		Handler:           http.HandlerFunc(s.serveHTTP),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errorCh <- err:
			default:
			}
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	logging.Debug("Callback", "Listening for the login redirect on %s", s.baseURL)
	return s.URL(), nil
}

// URL returns the full callback URL, or an empty string before Start.
func (s *Server) URL() string {
	if s.baseURL == "" {
		return ""
	}
	return s.baseURL + s.cfg.Path
}

// certificate loads the configured key pair, or generates one when none is configured.
func (s *Server) certificate(configured bool) (tls.Certificate, error) {
	if configured {
		cert, err := tls.LoadX509KeyPair(s.cfg.TLSCertFile, s.cfg.TLSKeyFile)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to load TLS key pair: %w", err)
		}
		return cert, nil
	}

	cert, err := selfSignedCertificate(time.Now())
	if err != nil {
		return tls.Certificate{}, err
	}
	s.selfSigned = true
	return cert, nil
}

// SelfSigned reports whether the running server uses a generated certificate.
func (s *Server) SelfSigned() bool {
	return s.selfSigned
}

// Wait blocks until the first redirect has been handled, the server fails, or ctx ends.
func (s *Server) Wait(ctx context.Context) (Result, error) {
	select {
	case res := <-s.resultCh:
		return res, nil
	case err := <-s.errorCh:
		return Result{}, err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Stop shuts the server down. It is safe to call more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		defer close(s.done)
		if s.server == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctx)
	})
}

// Done is closed once the server has stopped. After a redirect the server stays
// up briefly so the browser can load the outcome page.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'unsafe-inline'")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store")

	if r.URL.Path != s.cfg.Path {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	if !isRedirect(query) {
		s.renderOutcome(w)
		return
	}

	// Only the first redirect is exchanged; later ones, including replays, just
	// land on the outcome page.
	s.once.Do(func() {
		s.process(query)
	})

	http.Redirect(w, r, s.cfg.Path, http.StatusSeeOther)
}

func (s *Server) process(query url.Values) {
	res := Result{
		Error:            query.Get("error"),
		ErrorDescription: query.Get("error_description"),
	}

	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	res.OK = s.handler(ctx, query)

	s.mu.Lock()
	s.outcome = &res
	s.mu.Unlock()

	select {
	case s.resultCh <- res:
	default:
	}

	go func() {
		time.Sleep(s.linger)
		s.Stop()
	}()
}

func (s *Server) renderOutcome(w http.ResponseWriter) {
	s.mu.Lock()
	outcome := s.outcome
	s.mu.Unlock()

	name := "waiting.html"
	data := map[string]string{}
	switch {
	case outcome == nil:
	case outcome.OK:
		name = "success.html"
	default:
		name = "failure.html"
		data["Error"] = outcome.Error
		data["Description"] = outcome.ErrorDescription
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		logging.Error("Callback", err, "failed to render %s", name)
	}
}

func isRedirect(query url.Values) bool {
	return query.Has("code") || query.Has("error") || query.Has("state")
}
