// Package http serves the server-rendered admin pages and mounts the JSON API.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"fatture/internal/core"
	"fatture/internal/log"
	"fatture/internal/middleware/ratelimit"
	"fatture/internal/middleware/security"
	"fatture/internal/middleware/trace"
	"fatture/internal/services"
	"fatture/internal/store"
	appweb "fatture/web"
)

// InvoiceService is what the pages need from services.InvoiceService.
type InvoiceService interface {
	CreateClient(ctx context.Context, d core.ClientDraft) (core.Client, error)
	ListClients(ctx context.Context) ([]core.Client, error)
	ClientsOverview(ctx context.Context, search string, now time.Time) (services.ClientsOverview, error)
	CreateInvoice(ctx context.Context, d core.InvoiceDraft) (core.Invoice, error)
	GetInvoice(ctx context.Context, id string) (core.Invoice, error)
	ListInvoices(ctx context.Context, q store.InvoiceQuery) ([]core.Invoice, error)
	ToggleStatus(ctx context.Context, id string) (core.Invoice, error)
	InvoicesOverview(ctx context.Context, now time.Time) (services.InvoicesOverview, error)
	Dashboard(ctx context.Context) (core.DashboardSummary, error)
}

// Options configures NewServer. Service and Logger are required.
type Options struct {
	Addr    string
	Service InvoiceService
	// API is mounted under /api/v1/ when set.
	API http.Handler
	// Ready backs /readyz; nil means always ready.
	Ready              func(ctx context.Context) error
	Logger             *log.Logger
	RateLimitPerMinute int
	TrustedProxies     []string
	// Now is the clock for stats relative to the current month.
	Now func() time.Time
}

type Server struct {
	http.Server
	templates *template.Template
	svc       InvoiceService
	ready     func(ctx context.Context) error
	logger    *log.Logger
	now       func() time.Time
	started   time.Time

	limiter      *ratelimit.Limiter
	trace        *trace.Middleware
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
// A template parse failure is logged and surfaces as 500s and a failing
// readiness check rather than a startup error.
func NewServer(opts Options) (*Server, error) {
	logger := opts.Logger.WithComponent(log.ComponentHTTP)

	ips, err := security.NewIPResolver(opts.TrustedProxies...)
	if err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:           opts.Addr,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 16,
		},
		svc:     opts.Service,
		ready:   opts.Ready,
		logger:  logger,
		now:     now,
		started: time.Now(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		trace:   trace.NewMiddleware(opts.Logger, ips.ClientIP),
	}

	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Error("Failed parsing templates",
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeConfiguration)
	} else {
		s.templates = t
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /clients", s.handleClients)
	mux.HandleFunc("GET /clients/new", s.handleNewClient)
	mux.HandleFunc("POST /clients", s.handleCreateClient)
	mux.HandleFunc("GET /invoices", s.handleInvoices)
	mux.HandleFunc("GET /invoices/new", s.handleNewInvoice)
	mux.HandleFunc("POST /invoices", s.handleCreateInvoice)
	mux.HandleFunc("GET /invoices/export.csv", s.handleExportCSV)
	mux.HandleFunc("GET /invoices/export.xlsx", s.handleExportXLSX)
	mux.HandleFunc("GET /invoices/{id}", s.handleInvoiceDetail)
	mux.HandleFunc("POST /invoices/{id}/toggle", s.handleToggleStatus)

	if opts.API != nil {
		mux.Handle("/api/v1/", opts.API)
	}
	mux.HandleFunc("/", s.handleNotFound)

	onLimit := func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "Too many requests. Please try again later.").Write(w)
	}

	var h http.Handler = mux
	h = s.limiter.Middleware(ips.ClientIP, ratelimit.WritesOnly, onLimit)(h)
	h = security.Headers(security.DefaultHeadersConfig())(h)
	h = s.trace.Handler(h)
	s.Handler = h

	return s, nil
}

// Shutdown stops background goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
