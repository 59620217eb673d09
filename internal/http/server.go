package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"gestor/internal/cache"
	"gestor/internal/core"
	applog "gestor/internal/log"
	"gestor/internal/services"
	appweb "gestor/web"
)

// priceStore is the price table and settings surface of the repository.
type priceStore interface {
	CreatePriceEntry(ctx context.Context, e core.PriceEntry) (core.PriceEntry, error)
	UpdatePriceEntry(ctx context.Context, e core.PriceEntry) error
	DeletePriceEntry(ctx context.Context, id string) error
	ListPriceEntries(ctx context.Context) ([]core.PriceEntry, error)
	GetSettings(ctx context.Context) (core.CompanySettings, error)
	PutSettings(ctx context.Context, s core.CompanySettings) error
}

// Deps bundles everything the server serves from.
type Deps struct {
	Ledger         *services.LedgerService
	Orders         *services.OrderService
	Backup         *services.BackupService
	Prices         priceStore
	Hub            *services.SnapshotHub
	InitialBalance core.Money
}

type Server struct {
	http.Server
	templates *template.Template

	ledger         *services.LedgerService
	orders         *services.OrderService
	backup         *services.BackupService
	prices         priceStore
	initialBalance core.Money

	rateLimiter  *rateLimiter
	summaryCache *cache.LRU[core.Summary]
	cacheManager *cache.Manager
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run
// http.Server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		ledger:         deps.Ledger,
		orders:         deps.Orders,
		backup:         deps.Backup,
		prices:         deps.Prices,
		initialBalance: deps.InitialBalance,
		rateLimiter:    newRateLimiter(60, time.Minute),
		summaryCache:   cache.NewLRU[core.Summary](100, 5*time.Minute),
		cacheManager:   cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Every ledger write invalidates the cached dashboard summaries.
	if deps.Hub != nil {
		deps.Hub.SubscribeLedger(func([]core.Transaction) {
			s.summaryCache.Purge()
		})
	}

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(template.FuncMap{
		"brl":         formatBRL,
		"typeLabel":   core.TypeLabel,
		"statusLabel": core.StatusLabel,
		"sourceLabel": core.SourceLabel,
	}).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets served from the embedded FS.
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	// Dashboard partials
	mux.HandleFunc("/ui/summary", s.withSecurityHeaders(s.handleSummary))
	mux.HandleFunc("/ui/categories", s.withSecurityHeaders(s.handleCategories))
	mux.HandleFunc("/ui/transactions", s.withSecurityHeaders(s.handleTransactionList))

	// Ledger
	mux.HandleFunc("/transactions", s.withSecurityHeaders(s.handleTransactions))
	mux.HandleFunc("/transactions/", s.withSecurityHeaders(s.handleTransactionByID))

	// Orders
	mux.HandleFunc("/orders", s.withSecurityHeaders(s.handleOrders))
	mux.HandleFunc("/orders/", s.withSecurityHeaders(s.handleOrderByID))

	// Price table and settings
	mux.HandleFunc("/pricetable", s.withSecurityHeaders(s.handlePriceTable))
	mux.HandleFunc("/pricetable/", s.withSecurityHeaders(s.handlePriceEntryByID))
	mux.HandleFunc("/settings", s.withSecurityHeaders(s.handleSettings))

	// Reports and backup
	mux.HandleFunc("/export/ledger", s.withSecurityHeaders(s.handleExportLedger))
	mux.HandleFunc("/backup", s.withSecurityHeaders(s.handleBackupExport))
	mux.HandleFunc("/backup/restore", s.withSecurityHeaders(s.handleBackupRestore))

	return s
}

// Shutdown stops the cleanup goroutines and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting and request
// logging.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP)

		if mutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP, applog.FieldMethod, r.Method, applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

type requestIDKey struct{}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
