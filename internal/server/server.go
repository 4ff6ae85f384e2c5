package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-invoicedoc/internal/server/contract"
	"github.com/goliatone/go-invoicedoc/pkg/document"
	"github.com/goliatone/go-invoicedoc/pkg/export"
	"github.com/goliatone/go-invoicedoc/pkg/notify"
	"github.com/goliatone/go-invoicedoc/pkg/render"
)

// PreviewCSP lets the preview load nothing but its own inline styles.
const PreviewCSP = "default-src 'none'; style-src 'unsafe-inline'"

// Notifier composes notification messages.
type Notifier interface {
	Compose(ctx context.Context, record document.Record, kind document.Kind, opts notify.Options) (notify.Message, error)
}

// Options wire the server's collaborators.
type Options struct {
	Addr   string
	Logger *slog.Logger
	Engine *render.Engine
	// Notifier defaults to a notify.Composer over Engine.
	Notifier Notifier
	// Exporter prints PDFs. The pdf route answers 503 when it is nil.
	Exporter      export.Exporter
	DefaultLocale string
	BatchLimit    int
	MaxBodyBytes  int64

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Server is the document preview API.
type Server struct {
	log        *slog.Logger
	engine     *render.Engine
	notifier   Notifier
	exporter   export.Exporter
	contract   []byte
	opts       Options
	router     chi.Router
	httpServer *http.Server
}

// New builds the server and its routes. The embedded API contract is loaded
// and validated up front.
func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		return nil, errors.New("server: logger is required")
	}
	if opts.Engine == nil {
		return nil, errors.New("server: render engine is required")
	}
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if opts.BatchLimit <= 0 {
		opts.BatchLimit = render.DefaultBatchLimit
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 15 * time.Second
	}

	notifier := opts.Notifier
	if notifier == nil {
		composer, err := notify.New(opts.Engine)
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		notifier = composer
	}

	doc, err := contract.Load(context.Background())
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	contractJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("server: encode contract: %w", err)
	}

	s := &Server{
		log:      opts.Logger,
		engine:   opts.Engine,
		notifier: notifier,
		exporter: opts.Exporter,
		contract: contractJSON,
		opts:     opts,
	}
	s.router = s.routes()
	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.router,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  opts.IdleTimeout,
	}
	return s, nil
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router exposes the chi router so callers can walk the registered routes.
func (s *Server) Router() chi.Routes {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(RequestLogger(s.log))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/templates", s.handleTemplates)
	r.Get("/openapi.json", s.handleContract)

	r.Route("/documents/{kind}", func(r chi.Router) {
		r.Use(s.limitBody)
		r.Post("/preview", s.handlePreview)
		r.Post("/pdf", s.handlePDF)
		r.Post("/notification", s.handleNotification)
		r.Post("/batch", s.handleBatch)
	})
	return r
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
		next.ServeHTTP(w, r)
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server started", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info("HTTP server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}
