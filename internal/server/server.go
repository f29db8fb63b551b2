// Package server exposes the registration service over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fjacquet/camp-registration/internal/logging"
	"fjacquet/camp-registration/internal/registration"
)

// Server routes HTTP requests to the registration service.
type Server struct {
	svc          *registration.Service
	logger       logging.Logger
	maxFileBytes int64
	mux          *http.ServeMux
}

// New creates a Server. maxFileBytes bounds every uploaded file.
func New(svc *registration.Service, logger logging.Logger, maxFileBytes int64) *Server {
	s := &Server{
		svc:          svc,
		logger:       logger,
		maxFileBytes: maxFileBytes,
		mux:          http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	s.mux.HandleFunc("/api/process-pdf", only(http.MethodPost, s.handleProcessPDF))
	s.mux.HandleFunc("/api/scrape-pdf", only(http.MethodPost, s.handleScrapePDF))

	s.mux.HandleFunc("/api/receipts/extract", only(http.MethodPost, s.handleExtract))
	s.mux.HandleFunc("/api/receipts/classify", only(http.MethodPost, s.handleClassify))
	s.mux.HandleFunc("/api/receipts/upload", only(http.MethodPost, s.handleUpload))
	s.mux.HandleFunc("/api/receipts/verify-cbe", only(http.MethodPost, s.handleVerifyCBE))

	s.mux.HandleFunc("/api/registrations", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.handleListRegistrations(w, r)
		case http.MethodPost:
			s.handleSubmit(w, r)
		default:
			WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})
	s.mux.HandleFunc("/api/payment", only(http.MethodGet, s.handlePayment))
	s.mux.HandleFunc("/api/registrations/{id}", only(http.MethodGet, s.handleGetRegistration))
	s.mux.HandleFunc("/api/registrations/{id}/receipt", only(http.MethodPut, s.handleAttachReceipt))
	s.mux.HandleFunc("/api/registrations/{id}/payment", only(http.MethodPost, s.handleVerifyPayment))
}

// only rejects every method but method with 405.
func only(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return Recovery(s.logger)(
		RequestID(
			Logger(s.logger)(
				CORS(s.mux),
			),
		),
	)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting API server", logging.F("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("Server exited")
	return nil
}
