package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"page_structure/application/extractor"
	"page_structure/application/scraper"
	"page_structure/domain/entities"
	"page_structure/domain/interfaces"
)

// Server exposes scraping over HTTP
type Server struct {
	scraper interfaces.PageScraper
	metrics http.Handler
	format  entities.TreeFormat
	logger  *logrus.Logger
}

// NewServer - metrics may be nil, format is the default tree format
func NewServer(s interfaces.PageScraper, metrics http.Handler, format entities.TreeFormat, logger *logrus.Logger) *Server {
	return &Server{
		scraper: s,
		metrics: metrics,
		format:  format,
		logger:  logger,
	}
}

func (s *Server) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/scrape", s.handleScrape).Methods(http.MethodGet)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	}
}

// Router returns a router with every route registered
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	s.RegisterRoutes(r)
	return r
}

// ListenAndServe serves until ctx is canceled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down http server: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}
	format := s.format
	if f := r.URL.Query().Get("format"); f != "" {
		format = entities.TreeFormat(f)
	}
	if format != entities.TreeFormatJSON && format != entities.TreeFormatHTML {
		http.Error(w, fmt.Sprintf("unknown format %q", format), http.StatusBadRequest)
		return
	}

	page, err := s.scraper.Scrape(r.Context(), url)
	if err != nil {
		if errors.Is(err, scraper.ErrInvalidURL) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.logger.WithError(err).WithField("url", url).Error("Scrape request failed")
		http.Error(w, "scrape failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	tree, err := extractor.RenderTree(page.ElementTreeTrimmed, format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if format == entities.TreeFormatHTML {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.Write([]byte(tree))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	tasks := s.scraper.Status()
	if tasks == nil {
		tasks = []entities.ScrapeTask{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(tasks); err != nil {
		s.logger.WithError(err).Warn("Failed to encode status")
	}
}
