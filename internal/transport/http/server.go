package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	sloghttp "github.com/samber/slog-http"

	linkageService "github.com/amrahli/newsgate/internal/modules/linkage/service"
	"github.com/amrahli/newsgate/internal/shared/config"
)

// Server exposes the status endpoints: a health check and a read-only RSS
// preview of each linkage's pending moderation queue.
type Server struct {
	cfg      *config.Config
	linkages *linkageService.Service
	logger   *slog.Logger
}

// New creates a new HTTP server
func New(cfg *config.Config, linkages *linkageService.Service) *Server {
	return &Server{
		cfg:      cfg,
		linkages: linkages,
		logger:   slog.Default(),
	}
}

// SetLogger sets the logger
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Start starts the HTTP server
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /pending/{linkage}", s.handlePendingFeed)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /", s.handleRoot)

	addr := fmt.Sprintf(":%s", s.cfg.HTTPPort)
	s.logger.Info("Status server starting", "addr", addr)

	// Use slog-http middleware with recovery
	handler := sloghttp.Recovery(mux)
	handler = sloghttp.New(s.logger)(handler)

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

func (s *Server) handlePendingFeed(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("linkage")
	if name == "" {
		http.Error(w, "Linkage name is required", http.StatusBadRequest)
		return
	}

	l, err := s.linkages.Get(name)
	if err != nil {
		http.Error(w, "Linkage not found", http.StatusNotFound)
		return
	}

	baseURL := fmt.Sprintf("%s://%s", getScheme(r), r.Host)

	feed := &feeds.Feed{
		Title:       fmt.Sprintf("Pending items: %s", name),
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/pending/%s", baseURL, name)},
		Description: fmt.Sprintf("Items awaiting moderation for linkage %s", name),
		Created:     time.Now(),
	}

	for _, it := range l.PendingItems {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          it.ID,
			Title:       fmt.Sprintf("Item %s (%s)", it.ID, it.Kind),
			Link:        &feeds.Link{Href: it.SourceURL},
			Description: it.Text,
			Author:      &feeds.Author{Name: it.SourceName},
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		s.logger.Error("Error converting pending queue to RSS", "linkage", name, "error", err)
		http.Error(w, "Failed to generate RSS", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(rss))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	html := `<!DOCTYPE html>
<html>
<head>
    <title>Newsgate</title>
    <style>
        body { font-family: Arial, sans-serif; max-width: 800px; margin: 50px auto; padding: 20px; }
        h1 { color: #333; }
        .info { background: #f5f5f5; padding: 15px; border-radius: 5px; margin: 20px 0; }
        code { background: #e8e8e8; padding: 2px 6px; border-radius: 3px; }
    </style>
</head>
<body>
    <h1>Newsgate Moderation Service</h1>
    <div class="info">
        <p>This service republishes moderated news items to Telegram channels.</p>
        <p>To preview a pending queue, use: <code>/pending/{linkage}</code></p>
        <p>Example: <code>/pending/Tech</code></p>
    </div>
    <p><a href="/health">Health Check</a></p>
</body>
</html>`
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
