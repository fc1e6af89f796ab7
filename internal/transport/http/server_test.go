package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	itemDomain "github.com/amrahli/newsgate/internal/modules/item/domain"
	linkageDomain "github.com/amrahli/newsgate/internal/modules/linkage/domain"
	linkageRepo "github.com/amrahli/newsgate/internal/modules/linkage/repository"
	linkageService "github.com/amrahli/newsgate/internal/modules/linkage/service"
	"github.com/amrahli/newsgate/internal/shared/config"
)

func newServerFixture(t *testing.T) (*Server, *linkageService.Service, linkageRepo.Repository) {
	t.Helper()
	repo, err := linkageRepo.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	linkages := linkageService.New(repo)
	srv := New(&config.Config{HTTPPort: "8080"}, linkages)
	return srv, linkages, repo
}

func testMux(s *Server) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /pending/{linkage}", s.handlePendingFeed)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /", s.handleRoot)
	return mux
}

func TestHealthEndpoint(t *testing.T) {
	srv, _, _ := newServerFixture(t)

	rec := httptest.NewRecorder()
	testMux(srv).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestPendingFeed(t *testing.T) {
	srv, linkages, repo := newServerFixture(t)

	if err := linkages.Create("Tech", []linkageDomain.Resource{{URL: "https://t.me/x"}}, 111, "@pub"); err != nil {
		t.Fatal(err)
	}

	err := repo.Update(func(doc *linkageDomain.Document) error {
		doc.Linkages["Tech"].PendingItems = append(doc.Linkages["Tech"].PendingItems, itemDomain.NewsItem{
			ID:         "5",
			Kind:       itemDomain.ItemKindRss,
			Text:       "Breaking news",
			SourceURL:  "https://example.com/post",
			SourceName: "example",
		})
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	testMux(srv).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pending/Tech", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "application/rss+xml") {
		t.Errorf("content type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"Pending items: Tech", "Breaking news", "https://example.com/post"} {
		if !strings.Contains(body, want) {
			t.Errorf("feed missing %q:\n%s", want, body)
		}
	}
}

func TestPendingFeedUnknownLinkage(t *testing.T) {
	srv, _, _ := newServerFixture(t)

	rec := httptest.NewRecorder()
	testMux(srv).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pending/Nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
