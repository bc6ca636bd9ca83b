package book

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/z-fairytale/backend/internal/model/book"
)

func setupRouter() *chi.Mux {
	books := []book.Book{
		{ID: "1", Title: "The Little Mermaid"},
		{ID: "2", Title: "Snow White"},
	}
	r := chi.NewRouter()
	New(book.NewMemoryStore(books), book.NewIndex(books)).RegisterRoutes(r)
	return r
}

func TestListLabels(t *testing.T) {
	r := setupRouter()
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/books", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var payload labelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	want := []string{"Snow White (2)", "The Little Mermaid (1)"}
	if payload.Count != 2 || len(payload.Labels) != 2 || payload.Labels[0] != want[0] || payload.Labels[1] != want[1] {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestListBooks(t *testing.T) {
	r := setupRouter()
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/books/catalog", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var books []book.Book
	if err := json.NewDecoder(resp.Body).Decode(&books); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(books) != 2 || books[0].ID != "1" {
		t.Fatalf("unexpected books %+v", books)
	}
}

func TestGetBookNotFound(t *testing.T) {
	r := setupRouter()
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/books/99", nil))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestGetBook(t *testing.T) {
	r := setupRouter()
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/books/2", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var b book.Book
	_ = json.NewDecoder(resp.Body).Decode(&b)
	if b.Title != "Snow White" {
		t.Fatalf("unexpected book %+v", b)
	}
}
