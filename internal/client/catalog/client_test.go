package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"paper-api/internal/domain"
)

const volumesBody = `{
  "totalItems": 2,
  "items": [
    {"id": "v1", "volumeInfo": {
      "title": "The Art of Readable Code",
      "authors": ["Dustin Boswell", "Trevor Foucher"],
      "pageCount": 204,
      "imageLinks": {"smallThumbnail": "http://books.example/s.jpg", "thumbnail": "http://books.example/t.jpg"},
      "industryIdentifiers": [{"type": "ISBN_10", "identifier": "0596802293"}, {"type": "ISBN_13", "identifier": "9780596802295"}]
    }},
    {"id": "v2", "volumeInfo": {
      "title": "No Authors",
      "imageLinks": {"smallThumbnail": "http://books.example/s2.jpg"}
    }}
  ]
}`

func TestSearchMapsVolumes(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q") + "|" + r.URL.Query().Get("maxResults")
		_, _ = w.Write([]byte(volumesBody))
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second)
	res, err := c.Search(context.Background(), `inauthor:"Dustin Boswell"`, 40)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if gotQuery != `inauthor:"Dustin Boswell"|40` {
		t.Fatalf("unexpected upstream query: %s", gotQuery)
	}
	if len(res.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(res.Items))
	}
	v := res.Items[0]
	if v.ImageURL != "https://books.example/t.jpg" {
		t.Fatalf("thumbnail should win and be https: %q", v.ImageURL)
	}
	if v.ISBN != "9780596802295" {
		t.Fatalf("ISBN_13 should win: %q", v.ISBN)
	}
	if res.Items[1].ImageURL != "https://books.example/s2.jpg" {
		t.Fatalf("smallThumbnail fallback failed: %q", res.Items[1].ImageURL)
	}
	if res.Items[1].Authors == nil {
		t.Fatalf("authors should default to empty slice")
	}
}

func TestVolumeNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", time.Second).Volume(context.Background(), "missing")
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	_, err := New("http://unused", "", time.Second).Search(context.Background(), "  ", 10)
	if !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("expected validation_error, got %v", err)
	}
}

func TestSecureURL(t *testing.T) {
	if got := SecureURL("http://x/y"); got != "https://x/y" {
		t.Fatalf("got %q", got)
	}
	if got := SecureURL("https://x/y"); got != "https://x/y" {
		t.Fatalf("got %q", got)
	}
}
