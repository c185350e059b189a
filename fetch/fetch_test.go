package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"skiff/search"
)

func TestNormalizeAddress(t *testing.T) {
	provider := search.Default()

	cases := []struct {
		in   string
		want string
	}{
		{"https://example.com", "https://example.com"},
		{"http://example.com/page", "http://example.com/page"},
		{"example.com", provider.SearchURL("example.com")},
		{"terminal browsers", provider.SearchURL("terminal browsers")},
		{"ftp://example.com", provider.SearchURL("ftp://example.com")},
		{"  https://example.com  ", "https://example.com"},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := NormalizeAddress(c.in, provider); got != c.want {
			t.Errorf("NormalizeAddress(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeAddressEncodesQuery(t *testing.T) {
	got := NormalizeAddress("a b&c", search.Default())
	if strings.Contains(got, " ") || strings.Contains(got, "&c") {
		t.Errorf("query not encoded: %q", got)
	}
}

func TestResolve(t *testing.T) {
	cases := []struct {
		base, href, want string
	}{
		{"https://example.com/a/b", "/c", "https://example.com/c"},
		{"https://example.com/a/b", "c", "https://example.com/a/c"},
		{"https://example.com/a/", "https://other.net/x", "https://other.net/x"},
		{"https://example.com/a/b", "?q=1", "https://example.com/a/b?q=1"},
	}
	for _, c := range cases {
		got, err := Resolve(c.base, c.href)
		if err != nil {
			t.Errorf("Resolve(%q, %q): %v", c.base, c.href, err)
			continue
		}
		if got != c.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", c.base, c.href, got, c.want)
		}
	}
}

func TestFilename(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"https://example.com/files/report.pdf", "report.pdf"},
		{"https://example.com/files/report.pdf?v=2", "report.pdf"},
		{"https://example.com/", "download"},
		{"https://example.com", "download"},
		{"https://example.com/a/..%2f..%2fetc", "etc"},
		{"https://example.com/..", "download"},
		{"https://example.com/weird%2Fname.txt", "name.txt"},
	}
	for _, c := range cases {
		got := Filename(c.in)
		if got != c.want {
			t.Errorf("Filename(%q) = %q, want %q", c.in, got, c.want)
		}
		if strings.ContainsAny(got, "/\\") {
			t.Errorf("Filename(%q) contains a separator: %q", c.in, got)
		}
	}
}

func TestDownloadable(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://example.com/a.tar.gz", true},
		{"https://example.com/a.pdf", true},
		{"https://example.com/a.PDF", true},
		{"https://example.com/page.html", false},
		{"https://example.com/", false},
		{"https://example.com/a.pdf?download=1", true},
	}
	for _, c := range cases {
		if got := Downloadable(c.url); got != c.want {
			t.Errorf("Downloadable(%q) = %v, want %v", c.url, got, c.want)
		}
	}
}

func TestFetchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body><p>hello</p></body></html>"))
	}))
	defer srv.Close()

	client, err := NewClient(Options{})
	if err != nil {
		t.Fatal(err)
	}
	page, err := client.FetchPage(context.Background(), srv.URL, false)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(page.Body, "hello") {
		t.Errorf("body = %q", page.Body)
	}
	if page.FinalURL != srv.URL {
		t.Errorf("final URL = %q, want %q", page.FinalURL, srv.URL)
	}
}

func TestFetchPageHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client, err := NewClient(Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.FetchPage(context.Background(), srv.URL, false); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestFetchPageSizeCap(t *testing.T) {
	big := strings.Repeat("x", 4096)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(big))
	}))
	defer srv.Close()

	client, err := NewClient(Options{MaxPageSize: 100})
	if err != nil {
		t.Fatal(err)
	}
	page, err := client.FetchPage(context.Background(), srv.URL, false)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(page.Body) > 100 {
		t.Errorf("body not capped: %d bytes", len(page.Body))
	}
}

func TestFetchPageFollowsRedirect(t *testing.T) {
	var target *httptest.Server
	target = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/from" {
			http.Redirect(w, r, "/to", http.StatusFound)
			return
		}
		w.Write([]byte("arrived"))
	}))
	defer target.Close()

	client, err := NewClient(Options{})
	if err != nil {
		t.Fatal(err)
	}
	page, err := client.FetchPage(context.Background(), target.URL+"/from", false)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if page.FinalURL != target.URL+"/to" {
		t.Errorf("final URL = %q", page.FinalURL)
	}
	if !strings.Contains(page.Body, "arrived") {
		t.Errorf("body = %q", page.Body)
	}
}

func TestNewClientRejectsBadProxy(t *testing.T) {
	if _, err := NewClient(Options{ProxyURL: "://not a url"}); err == nil {
		t.Fatal("expected error for invalid proxy URL")
	}
}
