package wowhead

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"npc-localizer/internal/locale"
)

func testClient(serverURL string) *Client {
	c := NewClient("test-agent", 5*time.Second)
	c.baseURL = serverURL
	c.maxRetries = 1
	return c
}

func deLocale(t *testing.T) locale.Locale {
	t.Helper()
	loc, ok := locale.ByCode("deDE")
	if !ok {
		t.Fatal("deDE should be supported")
	}
	return loc
}

func TestLookupFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/de/npc=9016" {
			t.Errorf("path = %s, want /de/npc=9016", r.URL.Path)
		}
		fmt.Fprint(w, `<html><body><div class="main"><h1 class="heading-size-1">Bael'Gar</h1></div></body></html>`)
	}))
	defer server.Close()

	name, ok, err := testClient(server.URL).Lookup(context.Background(), 9016, deLocale(t))
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok || name != "Bael'Gar" {
		t.Errorf("got (%q, %v), want (Bael'Gar, true)", name, ok)
	}
}

func TestLookupNotFoundRedirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RequestURI() == "/npcs?notFound=99999" {
			fmt.Fprint(w, `<html><body>Not found</body></html>`)
			return
		}
		http.Redirect(w, r, "/npcs?notFound=99999", http.StatusFound)
	}))
	defer server.Close()

	_, ok, err := testClient(server.URL).Lookup(context.Background(), 99999, deLocale(t))
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if ok {
		t.Error("redirect to notFound should report no result")
	}
}

func TestLookupMissingHeading(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h1 class="other">Something</h1></body></html>`)
	}))
	defer server.Close()

	_, ok, err := testClient(server.URL).Lookup(context.Background(), 1, deLocale(t))
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if ok {
		t.Error("page without the heading should report no result")
	}
}

func TestLookupBracketedPlaceholder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h1 class="heading-size-1">[Bael'Gar]</h1></body></html>`)
	}))
	defer server.Close()

	_, ok, err := testClient(server.URL).Lookup(context.Background(), 9016, deLocale(t))
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if ok {
		t.Error("bracketed placeholder names should report no result")
	}
}

func TestLookupServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, _, err := testClient(server.URL).Lookup(context.Background(), 1, deLocale(t))
	if err == nil {
		t.Error("server error should surface as a transient failure")
	}
}

func TestLookupSendsUserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
			t.Errorf("User-Agent = %q, want test-agent", ua)
		}
		fmt.Fprint(w, `<html><body><h1 class="heading-size-1">Name</h1></body></html>`)
	}))
	defer server.Close()

	if _, _, err := testClient(server.URL).Lookup(context.Background(), 1, deLocale(t)); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
}
