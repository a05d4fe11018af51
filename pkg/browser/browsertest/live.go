package browsertest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/entrhq/pilot/pkg/browser"
)

// Launch starts a headless playwright page for integration tests and closes
// it when the test ends. The test is skipped in short mode or when no
// browser can be started on this machine.
func Launch(t testing.TB) browser.Page {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	page, err := browser.Launch(context.Background(), browser.Options{Headless: true, Logger: io.Discard})
	if err != nil {
		t.Skipf("browser unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = page.Close()
	})
	return page
}

// Serve answers every request with body as HTML and returns the server URL.
func Serve(t testing.TB, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

// Open serves body and loads it in page.
func Open(t testing.TB, page browser.Page, body string) {
	t.Helper()
	if err := page.Goto(context.Background(), Serve(t, body)); err != nil {
		t.Fatalf("failed to open fixture: %v", err)
	}
}
