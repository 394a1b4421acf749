package staticfiles

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
)

func newStaticRouter(t *testing.T, root string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Serve(Options{URLPrefix: "/static/", Root: root, MaxAge: 3600}))
	r.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "fallthrough")
	})
	return r
}

func writeStatic(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestServe_HitSetsHeaders(t *testing.T) {
	root := t.TempDir()
	writeStatic(t, root, "css/site.css", "body { margin: 0 }")
	r := newStaticRouter(t, root)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/static/css/site.css", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Body.String(); got != "body { margin: 0 }" {
		t.Fatalf("body = %q", got)
	}
	if got := w.Header().Get("Cache-Control"); got != "public, max-age=3600" {
		t.Fatalf("Cache-Control = %q", got)
	}
	if got := w.Header().Get("Content-Type"); got != "text/css; charset=utf-8" {
		t.Fatalf("Content-Type = %q", got)
	}
	if w.Header().Get("Last-Modified") == "" {
		t.Fatal("Last-Modified missing")
	}
}

func TestServe_MissPassesThrough(t *testing.T) {
	r := newStaticRouter(t, t.TempDir())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/missing.js", nil))

	if w.Code != http.StatusNotFound || w.Body.String() != "fallthrough" {
		t.Fatalf("status = %d body = %q", w.Code, w.Body.String())
	}
}

func TestServe_OtherPrefixPassesThrough(t *testing.T) {
	root := t.TempDir()
	writeStatic(t, root, "a.txt", "x")
	r := newStaticRouter(t, root)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/persone", nil))

	if w.Body.String() != "fallthrough" {
		t.Fatalf("body = %q", w.Body.String())
	}
}

func TestServe_PostPassesThrough(t *testing.T) {
	root := t.TempDir()
	writeStatic(t, root, "a.txt", "x")
	r := newStaticRouter(t, root)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/static/a.txt", nil))

	if w.Body.String() != "fallthrough" {
		t.Fatalf("body = %q", w.Body.String())
	}
}

func TestServe_DirectoryPassesThrough(t *testing.T) {
	root := t.TempDir()
	writeStatic(t, root, "css/site.css", "x")
	r := newStaticRouter(t, root)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/css", nil))

	if w.Body.String() != "fallthrough" {
		t.Fatalf("body = %q", w.Body.String())
	}
}

func TestServe_TraversalRejected(t *testing.T) {
	root := t.TempDir()
	secret := filepath.Join(filepath.Dir(root), "secret.txt")
	if err := os.WriteFile(secret, []byte("top secret"), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}
	t.Cleanup(func() { os.Remove(secret) })
	r := newStaticRouter(t, root)

	for _, p := range []string{
		"/static/../secret.txt",
		"/static/..%2Fsecret.txt",
		"/static/css/../../secret.txt",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, p, nil)
		r.ServeHTTP(w, req)
		if w.Body.String() == "top secret" {
			t.Fatalf("traversal served secret for %q", p)
		}
	}
}

func TestServe_HeadRequest(t *testing.T) {
	root := t.TempDir()
	writeStatic(t, root, "a.txt", "hello")
	r := newStaticRouter(t, root)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/static/a.txt", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("HEAD body = %q", w.Body.String())
	}
}

func TestCollect(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")
	writeStatic(t, src, "css/site.css", "a")
	writeStatic(t, src, "js/app.js", "b")
	writeStatic(t, src, "img/logo.svg", "c")

	n, err := Collect(src, dst)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if n != 3 {
		t.Fatalf("count = %d, want 3", n)
	}

	b, err := os.ReadFile(filepath.Join(dst, "css", "site.css"))
	if err != nil {
		t.Fatalf("read collected: %v", err)
	}
	if string(b) != "a" {
		t.Fatalf("content = %q", b)
	}

	// Re-running overwrites in place and reports the same count.
	n, err = Collect(src, dst)
	if err != nil {
		t.Fatalf("Collect again: %v", err)
	}
	if n != 3 {
		t.Fatalf("recount = %d, want 3", n)
	}
}

func TestCollect_MissingSource(t *testing.T) {
	_, err := Collect(filepath.Join(t.TempDir(), "nope"), t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}
