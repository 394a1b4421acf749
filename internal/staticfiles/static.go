// Package staticfiles serves previously collected assets straight from the
// application process, for deployments without a separate web server or CDN
// in front.
package staticfiles

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// Options configures the serving middleware.
type Options struct {
	// URLPrefix is the request path prefix, e.g. "/static/". Must end in "/".
	URLPrefix string
	// Root is the directory assets are served from.
	Root string
	// MaxAge is the Cache-Control max-age in seconds.
	MaxAge int
}

// Serve returns a middleware that serves files under opts.URLPrefix from
// opts.Root with caching headers. Anything that is not a hit (wrong
// prefix, missing file, directory, traversal attempt) passes through to
// the next handler untouched.
func Serve(opts Options) gin.HandlerFunc {
	cacheControl := fmt.Sprintf("public, max-age=%d", opts.MaxAge)

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Next()
			return
		}
		rel, ok := strings.CutPrefix(c.Request.URL.Path, opts.URLPrefix)
		if !ok || rel == "" {
			c.Next()
			return
		}

		full, ok := resolve(opts.Root, rel)
		if !ok {
			c.Next()
			return
		}

		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			c.Next()
			return
		}

		f, err := os.Open(full)
		if err != nil {
			c.Next()
			return
		}
		defer f.Close()

		c.Header("Cache-Control", cacheControl)
		// ServeContent picks Content-Type from the extension and handles
		// Last-Modified / conditional requests and range reads.
		http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
		c.Abort()
	}
}

// resolve maps a request-relative path to a file inside root, rejecting
// anything that escapes it.
func resolve(root, rel string) (string, bool) {
	clean := path.Clean("/" + rel)
	if strings.Contains(clean, "..") {
		return "", false
	}
	full := filepath.Join(root, filepath.FromSlash(clean))

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	absFull, err := filepath.Abs(full)
	if err != nil {
		return "", false
	}
	if absFull != absRoot && !strings.HasPrefix(absFull, absRoot+string(filepath.Separator)) {
		return "", false
	}
	return full, true
}
