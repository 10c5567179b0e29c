package mw

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

type cachedResponse struct {
	status  int
	headers http.Header
	body    []byte
}

// teeWriter keeps a copy of everything written to the client.
type teeWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w teeWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w teeWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// cacheKey scopes a URI to the asking identity; list views differ per role.
func cacheKey(c *gin.Context) string {
	if sess, ok := SessionFrom(c); ok {
		return strconv.FormatInt(sess.Identity.ID, 10) + "|" + c.Request.RequestURI
	}
	return c.Request.RequestURI
}

func replay(c *gin.Context, resp cachedResponse) {
	header := c.Writer.Header()
	for k, v := range resp.headers {
		header[k] = v
	}
	header.Set("X-Cache", "HIT")
	c.Writer.WriteHeader(resp.status)
	_, _ = c.Writer.Write(resp.body)
	c.Abort()
}

// Cache serves repeated GETs from store for duration. It must run after
// Session so entries are per identity.
func Cache(store *cache.Cache, duration time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := cacheKey(c)
		if hit, found := store.Get(key); found {
			replay(c, hit.(cachedResponse))
			return
		}

		tee := &teeWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = tee
		c.Next()

		if status := tee.Status(); status >= 200 && status < 300 {
			store.Set(key, cachedResponse{
				status:  status,
				headers: tee.Header().Clone(),
				body:    tee.body.Bytes(),
			}, duration)
		}
	}
}

// FlushOnWrite empties the cache after any successful mutating request, so
// no view serves data older than the write.
func FlushOnWrite(store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			return
		}
		if status := c.Writer.Status(); status >= 200 && status < 300 {
			store.Flush()
		}
	}
}
