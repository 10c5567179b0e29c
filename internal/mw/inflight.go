package mw

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// ErrMutationInFlight is answered while the same session already has a write
// in progress.
const ErrMutationInFlight = "Another request is still being processed. Please wait."

// OneMutation lets each session run a single mutating request at a time;
// concurrent ones are answered 409. It must run after Session.
func OneMutation() gin.HandlerFunc {
	var mu sync.Mutex
	inFlight := make(map[string]struct{})

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}
		sess, ok := SessionFrom(c)
		if !ok {
			c.Next()
			return
		}

		mu.Lock()
		if _, busy := inFlight[sess.Token]; busy {
			mu.Unlock()
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": ErrMutationInFlight})
			return
		}
		inFlight[sess.Token] = struct{}{}
		mu.Unlock()

		defer func() {
			mu.Lock()
			delete(inFlight, sess.Token)
			mu.Unlock()
		}()
		c.Next()
	}
}
