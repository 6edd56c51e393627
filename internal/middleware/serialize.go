package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// WriteGate lets one mutating request run at a time while reads proceed together.
type WriteGate struct {
	mu sync.RWMutex
}

// NewWriteGate returns an open gate.
func NewWriteGate() *WriteGate {
	return &WriteGate{}
}

// SerializeWrites holds the gate exclusively for the duration of every
// non-safe request. Safe methods share it, so a read never observes a
// write that is only partly applied through several statements.
func SerializeWrites(gate *WriteGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			gate.mu.RLock()
			defer gate.mu.RUnlock()
		default:
			gate.mu.Lock()
			defer gate.mu.Unlock()
		}
		c.Next()
	}
}
