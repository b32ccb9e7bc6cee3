// Package requestid tags every request with a correlation ID. The inbound
// X-Request-ID header is honored when it looks sane; otherwise a fresh ID
// is generated. The ID travels in the gin context and is echoed back to
// the client.
package requestid

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	header     = "X-Request-ID"
	contextKey = "request_id"
	maxIDLen   = 64
)

// New returns the request-ID middleware.
func New() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(header)
		if !valid(id) {
			id = generate()
		}
		c.Set(contextKey, id)
		c.Writer.Header().Set(header, id)
		c.Next()
	}
}

// FromContext returns the request ID assigned by New, or "" when the
// middleware did not run.
func FromContext(c *gin.Context) string {
	v, ok := c.Get(contextKey)
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}

// valid bounds inbound IDs to a log-safe alphabet so a hostile client
// cannot smuggle arbitrary bytes into log lines.
func valid(id string) bool {
	if id == "" || len(id) > maxIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		b := id[i]
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9', b == '-', b == '_':
		default:
			return false
		}
	}
	return true
}

func generate() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "t" + strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(buf[:])
}
