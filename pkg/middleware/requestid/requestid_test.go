package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(t *testing.T, inbound string) (echoed string, seen string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(New())
	router.GET("/", func(c *gin.Context) {
		seen = FromContext(c)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if inbound != "" {
		req.Header.Set("X-Request-ID", inbound)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec.Header().Get("X-Request-ID"), seen
}

func TestRequestIDPassthrough(t *testing.T) {
	echoed, seen := serve(t, "trace-42_abc")
	assert.Equal(t, "trace-42_abc", echoed)
	assert.Equal(t, "trace-42_abc", seen)
}

func TestRequestIDGenerated(t *testing.T) {
	echoed, seen := serve(t, "")
	assert.NotEmpty(t, echoed)
	assert.Equal(t, echoed, seen)

	other, _ := serve(t, "")
	assert.NotEqual(t, echoed, other)
}

func TestRequestIDRejectsHostileHeader(t *testing.T) {
	for _, inbound := range []string{
		"evil\nvalue",
		"спан",
		strings.Repeat("a", 65),
	} {
		echoed, _ := serve(t, inbound)
		assert.NotEqual(t, inbound, echoed, inbound)
		assert.NotEmpty(t, echoed)
	}
}

func TestRequestIDMissingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, FromContext(c))
}
