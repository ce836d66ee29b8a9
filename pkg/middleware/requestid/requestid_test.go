package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(t *testing.T, inbound string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = Value(c)
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	if inbound != "" {
		req.Header.Set("X-Request-ID", inbound)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w, seen
}

func TestRequestIDGenerated(t *testing.T) {
	w, seen := serve(t, "")
	assert.Len(t, seen, 32)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
}

func TestRequestIDHonorsInbound(t *testing.T) {
	_, seen := serve(t, "gw-7f3a2b")
	assert.Equal(t, "gw-7f3a2b", seen)
}

func TestRequestIDReplacesMalformedInbound(t *testing.T) {
	_, seen := serve(t, strings.Repeat("x", 200))
	assert.Len(t, seen, 32)

	_, seen = serve(t, "bad\nid")
	assert.Len(t, seen, 32)
}
