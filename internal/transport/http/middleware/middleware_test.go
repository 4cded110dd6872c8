package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"paper-api/internal/core/auth"
	"paper-api/internal/core/server"
)

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthJWTSetsIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	j := &auth.JWTer{Secret: []byte("0123456789abcdef0123456789abcdef"), Issuer: "t", TTL: time.Minute}
	r := gin.New()
	r.GET("/x", AuthJWT(j, ""), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("userId")+"|"+c.GetString("role"))
	})
	tok, _ := j.Issue("u1", auth.RoleUser)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	if w := serve(r, req); w.Body.String() != "u1|user" {
		t.Fatalf("unexpected identity: %s", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	if w := serve(r, req); !strings.Contains(w.Body.String(), `"code":401`) {
		t.Fatalf("expected 401 envelope: %s", w.Body.String())
	}
}

func TestRateLimitPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitPerIP(1, 1))
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := func(ip string) string {
		rq := httptest.NewRequest(http.MethodGet, "/x", nil)
		rq.RemoteAddr = ip + ":1234"
		return serve(r, rq).Body.String()
	}
	if req("10.0.0.1") != "ok" {
		t.Fatalf("first request should pass")
	}
	if !strings.Contains(req("10.0.0.1"), `"code":429`) {
		t.Fatalf("second request from same ip should be limited")
	}
	if req("10.0.0.2") != "ok" {
		t.Fatalf("other ip has its own bucket")
	}
}

func TestIPLimiterEvictsIdleBuckets(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := newIPLimiter(1, 1, time.Minute)
	l.now = func() time.Time { return now }

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		if !l.allow(ip) {
			t.Fatalf("%s: first request should pass", ip)
		}
	}
	if l.allow("10.0.0.1") {
		t.Fatalf("same ip within the window should be limited")
	}
	if n := l.size(); n != 3 {
		t.Fatalf("expected 3 buckets, got %d", n)
	}

	now = now.Add(2 * time.Minute)
	if !l.allow("10.0.0.9") {
		t.Fatalf("new ip should pass")
	}
	if n := l.size(); n != 1 {
		t.Fatalf("idle buckets should be evicted, got %d", n)
	}
}

func TestTimeoutWritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Timeout(20 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) { <-c.Request.Context().Done() })
	w := serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil))
	if !strings.Contains(w.Body.String(), `"code":504`) {
		t.Fatalf("expected timeout envelope: %s", w.Body.String())
	}
}

func TestRecoveryReturnsEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Recovery(zap.NewNop()))
	r.GET("/panic", func(*gin.Context) { panic("boom") })
	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"code":500`) {
		t.Fatalf("unexpected recovery response: %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get(server.HeaderRequestID) == "" {
		t.Fatalf("request id header missing")
	}
}

func TestRequestIDKeepsSafeClientValue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })

	cases := map[string]bool{
		"abc-123_x.y:z":         true,
		"":                      false,
		"has space":             false,
		"line\nbreak":           false,
		strings.Repeat("a", 65): false,
	}
	for in, keep := range cases {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if in != "" {
			req.Header.Set(server.HeaderRequestID, in)
		}
		w := serve(r, req)
		got := w.Header().Get(server.HeaderRequestID)
		if got == "" || got != w.Body.String() {
			t.Fatalf("%q: header and context id differ: %q vs %q", in, got, w.Body.String())
		}
		if keep != (got == in) {
			t.Fatalf("%q: keep=%v but got %q", in, keep, got)
		}
	}
}
