package ez

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"paper-api/internal/domain"
	resp "paper-api/internal/transport/http/response"
)

func TestFromErrorMapsKinds(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{domain.Validation("title is required"), resp.CodeBadRequest, "title is required"},
		{domain.Unauthorized("nope"), resp.CodeUnauthorized, "nope"},
		{domain.NotFound("book x not found"), resp.CodeNotFound, "book x not found"},
		{domain.Conflict("dup"), resp.CodeConflict, "dup"},
		{domain.UpstreamUnavailable(503, nil), resp.CodeBadGateway, "API responded with status: 503"},
		{domain.UpstreamMalformed(errors.New("bad json")), resp.CodeBadGateway, "upstream returned malformed body"},
		{domain.Internal("db down", errors.New("secret detail")), resp.CodeServerError, "Internal Server Error"},
		{errors.New("boom"), resp.CodeServerError, "Internal Server Error"},
		{Forbidden("no"), resp.CodeForbidden, "no"},
	}
	for _, tc := range cases {
		ae := FromError(tc.err)
		if ae.Code != tc.code || ae.Error() != tc.msg {
			t.Fatalf("%v: got %d %q", tc.err, ae.Code, ae.Error())
		}
	}
}

func TestRegisterActionRoleCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("", func(c *gin.Context) {
		c.Set("userId", "u1")
		c.Set("role", c.GetHeader("X-Role"))
	})
	RegisterAction[struct{}, string](New(g), Action[struct{}, string]{
		Method:  http.MethodGet,
		Path:    "/secret",
		Binder:  BindNone,
		Auth:    true,
		Roles:   []string{"admin"},
		Handler: func(*gin.Context, *struct{}) (string, error) { return "ok", nil },
	})

	for role, want := range map[string]string{"admin": `"code":0`, "user": `"code":403`} {
		req := httptest.NewRequest(http.MethodGet, "/secret", nil)
		req.Header.Set("X-Role", role)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if !strings.Contains(w.Body.String(), want) {
			t.Fatalf("role %s: %s", role, w.Body.String())
		}
	}
}

func TestPageClamp(t *testing.T) {
	p := Page{Offset: -3, Limit: 1000}
	p.Clamp()
	if p.Offset != 0 || p.Limit != 20 {
		t.Fatalf("unexpected clamp: %+v", p)
	}
}
