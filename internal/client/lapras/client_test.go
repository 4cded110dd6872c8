package lapras

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"paper-api/internal/domain"
)

func TestFetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"octocat","e_score":2,"b_score":1,"i_score":0.5,
			"github_repositories":[{"languages":[{"name":"Go","bytes":10}]},{"languages":null}]}`))
	}))
	defer srv.Close()

	p, err := New(time.Second, nil).Fetch(context.Background(), srv.URL+"/public/octocat.json")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if p.Name != "octocat" || len(p.Repositories) != 2 {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestFetchMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"octocat"}`))
	}))
	defer srv.Close()

	_, err := New(time.Second, nil).Fetch(context.Background(), srv.URL)
	if !domain.IsKind(err, domain.KindUpstreamMalformed) {
		t.Fatalf("expected upstream_malformed, got %v", err)
	}
}

func TestFetchUpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := New(time.Second, nil).Fetch(context.Background(), srv.URL)
	if !domain.IsKind(err, domain.KindUpstreamUnavailable) || domain.StatusOf(err) != http.StatusNotFound {
		t.Fatalf("expected upstream_unavailable/404, got %v", err)
	}
}

func TestValidateURL(t *testing.T) {
	c := New(time.Second, []string{"lapras.com"})
	if err := c.ValidateURL("https://lapras.com/public/ABC.json"); err != nil {
		t.Fatalf("expected allowed: %v", err)
	}
	for _, raw := range []string{"ftp://lapras.com/x", "lapras.com/x", "https://evil.example/x", ""} {
		if err := c.ValidateURL(raw); !domain.IsKind(err, domain.KindValidation) {
			t.Fatalf("%q: expected validation_error, got %v", raw, err)
		}
	}
}

func TestFetchOverflowingTotalIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"x","e_score":1,"b_score":1,"i_score":1,"github_repositories":[
			{"languages":[{"name":"Go","bytes":9223372036854775807}]},
			{"languages":[{"name":"Go","bytes":10}]}]}`))
	}))
	defer srv.Close()

	_, err := New(time.Second, nil).Fetch(context.Background(), srv.URL)
	if !domain.IsKind(err, domain.KindUpstreamMalformed) {
		t.Fatalf("expected upstream_malformed, got %v", err)
	}
}

func TestFetchRejectsRedirectToDisallowedHost(t *testing.T) {
	var internalHit atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/internal" {
			internalHit.Store(true)
			_, _ = w.Write([]byte(`{"name":"evil","e_score":1,"b_score":1,"i_score":1,"github_repositories":[]}`))
			return
		}
		// 同一服务，换成 localhost 主机名跳转
		u, _ := url.Parse("http://" + r.Host)
		http.Redirect(w, r, "http://localhost:"+u.Port()+"/internal", http.StatusFound)
	}))
	defer srv.Close()

	_, err := New(time.Second, []string{"127.0.0.1"}).Fetch(context.Background(), srv.URL+"/public/x.json")
	if !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("expected validation_error, got %v", err)
	}
	if internalHit.Load() {
		t.Fatalf("redirect target must not be requested")
	}
}

func TestFetchFollowsRedirectWithinAllowList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/moved" {
			_, _ = w.Write([]byte(`{"name":"octocat","e_score":1,"b_score":1,"i_score":1,"github_repositories":[]}`))
			return
		}
		http.Redirect(w, r, "/moved", http.StatusMovedPermanently)
	}))
	defer srv.Close()

	p, err := New(time.Second, []string{"127.0.0.1"}).Fetch(context.Background(), srv.URL+"/public/x.json")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if p.Name != "octocat" {
		t.Fatalf("unexpected profile: %+v", p)
	}
}
