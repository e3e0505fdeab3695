package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/redirect":
			http.Redirect(w, r, "/list", http.StatusFound)
		case "/list":
			w.Header().Set("X-Agent", r.Header.Get("User-Agent"))
			w.Write([]byte("10.0.0.1:8080\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	tests := []struct {
		name       string
		path       string
		opts       Options
		wantStatus int
		wantBody   string
		wantAgent  string
	}{
		{name: "plain", path: "/list", wantStatus: 200, wantBody: "10.0.0.1:8080\n", wantAgent: DefaultUserAgent},
		{name: "follows redirects", path: "/redirect", wantStatus: 200, wantBody: "10.0.0.1:8080\n", wantAgent: DefaultUserAgent},
		{name: "no redirects", path: "/redirect", opts: Options{NoRedirects: true}, wantStatus: 302},
		{name: "custom agent", path: "/list", opts: Options{Headers: []string{"User-Agent: lists/1.0"}}, wantStatus: 200, wantBody: "10.0.0.1:8080\n", wantAgent: "lists/1.0"},
		{name: "body limit", path: "/list", opts: Options{MaxBodySize: 4}, wantStatus: 200, wantBody: "10.0", wantAgent: DefaultUserAgent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Timeout = 5 * time.Second
			res, err := Fetch(context.Background(), ts.URL+tt.path, tt.opts)
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if res.Response.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", res.Response.StatusCode, tt.wantStatus)
			}
			if tt.wantBody != "" && string(res.Body) != tt.wantBody {
				t.Errorf("Body = %q, want %q", res.Body, tt.wantBody)
			}
			if got := res.Response.Header.Get("X-Agent"); tt.wantAgent != "" && got != tt.wantAgent {
				t.Errorf("User-Agent = %q, want %q", got, tt.wantAgent)
			}
		})
	}
}

func TestFetchCanceled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := Fetch(ctx, ts.URL, Options{}); err == nil {
		t.Errorf("Fetch() error = nil, want an error")
	}
}
