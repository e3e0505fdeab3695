package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "list.txt")
	if err := os.WriteFile(path, []byte("10.0.0.1:80\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var errs []string
	onError := func(s string) { errs = append(errs, s) }

	got, err := (&File{Path: path}).Content(context.Background(), onError)
	if err != nil || got != "10.0.0.1:80\n" {
		t.Errorf("Content() = %q, %v", got, err)
	}

	missing := filepath.Join(dir, "missing.txt")
	if _, err := (&File{Path: missing}).Content(context.Background(), onError); err == nil {
		t.Errorf("Content() error = nil for missing file")
	}
	want := []string{"The file '" + missing + "' does not exist"}
	if !reflect.DeepEqual(errs, want) {
		t.Errorf("errors = %q, want %q", errs, want)
	}

	if problems := (&File{}).Validate(); len(problems) != 1 {
		t.Errorf("Validate() = %v, want one problem", problems)
	}
}

func TestWeb(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/list" {
			http.Error(w, "gone", http.StatusGone)
			return
		}
		w.Write([]byte("10.0.0.1:80\n"))
	}))
	defer ts.Close()

	var errs []string
	onError := func(s string) { errs = append(errs, s) }

	got, err := (&Web{URL: ts.URL + "/list"}).Content(context.Background(), onError)
	if err != nil || got != "10.0.0.1:80\n" {
		t.Errorf("Content() = %q, %v", got, err)
	}
	if len(errs) != 0 {
		t.Errorf("errors = %q", errs)
	}

	if _, err := (&Web{URL: ts.URL + "/other"}).Content(context.Background(), onError); err == nil {
		t.Errorf("Content() error = nil for status 410")
	}
	if len(errs) != 1 {
		t.Errorf("errors = %q, want one", errs)
	}

	if problems := (&Web{URL: " "}).Validate(); !reflect.DeepEqual(problems, []string{"Source URL is missing"}) {
		t.Errorf("Validate() = %v", problems)
	}
}

func TestWebHeaders(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cookie") != "session=abc" || r.Referer() != "https://lists.example/" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		w.Write([]byte("10.0.0.2:3128\n"))
	}))
	defer ts.Close()

	onError := func(s string) { t.Errorf("unexpected error: %s", s) }
	src := &Web{
		URL:     ts.URL,
		Headers: []string{"Cookie: session=abc", "Referer: https://lists.example/"},
	}
	got, err := src.Content(context.Background(), onError)
	if err != nil || got != "10.0.0.2:3128\n" {
		t.Errorf("Content() = %q, %v", got, err)
	}
}
