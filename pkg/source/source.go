// Package source loads raw proxy list content from files or the web.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"proxy-discovery/pkg/fetch"
)

// Source returns list content. Failures are also reported through onError
// so that providers can attribute them.
type Source interface {
	Content(ctx context.Context, onError func(string)) (string, error)
	Validate() []string
	String() string
}

// File reads a local file.
type File struct {
	Path string
}

func (s *File) Content(ctx context.Context, onError func(string)) (string, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		onError(fmt.Sprintf("The file '%s' does not exist", s.Path))
		return "", fmt.Errorf("failed to read proxy list: %w", err)
	}
	if err != nil {
		onError(err.Error())
		return "", fmt.Errorf("failed to read proxy list: %w", err)
	}
	return string(data), nil
}

func (s *File) Validate() []string {
	if strings.TrimSpace(s.Path) == "" {
		return []string{"File path is missing"}
	}
	return nil
}

func (s *File) String() string { return "File: " + s.Path }

// Web downloads a URL.
type Web struct {
	URL string
	// Transport is an outline transport config used for the download.
	// Empty dials directly.
	Transport string
	// Timeout defaults to the fetch default.
	Timeout time.Duration
	// Headers are raw "Name: value" lines, such as a cookie or referer
	// some list sites require.
	Headers []string
}

func (s *Web) Content(ctx context.Context, onError func(string)) (string, error) {
	res, err := fetch.Fetch(ctx, s.URL, fetch.Options{Transport: s.Transport, Timeout: s.Timeout, Headers: s.Headers})
	if err != nil {
		onError(err.Error())
		return "", err
	}
	if res.Response.StatusCode >= 400 {
		err := fmt.Errorf("proxy list source returned status %s", res.Response.Status)
		onError(err.Error())
		return "", err
	}
	return string(res.Body), nil
}

func (s *Web) Validate() []string {
	if strings.TrimSpace(s.URL) == "" {
		return []string{"Source URL is missing"}
	}
	return nil
}

func (s *Web) String() string { return "Web: " + s.URL }
