package config

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"proxy-discovery/pkg/fetch"
)

// SSConfig is the JSON shadowsocks configuration served behind ssconfig://
// links.
type SSConfig struct {
	Server     string `json:"server"`
	ServerPort int    `json:"server_port"`
	Method     string `json:"method"`
	Password   string `json:"password"`
	Prefix     string `json:"prefix"`
}

// BuildURL converts the SSConfig into an ss:// transport string
func (c *SSConfig) BuildURL() (string, error) {
	if c.Server == "" || c.ServerPort <= 0 {
		return "", fmt.Errorf("shadowsocks config has no server address")
	}

	userInfo := base64.URLEncoding.EncodeToString([]byte(c.Method + ":" + c.Password))
	u := &url.URL{
		Scheme: "ss",
		User:   url.User(userInfo),
		Host:   fmt.Sprintf("%s:%d", c.Server, c.ServerPort),
	}

	if c.Prefix != "" {
		q := url.Values{}
		q.Add("prefix", c.Prefix)
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

// ParseSSConfig parses a JSON config and returns its transport string.
func ParseSSConfig(jsonConfig string) (string, error) {
	var config SSConfig
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return "", fmt.Errorf("failed to parse JSON config: %w", err)
	}

	return config.BuildURL()
}

// download fetches ssconfig documents. Tests replace it.
var download = func(ctx context.Context, rawURL string) (string, error) {
	res, err := fetch.Fetch(ctx, rawURL, fetch.Options{})
	if err != nil {
		return "", err
	}
	if res.Response.StatusCode >= 400 {
		return "", fmt.Errorf("config server returned %s", res.Response.Status)
	}
	return string(res.Body), nil
}

// ResolveTransport expands an ssconfig:// link into the ss:// transport it
// points to. Other transport strings are returned unchanged.
func ResolveTransport(ctx context.Context, transport string) (string, error) {
	transport = strings.TrimSpace(transport)
	if !strings.HasPrefix(transport, "ssconfig://") {
		return transport, nil
	}

	u, err := url.Parse(transport)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}
	u.Scheme = "https"

	body, err := download(ctx, u.String())
	if err != nil {
		return "", fmt.Errorf("failed to fetch config: %w", err)
	}

	content := strings.TrimSpace(body)
	if strings.HasPrefix(content, "ss://") {
		return content, nil
	}

	return ParseSSConfig(content)
}
