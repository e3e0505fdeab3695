package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
)

// IPInfoResponse is the ipinfo.io answer for one address.
type IPInfoResponse struct {
	IP       string `json:"ip"`
	Hostname string `json:"hostname"`
	Anycast  bool   `json:"anycast"`
	City     string `json:"city"`
	Region   string `json:"region"`
	Country  string `json:"country"`
	Loc      string `json:"loc"`
	Org      string `json:"org"`
	Postal   string `json:"postal"`
	Timezone string `json:"timezone"`
	Bogon    bool   `json:"bogon"`
}

// IPInfo queries ipinfo.io.
type IPInfo struct {
	Token string
	// BaseURL defaults to https://ipinfo.io.
	BaseURL string
	Client  *http.Client
}

func (g *IPInfo) Locate(ctx context.Context, addr netip.Addr) (Location, error) {
	info, err := g.GetIPInfo(ctx, addr)
	if err != nil {
		return Location{}, err
	}
	if info.Bogon {
		return Location{}, nil
	}
	return Location{Country: info.Country, City: info.City}, nil
}

// GetIPInfo fetches the full record for addr.
func (g *IPInfo) GetIPInfo(ctx context.Context, addr netip.Addr) (IPInfoResponse, error) {
	base := g.BaseURL
	if base == "" {
		base = "https://ipinfo.io"
	}
	u := fmt.Sprintf("%s/%s", base, addr)
	if g.Token != "" {
		u += "?token=" + url.QueryEscape(g.Token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return IPInfoResponse{}, err
	}
	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return IPInfoResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return IPInfoResponse{}, fmt.Errorf("ipinfo returned status %s", resp.Status)
	}

	var ipInfo IPInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&ipInfo); err != nil {
		return IPInfoResponse{}, err
	}
	return ipInfo, nil
}
