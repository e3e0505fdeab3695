package provider

import (
	"context"

	"proxy-discovery/pkg/models"
)

// Static serves a fixed list.
type Static struct {
	Proxies []*models.ProxyInformation
}

func NewStatic(proxies ...*models.ProxyInformation) *Static {
	return &Static{Proxies: proxies}
}

// Add appends a proxy to the list.
func (p *Static) Add(proxy *models.ProxyInformation) {
	p.Proxies = append(p.Proxies, proxy)
}

func (p *Static) GetProxies(ctx context.Context, onError func(string)) ([]*models.ProxyInformation, error) {
	return append([]*models.ProxyInformation(nil), p.Proxies...), nil
}

func (p *Static) Validate() []string {
	if len(p.Proxies) == 0 {
		return []string{"Static proxy list cannot be empty"}
	}
	return nil
}

func (p *Static) String() string {
	return "Static proxy list provider"
}
