package provider

import (
	"context"
	"log/slog"

	"proxy-discovery/pkg/geo"
	"proxy-discovery/pkg/models"
	"proxy-discovery/pkg/parser"
)

// Locating fills in the country and city of proxies whose list left them
// empty. Lookup failures leave the entry unchanged.
type Locating struct {
	Inner     Provider
	Locator   geo.Locator
	Resolvers models.Resolvers
	logger    *slog.Logger
}

func NewLocating(inner Provider, locator geo.Locator, logger *slog.Logger) *Locating {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locating{Inner: inner, Locator: locator, Resolvers: parser.DefaultResolvers(), logger: logger}
}

func (p *Locating) GetProxies(ctx context.Context, onError func(string)) ([]*models.ProxyInformation, error) {
	proxies, err := p.Inner.GetProxies(ctx, onError)
	if err != nil {
		return nil, err
	}

	located := 0
	for i, proxy := range proxies {
		if proxy.Country != "" && proxy.City != "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		loc, err := p.Locator.Locate(ctx, proxy.Addr)
		if err != nil {
			p.logger.Debug("Failed to locate proxy", "proxy", proxy.Address(), "error", err)
			continue
		}
		if loc.Country == "" && loc.City == "" {
			continue
		}

		proxies[i] = relocate(proxy, loc, p.Resolvers)
		located++
	}

	p.logger.Debug("Proxies located", "provider", p.Inner.String(), "located", located)
	return proxies, nil
}

// relocate rebuilds the entry since metadata is fixed at construction.
func relocate(p *models.ProxyInformation, loc geo.Location, r models.Resolvers) *models.ProxyInformation {
	d := models.Details{
		Protocol: p.Protocol,
		SSL:      p.SSL(),
		Google:   p.Google(),
		Name:     p.Name,
		Country:  p.Country,
		City:     p.City,
	}
	if d.Country == "" {
		d.Country = loc.Country
	}
	if d.City == "" {
		d.City = loc.City
	}
	return models.NewProxyInformation(p.Addr, p.Port, d, models.Resolvers{Countries: r.Countries})
}

func (p *Locating) Validate() []string {
	if p.Inner == nil {
		return []string{"Located provider cannot be null"}
	}
	problems := p.Inner.Validate()
	if p.Locator == nil {
		problems = append(problems, "Locator cannot be null")
	}
	return problems
}

func (p *Locating) String() string {
	if p.Inner == nil {
		return "Located: <nil>"
	}
	return "Located: " + p.Inner.String()
}
