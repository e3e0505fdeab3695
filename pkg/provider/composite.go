package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"proxy-discovery/pkg/models"
	"proxy-discovery/pkg/parser"
	"proxy-discovery/pkg/source"
)

// ErrEmptyContent is returned when a source yields nothing to parse.
var ErrEmptyContent = errors.New("proxy list source returned empty content")

// Composite downloads a list with a Source and reads it with a Parser.
type Composite struct {
	Source source.Source
	Parser parser.Parser
	logger *slog.Logger
}

func NewComposite(src source.Source, p parser.Parser, logger *slog.Logger) *Composite {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composite{Source: src, Parser: p, logger: logger}
}

func (p *Composite) GetProxies(ctx context.Context, onError func(string)) ([]*models.ProxyInformation, error) {
	content, err := p.Source.Content(ctx, onError)
	if err != nil {
		return nil, fmt.Errorf("failed to get proxy list content: %w", err)
	}

	if strings.TrimSpace(content) == "" {
		onError("Proxy list source returned empty content")
		return nil, ErrEmptyContent
	}

	proxies := p.Parser.Parse(content, onError)
	p.logger.Debug("Proxy list parsed", "provider", p.String(), "bytes", len(content), "proxies", len(proxies))
	return proxies, nil
}

func (p *Composite) Validate() []string {
	var problems []string

	if p.Source == nil {
		problems = append(problems, "Proxy list source cannot be null")
	} else {
		for _, s := range p.Source.Validate() {
			problems = append(problems, "[Source] "+s)
		}
	}

	if p.Parser == nil {
		problems = append(problems, "Proxy list parser cannot be null")
	} else {
		for _, s := range p.Parser.Validate() {
			problems = append(problems, "[Parser] "+s)
		}
	}

	return problems
}

func (p *Composite) String() string {
	return fmt.Sprintf("Composite: %v + %v", p.Source, p.Parser)
}
