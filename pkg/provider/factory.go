package provider

import (
	"fmt"
	"log/slog"
	"strings"

	"proxy-discovery/pkg/database"
	"proxy-discovery/pkg/parser"
	"proxy-discovery/pkg/source"
)

// DefaultLineRegex reads plain "ip:port" lists.
const DefaultLineRegex = `^\s*(?P<address>[\d\.]+):(?P<port>\d+)`

// NewProvider creates a new proxy list provider based on the config
func NewProvider(config Config, logger *slog.Logger) (Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var p Provider
	switch config.System {
	case SystemStatic:
		p = NewStatic(config.Proxies...)
	case SystemFile:
		p = NewComposite(&source.File{Path: config.Path}, newParser(config), logger)
	case SystemWeb:
		src := &source.Web{URL: config.URL, Transport: config.Transport, Timeout: config.Timeout, Headers: config.Headers}
		p = NewComposite(src, newParser(config), logger)
	case SystemWellKnown:
		ctor, ok := wellKnown[strings.ToLower(config.Name)]
		if !ok {
			return nil, fmt.Errorf("unknown well-known proxy list %q, expected one of %s",
				config.Name, strings.Join(WellKnownNames(), ", "))
		}
		p = ctor(config.Transport, logger)
	case SystemDatabase:
		if config.DB == nil {
			return nil, fmt.Errorf("database provider requires a database connection")
		}
		p = NewDatabase(config.DB, database.CandidateQuery{
			Protocol: config.Protocol,
			Country:  config.Country,
			Limit:    config.Limit,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported proxy list provider: %s", config.System)
	}

	if config.Locator != nil {
		p = NewLocating(p, config.Locator, logger)
	}
	return p, nil
}

func newParser(config Config) parser.Parser {
	common := parser.Common{DefaultProtocol: config.DefaultProtocol}
	if common.DefaultProtocol == "" {
		common.DefaultProtocol = "http"
	}

	switch config.Format {
	case FormatCSV:
		return &parser.CSV{Common: common, Separator: parser.Detect, EndpointColumn: 1}
	case FormatHTML:
		p := parser.FreeProxyListParser()
		p.Common = common
		return p
	default:
		expr := config.LineRegex
		if expr == "" {
			expr = DefaultLineRegex
		}
		p := parser.NewLineRegex(expr)
		p.Common = common
		return p
	}
}
