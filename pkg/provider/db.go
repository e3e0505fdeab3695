package provider

import (
	"context"
	"log/slog"
	"strings"

	"proxy-discovery/pkg/database"
	"proxy-discovery/pkg/models"
	"proxy-discovery/pkg/parser"
)

// CandidateStore is the part of the database a Database provider reads.
type CandidateStore interface {
	GetCandidates(ctx context.Context, query database.CandidateQuery) ([]models.Candidate, error)
}

// Database serves the candidates stored by the importer.
type Database struct {
	Store  CandidateStore
	Query  database.CandidateQuery
	logger *slog.Logger
}

// NewDatabase returns a provider reading the candidates that match query.
// The country is a two-letter code as stored by the importer.
func NewDatabase(store CandidateStore, query database.CandidateQuery, logger *slog.Logger) *Database {
	if logger == nil {
		logger = slog.Default()
	}
	query.Country = strings.ToUpper(strings.TrimSpace(query.Country))
	return &Database{Store: store, Query: query, logger: logger}
}

func (p *Database) GetProxies(ctx context.Context, onError func(string)) ([]*models.ProxyInformation, error) {
	candidates, err := p.Store.GetCandidates(ctx, p.Query)
	if err != nil {
		onError(err.Error())
		return nil, err
	}

	resolvers := parser.DefaultResolvers()
	proxies := make([]*models.ProxyInformation, 0, len(candidates))
	for _, c := range candidates {
		proxy, ok := c.Proxy(resolvers)
		if !ok {
			onError("Stored candidate " + c.IP + " has an invalid address or port")
			continue
		}
		proxies = append(proxies, proxy)
	}

	p.logger.Debug("Candidates loaded", "count", len(proxies), "protocol", p.Query.Protocol, "country", p.Query.Country)
	return proxies, nil
}

func (p *Database) Validate() []string {
	if p.Store == nil {
		return []string{"Database connection is missing"}
	}
	if p.Query.Limit < 0 {
		return []string{"Candidate limit cannot be negative"}
	}
	return nil
}

func (p *Database) String() string {
	s := "Database: candidates"
	if p.Query.Protocol != "" {
		s = "Database: " + p.Query.Protocol + " candidates"
	}
	if p.Query.Country != "" {
		s += " in " + p.Query.Country
	}
	return s
}
