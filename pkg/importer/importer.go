// Package importer loads proxy lists into the candidates table so that the
// database provider can serve them to later discovery runs.
package importer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"net/url"
	"os"
	"strings"

	"proxy-discovery/pkg/geo"
	"proxy-discovery/pkg/lookup"
	"proxy-discovery/pkg/models"

	"github.com/google/uuid"
)

const batchSize = 500

// Resolver looks up host names. *net.Resolver implements it.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// Store persists candidates. *database.DB implements it.
type Store interface {
	UpsertCandidates(ctx context.Context, candidates []models.Candidate) (int64, error)
	RemoveBatch(ctx context.Context, batch string) (int64, error)
}

type Importer struct {
	Store    Store
	Resolver Resolver
	// Locator fills in countries when set.
	Locator geo.Locator
	// DefaultProtocol applies to lines without a scheme.
	DefaultProtocol string
	// Replace names an earlier batch. Its candidates that the new list
	// did not refresh are removed once the import succeeds.
	Replace string
	logger  *slog.Logger
}

func New(store Store, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		Store:           store,
		Resolver:        net.DefaultResolver,
		DefaultProtocol: "http",
		logger:          logger,
	}
}

// Result summarizes one import.
type Result struct {
	Batch   string
	Lines   int
	Skipped int
	Stored  int64
	Removed int64
}

// endpoint is one parsed list line before resolution.
type endpoint struct {
	Protocol string
	Host     string
	Port     uint16
	Name     string
	SSL      models.Tristate
}

func (i *Importer) ImportFile(ctx context.Context, filename string) (Result, error) {
	file, err := os.Open(filename)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open file: %v", err)
	}
	defer file.Close()

	return i.Import(ctx, file)
}

// Import reads "[scheme://]host:port[#name]" lines, resolves host names to
// every address and upserts the result as one batch. Blank lines and lines
// starting with '#' are ignored. Bad lines are logged and skipped.
func (i *Importer) Import(ctx context.Context, r io.Reader) (Result, error) {
	res := Result{Batch: uuid.NewString()}
	logger := i.logger.With("batch", res.Batch)

	seen := make(map[netip.AddrPort]struct{})
	var pending []models.Candidate

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		n, err := i.Store.UpsertCandidates(ctx, pending)
		if err != nil {
			return err
		}
		res.Stored += n
		pending = pending[:0]
		return nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		res.Lines++

		ep, err := parseLine(line, i.DefaultProtocol)
		if err != nil {
			logger.Error("Error parsing proxy line", "line", line, "error", err)
			res.Skipped++
			continue
		}

		addrs, err := i.resolve(ctx, ep.Host)
		if err != nil {
			logger.Warn("Failed to resolve hostname", "hostname", ep.Host, "error", err)
			res.Skipped++
			continue
		}

		for _, addr := range addrs {
			key := netip.AddrPortFrom(addr.Unmap(), ep.Port)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}

			c := i.candidate(ctx, ep, addr, res.Batch)
			logger.Debug("Adding candidate", "ip", c.IP, "port", c.Port, "protocol", c.Protocol)
			pending = append(pending, c)
		}

		if len(pending) >= batchSize {
			if err := flush(); err != nil {
				return res, fmt.Errorf("error storing candidates: %w", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("error reading file: %v", err)
	}
	if err := flush(); err != nil {
		return res, fmt.Errorf("error storing candidates: %w", err)
	}

	if i.Replace != "" {
		n, err := i.Store.RemoveBatch(ctx, i.Replace)
		if err != nil {
			return res, fmt.Errorf("error replacing batch %s: %w", i.Replace, err)
		}
		res.Removed = n
	}

	logger.Info("Import complete", "lines", res.Lines, "skipped", res.Skipped, "stored", res.Stored, "removed", res.Removed)
	return res, nil
}

func (i *Importer) candidate(ctx context.Context, ep endpoint, addr netip.Addr, batch string) models.Candidate {
	d := models.Details{Protocol: ep.Protocol, SSL: ep.SSL, Name: ep.Name}
	if i.Locator != nil {
		loc, err := i.Locator.Locate(ctx, addr)
		if err != nil {
			i.logger.Debug("Error locating candidate", "ip", addr, "error", err)
		} else {
			d.Country, d.City = loc.Country, loc.City
		}
	}

	p := models.NewProxyInformation(addr, ep.Port, d, models.Resolvers{Services: lookup.Services()})

	host := ep.Host
	if _, err := netip.ParseAddr(host); err == nil {
		host = ""
	}
	return models.CandidateFrom(p, host, batch)
}

// resolve returns host itself when it is an address, or every address it
// resolves to.
func (i *Importer) resolve(ctx context.Context, host string) ([]netip.Addr, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return []netip.Addr{addr}, nil
	}

	addrs, err := i.Resolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no addresses for %s", host)
	}
	return addrs, nil
}

func parseLine(line, defaultProtocol string) (endpoint, error) {
	ep := endpoint{Protocol: strings.ToLower(defaultProtocol)}

	hostport := line
	if strings.Contains(line, "://") {
		u, err := url.Parse(line)
		if err != nil {
			return ep, fmt.Errorf("failed to parse proxy URL: %v", err)
		}
		ep.Protocol = strings.ToLower(u.Scheme)
		ep.Name = u.Fragment
		hostport = u.Host
	} else if before, name, ok := strings.Cut(line, "#"); ok {
		hostport, ep.Name = strings.TrimSpace(before), strings.TrimSpace(name)
	}

	if ep.Protocol == "https" {
		ep.Protocol, ep.SSL = "http", models.Yes
	}

	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		return ep, err
	}
	if host == "" {
		return ep, fmt.Errorf("missing host in %q", hostport)
	}
	ep.Host = host

	ep.Port, err = models.ParsePort(port)
	if err != nil {
		return ep, err
	}
	if ep.Port == 0 {
		return ep, fmt.Errorf("invalid port %q", port)
	}
	return ep, nil
}
