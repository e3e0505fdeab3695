// Package geo locates proxy addresses when a list does not say where a
// proxy is. Locators return ISO country codes; names are resolved by the
// caller.
package geo

import (
	"context"
	"errors"
	"io"
	"net/netip"
)

// Location of an address. Empty fields are unknown.
type Location struct {
	Country string
	City    string
}

// Locator looks up an address.
type Locator interface {
	Locate(ctx context.Context, addr netip.Addr) (Location, error)
}

// Chain asks each locator in order and fills the fields that are still
// empty. Errors are collected but do not stop the chain.
type Chain []Locator

func (c Chain) Locate(ctx context.Context, addr netip.Addr) (Location, error) {
	var loc Location
	var errs []error
	for _, l := range c {
		if loc.Country != "" && loc.City != "" {
			break
		}
		found, err := l.Locate(ctx, addr)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if loc.Country == "" {
			loc.Country = found.Country
		}
		if loc.City == "" {
			loc.City = found.City
		}
	}
	if loc.Country == "" && loc.City == "" && len(errs) > 0 {
		return loc, errors.Join(errs...)
	}
	return loc, nil
}

// Close closes every locator that holds resources.
func (c Chain) Close() error {
	var errs []error
	for _, l := range c {
		if closer, ok := l.(io.Closer); ok {
			errs = append(errs, closer.Close())
		}
	}
	return errors.Join(errs...)
}
