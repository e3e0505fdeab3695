// Package discovery runs the proxy discovery pipeline: acquire lists from
// providers, drop what the filters reject, then check the rest concurrently
// until enough working proxies are found.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/netip"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"proxy-discovery/pkg/filter"
	"proxy-discovery/pkg/models"
	"proxy-discovery/pkg/provider"
	"proxy-discovery/pkg/taskqueue"

	"github.com/google/uuid"
)

// ErrUpdateInProgress is returned by Update while another Update runs.
var ErrUpdateInProgress = errors.New("proxy discovery update is already in progress")

const DefaultMaxThreads = 32

// Status is the pipeline phase.
type Status int32

const (
	Idle Status = iota
	Acquisition
	Filtering
	Checking
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Acquisition:
		return "Acquisition"
	case Filtering:
		return "Filtering"
	case Checking:
		return "Checking"
	default:
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}
}

// Checker checks single proxies. checker.ProxyChecker implements it.
type Checker interface {
	Validate() []string
	Prepare() error
	CheckProxy(ctx context.Context, proxy *models.ProxyInformation) models.ProxyState
}

// Discovery holds the pipeline configuration and the results of the last
// Update. Configuration must not change while Update runs.
type Discovery struct {
	Providers []provider.Provider
	Filters   []filter.Filter
	// Checker may be nil to skip checking; every proxy that survives the
	// filters is then reported as Unchecked.
	Checker    Checker
	MaxThreads int
	// Shuffle randomizes the check order so that the result cap is not
	// filled from the first provider alone.
	Shuffle bool
	// Rand is used for shuffling. Nil uses a time-seeded source.
	Rand     *rand.Rand
	Observer Observer

	logger  *slog.Logger
	running atomic.Bool
	status  atomic.Int32

	mu      sync.Mutex
	proxies []models.ProxyState
}

func New(logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{
		MaxThreads: DefaultMaxThreads,
		Shuffle:    true,
		Observer:   NopObserver{},
		logger:     logger,
	}
}

// Status returns the current phase.
func (d *Discovery) Status() Status {
	return Status(d.status.Load())
}

// Proxies returns the results of the last Update in completion order.
func (d *Discovery) Proxies() []models.ProxyState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.ProxyState(nil), d.proxies...)
}

// PopProxy removes and returns the first result, or nil if there is none.
func (d *Discovery) PopProxy() *models.ProxyInformation {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.proxies) == 0 {
		return nil
	}
	state := d.proxies[0]
	d.proxies = d.proxies[1:]
	return state.Proxy
}

// Validate returns the configuration problems of the pipeline and of every
// component, each prefixed with the component name.
func (d *Discovery) Validate() []string {
	var problems []string
	if len(d.Providers) == 0 {
		problems = append(problems, "At least one proxy list provider must be added")
	}
	if d.MaxThreads < 1 {
		problems = append(problems, "Max threads must be positive")
	}

	for _, p := range d.Providers {
		if p == nil {
			problems = append(problems, "Proxy list provider cannot be null")
			continue
		}
		for _, s := range p.Validate() {
			problems = append(problems, fmt.Sprintf("%v: %s", p, s))
		}
	}
	for _, f := range d.Filters {
		if f == nil {
			problems = append(problems, "Proxy filter cannot be null")
			continue
		}
		for _, s := range f.Validate() {
			problems = append(problems, fmt.Sprintf("%v: %s", f, s))
		}
	}
	if d.Checker != nil {
		for _, s := range d.Checker.Validate() {
			problems = append(problems, "Proxy checker: "+s)
		}
	}
	return problems
}

// Update runs the pipeline and replaces the results. maxResults limits the
// number of working proxies; 0 means no limit. Results gathered before ctx
// is canceled are kept, and ctx.Err() is returned.
func (d *Discovery) Update(ctx context.Context, maxResults int) error {
	if !d.running.CompareAndSwap(false, true) {
		return ErrUpdateInProgress
	}
	defer func() {
		d.setStatus(Idle)
		d.running.Store(false)
	}()

	u := &update{
		Discovery:  d,
		maxResults: maxResults,
		logger:     d.logger.With("run", uuid.NewString()),
		set:        newProxySet(),
	}
	if d.Observer == nil {
		d.Observer = NopObserver{}
	}

	err := u.run(ctx)

	d.mu.Lock()
	d.proxies = u.results
	d.mu.Unlock()

	return err
}

func (d *Discovery) setStatus(s Status) {
	if Status(d.status.Swap(int32(s))) != s {
		d.Observer.StatusChanged(s)
	}
}

// update is the state of one Update call.
type update struct {
	*Discovery
	maxResults int
	logger     *slog.Logger
	set        *proxySet

	resultsMu sync.Mutex
	results   []models.ProxyState
}

func (u *update) log(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	u.logger.Info(msg)
	u.Observer.LogMessage(msg)
}

func (u *update) run(ctx context.Context) error {
	u.setStatus(Acquisition)
	if err := u.acquire(ctx); err != nil {
		return err
	}

	u.setStatus(Filtering)
	if err := u.filter(ctx); err != nil {
		return err
	}

	proxies := u.set.list()
	if u.Shuffle {
		r := u.Rand
		if r == nil {
			r = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		r.Shuffle(len(proxies), func(i, j int) { proxies[i], proxies[j] = proxies[j], proxies[i] })
	}

	if u.Checker == nil {
		u.collectUnchecked(proxies)
		return nil
	}

	u.setStatus(Checking)
	return u.check(ctx, proxies)
}

func (u *update) acquire(ctx context.Context) error {
	for _, p := range u.Providers {
		if err := ctx.Err(); err != nil {
			return err
		}

		u.log("Acquiring proxies list: %v", p)
		p := p
		onError := func(msg string) { u.Observer.ProviderError(p, msg) }

		proxies, err := getProxies(ctx, p, onError)
		if err != nil {
			u.log("Failed to get proxy list from: %v. Message: %v", p, err)
			continue
		}

		added := u.set.add(proxies)
		u.Observer.AcquisitionComplete(p, added)
	}

	u.log("Proxies acquired: %d", u.set.len())
	return nil
}

// getProxies turns a provider panic into an error so one broken provider
// does not end the run.
func getProxies(ctx context.Context, p provider.Provider, onError func(string)) (proxies []*models.ProxyInformation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panicked: %v", r)
		}
	}()
	return p.GetProxies(ctx, onError)
}

func (u *update) filter(ctx context.Context) error {
	if len(u.Filters) > 0 {
		done := make(chan struct{})
		go func() {
			defer close(done)
			u.set.removeIf(func(p *models.ProxyInformation) bool {
				for _, f := range u.Filters {
					if !f.Passes(p) {
						return true
					}
				}
				return false
			})
		}()

		select {
		case <-done:
		case <-ctx.Done():
			<-done
			return ctx.Err()
		}
		u.log("Proxies remain after filtering: %d", u.set.len())
	}

	u.Observer.FilteringComplete(u.set.len())
	return nil
}

func (u *update) collectUnchecked(proxies []*models.ProxyInformation) {
	for _, p := range proxies {
		if u.maxResults > 0 && len(u.results) >= u.maxResults {
			break
		}
		u.results = append(u.results, models.NewProxyState(p, models.Unchecked, "Not checked", 0))
	}
}

func (u *update) check(ctx context.Context, proxies []*models.ProxyInformation) error {
	limit := "unlimited"
	if u.maxResults > 0 {
		limit = strconv.Itoa(u.maxResults)
	}
	u.log("Checking proxy list availability, maxThreads = %d, maxResults = %s", u.MaxThreads, limit)

	if err := u.Checker.Prepare(); err != nil {
		return fmt.Errorf("failed to prepare proxy checker: %w", err)
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	taskqueue.Run(runCtx, proxies, u.MaxThreads, func(ctx context.Context, p *models.ProxyInformation) {
		if u.full() {
			return
		}

		state := u.Checker.CheckProxy(ctx, p)
		if state.Result == models.OK && u.addResult(state) {
			u.logger.Debug("Enough working proxies found", "count", u.maxResults)
			stop()
		}
		u.Observer.ProxyCheckComplete(state)
	})

	return ctx.Err()
}

func (u *update) full() bool {
	if u.maxResults <= 0 {
		return false
	}
	u.resultsMu.Lock()
	defer u.resultsMu.Unlock()
	return len(u.results) >= u.maxResults
}

// addResult appends a working proxy unless the cap was reached meanwhile.
// It reports whether the cap is now reached.
func (u *update) addResult(state models.ProxyState) bool {
	u.resultsMu.Lock()
	defer u.resultsMu.Unlock()
	if u.maxResults > 0 && len(u.results) >= u.maxResults {
		return true
	}
	u.results = append(u.results, state)
	return u.maxResults > 0 && len(u.results) >= u.maxResults
}

// proxySet keeps the first entry for every endpoint, in insertion order.
type proxySet struct {
	seen    map[netip.AddrPort]struct{}
	proxies []*models.ProxyInformation
}

func newProxySet() *proxySet {
	return &proxySet{seen: make(map[netip.AddrPort]struct{})}
}

func (s *proxySet) add(proxies []*models.ProxyInformation) int {
	added := 0
	for _, p := range proxies {
		if p == nil {
			continue
		}
		if _, ok := s.seen[p.Key()]; ok {
			continue
		}
		s.seen[p.Key()] = struct{}{}
		s.proxies = append(s.proxies, p)
		added++
	}
	return added
}

func (s *proxySet) removeIf(drop func(*models.ProxyInformation) bool) {
	kept := s.proxies[:0]
	for _, p := range s.proxies {
		if drop(p) {
			delete(s.seen, p.Key())
			continue
		}
		kept = append(kept, p)
	}
	s.proxies = kept
}

func (s *proxySet) len() int { return len(s.proxies) }

func (s *proxySet) list() []*models.ProxyInformation {
	return append([]*models.ProxyInformation(nil), s.proxies...)
}
