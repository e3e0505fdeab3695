package discovery

import (
	"log/slog"

	"proxy-discovery/pkg/models"
	"proxy-discovery/pkg/provider"
)

// Observer receives discovery events. Methods may be called from worker
// goroutines and must not block for long.
type Observer interface {
	LogMessage(msg string)
	ProviderError(p provider.Provider, msg string)
	// AcquisitionComplete reports how many new proxies a provider added.
	AcquisitionComplete(p provider.Provider, count int)
	FilteringComplete(count int)
	ProxyCheckComplete(state models.ProxyState)
	StatusChanged(status Status)
}

// NopObserver ignores every event. Embed it to implement a subset.
type NopObserver struct{}

func (NopObserver) LogMessage(string) {}
func (NopObserver) ProviderError(provider.Provider, string) {}
func (NopObserver) AcquisitionComplete(provider.Provider, int) {}
func (NopObserver) FilteringComplete(int) {}
func (NopObserver) ProxyCheckComplete(models.ProxyState) {}
func (NopObserver) StatusChanged(Status) {}

// LogObserver writes events to a logger. Log messages are skipped since
// Discovery already writes them to its own logger.
type LogObserver struct {
	NopObserver
	Logger *slog.Logger
}

func (o LogObserver) ProviderError(p provider.Provider, msg string) {
	o.Logger.Warn("Proxy list provider error", "provider", p.String(), "message", msg)
}

func (o LogObserver) AcquisitionComplete(p provider.Provider, count int) {
	o.Logger.Info("Proxy list acquired", "provider", p.String(), "added", count)
}

func (o LogObserver) FilteringComplete(count int) {
	o.Logger.Info("Filtering complete", "remaining", count)
}

func (o LogObserver) ProxyCheckComplete(state models.ProxyState) {
	o.Logger.Debug("Proxy checked",
		"proxy", state.Proxy.URL(),
		"result", state.Result,
		"status", state.Status,
		"delay", state.Delay,
	)
}

func (o LogObserver) StatusChanged(status Status) {
	o.Logger.Debug("Discovery status changed", "status", status)
}

// Multi forwards every event to each observer in order.
type Multi []Observer

func (m Multi) LogMessage(msg string) {
	for _, o := range m {
		o.LogMessage(msg)
	}
}

func (m Multi) ProviderError(p provider.Provider, msg string) {
	for _, o := range m {
		o.ProviderError(p, msg)
	}
}

func (m Multi) AcquisitionComplete(p provider.Provider, count int) {
	for _, o := range m {
		o.AcquisitionComplete(p, count)
	}
}

func (m Multi) FilteringComplete(count int) {
	for _, o := range m {
		o.FilteringComplete(count)
	}
}

func (m Multi) ProxyCheckComplete(state models.ProxyState) {
	for _, o := range m {
		o.ProxyCheckComplete(state)
	}
}

func (m Multi) StatusChanged(status Status) {
	for _, o := range m {
		o.StatusChanged(status)
	}
}
