package models

import (
	"strconv"
	"time"
)

// CheckResult is the outcome of checking one proxy.
type CheckResult int

const (
	// Unchecked means the proxy was not evaluated: unsupported protocol or
	// checking disabled.
	Unchecked CheckResult = iota - 1
	OK
	// NetworkError is a connect or I/O failure. Callers may retry these.
	NetworkError
	// ServiceRefused means the proxy or target actively rejected us.
	ServiceRefused
	UnparsableResponse
	SSLError
	// Failure is anything unclassified.
	Failure
	Canceled
)

var checkResultNames = map[CheckResult]string{
	Unchecked:          "Unchecked",
	OK:                 "OK",
	NetworkError:       "NetworkError",
	ServiceRefused:     "ServiceRefused",
	UnparsableResponse: "UnparsableResponse",
	SSLError:           "SSLError",
	Failure:            "Failure",
	Canceled:           "Canceled",
}

func (r CheckResult) String() string {
	if name, ok := checkResultNames[r]; ok {
		return name
	}
	return "CheckResult(" + strconv.Itoa(int(r)) + ")"
}

// ProxyState is the record of one finished check. It is created once per
// check and never modified.
type ProxyState struct {
	Proxy  *ProxyInformation
	Result CheckResult
	Status string
	Delay  time.Duration
}

// NewProxyState records a check outcome.
func NewProxyState(proxy *ProxyInformation, result CheckResult, status string, delay time.Duration) ProxyState {
	return ProxyState{Proxy: proxy, Result: result, Status: status, Delay: delay}
}
