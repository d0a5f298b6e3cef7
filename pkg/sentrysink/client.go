package sentrysink

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/getsentry/sentry-go"
)

const (
	// DefaultClientFactory names the factory backed by sentry.NewClient.
	DefaultClientFactory = "default"

	// AppPackagesOption is the DSN query option listing in-app package prefixes.
	AppPackagesOption = "stacktrace.app.packages"
)

// ClientFactory builds a Sentry client from options.
type ClientFactory func(opts sentry.ClientOptions) (*sentry.Client, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[string]ClientFactory{
		DefaultClientFactory: sentry.NewClient,
	}
)

// RegisterClientFactory makes f selectable by name from configuration.
// Registering an existing name replaces it.
func RegisterClientFactory(name string, f ClientFactory) {
	if name == "" || f == nil {
		return
	}
	factoriesMu.Lock()
	factories[name] = f
	factoriesMu.Unlock()
}

// LookupClientFactory returns the factory registered under name.
// An empty name selects DefaultClientFactory.
func LookupClientFactory(name string) (ClientFactory, error) {
	if name == "" {
		name = DefaultClientFactory
	}
	factoriesMu.RLock()
	f, ok := factories[name]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClientFactory, name)
	}
	return f, nil
}

// DSN is a parsed connection descriptor.
type DSN struct {
	// URL is the DSN with the app-packages option removed, ready for sentry-go.
	URL string
	// AppPackages lists in-app package prefixes found in the DSN query.
	AppPackages []string
	// HasAppPackages reports whether the DSN carried the option at all.
	HasAppPackages bool
}

// ParseDSN validates raw and extracts the stacktrace.app.packages option.
func ParseDSN(raw string) (DSN, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return DSN{}, fmt.Errorf("%w: %w", ErrInvalidDSN, err)
	}
	if u.Scheme == "" || u.Host == "" || u.User == nil {
		return DSN{}, fmt.Errorf("%w: %q", ErrInvalidDSN, raw)
	}

	var d DSN
	q := u.Query()
	if q.Has(AppPackagesOption) {
		d.HasAppPackages = true
		d.AppPackages = splitPackages(q.Get(AppPackagesOption))
		q.Del(AppPackagesOption)
		u.RawQuery = q.Encode()
	}
	d.URL = u.String()
	return d, nil
}

func splitPackages(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
