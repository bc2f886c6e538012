package lookup

import (
	"context"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/likexian/whois"

	"namewatch/internal/domain"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultDNSServer = "8.8.8.8:53"
)

// Outcome is the raw material handed to the classifier. ProbeSucceeded means
// the domain resolved in DNS, which is a cheap proxy for "in active use"; in
// that case no registry record is fetched. Record may be nil even on a clean
// lookup when the registry reported no data at all.
type Outcome struct {
	ProbeSucceeded bool
	Record         *domain.RegistryRecord
}

// Resolver performs the two-stage registration lookup: DNS existence probe
// first, WHOIS only when the probe finds nothing. It holds no cache; callers
// own caching and request deduplication.
type Resolver struct {
	dns     *net.Resolver
	whois   *whois.Client
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTimeout bounds each external round-trip (DNS probe and WHOIS query
// separately).
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithDNSServer overrides the resolver used for the existence probe. The
// default pins a public resolver so results do not depend on host DNS
// configuration.
func WithDNSServer(addr string) Option {
	return func(r *Resolver) {
		r.dns = &net.Resolver{
			PreferGo: true,
			Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
				d := net.Dialer{Timeout: 5 * time.Second}
				return d.DialContext(ctx, network, addr)
			},
		}
	}
}

// New creates a Resolver with the default public DNS probe and WHOIS client.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		timeout: defaultTimeout,
		logger:  slog.Default(),
	}
	WithDNSServer(defaultDNSServer)(r)
	for _, opt := range opts {
		opt(r)
	}
	c := whois.NewClient()
	c.SetTimeout(r.timeout)
	r.whois = c
	return r
}

// Resolve probes DNS and, when the name does not resolve, queries WHOIS.
// A non-nil error is always a *Error and means the registry could not be
// consulted; it is never returned for a clean "no such record" response.
func (r *Resolver) Resolve(ctx context.Context, d domain.NormalizedDomain) (Outcome, error) {
	probeCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	addrs, err := r.dns.LookupHost(probeCtx, string(d))
	if err == nil && len(addrs) > 0 {
		return Outcome{ProbeSucceeded: true}, nil
	}
	if err != nil {
		// Anything short of a resolved address (NXDOMAIN, probe timeout)
		// falls through to the registry record, which has the final say.
		r.logger.DebugContext(ctx, "dns probe failed, falling back to whois",
			"domain", d, "error", err)
	}

	raw, err := r.queryWhois(ctx, d)
	if err != nil {
		return Outcome{}, err
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Outcome{}, newError(FailureUnparsable, d, "empty whois payload", nil)
	}

	return Outcome{Record: parseRecord(raw)}, nil
}

// queryWhois runs the WHOIS lookup in a goroutine so the caller's context is
// honored even though the underlying client only supports socket timeouts.
func (r *Resolver) queryWhois(ctx context.Context, d domain.NormalizedDomain) (string, error) {
	type whoisResult struct {
		raw string
		err error
	}
	ch := make(chan whoisResult, 1)
	go func() {
		raw, err := r.whois.Whois(string(d))
		ch <- whoisResult{raw: raw, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", newError(FailureTimeout, d, "whois query canceled", ctx.Err())
	case res := <-ch:
		if res.err != nil {
			if ne, ok := res.err.(net.Error); ok && ne.Timeout() {
				return "", newError(FailureTimeout, d, "whois query timed out", res.err)
			}
			return "", newError(FailureTransport, d, "whois query failed", res.err)
		}
		return res.raw, nil
	}
}
