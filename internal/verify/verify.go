// Package verify checks that a synchronized record is actually served by a
// nameserver, as a post-sync confirmation step.
package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/miekg/dns"

	"gitlab.bluewillows.net/root/zonesync/pkg/record"
)

// Sentinel errors for verification outcomes.
var (
	// ErrNoAnswer is returned when the nameserver has no record of the
	// queried name and type.
	ErrNoAnswer = errors.New("no answer for record")

	// ErrMismatch is returned when the served content differs from the
	// expected content.
	ErrMismatch = errors.New("served record does not match expected content")
)

// Checker queries a nameserver to confirm record content.
type Checker struct {
	nameserver string // host:port
	client     *dns.Client
	logger     *slog.Logger
}

// Option is a functional option for configuring the Checker.
type Option func(*Checker)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTimeout sets the query timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Checker) {
		c.client.Timeout = timeout
	}
}

// New creates a Checker querying the given nameserver (host:port).
func New(nameserver string, opts ...Option) *Checker {
	c := &Checker{
		nameserver: nameserver,
		client:     &dns.Client{Timeout: 5 * time.Second},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// qtypes maps panel record types to DNS query types.
var qtypes = map[record.Type]uint16{
	record.TypeA:     dns.TypeA,
	record.TypeAAAA:  dns.TypeAAAA,
	record.TypeCNAME: dns.TypeCNAME,
	record.TypeTXT:   dns.TypeTXT,
	record.TypeMX:    dns.TypeMX,
}

// Check queries the nameserver for hostname/typ and confirms that one of the
// answers carries the expected content.
func (c *Checker) Check(ctx context.Context, hostname string, typ record.Type, want string) error {
	qtype, ok := qtypes[typ]
	if !ok {
		return fmt.Errorf("cannot verify record type %q", typ)
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(hostname), qtype)

	resp, rtt, err := c.client.ExchangeContext(ctx, msg, c.nameserver)
	if err != nil {
		return fmt.Errorf("querying %s: %w", c.nameserver, err)
	}

	c.logger.Debug("verification query answered",
		slog.String("hostname", hostname),
		slog.String("type", string(typ)),
		slog.Int("answers", len(resp.Answer)),
		slog.Duration("rtt", rtt))

	if resp.Rcode != dns.RcodeSuccess || len(resp.Answer) == 0 {
		return fmt.Errorf("%w: %s %s", ErrNoAnswer, hostname, typ)
	}

	var served []string
	for _, rr := range resp.Answer {
		content, ok := rrContent(rr)
		if !ok {
			continue
		}
		if contentEqual(typ, content, want) {
			return nil
		}
		served = append(served, content)
	}

	return fmt.Errorf("%w: %s %s serves %s, expected %s",
		ErrMismatch, hostname, typ, strings.Join(served, ", "), want)
}

// rrContent extracts the comparable content from an answer record.
func rrContent(rr dns.RR) (string, bool) {
	switch v := rr.(type) {
	case *dns.A:
		return v.A.String(), true
	case *dns.AAAA:
		return v.AAAA.String(), true
	case *dns.CNAME:
		return v.Target, true
	case *dns.TXT:
		return strings.Join(v.Txt, ""), true
	case *dns.MX:
		return v.Mx, true
	}
	return "", false
}

// contentEqual compares served and expected content, ignoring the trailing
// dot on name-valued records.
func contentEqual(typ record.Type, served, want string) bool {
	switch typ {
	case record.TypeCNAME, record.TypeMX:
		return served == dns.Fqdn(want)
	}
	return served == want
}
