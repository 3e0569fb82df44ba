// Package record defines the desired-record model shared by the syncer and the
// panel API client.
package record

import (
	"fmt"
	"regexp"
)

// Type represents the type of DNS record.
type Type string

const (
	TypeA     Type = "A"
	TypeAAAA  Type = "AAAA"
	TypeCNAME Type = "CNAME"
	TypeTXT   Type = "TXT"
	TypeMX    Type = "MX"
)

// RootName is the subdomain name the panel uses for the zone apex.
const RootName = "@"

// Desired represents the record state one reconciliation drives the zone towards.
// It is immutable for the duration of that reconciliation.
type Desired struct {
	Name    string // subdomain, RootName for the apex
	Type    Type
	Content string // target value, e.g. an IP address
	TTL     int    // seconds
}

// Matches reports whether a stored record with the given name and type is the
// one this desired record should replace. The matching key is (name, type),
// exact and case-sensitive; content and TTL are what is being changed.
func (d Desired) Matches(name string, typ Type) bool {
	return d.Name == name && d.Type == typ
}

// hostnamePattern splits a fully-qualified hostname into an optional subdomain
// part and a two-label root domain.
var hostnamePattern = regexp.MustCompile(`^(?:(.+)\.)?([^.]+\.[^.]+)$`)

// SplitHostname splits a fully-qualified hostname into its subdomain and root
// domain parts. A hostname without a subdomain segment yields RootName:
//
//	"home.example.com" -> ("home", "example.com")
//	"example.com"      -> ("@", "example.com")
//
// Hostnames with fewer than two labels cannot be split and return an error.
func SplitHostname(hostname string) (sub, domain string, err error) {
	m := hostnamePattern.FindStringSubmatch(hostname)
	if m == nil {
		return "", "", fmt.Errorf("hostname %q has no domain part", hostname)
	}

	sub = m[1]
	if sub == "" {
		sub = RootName
	}
	return sub, m[2], nil
}

// ValidType reports whether t is one of the record types the panel manages.
func ValidType(t Type) bool {
	switch t {
	case TypeA, TypeAAAA, TypeCNAME, TypeTXT, TypeMX:
		return true
	}
	return false
}
