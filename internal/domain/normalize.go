package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// ErrInvalidDomain is returned by Normalize for any input that cannot be
// turned into a valid registrable domain name.
var ErrInvalidDomain = errors.New("invalid domain format")

const (
	maxDomainLength = 253
	maxLabelLength  = 63
)

var labelPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Normalize canonicalizes a raw domain string: scheme and leading "www."
// stripped, lowercased, path/port removed, then validated label by label.
// This is the single place format errors surface; everything downstream
// assumes its input already went through here.
func Normalize(raw string) (NormalizedDomain, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidDomain)
	}

	name = strings.TrimPrefix(name, "http://")
	name = strings.TrimPrefix(name, "https://")
	name = strings.TrimPrefix(name, "www.")
	if i := strings.IndexByte(name, '/'); i >= 0 {
		name = name[:i]
	}
	if i := strings.IndexByte(name, ':'); i >= 0 {
		name = name[:i]
	}

	if name == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidDomain)
	}
	if len(name) > maxDomainLength {
		return "", fmt.Errorf("%w: %q exceeds %d characters", ErrInvalidDomain, name, maxDomainLength)
	}
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return "", fmt.Errorf("%w: %q has a leading or trailing dot", ErrInvalidDomain, name)
	}
	if strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q contains consecutive dots", ErrInvalidDomain, name)
	}

	labels := strings.Split(name, ".")
	if len(labels) < 2 {
		return "", fmt.Errorf("%w: %q is missing a TLD", ErrInvalidDomain, name)
	}
	for _, label := range labels {
		if len(label) > maxLabelLength {
			return "", fmt.Errorf("%w: label %q exceeds %d characters", ErrInvalidDomain, label, maxLabelLength)
		}
		if !labelPattern.MatchString(label) {
			return "", fmt.Errorf("%w: label %q is malformed", ErrInvalidDomain, label)
		}
	}

	// A suffix with no dot that the ICANN list does not know about is not a
	// registrable TLD (per the publicsuffix package docs).
	suffix, icann := publicsuffix.PublicSuffix(name)
	if !icann && !strings.Contains(suffix, ".") {
		return "", fmt.Errorf("%w: %q has an unknown TLD", ErrInvalidDomain, name)
	}
	if name == suffix {
		return "", fmt.Errorf("%w: %q is a public suffix, not a registrable domain", ErrInvalidDomain, name)
	}

	return NormalizedDomain(name), nil
}
