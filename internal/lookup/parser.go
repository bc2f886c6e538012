package lookup

import (
	"strings"
	"time"

	"namewatch/internal/domain"
)

// Key aliases seen across registries. WHOIS has no schema; every TLD picks
// its own spelling, so matching is prefix-based on lowercased lines.
var (
	registrarKeys = []string{"registrar:", "sponsoring registrar:"}
	createdKeys   = []string{"creation date:", "created:", "created on:", "registered on:", "registration time:", "created date:"}
	expiryKeys    = []string{"registry expiry date:", "registrar registration expiration date:", "expiration date:", "expiry date:", "expires:", "expire:", "paid-till:", "expiration time:"}
	updatedKeys   = []string{"updated date:", "last updated:", "last modified:", "changed:"}
	nsKeys        = []string{"name server:", "nameserver:", "nserver:"}
	statusKeys    = []string{"domain status:", "status:", "state:"}
)

// parseRecord turns a raw WHOIS payload into a RegistryRecord. It never
// fails: whatever cannot be recognized simply stays unset, and Raw keeps the
// full payload for the classifier's phrase matching and for diagnosis.
func parseRecord(raw string) *domain.RegistryRecord {
	rec := &domain.RegistryRecord{Raw: raw}

	seenNS := make(map[string]struct{})
	seenStatus := make(map[string]struct{})

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "%") || strings.HasPrefix(line, "#") {
			continue
		}
		lower := strings.ToLower(line)

		if rec.Registrar == "" {
			if v, ok := valueAfter(line, lower, registrarKeys); ok && v != "" {
				rec.Registrar = v
				continue
			}
		}
		if rec.CreatedDate == nil {
			if v, ok := valueAfter(line, lower, createdKeys); ok {
				if t, err := parseTimestamp(v); err == nil {
					rec.CreatedDate = &t
				}
				continue
			}
		}
		if rec.ExpirationDate == nil {
			if v, ok := valueAfter(line, lower, expiryKeys); ok {
				if t, err := parseTimestamp(v); err == nil {
					rec.ExpirationDate = &t
				}
				continue
			}
		}
		if rec.UpdatedDate == nil {
			if v, ok := valueAfter(line, lower, updatedKeys); ok {
				if t, err := parseTimestamp(v); err == nil {
					rec.UpdatedDate = &t
				}
				continue
			}
		}
		if v, ok := valueAfter(line, lower, nsKeys); ok && v != "" {
			ns := strings.TrimSuffix(strings.ToLower(strings.Fields(v)[0]), ".")
			if ns != "" {
				if _, dup := seenNS[ns]; !dup {
					seenNS[ns] = struct{}{}
					rec.NameServers = append(rec.NameServers, ns)
				}
			}
			continue
		}
		if v, ok := valueAfter(line, lower, statusKeys); ok && v != "" {
			// ICANN format appends an EPP URL after the token, RU-style
			// registries separate states with commas; keep the bare token.
			token := strings.Trim(strings.ToLower(strings.Fields(v)[0]), ",;")
			if token == "" {
				continue
			}
			if _, dup := seenStatus[token]; !dup {
				seenStatus[token] = struct{}{}
				rec.StatusTokens = append(rec.StatusTokens, token)
			}
		}
	}

	return rec
}

// valueAfter returns the trimmed remainder of line after the first matching
// key prefix.
func valueAfter(line, lower string, keys []string) (string, bool) {
	for _, key := range keys {
		if strings.HasPrefix(lower, key) {
			return strings.TrimSpace(line[len(key):]), true
		}
	}
	return "", false
}

// Date layouts observed in the wild, most common first.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.0Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006.01.02",
	"02-Jan-2006",
	"02.01.2006",
	"20060102",
	"2006/01/02",
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
