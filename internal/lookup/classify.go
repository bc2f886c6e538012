package lookup

import (
	"strings"
	"time"

	"namewatch/internal/domain"
)

// Phrases that mean the registry has no record for the queried name. These
// are matched against the full raw payload, not only structured fields,
// because many registries only say so in free text.
var noMatchPhrases = []string{
	"no match",
	"not found",
	"no data found",
	"no entries found",
	"no object found",
	"object does not exist",
	"no such domain",
	"domain not found",
	"nothing found",
	"no matching record",
	"status: free",
	"status: available",
	"is available for registration",
	"domain name has not been registered",
}

// Status tokens that prove an active registration. EPP prohibitions and the
// bare "active"/"ok"/"registered" states all count; so does the RU-style
// "paid-till" marker which some registries emit as a status.
var lockTokens = map[string]struct{}{
	"clientdeleteprohibited":   {},
	"clienttransferprohibited": {},
	"clientupdateprohibited":   {},
	"clientrenewprohibited":    {},
	"clienthold":               {},
	"serverdeleteprohibited":   {},
	"servertransferprohibited": {},
	"serverupdateprohibited":   {},
	"serverrenewprohibited":    {},
	"serverhold":               {},
	"active":                   {},
	"registered":               {},
	"ok":                       {},
	"connect":                  {},
	"paid-till":                {},
}

var premiumMarkers = []string{"premium", "platinum"}
var premiumQualifiers = []string{"purchase", "offer", "contact", "aftermarket", "buy now"}

// Classify maps a probe result plus a registry record (or lookup failure)
// into a Status. It is a pure function of its inputs and the supplied clock;
// both the synchronous check path and the monitor route through it so the
// two can never disagree.
//
// Decision order, first match wins:
//  1. probe resolved            -> registered (record not consulted)
//  2. lookup failed             -> unknown (never infer availability from a
//     transport error)
//  3. payload says "no record"  -> available
//  4. payload marks the name reserved or premium-priced -> reserved/premium
//  5. a registry-lock status token is present -> registered
//  6. expiration date in the past -> available (lapsed registration)
//  7. creation date or name servers present -> registered (conservative)
//  8. otherwise                 -> unknown
func Classify(probeSucceeded bool, rec *domain.RegistryRecord, lookupErr error, now time.Time) domain.Status {
	if probeSucceeded {
		return domain.StatusRegistered
	}
	if lookupErr != nil {
		return domain.StatusUnknown
	}
	if rec == nil {
		// The lookup completed and the registry had nothing to say.
		return domain.StatusAvailable
	}

	raw := strings.ToLower(rec.Raw)

	for _, phrase := range noMatchPhrases {
		if strings.Contains(raw, phrase) {
			return domain.StatusAvailable
		}
	}

	if strings.Contains(raw, "this name is reserved") || strings.Contains(raw, "reserved by the registry") {
		return domain.StatusReserved
	}
	if containsAny(raw, premiumMarkers) && containsAny(raw, premiumQualifiers) {
		return domain.StatusPremium
	}

	for _, token := range rec.StatusTokens {
		if _, ok := lockTokens[strings.ToLower(token)]; ok {
			return domain.StatusRegistered
		}
	}

	if rec.Expired(now) {
		return domain.StatusAvailable
	}

	if rec.CreatedDate != nil || len(rec.NameServers) > 0 {
		return domain.StatusRegistered
	}

	return domain.StatusUnknown
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
