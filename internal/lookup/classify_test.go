package lookup

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"namewatch/internal/domain"
)

var classifyNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func recWithRaw(raw string) *domain.RegistryRecord {
	return &domain.RegistryRecord{Raw: raw}
}

func TestClassifyProbeWins(t *testing.T) {
	// A resolving domain is registered no matter what the record claims.
	rec := recWithRaw("No match for domain \"EXAMPLE.COM\".")
	assert.Equal(t, domain.StatusRegistered, Classify(true, rec, nil, classifyNow))
	assert.Equal(t, domain.StatusRegistered, Classify(true, nil, nil, classifyNow))
	assert.Equal(t, domain.StatusRegistered, Classify(true, nil, errors.New("boom"), classifyNow))
}

func TestClassifyLookupFailureIsUnknown(t *testing.T) {
	err := newError(FailureTimeout, "example.com", "query timed out", nil)
	assert.Equal(t, domain.StatusUnknown, Classify(false, nil, err, classifyNow))

	// Even a partial record does not override a failed lookup.
	rec := recWithRaw("Registrar: Example Inc.")
	assert.Equal(t, domain.StatusUnknown, Classify(false, rec, err, classifyNow))
}

func TestClassifyNoRecordIsAvailable(t *testing.T) {
	assert.Equal(t, domain.StatusAvailable, Classify(false, nil, nil, classifyNow))
}

func TestClassifyNoMatchPhrases(t *testing.T) {
	payloads := []string{
		"No match for domain \"FRESH-NAME.COM\".",
		"NOT FOUND\n>>> Last update of WHOIS database: 2026-02-28 <<<",
		"% No entries found for the selected source(s).",
		"Status: free",
		"The queried object does not exist: domain not registered",
		"This domain name has not been registered.",
	}
	for _, payload := range payloads {
		rec := recWithRaw(payload)
		assert.Equal(t, domain.StatusAvailable, Classify(false, rec, nil, classifyNow), "payload %q", payload)
	}
}

func TestClassifyNoMatchBeatsLockTokens(t *testing.T) {
	// Some registries echo status lines even in negative answers; the
	// no-record phrase takes precedence.
	rec := &domain.RegistryRecord{
		Raw:          "No match for domain.\nStatus: ok",
		StatusTokens: []string{"ok"},
	}
	assert.Equal(t, domain.StatusAvailable, Classify(false, rec, nil, classifyNow))
}

func TestClassifyReserved(t *testing.T) {
	rec := recWithRaw("This name is reserved by the Registry in accordance with policy.")
	assert.Equal(t, domain.StatusReserved, Classify(false, rec, nil, classifyNow))

	rec = recWithRaw("The domain is reserved by the registry and cannot be registered.")
	assert.Equal(t, domain.StatusReserved, Classify(false, rec, nil, classifyNow))
}

func TestClassifyPremium(t *testing.T) {
	rec := recWithRaw("This is a PREMIUM domain name. Contact the registry for purchase options.")
	assert.Equal(t, domain.StatusPremium, Classify(false, rec, nil, classifyNow))

	rec = recWithRaw("Platinum tier name, buy now via the aftermarket.")
	assert.Equal(t, domain.StatusPremium, Classify(false, rec, nil, classifyNow))
}

func TestClassifyPremiumNeedsQualifier(t *testing.T) {
	// A registrar merely named "Premium Registrations Ltd" is not a premium
	// listing; without a sales qualifier the record falls through.
	rec := &domain.RegistryRecord{
		Raw:          "Registrar: Premium Registrations Ltd\nDomain Status: ok",
		Registrar:    "Premium Registrations Ltd",
		StatusTokens: []string{"ok"},
	}
	assert.Equal(t, domain.StatusRegistered, Classify(false, rec, nil, classifyNow))
}

func TestClassifyLockTokens(t *testing.T) {
	for _, token := range []string{"clientTransferProhibited", "serverDeleteProhibited", "active", "ok", "registered", "connect"} {
		rec := &domain.RegistryRecord{
			Raw:          "Domain Status: " + token,
			StatusTokens: []string{token},
		}
		assert.Equal(t, domain.StatusRegistered, Classify(false, rec, nil, classifyNow), "token %s", token)
	}
}

func TestClassifyExpiredRegistration(t *testing.T) {
	past := classifyNow.Add(-48 * time.Hour)
	rec := &domain.RegistryRecord{
		Raw:            "Registrar: Example Inc.\nExpiry Date: 2026-02-27",
		Registrar:      "Example Inc.",
		ExpirationDate: &past,
	}
	assert.Equal(t, domain.StatusAvailable, Classify(false, rec, nil, classifyNow))
}

func TestClassifyLockTokenBeatsExpiredDate(t *testing.T) {
	// redemptionPeriod style cases: an expired date with an active lock still
	// means registered.
	past := classifyNow.Add(-48 * time.Hour)
	rec := &domain.RegistryRecord{
		Raw:            "Domain Status: clientHold\nExpiry Date: 2026-02-27",
		StatusTokens:   []string{"clienthold"},
		ExpirationDate: &past,
	}
	assert.Equal(t, domain.StatusRegistered, Classify(false, rec, nil, classifyNow))
}

func TestClassifyConservativeRegistered(t *testing.T) {
	created := classifyNow.Add(-365 * 24 * time.Hour)
	rec := &domain.RegistryRecord{
		Raw:         "Created: 2025-03-01",
		CreatedDate: &created,
	}
	assert.Equal(t, domain.StatusRegistered, Classify(false, rec, nil, classifyNow))

	rec = &domain.RegistryRecord{
		Raw:         "nserver: ns1.example.com",
		NameServers: []string{"ns1.example.com"},
	}
	assert.Equal(t, domain.StatusRegistered, Classify(false, rec, nil, classifyNow))
}

func TestClassifyAmbiguousIsUnknown(t *testing.T) {
	rec := recWithRaw("% This server is rate limited.\n% Try again later.")
	assert.Equal(t, domain.StatusUnknown, Classify(false, rec, nil, classifyNow))
}

func TestClassifyDeterministic(t *testing.T) {
	rec := &domain.RegistryRecord{
		Raw:          "Domain Status: ok",
		StatusTokens: []string{"ok"},
	}
	first := Classify(false, rec, nil, classifyNow)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(false, rec, nil, classifyNow))
	}
}
