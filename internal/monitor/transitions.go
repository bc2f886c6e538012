package monitor

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"namewatch/internal/domain"
	"namewatch/internal/watch/models"
)

// deriveEvents compares a fresh availability result against the watch's last
// known state and returns the events to raise plus the expiry-reminder marker
// to persist. Pure function of its inputs so the whole transition table is
// testable without a store or a clock.
//
// Rules:
//   - First-ever check records the baseline and raises nothing.
//   - A status transition raises exactly one event: became_available or
//     expired when the new status is available, changed otherwise.
//   - Registrar movement between two registered snapshots raises
//     transferred, independent of the status comparison.
//   - An expiration date inside the horizon raises expiring_soon once per
//     expiry date; a renewal (date pushed past the horizon) re-arms it.
func deriveEvents(w *models.Watch, result *domain.AvailabilityResult, now time.Time, horizon time.Duration, newID func() uuid.UUID) ([]*models.DomainEvent, *time.Time) {
	notifiedFor := w.ExpiryNotifiedFor

	if w.LastStatus == "" {
		return nil, notifiedFor
	}

	var events []*models.DomainEvent
	event := func(kind models.EventKind, message string, payload map[string]any) {
		events = append(events, &models.DomainEvent{
			ID:             newID(),
			WatchID:        w.ID,
			Domain:         w.Domain,
			Kind:           kind,
			PreviousStatus: w.LastStatus,
			CurrentStatus:  result.Status,
			Message:        message,
			Payload:        payload,
			RaisedAt:       now,
		})
	}

	if result.Status != w.LastStatus {
		switch {
		case result.Status == domain.StatusAvailable && result.Record.Expired(now):
			event(models.EventExpired,
				fmt.Sprintf("Domain %s has expired. Renew it now to avoid losing it.", w.Domain),
				map[string]any{"expiration_date": result.Record.ExpirationDate})
		case result.Status == domain.StatusAvailable:
			event(models.EventBecameAvailable,
				fmt.Sprintf("Domain %s is now available for registration!", w.Domain),
				nil)
		default:
			event(models.EventChanged,
				fmt.Sprintf("Domain %s status changed from %s to %s", w.Domain, w.LastStatus, result.Status),
				nil)
		}
	} else if result.Status == domain.StatusRegistered && registrarChanged(w.LastRecord, result.Record) {
		event(models.EventTransferred,
			fmt.Sprintf("Domain %s moved to a new registrar: %s", w.Domain, result.Record.Registrar),
			map[string]any{
				"previous_registrar": w.LastRecord.Registrar,
				"current_registrar":  result.Record.Registrar,
			})
	}

	if result.Record != nil && result.Record.ExpirationDate != nil {
		expiry := *result.Record.ExpirationDate
		until := expiry.Sub(now)
		switch {
		case until > 0 && until <= horizon:
			if notifiedFor == nil || !notifiedFor.Equal(expiry) {
				days := int(until.Hours() / 24)
				event(models.EventExpiringSoon,
					fmt.Sprintf("Domain %s will expire in %d days. Expiration date: %s",
						w.Domain, days, expiry.Format("2006-01-02")),
					map[string]any{
						"expiration_date":   expiry,
						"days_until_expiry": days,
					})
				notifiedFor = &expiry
			}
		case until > horizon:
			// Renewed past the horizon; re-arm the reminder.
			notifiedFor = nil
		}
	}

	return events, notifiedFor
}

func registrarChanged(prev, cur *domain.RegistryRecord) bool {
	return prev != nil && cur != nil &&
		prev.Registrar != "" && cur.Registrar != "" &&
		prev.Registrar != cur.Registrar
}
