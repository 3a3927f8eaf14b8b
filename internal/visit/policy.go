package visit

import (
	"time"

	"github.com/frahmantamala/visit-tracker/internal"
)

// Patch is the minimal set of columns an authorized update writes. It
// is handed verbatim to the repository, which must leave every other
// column untouched.
type Patch map[string]interface{}

// plannedVisitDate is stored as a plain string; the temporal gate only
// cares about the calendar day it names.
var plannedDateLayouts = []string{"2006-01-02", time.RFC3339}

func parsePlannedDate(s string) (time.Time, bool) {
	for _, layout := range plannedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AuthorizeUpdate decides whether principal may apply the requested
// partial update to the given visit snapshot, and if so builds the
// patch to persist. It is pure: the caller fetches the visit and
// supplies the evaluation time.
//
// The checks run in a fixed order and each denial is a sentinel
// AppError carrying its HTTP status and caller-facing message:
//
//  1. missing visit            -> ErrVisitNotFound (404)
//  2. non-admin, not the owner -> ErrVisitForbidden (403)
//  3. non-admin, not PENDING   -> ErrVisitNotPending (400)
//  4. non-admin, planned date strictly after today -> ErrVisitFutureDate (400)
//
// Admins skip checks 2-4 entirely.
func AuthorizeUpdate(principal Principal, v *Visit, requested UpdateVisitDTO, now time.Time) (Patch, error) {
	if v == nil {
		return nil, internal.ErrVisitNotFound
	}

	if !principal.IsAdmin() {
		if v.UserID != principal.ID {
			return nil, internal.ErrVisitForbidden
		}
		if v.Status != StatusPending {
			return nil, internal.ErrVisitNotPending
		}
		if v.PlannedVisitDate != nil {
			// Day granularity: a visit planned for today is still
			// updatable. An unparseable date never blocks the update,
			// matching the lenient comparison the clients rely on.
			if planned, ok := parsePlannedDate(*v.PlannedVisitDate); ok {
				if truncateToDay(planned).After(truncateToDay(now)) {
					return nil, internal.ErrVisitFutureDate
				}
			}
		}
	}

	return buildPatch(requested, now), nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// buildPatch copies every provided field verbatim. No cross-field
// validation happens here: setting status DONE without a grade is
// accepted, the same way the form clients submit it.
func buildPatch(requested UpdateVisitDTO, now time.Time) Patch {
	patch := Patch{"updated_at": now}

	if requested.Status != nil {
		patch["status"] = *requested.Status
	}
	if requested.PlannedTopic != nil {
		patch["planned_topic"] = *requested.PlannedTopic
	}
	if requested.RealisedTopic != nil {
		patch["realised_topic"] = *requested.RealisedTopic
	}
	if requested.PlannedVisitDate != nil {
		patch["planned_visit_date"] = *requested.PlannedVisitDate
	}
	if requested.PlannedVisitTime != nil {
		patch["planned_visit_time"] = *requested.PlannedVisitTime
	}
	if requested.BusinessPartner != nil {
		patch["business_partner"] = *requested.BusinessPartner
	}
	if requested.PlannedVisitDuration != nil {
		patch["planned_visit_duration"] = *requested.PlannedVisitDuration
	}
	if requested.Note != nil {
		patch["note"] = *requested.Note
	}
	if requested.Grade != nil {
		patch["grade"] = *requested.Grade
	}

	return patch
}
