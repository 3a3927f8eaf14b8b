package visit

import (
	"strconv"
)

// PageSize is the fixed page size of the listing endpoint.
const PageSize = 10

// ListQuery is the canonical query descriptor the repository executes:
// an optional set of predicate clauses plus offset/limit pagination.
// Nil clause fields mean "no filter".
type ListQuery struct {
	// UserID restricts the result to one owner. Nil for admins.
	UserID *string
	// Status is an exact match on the visit status.
	Status *string
	// PlannedVisitDate and BusinessPartner are case-insensitive
	// substring matches.
	PlannedVisitDate *string
	BusinessPartner  *string

	Offset int
	Limit  int
}

// BuildListQuery translates raw request parameters into a ListQuery.
// Non-admins are always scoped to their own visits; an admin's query
// never carries an ownership clause. Unrecognized or malformed
// parameters fall back to "no filter" and never error.
func BuildListQuery(principal Principal, params ListParams) ListQuery {
	q := ListQuery{
		Offset: (normalizePage(params.Page) - 1) * PageSize,
		Limit:  PageSize,
	}

	if !principal.IsAdmin() {
		userID := principal.ID
		q.UserID = &userID
	}

	if params.Status != "" {
		status := params.Status
		q.Status = &status
	}
	if params.PlannedVisitDate != "" {
		date := params.PlannedVisitDate
		q.PlannedVisitDate = &date
	}
	if params.BusinessPartner != "" {
		partner := params.BusinessPartner
		q.BusinessPartner = &partner
	}

	return q
}

// normalizePage parses a 1-based page number; anything missing,
// non-numeric or below 1 becomes page 1.
func normalizePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}
