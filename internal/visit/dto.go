package visit

import (
	"errors"
)

// UpdateVisitDTO is the partial-update payload for PATCH /visits/{id}.
// Pointer fields distinguish "field provided" from "leave untouched";
// a JSON null is treated the same as an absent field.
type UpdateVisitDTO struct {
	Status               *string `json:"status"`
	PlannedTopic         *string `json:"plannedTopic"`
	RealisedTopic        *string `json:"realisedTopic"`
	PlannedVisitDate     *string `json:"plannedVisitDate"`
	PlannedVisitTime     *string `json:"plannedVisitTime"`
	BusinessPartner      *string `json:"businessPartner"`
	PlannedVisitDuration *string `json:"plannedVisitDuration"`
	Note                 *string `json:"note"`
	Grade                *string `json:"grade"`
}

// ListParams are the raw query parameters accepted by the listing
// endpoint. All of them are optional; unrecognized values never error.
type ListParams struct {
	Status           string
	PlannedVisitDate string
	BusinessPartner  string
	Page             string
}

// ListResponse wraps one page of visits together with the total row
// count for the same predicate.
type ListResponse struct {
	Total int64    `json:"total"`
	Data  []*Visit `json:"data"`
}

// ImportVisitDTO is one row of the bulk import payload. The owning user
// is resolved by email; status is always forced to PENDING on insert.
type ImportVisitDTO struct {
	Email                string `json:"email"`
	PlannedTopic         string `json:"plannedTopic"`
	PlannedVisitDate     string `json:"plannedVisitDate"`
	PlannedVisitTime     string `json:"plannedVisitTime"`
	BusinessPartner      string `json:"businessPartner"`
	PlannedVisitDuration string `json:"plannedVisitDuration"`
}

func (dto ImportVisitDTO) Validate() error {
	if dto.Email == "" {
		return errors.New("email is required")
	}
	return nil
}
