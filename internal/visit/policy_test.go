package visit_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/visit-tracker/internal"
	"github.com/frahmantamala/visit-tracker/internal/visit"
)

func strPtr(s string) *string {
	return &s
}

var _ = Describe("AuthorizeUpdate", func() {
	var (
		now      time.Time
		owner    visit.Principal
		stranger visit.Principal
		admin    visit.Principal
		pending  *visit.Visit
	)

	BeforeEach(func() {
		now = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
		owner = visit.Principal{ID: "user-1", Role: visit.RoleUser}
		stranger = visit.Principal{ID: "user-2", Role: visit.RoleUser}
		admin = visit.Principal{ID: "admin-1", Role: visit.RoleAdmin}

		pending = &visit.Visit{
			ID:               "visit-1",
			UserID:           "user-1",
			Status:           visit.StatusPending,
			PlannedVisitDate: strPtr("2025-01-10"),
		}
	})

	Context("when the visit does not exist", func() {
		It("should deny with the not-found error, even for admins", func() {
			_, err := visit.AuthorizeUpdate(admin, nil, visit.UpdateVisitDTO{}, now)
			Expect(err).To(Equal(internal.ErrVisitNotFound))

			_, err = visit.AuthorizeUpdate(owner, nil, visit.UpdateVisitDTO{}, now)
			Expect(err).To(Equal(internal.ErrVisitNotFound))
		})
	})

	Context("ownership gate", func() {
		It("should deny a non-admin touching someone else's visit", func() {
			_, err := visit.AuthorizeUpdate(stranger, pending, visit.UpdateVisitDTO{Note: strPtr("x")}, now)
			Expect(err).To(Equal(internal.ErrVisitForbidden))
		})

		It("should allow the owner", func() {
			patch, err := visit.AuthorizeUpdate(owner, pending, visit.UpdateVisitDTO{Note: strPtr("x")}, now)
			Expect(err).ToNot(HaveOccurred())
			Expect(patch).ToNot(BeNil())
		})

		It("should check ownership before status, so a stranger gets forbidden even on a resolved visit", func() {
			pending.Status = visit.StatusDone
			_, err := visit.AuthorizeUpdate(stranger, pending, visit.UpdateVisitDTO{}, now)
			Expect(err).To(Equal(internal.ErrVisitForbidden))
		})
	})

	Context("status gate", func() {
		It("should deny the owner once the visit is DONE", func() {
			pending.Status = visit.StatusDone
			_, err := visit.AuthorizeUpdate(owner, pending, visit.UpdateVisitDTO{Note: strPtr("x")}, now)
			Expect(err).To(Equal(internal.ErrVisitNotPending))
		})

		It("should deny the owner once the visit is CANCELED", func() {
			pending.Status = visit.StatusCanceled
			_, err := visit.AuthorizeUpdate(owner, pending, visit.UpdateVisitDTO{Note: strPtr("x")}, now)
			Expect(err).To(Equal(internal.ErrVisitNotPending))
		})
	})

	Context("temporal gate", func() {
		It("should deny the owner when the planned date is in the future", func() {
			pending.PlannedVisitDate = strPtr("2025-12-31")
			_, err := visit.AuthorizeUpdate(owner, pending, visit.UpdateVisitDTO{Note: strPtr("x")}, now)
			Expect(err).To(Equal(internal.ErrVisitFutureDate))
		})

		It("should allow a visit planned for today", func() {
			pending.PlannedVisitDate = strPtr("2025-06-15")
			_, err := visit.AuthorizeUpdate(owner, pending, visit.UpdateVisitDTO{Note: strPtr("x")}, now)
			Expect(err).ToNot(HaveOccurred())
		})

		It("should compare at day granularity, ignoring the time of day", func() {
			// Late evening "now" must not make today's visit look past.
			lateNow := time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)
			pending.PlannedVisitDate = strPtr("2025-06-15")
			_, err := visit.AuthorizeUpdate(owner, pending, visit.UpdateVisitDTO{}, lateNow)
			Expect(err).ToNot(HaveOccurred())

			pending.PlannedVisitDate = strPtr("2025-06-16")
			_, err = visit.AuthorizeUpdate(owner, pending, visit.UpdateVisitDTO{}, lateNow)
			Expect(err).To(Equal(internal.ErrVisitFutureDate))
		})

		It("should skip the gate when the planned date is null", func() {
			pending.PlannedVisitDate = nil
			_, err := visit.AuthorizeUpdate(owner, pending, visit.UpdateVisitDTO{Note: strPtr("x")}, now)
			Expect(err).ToNot(HaveOccurred())
		})

		It("should skip the gate when the planned date does not parse", func() {
			pending.PlannedVisitDate = strPtr("next tuesday")
			_, err := visit.AuthorizeUpdate(owner, pending, visit.UpdateVisitDTO{Note: strPtr("x")}, now)
			Expect(err).ToNot(HaveOccurred())
		})
	})

	Context("admin bypass", func() {
		It("should allow an admin to update an unowned, resolved, future visit", func() {
			pending.UserID = "someone-else"
			pending.Status = visit.StatusDone
			pending.PlannedVisitDate = strPtr("2025-12-31")

			patch, err := visit.AuthorizeUpdate(admin, pending, visit.UpdateVisitDTO{Note: strPtr("y")}, now)
			Expect(err).ToNot(HaveOccurred())
			Expect(patch["note"]).To(Equal("y"))
		})
	})

	Context("patch construction", func() {
		It("should copy only the provided fields and always stamp updated_at", func() {
			patch, err := visit.AuthorizeUpdate(owner, pending, visit.UpdateVisitDTO{Note: strPtr("x")}, now)
			Expect(err).ToNot(HaveOccurred())

			Expect(patch).To(HaveLen(2))
			Expect(patch["note"]).To(Equal("x"))
			Expect(patch["updated_at"]).To(Equal(now))
		})

		It("should produce a patch with only updated_at for an empty request", func() {
			patch, err := visit.AuthorizeUpdate(owner, pending, visit.UpdateVisitDTO{}, now)
			Expect(err).ToNot(HaveOccurred())
			Expect(patch).To(HaveLen(1))
			Expect(patch).To(HaveKey("updated_at"))
		})

		It("should copy every provided field verbatim without cross-field validation", func() {
			dto := visit.UpdateVisitDTO{
				Status:               strPtr(visit.StatusDone),
				PlannedTopic:         strPtr("quarterly review"),
				RealisedTopic:        strPtr("contract renewal"),
				PlannedVisitDate:     strPtr("2025-06-10"),
				PlannedVisitTime:     strPtr("09:30"),
				BusinessPartner:      strPtr("ACME d.o.o."),
				PlannedVisitDuration: strPtr("45"),
				Note:                 strPtr("went well"),
				Grade:                strPtr("9"),
			}

			patch, err := visit.AuthorizeUpdate(owner, pending, dto, now)
			Expect(err).ToNot(HaveOccurred())

			Expect(patch).To(HaveLen(10))
			Expect(patch["status"]).To(Equal(visit.StatusDone))
			Expect(patch["planned_topic"]).To(Equal("quarterly review"))
			Expect(patch["realised_topic"]).To(Equal("contract renewal"))
			Expect(patch["planned_visit_date"]).To(Equal("2025-06-10"))
			Expect(patch["planned_visit_time"]).To(Equal("09:30"))
			Expect(patch["business_partner"]).To(Equal("ACME d.o.o."))
			Expect(patch["planned_visit_duration"]).To(Equal("45"))
			Expect(patch["note"]).To(Equal("went well"))
			Expect(patch["grade"]).To(Equal("9"))
		})

		It("should accept status DONE without a grade", func() {
			patch, err := visit.AuthorizeUpdate(owner, pending, visit.UpdateVisitDTO{Status: strPtr(visit.StatusDone)}, now)
			Expect(err).ToNot(HaveOccurred())
			Expect(patch["status"]).To(Equal(visit.StatusDone))
			Expect(patch).ToNot(HaveKey("grade"))
		})
	})

	Context("denial status codes", func() {
		It("should classify every denial with its HTTP status", func() {
			Expect(internal.ErrVisitNotFound.StatusCode).To(Equal(404))
			Expect(internal.ErrVisitForbidden.StatusCode).To(Equal(403))
			Expect(internal.ErrVisitNotPending.StatusCode).To(Equal(400))
			Expect(internal.ErrVisitFutureDate.StatusCode).To(Equal(400))
		})

		It("should carry the exact caller-facing messages", func() {
			Expect(internal.ErrVisitNotFound.Message).To(Equal("Visit not found"))
			Expect(internal.ErrVisitForbidden.Message).To(Equal("Forbidden"))
			Expect(internal.ErrVisitNotPending.Message).To(Equal("Only visits with PENDING status can be updated"))
			Expect(internal.ErrVisitFutureDate.Message).To(Equal("Cannot update visit with a planned date in the future"))
		})
	})
})
