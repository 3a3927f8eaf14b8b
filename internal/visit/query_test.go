package visit_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/visit-tracker/internal/visit"
)

var _ = Describe("BuildListQuery", func() {
	var (
		admin   visit.Principal
		regular visit.Principal
	)

	BeforeEach(func() {
		admin = visit.Principal{ID: "admin-1", Role: visit.RoleAdmin}
		regular = visit.Principal{ID: "user-2", Role: visit.RoleUser}
	})

	Context("ownership scoping", func() {
		It("should never scope an admin to an owner", func() {
			q := visit.BuildListQuery(admin, visit.ListParams{})
			Expect(q.UserID).To(BeNil())
		})

		It("should always scope a regular user to their own visits", func() {
			q := visit.BuildListQuery(regular, visit.ListParams{})
			Expect(q.UserID).ToNot(BeNil())
			Expect(*q.UserID).To(Equal("user-2"))
		})
	})

	Context("filters", func() {
		It("should leave all clauses empty when no filters are given", func() {
			q := visit.BuildListQuery(admin, visit.ListParams{})
			Expect(q.Status).To(BeNil())
			Expect(q.PlannedVisitDate).To(BeNil())
			Expect(q.BusinessPartner).To(BeNil())
		})

		It("should build the combined predicate for a regular user", func() {
			q := visit.BuildListQuery(regular, visit.ListParams{
				Status:          "PENDING",
				BusinessPartner: "acme",
			})

			Expect(*q.UserID).To(Equal("user-2"))
			Expect(*q.Status).To(Equal("PENDING"))
			Expect(*q.BusinessPartner).To(Equal("acme"))
			Expect(q.PlannedVisitDate).To(BeNil())
		})

		It("should pass the date filter through as a substring clause", func() {
			q := visit.BuildListQuery(admin, visit.ListParams{PlannedVisitDate: "2025-06"})
			Expect(*q.PlannedVisitDate).To(Equal("2025-06"))
		})
	})

	Context("pagination", func() {
		It("should default to the first page", func() {
			q := visit.BuildListQuery(admin, visit.ListParams{})
			Expect(q.Offset).To(Equal(0))
			Expect(q.Limit).To(Equal(10))
		})

		It("should normalize zero, negative and non-numeric pages to page one", func() {
			for _, raw := range []string{"0", "-5", "abc", ""} {
				q := visit.BuildListQuery(admin, visit.ListParams{Page: raw})
				Expect(q.Offset).To(Equal(0), "page %q", raw)
				Expect(q.Limit).To(Equal(10), "page %q", raw)
			}
		})

		It("should compute the offset for later pages", func() {
			q := visit.BuildListQuery(admin, visit.ListParams{Page: "2"})
			Expect(q.Offset).To(Equal(10))
			Expect(q.Limit).To(Equal(10))

			q = visit.BuildListQuery(admin, visit.ListParams{Page: "7"})
			Expect(q.Offset).To(Equal(60))
		})
	})
})
