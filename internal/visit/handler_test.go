package visit_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/visit-tracker/internal/auth"
	authPostgres "github.com/frahmantamala/visit-tracker/internal/auth/postgres"
	"github.com/frahmantamala/visit-tracker/internal/visit"
	visitPostgres "github.com/frahmantamala/visit-tracker/internal/visit/postgres"
)

type SQLiteUser struct {
	ID                string    `gorm:"primaryKey;column:id"`
	FirstName         string    `gorm:"column:first_name"`
	LastName          *string   `gorm:"column:last_name"`
	Email             string    `gorm:"column:email;uniqueIndex"`
	PasswordHash      string    `gorm:"column:password_hash"`
	Role              string    `gorm:"column:role"`
	IsPasswordChanged bool      `gorm:"column:is_password_changed"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (SQLiteUser) TableName() string {
	return "users"
}

type SQLiteVisit struct {
	ID                   string    `gorm:"primaryKey;column:id"`
	UserID               string    `gorm:"column:user_id;not null"`
	Status               string    `gorm:"column:status"`
	PlannedTopic         *string   `gorm:"column:planned_topic"`
	RealisedTopic        *string   `gorm:"column:realised_topic"`
	PlannedVisitDate     *string   `gorm:"column:planned_visit_date"`
	PlannedVisitTime     *string   `gorm:"column:planned_visit_time"`
	BusinessPartner      *string   `gorm:"column:business_partner"`
	PlannedVisitDuration *string   `gorm:"column:planned_visit_duration"`
	Note                 *string   `gorm:"column:note"`
	Grade                *string   `gorm:"column:grade"`
	CreatedAt            time.Time `gorm:"column:created_at"`
	UpdatedAt            time.Time `gorm:"column:updated_at"`
}

func (SQLiteVisit) TableName() string {
	return "visits"
}

var _ = Describe("Visit Handler Integration", func() {
	var (
		db      *gorm.DB
		handler *visit.Handler
		now     time.Time
	)

	asUser := func(req *http.Request, user *auth.User) *http.Request {
		return req.WithContext(auth.ContextWithUser(req.Context(), user))
	}

	withURLParam := func(req *http.Request, key, value string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add(key, value)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	regular := &auth.User{ID: "user-1", Email: "user@optima.rs", Role: auth.RoleUser}
	admin := &auth.User{ID: "admin-1", Email: "admin@optima.rs", Role: auth.RoleAdmin}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteUser{}, &SQLiteVisit{})
		Expect(err).NotTo(HaveOccurred())

		Expect(db.Create(&SQLiteUser{ID: "user-1", FirstName: "Test", Email: "user@optima.rs", Role: auth.RoleUser}).Error).NotTo(HaveOccurred())
		Expect(db.Create(&SQLiteUser{ID: "admin-1", FirstName: "Admin", Email: "admin@optima.rs", Role: auth.RoleAdmin}).Error).NotTo(HaveOccurred())

		visitRepo := visitPostgres.NewVisitRepository(db)
		userRepo := authPostgres.NewUserRepository(db)
		now = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service := visit.NewService(visitRepo, userRepo, slogger).WithClock(func() time.Time { return now })
		handler = visit.NewHandler(service)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	seed := func(id, userID, status, plannedDate string) {
		Expect(db.Create(&SQLiteVisit{
			ID:               id,
			UserID:           userID,
			Status:           status,
			PlannedVisitDate: strPtr(plannedDate),
			CreatedAt:        now,
			UpdatedAt:        now,
		}).Error).NotTo(HaveOccurred())
	}

	Describe("GET /visits", func() {
		BeforeEach(func() {
			seed("own", "user-1", visit.StatusPending, "2025-06-10")
			seed("other", "user-2", visit.StatusPending, "2025-06-11")
		})

		It("should return 401 without an authenticated user", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/visits", nil)
			w := httptest.NewRecorder()

			handler.ListVisits(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(w.Body.String()).To(ContainSubstring("Unauthorized"))
		})

		It("should only return the caller's own visits", func() {
			req := asUser(httptest.NewRequest(http.MethodGet, "/api/v1/visits", nil), regular)
			w := httptest.NewRecorder()

			handler.ListVisits(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var response visit.ListResponse
			Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
			Expect(response.Total).To(Equal(int64(1)))
			Expect(response.Data).To(HaveLen(1))
			Expect(response.Data[0].ID).To(Equal("own"))
		})

		It("should return every visit to an admin", func() {
			req := asUser(httptest.NewRequest(http.MethodGet, "/api/v1/visits", nil), admin)
			w := httptest.NewRecorder()

			handler.ListVisits(w, req)

			var response visit.ListResponse
			Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
			Expect(response.Total).To(Equal(int64(2)))
		})
	})

	Describe("PATCH /visits/{id}", func() {
		patchRequest := func(user *auth.User, id, body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPatch, "/api/v1/visits/"+id, strings.NewReader(body))
			req = asUser(req, user)
			req = withURLParam(req, "id", id)
			w := httptest.NewRecorder()
			handler.UpdateVisit(w, req)
			return w
		}

		BeforeEach(func() {
			seed("v1", "user-1", visit.StatusPending, "2025-06-10")
		})

		It("should apply the update and return the refreshed visit", func() {
			w := patchRequest(regular, "v1", `{"status":"DONE","note":"all good","grade":"5"}`)

			Expect(w.Code).To(Equal(http.StatusOK))

			var updated visit.Visit
			Expect(json.NewDecoder(w.Body).Decode(&updated)).To(Succeed())
			Expect(updated.Status).To(Equal(visit.StatusDone))
			Expect(*updated.Note).To(Equal("all good"))
			Expect(updated.User).NotTo(BeNil())
			Expect(updated.User.Email).To(Equal("user@optima.rs"))
		})

		It("should return 404 with the exact message for a missing visit", func() {
			w := patchRequest(regular, "missing", `{"note":"x"}`)

			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(w.Body.String()).To(ContainSubstring("Visit not found"))
		})

		It("should return 403 when the caller does not own the visit", func() {
			seed("foreign", "user-2", visit.StatusPending, "2025-06-10")

			w := patchRequest(regular, "foreign", `{"note":"x"}`)

			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(w.Body.String()).To(ContainSubstring("Forbidden"))
		})

		It("should return 400 when the visit is already resolved", func() {
			seed("done", "user-1", visit.StatusDone, "2025-06-10")

			w := patchRequest(regular, "done", `{"note":"x"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("Only visits with PENDING status can be updated"))
		})

		It("should return 400 for a visit planned in the future", func() {
			seed("future", "user-1", visit.StatusPending, "2025-12-24")

			w := patchRequest(regular, "future", `{"note":"x"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("Cannot update visit with a planned date in the future"))
		})

		It("should let an admin update a resolved visit they do not own", func() {
			seed("done", "user-2", visit.StatusDone, "2025-06-10")

			w := patchRequest(admin, "done", `{"note":"admin correction"}`)

			Expect(w.Code).To(Equal(http.StatusOK))
		})
	})

	Describe("POST /visits/import", func() {
		importRequest := func(body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/visits/import", strings.NewReader(body))
			w := httptest.NewRecorder()
			handler.ImportVisits(w, req)
			return w
		}

		It("should create a visit per row and report the count", func() {
			w := importRequest(`[{"email":"user@optima.rs","plannedTopic":"intro","plannedVisitDate":"2025-07-01","plannedVisitTime":"10:00","businessPartner":"ACME","plannedVisitDuration":"30"}]`)

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(w.Body.String()).To(ContainSubstring("1 visits created"))

			var count int64
			Expect(db.Model(&SQLiteVisit{}).Count(&count).Error).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
		})

		It("should reject a payload that is not an array", func() {
			w := importRequest(`{"email":"user@optima.rs"}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("Request body must be an array"))
		})

		It("should reject an empty array", func() {
			w := importRequest(`[]`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("Request body must not be empty"))
		})

		It("should name the unknown emails and insert nothing", func() {
			w := importRequest(`[{"email":"ghost@optima.rs","plannedTopic":"x"}]`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("Users not found: ghost@optima.rs"))

			var count int64
			Expect(db.Model(&SQLiteVisit{}).Count(&count).Error).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(0)))
		})
	})

	Describe("GET /visits/daily-report", func() {
		It("should return today's resolved visits", func() {
			Expect(db.Create(&SQLiteVisit{
				ID:               "resolved",
				UserID:           "user-1",
				Status:           visit.StatusDone,
				PlannedVisitDate: strPtr("2025-06-15"),
				PlannedVisitTime: strPtr("09:00"),
				CreatedAt:        now,
				UpdatedAt:        now,
			}).Error).NotTo(HaveOccurred())
			seed("open", "user-1", visit.StatusPending, "2025-06-15")

			req := httptest.NewRequest(http.MethodGet, "/api/v1/visits/daily-report", nil)
			w := httptest.NewRecorder()

			handler.DailyReport(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var response visit.ListResponse
			Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
			Expect(response.Total).To(Equal(int64(1)))
			Expect(response.Data[0].ID).To(Equal("resolved"))
		})
	})
})
