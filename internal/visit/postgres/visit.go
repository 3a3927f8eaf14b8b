package postgres

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/visit-tracker/internal/visit"
)

// VisitRepository implements the visit.Repository interface using GORM.
type VisitRepository struct {
	db *gorm.DB
}

func NewVisitRepository(db *gorm.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

func (r *VisitRepository) GetByID(id string) (*visit.Visit, error) {
	var v visit.Visit
	err := r.db.Where("id = ?", id).First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *VisitRepository) GetByIDWithUser(id string) (*visit.Visit, error) {
	var v visit.Visit
	err := r.db.Preload("User").Where("id = ?", id).First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// FindPage executes the query descriptor: predicate, newest-first
// ordering and offset/limit pagination, owner profile included.
func (r *VisitRepository) FindPage(q visit.ListQuery) ([]*visit.Visit, error) {
	var visits []*visit.Visit
	err := r.applyPredicate(r.db, q).
		Preload("User").
		Order("created_at DESC").
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&visits).Error
	return visits, err
}

// Count returns the total row count for the same predicate FindPage
// uses, ignoring pagination.
func (r *VisitRepository) Count(q visit.ListQuery) (int64, error) {
	var total int64
	err := r.applyPredicate(r.db.Model(&visit.Visit{}), q).Count(&total).Error
	return total, err
}

func (r *VisitRepository) applyPredicate(tx *gorm.DB, q visit.ListQuery) *gorm.DB {
	if q.UserID != nil {
		tx = tx.Where("user_id = ?", *q.UserID)
	}
	if q.Status != nil {
		tx = tx.Where("status = ?", *q.Status)
	}
	// LOWER/LIKE instead of ILIKE keeps the predicate portable to the
	// sqlite-backed repository tests.
	if q.PlannedVisitDate != nil {
		tx = tx.Where("LOWER(planned_visit_date) LIKE ?", containsPattern(*q.PlannedVisitDate))
	}
	if q.BusinessPartner != nil {
		tx = tx.Where("LOWER(business_partner) LIKE ?", containsPattern(*q.BusinessPartner))
	}
	return tx
}

func containsPattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}

// UpdateFields applies a partial update; columns absent from the patch
// are left untouched.
func (r *VisitRepository) UpdateFields(id string, patch visit.Patch) error {
	return r.db.Model(&visit.Visit{}).
		Where("id = ?", id).
		Updates(map[string]interface{}(patch)).Error
}

func (r *VisitRepository) CreateMany(visits []*visit.Visit) error {
	return r.db.Create(&visits).Error
}

// FindDailyReport returns visits planned for the given date string that
// were resolved (DONE or CANCELED) within the [from, to) window,
// ordered by planned visit time.
func (r *VisitRepository) FindDailyReport(date string, from, to time.Time) ([]*visit.Visit, error) {
	var visits []*visit.Visit
	err := r.db.Preload("User").
		Where("planned_visit_date = ?", date).
		Where("updated_at >= ? AND updated_at < ?", from, to).
		Where("status IN ?", []string{visit.StatusDone, visit.StatusCanceled}).
		Order("planned_visit_time ASC").
		Find(&visits).Error
	return visits, err
}
