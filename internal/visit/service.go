package visit

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/visit-tracker/internal"
)

// Repository defines the data access methods for visits. GetByID
// returns (nil, nil) when no row matches so the access policy, not the
// store, owns the not-found decision.
type Repository interface {
	GetByID(id string) (*Visit, error)
	GetByIDWithUser(id string) (*Visit, error)
	FindPage(q ListQuery) ([]*Visit, error)
	Count(q ListQuery) (int64, error)
	UpdateFields(id string, patch Patch) error
	CreateMany(visits []*Visit) error
	FindDailyReport(date string, from, to time.Time) ([]*Visit, error)
}

// UserDirectory resolves import emails to user IDs.
type UserDirectory interface {
	FindIDsByEmail(emails []string) (map[string]string, error)
}

// Service handles visit business logic.
type Service struct {
	repo   Repository
	users  UserDirectory
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, users UserDirectory, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the service clock. Tests use it to pin "today"
// for the temporal gate and the daily report window.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ListVisits returns one page of visits matching the principal's
// scope and filters, plus the total count for the same predicate.
func (s *Service) ListVisits(principal Principal, params ListParams) (*ListResponse, error) {
	q := BuildListQuery(principal, params)

	visits, err := s.repo.FindPage(q)
	if err != nil {
		s.logger.Error("failed to fetch visits", "error", err, "user_id", principal.ID)
		return nil, err
	}

	total, err := s.repo.Count(q)
	if err != nil {
		s.logger.Error("failed to count visits", "error", err, "user_id", principal.ID)
		return nil, err
	}

	if visits == nil {
		visits = []*Visit{}
	}

	return &ListResponse{Total: total, Data: visits}, nil
}

// UpdateVisit applies an authorized partial update and returns the
// updated visit together with its owner's public profile.
func (s *Service) UpdateVisit(principal Principal, visitID string, dto UpdateVisitDTO) (*Visit, error) {
	current, err := s.repo.GetByID(visitID)
	if err != nil {
		s.logger.Error("failed to load visit", "error", err, "visit_id", visitID)
		return nil, err
	}

	patch, err := AuthorizeUpdate(principal, current, dto, s.now())
	if err != nil {
		s.logger.Warn("visit update denied",
			"visit_id", visitID,
			"user_id", principal.ID,
			"role", principal.Role,
			"reason", err.Error())
		return nil, err
	}

	if err := s.repo.UpdateFields(visitID, patch); err != nil {
		s.logger.Error("failed to update visit", "error", err, "visit_id", visitID)
		return nil, err
	}

	updated, err := s.repo.GetByIDWithUser(visitID)
	if err != nil {
		s.logger.Error("failed to reload updated visit", "error", err, "visit_id", visitID)
		return nil, err
	}

	s.logger.Info("visit updated",
		"visit_id", visitID,
		"user_id", principal.ID,
		"fields", len(patch)-1)

	return updated, nil
}

// ImportVisits resolves each row's owner by email and inserts the
// whole batch with status forced to PENDING. The import is
// all-or-nothing: a single unknown email rejects the batch.
func (s *Service) ImportVisits(rows []ImportVisitDTO) (int, error) {
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return 0, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
		}
	}

	emails := uniqueEmails(rows)

	idsByEmail, err := s.users.FindIDsByEmail(emails)
	if err != nil {
		s.logger.Error("failed to resolve import users", "error", err)
		return 0, err
	}

	var notFound []string
	for _, email := range emails {
		if _, ok := idsByEmail[email]; !ok {
			notFound = append(notFound, email)
		}
	}
	if len(notFound) > 0 {
		sort.Strings(notFound)
		return 0, internal.NewValidationError(
			fmt.Sprintf("Users not found: %s", strings.Join(notFound, ", ")),
			internal.ErrCodeUnknownVisitUsers)
	}

	now := s.now()
	visits := make([]*Visit, 0, len(rows))
	for _, row := range rows {
		row := row
		visits = append(visits, &Visit{
			ID:                   uuid.NewString(),
			UserID:               idsByEmail[row.Email],
			Status:               StatusPending,
			PlannedTopic:         &row.PlannedTopic,
			PlannedVisitDate:     &row.PlannedVisitDate,
			PlannedVisitTime:     &row.PlannedVisitTime,
			BusinessPartner:      &row.BusinessPartner,
			PlannedVisitDuration: &row.PlannedVisitDuration,
			CreatedAt:            now,
			UpdatedAt:            now,
		})
	}

	if err := s.repo.CreateMany(visits); err != nil {
		s.logger.Error("failed to import visits", "error", err, "count", len(visits))
		return 0, err
	}

	s.logger.Info("visits imported", "count", len(visits))

	return len(visits), nil
}

// DailyReport returns today's resolved visits: planned for today's
// date, resolved to DONE or CANCELED, and touched within the day.
// Rows come back ordered by planned visit time, earliest first.
func (s *Service) DailyReport() (*ListResponse, error) {
	now := s.now()
	startOfDay := truncateToDay(now)
	endOfDay := startOfDay.AddDate(0, 0, 1)
	today := now.Format("2006-01-02")

	visits, err := s.repo.FindDailyReport(today, startOfDay, endOfDay)
	if err != nil {
		s.logger.Error("failed to fetch daily report", "error", err)
		return nil, err
	}

	if visits == nil {
		visits = []*Visit{}
	}

	return &ListResponse{Total: int64(len(visits)), Data: visits}, nil
}

func uniqueEmails(rows []ImportVisitDTO) []string {
	seen := make(map[string]struct{}, len(rows))
	emails := make([]string, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.Email]; ok {
			continue
		}
		seen[row.Email] = struct{}{}
		emails = append(emails, row.Email)
	}
	return emails
}
