package visit

import (
	"time"
)

// Visit statuses. A visit starts PENDING and is resolved to DONE or
// CANCELED through the gated update path.
const (
	StatusPending  = "PENDING"
	StatusDone     = "DONE"
	StatusCanceled = "CANCELED"
)

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Principal is the authenticated actor a request acts as.
type Principal struct {
	ID   string
	Role string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Visit represents one planned or completed client visit.
type Visit struct {
	ID                   string     `json:"id" gorm:"primaryKey;column:id"`
	UserID               string     `json:"userId" gorm:"column:user_id;not null"`
	Status               string     `json:"status" gorm:"column:status;default:PENDING"`
	PlannedTopic         *string    `json:"plannedTopic" gorm:"column:planned_topic"`
	RealisedTopic        *string    `json:"realisedTopic" gorm:"column:realised_topic"`
	PlannedVisitDate     *string    `json:"plannedVisitDate" gorm:"column:planned_visit_date"`
	PlannedVisitTime     *string    `json:"plannedVisitTime" gorm:"column:planned_visit_time"`
	BusinessPartner      *string    `json:"businessPartner" gorm:"column:business_partner"`
	PlannedVisitDuration *string    `json:"plannedVisitDuration" gorm:"column:planned_visit_duration"`
	Note                 *string    `json:"note" gorm:"column:note"`
	Grade                *string    `json:"grade" gorm:"column:grade"`
	CreatedAt            time.Time  `json:"createdAt" gorm:"column:created_at;default:now()"`
	UpdatedAt            time.Time  `json:"updatedAt" gorm:"column:updated_at;default:now()"`
	User                 *VisitUser `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
}

func (Visit) TableName() string {
	return "visits"
}

func (v *Visit) IsPending() bool {
	return v.Status == StatusPending
}

func (v *Visit) IsResolved() bool {
	return v.Status == StatusDone || v.Status == StatusCanceled
}

// VisitUser is the owner's public profile attached to visit responses.
// It maps onto the users table but carries no credential columns, so
// preloading it never selects the password hash.
type VisitUser struct {
	ID        string  `json:"id" gorm:"primaryKey;column:id"`
	FirstName string  `json:"firstName" gorm:"column:first_name"`
	LastName  *string `json:"lastName" gorm:"column:last_name"`
	Email     string  `json:"email" gorm:"column:email"`
	Role      string  `json:"role" gorm:"column:role"`
}

func (VisitUser) TableName() string {
	return "users"
}
