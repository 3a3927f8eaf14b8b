package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/visit-tracker/internal/auth"
)

// UserRepository implements auth.UserRepository using GORM.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByEmail returns (nil, nil) when no user matches, so the caller
// can fold unknown email and wrong password into one error.
func (r *UserRepository) GetByEmail(email string) (*auth.User, error) {
	var user auth.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByID(id string) (*auth.User, error) {
	var user auth.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// UpdatePassword stores the new hash and flips the first-login flag.
func (r *UserRepository) UpdatePassword(id, passwordHash string) error {
	return r.db.Model(&auth.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_hash":       passwordHash,
			"is_password_changed": true,
			"updated_at":          time.Now(),
		}).Error
}

// FindIDsByEmail resolves emails to user IDs for the visit import.
func (r *UserRepository) FindIDsByEmail(emails []string) (map[string]string, error) {
	var users []auth.User
	err := r.db.Select("id", "email").Where("email IN ?", emails).Find(&users).Error
	if err != nil {
		return nil, err
	}

	idsByEmail := make(map[string]string, len(users))
	for _, u := range users {
		idsByEmail[u.Email] = u.ID
	}
	return idsByEmail, nil
}
