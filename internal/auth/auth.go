package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User is the authenticated principal plus the profile fields the API
// exposes. The password hash never leaves the server.
type User struct {
	ID                string    `json:"id" gorm:"primaryKey;column:id"`
	FirstName         string    `json:"firstName" gorm:"column:first_name"`
	LastName          *string   `json:"lastName" gorm:"column:last_name"`
	Email             string    `json:"email" gorm:"column:email;uniqueIndex"`
	PasswordHash      string    `json:"-" gorm:"column:password_hash"`
	Role              string    `json:"role" gorm:"column:role;default:USER"`
	IsPasswordChanged bool      `json:"isPasswordChanged" gorm:"column:is_password_changed;default:false"`
	CreatedAt         time.Time `json:"createdAt" gorm:"column:created_at;default:now()"`
	UpdatedAt         time.Time `json:"updatedAt" gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenGenerator creates and validates tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID, email string) (token string, err error)
	GenerateRefreshToken(userID, email string) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}
