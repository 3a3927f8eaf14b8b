package auth

import (
	"errors"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (dto LoginDTO) Validate() error {
	if dto.Email == "" {
		return errors.New("email is required")
	}
	if dto.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func (dto RefreshTokenDTO) Validate() error {
	if dto.RefreshToken == "" {
		return errors.New("refresh token is required")
	}
	return nil
}

// ChangePasswordDTO carries the forced password-change payload. The
// repeated field is compared server side, same as the original form.
type ChangePasswordDTO struct {
	CurrentPassword     string `json:"currentPassword"`
	NewPassword         string `json:"newPassword"`
	RepeatedNewPassword string `json:"repeatedNewPassword"`
}

func (dto ChangePasswordDTO) Validate() error {
	if dto.CurrentPassword == "" || dto.NewPassword == "" || dto.RepeatedNewPassword == "" {
		return errors.New("Missing current or new password")
	}
	return nil
}
