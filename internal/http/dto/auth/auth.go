// Package auth contiene los DTOs de /auth y su validación de entrada.
package auth

import "github.com/dropDatabas3/imageguard/internal/validation"

// SignUpRequest es el body de POST /auth/sign-up.
type SignUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r SignUpRequest) Validate() error {
	return validation.New().
		NotBlank("username", r.Username, "Username cannot be blank").
		Length("username", r.Username, 5, 50, "Username must be between 5 and 50 characters").
		NotBlank("email", r.Email, "Email address cannot be blank").
		Length("email", r.Email, 5, 255, "Email address must be between 5 and 255 characters").
		Email("email", r.Email, "Email address must be in the format user@example.com").
		Length("password", r.Password, 0, 255, "Password length must not exceed 255 characters").
		Err()
}

// SignInRequest es el body de POST /auth/sign-in.
type SignInRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

func (r SignInRequest) Validate() error {
	return validation.New().
		NotBlank("username", r.Username, "Username cannot be blank").
		Length("username", r.Username, 5, 50, "Username must be between 5 and 50 characters").
		NotBlank("password", r.Password, "Password cannot be blank").
		Length("password", r.Password, 8, 255, "Password length must be between 8 and 255 characters").
		Err()
}

// ResetPasswordRequest es el body de POST /auth/reset-password.
type ResetPasswordRequest struct {
	Username         string `json:"username"`
	NewPassword      string `json:"newPassword"`
	ConfirmationCode string `json:"confirmationCode"`
}

func (r ResetPasswordRequest) Validate() error {
	return validation.New().
		NotBlank("username", r.Username, "Username cannot be blank").
		NotBlank("newPassword", r.NewPassword, "Password cannot be blank").
		NotBlank("confirmationCode", r.ConfirmationCode, "Confirmation code cannot be blank").
		Err()
}

// TokenResponse es la respuesta de sign-up, sign-in y reset.
type TokenResponse struct {
	Token string `json:"token"`
}
