package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the access token payload.
type JWTClaims struct {
	UserID     string   `json:"user_id"`
	Role       UserRole `json:"role"`
	Email      string   `json:"email"`
	Name       string   `json:"name"`
	StudentID  string   `json:"student_id,omitempty"`
	EmployeeID string   `json:"employee_id,omitempty"`
	jwt.RegisteredClaims
}

// RegisterRequest captures the registration payload.
type RegisterRequest struct {
	Name       string   `json:"name" validate:"required"`
	Email      string   `json:"email" validate:"required,email"`
	Password   string   `json:"password" validate:"required,min=6"`
	Role       UserRole `json:"role" validate:"required"`
	EmployeeID string   `json:"employeeId"`
	StudentID  string   `json:"studentId"`
	Department string   `json:"department"`
}

// LoginRequest captures login credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries an issued token alongside the public profile.
type AuthResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// UpdateProfileRequest captures profile self-service edits.
type UpdateProfileRequest struct {
	Name       string `json:"name"`
	Department string `json:"department"`
}

// ChangePasswordRequest captures a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}
