package dto

import "github.com/sunrisehms/finance_backend/internal/core/domain"

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued bearer token and the user's identity.
type LoginResponse struct {
	Token  string      `json:"token"`
	UserID string      `json:"userID"`
	Name   string      `json:"name"`
	Role   domain.Role `json:"role"`
}

// CreateUserRequest registers a new back-office user (admin only).
type CreateUserRequest struct {
	Username string      `json:"username" binding:"required,min=3,max=60"`
	Password string      `json:"password" binding:"required,min=8"`
	Name     string      `json:"name" binding:"required"`
	Role     domain.Role `json:"role" binding:"required,oneof=ADMIN FINANCE_MANAGER FINANCE_EXECUTIVE VIEWER"`
}

// UserResponse is the wire form of a user, without credentials.
type UserResponse struct {
	UserID   string      `json:"userID"`
	Username string      `json:"username"`
	Name     string      `json:"name"`
	Role     domain.Role `json:"role"`
	IsActive bool        `json:"isActive"`
}

// ToUserResponse converts a domain user to its wire form.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:   u.UserID,
		Username: u.Username,
		Name:     u.Name,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
}
