package response

import (
	"time"

	"drone-delivery/internal/data/entity"
)

type UserResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Role         entity.UserRole `json:"role"`
	GoogleLinked bool            `json:"googleLinked"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// Helper converters
func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:           user.ID.String(),
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		GoogleLinked: user.GoogleID != nil,
		CreatedAt:    user.CreatedAt,
	}
}

func AuthToResponse(user *entity.User, token string, expiresAt time.Time) AuthResponse {
	return AuthResponse{
		User:      UserToResponse(user),
		Token:     token,
		ExpiresAt: expiresAt,
	}
}
