package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Password     string             `bson:"password" json:"-"`
	IsAdmin      bool               `bson:"isAdmin" json:"isAdmin"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Bio          string             `bson:"bio,omitempty" json:"bio,omitempty"`
	ProfileImage string             `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Role is the RBAC subject the user acts as.
func (user *User) Role() string {
	if user.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}

func (user *User) Summary() *UserSummary {
	return &UserSummary{ID: user.ID, Name: user.Name, Email: user.Email}
}

// UserSummary is the populated form of a user reference on listings.
type UserSummary struct {
	ID    primitive.ObjectID `bson:"_id" json:"_id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email,omitempty" json:"email,omitempty"`
}

type Account struct {
	ID      primitive.ObjectID `json:"_id"`
	Name    string             `json:"name"`
	Email   string             `json:"email"`
	IsAdmin bool               `json:"isAdmin"`
}

type AuthResponse struct {
	Token string   `json:"token"`
	User  *Account `json:"user"`
}

func NewAuthResponse(token string, user *User) *AuthResponse {
	return &AuthResponse{
		Token: token,
		User: &Account{
			ID:      user.ID,
			Name:    user.Name,
			Email:   user.Email,
			IsAdmin: user.IsAdmin,
		},
	}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest carries a partial profile update. Empty fields keep
// the stored value.
type UpdateProfileRequest struct {
	Name         string `json:"name" validate:"omitempty,min=2,max=50"`
	Email        string `json:"email" validate:"omitempty,email"`
	Password     string `json:"password" validate:"omitempty,min=6"`
	Phone        string `json:"phone"`
	Bio          string `json:"bio" validate:"max=500"`
	ProfileImage string `json:"profileImage"`
}

// Apply copies the non-empty fields onto user. The password is returned
// separately so the caller can hash it.
func (req *UpdateProfileRequest) Apply(user *User) (password string) {
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.ProfileImage != "" {
		user.ProfileImage = req.ProfileImage
	}
	return req.Password
}
