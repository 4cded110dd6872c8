package domain

import (
	"context"
	"time"
)

const AuthProviderGoogle = "google"

type User struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	AuthProvider string    `gorm:"size:32;not null;default:google" json:"authProvider"`
	DisplayName  string    `gorm:"size:128" json:"displayName"`
	Bio          string    `gorm:"type:text" json:"bio"`
	LaprasURL    string    `gorm:"size:512" json:"laprasUrl"`
	ImageURL     string    `gorm:"size:512" json:"imageUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	// Upsert 以 id 为键，登录时刷新邮箱/昵称/头像，不覆盖 bio 与 laprasUrl
	Upsert(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, q string, offset, limit int) ([]User, int64, error)
	UpdateProfile(ctx context.Context, id, bio, laprasURL string) error
}
