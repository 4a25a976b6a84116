package domain

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	FirstName    string    `json:"firstName" gorm:"not null"`
	LastName     string    `json:"lastName" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	IsActive     bool      `json:"isActive" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type RefreshToken struct {
	ID         int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     int64          `json:"userId" gorm:"not null;index"`
	User       User           `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Token      string         `json:"-" gorm:"uniqueIndex;not null"`
	IsActive   bool           `json:"isActive" gorm:"not null;default:true"`
	ClientInfo datatypes.JSON `json:"clientInfo,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// ExpiresAt computes the token's expiry from its creation time; expiry is
// derived, never stored.
func (rt *RefreshToken) ExpiresAt(ttl time.Duration) time.Time {
	return rt.CreatedAt.Add(ttl)
}
