package model

import "time"

// User represents an account owned by the identity provider.
type User struct {
	ID               string     `json:"id" gorm:"primaryKey;size:36"`
	Email            string     `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Username         string     `json:"username,omitempty" gorm:"size:100"`
	PasswordHash     string     `json:"-" gorm:"size:255;not null"` // Not exposed in API responses
	EmailConfirmedAt *time.Time `json:"email_confirmed_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// Confirmed reports whether the email address has been verified.
func (u *User) Confirmed() bool {
	return u.EmailConfirmedAt != nil
}
