package models

import (
	"time"
)

// User represents a platform user
type User struct {
	ID             string    `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	Name           *string   `json:"name" db:"name"`
	Phone          *string   `json:"phone" db:"phone"`
	Country        *string   `json:"country" db:"country"`
	TelegramChatID *string   `json:"telegram_chat_id" db:"telegram_chat_id"`
	AlertsEnabled  bool      `json:"alerts_enabled" db:"alerts_enabled"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// UserResponse represents user information for API responses
type UserResponse struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           *string   `json:"name,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	Country        *string   `json:"country,omitempty"`
	TelegramChatID *string   `json:"telegram_chat_id,omitempty"`
	AlertsEnabled  bool      `json:"alerts_enabled"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
