package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID            string          `json:"id" db:"id"`
	Username      string          `json:"username" db:"username"`
	Email         string          `json:"email" db:"email"`
	PasswordHash  string          `json:"-" db:"password_hash"`
	AvatarKey     *string         `json:"-" db:"avatar_key"`
	AvatarURL     *string         `json:"avatar_url,omitempty" db:"-"`
	WalletBalance decimal.Decimal `json:"wallet_balance" db:"wallet_balance"`
	TotalEarnings decimal.Decimal `json:"total_earnings" db:"total_earnings"`
	TotalMatches  int             `json:"total_matches" db:"total_matches"`
	TotalWins     int             `json:"total_wins" db:"total_wins"`
	IsAdmin       bool            `json:"is_admin" db:"is_admin"`
	IsBanned      bool            `json:"is_banned" db:"is_banned"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserFilter struct {
	Search   *string
	IsBanned *bool
	Page     int
	Limit    int
}

type UserListResponse struct {
	Users      []User `json:"users"`
	TotalCount int    `json:"total_count"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
}
