package models

import "time"

type NotificationType string

const (
	NotificationTypePayment    NotificationType = "payment"
	NotificationTypeTournament NotificationType = "tournament"
	NotificationTypeMatch      NotificationType = "match"
	NotificationTypeTeam       NotificationType = "team"
	NotificationTypeSystem     NotificationType = "system"
)

type Notification struct {
	ID        string           `json:"id" db:"id"`
	UserID    string           `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Body      string           `json:"body" db:"body"`
	Read      bool             `json:"read" db:"read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
