package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TournamentStatus string

const (
	TournamentStatusUpcoming  TournamentStatus = "upcoming"
	TournamentStatusLive      TournamentStatus = "live"
	TournamentStatusCompleted TournamentStatus = "completed"
	TournamentStatusCancelled TournamentStatus = "cancelled"
)

type GameMode string

const (
	GameModeSolo  GameMode = "solo"
	GameModeDuo   GameMode = "duo"
	GameModeSquad GameMode = "squad"
)

type Tournament struct {
	ID                  string           `json:"id" db:"id"`
	Title               string           `json:"title" db:"title"`
	Description         *string          `json:"description,omitempty" db:"description"`
	GameMode            GameMode         `json:"game_mode" db:"game_mode"`
	MapName             *string          `json:"map_name,omitempty" db:"map_name"`
	EntryFee            decimal.Decimal  `json:"entry_fee" db:"entry_fee"`
	PrizePool           decimal.Decimal  `json:"prize_pool" db:"prize_pool"`
	PerKillReward       decimal.Decimal  `json:"per_kill_reward" db:"per_kill_reward"`
	MaxParticipants     int              `json:"max_participants" db:"max_participants"`
	CurrentParticipants int              `json:"current_participants" db:"current_participants"`
	Status              TournamentStatus `json:"status" db:"status"`
	StartTime           time.Time        `json:"start_time" db:"start_time"`
	EndTime             time.Time        `json:"end_time" db:"end_time"`
	RoomID              *string          `json:"room_id,omitempty" db:"room_id"`
	RoomPassword        *string          `json:"room_password,omitempty" db:"room_password"`
	LogoKey             *string          `json:"-" db:"logo_key"`
	LogoURL             *string          `json:"logo_url,omitempty" db:"-"`
	CreatedBy           string           `json:"created_by" db:"created_by"`
	CreatedAt           time.Time        `json:"created_at" db:"created_at"`

	Participants []Participant `json:"participants,omitempty" db:"-"`
}

type ParticipantStatus string

const (
	ParticipantStatusRegistered ParticipantStatus = "registered"
	ParticipantStatusPlaying    ParticipantStatus = "playing"
	ParticipantStatusCompleted  ParticipantStatus = "completed"
)

// Participant is a tournament entry. Exactly one of UserID or TeamID is set,
// matching the game mode of the tournament.
type Participant struct {
	ID           string            `json:"id" db:"id"`
	TournamentID string            `json:"tournament_id" db:"tournament_id"`
	UserID       *string           `json:"user_id,omitempty" db:"user_id"`
	TeamID       *string           `json:"team_id,omitempty" db:"team_id"`
	Status       ParticipantStatus `json:"status" db:"status"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
	Team *Team `json:"team,omitempty" db:"-"`
}
