package models

import "time"

// TeamMode determines the roster cap: duo teams hold 2 players, squads hold 4.
type TeamMode string

const (
	TeamModeDuo   TeamMode = "duo"
	TeamModeSquad TeamMode = "squad"
)

// MaxMembers returns the roster cap for the mode, or 0 for an unknown mode.
func (m TeamMode) MaxMembers() int {
	switch m {
	case TeamModeDuo:
		return 2
	case TeamModeSquad:
		return 4
	default:
		return 0
	}
}

type TeamRole string

const (
	TeamRoleLeader TeamRole = "leader"
	TeamRoleMember TeamRole = "member"
)

type Team struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Mode       TeamMode  `json:"mode" db:"mode"`
	MaxMembers int       `json:"max_members" db:"max_members"`
	LeaderID   string    `json:"leader_id" db:"leader_id"`
	JoinCode   string    `json:"join_code,omitempty" db:"join_code"`
	LogoKey    *string   `json:"-" db:"logo_key"`
	LogoURL    *string   `json:"logo_url,omitempty" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	Members []TeamMember `json:"members,omitempty" db:"-"`
}

type TeamMember struct {
	ID        string    `json:"id" db:"id"`
	TeamID    string    `json:"team_id" db:"team_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Role      TeamRole  `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
}
