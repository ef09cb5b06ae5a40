package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchResult records how a participant placed in a tournament match.
// Prize is the total credited for the result (placement prize plus kill rewards).
type MatchResult struct {
	ID            string          `json:"id" db:"id"`
	TournamentID  string          `json:"tournament_id" db:"tournament_id"`
	ParticipantID string          `json:"participant_id" db:"participant_id"`
	Placement     int             `json:"placement" db:"placement"`
	Kills         int             `json:"kills" db:"kills"`
	Prize         decimal.Decimal `json:"prize" db:"prize"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`

	Participant *Participant `json:"participant,omitempty" db:"-"`
}
