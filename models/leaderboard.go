package models

import "github.com/shopspring/decimal"

type PlayerRanking struct {
	Rank          int             `json:"rank"`
	UserID        string          `json:"user_id"`
	Username      string          `json:"username"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
	TotalMatches  int             `json:"total_matches"`
	TotalWins     int             `json:"total_wins"`
}

type TeamRanking struct {
	Rank          int             `json:"rank"`
	TeamID        string          `json:"team_id"`
	Name          string          `json:"name"`
	Mode          TeamMode        `json:"mode"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
	TotalWins     int             `json:"total_wins"`
}

type Leaderboard struct {
	Players []PlayerRanking `json:"players,omitempty"`
	Teams   []TeamRanking   `json:"teams,omitempty"`
}
