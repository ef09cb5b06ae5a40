package services

import (
	"context"
	"errors"
	"testing"

	"github.com/arenaops/arena-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestLeaderboardService_Combined(t *testing.T) {
	userRepo := new(MockUserRepository)
	teamRepo := new(MockTeamRepository)
	svc := NewLeaderboardService(userRepo, teamRepo)

	players := []models.PlayerRanking{{UserID: "user-1", Username: "shadow", TotalWins: 12}}
	teams := []models.TeamRanking{{TeamID: "team-1", Name: "Night Owls", TotalWins: 4}}

	userRepo.On("TopPlayers", mock.Anything, 10).Return(players, nil)
	teamRepo.On("TopTeams", mock.Anything, 10).Return(teams, nil)

	board, err := svc.Combined(context.Background(), 10)

	assert.NoError(t, err)
	assert.Equal(t, players, board.Players)
	assert.Equal(t, teams, board.Teams)
}

func TestLeaderboardService_Combined_PropagatesError(t *testing.T) {
	userRepo := new(MockUserRepository)
	teamRepo := new(MockTeamRepository)
	svc := NewLeaderboardService(userRepo, teamRepo)

	boom := errors.New("players query failed")
	userRepo.On("TopPlayers", mock.Anything, 100).Return(nil, boom)
	teamRepo.On("TopTeams", mock.Anything, 100).Return([]models.TeamRanking{}, nil).Maybe()

	_, err := svc.Combined(context.Background(), 0)

	assert.ErrorIs(t, err, boom)
}

func TestLeaderboardService_ClampsLimit(t *testing.T) {
	userRepo := new(MockUserRepository)
	teamRepo := new(MockTeamRepository)
	svc := NewLeaderboardService(userRepo, teamRepo)

	userRepo.On("TopPlayers", mock.Anything, 100).Return([]models.PlayerRanking{}, nil)

	_, err := svc.Players(context.Background(), 5000)

	assert.NoError(t, err)
	userRepo.AssertExpectations(t)
}
