package services

import (
	"context"

	"github.com/arenaops/arena-server/models"
	"github.com/arenaops/arena-server/repositories"
	"golang.org/x/sync/errgroup"
)

const defaultLeaderboardSize = 100

type LeaderboardService interface {
	Players(ctx context.Context, limit int) ([]models.PlayerRanking, error)
	Teams(ctx context.Context, limit int) ([]models.TeamRanking, error)
	Combined(ctx context.Context, limit int) (*models.Leaderboard, error)
}

type leaderboardService struct {
	userRepo repositories.UserRepository
	teamRepo repositories.TeamRepository
}

func NewLeaderboardService(userRepo repositories.UserRepository, teamRepo repositories.TeamRepository) LeaderboardService {
	return &leaderboardService{userRepo: userRepo, teamRepo: teamRepo}
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > defaultLeaderboardSize {
		return defaultLeaderboardSize
	}
	return limit
}

func (s *leaderboardService) Players(ctx context.Context, limit int) ([]models.PlayerRanking, error) {
	return s.userRepo.TopPlayers(ctx, clampLimit(limit))
}

func (s *leaderboardService) Teams(ctx context.Context, limit int) ([]models.TeamRanking, error) {
	return s.teamRepo.TopTeams(ctx, clampLimit(limit))
}

// Combined fetches both boards concurrently.
func (s *leaderboardService) Combined(ctx context.Context, limit int) (*models.Leaderboard, error) {
	limit = clampLimit(limit)
	board := &models.Leaderboard{}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		players, err := s.userRepo.TopPlayers(gCtx, limit)
		if err != nil {
			return err
		}
		board.Players = players
		return nil
	})
	g.Go(func() error {
		teams, err := s.teamRepo.TopTeams(gCtx, limit)
		if err != nil {
			return err
		}
		board.Teams = teams
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return board, nil
}
