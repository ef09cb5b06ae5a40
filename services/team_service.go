package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/arenaops/arena-server/models"
	"github.com/arenaops/arena-server/repositories"
	"github.com/arenaops/arena-server/storage"
	"github.com/google/uuid"
)

type CreateTeamInput struct {
	Name string          `json:"name"`
	Mode models.TeamMode `json:"mode"`
}

type TeamService interface {
	Create(ctx context.Context, leaderID string, input CreateTeamInput) (*models.Team, error)
	GetByID(ctx context.Context, id string) (*models.Team, error)
	List(ctx context.Context, limit, offset int) ([]models.Team, error)
	JoinByCode(ctx context.Context, userID, joinCode string) (*models.Team, error)
	Leave(ctx context.Context, teamID, userID string) error
	Kick(ctx context.Context, teamID, leaderID, memberID string) error
}

type teamService struct {
	teamRepo repositories.TeamRepository
	userRepo repositories.UserRepository
	uploader storage.FileUploader
}

func NewTeamService(teamRepo repositories.TeamRepository, userRepo repositories.UserRepository, uploader storage.FileUploader) TeamService {
	return &teamService{teamRepo: teamRepo, userRepo: userRepo, uploader: uploader}
}

func (s *teamService) Create(ctx context.Context, leaderID string, input CreateTeamInput) (*models.Team, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrValidationFailed
	}
	maxMembers := input.Mode.MaxMembers()
	if maxMembers == 0 {
		return nil, ErrValidationFailed
	}

	if _, err := s.teamRepo.FindMembership(ctx, leaderID); err == nil {
		return nil, ErrAlreadyInTeam
	} else if !errors.Is(err, repositories.ErrTeamNotFound) {
		return nil, err
	}

	team := &models.Team{
		ID:         uuid.NewString(),
		Name:       input.Name,
		Mode:       input.Mode,
		MaxMembers: maxMembers,
		LeaderID:   leaderID,
		JoinCode:   generateJoinCode(),
	}

	if err := s.teamRepo.Create(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, err
	}

	member := &models.TeamMember{
		ID:     uuid.NewString(),
		TeamID: team.ID,
		UserID: leaderID,
		Role:   models.TeamRoleLeader,
	}
	if err := s.teamRepo.AddMember(ctx, member); err != nil {
		// Membership insert failed after the team row landed; drop the empty
		// team so the name and code are not orphaned.
		if delErr := s.teamRepo.Delete(ctx, team.ID); delErr != nil {
			return nil, fmt.Errorf("failed to add leader (%w) and to clean up team: %v", err, delErr)
		}
		if errors.Is(err, repositories.ErrTeamMemberConflict) {
			return nil, ErrAlreadyInTeam
		}
		return nil, err
	}

	team.Members = []models.TeamMember{*member}
	return team, nil
}

func (s *teamService) GetByID(ctx context.Context, id string) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	members, err := s.teamRepo.ListMembers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	team.Members = members
	s.decorate(team)
	return team, nil
}

func (s *teamService) List(ctx context.Context, limit, offset int) ([]models.Team, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	teams, err := s.teamRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	for i := range teams {
		// Join codes are for invited players only.
		teams[i].JoinCode = ""
		s.decorate(&teams[i])
	}
	return teams, nil
}

func (s *teamService) JoinByCode(ctx context.Context, userID, joinCode string) (*models.Team, error) {
	team, err := s.teamRepo.GetByJoinCode(ctx, strings.TrimSpace(joinCode))
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	count, err := s.teamRepo.CountMembers(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	if count >= team.MaxMembers {
		return nil, ErrTeamFull
	}

	member := &models.TeamMember{
		ID:     uuid.NewString(),
		TeamID: team.ID,
		UserID: userID,
		Role:   models.TeamRoleMember,
	}
	if err := s.teamRepo.AddMember(ctx, member); err != nil {
		if errors.Is(err, repositories.ErrTeamMemberConflict) {
			return nil, ErrAlreadyInTeam
		}
		return nil, err
	}

	return s.GetByID(ctx, team.ID)
}

func (s *teamService) Leave(ctx context.Context, teamID, userID string) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return err
	}

	if team.LeaderID == userID {
		count, countErr := s.teamRepo.CountMembers(ctx, teamID)
		if countErr != nil {
			return countErr
		}
		if count > 1 {
			return ErrLeaderCannotLeave
		}
		// Last member out: the team dissolves.
		return s.teamRepo.Delete(ctx, teamID)
	}

	if err := s.teamRepo.RemoveMember(ctx, teamID, userID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *teamService) Kick(ctx context.Context, teamID, leaderID, memberID string) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return err
	}
	if team.LeaderID != leaderID {
		return ErrLeaderActionOnly
	}
	if memberID == leaderID {
		return ErrLeaderCannotLeave
	}

	if err := s.teamRepo.RemoveMember(ctx, teamID, memberID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *teamService) decorate(team *models.Team) {
	if team.LogoKey != nil {
		url := s.uploader.GetPublicURL(*team.LogoKey)
		team.LogoURL = &url
	}
}

const joinCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateJoinCode() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing is not survivable in any meaningful way here,
		// fall back to a uuid-derived code.
		return strings.ToUpper(uuid.NewString()[:8])
	}
	for i := range b {
		b[i] = joinCodeCharset[int(b[i])%len(joinCodeCharset)]
	}
	return string(b)
}
