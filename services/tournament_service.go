package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arenaops/arena-server/models"
	"github.com/arenaops/arena-server/realtime"
	"github.com/arenaops/arena-server/repositories"
	"github.com/arenaops/arena-server/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateTournamentInput struct {
	Title           string          `json:"title"`
	Description     *string         `json:"description"`
	GameMode        models.GameMode `json:"game_mode"`
	MapName         *string         `json:"map_name"`
	EntryFee        decimal.Decimal `json:"entry_fee"`
	PrizePool       decimal.Decimal `json:"prize_pool"`
	PerKillReward   decimal.Decimal `json:"per_kill_reward"`
	MaxParticipants int             `json:"max_participants"`
	StartTime       time.Time       `json:"start_time"`
	EndTime         time.Time       `json:"end_time"`
	RoomID          *string         `json:"room_id"`
	RoomPassword    *string         `json:"room_password"`
}

type UpdateTournamentInput struct {
	Title        *string                  `json:"title"`
	Description  *string                  `json:"description"`
	MapName      *string                  `json:"map_name"`
	RoomID       *string                  `json:"room_id"`
	RoomPassword *string                  `json:"room_password"`
	Status       *models.TournamentStatus `json:"status"`
}

type JoinTournamentInput struct {
	TeamID *string `json:"team_id"`
}

type TournamentService interface {
	Create(ctx context.Context, creatorID string, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, id string, input UpdateTournamentInput) (*models.Tournament, error)
	Join(ctx context.Context, tournamentID, userID string, input JoinTournamentInput) (*models.Participant, error)
	AdvanceStatusesByTime(ctx context.Context) error
}

type tournamentService struct {
	txm             repositories.TxManager
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	userRepo        repositories.UserRepository
	teamRepo        repositories.TeamRepository
	walletRepo      repositories.WalletRepository
	hub             *realtime.Hub
	uploader        storage.FileUploader
	logger          *slog.Logger
}

func NewTournamentService(
	txm repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	userRepo repositories.UserRepository,
	teamRepo repositories.TeamRepository,
	walletRepo repositories.WalletRepository,
	hub *realtime.Hub,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		txm:             txm,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		userRepo:        userRepo,
		teamRepo:        teamRepo,
		walletRepo:      walletRepo,
		hub:             hub,
		uploader:        uploader,
		logger:          logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, creatorID string, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Title == "" {
		return nil, ErrValidationFailed
	}
	switch input.GameMode {
	case models.GameModeSolo, models.GameModeDuo, models.GameModeSquad:
	default:
		return nil, ErrValidationFailed
	}
	if input.MaxParticipants <= 0 {
		return nil, ErrTournamentInvalidCapacity
	}
	if !input.EndTime.After(input.StartTime) {
		return nil, ErrTournamentInvalidDateRange
	}
	if input.EntryFee.IsNegative() || input.PrizePool.IsNegative() || input.PerKillReward.IsNegative() {
		return nil, ErrInvalidAmount
	}

	t := &models.Tournament{
		ID:              uuid.NewString(),
		Title:           input.Title,
		Description:     input.Description,
		GameMode:        input.GameMode,
		MapName:         input.MapName,
		EntryFee:        input.EntryFee.Round(2),
		PrizePool:       input.PrizePool.Round(2),
		PerKillReward:   input.PerKillReward.Round(2),
		MaxParticipants: input.MaxParticipants,
		Status:          models.TournamentStatusUpcoming,
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
		RoomID:          input.RoomID,
		RoomPassword:    input.RoomPassword,
		CreatedBy:       creatorID,
	}

	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.decorate(t)
	return t, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	participants, err := s.participantRepo.ListByTournament(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for tournament %s: %w", id, err)
	}
	t.Participants = make([]models.Participant, 0, len(participants))
	for _, p := range participants {
		t.Participants = append(t.Participants, *p)
	}
	s.decorate(t)
	return t, nil
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range tournaments {
		s.decorate(&tournaments[i])
	}
	return tournaments, nil
}

func (s *tournamentService) Update(ctx context.Context, id string, input UpdateTournamentInput) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	if input.Title != nil {
		t.Title = *input.Title
	}
	if input.Description != nil {
		t.Description = input.Description
	}
	if input.MapName != nil {
		t.MapName = input.MapName
	}
	if input.RoomID != nil {
		t.RoomID = input.RoomID
	}
	if input.RoomPassword != nil {
		t.RoomPassword = input.RoomPassword
	}
	if input.Status != nil {
		switch *input.Status {
		case models.TournamentStatusUpcoming, models.TournamentStatusLive,
			models.TournamentStatusCompleted, models.TournamentStatusCancelled:
			t.Status = *input.Status
		default:
			return nil, ErrTournamentInvalidStatus
		}
	}

	if err := s.tournamentRepo.Update(ctx, t); err != nil {
		return nil, err
	}

	if input.Status != nil {
		s.announceStatus(t)
	}
	s.decorate(t)
	return t, nil
}

// Join registers a user (solo) or the caller's team (duo/squad) for a
// tournament. The entry-fee debit, its ledger entry, the participant insert,
// and the guarded counter increment form one transaction; a full or closed
// tournament rolls everything back.
func (s *tournamentService) Join(ctx context.Context, tournamentID, userID string, input JoinTournamentInput) (*models.Participant, error) {
	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.IsBanned {
		return nil, ErrForbiddenOperation
	}

	t, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if t.Status != models.TournamentStatusUpcoming {
		return nil, ErrRegistrationNotOpen
	}

	participant := &models.Participant{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		Status:       models.ParticipantStatusRegistered,
	}

	if t.GameMode == models.GameModeSolo {
		if input.TeamID != nil {
			return nil, ErrValidationFailed
		}
		participant.UserID = &userID
	} else {
		if input.TeamID == nil {
			return nil, ErrValidationFailed
		}
		team, teamErr := s.teamRepo.GetByID(ctx, *input.TeamID)
		if teamErr != nil {
			if errors.Is(teamErr, repositories.ErrTeamNotFound) {
				return nil, ErrTeamNotFound
			}
			return nil, teamErr
		}
		if team.LeaderID != userID {
			return nil, ErrLeaderActionOnly
		}
		if string(team.Mode) != string(t.GameMode) {
			return nil, ErrTeamModeMismatch
		}
		participant.TeamID = &team.ID
	}

	err = s.txm.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if t.EntryFee.IsPositive() {
			if txErr := s.userRepo.DebitBalance(ctx, exec, userID, t.EntryFee); txErr != nil {
				if errors.Is(txErr, repositories.ErrInsufficientBalance) {
					return ErrInsufficientBalance
				}
				return txErr
			}
			if txErr := s.walletRepo.Append(ctx, exec, &models.WalletTransaction{
				ID:          uuid.NewString(),
				UserID:      userID,
				Type:        models.TransactionTypeEntry,
				Amount:      t.EntryFee,
				Status:      models.TransactionStatusCompleted,
				ReferenceID: &tournamentID,
			}); txErr != nil {
				return txErr
			}
		}

		if txErr := s.participantRepo.Create(ctx, exec, participant); txErr != nil {
			if errors.Is(txErr, repositories.ErrParticipantConflict) {
				return ErrRegistrationConflict
			}
			return txErr
		}

		if txErr := s.tournamentRepo.IncrementParticipants(ctx, exec, tournamentID); txErr != nil {
			if errors.Is(txErr, repositories.ErrTournamentNotOpen) {
				// The pre-transaction snapshot is stale under concurrent joins;
				// re-read inside the transaction to tell full from closed.
				current, getErr := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
				if getErr == nil && current.Status == models.TournamentStatusUpcoming &&
					current.CurrentParticipants >= current.MaxParticipants {
					return ErrTournamentFull
				}
				return ErrRegistrationNotOpen
			}
			return txErr
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastToRoom(realtime.TournamentRoom(tournamentID), realtime.Envelope{
		Type: realtime.EventParticipantJoined,
		Data: map[string]interface{}{
			"tournament_id":  tournamentID,
			"participant_id": participant.ID,
			"user_id":        participant.UserID,
			"team_id":        participant.TeamID,
		},
	})

	return participant, nil
}

// AdvanceStatusesByTime moves upcoming tournaments to live once their start
// time passes and live ones to completed after their end time. Run
// periodically by the scheduler; a tournament already moved is not revisited,
// so reruns are no-ops.
func (s *tournamentService) AdvanceStatusesByTime(ctx context.Context) error {
	due, err := s.tournamentRepo.ListDueForStatusChange(ctx, time.Now().UTC())
	if err != nil {
		return err
	}

	for _, t := range due {
		var next models.TournamentStatus
		switch t.Status {
		case models.TournamentStatusUpcoming:
			next = models.TournamentStatusLive
		case models.TournamentStatusLive:
			next = models.TournamentStatusCompleted
		default:
			continue
		}

		if err := s.tournamentRepo.UpdateStatus(ctx, nil, t.ID, next); err != nil {
			s.logger.Error("failed to advance tournament status",
				slog.String("tournament_id", t.ID), slog.Any("error", err))
			continue
		}
		t.Status = next
		s.announceStatus(t)
		s.logger.Info("tournament status advanced",
			slog.String("tournament_id", t.ID), slog.String("status", string(next)))
	}
	return nil
}

func (s *tournamentService) announceStatus(t *models.Tournament) {
	envelope := realtime.Envelope{
		Type: realtime.EventTournamentStatus,
		Data: map[string]interface{}{
			"tournament_id": t.ID,
			"status":        t.Status,
		},
	}
	s.hub.BroadcastToRoom(realtime.TournamentRoom(t.ID), envelope)
	s.hub.BroadcastAll(envelope)
}

func (s *tournamentService) decorate(t *models.Tournament) {
	if t.LogoKey != nil {
		url := s.uploader.GetPublicURL(*t.LogoKey)
		t.LogoURL = &url
	}
}
