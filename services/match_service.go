package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/arenaops/arena-server/models"
	"github.com/arenaops/arena-server/realtime"
	"github.com/arenaops/arena-server/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MatchResultInput struct {
	ParticipantID string `json:"participant_id"`
	Placement     int    `json:"placement"`
	Kills         int    `json:"kills"`
}

type MatchService interface {
	RecordResults(ctx context.Context, tournamentID string, results []MatchResultInput) ([]models.MatchResult, error)
	ListResults(ctx context.Context, tournamentID string) ([]models.MatchResult, error)
}

type matchService struct {
	txm             repositories.TxManager
	matchRepo       repositories.MatchResultRepository
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	teamRepo        repositories.TeamRepository
	userRepo        repositories.UserRepository
	walletRepo      repositories.WalletRepository
	notifier        NotificationService
	hub             *realtime.Hub
	logger          *slog.Logger
}

func NewMatchService(
	txm repositories.TxManager,
	matchRepo repositories.MatchResultRepository,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	walletRepo repositories.WalletRepository,
	notifier NotificationService,
	hub *realtime.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		txm:             txm,
		matchRepo:       matchRepo,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		teamRepo:        teamRepo,
		userRepo:        userRepo,
		walletRepo:      walletRepo,
		notifier:        notifier,
		hub:             hub,
		logger:          logger,
	}
}

// RecordResults stores the outcome for each participant and pays out prizes.
// Payout policy: first place earns the prize pool, every kill earns the
// per-kill reward. Team prizes are split equally across the roster, with the
// leader absorbing the rounding remainder. All writes for all results share
// one transaction.
func (s *matchService) RecordResults(ctx context.Context, tournamentID string, results []MatchResultInput) ([]models.MatchResult, error) {
	if len(results) == 0 {
		return nil, ErrValidationFailed
	}
	for _, r := range results {
		if r.ParticipantID == "" || r.Placement <= 0 || r.Kills < 0 {
			return nil, ErrValidationFailed
		}
	}

	t, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if t.Status != models.TournamentStatusLive && t.Status != models.TournamentStatusCompleted {
		return nil, ErrTournamentInvalidStatus
	}

	recorded := make([]models.MatchResult, 0, len(results))
	err = s.txm.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, input := range results {
			participant, txErr := s.participantRepo.FindByID(ctx, input.ParticipantID)
			if txErr != nil {
				if errors.Is(txErr, repositories.ErrParticipantNotFound) {
					return ErrParticipantNotFound
				}
				return txErr
			}
			if participant.TournamentID != tournamentID {
				return ErrParticipantNotFound
			}

			prize := t.PerKillReward.Mul(decimal.NewFromInt(int64(input.Kills)))
			if input.Placement == 1 {
				prize = prize.Add(t.PrizePool)
			}
			prize = prize.Round(2)

			result := &models.MatchResult{
				ID:            uuid.NewString(),
				TournamentID:  tournamentID,
				ParticipantID: input.ParticipantID,
				Placement:     input.Placement,
				Kills:         input.Kills,
				Prize:         prize,
			}
			if txErr = s.matchRepo.Create(ctx, exec, result); txErr != nil {
				if errors.Is(txErr, repositories.ErrMatchResultConflict) {
					return ErrResultAlreadyRecorded
				}
				return txErr
			}

			if txErr = s.participantRepo.UpdateStatus(ctx, exec, participant.ID, models.ParticipantStatusCompleted); txErr != nil {
				return txErr
			}

			if txErr = s.payOut(ctx, exec, participant, result); txErr != nil {
				return txErr
			}
			recorded = append(recorded, *result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastToRoom(realtime.TournamentRoom(tournamentID), realtime.Envelope{
		Type: realtime.EventMatchResult,
		Data: map[string]interface{}{
			"tournament_id": tournamentID,
			"results":       recorded,
		},
	})

	return recorded, nil
}

func (s *matchService) ListResults(ctx context.Context, tournamentID string) ([]models.MatchResult, error) {
	return s.matchRepo.ListByTournament(ctx, tournamentID)
}

func (s *matchService) payOut(ctx context.Context, exec repositories.SQLExecutor, participant *models.Participant, result *models.MatchResult) error {
	won := result.Placement == 1

	if participant.UserID != nil {
		return s.payUser(ctx, exec, *participant.UserID, result.Prize, won, result.TournamentID)
	}

	members, err := s.teamRepo.ListMembers(ctx, *participant.TeamID)
	if err != nil {
		return fmt.Errorf("failed to list members of team %s: %w", *participant.TeamID, err)
	}
	if len(members) == 0 {
		return fmt.Errorf("team %s has no members to pay", *participant.TeamID)
	}

	share := result.Prize.Div(decimal.NewFromInt(int64(len(members)))).RoundDown(2)
	remainder := result.Prize.Sub(share.Mul(decimal.NewFromInt(int64(len(members)))))

	for _, m := range members {
		amount := share
		if m.Role == models.TeamRoleLeader {
			amount = amount.Add(remainder)
		}
		if err := s.payUser(ctx, exec, m.UserID, amount, won, result.TournamentID); err != nil {
			return err
		}
	}
	return nil
}

func (s *matchService) payUser(ctx context.Context, exec repositories.SQLExecutor, userID string, amount decimal.Decimal, won bool, tournamentID string) error {
	if err := s.userRepo.ApplyMatchResult(ctx, exec, userID, won, amount); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return nil
	}
	if err := s.userRepo.CreditBalance(ctx, exec, userID, amount); err != nil {
		return err
	}
	return s.walletRepo.Append(ctx, exec, &models.WalletTransaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        models.TransactionTypePrize,
		Amount:      amount,
		Status:      models.TransactionStatusCompleted,
		ReferenceID: &tournamentID,
	})
}
