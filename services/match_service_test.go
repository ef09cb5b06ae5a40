package services

import (
	"context"
	"testing"

	"github.com/arenaops/arena-server/models"
	"github.com/arenaops/arena-server/realtime"
	"github.com/arenaops/arena-server/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newMatchServiceForTest() (MatchService, *MockTxManager, *MockMatchResultRepository, *MockTournamentRepository, *MockParticipantRepository, *MockTeamRepository, *MockUserRepository, *MockWalletRepository) {
	txm := new(MockTxManager)
	matchRepo := new(MockMatchResultRepository)
	tournamentRepo := new(MockTournamentRepository)
	participantRepo := new(MockParticipantRepository)
	teamRepo := new(MockTeamRepository)
	userRepo := new(MockUserRepository)
	walletRepo := new(MockWalletRepository)
	notifier := new(MockNotificationService)
	hub := realtime.NewHub(testLogger())

	svc := NewMatchService(txm, matchRepo, tournamentRepo, participantRepo, teamRepo, userRepo, walletRepo, notifier, hub, testLogger())
	return svc, txm, matchRepo, tournamentRepo, participantRepo, teamRepo, userRepo, walletRepo
}

func liveTournament(id string, prizePool, perKill string) *models.Tournament {
	return &models.Tournament{
		ID:            id,
		Title:         "Weekend Clash",
		GameMode:      models.GameModeSolo,
		PrizePool:     decimal.RequireFromString(prizePool),
		PerKillReward: decimal.RequireFromString(perKill),
		Status:        models.TournamentStatusLive,
	}
}

func TestMatchService_RecordResults_WinnerGetsPoolPlusKills(t *testing.T) {
	ctx := context.Background()
	svc, txm, matchRepo, tournamentRepo, participantRepo, _, userRepo, walletRepo := newMatchServiceForTest()

	tournament := liveTournament("t-1", "500.00", "5.00")
	userID := "user-1"
	participant := &models.Participant{ID: "p-1", TournamentID: "t-1", UserID: &userID}

	// 500 pool + 8 kills * 5 = 540
	expectedPrize := decimal.RequireFromString("540.00")

	tournamentRepo.On("GetByID", ctx, nil, "t-1").Return(tournament, nil)
	txm.On("WithinTx", ctx, mock.Anything).Return(nil)
	participantRepo.On("FindByID", ctx, "p-1").Return(participant, nil)
	matchRepo.On("Create", ctx, nil, mock.MatchedBy(func(r *models.MatchResult) bool {
		return r.ParticipantID == "p-1" && r.Placement == 1 && r.Kills == 8 &&
			r.Prize.Equal(expectedPrize)
	})).Return(nil)
	participantRepo.On("UpdateStatus", ctx, nil, "p-1", models.ParticipantStatusCompleted).Return(nil)
	userRepo.On("ApplyMatchResult", ctx, nil, userID, true, expectedPrize).Return(nil)
	userRepo.On("CreditBalance", ctx, nil, userID, expectedPrize).Return(nil)
	walletRepo.On("Append", ctx, nil, mock.MatchedBy(func(entry *models.WalletTransaction) bool {
		return entry.UserID == userID &&
			entry.Type == models.TransactionTypePrize &&
			entry.Amount.Equal(expectedPrize)
	})).Return(nil)

	results, err := svc.RecordResults(ctx, "t-1", []MatchResultInput{
		{ParticipantID: "p-1", Placement: 1, Kills: 8},
	})

	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.True(t, results[0].Prize.Equal(expectedPrize))

	matchRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
	walletRepo.AssertExpectations(t)
}

func TestMatchService_RecordResults_LoserZeroPrizeSkipsWallet(t *testing.T) {
	ctx := context.Background()
	svc, txm, matchRepo, tournamentRepo, participantRepo, _, userRepo, walletRepo := newMatchServiceForTest()

	tournament := liveTournament("t-1", "500.00", "5.00")
	userID := "user-2"
	participant := &models.Participant{ID: "p-2", TournamentID: "t-1", UserID: &userID}

	tournamentRepo.On("GetByID", ctx, nil, "t-1").Return(tournament, nil)
	txm.On("WithinTx", ctx, mock.Anything).Return(nil)
	participantRepo.On("FindByID", ctx, "p-2").Return(participant, nil)
	matchRepo.On("Create", ctx, nil, mock.Anything).Return(nil)
	participantRepo.On("UpdateStatus", ctx, nil, "p-2", models.ParticipantStatusCompleted).Return(nil)
	userRepo.On("ApplyMatchResult", ctx, nil, userID, false, mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.IsZero()
	})).Return(nil)

	results, err := svc.RecordResults(ctx, "t-1", []MatchResultInput{
		{ParticipantID: "p-2", Placement: 17, Kills: 0},
	})

	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.True(t, results[0].Prize.IsZero())

	userRepo.AssertNotCalled(t, "CreditBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	walletRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
}

func TestMatchService_RecordResults_TeamSplitLeaderAbsorbsRemainder(t *testing.T) {
	ctx := context.Background()
	svc, txm, matchRepo, tournamentRepo, participantRepo, teamRepo, userRepo, walletRepo := newMatchServiceForTest()

	// 100 pool + 0 kills split across 3 members: 33.33 each, leader gets 33.34.
	tournament := liveTournament("t-1", "100.00", "0.00")
	tournament.GameMode = models.GameModeSquad
	teamID := "team-1"
	participant := &models.Participant{ID: "p-1", TournamentID: "t-1", TeamID: &teamID}

	members := []models.TeamMember{
		{TeamID: teamID, UserID: "leader-1", Role: models.TeamRoleLeader},
		{TeamID: teamID, UserID: "member-2", Role: models.TeamRoleMember},
		{TeamID: teamID, UserID: "member-3", Role: models.TeamRoleMember},
	}

	share := decimal.RequireFromString("33.33")
	leaderShare := decimal.RequireFromString("33.34")

	tournamentRepo.On("GetByID", ctx, nil, "t-1").Return(tournament, nil)
	txm.On("WithinTx", ctx, mock.Anything).Return(nil)
	participantRepo.On("FindByID", ctx, "p-1").Return(participant, nil)
	matchRepo.On("Create", ctx, nil, mock.Anything).Return(nil)
	participantRepo.On("UpdateStatus", ctx, nil, "p-1", models.ParticipantStatusCompleted).Return(nil)
	teamRepo.On("ListMembers", ctx, teamID).Return(members, nil)

	userRepo.On("ApplyMatchResult", ctx, nil, "leader-1", true, leaderShare).Return(nil)
	userRepo.On("CreditBalance", ctx, nil, "leader-1", leaderShare).Return(nil)
	userRepo.On("ApplyMatchResult", ctx, nil, "member-2", true, share).Return(nil)
	userRepo.On("CreditBalance", ctx, nil, "member-2", share).Return(nil)
	userRepo.On("ApplyMatchResult", ctx, nil, "member-3", true, share).Return(nil)
	userRepo.On("CreditBalance", ctx, nil, "member-3", share).Return(nil)
	walletRepo.On("Append", ctx, nil, mock.Anything).Return(nil)

	_, err := svc.RecordResults(ctx, "t-1", []MatchResultInput{
		{ParticipantID: "p-1", Placement: 1, Kills: 0},
	})

	assert.NoError(t, err)
	userRepo.AssertExpectations(t)
	walletRepo.AssertNumberOfCalls(t, "Append", 3)
}

func TestMatchService_RecordResults_DuplicateResultRejected(t *testing.T) {
	ctx := context.Background()
	svc, txm, matchRepo, tournamentRepo, participantRepo, _, userRepo, _ := newMatchServiceForTest()

	tournament := liveTournament("t-1", "500.00", "5.00")
	userID := "user-1"
	participant := &models.Participant{ID: "p-1", TournamentID: "t-1", UserID: &userID}

	tournamentRepo.On("GetByID", ctx, nil, "t-1").Return(tournament, nil)
	txm.On("WithinTx", ctx, mock.Anything).Return(nil)
	participantRepo.On("FindByID", ctx, "p-1").Return(participant, nil)
	matchRepo.On("Create", ctx, nil, mock.Anything).Return(repositories.ErrMatchResultConflict)

	_, err := svc.RecordResults(ctx, "t-1", []MatchResultInput{
		{ParticipantID: "p-1", Placement: 1, Kills: 3},
	})

	assert.ErrorIs(t, err, ErrResultAlreadyRecorded)
	userRepo.AssertNotCalled(t, "ApplyMatchResult",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMatchService_RecordResults_UpcomingTournamentRejected(t *testing.T) {
	ctx := context.Background()
	svc, txm, _, tournamentRepo, _, _, _, _ := newMatchServiceForTest()

	tournament := liveTournament("t-1", "500.00", "5.00")
	tournament.Status = models.TournamentStatusUpcoming

	tournamentRepo.On("GetByID", ctx, nil, "t-1").Return(tournament, nil)

	_, err := svc.RecordResults(ctx, "t-1", []MatchResultInput{
		{ParticipantID: "p-1", Placement: 1, Kills: 3},
	})

	assert.ErrorIs(t, err, ErrTournamentInvalidStatus)
	txm.AssertNotCalled(t, "WithinTx", mock.Anything, mock.Anything)
}

func TestMatchService_RecordResults_ParticipantFromOtherTournament(t *testing.T) {
	ctx := context.Background()
	svc, txm, matchRepo, tournamentRepo, participantRepo, _, _, _ := newMatchServiceForTest()

	tournament := liveTournament("t-1", "500.00", "5.00")
	userID := "user-1"
	stray := &models.Participant{ID: "p-9", TournamentID: "t-other", UserID: &userID}

	tournamentRepo.On("GetByID", ctx, nil, "t-1").Return(tournament, nil)
	txm.On("WithinTx", ctx, mock.Anything).Return(nil)
	participantRepo.On("FindByID", ctx, "p-9").Return(stray, nil)

	_, err := svc.RecordResults(ctx, "t-1", []MatchResultInput{
		{ParticipantID: "p-9", Placement: 2, Kills: 1},
	})

	assert.ErrorIs(t, err, ErrParticipantNotFound)
	matchRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestMatchService_RecordResults_ValidatesInput(t *testing.T) {
	ctx := context.Background()
	svc, _, _, tournamentRepo, _, _, _, _ := newMatchServiceForTest()

	_, err := svc.RecordResults(ctx, "t-1", nil)
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.RecordResults(ctx, "t-1", []MatchResultInput{{ParticipantID: "p-1", Placement: 0, Kills: 2}})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.RecordResults(ctx, "t-1", []MatchResultInput{{ParticipantID: "p-1", Placement: 3, Kills: -1}})
	assert.ErrorIs(t, err, ErrValidationFailed)

	tournamentRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}
