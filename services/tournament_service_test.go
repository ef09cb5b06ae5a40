package services

import (
	"context"
	"testing"
	"time"

	"github.com/arenaops/arena-server/models"
	"github.com/arenaops/arena-server/realtime"
	"github.com/arenaops/arena-server/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTournamentServiceForTest() (TournamentService, *MockTxManager, *MockTournamentRepository, *MockParticipantRepository, *MockUserRepository, *MockTeamRepository, *MockWalletRepository) {
	txm := new(MockTxManager)
	tournamentRepo := new(MockTournamentRepository)
	participantRepo := new(MockParticipantRepository)
	userRepo := new(MockUserRepository)
	teamRepo := new(MockTeamRepository)
	walletRepo := new(MockWalletRepository)
	uploader := new(MockFileUploader)
	hub := realtime.NewHub(testLogger())

	svc := NewTournamentService(txm, tournamentRepo, participantRepo, userRepo, teamRepo, walletRepo, hub, uploader, testLogger())
	return svc, txm, tournamentRepo, participantRepo, userRepo, teamRepo, walletRepo
}

func soloTournament(id string, fee decimal.Decimal, current, max int) *models.Tournament {
	return &models.Tournament{
		ID:                  id,
		Title:               "Friday Night Scrims",
		GameMode:            models.GameModeSolo,
		EntryFee:            fee,
		PrizePool:           decimal.RequireFromString("500.00"),
		MaxParticipants:     max,
		CurrentParticipants: current,
		Status:              models.TournamentStatusUpcoming,
		StartTime:           time.Now().Add(time.Hour),
		EndTime:             time.Now().Add(3 * time.Hour),
	}
}

func TestTournamentService_Join_DebitsFeeWithLedgerEntry(t *testing.T) {
	ctx := context.Background()
	svc, txm, tournamentRepo, participantRepo, userRepo, _, walletRepo := newTournamentServiceForTest()

	fee := decimal.RequireFromString("50.00")
	user := &models.User{ID: "user-1", WalletBalance: decimal.RequireFromString("200.00")}
	tournament := soloTournament("t-1", fee, 10, 100)

	userRepo.On("GetByID", ctx, nil, "user-1").Return(user, nil)
	tournamentRepo.On("GetByID", ctx, nil, "t-1").Return(tournament, nil)
	txm.On("WithinTx", ctx, mock.Anything).Return(nil)
	userRepo.On("DebitBalance", ctx, nil, "user-1", fee).Return(nil)
	walletRepo.On("Append", ctx, nil, mock.MatchedBy(func(entry *models.WalletTransaction) bool {
		return entry.UserID == "user-1" &&
			entry.Type == models.TransactionTypeEntry &&
			entry.Amount.Equal(fee) &&
			entry.ReferenceID != nil && *entry.ReferenceID == "t-1"
	})).Return(nil)
	participantRepo.On("Create", ctx, nil, mock.MatchedBy(func(p *models.Participant) bool {
		return p.TournamentID == "t-1" &&
			p.UserID != nil && *p.UserID == "user-1" &&
			p.TeamID == nil &&
			p.Status == models.ParticipantStatusRegistered
	})).Return(nil)
	tournamentRepo.On("IncrementParticipants", ctx, nil, "t-1").Return(nil)

	participant, err := svc.Join(ctx, "t-1", "user-1", JoinTournamentInput{})

	assert.NoError(t, err)
	assert.NotNil(t, participant.UserID)
	assert.Equal(t, "user-1", *participant.UserID)

	userRepo.AssertExpectations(t)
	walletRepo.AssertExpectations(t)
	participantRepo.AssertExpectations(t)
	tournamentRepo.AssertExpectations(t)
}

func TestTournamentService_Join_FreeTournamentSkipsWallet(t *testing.T) {
	ctx := context.Background()
	svc, txm, tournamentRepo, participantRepo, userRepo, _, walletRepo := newTournamentServiceForTest()

	user := &models.User{ID: "user-1"}
	tournament := soloTournament("t-1", decimal.Zero, 0, 50)

	userRepo.On("GetByID", ctx, nil, "user-1").Return(user, nil)
	tournamentRepo.On("GetByID", ctx, nil, "t-1").Return(tournament, nil)
	txm.On("WithinTx", ctx, mock.Anything).Return(nil)
	participantRepo.On("Create", ctx, nil, mock.Anything).Return(nil)
	tournamentRepo.On("IncrementParticipants", ctx, nil, "t-1").Return(nil)

	_, err := svc.Join(ctx, "t-1", "user-1", JoinTournamentInput{})

	assert.NoError(t, err)
	userRepo.AssertNotCalled(t, "DebitBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	walletRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
}

func TestTournamentService_Join_FullTournament(t *testing.T) {
	ctx := context.Background()
	svc, txm, tournamentRepo, participantRepo, userRepo, _, _ := newTournamentServiceForTest()

	user := &models.User{ID: "user-1"}
	tournament := soloTournament("t-1", decimal.Zero, 100, 100)

	userRepo.On("GetByID", ctx, nil, "user-1").Return(user, nil)
	tournamentRepo.On("GetByID", ctx, nil, "t-1").Return(tournament, nil)
	txm.On("WithinTx", ctx, mock.Anything).Return(nil)
	participantRepo.On("Create", ctx, nil, mock.Anything).Return(nil)
	tournamentRepo.On("IncrementParticipants", ctx, nil, "t-1").Return(repositories.ErrTournamentNotOpen)

	_, err := svc.Join(ctx, "t-1", "user-1", JoinTournamentInput{})

	assert.ErrorIs(t, err, ErrTournamentFull)
}

func TestTournamentService_Join_FilledWhileJoining(t *testing.T) {
	ctx := context.Background()
	svc, txm, tournamentRepo, participantRepo, userRepo, _, _ := newTournamentServiceForTest()

	// The open snapshot read before the transaction is stale: another join
	// takes the last spot, so the guarded increment fails and the in-tx
	// re-read must report the tournament as full.
	user := &models.User{ID: "user-1"}
	snapshot := soloTournament("t-1", decimal.Zero, 49, 50)
	filled := soloTournament("t-1", decimal.Zero, 50, 50)

	userRepo.On("GetByID", ctx, nil, "user-1").Return(user, nil)
	tournamentRepo.On("GetByID", ctx, nil, "t-1").Return(snapshot, nil).Once()
	txm.On("WithinTx", ctx, mock.Anything).Return(nil)
	participantRepo.On("Create", ctx, nil, mock.Anything).Return(nil)
	tournamentRepo.On("IncrementParticipants", ctx, nil, "t-1").Return(repositories.ErrTournamentNotOpen)
	tournamentRepo.On("GetByID", ctx, nil, "t-1").Return(filled, nil).Once()

	_, err := svc.Join(ctx, "t-1", "user-1", JoinTournamentInput{})

	assert.ErrorIs(t, err, ErrTournamentFull)
}

func TestTournamentService_Join_DuplicateRegistration(t *testing.T) {
	ctx := context.Background()
	svc, txm, tournamentRepo, participantRepo, userRepo, _, _ := newTournamentServiceForTest()

	user := &models.User{ID: "user-1"}
	tournament := soloTournament("t-1", decimal.Zero, 5, 100)

	userRepo.On("GetByID", ctx, nil, "user-1").Return(user, nil)
	tournamentRepo.On("GetByID", ctx, nil, "t-1").Return(tournament, nil)
	txm.On("WithinTx", ctx, mock.Anything).Return(nil)
	participantRepo.On("Create", ctx, nil, mock.Anything).Return(repositories.ErrParticipantConflict)

	_, err := svc.Join(ctx, "t-1", "user-1", JoinTournamentInput{})

	assert.ErrorIs(t, err, ErrRegistrationConflict)
	tournamentRepo.AssertNotCalled(t, "IncrementParticipants", mock.Anything, mock.Anything, mock.Anything)
}

func TestTournamentService_Join_InsufficientBalance(t *testing.T) {
	ctx := context.Background()
	svc, txm, tournamentRepo, participantRepo, userRepo, _, walletRepo := newTournamentServiceForTest()

	fee := decimal.RequireFromString("100.00")
	user := &models.User{ID: "user-1", WalletBalance: decimal.RequireFromString("10.00")}
	tournament := soloTournament("t-1", fee, 5, 100)

	userRepo.On("GetByID", ctx, nil, "user-1").Return(user, nil)
	tournamentRepo.On("GetByID", ctx, nil, "t-1").Return(tournament, nil)
	txm.On("WithinTx", ctx, mock.Anything).Return(nil)
	userRepo.On("DebitBalance", ctx, nil, "user-1", fee).Return(repositories.ErrInsufficientBalance)

	_, err := svc.Join(ctx, "t-1", "user-1", JoinTournamentInput{})

	assert.ErrorIs(t, err, ErrInsufficientBalance)
	walletRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
	participantRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestTournamentService_Join_BannedUserForbidden(t *testing.T) {
	ctx := context.Background()
	svc, txm, tournamentRepo, _, userRepo, _, _ := newTournamentServiceForTest()

	user := &models.User{ID: "user-1", IsBanned: true}
	userRepo.On("GetByID", ctx, nil, "user-1").Return(user, nil)

	_, err := svc.Join(ctx, "t-1", "user-1", JoinTournamentInput{})

	assert.ErrorIs(t, err, ErrForbiddenOperation)
	tournamentRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
	txm.AssertNotCalled(t, "WithinTx", mock.Anything, mock.Anything)
}

func TestTournamentService_Join_RegistrationClosed(t *testing.T) {
	ctx := context.Background()
	svc, txm, tournamentRepo, _, userRepo, _, _ := newTournamentServiceForTest()

	user := &models.User{ID: "user-1"}
	tournament := soloTournament("t-1", decimal.Zero, 5, 100)
	tournament.Status = models.TournamentStatusLive

	userRepo.On("GetByID", ctx, nil, "user-1").Return(user, nil)
	tournamentRepo.On("GetByID", ctx, nil, "t-1").Return(tournament, nil)

	_, err := svc.Join(ctx, "t-1", "user-1", JoinTournamentInput{})

	assert.ErrorIs(t, err, ErrRegistrationNotOpen)
	txm.AssertNotCalled(t, "WithinTx", mock.Anything, mock.Anything)
}

func TestTournamentService_Join_TeamModeRequiresLeader(t *testing.T) {
	ctx := context.Background()
	svc, _, tournamentRepo, _, userRepo, teamRepo, _ := newTournamentServiceForTest()

	user := &models.User{ID: "user-2"}
	tournament := soloTournament("t-1", decimal.Zero, 5, 100)
	tournament.GameMode = models.GameModeDuo

	teamID := "team-1"
	team := &models.Team{ID: teamID, Mode: models.TeamModeDuo, LeaderID: "user-1"}

	userRepo.On("GetByID", ctx, nil, "user-2").Return(user, nil)
	tournamentRepo.On("GetByID", ctx, nil, "t-1").Return(tournament, nil)
	teamRepo.On("GetByID", ctx, teamID).Return(team, nil)

	_, err := svc.Join(ctx, "t-1", "user-2", JoinTournamentInput{TeamID: &teamID})

	assert.ErrorIs(t, err, ErrLeaderActionOnly)
}

func TestTournamentService_Join_TeamModeMismatch(t *testing.T) {
	ctx := context.Background()
	svc, _, tournamentRepo, _, userRepo, teamRepo, _ := newTournamentServiceForTest()

	user := &models.User{ID: "user-1"}
	tournament := soloTournament("t-1", decimal.Zero, 5, 100)
	tournament.GameMode = models.GameModeSquad

	teamID := "team-1"
	team := &models.Team{ID: teamID, Mode: models.TeamModeDuo, LeaderID: "user-1"}

	userRepo.On("GetByID", ctx, nil, "user-1").Return(user, nil)
	tournamentRepo.On("GetByID", ctx, nil, "t-1").Return(tournament, nil)
	teamRepo.On("GetByID", ctx, teamID).Return(team, nil)

	_, err := svc.Join(ctx, "t-1", "user-1", JoinTournamentInput{TeamID: &teamID})

	assert.ErrorIs(t, err, ErrTeamModeMismatch)
}

func TestTournamentService_AdvanceStatusesByTime(t *testing.T) {
	ctx := context.Background()
	svc, _, tournamentRepo, _, _, _, _ := newTournamentServiceForTest()

	upcoming := soloTournament("t-1", decimal.Zero, 0, 100)
	live := soloTournament("t-2", decimal.Zero, 0, 100)
	live.Status = models.TournamentStatusLive

	tournamentRepo.On("ListDueForStatusChange", ctx, mock.Anything).
		Return([]*models.Tournament{upcoming, live}, nil)
	tournamentRepo.On("UpdateStatus", ctx, nil, "t-1", models.TournamentStatusLive).Return(nil)
	tournamentRepo.On("UpdateStatus", ctx, nil, "t-2", models.TournamentStatusCompleted).Return(nil)

	err := svc.AdvanceStatusesByTime(ctx)

	assert.NoError(t, err)
	tournamentRepo.AssertExpectations(t)
}

func TestTournamentService_Create_ValidatesInput(t *testing.T) {
	ctx := context.Background()
	svc, _, tournamentRepo, _, _, _, _ := newTournamentServiceForTest()

	_, err := svc.Create(ctx, "admin-1", CreateTournamentInput{
		Title:           "",
		GameMode:        models.GameModeSolo,
		MaxParticipants: 100,
	})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.Create(ctx, "admin-1", CreateTournamentInput{
		Title:           "No Capacity Cup",
		GameMode:        models.GameModeSolo,
		MaxParticipants: 0,
	})
	assert.ErrorIs(t, err, ErrTournamentInvalidCapacity)

	tournamentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
