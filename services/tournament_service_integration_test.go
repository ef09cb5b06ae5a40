//go:build integration

package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/arenaops/arena-server/models"
	"github.com/arenaops/arena-server/realtime"
	"github.com/arenaops/arena-server/repositories"
	"github.com/arenaops/arena-server/repositories/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Exercises the guarded participant counter against a real database: many
// concurrent joins on one tournament must fill it exactly to capacity, and
// every over-capacity attempt must roll back its fee debit and participant row.
func TestTournamentService_Join_ConcurrentJoinsFillToCapacity(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	const (
		capacity = 50
		joiners  = 60
	)

	ctx := context.Background()
	testDB := testutil.SetupTestDatabase(t)

	txm := repositories.NewTxManager(testDB.DB)
	userRepo := repositories.NewPostgresUserRepository(testDB.DB)
	teamRepo := repositories.NewPostgresTeamRepository(testDB.DB)
	tournamentRepo := repositories.NewPostgresTournamentRepository(testDB.DB)
	participantRepo := repositories.NewPostgresParticipantRepository(testDB.DB)
	walletRepo := repositories.NewPostgresWalletRepository(testDB.DB)

	svc := NewTournamentService(txm, tournamentRepo, participantRepo, userRepo,
		teamRepo, walletRepo, realtime.NewHub(testLogger()), new(MockFileUploader), testLogger())

	admin := &models.User{
		ID:           uuid.NewString(),
		Username:     "arena-admin",
		Email:        "admin@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, userRepo.Create(ctx, admin))

	entryFee := decimal.RequireFromString("10.00")
	startingBalance := decimal.RequireFromString("100.00")

	userIDs := make([]string, joiners)
	for i := range userIDs {
		user := &models.User{
			ID:            uuid.NewString(),
			Username:      fmt.Sprintf("player-%02d", i),
			Email:         fmt.Sprintf("player-%02d@example.com", i),
			PasswordHash:  "x",
			WalletBalance: startingBalance,
		}
		require.NoError(t, userRepo.Create(ctx, user))
		userIDs[i] = user.ID
	}

	tournament := &models.Tournament{
		ID:              uuid.NewString(),
		Title:           "Capacity Rush",
		GameMode:        models.GameModeSolo,
		EntryFee:        entryFee,
		PrizePool:       decimal.RequireFromString("400.00"),
		PerKillReward:   decimal.RequireFromString("5.00"),
		MaxParticipants: capacity,
		Status:          models.TournamentStatusUpcoming,
		StartTime:       time.Now().Add(time.Hour),
		EndTime:         time.Now().Add(2 * time.Hour),
		CreatedBy:       admin.ID,
	}
	require.NoError(t, tournamentRepo.Create(ctx, tournament))

	errs := make([]error, joiners)
	var wg sync.WaitGroup
	for i, userID := range userIDs {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			_, errs[i] = svc.Join(ctx, tournament.ID, userID, JoinTournamentInput{})
		}(i, userID)
	}
	wg.Wait()

	joined := 0
	for i, err := range errs {
		if err == nil {
			joined++
			continue
		}
		assert.ErrorIs(t, err, ErrTournamentFull, "joiner %d failed with an unexpected error", i)
	}
	assert.Equal(t, capacity, joined)

	reloaded, err := tournamentRepo.GetByID(ctx, nil, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, capacity, reloaded.CurrentParticipants)

	participants, err := participantRepo.ListByTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Len(t, participants, capacity)

	// Rejected joiners keep their full balance: the fee debit and the ledger
	// entry must have rolled back with the failed insert.
	for i, userID := range userIDs {
		user, err := userRepo.GetByID(ctx, nil, userID)
		require.NoError(t, err)

		want := startingBalance.Sub(entryFee)
		if errs[i] != nil {
			want = startingBalance
		}
		assert.True(t, user.WalletBalance.Equal(want),
			"joiner %d balance = %s, want %s", i, user.WalletBalance, want)
	}
}
