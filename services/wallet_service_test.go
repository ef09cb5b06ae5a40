package services

import (
	"context"
	"testing"

	"github.com/arenaops/arena-server/models"
	"github.com/arenaops/arena-server/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newWalletServiceForTest() (WalletService, *MockTxManager, *MockUserRepository, *MockWalletRepository) {
	txm := new(MockTxManager)
	userRepo := new(MockUserRepository)
	walletRepo := new(MockWalletRepository)
	return NewWalletService(txm, userRepo, walletRepo), txm, userRepo, walletRepo
}

func TestWalletService_RequestWithdrawal_DebitsAndAppendsPendingEntry(t *testing.T) {
	ctx := context.Background()
	svc, txm, userRepo, walletRepo := newWalletServiceForTest()

	amount := decimal.RequireFromString("120.00")

	txm.On("WithinTx", ctx, mock.Anything).Return(nil)
	userRepo.On("DebitBalance", ctx, nil, "user-1", amount).Return(nil)
	walletRepo.On("Append", ctx, nil, mock.MatchedBy(func(entry *models.WalletTransaction) bool {
		return entry.UserID == "user-1" &&
			entry.Type == models.TransactionTypeWithdrawal &&
			entry.Amount.Equal(amount) &&
			entry.Status == models.TransactionStatusPending
	})).Return(nil)

	entry, err := svc.RequestWithdrawal(ctx, "user-1", amount)

	assert.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPending, entry.Status)

	userRepo.AssertExpectations(t)
	walletRepo.AssertExpectations(t)
}

func TestWalletService_RequestWithdrawal_Overdraft(t *testing.T) {
	ctx := context.Background()
	svc, txm, userRepo, walletRepo := newWalletServiceForTest()

	amount := decimal.RequireFromString("5000.00")

	txm.On("WithinTx", ctx, mock.Anything).Return(nil)
	userRepo.On("DebitBalance", ctx, nil, "user-1", amount).Return(repositories.ErrInsufficientBalance)

	_, err := svc.RequestWithdrawal(ctx, "user-1", amount)

	assert.ErrorIs(t, err, ErrInsufficientBalance)
	walletRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
}

func TestWalletService_RequestWithdrawal_RejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	svc, txm, _, _ := newWalletServiceForTest()

	_, err := svc.RequestWithdrawal(ctx, "user-1", decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.RequestWithdrawal(ctx, "user-1", decimal.RequireFromString("-10.00"))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	txm.AssertNotCalled(t, "WithinTx", mock.Anything, mock.Anything)
}

func TestWalletService_GetBalance(t *testing.T) {
	ctx := context.Background()
	svc, _, userRepo, _ := newWalletServiceForTest()

	user := &models.User{ID: "user-1", WalletBalance: decimal.RequireFromString("42.50")}
	userRepo.On("GetByID", ctx, nil, "user-1").Return(user, nil)

	balance, err := svc.GetBalance(ctx, "user-1")

	assert.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("42.50")))
}

func TestWalletService_GetBalance_UserNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _, userRepo, _ := newWalletServiceForTest()

	userRepo.On("GetByID", ctx, nil, "ghost").Return(nil, repositories.ErrUserNotFound)

	_, err := svc.GetBalance(ctx, "ghost")

	assert.ErrorIs(t, err, ErrUserNotFound)
}
