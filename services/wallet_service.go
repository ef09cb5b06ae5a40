package services

import (
	"context"
	"errors"

	"github.com/arenaops/arena-server/models"
	"github.com/arenaops/arena-server/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WalletService interface {
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, userID string, limit, offset int) ([]models.WalletTransaction, error)
	RequestWithdrawal(ctx context.Context, userID string, amount decimal.Decimal) (*models.WalletTransaction, error)
}

type walletService struct {
	txm        repositories.TxManager
	userRepo   repositories.UserRepository
	walletRepo repositories.WalletRepository
}

func NewWalletService(txm repositories.TxManager, userRepo repositories.UserRepository, walletRepo repositories.WalletRepository) WalletService {
	return &walletService{txm: txm, userRepo: userRepo, walletRepo: walletRepo}
}

func (s *walletService) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return decimal.Zero, ErrUserNotFound
		}
		return decimal.Zero, err
	}
	return user.WalletBalance, nil
}

func (s *walletService) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]models.WalletTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.walletRepo.ListByUser(ctx, userID, limit, offset)
}

// RequestWithdrawal debits the balance and appends a pending withdrawal entry
// in one transaction. The payout itself happens out of band; the pending entry
// is the admin's work queue.
func (s *walletService) RequestWithdrawal(ctx context.Context, userID string, amount decimal.Decimal) (*models.WalletTransaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	amount = amount.Round(2)

	entry := &models.WalletTransaction{
		ID:     uuid.NewString(),
		UserID: userID,
		Type:   models.TransactionTypeWithdrawal,
		Amount: amount,
		Status: models.TransactionStatusPending,
	}

	err := s.txm.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if txErr := s.userRepo.DebitBalance(ctx, exec, userID, amount); txErr != nil {
			switch {
			case errors.Is(txErr, repositories.ErrInsufficientBalance):
				return ErrInsufficientBalance
			case errors.Is(txErr, repositories.ErrUserNotFound):
				return ErrUserNotFound
			}
			return txErr
		}
		return s.walletRepo.Append(ctx, exec, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}
