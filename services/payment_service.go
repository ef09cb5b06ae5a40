package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/arenaops/arena-server/models"
	"github.com/arenaops/arena-server/realtime"
	"github.com/arenaops/arena-server/repositories"
	"github.com/arenaops/arena-server/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SubmitProofInput struct {
	Amount      decimal.Decimal
	Method      models.PaymentMethod
	ReferenceID *string

	// Screenshot is optional; when set it is uploaded before the proof row
	// is created and the object key stored on the proof.
	Screenshot            io.Reader
	ScreenshotContentType string
	ScreenshotExt         string
}

type ReviewProofInput struct {
	Approve bool
	Notes   *string
}

type PaymentService interface {
	SubmitProof(ctx context.Context, userID string, input SubmitProofInput) (*models.PaymentProof, error)
	ListUserProofs(ctx context.Context, userID string, limit, offset int) ([]models.PaymentProof, error)
	ListPendingProofs(ctx context.Context, limit, offset int) ([]models.PaymentProof, error)
	ReviewProof(ctx context.Context, proofID, reviewerID string, input ReviewProofInput) (*models.PaymentProof, error)
}

type paymentService struct {
	txm        repositories.TxManager
	proofRepo  repositories.PaymentProofRepository
	userRepo   repositories.UserRepository
	walletRepo repositories.WalletRepository
	notifier   NotificationService
	hub        *realtime.Hub
	uploader   storage.FileUploader
	logger     *slog.Logger
}

func NewPaymentService(
	txm repositories.TxManager,
	proofRepo repositories.PaymentProofRepository,
	userRepo repositories.UserRepository,
	walletRepo repositories.WalletRepository,
	notifier NotificationService,
	hub *realtime.Hub,
	uploader storage.FileUploader,
	logger *slog.Logger,
) PaymentService {
	return &paymentService{
		txm:        txm,
		proofRepo:  proofRepo,
		userRepo:   userRepo,
		walletRepo: walletRepo,
		notifier:   notifier,
		hub:        hub,
		uploader:   uploader,
		logger:     logger,
	}
}

func (s *paymentService) SubmitProof(ctx context.Context, userID string, input SubmitProofInput) (*models.PaymentProof, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	// Clients send the method in whatever casing their UI uses ("UPI", "Paytm").
	method := models.PaymentMethod(strings.ToLower(strings.TrimSpace(string(input.Method))))
	switch method {
	case models.PaymentMethodUPI, models.PaymentMethodPaytm, models.PaymentMethodOther:
	default:
		return nil, ErrValidationFailed
	}

	proof := &models.PaymentProof{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      input.Amount.Round(2),
		Method:      method,
		ReferenceID: input.ReferenceID,
		Status:      models.ProofStatusPending,
	}

	if input.Screenshot != nil {
		key := "proofs/" + proof.ID + input.ScreenshotExt
		upload, err := s.uploader.Upload(ctx, key, input.ScreenshotContentType, input.Screenshot)
		if err != nil {
			return nil, fmt.Errorf("failed to upload payment screenshot: %w", err)
		}
		proof.ScreenshotKey = &upload.Key
	}

	if err := s.proofRepo.Create(ctx, proof); err != nil {
		if proof.ScreenshotKey != nil {
			if delErr := s.uploader.Delete(ctx, *proof.ScreenshotKey); delErr != nil {
				s.logger.Error("failed to delete orphaned screenshot",
					slog.String("key", *proof.ScreenshotKey), slog.Any("error", delErr))
			}
		}
		if errors.Is(err, repositories.ErrProofInvalidUser) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.decorateProof(proof)
	return proof, nil
}

func (s *paymentService) ListUserProofs(ctx context.Context, userID string, limit, offset int) ([]models.PaymentProof, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	proofs, err := s.proofRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	for i := range proofs {
		s.decorateProof(&proofs[i])
	}
	return proofs, nil
}

func (s *paymentService) ListPendingProofs(ctx context.Context, limit, offset int) ([]models.PaymentProof, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	proofs, err := s.proofRepo.ListByStatus(ctx, models.ProofStatusPending, limit, offset)
	if err != nil {
		return nil, err
	}
	for i := range proofs {
		s.decorateProof(&proofs[i])
	}
	return proofs, nil
}

// ReviewProof decides a pending proof. The status transition, the balance
// credit, and the ledger append commit or roll back together, so an approved
// proof can never exist without its deposit entry.
func (s *paymentService) ReviewProof(ctx context.Context, proofID, reviewerID string, input ReviewProofInput) (*models.PaymentProof, error) {
	reviewer, err := s.userRepo.GetByID(ctx, nil, reviewerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !reviewer.IsAdmin {
		return nil, ErrForbiddenOperation
	}

	status := models.ProofStatusApproved
	if !input.Approve {
		status = models.ProofStatusRejected
		if input.Notes == nil || strings.TrimSpace(*input.Notes) == "" {
			return nil, ErrRejectionNotesRequired
		}
	}

	var proof *models.PaymentProof
	err = s.txm.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var txErr error
		proof, txErr = s.proofRepo.GetByID(ctx, exec, proofID)
		if txErr != nil {
			if errors.Is(txErr, repositories.ErrProofNotFound) {
				return ErrProofNotFound
			}
			return txErr
		}

		now := time.Now().UTC()
		if txErr = s.proofRepo.MarkReviewed(ctx, exec, proofID, status, input.Notes, reviewerID, now); txErr != nil {
			if errors.Is(txErr, repositories.ErrProofAlreadyReviewed) {
				return ErrProofAlreadyReviewed
			}
			return txErr
		}
		proof.Status = status
		proof.AdminNotes = input.Notes
		proof.ReviewedBy = &reviewerID
		proof.ReviewedAt = &now

		if status != models.ProofStatusApproved {
			return nil
		}

		amount := proof.Amount.Round(2)
		if txErr = s.userRepo.CreditBalance(ctx, exec, proof.UserID, amount); txErr != nil {
			return txErr
		}
		return s.walletRepo.Append(ctx, exec, &models.WalletTransaction{
			ID:          uuid.NewString(),
			UserID:      proof.UserID,
			Type:        models.TransactionTypeDeposit,
			Amount:      amount,
			Status:      models.TransactionStatusCompleted,
			ReferenceID: &proof.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.announceReview(ctx, proof)
	s.decorateProof(proof)
	return proof, nil
}

func (s *paymentService) announceReview(ctx context.Context, proof *models.PaymentProof) {
	title := "Payment approved"
	body := fmt.Sprintf("Your deposit of %s has been credited to your wallet.", proof.Amount.StringFixed(2))
	if proof.Status == models.ProofStatusRejected {
		title = "Payment rejected"
		body = "Your payment proof was rejected."
		if proof.AdminNotes != nil {
			body = fmt.Sprintf("Your payment proof was rejected: %s", *proof.AdminNotes)
		}
	}
	s.notifier.Notify(ctx, proof.UserID, models.NotificationTypePayment, title, body)

	s.hub.BroadcastToRoom(realtime.UserRoom(proof.UserID), realtime.Envelope{
		Type: realtime.EventPaymentReviewed,
		Data: map[string]interface{}{
			"proof_id": proof.ID,
			"status":   proof.Status,
			"amount":   proof.Amount.StringFixed(2),
		},
	})
}

func (s *paymentService) decorateProof(proof *models.PaymentProof) {
	if proof.ScreenshotKey != nil {
		url := s.uploader.GetPublicURL(*proof.ScreenshotKey)
		proof.ScreenshotURL = &url
	}
}
