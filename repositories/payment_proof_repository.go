package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/arenaops/arena-server/models"
	"github.com/lib/pq"
)

var (
	ErrProofNotFound        = errors.New("payment proof not found")
	ErrProofAlreadyReviewed = errors.New("payment proof has already been reviewed")
	ErrProofInvalidUser     = errors.New("payment proof references a missing user")
)

type PaymentProofRepository interface {
	Create(ctx context.Context, proof *models.PaymentProof) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.PaymentProof, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.PaymentProof, error)
	ListByStatus(ctx context.Context, status models.ProofStatus, limit, offset int) ([]models.PaymentProof, error)
	MarkReviewed(ctx context.Context, exec SQLExecutor, id string, status models.ProofStatus, notes *string, reviewerID string, reviewedAt time.Time) error
}

type postgresPaymentProofRepository struct {
	db *sql.DB
}

func NewPostgresPaymentProofRepository(db *sql.DB) PaymentProofRepository {
	return &postgresPaymentProofRepository{db: db}
}

func (r *postgresPaymentProofRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const proofColumns = `id, user_id, amount, method, reference_id, screenshot_key,
	status, admin_notes, reviewed_by, reviewed_at, created_at`

func (r *postgresPaymentProofRepository) Create(ctx context.Context, proof *models.PaymentProof) error {
	query := `
		INSERT INTO payment_proofs (id, user_id, amount, method, reference_id, screenshot_key, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		proof.ID,
		proof.UserID,
		proof.Amount,
		proof.Method,
		proof.ReferenceID,
		proof.ScreenshotKey,
		proof.Status,
	).Scan(&proof.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrProofInvalidUser
		}
		return fmt.Errorf("failed to create payment proof: %w", err)
	}
	return nil
}

func (r *postgresPaymentProofRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.PaymentProof, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + proofColumns + ` FROM payment_proofs WHERE id = $1`

	p := &models.PaymentProof{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.UserID, &p.Amount, &p.Method, &p.ReferenceID, &p.ScreenshotKey,
		&p.Status, &p.AdminNotes, &p.ReviewedBy, &p.ReviewedAt, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProofNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPaymentProofRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.PaymentProof, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	proofs := make([]models.PaymentProof, 0)
	for rows.Next() {
		var p models.PaymentProof
		if scanErr := rows.Scan(
			&p.ID, &p.UserID, &p.Amount, &p.Method, &p.ReferenceID, &p.ScreenshotKey,
			&p.Status, &p.AdminNotes, &p.ReviewedBy, &p.ReviewedAt, &p.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		proofs = append(proofs, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return proofs, nil
}

func (r *postgresPaymentProofRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.PaymentProof, error) {
	query := `SELECT ` + proofColumns + `
		FROM payment_proofs WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, userID, limit, offset)
}

func (r *postgresPaymentProofRepository) ListByStatus(ctx context.Context, status models.ProofStatus, limit, offset int) ([]models.PaymentProof, error) {
	query := `SELECT ` + proofColumns + `
		FROM payment_proofs WHERE status = $1
		ORDER BY created_at ASC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, status, limit, offset)
}

// MarkReviewed transitions a pending proof to its terminal status. The WHERE
// clause doubles as the terminal-state guard: zero rows affected on an existing
// proof means it was already decided.
func (r *postgresPaymentProofRepository) MarkReviewed(ctx context.Context, exec SQLExecutor, id string, status models.ProofStatus, notes *string, reviewerID string, reviewedAt time.Time) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE payment_proofs
		SET status = $2, admin_notes = $3, reviewed_by = $4, reviewed_at = $5
		WHERE id = $1 AND status = $6`

	result, err := executor.ExecContext(ctx, query, id, status, notes, reviewerID, reviewedAt, models.ProofStatusPending)
	if err != nil {
		return fmt.Errorf("failed to review payment proof %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		if _, getErr := r.GetByID(ctx, executor, id); getErr != nil {
			return getErr
		}
		return ErrProofAlreadyReviewed
	}
	return nil
}
