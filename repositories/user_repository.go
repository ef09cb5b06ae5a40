package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arenaops/arena-server/models"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserEmailConflict    = errors.New("user email conflict")
	ErrUserUsernameConflict = errors.New("user username conflict")
	ErrInsufficientBalance  = errors.New("insufficient wallet balance")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateAvatarKey(ctx context.Context, userID string, avatarKey *string) error
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	SetBanned(ctx context.Context, userID string, banned bool) error
	SetAdmin(ctx context.Context, userID string, admin bool) error
	CreditBalance(ctx context.Context, exec SQLExecutor, userID string, amount decimal.Decimal) error
	DebitBalance(ctx context.Context, exec SQLExecutor, userID string, amount decimal.Decimal) error
	ApplyMatchResult(ctx context.Context, exec SQLExecutor, userID string, won bool, earnings decimal.Decimal) error
	TopPlayers(ctx context.Context, limit int) ([]models.PlayerRanking, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const userColumns = `id, username, email, password_hash, avatar_key, wallet_balance,
	total_earnings, total_matches, total_wins, is_admin, is_banned, created_at`

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, wallet_balance)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.WalletBalance,
	).Scan(&user.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			switch pqErr.Constraint {
			case "users_email_key":
				return ErrUserEmailConflict
			case "users_username_key":
				return ErrUserUsernameConflict
			}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.User, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUserRow(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUserRow(r.db.QueryRowContext(ctx, query, email))
}

func (r *postgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			username = $1,
			email = $2,
			password_hash = $3
		WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			switch pqErr.Constraint {
			case "users_email_key":
				return ErrUserEmailConflict
			case "users_username_key":
				return ErrUserUsernameConflict
			}
		}
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) UpdateAvatarKey(ctx context.Context, userID string, avatarKey *string) error {
	query := `UPDATE users SET avatar_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, avatarKey, userID)
	if err != nil {
		return fmt.Errorf("failed to update user avatar key: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	query := `SELECT ` + userColumns + `, count(*) OVER() FROM users WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.Search != nil && *filter.Search != "" {
		query += fmt.Sprintf(" AND (username ILIKE $%d OR email ILIKE $%d)", argID, argID)
		args = append(args, "%"+*filter.Search+"%")
		argID++
	}
	if filter.IsBanned != nil {
		query += fmt.Sprintf(" AND is_banned = $%d", argID)
		args = append(args, *filter.IsBanned)
		argID++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
		if filter.Page > 1 {
			query += fmt.Sprintf(" OFFSET $%d", argID)
			args = append(args, (filter.Page-1)*filter.Limit)
		}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	total := 0
	for rows.Next() {
		var u models.User
		if scanErr := rows.Scan(
			&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.AvatarKey, &u.WalletBalance,
			&u.TotalEarnings, &u.TotalMatches, &u.TotalWins, &u.IsAdmin, &u.IsBanned, &u.CreatedAt,
			&total,
		); scanErr != nil {
			return nil, 0, scanErr
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *postgresUserRepository) SetBanned(ctx context.Context, userID string, banned bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET is_banned = $1 WHERE id = $2`, banned, userID)
	if err != nil {
		return fmt.Errorf("failed to update user ban flag: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) SetAdmin(ctx context.Context, userID string, admin bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET is_admin = $1 WHERE id = $2`, admin, userID)
	if err != nil {
		return fmt.Errorf("failed to update user admin flag: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

// CreditBalance adds amount to the cached wallet balance. The caller is
// responsible for appending the matching ledger entry in the same transaction.
func (r *postgresUserRepository) CreditBalance(ctx context.Context, exec SQLExecutor, userID string, amount decimal.Decimal) error {
	executor := r.getExecutor(exec)
	query := `UPDATE users SET wallet_balance = wallet_balance + $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to credit balance for user %s: %w", userID, err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

// DebitBalance subtracts amount, refusing to overdraw. A zero-row update on an
// existing user means the balance was too low.
func (r *postgresUserRepository) DebitBalance(ctx context.Context, exec SQLExecutor, userID string, amount decimal.Decimal) error {
	executor := r.getExecutor(exec)
	query := `UPDATE users SET wallet_balance = wallet_balance - $1 WHERE id = $2 AND wallet_balance >= $1`
	result, err := executor.ExecContext(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to debit balance for user %s: %w", userID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		if _, getErr := r.GetByID(ctx, executor, userID); getErr != nil {
			return getErr
		}
		return ErrInsufficientBalance
	}
	return nil
}

func (r *postgresUserRepository) ApplyMatchResult(ctx context.Context, exec SQLExecutor, userID string, won bool, earnings decimal.Decimal) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE users SET
			total_matches = total_matches + 1,
			total_wins = total_wins + CASE WHEN $1 THEN 1 ELSE 0 END,
			total_earnings = total_earnings + $2
		WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, won, earnings, userID)
	if err != nil {
		return fmt.Errorf("failed to apply match result for user %s: %w", userID, err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) TopPlayers(ctx context.Context, limit int) ([]models.PlayerRanking, error) {
	query := `
		SELECT id, username, total_earnings, total_matches, total_wins
		FROM users
		WHERE is_banned = FALSE
		ORDER BY total_earnings DESC, total_wins DESC, username ASC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rankings := make([]models.PlayerRanking, 0, limit)
	for rows.Next() {
		var p models.PlayerRanking
		if scanErr := rows.Scan(&p.UserID, &p.Username, &p.TotalEarnings, &p.TotalMatches, &p.TotalWins); scanErr != nil {
			return nil, scanErr
		}
		p.Rank = len(rankings) + 1
		rankings = append(rankings, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return rankings, nil
}

func scanUserRow(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.AvatarKey, &u.WalletBalance,
		&u.TotalEarnings, &u.TotalMatches, &u.TotalWins, &u.IsAdmin, &u.IsBanned, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}
