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
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrTournamentNotOpen    = errors.New("tournament is not open for registration or is full")
	ErrTournamentInvalidRef = errors.New("invalid tournament reference")
)

type ListTournamentsFilter struct {
	Status   *models.TournamentStatus
	GameMode *models.GameMode
	Limit    int
	Offset   int
}

type TournamentRepository interface {
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, t *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.TournamentStatus) error
	IncrementParticipants(ctx context.Context, exec SQLExecutor, id string) error
	UpdateLogoKey(ctx context.Context, id string, logoKey *string) error
	ListDueForStatusChange(ctx context.Context, now time.Time) ([]*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `id, title, description, game_mode, map_name, entry_fee, prize_pool,
	per_kill_reward, max_participants, current_participants, status, start_time, end_time,
	room_id, room_password, logo_key, created_by, created_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (
			id, title, description, game_mode, map_name, entry_fee, prize_pool,
			per_kill_reward, max_participants, status, start_time, end_time,
			room_id, room_password, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.Title, t.Description, t.GameMode, t.MapName, t.EntryFee, t.PrizePool,
		t.PerKillReward, t.MaxParticipants, t.Status, t.StartTime, t.EndTime,
		t.RoomID, t.RoomPassword, t.CreatedBy,
	).Scan(&t.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrTournamentInvalidRef
		}
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t := &models.Tournament{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Title, &t.Description, &t.GameMode, &t.MapName, &t.EntryFee, &t.PrizePool,
		&t.PerKillReward, &t.MaxParticipants, &t.CurrentParticipants, &t.Status, &t.StartTime, &t.EndTime,
		&t.RoomID, &t.RoomPassword, &t.LogoKey, &t.CreatedBy, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}
	if filter.GameMode != nil {
		query += fmt.Sprintf(" AND game_mode = $%d", argID)
		args = append(args, *filter.GameMode)
		argID++
	}

	query += " ORDER BY start_time DESC, created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.GameMode, &t.MapName, &t.EntryFee, &t.PrizePool,
			&t.PerKillReward, &t.MaxParticipants, &t.CurrentParticipants, &t.Status, &t.StartTime, &t.EndTime,
			&t.RoomID, &t.RoomPassword, &t.LogoKey, &t.CreatedBy, &t.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			title = $1,
			description = $2,
			map_name = $3,
			entry_fee = $4,
			prize_pool = $5,
			per_kill_reward = $6,
			max_participants = $7,
			status = $8,
			start_time = $9,
			end_time = $10,
			room_id = $11,
			room_password = $12
		WHERE id = $13`

	result, err := r.db.ExecContext(ctx, query,
		t.Title, t.Description, t.MapName, t.EntryFee, t.PrizePool, t.PerKillReward,
		t.MaxParticipants, t.Status, t.StartTime, t.EndTime, t.RoomID, t.RoomPassword,
		t.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE tournaments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// IncrementParticipants bumps the denormalized counter with a guarded atomic
// update. Zero rows affected means the tournament is missing, closed, or full;
// callers running inside a transaction must roll back so the participant insert
// does not outlive the failed increment.
func (r *postgresTournamentRepository) IncrementParticipants(ctx context.Context, exec SQLExecutor, id string) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments
		SET current_participants = current_participants + 1
		WHERE id = $1
		  AND status = $2
		  AND current_participants < max_participants`

	result, err := executor.ExecContext(ctx, query, id, models.TournamentStatusUpcoming)
	if err != nil {
		return fmt.Errorf("failed to increment participant counter for tournament %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		if _, getErr := r.GetByID(ctx, executor, id); getErr != nil {
			return getErr
		}
		return ErrTournamentNotOpen
	}
	return nil
}

func (r *postgresTournamentRepository) UpdateLogoKey(ctx context.Context, id string, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tournaments SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament logo key: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// ListDueForStatusChange returns tournaments whose start or end time has
// passed relative to their current status.
func (r *postgresTournamentRepository) ListDueForStatusChange(ctx context.Context, now time.Time) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE (status = $1 AND start_time <= $3)
		   OR (status = $2 AND end_time <= $3)`

	rows, err := r.db.QueryContext(ctx, query, models.TournamentStatusUpcoming, models.TournamentStatusLive, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments due for status change: %w", err)
	}
	defer rows.Close()

	var tournaments []*models.Tournament
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.GameMode, &t.MapName, &t.EntryFee, &t.PrizePool,
			&t.PerKillReward, &t.MaxParticipants, &t.CurrentParticipants, &t.Status, &t.StartTime, &t.EndTime,
			&t.RoomID, &t.RoomPassword, &t.LogoKey, &t.CreatedBy, &t.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}
