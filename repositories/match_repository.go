package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arenaops/arena-server/models"
	"github.com/lib/pq"
)

var (
	ErrMatchResultNotFound   = errors.New("match result not found")
	ErrMatchResultConflict   = errors.New("match result already recorded for this participant")
	ErrMatchResultInvalidRef = errors.New("match result references a missing tournament or participant")
)

type MatchResultRepository interface {
	Create(ctx context.Context, exec SQLExecutor, result *models.MatchResult) error
	ListByTournament(ctx context.Context, tournamentID string) ([]models.MatchResult, error)
}

type postgresMatchResultRepository struct {
	db *sql.DB
}

func NewPostgresMatchResultRepository(db *sql.DB) MatchResultRepository {
	return &postgresMatchResultRepository{db: db}
}

func (r *postgresMatchResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchResultRepository) Create(ctx context.Context, exec SQLExecutor, result *models.MatchResult) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO match_results (id, tournament_id, participant_id, placement, kills, prize)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := executor.QueryRowContext(ctx, query,
		result.ID,
		result.TournamentID,
		result.ParticipantID,
		result.Placement,
		result.Kills,
		result.Prize,
	).Scan(&result.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return ErrMatchResultConflict
			case "23503":
				return ErrMatchResultInvalidRef
			}
		}
		return fmt.Errorf("failed to create match result: %w", err)
	}
	return nil
}

func (r *postgresMatchResultRepository) ListByTournament(ctx context.Context, tournamentID string) ([]models.MatchResult, error) {
	query := `
		SELECT id, tournament_id, participant_id, placement, kills, prize, created_at
		FROM match_results
		WHERE tournament_id = $1
		ORDER BY placement ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.MatchResult, 0)
	for rows.Next() {
		var m models.MatchResult
		if scanErr := rows.Scan(
			&m.ID, &m.TournamentID, &m.ParticipantID, &m.Placement, &m.Kills, &m.Prize, &m.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		results = append(results, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
