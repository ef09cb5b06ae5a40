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
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamNameConflict   = errors.New("team name conflict")
	ErrTeamMemberConflict = errors.New("user is already in a team")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id string) (*models.Team, error)
	GetByJoinCode(ctx context.Context, joinCode string) (*models.Team, error)
	List(ctx context.Context, limit, offset int) ([]models.Team, error)
	Delete(ctx context.Context, id string) error
	UpdateLogoKey(ctx context.Context, id string, logoKey *string) error

	AddMember(ctx context.Context, member *models.TeamMember) error
	RemoveMember(ctx context.Context, teamID, userID string) error
	ListMembers(ctx context.Context, teamID string) ([]models.TeamMember, error)
	CountMembers(ctx context.Context, teamID string) (int, error)
	FindMembership(ctx context.Context, userID string) (*models.TeamMember, error)

	TopTeams(ctx context.Context, limit int) ([]models.TeamRanking, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (id, name, mode, max_members, leader_id, join_code)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		team.ID,
		team.Name,
		team.Mode,
		team.MaxMembers,
		team.LeaderID,
		team.JoinCode,
	).Scan(&team.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "teams_name_key" {
				return ErrTeamNameConflict
			}
		}
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) scanTeam(rowScanner interface {
	Scan(dest ...interface{}) error
}) (*models.Team, error) {
	t := &models.Team{}
	err := rowScanner.Scan(
		&t.ID, &t.Name, &t.Mode, &t.MaxMembers, &t.LeaderID, &t.JoinCode, &t.LogoKey, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return t, nil
}

const teamColumns = `id, name, mode, max_members, leader_id, join_code, logo_key, created_at`

func (r *postgresTeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	return r.scanTeam(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresTeamRepository) GetByJoinCode(ctx context.Context, joinCode string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE join_code = $1`
	return r.scanTeam(r.db.QueryRowContext(ctx, query, joinCode))
}

func (r *postgresTeamRepository) List(ctx context.Context, limit, offset int) ([]models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
		if offset > 0 {
			query += ` OFFSET $2`
			args = append(args, offset)
		}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		t, scanErr := r.scanTeam(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, id string, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update team logo key: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) AddMember(ctx context.Context, member *models.TeamMember) error {
	query := `
		INSERT INTO team_members (id, team_id, user_id, role)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		member.ID,
		member.TeamID,
		member.UserID,
		member.Role,
	).Scan(&member.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrTeamMemberConflict
		}
		return fmt.Errorf("failed to add team member: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) RemoveMember(ctx context.Context, teamID, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`, teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) ListMembers(ctx context.Context, teamID string) ([]models.TeamMember, error) {
	query := `
		SELECT m.id, m.team_id, m.user_id, m.role, m.created_at,
		       u.username, u.total_earnings, u.total_matches, u.total_wins
		FROM team_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.team_id = $1
		ORDER BY m.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]models.TeamMember, 0)
	for rows.Next() {
		var m models.TeamMember
		var u models.User
		if scanErr := rows.Scan(
			&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.CreatedAt,
			&u.Username, &u.TotalEarnings, &u.TotalMatches, &u.TotalWins,
		); scanErr != nil {
			return nil, scanErr
		}
		u.ID = m.UserID
		m.User = &u
		members = append(members, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *postgresTeamRepository) CountMembers(ctx context.Context, teamID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM team_members WHERE team_id = $1`, teamID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count team members: %w", err)
	}
	return count, nil
}

func (r *postgresTeamRepository) FindMembership(ctx context.Context, userID string) (*models.TeamMember, error) {
	query := `SELECT id, team_id, user_id, role, created_at FROM team_members WHERE user_id = $1`
	m := &models.TeamMember{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return m, nil
}

// TopTeams aggregates member stats per team for the leaderboard.
func (r *postgresTeamRepository) TopTeams(ctx context.Context, limit int) ([]models.TeamRanking, error) {
	query := `
		SELECT t.id, t.name, t.mode,
		       COALESCE(sum(u.total_earnings), 0) AS earnings,
		       COALESCE(sum(u.total_wins), 0) AS wins
		FROM teams t
		JOIN team_members m ON m.team_id = t.id
		JOIN users u ON u.id = m.user_id
		GROUP BY t.id, t.name, t.mode
		ORDER BY earnings DESC, wins DESC, t.name ASC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rankings := make([]models.TeamRanking, 0, limit)
	for rows.Next() {
		var t models.TeamRanking
		if scanErr := rows.Scan(&t.TeamID, &t.Name, &t.Mode, &t.TotalEarnings, &t.TotalWins); scanErr != nil {
			return nil, scanErr
		}
		t.Rank = len(rankings) + 1
		rankings = append(rankings, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return rankings, nil
}
