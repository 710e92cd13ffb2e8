package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"psjudge_frontend/internal/common"
	"psjudge_frontend/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id int) (*model.User, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	if len(user.Roles) == 0 {
		return common.Errorf("user must have at least one role: %w", common.ErrValidation)
	}
	query := `INSERT INTO users (username, hashed_password, roles, active_contest_id)
	          VALUES ($1, $2, $3, $4) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.HashedPassword, rolesColumn(user.Roles), user.ActiveContestID,
	).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("user with given username already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT id, username, hashed_password, roles, active_contest_id, created_at
	          FROM users WHERE username = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, username), "FindByUsername")
}

func (r *pgUserRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	query := `SELECT id, username, hashed_password, roles, active_contest_id, created_at
	          FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id), "FindByID")
}

func (r *pgUserRepository) scanUser(row *sql.Row, op string) (*model.User, error) {
	user := &model.User{}
	var roles string
	err := row.Scan(
		&user.ID, &user.Username, &user.HashedPassword, &roles, &user.ActiveContestID, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.%s: %w", op, err)
	}
	user.Roles, err = model.ParseRoleSet(roles)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.%s: corrupt roles column for user %d: %w", op, user.ID, err)
	}
	return user, nil
}

// rolesColumn serializes a role set into the comma-separated roles column.
func rolesColumn(roles model.RoleSet) string {
	out := ""
	for i, role := range roles {
		if i > 0 {
			out += ","
		}
		out += string(role)
	}
	return out
}
