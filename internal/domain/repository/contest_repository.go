package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"psjudge_frontend/internal/common"
	"psjudge_frontend/internal/domain/model"

	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5/pgconn"
)

type ContestRepository interface {
	CreateContest(ctx context.Context, contest *model.Contest) error
	FindContestByID(ctx context.Context, id int) (*model.Contest, error)
	ListUserContests(ctx context.Context, userID int) ([]model.Contest, error)
	AddContestMember(ctx context.Context, contestID, userID int) error

	CreateAssignment(ctx context.Context, assignment *model.Assignment) error
	FindAssignmentByID(ctx context.Context, id int) (*model.Assignment, error)
	ListContestAssignments(ctx context.Context, contestID int) ([]model.AssignmentBrief, error)

	ContestResults(ctx context.Context, contestID int) ([]model.ContestResult, error)
}

type pgContestRepository struct {
	db *sql.DB
}

func NewPgContestRepository(db *sql.DB) ContestRepository {
	return &pgContestRepository{db: db}
}

func (r *pgContestRepository) CreateContest(ctx context.Context, c *model.Contest) error {
	if !c.EndTime.After(c.StartTime) {
		return common.Errorf("contest end time must be greater than start time: %w", common.ErrValidation)
	}
	query := `INSERT INTO contests (title, start_time, end_time) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, c.Title, c.StartTime, c.EndTime).Scan(&c.ID); err != nil {
		return fmt.Errorf("pgContestRepository.CreateContest: %w", err)
	}
	return nil
}

func (r *pgContestRepository) FindContestByID(ctx context.Context, id int) (*model.Contest, error) {
	query := `SELECT id, title, start_time, end_time FROM contests WHERE id = $1`
	contest := &model.Contest{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&contest.ID, &contest.Title, &contest.StartTime, &contest.EndTime,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgContestRepository.FindContestByID: %w", err)
	}
	return contest, nil
}

func (r *pgContestRepository) ListUserContests(ctx context.Context, userID int) ([]model.Contest, error) {
	query := `SELECT c.id, c.title, c.start_time, c.end_time
	          FROM contests c
	          JOIN contest_members m ON m.contest_id = c.id
	          WHERE m.user_id = $1
	          ORDER BY c.start_time, c.id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgContestRepository.ListUserContests: %w", err)
	}
	defer rows.Close()

	var contests []model.Contest
	for rows.Next() {
		var c model.Contest
		if err := rows.Scan(&c.ID, &c.Title, &c.StartTime, &c.EndTime); err != nil {
			return nil, fmt.Errorf("pgContestRepository.ListUserContests: %w", err)
		}
		contests = append(contests, c)
	}
	return contests, rows.Err()
}

func (r *pgContestRepository) AddContestMember(ctx context.Context, contestID, userID int) error {
	query := `INSERT INTO contest_members (contest_id, user_id) VALUES ($1, $2)
	          ON CONFLICT (contest_id, user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, contestID, userID); err != nil {
		return fmt.Errorf("pgContestRepository.AddContestMember: %w", err)
	}
	return nil
}

func (r *pgContestRepository) CreateAssignment(ctx context.Context, a *model.Assignment) error {
	if a.Slug == "" {
		a.Slug = slug.Make(a.Title)
	}
	query := `INSERT INTO assignments (contest_id, uuid, slug, title, article)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, a.ContestID, a.UUID, a.Slug, a.Title, a.Article).Scan(&a.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for uuid or slug
			return fmt.Errorf("assignment with this uuid or slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgContestRepository.CreateAssignment: %w", err)
	}
	return nil
}

func (r *pgContestRepository) FindAssignmentByID(ctx context.Context, id int) (*model.Assignment, error) {
	query := `SELECT id, contest_id, uuid, slug, title, article, created_at
	          FROM assignments WHERE id = $1`
	a := &model.Assignment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.ContestID, &a.UUID, &a.Slug, &a.Title, &a.Article, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgContestRepository.FindAssignmentByID: %w", err)
	}
	return a, nil
}

func (r *pgContestRepository) ListContestAssignments(ctx context.Context, contestID int) ([]model.AssignmentBrief, error) {
	query := `SELECT id, contest_id, uuid, slug, title
	          FROM assignments WHERE contest_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, contestID)
	if err != nil {
		return nil, fmt.Errorf("pgContestRepository.ListContestAssignments: %w", err)
	}
	defer rows.Close()

	var briefs []model.AssignmentBrief
	for rows.Next() {
		var b model.AssignmentBrief
		if err := rows.Scan(&b.ID, &b.ContestID, &b.UUID, &b.Slug, &b.Title); err != nil {
			return nil, fmt.Errorf("pgContestRepository.ListContestAssignments: %w", err)
		}
		briefs = append(briefs, b)
	}
	return briefs, rows.Err()
}

func (r *pgContestRepository) ContestResults(ctx context.Context, contestID int) ([]model.ContestResult, error) {
	query := `SELECT u.username, a.title, s.score
	          FROM solutions s
	          JOIN users u ON u.id = s.user_id
	          JOIN assignments a ON a.id = s.assignment_id
	          WHERE a.contest_id = $1
	          ORDER BY u.username, a.id`
	rows, err := r.db.QueryContext(ctx, query, contestID)
	if err != nil {
		return nil, fmt.Errorf("pgContestRepository.ContestResults: %w", err)
	}
	defer rows.Close()

	var results []model.ContestResult
	for rows.Next() {
		var res model.ContestResult
		if err := rows.Scan(&res.Username, &res.AssignmentTitle, &res.Score); err != nil {
			return nil, fmt.Errorf("pgContestRepository.ContestResults: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
