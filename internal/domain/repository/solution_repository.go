package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"psjudge_frontend/internal/common"
	"psjudge_frontend/internal/domain/model"
)

type SolutionRepository interface {
	// EnsureSolution returns the solution row for (userID, assignmentID),
	// creating it with score 0 if absent. Safe under concurrent duplicate
	// submissions: the unique (user_id, assignment_id) constraint plus
	// ON CONFLICT DO NOTHING makes both racers converge on one row.
	EnsureSolution(ctx context.Context, userID, assignmentID int) (*model.Solution, error)

	CreateCommit(ctx context.Context, commit *model.Commit) error
	CommitByUUID(ctx context.Context, uuid string) (*model.Commit, error)

	// ApplyBuildResult updates the commit identified by uuid and overwrites
	// its solution's score, in one transaction. Last processed build wins.
	ApplyBuildResult(ctx context.Context, uuid string, status model.CommitStatus, score int) error

	ListUserContestSolutions(ctx context.Context, userID, contestID int) ([]model.BriefSolution, error)
}

type pgSolutionRepository struct {
	db *sql.DB
}

func NewPgSolutionRepository(db *sql.DB) SolutionRepository {
	return &pgSolutionRepository{db: db}
}

func (r *pgSolutionRepository) EnsureSolution(ctx context.Context, userID, assignmentID int) (*model.Solution, error) {
	insert := `INSERT INTO solutions (user_id, assignment_id, score) VALUES ($1, $2, 0)
	           ON CONFLICT (user_id, assignment_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, userID, assignmentID); err != nil {
		return nil, fmt.Errorf("pgSolutionRepository.EnsureSolution: %w", err)
	}

	query := `SELECT id, user_id, assignment_id, score, created_at
	          FROM solutions WHERE user_id = $1 AND assignment_id = $2`
	solution := &model.Solution{}
	err := r.db.QueryRowContext(ctx, query, userID, assignmentID).Scan(
		&solution.ID, &solution.UserID, &solution.AssignmentID, &solution.Score, &solution.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("pgSolutionRepository.EnsureSolution: %w", err)
	}
	return solution, nil
}

func (r *pgSolutionRepository) CreateCommit(ctx context.Context, c *model.Commit) error {
	query := `INSERT INTO commits (solution_id, uuid, language, source, status, score)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		c.SolutionID, c.UUID, c.Language, c.Source, c.Status, c.Score,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("pgSolutionRepository.CreateCommit: %w", err)
	}
	return nil
}

func (r *pgSolutionRepository) CommitByUUID(ctx context.Context, uuid string) (*model.Commit, error) {
	query := `SELECT id, solution_id, uuid, language, source, status, score, created_at
	          FROM commits WHERE uuid = $1`
	c := &model.Commit{}
	err := r.db.QueryRowContext(ctx, query, uuid).Scan(
		&c.ID, &c.SolutionID, &c.UUID, &c.Language, &c.Source, &c.Status, &c.Score, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSolutionRepository.CommitByUUID: %w", err)
	}
	return c, nil
}

func (r *pgSolutionRepository) ApplyBuildResult(ctx context.Context, uuid string, status model.CommitStatus, score int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgSolutionRepository.ApplyBuildResult: begin: %w", err)
	}
	defer tx.Rollback()

	var solutionID int
	update := `UPDATE commits SET status = $1, score = $2 WHERE uuid = $3 RETURNING solution_id`
	if err := tx.QueryRowContext(ctx, update, status, score, uuid).Scan(&solutionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.Errorf("commit %s not found: %w", uuid, common.ErrNotFound)
		}
		return fmt.Errorf("pgSolutionRepository.ApplyBuildResult: update commit: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE solutions SET score = $1 WHERE id = $2`, score, solutionID); err != nil {
		return fmt.Errorf("pgSolutionRepository.ApplyBuildResult: update solution: %w", err)
	}

	return tx.Commit()
}

func (r *pgSolutionRepository) ListUserContestSolutions(ctx context.Context, userID, contestID int) ([]model.BriefSolution, error) {
	// The commit join picks each solution's most recent commit; its status is
	// the build status shown on the solutions page.
	query := `SELECT s.assignment_id, a.title, c.id, s.score, c.status
	          FROM solutions s
	          JOIN assignments a ON a.id = s.assignment_id
	          JOIN LATERAL (
	              SELECT id, status FROM commits
	              WHERE solution_id = s.id
	              ORDER BY id DESC LIMIT 1
	          ) c ON true
	          WHERE s.user_id = $1 AND a.contest_id = $2
	          ORDER BY s.assignment_id`
	rows, err := r.db.QueryContext(ctx, query, userID, contestID)
	if err != nil {
		return nil, fmt.Errorf("pgSolutionRepository.ListUserContestSolutions: %w", err)
	}
	defer rows.Close()

	var briefs []model.BriefSolution
	for rows.Next() {
		var b model.BriefSolution
		if err := rows.Scan(&b.AssignmentID, &b.AssignmentTitle, &b.CommitID, &b.Score, &b.BuildStatus); err != nil {
			return nil, fmt.Errorf("pgSolutionRepository.ListUserContestSolutions: %w", err)
		}
		briefs = append(briefs, b)
	}
	return briefs, rows.Err()
}
