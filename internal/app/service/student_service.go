package service

import (
	"bytes"
	"context"
	"log"
	"strings"

	"psjudge_frontend/internal/common"
	"psjudge_frontend/internal/domain/model"
	"psjudge_frontend/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
)

// SupportedLanguages is the builder backend's language allow-list. A commit
// in any other language is rejected before the repository or the builder is
// touched.
var SupportedLanguages = []string{"c++", "pascal"}

// BuildRegistrar is the slice of the builder client the student flow needs.
type BuildRegistrar interface {
	RegisterBuild(ctx context.Context, uuid, assignmentUUID, language, source string) error
}

type StudentService struct {
	userRepo     repository.UserRepository
	contestRepo  repository.ContestRepository
	solutionRepo repository.SolutionRepository
	builder      BuildRegistrar
}

func NewStudentService(
	userRepo repository.UserRepository,
	contestRepo repository.ContestRepository,
	solutionRepo repository.SolutionRepository,
	builder BuildRegistrar,
) *StudentService {
	return &StudentService{
		userRepo:     userRepo,
		contestRepo:  contestRepo,
		solutionRepo: solutionRepo,
		builder:      builder,
	}
}

type HomeData struct {
	Contest     *model.Contest
	Assignments []model.AssignmentBrief
}

// Home collects the student home page: the user's active contest and its
// assignments.
func (s *StudentService) Home(ctx context.Context, userID int) (*HomeData, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, common.Errorf("failed to fetch user %d: %w", userID, err)
	}
	contest, err := s.contestRepo.FindContestByID(ctx, user.ActiveContestID)
	if err != nil {
		return nil, common.Errorf("failed to fetch active contest %d for user %d: %w", user.ActiveContestID, userID, err)
	}
	assignments, err := s.contestRepo.ListContestAssignments(ctx, contest.ID)
	if err != nil {
		return nil, common.Errorf("failed to list assignments of contest %d: %w", contest.ID, err)
	}
	return &HomeData{Contest: contest, Assignments: assignments}, nil
}

type AssignmentData struct {
	ID          int
	Title       string
	ArticleHTML string // rendered from the assignment's Markdown article
}

func (s *StudentService) Assignment(ctx context.Context, assignmentID int) (*AssignmentData, error) {
	assignment, err := s.contestRepo.FindAssignmentByID(ctx, assignmentID)
	if err != nil {
		return nil, common.Errorf("failed to fetch assignment %d: %w", assignmentID, err)
	}
	html, err := renderMarkdown(assignment.Article)
	if err != nil {
		return nil, common.Errorf("failed to render article of assignment %d: %w", assignmentID, err)
	}
	return &AssignmentData{ID: assignment.ID, Title: assignment.Title, ArticleHTML: html}, nil
}

type ContestSolutions struct {
	Contest    model.Contest
	Solutions  []model.BriefSolution
	TotalScore int // display only, never persisted
}

// Solutions lists the user's solutions grouped by every contest the user
// participates in.
func (s *StudentService) Solutions(ctx context.Context, userID int) ([]ContestSolutions, error) {
	contests, err := s.contestRepo.ListUserContests(ctx, userID)
	if err != nil {
		return nil, common.Errorf("failed to list contests of user %d: %w", userID, err)
	}

	var groups []ContestSolutions
	for _, contest := range contests {
		solutions, err := s.solutionRepo.ListUserContestSolutions(ctx, userID, contest.ID)
		if err != nil {
			return nil, common.Errorf("failed to list solutions of user %d in contest %d: %w", userID, contest.ID, err)
		}
		group := ContestSolutions{Contest: contest, Solutions: solutions}
		for _, solution := range solutions {
			group.TotalScore += solution.Score
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// Commit records one submitted source snapshot and hands it to the builder:
// ensure the solution row exists, insert the commit as pending, register the
// build under a fresh uuid.
func (s *StudentService) Commit(ctx context.Context, userID, assignmentID int, language, source string) error {
	if !languageSupported(language) {
		return common.Errorf("language %q is not supported: %w", language, common.ErrValidation)
	}
	if source == "" {
		return common.Errorf("commit source must not be empty: %w", common.ErrValidation)
	}

	assignment, err := s.contestRepo.FindAssignmentByID(ctx, assignmentID)
	if err != nil {
		return common.Errorf("failed to fetch assignment %d: %w", assignmentID, err)
	}

	buildUUID := newBuildUUID()

	solution, err := s.solutionRepo.EnsureSolution(ctx, userID, assignmentID)
	if err != nil {
		return common.Errorf("failed to ensure solution for user %d, assignment %d: %w", userID, assignmentID, err)
	}

	commit := &model.Commit{
		SolutionID: solution.ID,
		UUID:       buildUUID,
		Language:   language,
		Source:     source,
		Status:     model.CommitStatusPending,
	}
	if err := s.solutionRepo.CreateCommit(ctx, commit); err != nil {
		return common.Errorf("failed to create commit %s: %w", buildUUID, err)
	}

	if err := s.builder.RegisterBuild(ctx, buildUUID, assignment.UUID, language, source); err != nil {
		return common.Errorf("failed to register build %s: %w", buildUUID, err)
	}

	log.Printf("INFO: commit %s for user %d, assignment %d sent to builder", buildUUID, userID, assignmentID)
	return nil
}

func languageSupported(language string) bool {
	for _, supported := range SupportedLanguages {
		if language == supported {
			return true
		}
	}
	return false
}

// newBuildUUID generates the commit identifier: a v4 uuid with the dashes
// stripped, the format the builder backend expects.
func newBuildUUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func renderMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
