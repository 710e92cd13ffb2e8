package service

import (
	"context"

	"psjudge_frontend/internal/common"
	"psjudge_frontend/internal/domain/model"
)

// In-memory repository fakes for the service tests. Each fake counts its
// calls so tests can assert not just the outcome but how many times the
// storage and the builder were touched.

type fakeUserRepo struct {
	users []*model.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = len(f.users) + 1
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id int) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

type fakeContestRepo struct {
	contests     []model.Contest
	memberships  map[int][]int // contestID -> userIDs
	assignments  []model.Assignment
	findAsnCalls int
}

func (f *fakeContestRepo) CreateContest(ctx context.Context, c *model.Contest) error {
	c.ID = len(f.contests) + 1
	f.contests = append(f.contests, *c)
	return nil
}

func (f *fakeContestRepo) FindContestByID(ctx context.Context, id int) (*model.Contest, error) {
	for _, c := range f.contests {
		if c.ID == id {
			contest := c
			return &contest, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeContestRepo) ListUserContests(ctx context.Context, userID int) ([]model.Contest, error) {
	var out []model.Contest
	for _, c := range f.contests {
		for _, member := range f.memberships[c.ID] {
			if member == userID {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (f *fakeContestRepo) AddContestMember(ctx context.Context, contestID, userID int) error {
	if f.memberships == nil {
		f.memberships = map[int][]int{}
	}
	f.memberships[contestID] = append(f.memberships[contestID], userID)
	return nil
}

func (f *fakeContestRepo) CreateAssignment(ctx context.Context, a *model.Assignment) error {
	a.ID = len(f.assignments) + 1
	f.assignments = append(f.assignments, *a)
	return nil
}

func (f *fakeContestRepo) FindAssignmentByID(ctx context.Context, id int) (*model.Assignment, error) {
	f.findAsnCalls++
	for _, a := range f.assignments {
		if a.ID == id {
			assignment := a
			return &assignment, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeContestRepo) ListContestAssignments(ctx context.Context, contestID int) ([]model.AssignmentBrief, error) {
	var out []model.AssignmentBrief
	for _, a := range f.assignments {
		if a.ContestID == contestID {
			out = append(out, model.AssignmentBrief{
				ID: a.ID, ContestID: a.ContestID, UUID: a.UUID, Slug: a.Slug, Title: a.Title,
			})
		}
	}
	return out, nil
}

func (f *fakeContestRepo) ContestResults(ctx context.Context, contestID int) ([]model.ContestResult, error) {
	return nil, nil
}

type fakeSolutionRepo struct {
	solutions   []*model.Solution
	commits     []*model.Commit
	briefs      map[int][]model.BriefSolution // contestID -> rows
	ensureCalls int
}

func (f *fakeSolutionRepo) EnsureSolution(ctx context.Context, userID, assignmentID int) (*model.Solution, error) {
	f.ensureCalls++
	for _, s := range f.solutions {
		if s.UserID == userID && s.AssignmentID == assignmentID {
			return s, nil
		}
	}
	solution := &model.Solution{ID: len(f.solutions) + 1, UserID: userID, AssignmentID: assignmentID}
	f.solutions = append(f.solutions, solution)
	return solution, nil
}

func (f *fakeSolutionRepo) CreateCommit(ctx context.Context, commit *model.Commit) error {
	commit.ID = len(f.commits) + 1
	f.commits = append(f.commits, commit)
	return nil
}

func (f *fakeSolutionRepo) CommitByUUID(ctx context.Context, uuid string) (*model.Commit, error) {
	for _, c := range f.commits {
		if c.UUID == uuid {
			return c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeSolutionRepo) ApplyBuildResult(ctx context.Context, uuid string, status model.CommitStatus, score int) error {
	commit, err := f.CommitByUUID(ctx, uuid)
	if err != nil {
		return err
	}
	commit.Status = status
	commit.Score = score
	for _, s := range f.solutions {
		if s.ID == commit.SolutionID {
			s.Score = score
		}
	}
	return nil
}

func (f *fakeSolutionRepo) ListUserContestSolutions(ctx context.Context, userID, contestID int) ([]model.BriefSolution, error) {
	return f.briefs[contestID], nil
}

type fakeBuilder struct {
	builds []registeredBuild
	err    error
}

type registeredBuild struct {
	uuid           string
	assignmentUUID string
	language       string
	source         string
}

func (f *fakeBuilder) RegisterBuild(ctx context.Context, uuid, assignmentUUID, language, source string) error {
	if f.err != nil {
		return f.err
	}
	f.builds = append(f.builds, registeredBuild{uuid, assignmentUUID, language, source})
	return nil
}
