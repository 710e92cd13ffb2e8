package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"psjudge_frontend/internal/app"
	"psjudge_frontend/internal/app/service"
	"psjudge_frontend/internal/common"
	"psjudge_frontend/internal/common/security"
	"psjudge_frontend/internal/domain/model"
	"psjudge_frontend/internal/domain/repository"
	"psjudge_frontend/internal/web"
	"psjudge_frontend/internal/web/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUserRepo struct {
	users []*model.User
}

func (m *memUserRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = len(m.users) + 1
	m.users = append(m.users, user)
	return nil
}

func (m *memUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memUserRepo) FindByID(ctx context.Context, id int) (*model.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

type memContestRepo struct {
	contests    []model.Contest
	members     map[int][]int
	assignments []model.Assignment
}

func (m *memContestRepo) CreateContest(ctx context.Context, c *model.Contest) error {
	c.ID = len(m.contests) + 1
	m.contests = append(m.contests, *c)
	return nil
}

func (m *memContestRepo) FindContestByID(ctx context.Context, id int) (*model.Contest, error) {
	for _, c := range m.contests {
		if c.ID == id {
			contest := c
			return &contest, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memContestRepo) ListUserContests(ctx context.Context, userID int) ([]model.Contest, error) {
	var out []model.Contest
	for _, c := range m.contests {
		for _, member := range m.members[c.ID] {
			if member == userID {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (m *memContestRepo) AddContestMember(ctx context.Context, contestID, userID int) error {
	if m.members == nil {
		m.members = map[int][]int{}
	}
	m.members[contestID] = append(m.members[contestID], userID)
	return nil
}

func (m *memContestRepo) CreateAssignment(ctx context.Context, a *model.Assignment) error {
	a.ID = len(m.assignments) + 1
	m.assignments = append(m.assignments, *a)
	return nil
}

func (m *memContestRepo) FindAssignmentByID(ctx context.Context, id int) (*model.Assignment, error) {
	for _, a := range m.assignments {
		if a.ID == id {
			assignment := a
			return &assignment, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memContestRepo) ListContestAssignments(ctx context.Context, contestID int) ([]model.AssignmentBrief, error) {
	var out []model.AssignmentBrief
	for _, a := range m.assignments {
		if a.ContestID == contestID {
			out = append(out, model.AssignmentBrief{ID: a.ID, ContestID: a.ContestID, UUID: a.UUID, Slug: a.Slug, Title: a.Title})
		}
	}
	return out, nil
}

func (m *memContestRepo) ContestResults(ctx context.Context, contestID int) ([]model.ContestResult, error) {
	return []model.ContestResult{{Username: "alice", AssignmentTitle: "Two Sum", Score: 70}}, nil
}

type memSolutionRepo struct {
	solutions []*model.Solution
	commits   []*model.Commit
}

func (m *memSolutionRepo) EnsureSolution(ctx context.Context, userID, assignmentID int) (*model.Solution, error) {
	for _, s := range m.solutions {
		if s.UserID == userID && s.AssignmentID == assignmentID {
			return s, nil
		}
	}
	solution := &model.Solution{ID: len(m.solutions) + 1, UserID: userID, AssignmentID: assignmentID}
	m.solutions = append(m.solutions, solution)
	return solution, nil
}

func (m *memSolutionRepo) CreateCommit(ctx context.Context, commit *model.Commit) error {
	commit.ID = len(m.commits) + 1
	m.commits = append(m.commits, commit)
	return nil
}

func (m *memSolutionRepo) CommitByUUID(ctx context.Context, uuid string) (*model.Commit, error) {
	for _, c := range m.commits {
		if c.UUID == uuid {
			return c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memSolutionRepo) ApplyBuildResult(ctx context.Context, uuid string, status model.CommitStatus, score int) error {
	commit, err := m.CommitByUUID(ctx, uuid)
	if err != nil {
		return err
	}
	commit.Status = status
	commit.Score = score
	return nil
}

func (m *memSolutionRepo) ListUserContestSolutions(ctx context.Context, userID, contestID int) ([]model.BriefSolution, error) {
	var out []model.BriefSolution
	for _, s := range m.solutions {
		if s.UserID == userID {
			out = append(out, model.BriefSolution{AssignmentID: s.AssignmentID, Score: s.Score, BuildStatus: model.CommitStatusPending})
		}
	}
	return out, nil
}

type memBuilder struct {
	builds int
}

func (m *memBuilder) RegisterBuild(ctx context.Context, uuid, assignmentUUID, language, source string) error {
	m.builds++
	return nil
}

type portalFixture struct {
	handler  http.Handler
	builds   *memBuilder
	solution *memSolutionRepo
}

func newPortal(t *testing.T) *portalFixture {
	t.Helper()

	hashed, err := security.HashPassword("secret")
	require.NoError(t, err)

	users := &memUserRepo{users: []*model.User{
		{ID: 1, Username: "alice", HashedPassword: hashed, Roles: model.RoleSet{model.RoleStudent}, ActiveContestID: 10},
		{ID: 2, Username: "bob", HashedPassword: hashed, Roles: model.RoleSet{model.RoleJudge, model.RoleStudent}, ActiveContestID: 10},
		{ID: 3, Username: "carol", HashedPassword: hashed, Roles: model.RoleSet{model.RoleAdmin, model.RoleJudge, model.RoleStudent}, ActiveContestID: 10},
		{ID: 4, Username: "dave", HashedPassword: hashed, Roles: model.RoleSet{model.RoleJudge}, ActiveContestID: 10},
		{ID: 5, Username: "eve", HashedPassword: hashed, Roles: nil, ActiveContestID: 10},
	}}
	contests := &memContestRepo{
		contests: []model.Contest{{ID: 10, Title: "Qualifier", StartTime: time.Now().Add(-time.Hour), EndTime: time.Now().Add(time.Hour)}},
		members:  map[int][]int{10: {1, 2, 3}},
		assignments: []model.Assignment{
			{ID: 5, ContestID: 10, UUID: "a1b2c3", Slug: "two-sum", Title: "Two Sum", Article: "# Two Sum\n\nAdd numbers."},
		},
	}
	solutions := &memSolutionRepo{}
	builds := &memBuilder{}

	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "style.css"), []byte("body {}"), 0o644))

	appCtx := &app.Context{
		Sessions: session.NewStore([]byte("test-secret"), time.Hour),
		NewRepos: func() *repository.Bundle {
			return &repository.Bundle{Users: users, Contests: contests, Solutions: solutions}
		},
		Auth:     service.NewAuthService(users),
		Students: service.NewStudentService(users, contests, solutions, builds),
	}

	return &portalFixture{
		handler:  New(appCtx, staticDir),
		builds:   builds,
		solution: solutions,
	}
}

func (p *portalFixture) do(t *testing.T, method, target string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	p.handler.ServeHTTP(w, req)
	return w
}

// login authenticates a seeded user and returns the session cookie.
func (p *portalFixture) login(t *testing.T, username string) []*http.Cookie {
	t.Helper()

	w := p.do(t, http.MethodPost, web.LoginURL, url.Values{"username": {username}, "password": {"secret"}}, nil)
	require.Equal(t, http.StatusMovedPermanently, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestUnauthenticatedHomeRedirectsToLogin(t *testing.T) {
	p := newPortal(t)

	for _, path := range []string{web.HomeURL, web.StudentHomeURL, web.StudentSolutionsURL, web.JudgeHomeURL, web.AdminHomeURL} {
		w := p.do(t, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusMovedPermanently, w.Code, path)
		assert.Equal(t, web.LoginURL, w.Header().Get("Location"), path)
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"), path)
	}
}

func TestLoginPageRenders(t *testing.T) {
	p := newPortal(t)

	w := p.do(t, http.MethodGet, web.LoginURL, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="username"`)
	assert.Contains(t, w.Body.String(), `name="password"`)
}

func TestLoginRolePrecedence(t *testing.T) {
	tests := []struct {
		username string
		wantHome string
	}{
		{"alice", web.StudentHomeURL}, // student only
		{"bob", web.JudgeHomeURL},     // judge beats student
		{"carol", web.AdminHomeURL},   // admin beats judge and student
		{"dave", web.JudgeHomeURL},    // judge only
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			p := newPortal(t)
			w := p.do(t, http.MethodPost, web.LoginURL, url.Values{"username": {tt.username}, "password": {"secret"}}, nil)
			assert.Equal(t, http.StatusMovedPermanently, w.Code)
			assert.Equal(t, tt.wantHome, w.Header().Get("Location"))

			cookies := w.Result().Cookies()
			require.NotEmpty(t, cookies)
			assert.Equal(t, session.CookieName, cookies[0].Name)
		})
	}
}

func TestLoginFailureRerendersForm(t *testing.T) {
	p := newPortal(t)

	w := p.do(t, http.MethodPost, web.LoginURL, url.Values{"username": {"alice"}, "password": {"nope"}}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Wrong username or password")
	assert.Empty(t, w.Result().Cookies(), "failed login must not touch the session")
}

func TestLoginWithoutAnyRoleFails(t *testing.T) {
	p := newPortal(t)

	// eve authenticates fine but carries no recognized role; fail closed.
	w := p.do(t, http.MethodPost, web.LoginURL, url.Values{"username": {"eve"}, "password": {"secret"}}, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthenticatedRootRedirectsToRoleHome(t *testing.T) {
	p := newPortal(t)
	cookies := p.login(t, "bob")

	w := p.do(t, http.MethodGet, web.HomeURL, nil, cookies)
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, web.JudgeHomeURL, w.Header().Get("Location"))
}

func TestStudentPages(t *testing.T) {
	p := newPortal(t)
	cookies := p.login(t, "alice")

	t.Run("home lists assignments", func(t *testing.T) {
		w := p.do(t, http.MethodGet, web.StudentHomeURL, nil, cookies)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Qualifier")
		assert.Contains(t, w.Body.String(), "Two Sum")
	})

	t.Run("assignment renders article", func(t *testing.T) {
		w := p.do(t, http.MethodGet, web.StudentAssignmentURL+"?id=5", nil, cookies)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "<h1>Two Sum</h1>")
		assert.Contains(t, w.Body.String(), "c++")
	})

	t.Run("bad assignment id is a server error", func(t *testing.T) {
		w := p.do(t, http.MethodGet, web.StudentAssignmentURL+"?id=abc", nil, cookies)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("solutions page", func(t *testing.T) {
		w := p.do(t, http.MethodGet, web.StudentSolutionsURL, nil, cookies)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Qualifier")
	})
}

func TestStudentCommitFlow(t *testing.T) {
	p := newPortal(t)
	cookies := p.login(t, "alice")

	form := url.Values{
		"assignmentId": {"5"},
		"language":     {"c++"},
		"source":       {"int main() { return 0; }"},
	}
	w := p.do(t, http.MethodPost, web.StudentCommitURL, form, cookies)
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, web.StudentSolutionsURL, w.Header().Get("Location"))

	assert.Equal(t, 1, p.builds.builds)
	require.Len(t, p.solution.solutions, 1)
	require.Len(t, p.solution.commits, 1)
	assert.Equal(t, model.CommitStatusPending, p.solution.commits[0].Status)
}

func TestStudentCommitRejectsLanguage(t *testing.T) {
	p := newPortal(t)
	cookies := p.login(t, "alice")

	form := url.Values{
		"assignmentId": {"5"},
		"language":     {"ruby"},
		"source":       {"puts 1"},
	}
	w := p.do(t, http.MethodPost, web.StudentCommitURL, form, cookies)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Zero(t, p.builds.builds)
	assert.Empty(t, p.solution.commits)
}

func TestStudentPagesRequireStudentRole(t *testing.T) {
	p := newPortal(t)
	cookies := p.login(t, "dave") // judge only

	w := p.do(t, http.MethodGet, web.StudentHomeURL, nil, cookies)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestJudgeHome(t *testing.T) {
	p := newPortal(t)
	cookies := p.login(t, "dave")

	w := p.do(t, http.MethodGet, web.JudgeHomeURL, nil, cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

func TestAdminHome(t *testing.T) {
	p := newPortal(t)
	cookies := p.login(t, "carol")

	w := p.do(t, http.MethodGet, web.AdminHomeURL, nil, cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "carol")
}

func TestStaticFallback(t *testing.T) {
	p := newPortal(t)

	w := p.do(t, http.MethodGet, "/style.css", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "body {}", w.Body.String())

	w = p.do(t, http.MethodGet, "/no-such-file.css", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
