package handler

import (
	"context"
	"html/template"
	"net/http"
	"strconv"

	"psjudge_frontend/internal/app"
	"psjudge_frontend/internal/app/service"
	"psjudge_frontend/internal/common"
	"psjudge_frontend/internal/domain/model"
	"psjudge_frontend/internal/web"
)

// StudentHandler serves the student's pages: assignments of the active
// contest, a single assignment, the solutions listing, and submission.
type StudentHandler struct {
	Base
}

func NewStudentHandler(appCtx *app.Context, w http.ResponseWriter, r *http.Request) *StudentHandler {
	return &StudentHandler{Base: NewBase(appCtx, w, r)}
}

func (h *StudentHandler) Action(name string) (ActionFunc, bool) {
	switch name {
	case "home":
		return h.home, true
	case "assignment":
		return h.assignment, true
	case "solutions":
		return h.solutions, true
	case "commit":
		return h.commit, true
	}
	return nil, false
}

// ensureStudent gates every student action: unauthenticated visitors are
// redirected to login (ok=false, no error); an authenticated session
// without the student role is a hard failure, not a redirect.
func (h *StudentHandler) ensureStudent() (bool, error) {
	if !h.CheckAuth() {
		return false, nil
	}
	if !h.Session().Roles.Has(model.RoleStudent) {
		return false, common.Errorf("user %q has no privileges to view this page: %w",
			h.Session().Username, common.ErrForbidden)
	}
	return true, nil
}

type StudentHomePage struct {
	Contest     *model.Contest
	Assignments []model.AssignmentBrief
}

func (h *StudentHandler) home(ctx context.Context) error {
	ok, err := h.ensureStudent()
	if !ok {
		return err
	}
	data, err := h.app.Students.Home(ctx, h.Session().UserID)
	if err != nil {
		return err
	}
	return h.Render("student_home.tmpl", StudentHomePage{
		Contest:     data.Contest,
		Assignments: data.Assignments,
	})
}

type AssignmentPage struct {
	ID          int
	Title       string
	ArticleHTML template.HTML
	Languages   []string
}

func (h *StudentHandler) assignment(ctx context.Context) error {
	ok, err := h.ensureStudent()
	if !ok {
		return err
	}

	id, err := strconv.Atoi(h.Request().URL.Query().Get("id"))
	if err != nil {
		return common.Errorf("assignment id must be integer: %w", common.ErrValidation)
	}

	data, err := h.app.Students.Assignment(ctx, id)
	if err != nil {
		return err
	}
	return h.Render("student_assignment.tmpl", AssignmentPage{
		ID:          data.ID,
		Title:       data.Title,
		ArticleHTML: template.HTML(data.ArticleHTML),
		Languages:   service.SupportedLanguages,
	})
}

type SolutionsPage struct {
	Contests []service.ContestSolutions
}

func (h *StudentHandler) solutions(ctx context.Context) error {
	ok, err := h.ensureStudent()
	if !ok {
		return err
	}
	groups, err := h.app.Students.Solutions(ctx, h.Session().UserID)
	if err != nil {
		return err
	}
	return h.Render("student_solutions.tmpl", SolutionsPage{Contests: groups})
}

func (h *StudentHandler) commit(ctx context.Context) error {
	ok, err := h.ensureStudent()
	if !ok {
		return err
	}

	if err := h.Request().ParseForm(); err != nil {
		return common.Errorf("failed to parse commit form: %v: %w", err, common.ErrBadRequest)
	}
	assignmentID, err := strconv.Atoi(h.Request().PostFormValue("assignmentId"))
	if err != nil {
		return common.Errorf("assignmentId must be integer: %w", common.ErrValidation)
	}
	language := h.Request().PostFormValue("language")
	source := h.Request().PostFormValue("source")

	if err := h.app.Students.Commit(ctx, h.Session().UserID, assignmentID, language, source); err != nil {
		return err
	}

	h.Redirect(web.StudentSolutionsURL)
	return nil
}
