package handler

import (
	"context"
	"net/http"

	"psjudge_frontend/internal/app"
	"psjudge_frontend/internal/common"
	"psjudge_frontend/internal/domain/model"
)

// JudgeHandler serves the judge home page: the score table of the judge's
// active contest.
type JudgeHandler struct {
	Base
}

func NewJudgeHandler(appCtx *app.Context, w http.ResponseWriter, r *http.Request) *JudgeHandler {
	return &JudgeHandler{Base: NewBase(appCtx, w, r)}
}

func (h *JudgeHandler) Action(name string) (ActionFunc, bool) {
	if name == "home" {
		return h.home, true
	}
	return nil, false
}

type JudgeHomePage struct {
	Results []model.ContestResult
}

func (h *JudgeHandler) home(ctx context.Context) error {
	if !h.CheckAuth() {
		return nil
	}
	if !h.Session().Roles.Has(model.RoleJudge) {
		return common.Errorf("user %q has no privileges to view this page: %w",
			h.Session().Username, common.ErrForbidden)
	}

	user, err := h.Repo().Users.FindByID(ctx, h.Session().UserID)
	if err != nil {
		return common.Errorf("failed to fetch judge user %d: %w", h.Session().UserID, err)
	}
	results, err := h.Repo().Contests.ContestResults(ctx, user.ActiveContestID)
	if err != nil {
		return common.Errorf("failed to fetch results of contest %d: %w", user.ActiveContestID, err)
	}
	return h.Render("judge_home.tmpl", JudgeHomePage{Results: results})
}
