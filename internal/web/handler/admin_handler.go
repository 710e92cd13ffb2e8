package handler

import (
	"context"
	"net/http"

	"psjudge_frontend/internal/app"
	"psjudge_frontend/internal/common"
	"psjudge_frontend/internal/domain/model"
)

// AdminHandler serves the admin home page. Contest and user management runs
// through userctl, so the page itself is informational.
type AdminHandler struct {
	Base
}

func NewAdminHandler(appCtx *app.Context, w http.ResponseWriter, r *http.Request) *AdminHandler {
	return &AdminHandler{Base: NewBase(appCtx, w, r)}
}

func (h *AdminHandler) Action(name string) (ActionFunc, bool) {
	if name == "home" {
		return h.home, true
	}
	return nil, false
}

type AdminHomePage struct {
	Username string
}

func (h *AdminHandler) home(ctx context.Context) error {
	if !h.CheckAuth() {
		return nil
	}
	if !h.Session().Roles.Has(model.RoleAdmin) {
		return common.Errorf("user %q has no privileges to view this page: %w",
			h.Session().Username, common.ErrForbidden)
	}
	return h.Render("admin_home.tmpl", AdminHomePage{Username: h.Session().Username})
}
