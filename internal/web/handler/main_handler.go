package handler

import (
	"context"
	"errors"
	"net/http"

	"psjudge_frontend/internal/app"
	"psjudge_frontend/internal/common"
	"psjudge_frontend/internal/domain/model"
	"psjudge_frontend/internal/web"
	"psjudge_frontend/internal/web/session"
)

// MainHandler serves the landing and login pages.
type MainHandler struct {
	Base
}

func NewMainHandler(appCtx *app.Context, w http.ResponseWriter, r *http.Request) *MainHandler {
	return &MainHandler{Base: NewBase(appCtx, w, r)}
}

func (h *MainHandler) Action(name string) (ActionFunc, bool) {
	switch name {
	case "index":
		return h.index, true
	case "login":
		return h.login, true
	}
	return nil, false
}

type LoginPage struct {
	LoginFailed bool
}

func (h *MainHandler) index(ctx context.Context) error {
	if !h.CheckAuth() {
		return nil
	}
	return h.redirectAuthorized()
}

func (h *MainHandler) login(ctx context.Context) error {
	if h.Request().Method != http.MethodPost {
		if h.Session().Authorized {
			return h.redirectAuthorized()
		}
		return h.Render("login.tmpl", LoginPage{LoginFailed: false})
	}

	if err := h.Request().ParseForm(); err != nil {
		return common.Errorf("failed to parse login form: %v: %w", err, common.ErrBadRequest)
	}
	username := h.Request().PostFormValue("username")
	password := h.Request().PostFormValue("password")

	user, err := h.app.Auth.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, common.ErrLoginFailed) {
			// Failed attempts never mutate the session.
			return h.Render("login.tmpl", LoginPage{LoginFailed: true})
		}
		return err
	}

	sess := &session.Session{
		Authorized: true,
		UserID:     user.ID,
		Username:   user.Username,
		Roles:      user.Roles,
	}
	if err := h.SaveSession(sess); err != nil {
		return common.Errorf("failed to save session for user %q: %w", user.Username, err)
	}
	return h.redirectAuthorized()
}

// redirectAuthorized sends the user to the home page of their most
// privileged role.
func (h *MainHandler) redirectAuthorized() error {
	url, err := HomeURLForRoles(h.Session().Roles)
	if err != nil {
		return err
	}
	h.Redirect(url)
	return nil
}

// HomeURLForRoles picks the home page for a role set, precedence admin over
// judge over student. An authenticated session without any recognized role
// is a data inconsistency and cannot be completed.
func HomeURLForRoles(roles model.RoleSet) (string, error) {
	switch {
	case roles.Has(model.RoleAdmin):
		return web.AdminHomeURL, nil
	case roles.Has(model.RoleJudge):
		return web.JudgeHomeURL, nil
	case roles.Has(model.RoleStudent):
		return web.StudentHomeURL, nil
	}
	return "", common.Errorf("%w: %v", common.ErrNoRecognizedRole, roles)
}
