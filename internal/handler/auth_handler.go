package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/apiclient"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/middleware"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/view"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/pkg/apierror"
)

type AuthHandler struct {
	site   *Site
	client *apiclient.Client
}

func NewAuthHandler(site *Site, client *apiclient.Client) *AuthHandler {
	return &AuthHandler{site: site, client: client}
}

func (h *AuthHandler) SignInForm(w http.ResponseWriter, r *http.Request) {
	if sess := currentSession(r); sess != nil && sess.Authenticated() {
		http.Redirect(w, r, localRedirect(r.URL.Query().Get("next"), model.LandingPath(sess.Role())), http.StatusSeeOther)
		return
	}

	var notice *view.Toast
	if r.URL.Query().Get("registered") == "1" {
		notice = &view.Toast{Level: "success", Message: "Account created. You can sign in now."}
	}
	h.renderSignIn(w, r, http.StatusOK, r.URL.Query().Get("next"), model.LoginRequest{}, nil, notice)
}

// SignIn stores a session only when the backend accepted the credentials.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")

	values, _, err := h.site.parseForm(w, r)
	if err != nil {
		h.renderSignIn(w, r, http.StatusBadRequest, next, model.LoginRequest{}, map[string]string{"": formReadMessage(err)}, nil)
		return
	}
	if v := values.str("next"); v != "" {
		next = v
	}

	form := model.LoginRequest{Username: values.str("username"), Password: values.Get("password")}
	if errs := fieldErrors(form); len(errs) > 0 {
		h.renderSignIn(w, r, http.StatusUnprocessableEntity, next, form, errs, nil)
		return
	}

	sess, err := h.client.Login(r.Context(), form.Username, form.Password)
	if err != nil {
		h.site.log.Info("sign-in rejected", "username", form.Username, "error", err)
		h.renderSignIn(w, r, backendStatus(err), next, model.LoginRequest{Username: form.Username}, map[string]string{"": apierror.UserMessage(err)}, nil)
		return
	}

	if old := currentSession(r); old != nil {
		h.site.states.Drop(old.ID())
		if err := h.site.store.Delete(r.Context(), old.ID()); err != nil && !errors.Is(err, model.ErrSessionNotFound) {
			h.site.log.Warn("drop previous session", "error", err)
		}
	}

	if err := h.site.store.Save(r.Context(), sess); err != nil {
		h.site.log.Error("save session", "error", err)
		h.renderSignIn(w, r, http.StatusInternalServerError, next, model.LoginRequest{Username: form.Username}, map[string]string{"": "Could not sign you in, please try again"}, nil)
		return
	}

	h.site.setCookie(w, sess.ID())
	http.Redirect(w, r, localRedirect(next, model.LandingPath(sess.Role())), http.StatusSeeOther)
}

func (h *AuthHandler) renderSignIn(w http.ResponseWriter, r *http.Request, status int, next string, form model.LoginRequest, errs map[string]string, notice *view.Toast) {
	action := middleware.SignInPath
	if next = localRedirect(next, ""); next != "" {
		action += "?next=" + url.QueryEscape(next)
	}

	content := view.AuthForm{
		Heading: "Sign in",
		Form: applyErrors(view.Form{
			ID:     "signin",
			Action: action,
			Submit: "Sign in",
			Fields: []view.Field{
				{Name: "username", Label: "Username", Type: "text", Value: form.Username, Required: true},
				{Name: "password", Label: "Password", Type: "password", Required: true},
			},
		}, errs),
		Footer: view.NavItem{Label: "Create a master account", Href: "/signup"},
	}

	p := h.site.page(r, "Sign in", nil, content)
	if notice != nil {
		p.Toast = notice
	}
	h.site.render(w, r, status, "auth_form", p)
}

func (h *AuthHandler) SignUpForm(w http.ResponseWriter, r *http.Request) {
	h.renderSignUp(w, r, http.StatusOK, model.RegisterRequest{}, nil)
}

// SignUp registers a master account and sends the user to sign in.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	values, _, err := h.site.parseForm(w, r)
	if err != nil {
		h.renderSignUp(w, r, http.StatusBadRequest, model.RegisterRequest{}, map[string]string{"": formReadMessage(err)})
		return
	}

	form := model.RegisterRequest{
		Username: values.str("username"),
		Email:    values.str("email"),
		Password: values.Get("password"),
		Role:     model.RoleMaster,
	}
	if errs := fieldErrors(form); len(errs) > 0 {
		h.renderSignUp(w, r, http.StatusUnprocessableEntity, form, errs)
		return
	}

	if _, err := h.client.RegisterMaster(r.Context(), form); err != nil {
		h.renderSignUp(w, r, backendStatus(err), form, map[string]string{"": apierror.UserMessage(err)})
		return
	}

	http.Redirect(w, r, middleware.SignInPath+"?registered=1", http.StatusSeeOther)
}

func (h *AuthHandler) renderSignUp(w http.ResponseWriter, r *http.Request, status int, form model.RegisterRequest, errs map[string]string) {
	content := view.AuthForm{
		Heading: "Create a master account",
		Form: applyErrors(view.Form{
			ID:     "signup",
			Action: "/signup",
			Submit: "Sign up",
			Fields: []view.Field{
				{Name: "username", Label: "Username", Type: "text", Value: form.Username, Required: true},
				{Name: "email", Label: "Email", Type: "email", Value: form.Email, Required: true},
				{Name: "password", Label: "Password", Type: "password", Required: true},
			},
		}, errs),
		Footer: view.NavItem{Label: "Already have an account? Sign in", Href: middleware.SignInPath},
	}

	h.site.render(w, r, status, "auth_form", h.site.page(r, "Sign up", nil, content))
}

// Logout forgets the session on this server. Tokens are not revoked upstream.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := currentSession(r); sess != nil {
		sess.Invalidate()
		h.site.states.Drop(sess.ID())
		if err := h.site.store.Delete(r.Context(), sess.ID()); err != nil && !errors.Is(err, model.ErrSessionNotFound) {
			h.site.log.Warn("delete session on logout", "error", err)
		}
	}

	h.site.clearCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
