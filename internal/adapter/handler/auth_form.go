package handler

import (
	"errors"
	"net/http"

	"docs-portal/internal/domain"
	"docs-portal/internal/usecase"

	"github.com/labstack/echo/v4"
)

// AuthFormHandler serves one of the two auth forms.
type AuthFormHandler struct {
	kind   usecase.FormKind
	layout *Layout
}

// NewLoginHandler serves /login.
func NewLoginHandler(layout *Layout) *AuthFormHandler {
	return &AuthFormHandler{kind: usecase.LoginForm, layout: layout}
}

// NewRegisterHandler serves /register.
func NewRegisterHandler(layout *Layout) *AuthFormHandler {
	return &AuthFormHandler{kind: usecase.RegisterForm, layout: layout}
}

// Show starts a fresh form lifetime and renders the empty form.
func (h *AuthFormHandler) Show(c echo.Context) error {
	browser, err := requireBrowser(c)
	if err != nil {
		return err
	}
	form := h.form(browser)
	form.Reset()
	return h.render(c, http.StatusOK, form.State())
}

// Submit posts the credentials. Success redirects with 303; any failure
// re-renders the form with the message and the email kept.
func (h *AuthFormHandler) Submit(c echo.Context) error {
	browser, err := requireBrowser(c)
	if err != nil {
		return err
	}
	form := h.form(browser)

	next, err := form.Submit(c.Request().Context(), c.FormValue("email"), c.FormValue("password"))
	if err == nil {
		return c.Redirect(http.StatusSeeOther, next)
	}

	if errors.Is(err, domain.ErrSubmissionInFlight) {
		// The in-flight submit owns the form state; answer from the request.
		return h.render(c, http.StatusConflict, usecase.FormState{
			Email: c.FormValue("email"),
			Error: domain.UserMessage(err),
		})
	}
	return h.render(c, http.StatusOK, form.State())
}

func (h *AuthFormHandler) form(b *usecase.Browser) *usecase.AuthForm {
	if h.kind == usecase.RegisterForm {
		return b.Register
	}
	return b.Login
}

func (h *AuthFormHandler) render(c echo.Context, status int, state usecase.FormState) error {
	heading, action := "登录", "/login"
	if h.kind == usecase.RegisterForm {
		heading, action = "注册", "/register"
	}

	page := h.layout.Page(c, heading)
	page.Form = &formView{
		Heading: heading,
		Action:  action,
		CSRF:    page.Widget.CSRF,
		Email:   state.Email,
		Error:   state.Error,
	}
	return c.Render(status, pageAuthForm, page)
}
