package handler

import (
	"net/http"
	"net/url"
	"sync"
	"testing"

	"docs-portal/internal/domain"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAuthFormHandler_Show(t *testing.T) {
	t.Run("login form renders empty", func(t *testing.T) {
		p := newTestPortal(t)
		v := p.newVisitor(t)

		rec := p.get(&v, "/login")

		assert.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `action="/login"`)
		assert.Contains(t, body, `placeholder="邮箱"`)
		assert.Contains(t, body, `placeholder="密码"`)
		assert.Contains(t, body, `value="`+v.csrf+`"`)
		assert.NotContains(t, body, `color: red`)
	})

	t.Run("register form posts to register", func(t *testing.T) {
		p := newTestPortal(t)
		v := p.newVisitor(t)

		rec := p.get(&v, "/register")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `action="/register"`)
	})

	t.Run("first visit hands out a browser cookie", func(t *testing.T) {
		p := newTestPortal(t)

		rec := p.get(nil, "/login")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get(echo.HeaderSetCookie), BrowserCookieName+"=")
		assert.Equal(t, 1, p.browsers.Len())
	})
}

func TestAuthFormHandler_Submit(t *testing.T) {
	t.Run("valid login redirects home without an error", func(t *testing.T) {
		p := newTestPortal(t)
		v := p.newVisitor(t)
		p.gateway.On("SignIn", "reader@example.com", "s3cret-pw").Return(signedInSession("reader@example.com"), nil)

		rec := p.post(v, "/login", v.form("reader@example.com", "s3cret-pw"))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
		assert.Empty(t, rec.Body.String())
		p.gateway.AssertExpectations(t)
	})

	t.Run("invalid login re-renders with the provider message", func(t *testing.T) {
		p := newTestPortal(t)
		v := p.newVisitor(t)
		p.gateway.On("SignIn", "reader@example.com", "wrong-pw-123").
			Return(nil, &domain.OperationError{Op: "sign_in", Message: "密码错误", Status: http.StatusBadRequest})

		rec := p.post(v, "/login", v.form("reader@example.com", "wrong-pw-123"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get(echo.HeaderLocation))
		body := rec.Body.String()
		assert.Contains(t, body, `<p style="color: red">密码错误</p>`)
		assert.Contains(t, body, `value="reader@example.com"`)
		assert.NotContains(t, body, "wrong-pw-123")
	})

	t.Run("registering an email in use shows the error", func(t *testing.T) {
		p := newTestPortal(t)
		v := p.newVisitor(t)
		p.gateway.On("SignUp", "taken@example.com", "pw").
			Return(nil, &domain.OperationError{Op: "sign_up", Message: "该邮箱已被注册"})

		rec := p.post(v, "/register", v.form("taken@example.com", "pw"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get(echo.HeaderLocation))
		assert.Contains(t, rec.Body.String(), "该邮箱已被注册")
	})

	t.Run("successful register goes to login", func(t *testing.T) {
		p := newTestPortal(t)
		v := p.newVisitor(t)
		p.gateway.On("SignUp", "new@example.com", "pw").Return(&domain.ProviderSession{}, nil)

		rec := p.post(v, "/register", v.form("new@example.com", "pw"))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("empty fields never reach the provider", func(t *testing.T) {
		p := newTestPortal(t)
		v := p.newVisitor(t)

		rec := p.post(v, "/login", v.form("", ""))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), domain.ErrMissingCredentials.Error())
		p.gateway.AssertNotCalled(t, "SignIn", mock.Anything, mock.Anything)
	})

	t.Run("missing csrf token is rejected", func(t *testing.T) {
		p := newTestPortal(t)
		v := p.newVisitor(t)

		rec := p.post(v, "/login", url.Values{"email": {"a@example.com"}, "password": {"pw"}})

		assert.Equal(t, http.StatusForbidden, rec.Code)
		p.gateway.AssertNotCalled(t, "SignIn", mock.Anything, mock.Anything)
	})

	t.Run("csrf token of another browser is rejected", func(t *testing.T) {
		p := newTestPortal(t)
		v := p.newVisitor(t)
		other := p.newVisitor(t)

		rec := p.post(v, "/login", other.form("a@example.com", "pw"))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("second submit while one is in flight is rejected", func(t *testing.T) {
		p := newTestPortal(t)
		v := p.newVisitor(t)

		entered := make(chan struct{})
		release := make(chan struct{})
		p.gateway.On("SignIn", "slow@example.com", "pw").
			Run(func(mock.Arguments) {
				close(entered)
				<-release
			}).
			Return(signedInSession("slow@example.com"), nil).Once()

		var wg sync.WaitGroup
		wg.Add(1)
		var first int
		go func() {
			defer wg.Done()
			first = p.post(v, "/login", v.form("slow@example.com", "pw")).Code
		}()
		<-entered

		rec := p.post(v, "/login", v.form("slow@example.com", "pw"))
		close(release)
		wg.Wait()

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), domain.ErrSubmissionInFlight.Error())
		assert.Equal(t, http.StatusSeeOther, first)
		p.gateway.AssertNumberOfCalls(t, "SignIn", 1)
	})
}
