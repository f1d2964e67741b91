package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/fitflow/gymfit_backend/middleware"
)

func TestRefreshTokenFromRequest(t *testing.T) {
	newContext := func(body string, cookies ...*http.Cookie) echo.Context {
		var req *http.Request
		if body != "" {
			req = httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		} else {
			req = httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
		}
		for _, cookie := range cookies {
			req.AddCookie(cookie)
		}
		return echo.New().NewContext(req, httptest.NewRecorder())
	}

	t.Run("body takes precedence", func(t *testing.T) {
		c := newContext(`{"refreshToken":"from-body"}`,
			&http.Cookie{Name: middleware.RefreshTokenCookie, Value: "from-cookie"})
		assert.Equal(t, "from-body", refreshTokenFromRequest(c))
	})

	t.Run("user session cookie", func(t *testing.T) {
		c := newContext("", &http.Cookie{Name: middleware.RefreshTokenCookie, Value: "user-token"})
		assert.Equal(t, "user-token", refreshTokenFromRequest(c))
	})

	t.Run("admin session cookie", func(t *testing.T) {
		c := newContext("", &http.Cookie{Name: middleware.AdminRefreshTokenCookie, Value: "admin-token"})
		assert.Equal(t, "admin-token", refreshTokenFromRequest(c))
	})

	t.Run("nothing presented", func(t *testing.T) {
		c := newContext("")
		assert.Equal(t, "", refreshTokenFromRequest(c))
	})
}
