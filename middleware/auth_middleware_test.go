package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestRequireActiveUserBlocksDeactivatedAccount(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	userID := primitive.NewObjectID()
	access, _, err := GenerateJWT(userID.Hex(), "member@example.com", "user")
	require.NoError(t, err)

	serve := func(status AccountStatus) *httptest.ResponseRecorder {
		e := echo.New()
		g := e.Group("/api")
		g.Use(JWTMiddleware(), requireActiveUser(status))
		g.GET("/ping", func(c echo.Context) error {
			return c.String(http.StatusOK, "granted")
		})

		req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+access)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	t.Run("active account passes", func(t *testing.T) {
		var lookedUp primitive.ObjectID
		rec := serve(func(ctx context.Context, id primitive.ObjectID) (bool, error) {
			lookedUp = id
			return true, nil
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID, lookedUp, "guard must check the account named by the token")
	})

	t.Run("deactivated account is rejected despite a valid token", func(t *testing.T) {
		rec := serve(func(ctx context.Context, id primitive.ObjectID) (bool, error) {
			return false, nil
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("deleted account is rejected", func(t *testing.T) {
		rec := serve(func(ctx context.Context, id primitive.ObjectID) (bool, error) {
			return false, mongo.ErrNoDocuments
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
