// middleware/auth_middleware.go
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/fitflow/gymfit_backend/config"
	"github.com/fitflow/gymfit_backend/models"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// RequireUserType checks if the authenticated user has one of the allowed user types
func RequireUserType(allowedTypes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userType := ExtractUserType(c)

			if userType == "" {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Authentication failed: user type not found",
				})
			}

			for _, allowedType := range allowedTypes {
				if userType == allowedType {
					return next(c)
				}
			}

			c.Logger().Errorf("Access denied for user type: %s, allowed types: %v", userType, allowedTypes)
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Access denied for your user type",
			})
		}
	}
}

// RequireAdmin gates admin-panel routes
func RequireAdmin() echo.MiddlewareFunc {
	return RequireUserType("admin")
}

// AccountStatus reports whether the account behind a user id exists and is
// still active.
type AccountStatus func(ctx context.Context, userID primitive.ObjectID) (bool, error)

// RequireActiveUser loads the authenticated account on every request and
// rejects deleted or deactivated accounts. Mounted after JWTMiddleware on
// each protected group, so a deactivation cuts access on the next request
// instead of at access-token expiry.
func RequireActiveUser(db *mongo.Client) echo.MiddlewareFunc {
	return requireActiveUser(func(ctx context.Context, userID primitive.ObjectID) (bool, error) {
		var account struct {
			IsActive bool `bson:"isActive"`
		}
		err := config.GetCollection(db, "users").FindOne(ctx, bson.M{"_id": userID}).Decode(&account)
		if err != nil {
			return false, err
		}
		return account.IsActive, nil
	})
}

func requireActiveUser(status AccountStatus) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userIDHex, _ := c.Get("userId").(string)
			userID, err := primitive.ObjectIDFromHex(userIDHex)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Authentication failed: user not found",
				})
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			active, err := status(ctx, userID)
			if err != nil {
				if err == mongo.ErrNoDocuments {
					return c.JSON(http.StatusUnauthorized, models.Response{
						Status:  http.StatusUnauthorized,
						Message: "Account no longer exists",
					})
				}
				return c.JSON(http.StatusInternalServerError, models.Response{
					Status:  http.StatusInternalServerError,
					Message: "Failed to verify account status",
				})
			}
			if !active {
				return c.JSON(http.StatusForbidden, models.Response{
					Status:  http.StatusForbidden,
					Message: "Account is deactivated",
				})
			}
			return next(c)
		}
	}
}
