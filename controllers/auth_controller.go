package controllers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/fitflow/gymfit_backend/config"
	"github.com/fitflow/gymfit_backend/middleware"
	"github.com/fitflow/gymfit_backend/models"
	"github.com/fitflow/gymfit_backend/services"
	"github.com/fitflow/gymfit_backend/utils"
)

// AuthController contains authentication logic
type AuthController struct {
	DB     *mongo.Client
	logger *log.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(db *mongo.Client) *AuthController {
	return &AuthController{
		DB:     db,
		logger: log.New(os.Stdout, "[AUTH] ", log.LstdFlags),
	}
}

// Register creates a new member account
func (ac *AuthController) Register(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	collection := config.GetCollection(ac.DB, "users")

	count, err := collection.CountDocuments(ctx, bson.M{"email": req.Email})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to check existing accounts",
		})
	}
	if count > 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "An account with this email already exists",
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process password",
		})
	}

	now := time.Now()
	user := models.User{
		ID:             primitive.NewObjectID(),
		Email:          req.Email,
		Password:       string(hashed),
		FullName:       req.FullName,
		Phone:          req.Phone,
		UserType:       models.UserTypeUser,
		IsActive:       true,
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "An account with this email already exists",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create account",
		})
	}

	return ac.issueTokens(c, &user, http.StatusCreated, "Account created successfully")
}

// Login authenticates a member with email and password
func (ac *AuthController) Login(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Email and password are required",
		})
	}

	collection := config.GetCollection(ac.DB, "users")

	var user models.User
	err := collection.FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Invalid credentials",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to find user",
		})
	}

	if !user.IsActive {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Account is deactivated",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{"lastActivityAt": time.Now()}})

	return ac.issueTokens(c, &user, http.StatusOK, "Login successful")
}

// AdminLogin authenticates an admin account and sets the admin cookie pair
func (ac *AuthController) AdminLogin(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Email and password are required",
		})
	}

	var user models.User
	err := config.GetCollection(ac.DB, "users").FindOne(ctx, bson.M{
		"email":    req.Email,
		"userType": models.UserTypeAdmin,
	}).Decode(&user)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	if !user.IsActive {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Account is deactivated",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	accessToken, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.UserType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate tokens",
		})
	}
	if err := utils.StoreRefreshToken(ctx, user.ID.Hex(), refreshToken); err != nil {
		ac.logger.Printf("Failed to store refresh token for %s: %v", user.Email, err)
	}

	middleware.SetAuthCookies(c, accessToken, refreshToken, true)

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: map[string]interface{}{
			"user":         user,
			"accessToken":  accessToken,
			"refreshToken": refreshToken,
		},
	})
}

// GoogleLogin verifies a Google ID token and signs the user in, creating
// the account on first sign-in.
func (ac *AuthController) GoogleLogin(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.GoogleLoginRequest
	if err := c.Bind(&req); err != nil || req.IDToken == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Google ID token is required",
		})
	}

	googleUser, err := services.VerifyGoogleIDToken(ctx, req.IDToken)
	if err != nil {
		ac.logger.Printf("Google token verification failed: %v", err)
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid Google token",
		})
	}

	collection := config.GetCollection(ac.DB, "users")

	var user models.User
	err = collection.FindOne(ctx, bson.M{"email": googleUser.Email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		now := time.Now()
		user = models.User{
			ID:             primitive.NewObjectID(),
			Email:          googleUser.Email,
			FullName:       googleUser.FullName,
			UserType:       models.UserTypeUser,
			IsActive:       true,
			GoogleID:       googleUser.GoogleID,
			ProfilePic:     googleUser.PictureURL,
			LastActivityAt: now,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if _, err := collection.InsertOne(ctx, user); err != nil {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to create account",
			})
		}
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to find user",
		})
	} else if user.GoogleID == "" {
		collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
			"googleId":  googleUser.GoogleID,
			"updatedAt": time.Now(),
		}})
	}

	if !user.IsActive {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Account is deactivated",
		})
	}

	return ac.issueTokens(c, &user, http.StatusOK, "Login successful")
}

// RefreshToken rotates the token pair. The presented refresh token must
// match the last one issued for the user; anything older is rejected.
func (ac *AuthController) RefreshToken(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	refreshToken := refreshTokenFromRequest(c)
	if refreshToken == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Refresh token is required",
		})
	}

	claims, err := middleware.ParseToken(refreshToken)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired refresh token",
		})
	}

	if err := utils.ValidateRefreshToken(ctx, claims.UserID, refreshToken); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Refresh token has been superseded",
		})
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token claims",
		})
	}

	var user models.User
	err = config.GetCollection(ac.DB, "users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil || !user.IsActive {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Account not found or deactivated",
		})
	}

	return ac.issueTokens(c, &user, http.StatusOK, "Token refreshed")
}

// refreshTokenFromRequest pulls the refresh token from the JSON body or,
// failing that, from whichever session cookie pair is present. Admin
// sessions store theirs under the admin cookie name.
func refreshTokenFromRequest(c echo.Context) string {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}
	for _, name := range []string{middleware.RefreshTokenCookie, middleware.AdminRefreshTokenCookie} {
		if cookie, err := c.Cookie(name); err == nil && cookie.Value != "" {
			return cookie.Value
		}
	}
	return ""
}

// Logout invalidates the stored refresh token and clears auth cookies
func (ac *AuthController) Logout(c echo.Context) error {
	claims := middleware.GetUserFromToken(c)
	if claims != nil {
		utils.InvalidateRefreshToken(context.Background(), claims.UserID)
	}

	admin := claims != nil && claims.UserType == models.UserTypeAdmin
	middleware.ClearAuthCookies(c, admin)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logged out",
	})
}

// GetProfile returns the authenticated user's account including the
// denormalized membership pointer and QR pass.
func (ac *AuthController) GetProfile(c echo.Context) error {
	user, err := utils.GetUserFromToken(c, ac.DB)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Failed to load account",
		})
	}

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile retrieved",
		Data:    user,
	})
}

// UpdateProfile updates mutable account fields
func (ac *AuthController) UpdateProfile(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	update := bson.M{"updatedAt": time.Now()}
	if req.FullName != "" {
		update["fullName"] = req.FullName
	}
	if req.Phone != "" {
		update["phone"] = req.Phone
	}
	if req.FCMToken != "" {
		update["fcmToken"] = req.FCMToken
	}

	_, err = config.GetCollection(ac.DB, "users").UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": update})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update profile",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile updated",
	})
}

// ChangePassword verifies the old password and sets a new one
func (ac *AuthController) ChangePassword(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "New password must be at least 8 characters",
		})
	}

	user, err := utils.GetUserFromToken(c, ac.DB)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Failed to load account",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Current password is incorrect",
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process password",
		})
	}

	_, err = config.GetCollection(ac.DB, "users").UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"password":  string(hashed),
		"updatedAt": time.Now(),
	}})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update password",
		})
	}

	// Force a fresh login everywhere
	utils.InvalidateRefreshToken(ctx, user.ID.Hex())

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Password changed",
	})
}

// ForgotPassword emails a single-use reset link. The response is identical
// whether or not the email exists.
func (ac *AuthController) ForgotPassword(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "A valid email is required",
		})
	}

	neutral := func() error {
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "If an account exists for that email, a reset link has been sent",
		})
	}

	var user models.User
	err := config.GetCollection(ac.DB, "users").FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		return neutral()
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		ac.logger.Printf("Failed to generate reset token: %v", err)
		return neutral()
	}
	token := hex.EncodeToString(tokenBytes)

	if err := utils.StoreResetToken(ctx, token, user.ID.Hex(), time.Hour); err != nil {
		ac.logger.Printf("Failed to store reset token: %v", err)
		return neutral()
	}

	resetURL := config.GetEnv("FRONTEND_URL", "http://localhost:3000") + "/reset-password?token=" + token
	body := "Hi " + user.FullName + ",\n\nUse the link below to reset your password. It expires in one hour.\n\n" + resetURL + "\n\nIf you didn't request this, you can ignore this email."
	utils.SendEmailAsync(user.Email, "Reset your GymFit password", body)

	return neutral()
}

// ResetPassword consumes a reset token and sets the new password
func (ac *AuthController) ResetPassword(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Token and a password of at least 8 characters are required",
		})
	}

	userIDHex, err := utils.ConsumeResetToken(ctx, req.Token)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Reset token is invalid or expired",
		})
	}

	userID, err := primitive.ObjectIDFromHex(userIDHex)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Reset token is invalid or expired",
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process password",
		})
	}

	_, err = config.GetCollection(ac.DB, "users").UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{
		"password":  string(hashed),
		"updatedAt": time.Now(),
	}})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update password",
		})
	}

	utils.InvalidateRefreshToken(ctx, userIDHex)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Password has been reset",
	})
}

// issueTokens generates a token pair, stores the refresh token for rotation
// and writes the auth cookies.
func (ac *AuthController) issueTokens(c echo.Context, user *models.User, status int, message string) error {
	accessToken, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.UserType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate tokens",
		})
	}

	if err := utils.StoreRefreshToken(context.Background(), user.ID.Hex(), refreshToken); err != nil {
		ac.logger.Printf("Failed to store refresh token for %s: %v", user.Email, err)
	}

	middleware.SetAuthCookies(c, accessToken, refreshToken, user.UserType == models.UserTypeAdmin)

	user.Password = ""
	return c.JSON(status, models.Response{
		Status:  status,
		Message: message,
		Data: map[string]interface{}{
			"user":         user,
			"accessToken":  accessToken,
			"refreshToken": refreshToken,
		},
	})
}
