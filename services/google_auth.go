package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt"
	"github.com/lestrrat-go/jwx/jwk"
)

const googleJWKSEndpoint = "https://www.googleapis.com/oauth2/v3/certs"

// GoogleUser is the identity extracted from a verified Google ID token
type GoogleUser struct {
	Email      string
	GoogleID   string
	FullName   string
	PictureURL string
}

// VerifyGoogleIDToken validates a Google-issued ID token against Google's
// published JWK set and returns the embedded identity.
func VerifyGoogleIDToken(ctx context.Context, idToken string) (*GoogleUser, error) {
	parts := strings.Split(idToken, ".")
	if len(parts) != 3 {
		return nil, errors.New("invalid token format")
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid JWT header: %w", err)
	}

	var header struct {
		Kid string `json:"kid"`
		Alg string `json:"alg"`
	}
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("invalid JWT header JSON: %w", err)
	}

	jwkSet, err := jwk.Fetch(ctx, googleJWKSEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Google public keys: %w", err)
	}

	key, found := jwkSet.LookupKeyID(header.Kid)
	if !found {
		return nil, errors.New("google public key not found")
	}

	var pubkey interface{}
	if err := key.Raw(&pubkey); err != nil {
		return nil, fmt.Errorf("failed to parse Google public key: %w", err)
	}

	parsedToken, err := jwt.Parse(idToken, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != header.Alg {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return pubkey, nil
	})
	if err != nil || !parsedToken.Valid {
		return nil, errors.New("invalid or expired Google token")
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("failed to parse token claims")
	}

	email, _ := claims["email"].(string)
	sub, _ := claims["sub"].(string)
	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)
	if email == "" || sub == "" {
		return nil, errors.New("missing email or sub in token")
	}

	return &GoogleUser{
		Email:      email,
		GoogleID:   sub,
		FullName:   name,
		PictureURL: picture,
	}, nil
}
