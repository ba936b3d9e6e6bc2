package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/examshare/examshare-client/internal/model"
)

// Claims mirrors the payload of the platform's access and refresh tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID    userID `json:"user_id"`
	TokenType string `json:"token_type"`
}

// userID accepts both numeric and string user identifiers.
type userID int64

func (u *userID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*u = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("user_id %s is not an integer", b)
	}
	*u = userID(n)
	return nil
}

var _ json.Unmarshaler = (*userID)(nil)

// JWT implements model.TokenInspector.
//
// The client normally does not hold the signing key, so tokens are decoded
// without signature checks. With a secret, signatures and expiry are verified.
type JWT struct {
	secretKey string
}

// NewJWT creates an inspector. secretKey may be empty.
func NewJWT(secretKey string) *JWT {
	return &JWT{secretKey: secretKey}
}

var _ model.TokenInspector = (*JWT)(nil)

// Inspect decodes tokenString into claims.
func (j *JWT) Inspect(tokenString string) (model.TokenClaims, error) {
	if tokenString == "" {
		return model.TokenClaims{}, errors.New("empty token")
	}

	claims := &Claims{}
	if j.secretKey == "" {
		if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
			return model.TokenClaims{}, fmt.Errorf("failed to decode token: %w", err)
		}
	} else {
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
			}
			return []byte(j.secretKey), nil
		})
		if err != nil {
			return model.TokenClaims{}, fmt.Errorf("failed to parse token: %w", err)
		}
		if !token.Valid {
			return model.TokenClaims{}, fmt.Errorf("token is invalid")
		}
	}

	out := model.TokenClaims{
		UserID:    int64(claims.UserID),
		TokenType: claims.TokenType,
		TokenID:   claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// TimeLeft returns how long the token stays valid at now, or 0 when it has
// expired or carries no expiry.
func TimeLeft(c model.TokenClaims, now time.Time) time.Duration {
	if c.ExpiresAt.IsZero() || c.Expired(now) {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}
