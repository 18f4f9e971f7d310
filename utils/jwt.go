package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"numrenohacks/config"
)

// Session roles carried in the token.
const (
	RoleTeam  = "team"
	RoleAdmin = "admin"
)

// Claims is the session token payload. For team sessions TeamDocID and
// TeamID identify the logged-in team; admin sessions only carry the role.
type Claims struct {
	Role      string `json:"role"`
	TeamDocID uint   `json:"team_doc_id,omitempty"`
	TeamID    string `json:"team_id,omitempty"`
	jwt.RegisteredClaims
}

// GenerateTeamToken issues a session token for a team that logged in with
// its lead credentials.
func GenerateTeamToken(teamDocID uint, teamID string) (string, error) {
	claims := &Claims{
		Role:      RoleTeam,
		TeamDocID: teamDocID,
		TeamID:    teamID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.EncryptionKey))
}

// GenerateAdminToken issues a session token after the shared admin
// password was validated.
func GenerateAdminToken() (string, error) {
	claims := &Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(8 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.EncryptionKey))
}

// ParseToken validates a session token and returns its claims.
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.AppConfig.EncryptionKey), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
