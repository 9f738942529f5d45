package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// JWT secret key, loaded from the environment at startup.
var JwtKey = []byte("")

// ErrInvalidToken is returned for any token that fails to decode or verify.
// Callers must not distinguish failure modes beyond "not authenticated".
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the user id inside a session token. No expiry claim is set:
// a token stays decodable until the stored copy on the user record is
// overwritten by the next login or cleared by logout.
type Claims struct {
	UserID string `json:"userId"`
	jwt.StandardClaims
}

// GenerateToken signs a session token bound to the given user id. The
// random jti makes every issued token distinct, so a re-login always rotates
// the stored credential and the previous token stops matching it.
func GenerateToken(userID string) (string, error) {
	nonce := make([]byte, 8)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	claims := &Claims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt: time.Now().Unix(),
			Id:       hex.EncodeToString(nonce),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JwtKey)
}

// ParseToken decodes a session token and returns the user id it was issued
// for. The caller still has to cross-check the token against the one stored
// on the user record.
func ParseToken(tokenStr string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return JwtKey, nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
