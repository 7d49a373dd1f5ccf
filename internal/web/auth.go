package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

const (
	userIdClaim   = "user-id"
	usernameClaim = "username"
	expClaim      = "exp"

	tokenCookieKey    = "session"
	defaultSessionExp = time.Hour * 24

	minPasswordLen = 8
)

// SessionUser is the request-scoped identity decoded from the session
// cookie. It travels in the request context; handlers never consult any
// global login state.
type SessionUser struct {
	Id       int
	Username string
}

type contextKey string

const sessionUserKey contextKey = "session-user"

func WithSessionUser(ctx context.Context, user SessionUser) context.Context {
	return context.WithValue(ctx, sessionUserKey, user)
}

func SessionUserFrom(ctx context.Context) (SessionUser, bool) {
	user, ok := ctx.Value(sessionUserKey).(SessionUser)

	return user, ok
}

func hashPassword(passwd string) (string, error) {
	passwdHash, err := bcrypt.GenerateFromPassword([]byte(passwd), bcrypt.DefaultCost)
	return string(passwdHash), err
}

func verifyPassword(passwdHash, passwd string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(passwdHash), []byte(passwd))
	return err == nil
}

func (s *TopicRoomsApp) createJwtForSession(user SessionUser, exp time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		userIdClaim:   user.Id,
		usernameClaim: user.Username,
		expClaim:      time.Now().Add(exp).Unix(),
	})

	return token.SignedString(s.signingKey)
}

func createSessionCookie(tokenString string, exp time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     tokenCookieKey,
		Value:    tokenString,
		Path:     "/",
		Expires:  time.Now().Add(exp),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

// startSession issues a fresh session cookie for the given user.
func (s *TopicRoomsApp) startSession(w http.ResponseWriter, user SessionUser) error {
	token, err := s.createJwtForSession(user, defaultSessionExp)
	if err != nil {
		return err
	}

	http.SetCookie(w, createSessionCookie(token, defaultSessionExp))
	return nil
}

func (s *TopicRoomsApp) extractSessionFromToken(tokenString string) (SessionUser, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	})
	if err != nil {
		return SessionUser{}, fmt.Errorf("parse token: %w", err)
	}

	if !token.Valid {
		return SessionUser{}, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return SessionUser{}, fmt.Errorf("invalid token claims")
	}

	userId, ok := claims[userIdClaim].(float64)
	if !ok {
		return SessionUser{}, fmt.Errorf("invalid user id claim")
	}

	username, ok := claims[usernameClaim].(string)
	if !ok {
		return SessionUser{}, fmt.Errorf("invalid username claim")
	}

	return SessionUser{Id: int(userId), Username: username}, nil
}
