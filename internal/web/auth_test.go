package web

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionUserFrom(t *testing.T) {
	tcases := []struct {
		name     string
		ctx      context.Context
		user     SessionUser
		expected bool
	}{
		{
			name:     "no session user",
			ctx:      context.Background(),
			expected: false,
		},
		{
			name:     "session user set",
			ctx:      WithSessionUser(context.Background(), SessionUser{Id: 42, Username: "alice"}),
			user:     SessionUser{Id: 42, Username: "alice"},
			expected: true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			user, ok := SessionUserFrom(tc.ctx)
			assert.Equal(t, tc.expected, ok, "expected SessionUserFrom to return %v", tc.expected)
			assert.Equal(t, tc.user, user, "expected SessionUserFrom to return %+v", tc.user)
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := hashPassword("hunter22")
	assert.NoError(t, err, "expected hashing to succeed")
	assert.NotEqual(t, "hunter22", hash, "expected hash to differ from the password")
	assert.True(t, verifyPassword(hash, "hunter22"), "expected matching password to verify")
	assert.False(t, verifyPassword(hash, "hunter23"), "expected wrong password to fail")
}

func TestSessionTokenRoundTrip(t *testing.T) {
	app := &TopicRoomsApp{signingKey: []byte("secret")}

	user := SessionUser{Id: 7, Username: "bob"}
	token, err := app.createJwtForSession(user, time.Hour)
	assert.NoError(t, err, "expected token creation to succeed")

	got, err := app.extractSessionFromToken(token)
	assert.NoError(t, err, "expected token to parse")
	assert.Equal(t, user, got, "expected session user to round-trip")
}

func TestExtractSessionFromToken_Invalid(t *testing.T) {
	app := &TopicRoomsApp{signingKey: []byte("secret")}

	_, err := app.extractSessionFromToken("not-a-token")
	assert.Error(t, err, "expected garbage token to fail")

	other := &TopicRoomsApp{signingKey: []byte("other-secret")}
	token, err := other.createJwtForSession(SessionUser{Id: 1, Username: "eve"}, time.Hour)
	assert.NoError(t, err)

	_, err = app.extractSessionFromToken(token)
	assert.Error(t, err, "expected token signed with another key to fail")
}

func TestExtractSessionFromToken_Expired(t *testing.T) {
	app := &TopicRoomsApp{signingKey: []byte("secret")}

	token, err := app.createJwtForSession(SessionUser{Id: 1, Username: "bob"}, -time.Hour)
	assert.NoError(t, err)

	_, err = app.extractSessionFromToken(token)
	assert.Error(t, err, "expected expired token to fail")
}
