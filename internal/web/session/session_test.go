package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"psjudge_frontend/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readSession runs a request with the given cookie through the Verifier
// middleware and returns what FromRequest decodes inside the handler.
func readSession(t *testing.T, store *Store, cookie *http.Cookie) *Session {
	t.Helper()

	var got *Session
	h := store.Verifier()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = store.FromRequest(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	return got
}

func saveCookie(t *testing.T, store *Store, sess *Session) *http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	require.NoError(t, store.Save(w, sess))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestSessionRoundTrip(t *testing.T) {
	store := NewStore([]byte("test-secret"), time.Hour)
	saved := &Session{
		Authorized: true,
		UserID:     42,
		Username:   "alice",
		Roles:      model.RoleSet{model.RoleJudge, model.RoleStudent},
	}

	cookie := saveCookie(t, store, saved)
	assert.Equal(t, CookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)

	got := readSession(t, store, cookie)
	assert.Equal(t, saved, got)
}

func TestSessionMissingCookie(t *testing.T) {
	store := NewStore([]byte("test-secret"), time.Hour)

	got := readSession(t, store, nil)
	assert.False(t, got.Authorized)
	assert.Zero(t, got.UserID)
}

func TestSessionTamperedCookie(t *testing.T) {
	store := NewStore([]byte("test-secret"), time.Hour)
	cookie := saveCookie(t, store, &Session{Authorized: true, UserID: 42, Username: "alice", Roles: model.RoleSet{model.RoleStudent}})

	// Flip a character in the signed token; verification must fail closed.
	raw := []byte(cookie.Value)
	last := len(raw) - 1
	if raw[last] == 'A' {
		raw[last] = 'B'
	} else {
		raw[last] = 'A'
	}
	cookie.Value = string(raw)

	got := readSession(t, store, cookie)
	assert.False(t, got.Authorized)
	assert.Zero(t, got.UserID)
}

func TestSessionForeignKeyRejected(t *testing.T) {
	store := NewStore([]byte("test-secret"), time.Hour)
	other := NewStore([]byte("another-secret"), time.Hour)
	cookie := saveCookie(t, other, &Session{Authorized: true, UserID: 1, Username: "mallory", Roles: model.RoleSet{model.RoleAdmin}})

	got := readSession(t, store, cookie)
	assert.False(t, got.Authorized)
}

func TestSessionExpiredCookie(t *testing.T) {
	store := NewStore([]byte("test-secret"), -time.Minute)
	cookie := saveCookie(t, store, &Session{Authorized: true, UserID: 1, Username: "alice", Roles: model.RoleSet{model.RoleStudent}})

	got := readSession(t, store, cookie)
	assert.False(t, got.Authorized)
}
